package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"truthbot/internal/history"
	"truthbot/internal/models"
)

const maxHistoryLimit = 100

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{Status: "healthy", Service: ServiceName})
}

func (s *Server) factCheck(c *gin.Context) {
	var req models.FactCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Claim) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Claim cannot be empty"})
		return
	}

	resp, err := s.checker.Check(c.Request.Context(), req.Claim)
	if err != nil {
		s.logger.Error("Fact-check failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Error during fact-checking: " + err.Error()})

		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) listHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: "History is not enabled"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "limit must be a positive integer"})
			return
		}

		limit = min(n, maxHistoryLimit)
	}

	records, err := s.history.List(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("History list failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Error reading history: " + err.Error()})

		return
	}

	c.JSON(http.StatusOK, records)
}

func (s *Server) getHistory(c *gin.Context) {
	if s.history == nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: "History is not enabled"})
		return
	}

	rec, err := s.history.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, history.ErrNotFound) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: "Check not found"})
		return
	}

	if err != nil {
		s.logger.Error("History lookup failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Error reading history: " + err.Error()})

		return
	}

	c.JSON(http.StatusOK, rec)
}
