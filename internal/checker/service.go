// Package checker runs the fact-check pipeline behind POST /fact-check:
// search the web, hand the evidence to the analysis agent, then record and
// cache the verdict.
package checker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"truthbot/internal/agent"
	"truthbot/internal/cache"
	"truthbot/internal/logger"
	"truthbot/internal/models"
	"truthbot/internal/search"
	"truthbot/internal/validator"
	"truthbot/internal/verdict"
	"truthbot/pkg/fingerprint"
)

// Checker errors.
var (
	ErrEmptyClaim    = errors.New("claim cannot be empty")
	ErrAnalysis      = errors.New("analysis failed")
	ErrNotConfigured = errors.New("checker is missing a searcher or agent")
)

// Recorder persists completed checks.
type Recorder interface {
	Save(ctx context.Context, rec *models.CheckRecord) error
}

// Service wires the pipeline stages together. Cache, Recorder and Validator
// are optional.
type Service struct {
	searcher  search.Searcher
	agent     agent.Agent
	cache     cache.Cache
	recorder  Recorder
	validator *validator.VerdictValidator
	logger    *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables response caching.
func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithRecorder saves every completed check.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithValidator logs format diagnostics for every agent reply.
func WithValidator(v *validator.VerdictValidator) Option {
	return func(s *Service) { s.validator = v }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a checker from its required stages.
func NewService(searcher search.Searcher, a agent.Agent, opts ...Option) *Service {
	s := &Service{searcher: searcher, agent: a}

	for _, o := range opts {
		o(s)
	}

	s.logger = logger.OrDiscard(s.logger)

	return s
}

// Check fact-checks claim. Search failures degrade to an analysis without
// evidence; analysis failures are returned wrapped in ErrAnalysis.
func (s *Service) Check(ctx context.Context, claim string) (*models.FactCheckResponse, error) {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return nil, ErrEmptyClaim
	}

	if s.searcher == nil || s.agent == nil {
		return nil, ErrNotConfigured
	}

	startTime := time.Now()
	key := fingerprint.CacheKey(claim)
	log := s.logger.With("claim_hash", fingerprint.ClaimHash(claim)[:12])

	if cached := s.lookup(ctx, log, key); cached != nil {
		cached.Claim = claim
		return cached, nil
	}

	// 1. Evidence
	log.Info("Phase 1: searching the web")

	searchContext, count := s.gather(ctx, log, claim)

	// 2. Analysis
	log.Info("Phase 2: analyzing claim", "search_results", count)

	markdown, err := s.agent.Analyze(ctx, claim, searchContext)
	if err != nil {
		log.Error("Analysis failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}

	resp := &models.FactCheckResponse{
		Claim:              claim,
		SearchResultsCount: count,
		Verdict:            markdown,
		Success:            true,
	}

	// 3. Record
	s.diagnose(log, markdown)
	s.record(ctx, log, resp)
	s.store(ctx, log, key, resp)

	log.Info("✅ Claim checked", "duration", time.Since(startTime))

	return resp, nil
}

func (s *Service) lookup(ctx context.Context, log *logger.Logger, key string) *models.FactCheckResponse {
	if s.cache == nil {
		return nil
	}

	resp, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Warn("Cache lookup failed", "error", err)
		return nil
	}

	if !ok {
		return nil
	}

	log.Info("Cache hit")

	return resp
}

func (s *Service) gather(ctx context.Context, log *logger.Logger, claim string) (string, int) {
	resp, err := s.searcher.Search(ctx, claim)
	if err != nil {
		log.Warn("⚠️  Search failed, continuing without evidence", "error", err)
		return search.FailureContext(err), 0
	}

	return search.FormatContext(claim, resp), resp.Count()
}

func (s *Service) diagnose(log *logger.Logger, markdown string) {
	if s.validator == nil {
		return
	}

	result := s.validator.Validate(markdown)
	if !result.IsValid {
		log.Warn("Agent reply does not match the verdict layout", "report", result.String())
		return
	}

	for _, w := range result.Warnings {
		log.Debug("Verdict layout warning", "warning", w)
	}
}

func (s *Service) record(ctx context.Context, log *logger.Logger, resp *models.FactCheckResponse) {
	if s.recorder == nil {
		return
	}

	parsed := verdict.ParseResponse(resp)

	rec := &models.CheckRecord{
		Claim:              resp.Claim,
		ClaimHash:          fingerprint.ClaimHash(resp.Claim),
		VerdictType:        parsed.VerdictType,
		Confidence:         parsed.Confidence,
		Verdict:            resp.Verdict,
		SearchResultsCount: resp.SearchResultsCount,
	}

	if err := s.recorder.Save(ctx, rec); err != nil {
		log.Warn("Failed to save check history", "error", err)
		return
	}

	log.Debug("Check saved", "id", rec.ID)
}

func (s *Service) store(ctx context.Context, log *logger.Logger, key string, resp *models.FactCheckResponse) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Set(ctx, key, resp); err != nil {
		log.Warn("Failed to cache response", "error", err)
	}
}
