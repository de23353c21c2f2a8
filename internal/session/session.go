// Package session keeps the state of one fact-checking conversation.
//
// A Session allows a single outstanding request. Submissions made while a
// request is in flight fail fast with ErrBusy.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"truthbot/internal/factcheck"
	"truthbot/internal/formatter"
	"truthbot/internal/logger"
	"truthbot/internal/models"
	"truthbot/internal/verdict"
)

// Session errors.
var (
	ErrBusy           = errors.New("a fact-check is already in progress")
	ErrNothingToRetry = errors.New("no failed claim to retry")
)

// WelcomeMessage opens every conversation.
const WelcomeMessage = "Hello! 👋 I'm TruthBot, your AI-powered fact-checking assistant. " +
	"Ask me to verify any claim, and I'll dive deep into the web to find the truth. " +
	"What would you like me to fact-check today?"

// Role identifies who authored a message.
type Role string

// Message roles.
const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one entry of the conversation.
type Message struct {
	Timestamp time.Time             `json:"timestamp"`
	Verdict   *models.ParsedVerdict `json:"verdict,omitempty"`
	ID        string                `json:"id"`
	Role      Role                  `json:"role"`
	Content   string                `json:"content"`
}

// State is a point-in-time copy of the session.
type State struct {
	Result   *models.ParsedVerdict
	LastErr  error
	Messages []Message
	Loading  bool
}

// Session owns the conversation and per-query state.
type Session struct {
	client   factcheck.Checker
	logger   *logger.Logger
	now      func() time.Time
	result   *models.ParsedVerdict
	lastErr  error
	retry    string
	messages []Message
	mu       sync.Mutex
	loading  bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock overrides the message timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// New creates a session that sends claims through client.
func New(client factcheck.Checker, opts ...Option) *Session {
	s := &Session{
		client: client,
		now:    time.Now,
	}

	for _, o := range opts {
		o(s)
	}

	s.logger = logger.OrDiscard(s.logger)
	s.messages = []Message{s.newMessage(RoleBot, WelcomeMessage, nil)}

	return s
}

// Submit checks claim and returns the parsed verdict. Blank claims return
// factcheck.ErrEmptyClaim and concurrent calls return ErrBusy; neither sends
// a request or changes the conversation.
func (s *Session) Submit(ctx context.Context, claim string) (*models.ParsedVerdict, error) {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		return nil, factcheck.ErrEmptyClaim
	}

	if err := s.begin(claim); err != nil {
		return nil, err
	}

	return s.run(ctx, claim)
}

// Retry resubmits the claim of the last failed request.
func (s *Session) Retry(ctx context.Context) (*models.ParsedVerdict, error) {
	s.mu.Lock()
	claim := s.retry
	s.mu.Unlock()

	if claim == "" {
		return nil, ErrNothingToRetry
	}

	return s.Submit(ctx, claim)
}

// Reset returns the session to its initial welcome state.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return ErrBusy
	}

	s.result = nil
	s.lastErr = nil
	s.retry = ""
	s.messages = []Message{s.newMessage(RoleBot, WelcomeMessage, nil)}

	return nil
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Messages: append([]Message(nil), s.messages...),
		Loading:  s.loading,
		LastErr:  s.lastErr,
	}

	if s.result != nil {
		r := *s.result
		st.Result = &r
	}

	return st
}

// CanRetry reports whether a failed claim is waiting to be retried.
func (s *Session) CanRetry() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retry != "" && !s.loading
}

func (s *Session) begin(claim string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loading {
		return ErrBusy
	}

	s.loading = true
	s.lastErr = nil
	s.messages = append(s.messages, s.newMessage(RoleUser, claim, nil))

	return nil
}

func (s *Session) run(ctx context.Context, claim string) (*models.ParsedVerdict, error) {
	log := s.logger.With("claim_len", len(claim))
	log.Debug("Checking claim")

	resp, err := s.client.Check(ctx, claim)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.loading = false

	if err != nil {
		log.Warn("Fact-check failed", "error", err)

		s.lastErr = err
		s.retry = claim
		s.messages = append(s.messages, s.newMessage(RoleBot, ErrorMessage(err), nil))

		return nil, err
	}

	parsed := verdict.ParseResponse(resp)
	s.result = &parsed
	s.retry = ""

	s.messages = append(s.messages,
		s.newMessage(RoleBot, resp.Verdict, &parsed),
		s.newMessage(RoleBot, formatter.FollowUp(parsed.VerdictType), nil),
	)

	log.Info("Claim checked", "verdict", parsed.VerdictType, "confidence", parsed.Confidence, "sources", len(parsed.Sources))

	out := parsed

	return &out, nil
}

// ErrorMessage is the conversational text shown for a failed request.
func ErrorMessage(err error) string {
	msg := "Failed to fact-check claim"
	if err != nil {
		msg = err.Error()
	}

	return fmt.Sprintf("Sorry, I encountered an error: %s. Please try again!", msg)
}

func (s *Session) newMessage(role Role, content string, v *models.ParsedVerdict) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Verdict:   v,
		Timestamp: s.now(),
	}
}
