package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/turntimer/internal/dependencies/clock"
	"github.com/mcoot/turntimer/internal/dependencies/random"
	"github.com/mcoot/turntimer/internal/events"
	"github.com/mcoot/turntimer/internal/model"
	"github.com/mcoot/turntimer/internal/services/ledger"
	"github.com/mcoot/turntimer/internal/storage"
)

const (
	// SessionCodeLength is the length of generated session codes
	SessionCodeLength = 6
	// SessionCodeAlphabet is the characters used in session codes (avoid confusing chars)
	SessionCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// maxCodeAttempts bounds session code generation
	maxCodeAttempts = 100
)

// Reasons carried by session_ended events
const (
	EndReasonEnded    = "ended"
	EndReasonShutdown = "shutdown"
)

// ErrCodeSpaceExhausted is returned when no free session code could be found
var ErrCodeSpaceExhausted = errors.New("could not generate a unique session code")

// Controller creates, ends and routes commands to live sessions
type Controller struct {
	storage    storage.Storage
	publisher  events.Publisher
	clock      clock.Clock
	random     random.Random
	graceDelay time.Duration
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[model.SessionCode]*Session
	ended    map[model.SessionCode]struct{}
}

// NewController creates a new session Controller
func NewController(
	storage storage.Storage,
	publisher events.Publisher,
	clock clock.Clock,
	random random.Random,
	graceDelay time.Duration,
	logger *slog.Logger,
) *Controller {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if graceDelay <= 0 {
		graceDelay = model.DefaultGraceDelay
	}
	return &Controller{
		storage:    storage,
		publisher:  publisher,
		clock:      clock,
		random:     random,
		graceDelay: graceDelay,
		logger:     logger.With(slog.String("component", "session")),
		sessions:   make(map[model.SessionCode]*Session),
		ended:      make(map[model.SessionCode]struct{}),
	}
}

// CreateSession sets up a session for len(names) players and starts its loop
// Blank names default to "Player N"; colors are assigned by seat.
func (c *Controller) CreateSession(ctx context.Context, names []string) (*model.Session, error) {
	if len(names) < model.MinPlayers || len(names) > model.MaxPlayers {
		return nil, model.ErrInvalidPlayerCount
	}

	players := make([]model.Player, len(names))
	for i, name := range names {
		if isBlank(name) {
			name = fmt.Sprintf("Player %d", i+1)
		}
		normalized, err := model.NormalizePlayerName(name)
		if err != nil {
			return nil, fmt.Errorf("player %d: %w", i+1, err)
		}
		players[i] = model.Player{
			ID:    model.PlayerID(i),
			Name:  normalized,
			Color: model.PlayerColors[i%len(model.PlayerColors)],
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	code, err := c.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	s, err := newSession(code, players, c.graceDelay, c.clock, c.storage, c.publisher, c.logger)
	if err != nil {
		return nil, err
	}
	if err := s.start(ctx); err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	c.sessions[code] = s

	c.logger.Info("session created",
		slog.String("session", string(code)),
		slog.Int("players", len(players)))

	return s.snapshot(), nil
}

// generateCode picks a code not used by a live or stored session
// The caller must hold c.mu.
func (c *Controller) generateCode(ctx context.Context) (model.SessionCode, error) {
	for range maxCodeAttempts {
		code := model.SessionCode(c.random.String(SessionCodeLength, SessionCodeAlphabet))
		if code == "" {
			continue
		}
		if _, live := c.sessions[code]; live {
			continue
		}
		if _, ended := c.ended[code]; ended {
			continue
		}
		exists, err := c.storage.SessionExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrCodeSpaceExhausted
}

// GetSession returns the stored snapshot of a live session
func (c *Controller) GetSession(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	if _, err := c.live(ctx, code); err != nil {
		return nil, err
	}
	return c.storage.GetSession(ctx, code)
}

// EndSession stops a session, discarding its timer state and ledger
func (c *Controller) EndSession(ctx context.Context, code model.SessionCode) error {
	c.mu.Lock()
	s, ok := c.sessions[code]
	if ok {
		delete(c.sessions, code)
		c.ended[code] = struct{}{}
	}
	c.mu.Unlock()

	if !ok {
		_, err := c.live(ctx, code)
		return err
	}
	return c.end(ctx, s, EndReasonEnded)
}

func (c *Controller) end(ctx context.Context, s *Session, reason string) error {
	s.stop()

	err := c.storage.DeleteSession(ctx, s.code)
	event := events.New(s.code, model.EventSessionEnded, c.clock.Now(), model.SessionEndedPayload{Reason: reason})
	if pubErr := c.publisher.Publish(ctx, event); pubErr != nil {
		c.logger.Warn("failed to publish event",
			slog.String("session", string(s.code)),
			slog.String("type", string(model.EventSessionEnded)),
			slog.Any("error", pubErr))
	}

	c.logger.Info("session ended",
		slog.String("session", string(s.code)),
		slog.String("reason", reason))
	return err
}

// Close ends every live session
func (c *Controller) Close(ctx context.Context) error {
	c.mu.Lock()
	sessions := make([]*Session, 0, len(c.sessions))
	for code, s := range c.sessions {
		sessions = append(sessions, s)
		delete(c.sessions, code)
		c.ended[code] = struct{}{}
	}
	c.mu.Unlock()

	var errs []error
	for _, s := range sessions {
		if err := c.end(ctx, s, EndReasonShutdown); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Apply forwards a timer intent to a session
func (c *Controller) Apply(ctx context.Context, code model.SessionCode, intent Intent) (model.TimerState, error) {
	s, err := c.live(ctx, code)
	if err != nil {
		return model.TimerState{}, err
	}
	return s.Apply(ctx, intent)
}

// Start starts or resumes the active player's countdown
func (c *Controller) Start(ctx context.Context, code model.SessionCode) (model.TimerState, error) {
	return c.Apply(ctx, code, IntentStart)
}

// Pause pauses the running countdown
func (c *Controller) Pause(ctx context.Context, code model.SessionCode) (model.TimerState, error) {
	return c.Apply(ctx, code, IntentPause)
}

// Skip ends the current turn and moves to the next player
func (c *Controller) Skip(ctx context.Context, code model.SessionCode) (model.TimerState, error) {
	return c.Apply(ctx, code, IntentSkip)
}

// Reset restores the current player's full turn time
func (c *Controller) Reset(ctx context.Context, code model.SessionCode) (model.TimerState, error) {
	return c.Apply(ctx, code, IntentReset)
}

// AddPoints adjusts a player's points, never below zero
func (c *Controller) AddPoints(ctx context.Context, code model.SessionCode, id model.PlayerID, delta int) (model.Player, error) {
	s, err := c.live(ctx, code)
	if err != nil {
		return model.Player{}, err
	}
	return s.AddPoints(ctx, id, delta)
}

// RenamePlayer changes a player's display name
func (c *Controller) RenamePlayer(ctx context.Context, code model.SessionCode, id model.PlayerID, name string) (model.Player, error) {
	s, err := c.live(ctx, code)
	if err != nil {
		return model.Player{}, err
	}
	return s.RenamePlayer(ctx, id, name)
}

// Standings returns a session's scoreboard
func (c *Controller) Standings(ctx context.Context, code model.SessionCode) ([]ledger.Standing, error) {
	s, err := c.live(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Standings(ctx)
}

// Snapshot reads the current state directly from the session loop
func (c *Controller) Snapshot(ctx context.Context, code model.SessionCode) (*model.Session, error) {
	s, err := c.live(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.Snapshot(ctx)
}

// SessionCount returns the number of live sessions
func (c *Controller) SessionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

// live returns the running session for code
// A snapshot left in storage without a running loop belongs to a session
// that has already ended, for example before a restart.
func (c *Controller) live(ctx context.Context, code model.SessionCode) (*Session, error) {
	c.mu.RLock()
	s, ok := c.sessions[code]
	_, ended := c.ended[code]
	c.mu.RUnlock()
	if ok {
		return s, nil
	}
	if ended {
		return nil, model.ErrSessionClosed
	}

	exists, err := c.storage.SessionExists(ctx, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, model.ErrSessionClosed
	}
	return nil, model.ErrSessionNotFound
}

func isBlank(name string) bool {
	return strings.TrimSpace(name) == ""
}
