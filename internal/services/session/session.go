package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcoot/turntimer/internal/dependencies/clock"
	"github.com/mcoot/turntimer/internal/events"
	"github.com/mcoot/turntimer/internal/model"
	"github.com/mcoot/turntimer/internal/services/ledger"
	"github.com/mcoot/turntimer/internal/services/timer"
	"github.com/mcoot/turntimer/internal/storage"
)

// tickPeriod is the countdown resolution
const tickPeriod = time.Second

// Session owns the engine, ledger and roster of one live session
// A single goroutine applies every change: user intents, clock ticks, the
// deferred auto-advance and roster or ledger edits all arrive as commands.
type Session struct {
	code       model.SessionCode
	graceDelay time.Duration
	createdAt  time.Time
	updatedAt  time.Time

	// Loop-owned state
	engine  *timer.Engine
	ledger  *ledger.Ledger
	players []model.Player
	ticker  clockwork.Ticker
	ticks   <-chan time.Time
	pending clockwork.Timer

	clock     clock.Clock
	storage   storage.Storage
	publisher events.Publisher
	logger    *slog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	commands chan func()
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newSession(
	code model.SessionCode,
	players []model.Player,
	graceDelay time.Duration,
	clock clock.Clock,
	storage storage.Storage,
	publisher events.Publisher,
	logger *slog.Logger,
) (*Session, error) {
	engine, err := timer.NewEngine(len(players))
	if err != nil {
		return nil, err
	}

	ids := make([]model.PlayerID, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}

	ctx, cancel := context.WithCancel(context.Background())
	now := clock.Now()
	return &Session{
		code:       code,
		graceDelay: graceDelay,
		createdAt:  now,
		updatedAt:  now,
		engine:     engine,
		ledger:     ledger.New(ids),
		players:    players,
		clock:      clock,
		storage:    storage,
		publisher:  publisher,
		logger:     logger.With(slog.String("session", string(code))),
		ctx:        ctx,
		cancel:     cancel,
		commands:   make(chan func()),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}, nil
}

// Code returns the session code
func (s *Session) Code() model.SessionCode {
	return s.code
}

// start stores the first snapshot, announces the session and starts the loop
func (s *Session) start(ctx context.Context) error {
	snapshot := s.snapshot()
	if err := s.storage.SaveSession(ctx, snapshot); err != nil {
		return err
	}
	s.publish(model.EventSessionStarted, model.SessionStartedPayload{
		Players: snapshot.Players,
		Timer:   snapshot.Timer,
	})
	go s.run()
	return nil
}

func (s *Session) run() {
	defer close(s.stopped)
	defer s.stopTicker()
	defer s.cancelPending()

	s.logger.Info("session loop started")
	for {
		select {
		case cmd := <-s.commands:
			cmd()
		case <-s.ticks:
			s.commit(s.engine.Tick())
		case <-s.done:
			s.logger.Info("session loop stopped")
			return
		}
	}
}

// stop ends the loop and waits for it to exit
func (s *Session) stop() {
	s.stopOnce.Do(func() { close(s.done) })
	<-s.stopped
	s.cancel()
}

// exec runs fn on the loop and waits for it to finish
func (s *Session) exec(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}

	select {
	case s.commands <- cmd:
	case <-s.done:
		return model.ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	// An accepted command always runs to completion
	<-finished
	return nil
}

// enqueue hands fn to the loop without waiting; it is dropped once the loop has stopped
func (s *Session) enqueue(fn func()) {
	select {
	case s.commands <- fn:
	case <-s.done:
	}
}

// Apply runs a timer intent and returns the resulting timer state
func (s *Session) Apply(ctx context.Context, intent Intent) (model.TimerState, error) {
	var (
		state    model.TimerState
		applyErr error
	)
	err := s.exec(ctx, func() {
		outcome, err := intent.apply(s.engine)
		if err != nil {
			applyErr = err
			return
		}
		s.commit(outcome)
		state = s.engine.State()
	})
	if err != nil {
		return model.TimerState{}, err
	}
	return state, applyErr
}

// AddPoints adjusts a player's points through the ledger
func (s *Session) AddPoints(ctx context.Context, id model.PlayerID, delta int) (model.Player, error) {
	var (
		player   model.Player
		applyErr error
	)
	err := s.exec(ctx, func() {
		p := s.player(id)
		if p == nil {
			applyErr = model.ErrPlayerNotFound
			return
		}
		points, err := s.ledger.Add(id, delta)
		if err != nil {
			applyErr = err
			return
		}
		p.Points = points
		player = *p
		s.touch()
		s.save()
		s.publish(model.EventPointsChanged, model.PointsChangedPayload{
			PlayerID: id,
			Delta:    delta,
			Points:   points,
		})
	})
	if err != nil {
		return model.Player{}, err
	}
	return player, applyErr
}

// RenamePlayer changes a player's display name
func (s *Session) RenamePlayer(ctx context.Context, id model.PlayerID, name string) (model.Player, error) {
	normalized, err := model.NormalizePlayerName(name)
	if err != nil {
		return model.Player{}, err
	}

	var (
		player   model.Player
		applyErr error
	)
	err = s.exec(ctx, func() {
		p := s.player(id)
		if p == nil {
			applyErr = model.ErrPlayerNotFound
			return
		}
		oldName := p.Name
		if oldName == normalized {
			player = *p
			return
		}
		p.Name = normalized
		player = *p
		s.touch()
		s.save()
		s.publish(model.EventPlayerRenamed, model.PlayerRenamedPayload{
			PlayerID: id,
			OldName:  oldName,
			NewName:  normalized,
		})
	})
	if err != nil {
		return model.Player{}, err
	}
	return player, applyErr
}

// Standings returns the scoreboard, highest points first
func (s *Session) Standings(ctx context.Context) ([]ledger.Standing, error) {
	var standings []ledger.Standing
	if err := s.exec(ctx, func() { standings = s.ledger.Standings() }); err != nil {
		return nil, err
	}
	return standings, nil
}

// Snapshot returns the current observable state
func (s *Session) Snapshot(ctx context.Context) (*model.Session, error) {
	var snapshot *model.Session
	if err := s.exec(ctx, func() { snapshot = s.snapshot() }); err != nil {
		return nil, err
	}
	return snapshot, nil
}

// commit applies the side effects of an engine outcome
// Must only be called on the loop.
func (s *Session) commit(outcome timer.Outcome) {
	if outcome.Disarmed {
		s.cancelPending()
	}
	if !outcome.Applied {
		s.logger.Debug("timer transition ignored",
			slog.String("run_state", string(outcome.Before.RunState)),
			slog.Int("remaining", outcome.Before.Remaining))
		return
	}
	if outcome.Armed != 0 {
		s.armAutoAdvance(outcome.Armed)
	}
	s.syncTicker()

	if !outcome.Changed() {
		return
	}
	s.touch()
	s.save()
	s.publish(model.EventTimerChanged, model.TimerChangedPayload{
		Timer:    outcome.After,
		Previous: outcome.Before,
	})
	for _, alert := range outcome.Alerts {
		s.publish(model.EventAlert, model.AlertPayload{
			Alert:             alert,
			ActivePlayerIndex: outcome.After.ActivePlayerIndex,
			Remaining:         outcome.After.Remaining,
		})
	}
}

// armAutoAdvance schedules the deferred advance for an expired turn
func (s *Session) armAutoAdvance(token uint64) {
	s.cancelPending()
	s.pending = s.clock.AfterFunc(s.graceDelay, func() {
		s.enqueue(func() { s.autoAdvance(token) })
	})
	s.logger.Debug("auto-advance armed", slog.Duration("grace_delay", s.graceDelay))
}

// autoAdvance runs a fired grace timer on the loop
// A stale token leaves the newer pending timer in place.
func (s *Session) autoAdvance(token uint64) {
	if token == s.engine.PendingAdvance() {
		s.pending = nil
	}
	s.commit(s.engine.AutoAdvance(token))
}

func (s *Session) cancelPending() {
	if s.pending == nil {
		return
	}
	s.pending.Stop()
	s.pending = nil
}

// syncTicker runs the tick source exactly while the engine is running
func (s *Session) syncTicker() {
	running := s.engine.State().RunState == model.RunStateRunning
	switch {
	case running && s.ticker == nil:
		s.ticker = s.clock.NewTicker(tickPeriod)
		s.ticks = s.ticker.Chan()
	case !running && s.ticker != nil:
		s.stopTicker()
	}
}

func (s *Session) stopTicker() {
	if s.ticker == nil {
		return
	}
	s.ticker.Stop()
	s.ticker = nil
	s.ticks = nil
}

func (s *Session) player(id model.PlayerID) *model.Player {
	for i := range s.players {
		if s.players[i].ID == id {
			return &s.players[i]
		}
	}
	return nil
}

func (s *Session) touch() {
	s.updatedAt = s.clock.Now()
}

func (s *Session) snapshot() *model.Session {
	players := make([]model.Player, len(s.players))
	copy(players, s.players)
	return &model.Session{
		Code:       s.code,
		Players:    players,
		Timer:      s.engine.State(),
		GraceDelay: s.graceDelay,
		CreatedAt:  s.createdAt,
		UpdatedAt:  s.updatedAt,
	}
}

func (s *Session) save() {
	if err := s.storage.SaveSession(s.ctx, s.snapshot()); err != nil {
		s.logger.Error("failed to save session snapshot", slog.Any("error", err))
	}
}

func (s *Session) publish(eventType model.EventType, payload any) {
	event := events.New(s.code, eventType, s.clock.Now(), payload)
	if err := s.publisher.Publish(s.ctx, event); err != nil {
		s.logger.Warn("failed to publish event",
			slog.String("type", string(eventType)),
			slog.Any("error", err))
	}
}
