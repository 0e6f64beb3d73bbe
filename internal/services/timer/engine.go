package timer

import (
	"github.com/mcoot/turntimer/internal/model"
)

// Outcome describes the effect of one engine operation
type Outcome struct {
	Before model.TimerState
	After  model.TimerState
	Alerts []model.AlertEvent

	// Applied is false when the operation was not legal in the current state
	// and left the engine untouched
	Applied bool

	// Armed is the token of an auto-advance armed by this operation, or 0
	Armed uint64

	// Disarmed is true when this operation cancelled a pending auto-advance
	Disarmed bool
}

// Changed reports whether the observable timer state differs
func (o Outcome) Changed() bool {
	return o.Before != o.After
}

// Engine is the turn timer state machine
// It is not safe for concurrent use: callers serialize every operation
type Engine struct {
	playerCount int
	state       model.TimerState

	// armed holds the token of the pending auto-advance, 0 when none is pending
	armed     uint64
	lastToken uint64
}

// NewEngine creates an engine for a session with the given number of players
func NewEngine(playerCount int) (*Engine, error) {
	if playerCount < model.MinPlayers || playerCount > model.MaxPlayers {
		return nil, model.ErrInvalidPlayerCount
	}
	return &Engine{
		playerCount: playerCount,
		state:       model.InitialTimerState(),
	}, nil
}

// State returns the current timer state
func (e *Engine) State() model.TimerState {
	return e.state
}

// PlayerCount returns the number of players taking turns
func (e *Engine) PlayerCount() int {
	return e.playerCount
}

// PendingAdvance returns the token of the armed auto-advance, or 0 if none
func (e *Engine) PendingAdvance() uint64 {
	return e.armed
}

// Start runs the countdown from idle or resumes it from paused
// It has no effect while running or when no time remains
func (e *Engine) Start() Outcome {
	before := e.state
	if e.state.Remaining == 0 || e.state.RunState == model.RunStateRunning {
		return e.noop(before)
	}
	e.state.RunState = model.RunStateRunning
	return Outcome{Before: before, After: e.state, Applied: true}
}

// Pause suspends a running countdown, keeping the remaining time
func (e *Engine) Pause() Outcome {
	before := e.state
	if e.state.RunState != model.RunStateRunning {
		return e.noop(before)
	}
	e.state.RunState = model.RunStatePaused
	return Outcome{Before: before, After: e.state, Applied: true}
}

// Tick counts down one second while running
// The last second stops the timer, emits the expiry and arms the auto-advance
func (e *Engine) Tick() Outcome {
	before := e.state
	if e.state.RunState != model.RunStateRunning {
		return e.noop(before)
	}

	e.state.Remaining--
	outcome := Outcome{Before: before, Applied: true}
	if e.state.Remaining == 0 {
		e.state.RunState = model.RunStateIdle
		e.lastToken++
		e.armed = e.lastToken
		outcome.Armed = e.armed
	}
	outcome.After = e.state
	outcome.Alerts = AlertsFor(before.Remaining, e.state.Remaining)
	return outcome
}

// Skip ends the current turn from any state and moves to the next player
// The new turn is left idle: a manual skip never starts the next countdown
func (e *Engine) Skip() Outcome {
	before := e.state
	disarmed := e.disarm()
	e.advance()
	e.state.RunState = model.RunStateIdle
	return Outcome{Before: before, After: e.state, Applied: true, Disarmed: disarmed}
}

// Reset restores the current player's full turn time without advancing
func (e *Engine) Reset() Outcome {
	before := e.state
	disarmed := e.disarm()
	e.state.Remaining = model.TurnDuration
	e.state.RunState = model.RunStateIdle
	return Outcome{Before: before, After: e.state, Applied: true, Disarmed: disarmed}
}

// AutoAdvance fires the deferred advance armed by an expiry
// A token that is no longer armed lost the race to a skip or reset and is discarded
func (e *Engine) AutoAdvance(token uint64) Outcome {
	before := e.state
	if token == 0 || token != e.armed {
		return e.noop(before)
	}
	e.armed = 0
	e.advance()
	e.state.RunState = model.RunStateRunning
	return Outcome{Before: before, After: e.state, Applied: true}
}

func (e *Engine) advance() {
	// playerCount is validated at construction, so Next cannot fail here
	next, _ := Next(e.state.ActivePlayerIndex, e.playerCount)
	e.state.ActivePlayerIndex = next
	e.state.Remaining = model.TurnDuration
}

func (e *Engine) disarm() bool {
	if e.armed == 0 {
		return false
	}
	e.armed = 0
	return true
}

func (e *Engine) noop(state model.TimerState) Outcome {
	return Outcome{Before: state, After: state}
}
