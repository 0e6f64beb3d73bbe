package model

import "time"

const (
	// TurnDuration is the length of every turn, in seconds
	TurnDuration = 60

	// TickWarningThreshold is the remaining time at or below which tick alerts fire
	TickWarningThreshold = 10

	MinPlayers = 2
	MaxPlayers = 4

	// DefaultGraceDelay separates an expiry from the automatic turn advance
	DefaultGraceDelay = 1500 * time.Millisecond
)

// RunState is the run state of the turn timer
type RunState string

const (
	RunStateIdle    RunState = "idle"
	RunStateRunning RunState = "running"
	RunStatePaused  RunState = "paused"
)

// TimerState is the observable state of the turn timer
// Remaining is 0 only while the timer is not running
type TimerState struct {
	ActivePlayerIndex int      `json:"active_player_index"`
	Remaining         int      `json:"remaining"`
	RunState          RunState `json:"run_state"`
}

// InitialTimerState returns the state a new session starts with
func InitialTimerState() TimerState {
	return TimerState{
		ActivePlayerIndex: 0,
		Remaining:         TurnDuration,
		RunState:          RunStateIdle,
	}
}

// AlertKind identifies an alert for the presentation layer to sound
type AlertKind string

const (
	AlertTick    AlertKind = "tick"
	AlertExpired AlertKind = "expired"
)

// AlertEvent is emitted once per triggering condition and is never stored
type AlertEvent struct {
	Kind AlertKind `json:"kind"`
}
