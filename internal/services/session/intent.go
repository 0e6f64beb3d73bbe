package session

import (
	"errors"
	"fmt"

	"github.com/mcoot/turntimer/internal/services/timer"
)

// Intent is a user command addressed to the turn timer
type Intent string

const (
	IntentStart Intent = "start"
	IntentPause Intent = "pause"
	IntentSkip  Intent = "skip"
	IntentReset Intent = "reset"
)

// ErrUnknownIntent is returned for an intent name that is not recognised
var ErrUnknownIntent = errors.New("unknown timer intent")

// ParseIntent validates an intent name
func ParseIntent(name string) (Intent, error) {
	switch Intent(name) {
	case IntentStart, IntentPause, IntentSkip, IntentReset:
		return Intent(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, name)
}

// apply runs the intent against the engine
func (i Intent) apply(e *timer.Engine) (timer.Outcome, error) {
	switch i {
	case IntentStart:
		return e.Start(), nil
	case IntentPause:
		return e.Pause(), nil
	case IntentSkip:
		return e.Skip(), nil
	case IntentReset:
		return e.Reset(), nil
	}
	return timer.Outcome{}, fmt.Errorf("%w: %q", ErrUnknownIntent, string(i))
}
