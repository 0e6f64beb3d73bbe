package timer

import "github.com/mcoot/turntimer/internal/model"

// AlertsFor decides which alerts fire when the remaining time moves from before to after
// An expiry emits only the expired alert, never a tick alongside it
func AlertsFor(before, after int) []model.AlertEvent {
	switch {
	case after == 0 && before > 0:
		return []model.AlertEvent{{Kind: model.AlertExpired}}
	case after > 0 && after <= model.TickWarningThreshold && after < before:
		return []model.AlertEvent{{Kind: model.AlertTick}}
	default:
		return nil
	}
}
