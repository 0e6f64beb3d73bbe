package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/turntimer/internal/model"
)

func TestAlertsFor(t *testing.T) {
	tick := []model.AlertEvent{{Kind: model.AlertTick}}
	expired := []model.AlertEvent{{Kind: model.AlertExpired}}

	tests := []struct {
		name     string
		before   int
		after    int
		expected []model.AlertEvent
	}{
		{name: "entering warning window", before: 11, after: 10, expected: tick},
		{name: "inside warning window", before: 5, after: 4, expected: tick},
		{name: "last second before expiry", before: 2, after: 1, expected: tick},
		{name: "expiry", before: 1, after: 0, expected: expired},
		{name: "expiry from a jump", before: 30, after: 0, expected: expired},
		{name: "already expired", before: 0, after: 0, expected: nil},
		{name: "outside warning window", before: 45, after: 44, expected: nil},
		{name: "just above warning window", before: 12, after: 11, expected: nil},
		{name: "time restored", before: 0, after: 60, expected: nil},
		{name: "no change inside window", before: 7, after: 7, expected: nil},
		{name: "increase inside window", before: 3, after: 8, expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AlertsFor(tt.before, tt.after))
		})
	}
}

func TestAlertsForNeverEmitsBoth(t *testing.T) {
	for before := 0; before <= model.TurnDuration; before++ {
		for after := 0; after <= model.TurnDuration; after++ {
			assert.LessOrEqual(t, len(AlertsFor(before, after)), 1, "before=%d after=%d", before, after)
		}
	}
}
