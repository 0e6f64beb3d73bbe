package ledger

import (
	"math"
	"sort"

	"github.com/mcoot/turntimer/internal/model"
)

// Standing is one row of the scoreboard
type Standing struct {
	PlayerID model.PlayerID `json:"player_id"`
	Points   int            `json:"points"`
}

// Ledger tracks points per player for the lifetime of a session
// Points never go below zero. It is not safe for concurrent use.
type Ledger struct {
	points map[model.PlayerID]int
	order  []model.PlayerID
}

// New creates a ledger with every player at zero points
func New(ids []model.PlayerID) *Ledger {
	l := &Ledger{
		points: make(map[model.PlayerID]int, len(ids)),
		order:  make([]model.PlayerID, 0, len(ids)),
	}
	for _, id := range ids {
		if _, ok := l.points[id]; ok {
			continue
		}
		l.points[id] = 0
		l.order = append(l.order, id)
	}
	return l
}

// Add applies delta to the player's points, clamping at zero, and returns the new total
// Totals saturate at math.MaxInt.
func (l *Ledger) Add(id model.PlayerID, delta int) (int, error) {
	current, ok := l.points[id]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	// current is never negative, so only the positive direction can wrap
	next := math.MaxInt
	if delta <= 0 || current <= math.MaxInt-delta {
		next = max(0, current+delta)
	}
	l.points[id] = next
	return next, nil
}

// Points returns the player's current points
func (l *Ledger) Points(id model.PlayerID) (int, error) {
	points, ok := l.points[id]
	if !ok {
		return 0, model.ErrPlayerNotFound
	}
	return points, nil
}

// Standings returns every player ordered by points, highest first
// Ties are broken by player ID
func (l *Ledger) Standings() []Standing {
	standings := make([]Standing, 0, len(l.order))
	for _, id := range l.order {
		standings = append(standings, Standing{PlayerID: id, Points: l.points[id]})
	}
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].Points != standings[j].Points {
			return standings[i].Points > standings[j].Points
		}
		return standings[i].PlayerID < standings[j].PlayerID
	})
	return standings
}
