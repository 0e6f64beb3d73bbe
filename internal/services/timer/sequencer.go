package timer

import "github.com/mcoot/turntimer/internal/model"

// Next returns the index of the player after current, wrapping around
func Next(current, count int) (int, error) {
	if count < model.MinPlayers {
		return 0, model.ErrInvalidPlayerCount
	}
	next := (current + 1) % count
	if next < 0 {
		next += count
	}
	return next, nil
}
