package request

import (
	"errors"

	"github.com/mcoot/turntimer/internal/model"
)

// ErrPlayerCountMismatch is returned when player_count and names disagree
var ErrPlayerCountMismatch = errors.New("player_count does not match the number of names")

// CreateSessionRequest is the request body for creating a session
// Names, when given, sets the player count; blank entries get default names.
// PlayerCount may accompany names only if it agrees with them.
type CreateSessionRequest struct {
	PlayerCount int      `json:"player_count,omitempty"`
	Names       []string `json:"names,omitempty"`
}

// Validate rejects a request whose player_count contradicts its names
func (r CreateSessionRequest) Validate() error {
	if len(r.Names) > 0 && r.PlayerCount != 0 && r.PlayerCount != len(r.Names) {
		return ErrPlayerCountMismatch
	}
	return nil
}

// PlayerNames resolves the request into one name per seat
// An out of range count resolves to no seats and is rejected downstream.
func (r CreateSessionRequest) PlayerNames() []string {
	if len(r.Names) > 0 {
		return r.Names
	}
	if r.PlayerCount < model.MinPlayers || r.PlayerCount > model.MaxPlayers {
		return nil
	}
	return make([]string, r.PlayerCount)
}

// AddPointsRequest is the request body for adjusting a player's points
type AddPointsRequest struct {
	Delta *int `json:"delta"`
}

// RenamePlayerRequest is the request body for renaming a player
type RenamePlayerRequest struct {
	Name string `json:"name"`
}
