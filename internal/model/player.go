package model

import "strings"

// PlayerID identifies a player within a session, assigned 0..n-1 at setup
type PlayerID int

// Color is an opaque presentation token assigned to a player at setup
type Color string

// MaxPlayerNameLength bounds a trimmed player name
const MaxPlayerNameLength = 20

// PlayerColors is the fixed palette, assigned by player index
var PlayerColors = []Color{"blue", "green", "orange", "purple"}

// Player represents a session participant
// ID and Color never change; Points are only written by the score ledger
type Player struct {
	ID     PlayerID `json:"id"`
	Name   string   `json:"name"`
	Color  Color    `json:"color"`
	Points int      `json:"points"`
}

// NormalizePlayerName trims the name and checks its length
func NormalizePlayerName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len([]rune(trimmed)) > MaxPlayerNameLength {
		return "", ErrInvalidPlayerName
	}
	return trimmed, nil
}
