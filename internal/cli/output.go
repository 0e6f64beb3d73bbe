package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == OutputJSON {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == OutputJSON {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == OutputJSON {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Session:
		o.printSession(v)
	case Player:
		o.printPlayer(v)
	case TimerResult:
		o.printTimer(v.Timer)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Color  string `json:"color"`
	Points int    `json:"points"`
}

// Timer response type
type Timer struct {
	ActivePlayerIndex int    `json:"active_player_index"`
	Remaining         int    `json:"remaining"`
	RunState          string `json:"run_state"`
}

// TimerResult wraps the timer returned by intents
type TimerResult struct {
	Timer Timer `json:"timer"`
}

// Standing response type
type Standing struct {
	PlayerID int `json:"player_id"`
	Points   int `json:"points"`
}

// Session response type
type Session struct {
	Code         string     `json:"code"`
	Players      []Player   `json:"players"`
	Timer        Timer      `json:"timer"`
	ActivePlayer *Player    `json:"active_player,omitempty"`
	Standings    []Standing `json:"standings,omitempty"`
	GraceDelayMS int64      `json:"grace_delay_ms"`
}

// HealthResult response type
type HealthResult struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func (o *Output) printSession(s Session) {
	fmt.Fprintf(o.w, "Session: %s\n", s.Code)
	o.printTimer(s.Timer)
	if s.ActivePlayer != nil {
		fmt.Fprintf(o.w, "Active: %s\n", s.ActivePlayer.Name)
	}

	fmt.Fprintf(o.w, "Players (%d):\n", len(s.Players))
	for _, p := range s.Players {
		marker := " "
		if p.ID == s.Timer.ActivePlayerIndex {
			marker = ">"
		}
		fmt.Fprintf(o.w, " %s %d. %s [%s] %d pts\n", marker, p.ID, p.Name, p.Color, p.Points)
	}

	if len(s.Standings) > 0 {
		names := make(map[int]string, len(s.Players))
		for _, p := range s.Players {
			names[p.ID] = p.Name
		}
		rows := make([]string, len(s.Standings))
		for i, st := range s.Standings {
			rows[i] = fmt.Sprintf("%s %d", names[st.PlayerID], st.Points)
		}
		fmt.Fprintf(o.w, "Standings: %s\n", strings.Join(rows, ", "))
	}
}

func (o *Output) printTimer(t Timer) {
	fmt.Fprintf(o.w, "Timer: %s (%s) player %d\n", formatRemaining(t.Remaining), t.RunState, t.ActivePlayerIndex)
}

func (o *Output) printPlayer(p Player) {
	fmt.Fprintf(o.w, "Player %d: %s [%s]\n", p.ID, p.Name, p.Color)
	fmt.Fprintf(o.w, "Points: %d\n", p.Points)
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	fmt.Fprintf(o.w, "Sessions: %d\n", h.Sessions)
}

// formatRemaining renders seconds as m:ss
func formatRemaining(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
