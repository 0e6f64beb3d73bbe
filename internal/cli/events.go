package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// Alert kinds carried by alert events
const (
	alertTick    = "tick"
	alertExpired = "expired"
)

// AlertSink turns alert events into something the user notices
type AlertSink interface {
	Alert(kind string) error
}

// BellSink rings the terminal bell once per tick and three times on expiry
type BellSink struct {
	w io.Writer
}

// NewBellSink creates a BellSink writing to w
func NewBellSink(w io.Writer) *BellSink {
	return &BellSink{w: w}
}

// Alert writes BEL characters for the alert kind
func (b *BellSink) Alert(kind string) error {
	var bells string
	switch kind {
	case alertTick:
		bells = "\a"
	case alertExpired:
		bells = "\a\a\a"
	default:
		return nil
	}
	_, err := io.WriteString(b.w, bells)
	return err
}

func newEventsCmd() *cobra.Command {
	var jsonOutput bool
	var bell bool

	cmd := &cobra.Command{
		Use:   "events <code>",
		Short: "Stream live events from a session",
		Long: `Connect to the session's SSE endpoint and stream events in real-time.

Events include:
  - snapshot: Session state when the stream opens
  - session_started: Session was created
  - timer_changed: Timer started, paused, ticked, skipped or reset
  - alert: Countdown tick in the last 10 seconds, or turn expired
  - points_changed: A player's points changed
  - player_renamed: A player was renamed
  - session_ended: Session ended, the stream closes

With --bell, alerts ring the terminal bell.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code := args[0]

			var sink AlertSink
			if bell {
				sink = NewBellSink(cmd.ErrOrStderr())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return streamEvents(ctx, cmd.OutOrStdout(), code, jsonOutput, sink)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&bell, "bell", false, "Ring the terminal bell on alerts")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

// alertEvent is the subset of an alert event the sink needs
type alertEvent struct {
	Payload struct {
		Alert struct {
			Kind string `json:"kind"`
		} `json:"alert"`
	} `json:"payload"`
}

func streamEvents(ctx context.Context, w io.Writer, code string, jsonOutput bool, sink AlertSink) error {
	url := client.URL(fmt.Sprintf("/api/v1/sessions/%s/events", code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	// Make request
	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Code != "" {
			return fmt.Errorf("%s", errResp.Error.String())
		}
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Fprintf(w, "Connected to session %s\n", code)
	}

	err = readSSE(resp.Body, func(event, data string) {
		printEvent(w, event, data, jsonOutput)
		if event == "alert" && sink != nil {
			var alert alertEvent
			if err := json.Unmarshal([]byte(data), &alert); err == nil {
				_ = sink.Alert(alert.Payload.Alert.Kind)
			}
		}
	})
	if err != nil {
		// Context cancellation is expected
		if ctx.Err() != nil {
			if !jsonOutput {
				fmt.Fprintln(w, "\nDisconnected")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Fprintln(w, "Disconnected")
	}
	return nil
}

// readSSE parses a server-sent event stream, calling handle once per named event
func readSSE(r io.Reader, handle func(event, data string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "event: ") {
			currentEvent = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		} else if line == "" {
			// End of event
			if currentEvent != "" {
				handle(currentEvent, strings.Join(dataLines, "\n"))
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	return scanner.Err()
}

func printEvent(w io.Writer, event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Fprintln(w, string(jsonData))
	} else {
		timestamp := now.Format("2006-01-02 15:04:05")
		// Truncate data if it's too long for display
		displayData := data
		if len(displayData) > 100 {
			displayData = displayData[:100] + "..."
		}
		// Remove newlines for cleaner display
		displayData = strings.ReplaceAll(displayData, "\n", " ")
		fmt.Fprintf(w, "[%s] %s: %s\n", timestamp, event, displayData)
	}
}
