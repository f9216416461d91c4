// Package main provides a desktop notification plugin.
// It shows workout events as native notifications via notify-send on
// Linux and AppleScript on macOS.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Event represents the input from the plugin executor.
type Event struct {
	Type  string    `json:"type"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// Response represents the output to the plugin executor.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func main() {
	// Read event from stdin
	var ev Event
	if err := json.NewDecoder(os.Stdin).Decode(&ev); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode event: %v", err))
		return
	}

	if ev.Title == "" {
		writeErrorResponse("event title is required")
		return
	}

	// Show the notification
	if err := show(ev.Title, ev.Body); err != nil {
		writeErrorResponse(fmt.Sprintf("event %s failed: %v", ev.Type, err))
		return
	}

	// Write success response
	writeSuccessResponse()
}

// show displays a desktop notification using the platform's native tool.
func show(title, body string) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %s with title %s", appleQuote(body), appleQuote(title))
		return run("osascript", "-e", script)
	case "linux":
		return run("notify-send", "--app-name=RepCoach", title, body)
	default:
		return fmt.Errorf("no notification tool for %s", runtime.GOOS)
	}
}

// appleQuote wraps a string as an AppleScript literal.
func appleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	resp := Response{
		Success: false,
		Error:   errMsg,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// writeSuccessResponse writes a success response to stdout.
func writeSuccessResponse() {
	resp := Response{
		Success: true,
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// run executes a notification command and returns any error.
func run(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, string(output))
	}
	return nil
}
