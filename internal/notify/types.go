// Package notify delivers workout events to notifier plugins for the RepCoach exercise tracking system.
package notify

import (
	"encoding/json"
	"time"
)

// Event types dispatched to notifier plugins.
const (
	// EventWorkoutCompleted fires after a workout session is saved.
	EventWorkoutCompleted = "workout.completed"
	// EventAchievementUnlocked fires for each newly unlocked achievement.
	EventAchievementUnlocked = "achievement.unlocked"
	// EventLevelUp fires when the user reaches a new level.
	EventLevelUp = "level.up"
)

// Manifest describes a notifier plugin's metadata and subscriptions.
type Manifest struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Executable  string   `json:"executable"`
	Events      []string `json:"events"`
}

// Event is the payload sent to a plugin for delivery.
type Event struct {
	Type  string    `json:"type"`
	Title string    `json:"title"`
	Body  string    `json:"body"`
	At    time.Time `json:"at"`
}

// Response represents the response from a plugin delivery.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Plugin represents a discovered plugin with its manifest and location.
type Plugin struct {
	Manifest   Manifest
	Path       string
	Executable string
}

// Handles reports whether the plugin subscribes to the given event type.
// A plugin with no events listed receives every event.
func (p *Plugin) Handles(eventType string) bool {
	if len(p.Manifest.Events) == 0 {
		return true
	}
	for _, e := range p.Manifest.Events {
		if e == eventType {
			return true
		}
	}
	return false
}
