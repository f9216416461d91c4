// Package signal provides synthetic accelerometer traces for the RepCoach
// exercise tracking system.
package signal

import (
	"fmt"

	"github.com/ayusman/repcoach/internal/exercise"
)

// Sample is a single three-axis accelerometer reading. T is the offset in
// seconds from the start of the trace; X, Y, Z are in m/s².
type Sample struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Trace is a fixed-rate accelerometer recording of one exercise set.
type Trace struct {
	Exercise     exercise.Type `json:"exercise"`
	SampleRateHz float64       `json:"sample_rate_hz"`
	Samples      []Sample      `json:"samples"`
}

// Len returns the number of samples in the trace.
func (t *Trace) Len() int {
	return len(t.Samples)
}

// Duration returns the trace length in seconds.
func (t *Trace) Duration() float64 {
	if t.SampleRateHz <= 0 {
		return 0
	}
	return float64(len(t.Samples)) / t.SampleRateHz
}

// ValidationError reports a request parameter outside its allowed range.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// InsufficientDataError reports a trace too short to process.
type InsufficientDataError struct {
	Got  int
	Want int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data: got %d samples, need at least %d", e.Got, e.Want)
}
