// Package analyze turns accelerometer traces into repetition counts and
// form quality scores for the RepCoach exercise tracking system.
package analyze

import (
	"math"

	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/signal"
)

// Score weights
const (
	// weightAmplitude rewards consistent peak heights across reps
	weightAmplitude = 0.4
	// weightRegularity rewards an even rhythm between reps
	weightRegularity = 0.4
	// weightCadence rewards pacing close to the exercise target
	weightCadence = 0.2
)

// RepSegment is the sample index range of one repetition. Indices are
// inclusive; segments never overlap and run in time order.
type RepSegment struct {
	StartIndex int `json:"start_index"`
	EndIndex   int `json:"end_index"`
}

// Result is the outcome of analyzing one exercise set.
type Result struct {
	Exercise    exercise.Type `json:"exercise"`
	Repetitions int           `json:"repetitions"`
	DurationSec float64       `json:"duration_sec"`

	// Score and Regularity are 0-100. Speed is seconds per repetition;
	// with zero reps it equals DurationSec.
	Score      float64 `json:"score"`
	Regularity float64 `json:"regularity"`
	Speed      float64 `json:"speed"`

	Segments []RepSegment `json:"segments,omitempty"`

	// AIDetected and Confidence are filled in by the session when the
	// classifier chose the exercise.
	AIDetected bool     `json:"ai_detected"`
	Confidence *float64 `json:"ai_confidence,omitempty"`
}

// Config tunes the analyzer.
type Config struct {
	// SmoothingWindow is the moving-average width in samples.
	SmoothingWindow int
	// PeakThresholdFactor is the stddev multiple above the mean a peak
	// must clear.
	PeakThresholdFactor float64
	// RefractorySec is the minimum time between counted peaks.
	RefractorySec float64
	// MinSamples is the shortest trace that can be analyzed.
	MinSamples int
}

// DefaultConfig returns the analyzer tuning used in production.
func DefaultConfig() Config {
	return Config{
		SmoothingWindow:     5,
		PeakThresholdFactor: 1.0,
		RefractorySec:       0.3,
		MinSamples:          10,
	}
}

// Analyzer counts repetitions and scores movement quality. It is stateless
// and safe for concurrent use.
type Analyzer struct {
	config Config
}

// NewAnalyzer creates an Analyzer, filling zero config fields with
// defaults.
func NewAnalyzer(config Config) *Analyzer {
	def := DefaultConfig()
	if config.SmoothingWindow <= 0 {
		config.SmoothingWindow = def.SmoothingWindow
	}
	if config.PeakThresholdFactor <= 0 {
		config.PeakThresholdFactor = def.PeakThresholdFactor
	}
	if config.RefractorySec <= 0 {
		config.RefractorySec = def.RefractorySec
	}
	if config.MinSamples <= 0 {
		config.MinSamples = def.MinSamples
	}
	return &Analyzer{config: config}
}

// Analyze counts repetitions in a trace and scores the set.
//
// Algorithm:
// 1. Magnitude series from the three axes
// 2. Moving-average smoothing
// 3. Peak detection (threshold, neighbor window, refractory)
// 4. Regularity from the spread of inter-peak intervals
// 5. Score = weighted blend of amplitude consistency, regularity and
//    cadence closeness, clamped to [0,100]
func (a *Analyzer) Analyze(trace *signal.Trace, ex exercise.Type) (*Result, error) {
	if trace == nil || trace.Len() < a.config.MinSamples {
		got := 0
		if trace != nil {
			got = trace.Len()
		}
		return nil, &signal.InsufficientDataError{Got: got, Want: a.config.MinSamples}
	}

	profile, ok := exercise.ProfileFor(ex)
	if !ok {
		return nil, &signal.ValidationError{
			Field:   "exercise",
			Message: "no motion profile for " + string(ex),
		}
	}

	smoothed := SmoothMovingAverage(Magnitude(trace), a.config.SmoothingWindow)
	peaks := DetectPeaks(smoothed, trace.SampleRateHz, a.config.PeakThresholdFactor, a.config.RefractorySec)

	duration := trace.Duration()
	result := &Result{
		Exercise:    ex,
		Repetitions: len(peaks),
		DurationSec: duration,
		Segments:    Segments(peaks, trace.Len()),
	}

	if len(peaks) == 0 {
		result.Speed = duration
		return result, nil
	}

	result.Speed = duration / float64(len(peaks))
	result.Regularity = regularity(peaks, trace.SampleRateHz)

	heights := make([]float64, len(peaks))
	for i, p := range peaks {
		heights[i] = smoothed[p]
	}

	score := weightAmplitude*amplitudeConsistency(heights) +
		weightRegularity*result.Regularity +
		weightCadence*cadenceCloseness(result.Speed, profile.TargetCadenceSec)
	result.Score = clampScore(math.Round(score))

	return result, nil
}

// regularity is 100*(1 - stddev/mean) of the inter-peak intervals, floored
// at 0. A single peak has no intervals and counts as perfectly regular.
func regularity(peaks []int, rateHz float64) float64 {
	if len(peaks) <= 1 {
		return 100
	}

	intervals := make([]float64, len(peaks)-1)
	for i := 1; i < len(peaks); i++ {
		intervals[i-1] = float64(peaks[i]-peaks[i-1]) / rateHz
	}

	mean, stddev := meanStddev(intervals)
	if mean == 0 {
		return 0
	}
	return 100 * math.Max(0, 1-stddev/mean)
}

// amplitudeConsistency is 100*(1 - stddev/mean) of the peak heights,
// floored at 0. Lower height spread never lowers the value.
func amplitudeConsistency(heights []float64) float64 {
	mean, stddev := meanStddev(heights)
	if mean == 0 {
		return 0
	}
	return 100 * math.Max(0, 1-stddev/mean)
}

// cadenceCloseness is 100 when the pace matches the exercise target and
// falls off linearly with the relative error.
func cadenceCloseness(speedSec, targetSec float64) float64 {
	if targetSec <= 0 {
		return 0
	}
	return 100 * math.Max(0, 1-math.Abs(speedSec-targetSec)/targetSec)
}

func clampScore(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
