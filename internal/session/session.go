// Package session orchestrates the workout pipeline for the RepCoach
// exercise tracking system.
package session

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ayusman/repcoach/internal/analyze"
	"github.com/ayusman/repcoach/internal/classify"
	"github.com/ayusman/repcoach/internal/coach"
	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/features"
	"github.com/ayusman/repcoach/internal/signal"
)

// Phase is a stage of the workout pipeline.
type Phase string

const (
	// PhaseIdle means no run is in progress.
	PhaseIdle Phase = "idle"
	// PhaseSignalReady means the trace has been synthesized.
	PhaseSignalReady Phase = "signal_ready"
	// PhaseClassifying means auto-detection is consulting the model.
	PhaseClassifying Phase = "classifying"
	// PhaseAnalyzed means repetitions have been counted and scored.
	PhaseAnalyzed Phase = "analyzed"
	// PhaseFeedbackReady means coaching lines are available.
	PhaseFeedbackReady Phase = "feedback_ready"
)

// Request defaults.
const (
	// DefaultDurationSec is used when a request omits the duration.
	DefaultDurationSec = 10
	// DefaultSampleRateHz is used when a request omits the rate.
	DefaultSampleRateHz = 50
)

// Request describes one workout set to run through the pipeline. A zero
// Seed asks for a fresh random seed; the seed actually used is reported
// in the Outcome.
type Request struct {
	Exercise     exercise.Type
	DurationSec  float64
	SampleRateHz float64
	NoiseLevel   float64
	Seed         int64
	AutoDetect   bool
}

// Defaults fills request fields left at zero. A zero Defaults keeps the
// package defaults for duration and rate and a noise-free signal.
type Defaults struct {
	DurationSec  float64
	SampleRateHz float64
	NoiseLevel   float64
}

// Outcome bundles everything one pipeline run produced.
type Outcome struct {
	Request  Request
	Seed     int64
	Trace    *signal.Trace
	Features features.Vector

	// Prediction is nil when auto-detection was off or skipped.
	Prediction       *classify.Prediction
	DetectionSkipped bool

	Result   *analyze.Result
	Feedback []coach.Message
}

// Config holds the pipeline components for a Runner. Nil components are
// replaced with defaults; a nil Classifier disables auto-detection.
type Config struct {
	Synthesizer *signal.Synthesizer
	Extractor   *features.Extractor
	Classifier  *classify.Classifier
	Analyzer    *analyze.Analyzer
	Defaults    Defaults
}

// Runner walks workout requests through the pipeline phases. Components
// are stateless, so a single Runner may serve concurrent runs; Phase
// reports the most recent transition.
type Runner struct {
	config Config
	phase  Phase
	mu     sync.RWMutex

	// OnPhase, when set, is called after every phase transition.
	OnPhase func(Phase)
}

// New creates a Runner with the given components.
func New(config Config) *Runner {
	if config.Synthesizer == nil {
		config.Synthesizer = signal.NewSynthesizer()
	}
	if config.Extractor == nil {
		config.Extractor = features.NewExtractor()
	}
	if config.Analyzer == nil {
		config.Analyzer = analyze.NewAnalyzer(analyze.DefaultConfig())
	}
	if config.Defaults.DurationSec == 0 {
		config.Defaults.DurationSec = DefaultDurationSec
	}
	if config.Defaults.SampleRateHz == 0 {
		config.Defaults.SampleRateHz = DefaultSampleRateHz
	}
	return &Runner{
		config: config,
		phase:  PhaseIdle,
	}
}

// Phase returns the most recent pipeline phase.
func (r *Runner) Phase() Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

// HasClassifier reports whether auto-detection is available.
func (r *Runner) HasClassifier() bool {
	return r.config.Classifier != nil
}

func (r *Runner) setPhase(p Phase) {
	r.mu.Lock()
	r.phase = p
	r.mu.Unlock()

	if r.OnPhase != nil {
		r.OnPhase(p)
	}
}

// Run executes one workout set end to end: synthesize, extract, optionally
// classify, analyze, and build feedback.
//
// Auto-detection is best effort. When the classifier is missing or its
// model is unavailable, the run logs the fallback, keeps the caller's
// exercise, and reports DetectionSkipped instead of failing.
func (r *Runner) Run(req Request) (*Outcome, error) {
	if req.DurationSec == 0 {
		req.DurationSec = r.config.Defaults.DurationSec
	}
	if req.SampleRateHz == 0 {
		req.SampleRateHz = r.config.Defaults.SampleRateHz
	}
	if req.NoiseLevel == 0 {
		req.NoiseLevel = r.config.Defaults.NoiseLevel
	}
	if !req.Exercise.Valid() {
		return nil, &signal.ValidationError{
			Field:   "exercise",
			Message: fmt.Sprintf("%q is not a trackable exercise", req.Exercise),
		}
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	outcome := &Outcome{Request: req, Seed: seed}

	trace, err := r.config.Synthesizer.Generate(req.Exercise, req.DurationSec, req.SampleRateHz, req.NoiseLevel, seed)
	if err != nil {
		return nil, err
	}
	outcome.Trace = trace
	r.setPhase(PhaseSignalReady)

	vector, err := r.config.Extractor.Extract(trace)
	if err != nil {
		return nil, fmt.Errorf("failed to extract features: %w", err)
	}
	outcome.Features = vector

	target := req.Exercise
	if req.AutoDetect {
		if r.config.Classifier == nil {
			outcome.DetectionSkipped = true
			log.Printf("No classifier available, analyzing as %s", req.Exercise)
		} else {
			r.setPhase(PhaseClassifying)
			pred, err := r.config.Classifier.Classify(vector)
			switch {
			case errors.Is(err, classify.ErrModelUnavailable):
				outcome.DetectionSkipped = true
				log.Printf("Classification model unavailable, analyzing as %s", req.Exercise)
			case err != nil:
				return nil, fmt.Errorf("failed to classify: %w", err)
			default:
				outcome.Prediction = &pred
				if pred.Label != exercise.Unknown {
					target = pred.Label
				}
			}
		}
	}

	result, err := r.config.Analyzer.Analyze(trace, target)
	if err != nil {
		return nil, err
	}
	if outcome.Prediction != nil && outcome.Prediction.Label != exercise.Unknown {
		confidence := outcome.Prediction.Confidence
		result.AIDetected = true
		result.Confidence = &confidence
	}
	outcome.Result = result
	r.setPhase(PhaseAnalyzed)

	outcome.Feedback = coach.Feedback(result)
	r.setPhase(PhaseFeedbackReady)

	return outcome, nil
}
