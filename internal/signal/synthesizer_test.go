package signal

import (
	"errors"
	"math"
	"testing"

	"github.com/ayusman/repcoach/internal/exercise"
)

const epsilon = 1e-9

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestSynthesizer_Generate_SampleCount(t *testing.T) {
	s := NewSynthesizer()

	trace, err := s.Generate(exercise.Squat, 10, 50, 0.05, 1)
	if err != nil {
		t.Fatalf("failed to generate trace: %v", err)
	}

	if trace.Len() != 500 {
		t.Errorf("expected 500 samples for 10s at 50Hz, got %d", trace.Len())
	}
	if trace.Exercise != exercise.Squat {
		t.Errorf("expected squat trace, got %v", trace.Exercise)
	}
	if !floatEqual(trace.SampleRateHz, 50) {
		t.Errorf("expected 50Hz, got %f", trace.SampleRateHz)
	}
	if !floatEqual(trace.Duration(), 10) {
		t.Errorf("expected 10s duration, got %f", trace.Duration())
	}
}

func TestSynthesizer_Generate_Deterministic(t *testing.T) {
	s := NewSynthesizer()

	a, err := s.Generate(exercise.Pushup, 8, 60, 0.1, 42)
	if err != nil {
		t.Fatalf("failed to generate first trace: %v", err)
	}
	b, err := s.Generate(exercise.Pushup, 8, 60, 0.1, 42)
	if err != nil {
		t.Fatalf("failed to generate second trace: %v", err)
	}

	if a.Len() != b.Len() {
		t.Fatalf("expected equal lengths, got %d and %d", a.Len(), b.Len())
	}
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			t.Fatalf("expected identical samples at index %d, got %+v and %+v", i, a.Samples[i], b.Samples[i])
		}
	}
}

func TestSynthesizer_Generate_SeedChangesNoise(t *testing.T) {
	s := NewSynthesizer()

	a, err := s.Generate(exercise.Curl, 6, 40, 0.1, 1)
	if err != nil {
		t.Fatalf("failed to generate first trace: %v", err)
	}
	b, err := s.Generate(exercise.Curl, 6, 40, 0.1, 2)
	if err != nil {
		t.Fatalf("failed to generate second trace: %v", err)
	}

	differs := false
	for i := range a.Samples {
		if a.Samples[i] != b.Samples[i] {
			differs = true
			break
		}
	}
	if !differs {
		t.Error("expected different seeds to produce different noise")
	}
}

func TestSynthesizer_Generate_ZeroNoiseIsPureWaveform(t *testing.T) {
	s := NewSynthesizer()

	trace, err := s.Generate(exercise.JumpingJack, 5, 30, 0, 7)
	if err != nil {
		t.Fatalf("failed to generate trace: %v", err)
	}

	profile, ok := exercise.ProfileFor(exercise.JumpingJack)
	if !ok {
		t.Fatal("expected a jumping jack profile")
	}

	for i, smp := range trace.Samples {
		tm := float64(i) / 30.0
		if !floatEqual(smp.T, tm) {
			t.Fatalf("expected timestamp %f at index %d, got %f", tm, i, smp.T)
		}
		wantY := profile.BiasY + profile.Y.Amp*math.Sin(2*math.Pi*profile.Y.FreqHz*tm+profile.Y.Phase)
		if !floatEqual(smp.Y, wantY) {
			t.Fatalf("expected pure waveform %f on Y at index %d, got %f", wantY, i, smp.Y)
		}
	}
}

func TestSynthesizer_Generate_Validation(t *testing.T) {
	s := NewSynthesizer()

	tests := []struct {
		name      string
		exercise  exercise.Type
		duration  float64
		rate      float64
		noise     float64
		wantField string
	}{
		{"duration too short", exercise.Squat, 4, 50, 0.05, "duration"},
		{"duration too long", exercise.Squat, 21, 50, 0.05, "duration"},
		{"rate too low", exercise.Squat, 10, 29, 0.05, "sample_rate"},
		{"rate too high", exercise.Squat, 10, 101, 0.05, "sample_rate"},
		{"negative noise", exercise.Squat, 10, 50, -0.01, "noise_level"},
		{"unknown exercise", exercise.Unknown, 10, 50, 0.05, "exercise"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Generate(tt.exercise, tt.duration, tt.rate, tt.noise, 1)
			if err == nil {
				t.Fatal("expected a validation error")
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %T: %v", err, err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, verr.Field)
			}
		})
	}
}

func TestSynthesizer_Generate_BoundaryValuesAccepted(t *testing.T) {
	s := NewSynthesizer()

	if _, err := s.Generate(exercise.Plank, 5, 30, 0, 1); err != nil {
		t.Errorf("expected lower bounds to be accepted: %v", err)
	}
	if _, err := s.Generate(exercise.Plank, 20, 100, 0.5, 1); err != nil {
		t.Errorf("expected upper bounds to be accepted: %v", err)
	}
}
