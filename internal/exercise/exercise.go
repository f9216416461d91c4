package exercise

import (
	"fmt"
	"strings"
)

// Type identifies a supported exercise.
type Type string

const (
	Squat       Type = "squat"
	Pushup      Type = "pushup"
	Curl        Type = "curl"
	JumpingJack Type = "jumping_jack"
	Plank       Type = "plank"

	// Unknown is returned by the classifier when no prediction clears
	// the confidence threshold. It has no motion profile.
	Unknown Type = "unknown"
)

// All returns the trackable exercises in catalog order.
func All() []Type {
	return []Type{Squat, Pushup, Curl, JumpingJack, Plank}
}

// Parse converts a user-supplied string into a Type.
func Parse(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	switch t {
	case Squat, Pushup, Curl, JumpingJack, Plank:
		return t, nil
	}
	return "", fmt.Errorf("unknown exercise %q", s)
}

// Valid reports whether t names a trackable exercise.
func (t Type) Valid() bool {
	switch t {
	case Squat, Pushup, Curl, JumpingJack, Plank:
		return true
	}
	return false
}

// Wave is one sinusoidal component of an exercise signature.
type Wave struct {
	FreqHz float64
	Amp    float64
	Phase  float64
}

// Profile describes the characteristic accelerometer signature of an
// exercise: one wave per axis, a gravity bias reflecting the usual device
// orientation, and the cadence a well-paced set should hit.
type Profile struct {
	Name string

	X Wave
	Y Wave
	Z Wave

	BiasX float64
	BiasY float64
	BiasZ float64

	// TargetCadenceSec is the ideal seconds per repetition.
	TargetCadenceSec float64
}

var profiles = map[Type]Profile{
	Squat: {
		Name:  "Squat",
		X:     Wave{FreqHz: 0.4, Amp: 0.8, Phase: 1.57},
		Y:     Wave{FreqHz: 0.4, Amp: 3.2},
		Z:     Wave{FreqHz: 0.8, Amp: 1.1, Phase: 0.6},
		BiasX: 0.4, BiasY: 9.4, BiasZ: 1.2,
		TargetCadenceSec: 2.5,
	},
	Pushup: {
		Name:  "Push-up",
		X:     Wave{FreqHz: 0.5, Amp: 0.6, Phase: 1.0},
		Y:     Wave{FreqHz: 1.0, Amp: 0.9, Phase: 0.3},
		Z:     Wave{FreqHz: 0.5, Amp: 2.8},
		BiasX: 0.3, BiasY: 2.1, BiasZ: 9.2,
		TargetCadenceSec: 2.0,
	},
	Curl: {
		Name:  "Bicep Curl",
		X:     Wave{FreqHz: 0.45, Amp: 2.4},
		Y:     Wave{FreqHz: 0.45, Amp: 1.5, Phase: 1.2},
		Z:     Wave{FreqHz: 0.9, Amp: 0.7, Phase: 0.4},
		BiasX: 2.0, BiasY: 8.8, BiasZ: 2.6,
		TargetCadenceSec: 2.2,
	},
	JumpingJack: {
		Name:  "Jumping Jack",
		X:     Wave{FreqHz: 1.25, Amp: 2.2, Phase: 0.8},
		Y:     Wave{FreqHz: 1.25, Amp: 5.5},
		Z:     Wave{FreqHz: 2.5, Amp: 1.4, Phase: 0.2},
		BiasX: 0.5, BiasY: 9.3, BiasZ: 0.9,
		TargetCadenceSec: 0.8,
	},
	Plank: {
		Name:  "Plank",
		X:     Wave{FreqHz: 0.25, Amp: 0.25, Phase: 0.5},
		Y:     Wave{FreqHz: 0.5, Amp: 0.3, Phase: 0.9},
		Z:     Wave{FreqHz: 0.25, Amp: 0.5},
		BiasX: 0.4, BiasY: 1.8, BiasZ: 9.5,
		TargetCadenceSec: 4.0,
	},
}

// ProfileFor returns the motion profile for t. The second return value is
// false for Unknown and unrecognized types.
func ProfileFor(t Type) (Profile, bool) {
	p, ok := profiles[t]
	return p, ok
}

// DisplayName returns the human-readable name for t, or the raw value when
// no profile exists.
func (t Type) DisplayName() string {
	if p, ok := profiles[t]; ok {
		return p.Name
	}
	return string(t)
}
