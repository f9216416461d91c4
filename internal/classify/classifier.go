// Package classify provides exercise classification from motion feature
// vectors using an ensemble-of-trees model.
package classify

import (
	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/features"
)

// DefaultConfidenceThreshold is the confidence below which a prediction is
// reported as unknown instead of a guess.
const DefaultConfidenceThreshold = 0.4

// Prediction is the classifier output for one feature vector. Confidence
// is the highest averaged class probability, in [0,1].
type Prediction struct {
	Label      exercise.Type `json:"label"`
	Confidence float64       `json:"confidence"`
}

// Classifier labels feature vectors with an injected model. Construct one
// per loaded model; it holds no mutable state.
type Classifier struct {
	model     *Model
	threshold float64
}

// NewClassifier creates a Classifier around a loaded model. A threshold
// of 0 or less selects DefaultConfidenceThreshold.
func NewClassifier(model *Model, threshold float64) *Classifier {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Classifier{model: model, threshold: threshold}
}

// Classify predicts the exercise for a feature vector. Predictions whose
// confidence falls below the threshold keep their confidence but carry the
// unknown label.
func (c *Classifier) Classify(v features.Vector) (Prediction, error) {
	if c == nil || c.model == nil {
		return Prediction{}, ErrModelUnavailable
	}

	probs, err := c.model.Predict(v)
	if err != nil {
		return Prediction{}, err
	}

	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}

	pred := Prediction{
		Label:      exercise.Type(c.model.Classes[best]),
		Confidence: probs[best],
	}
	if pred.Confidence < c.threshold {
		pred.Label = exercise.Unknown
	}
	return pred, nil
}
