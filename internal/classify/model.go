package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrModelUnavailable is returned when the model artifact cannot be loaded
// or no model was configured. Auto-detection falls back to the caller's
// exercise when it sees this error.
var ErrModelUnavailable = errors.New("classification model unavailable")

// Node is one decision node in a tree, stored in a flat array. A node with
// Left == -1 is a leaf and carries a class distribution.
type Node struct {
	Feature   int       `json:"feature"`
	Threshold float64   `json:"threshold"`
	Left      int       `json:"left"`
	Right     int       `json:"right"`
	Dist      []float64 `json:"dist,omitempty"`
}

// Tree is a single decision tree of the forest.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Scaler standardizes feature vectors before tree traversal.
type Scaler struct {
	Means []float64 `json:"means"`
	Stds  []float64 `json:"stds"`
}

// Model is an ensemble-of-trees classification artifact. It is immutable
// after loading and safe to share across goroutines.
type Model struct {
	Classes      []string `json:"classes"`
	FeatureNames []string `json:"feature_names"`
	Scaler       Scaler   `json:"scaler"`
	Trees        []Tree   `json:"trees"`
}

// LoadModel reads and validates a model artifact from disk. Callers load
// once at startup and inject the result; a missing or corrupt file returns
// an error matching ErrModelUnavailable.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrModelUnavailable, path, err)
	}

	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return &m, nil
}

// Validate checks the structural integrity of the artifact.
func (m *Model) Validate() error {
	if len(m.Classes) == 0 {
		return fmt.Errorf("model has no classes")
	}
	if len(m.FeatureNames) == 0 {
		return fmt.Errorf("model has no feature names")
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("model has no trees")
	}
	if len(m.Scaler.Means) != len(m.FeatureNames) || len(m.Scaler.Stds) != len(m.FeatureNames) {
		return fmt.Errorf("scaler length %d/%d does not match %d features",
			len(m.Scaler.Means), len(m.Scaler.Stds), len(m.FeatureNames))
	}

	for ti, tree := range m.Trees {
		if len(tree.Nodes) == 0 {
			return fmt.Errorf("tree %d is empty", ti)
		}
		for ni, node := range tree.Nodes {
			if node.Left == -1 {
				if len(node.Dist) != len(m.Classes) {
					return fmt.Errorf("tree %d leaf %d has %d class weights, expected %d",
						ti, ni, len(node.Dist), len(m.Classes))
				}
				continue
			}
			if node.Feature < 0 || node.Feature >= len(m.FeatureNames) {
				return fmt.Errorf("tree %d node %d references feature %d", ti, ni, node.Feature)
			}
			if node.Left < 0 || node.Left >= len(tree.Nodes) ||
				node.Right < 0 || node.Right >= len(tree.Nodes) {
				return fmt.Errorf("tree %d node %d has children out of range", ti, ni)
			}
		}
	}
	return nil
}

// Predict returns the averaged class probability distribution for a
// feature vector, in Classes order.
func (m *Model) Predict(v []float64) ([]float64, error) {
	if len(v) != len(m.FeatureNames) {
		return nil, fmt.Errorf("feature vector has %d values, model expects %d", len(v), len(m.FeatureNames))
	}

	scaled := make([]float64, len(v))
	for i, x := range v {
		if m.Scaler.Stds[i] == 0 {
			scaled[i] = 0
			continue
		}
		scaled[i] = (x - m.Scaler.Means[i]) / m.Scaler.Stds[i]
	}

	probs := make([]float64, len(m.Classes))
	for _, tree := range m.Trees {
		leaf := tree.walk(scaled)
		for c, p := range leaf.Dist {
			probs[c] += p
		}
	}
	for c := range probs {
		probs[c] /= float64(len(m.Trees))
	}
	return probs, nil
}

// walk follows the split nodes from the root to a leaf.
func (t *Tree) walk(scaled []float64) *Node {
	i := 0
	for t.Nodes[i].Left != -1 {
		node := &t.Nodes[i]
		if scaled[node.Feature] <= node.Threshold {
			i = node.Left
		} else {
			i = node.Right
		}
	}
	return &t.Nodes[i]
}

// Save writes the artifact as indented JSON.
func (m *Model) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode model: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model: %w", err)
	}
	return nil
}
