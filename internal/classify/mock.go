package classify

import (
	"github.com/ayusman/repcoach/internal/features"
)

// MockModel returns a tiny two-level forest for tests. Its single tree
// routes on the first two features:
//
//	v[0] <= 0.5          -> squat
//	v[0] > 0.5, v[1] <= 0.5 -> pushup
//	v[0] > 0.5, v[1] > 0.5  -> curl
//
// Leaves are pure, so predictions come back with confidence 1.0. The
// scaler is the identity.
func MockModel() *Model {
	return &Model{
		Classes:      []string{"squat", "pushup", "curl"},
		FeatureNames: features.Names(),
		Scaler:       identityScaler(),
		Trees: []Tree{
			{Nodes: []Node{
				{Feature: 0, Threshold: 0.5, Left: 1, Right: 2},
				{Feature: -1, Left: -1, Right: -1, Dist: []float64{1, 0, 0}},
				{Feature: 1, Threshold: 0.5, Left: 3, Right: 4},
				{Feature: -1, Left: -1, Right: -1, Dist: []float64{0, 1, 0}},
				{Feature: -1, Left: -1, Right: -1, Dist: []float64{0, 0, 1}},
			}},
		},
	}
}

// MockUncertainModel returns a forest of three single-leaf trees that each
// vote for a different class, so every prediction averages to confidence
// 1/3 and falls below the default threshold.
func MockUncertainModel() *Model {
	leaf := func(class int) Tree {
		dist := []float64{0, 0, 0}
		dist[class] = 1
		return Tree{Nodes: []Node{{Feature: -1, Left: -1, Right: -1, Dist: dist}}}
	}
	return &Model{
		Classes:      []string{"squat", "pushup", "curl"},
		FeatureNames: features.Names(),
		Scaler:       identityScaler(),
		Trees:        []Tree{leaf(0), leaf(1), leaf(2)},
	}
}

// MockVector returns a zeroed feature vector with the first two features
// set, matching the routing of MockModel.
func MockVector(v0, v1 float64) features.Vector {
	v := make(features.Vector, features.Count)
	v[0] = v0
	v[1] = v1
	return v
}

func identityScaler() Scaler {
	means := make([]float64, features.Count)
	stds := make([]float64, features.Count)
	for i := range stds {
		stds[i] = 1
	}
	return Scaler{Means: means, Stds: stds}
}
