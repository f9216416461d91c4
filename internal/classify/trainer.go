package classify

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/features"
)

// Training defaults
const (
	// DefaultNumTrees is the forest size
	DefaultNumTrees = 100
	// DefaultMaxDepth bounds tree height
	DefaultMaxDepth = 15
	// DefaultMinSamplesSplit is the smallest node that may split
	DefaultMinSamplesSplit = 5
	// DefaultMinSamplesLeaf is the smallest allowed child node
	DefaultMinSamplesLeaf = 2
)

// TrainerConfig tunes forest training.
type TrainerConfig struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Seed            int64
}

// DefaultTrainerConfig returns the production training parameters.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		NumTrees:        DefaultNumTrees,
		MaxDepth:        DefaultMaxDepth,
		MinSamplesSplit: DefaultMinSamplesSplit,
		MinSamplesLeaf:  DefaultMinSamplesLeaf,
		Seed:            42,
	}
}

// Trainer fits an ensemble-of-trees model on labeled feature vectors.
// Training is fully deterministic for a given config seed.
type Trainer struct {
	config TrainerConfig
}

// NewTrainer creates a Trainer, filling zero config fields with defaults.
func NewTrainer(config TrainerConfig) *Trainer {
	def := DefaultTrainerConfig()
	if config.NumTrees <= 0 {
		config.NumTrees = def.NumTrees
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = def.MaxDepth
	}
	if config.MinSamplesSplit <= 0 {
		config.MinSamplesSplit = def.MinSamplesSplit
	}
	if config.MinSamplesLeaf <= 0 {
		config.MinSamplesLeaf = def.MinSamplesLeaf
	}
	return &Trainer{config: config}
}

// Train fits a forest on the given vectors and labels.
//
// Each tree is grown on a bootstrap sample, choosing at every node the
// best Gini split among a random sqrt-sized feature subset, down to the
// configured depth and node-size limits. Leaves store normalized class
// distributions so prediction can average probabilities.
func (t *Trainer) Train(vectors []features.Vector, labels []exercise.Type) (*Model, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no training vectors provided")
	}
	if len(vectors) != len(labels) {
		return nil, fmt.Errorf("got %d vectors and %d labels", len(vectors), len(labels))
	}
	for i, v := range vectors {
		if len(v) != features.Count {
			return nil, fmt.Errorf("vector %d has %d values, expected %d", i, len(v), features.Count)
		}
	}

	classes, classIdx, err := classList(labels)
	if err != nil {
		return nil, err
	}

	scaler := fitScaler(vectors)
	scaled := make([][]float64, len(vectors))
	for i, v := range vectors {
		scaled[i] = scaler.apply(v)
	}

	y := make([]int, len(labels))
	for i, lbl := range labels {
		y[i] = classIdx[lbl]
	}

	rng := rand.New(rand.NewSource(t.config.Seed))
	trees := make([]Tree, t.config.NumTrees)
	for ti := range trees {
		sample := make([]int, len(scaled))
		for i := range sample {
			sample[i] = rng.Intn(len(scaled))
		}

		b := &treeBuilder{
			config:     t.config,
			rng:        rng,
			scaled:     scaled,
			y:          y,
			numClasses: len(classes),
		}
		b.build(sample, 0)
		trees[ti] = Tree{Nodes: b.nodes}
	}

	names := make([]string, len(classes))
	for i, c := range classes {
		names[i] = string(c)
	}

	return &Model{
		Classes:      names,
		FeatureNames: features.Names(),
		Scaler:       scaler,
		Trees:        trees,
	}, nil
}

// Accuracy returns the fraction of vectors whose highest-probability class
// matches the label.
func Accuracy(m *Model, vectors []features.Vector, labels []exercise.Type) (float64, error) {
	if len(vectors) == 0 {
		return 0, fmt.Errorf("no evaluation vectors provided")
	}
	if len(vectors) != len(labels) {
		return 0, fmt.Errorf("got %d vectors and %d labels", len(vectors), len(labels))
	}

	correct := 0
	for i, v := range vectors {
		probs, err := m.Predict(v)
		if err != nil {
			return 0, err
		}
		best := 0
		for c := range probs {
			if probs[c] > probs[best] {
				best = c
			}
		}
		if exercise.Type(m.Classes[best]) == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(vectors)), nil
}

// classList returns the observed classes in catalog order.
func classList(labels []exercise.Type) ([]exercise.Type, map[exercise.Type]int, error) {
	present := make(map[exercise.Type]bool)
	for i, lbl := range labels {
		if !lbl.Valid() {
			return nil, nil, fmt.Errorf("label %d is not a trackable exercise: %q", i, lbl)
		}
		present[lbl] = true
	}

	var classes []exercise.Type
	classIdx := make(map[exercise.Type]int)
	for _, ex := range exercise.All() {
		if present[ex] {
			classIdx[ex] = len(classes)
			classes = append(classes, ex)
		}
	}
	return classes, classIdx, nil
}

func fitScaler(vectors []features.Vector) Scaler {
	n := float64(len(vectors))
	means := make([]float64, features.Count)
	stds := make([]float64, features.Count)

	for _, v := range vectors {
		for f, x := range v {
			means[f] += x
		}
	}
	for f := range means {
		means[f] /= n
	}

	for _, v := range vectors {
		for f, x := range v {
			d := x - means[f]
			stds[f] += d * d
		}
	}
	for f := range stds {
		stds[f] = math.Sqrt(stds[f] / n)
	}
	return Scaler{Means: means, Stds: stds}
}

func (s Scaler) apply(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if s.Stds[i] == 0 {
			continue
		}
		out[i] = (x - s.Means[i]) / s.Stds[i]
	}
	return out
}

type treeBuilder struct {
	config     TrainerConfig
	rng        *rand.Rand
	scaled     [][]float64
	y          []int
	numClasses int
	nodes      []Node
}

// build grows the subtree for the given sample indices and returns its
// node index.
func (b *treeBuilder) build(indices []int, depth int) int {
	counts := b.classCounts(indices)

	if depth >= b.config.MaxDepth || len(indices) < b.config.MinSamplesSplit || isPure(counts) {
		return b.leaf(counts)
	}

	feature, threshold, ok := b.bestSplit(indices, counts)
	if !ok {
		return b.leaf(counts)
	}

	var left, right []int
	for _, i := range indices {
		if b.scaled[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: feature, Threshold: threshold})
	leftIdx := b.build(left, depth+1)
	rightIdx := b.build(right, depth+1)
	b.nodes[idx].Left = leftIdx
	b.nodes[idx].Right = rightIdx
	return idx
}

func (b *treeBuilder) leaf(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	dist := make([]float64, b.numClasses)
	for c, n := range counts {
		dist[c] = float64(n) / float64(total)
	}
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: -1, Left: -1, Right: -1, Dist: dist})
	return idx
}

// bestSplit scans a random sqrt-sized feature subset for the threshold
// with the highest Gini gain. ok is false when no split improves on the
// parent or respects the minimum leaf size.
func (b *treeBuilder) bestSplit(indices []int, counts []int) (int, float64, bool) {
	numFeatures := len(b.scaled[0])
	k := int(math.Sqrt(float64(numFeatures)))
	if k < 1 {
		k = 1
	}
	candidates := b.rng.Perm(numFeatures)[:k]

	parent := gini(counts, len(indices))

	bestGain := 0.0
	bestFeature, bestThreshold := -1, 0.0

	sorted := make([]int, len(indices))
	for _, f := range candidates {
		copy(sorted, indices)
		sort.Slice(sorted, func(a, c int) bool {
			return b.scaled[sorted[a]][f] < b.scaled[sorted[c]][f]
		})

		leftCounts := make([]int, b.numClasses)
		rightCounts := b.classCounts(sorted)

		for pos := 1; pos < len(sorted); pos++ {
			cls := b.y[sorted[pos-1]]
			leftCounts[cls]++
			rightCounts[cls]--

			prev := b.scaled[sorted[pos-1]][f]
			cur := b.scaled[sorted[pos]][f]
			if prev == cur {
				continue
			}
			if pos < b.config.MinSamplesLeaf || len(sorted)-pos < b.config.MinSamplesLeaf {
				continue
			}

			nLeft, nRight := pos, len(sorted)-pos
			weighted := (float64(nLeft)*gini(leftCounts, nLeft) +
				float64(nRight)*gini(rightCounts, nRight)) / float64(len(sorted))
			gain := parent - weighted
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestThreshold = (prev + cur) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func (b *treeBuilder) classCounts(indices []int) []int {
	counts := make([]int, b.numClasses)
	for _, i := range indices {
		counts[b.y[i]]++
	}
	return counts
}

func isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func gini(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	impurity := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		impurity -= p * p
	}
	return impurity
}
