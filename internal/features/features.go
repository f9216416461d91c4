package features

import (
	"math"

	"github.com/ayusman/repcoach/internal/signal"
)

// MinSamples is the shortest trace that can be summarized.
const MinSamples = 10

// Count is the length of every feature vector.
const Count = 23

// Vector is a fixed-order summary of one trace. Index i corresponds to
// Names()[i].
type Vector []float64

var names = [Count]string{
	"x_mean", "x_variance", "x_min", "x_max",
	"y_mean", "y_variance", "y_min", "y_max",
	"z_mean", "z_variance", "z_min", "z_max",
	"mag_mean", "mag_variance", "mag_min", "mag_max",
	"mag_crossing_rate",
	"x_energy", "y_energy", "z_energy",
	"corr_xy", "corr_xz", "corr_yz",
}

// Names returns the canonical feature names in vector order.
func Names() []string {
	out := make([]string, Count)
	copy(out, names[:])
	return out
}

// Extractor summarizes traces into feature vectors. It is stateless and
// safe for concurrent use.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract computes the 23-element feature vector for a trace: per-axis
// mean/variance/min/max, the same four for the magnitude series, the
// magnitude mean-crossing rate, per-axis energy, and pairwise axis
// correlations. The trace is not modified.
func (e *Extractor) Extract(trace *signal.Trace) (Vector, error) {
	if trace == nil || trace.Len() < MinSamples {
		got := 0
		if trace != nil {
			got = trace.Len()
		}
		return nil, &signal.InsufficientDataError{Got: got, Want: MinSamples}
	}

	n := trace.Len()
	xs := make([]float64, n)
	ys := make([]float64, n)
	zs := make([]float64, n)
	mags := make([]float64, n)
	for i, s := range trace.Samples {
		xs[i] = s.X
		ys[i] = s.Y
		zs[i] = s.Z
		mags[i] = math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
	}

	v := make(Vector, 0, Count)
	for _, series := range [][]float64{xs, ys, zs, mags} {
		mn, vr := meanVariance(series)
		lo, hi := minMax(series)
		v = append(v, mn, vr, lo, hi)
	}
	v = append(v, crossingRate(mags))
	v = append(v, energy(xs), energy(ys), energy(zs))
	v = append(v, correlation(xs, ys), correlation(xs, zs), correlation(ys, zs))

	return v, nil
}

func meanVariance(series []float64) (float64, float64) {
	n := float64(len(series))
	var sum float64
	for _, x := range series {
		sum += x
	}
	mean := sum / n

	var sq float64
	for _, x := range series {
		d := x - mean
		sq += d * d
	}
	return mean, sq / n
}

func minMax(series []float64) (float64, float64) {
	lo, hi := series[0], series[0]
	for _, x := range series[1:] {
		if x < lo {
			lo = x
		}
		if x > hi {
			hi = x
		}
	}
	return lo, hi
}

// crossingRate returns the fraction of consecutive sample pairs where the
// series crosses its own mean.
func crossingRate(series []float64) float64 {
	mean, _ := meanVariance(series)
	crossings := 0
	for i := 1; i < len(series); i++ {
		if (series[i-1]-mean)*(series[i]-mean) < 0 {
			crossings++
		}
	}
	return float64(crossings) / float64(len(series)-1)
}

func energy(series []float64) float64 {
	var sum float64
	for _, x := range series {
		sum += x * x
	}
	return sum / float64(len(series))
}

// correlation returns the Pearson correlation of two equal-length series,
// or 0 when either series is constant.
func correlation(a, b []float64) float64 {
	meanA, varA := meanVariance(a)
	meanB, varB := meanVariance(b)
	if varA == 0 || varB == 0 {
		return 0
	}

	var cov float64
	for i := range a {
		cov += (a[i] - meanA) * (b[i] - meanB)
	}
	cov /= float64(len(a))

	return cov / math.Sqrt(varA*varB)
}
