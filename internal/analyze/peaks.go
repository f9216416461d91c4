package analyze

import (
	"math"

	"github.com/ayusman/repcoach/internal/signal"
)

// Magnitude returns the per-sample acceleration magnitude of a trace.
func Magnitude(trace *signal.Trace) []float64 {
	out := make([]float64, trace.Len())
	for i, s := range trace.Samples {
		out[i] = math.Sqrt(s.X*s.X + s.Y*s.Y + s.Z*s.Z)
	}
	return out
}

// SmoothMovingAverage returns a centered moving average of the series.
// The window shrinks near the edges; a window of 1 or less returns a copy.
func SmoothMovingAverage(series []float64, window int) []float64 {
	out := make([]float64, len(series))
	if window <= 1 {
		copy(out, series)
		return out
	}

	half := window / 2
	for i := range series {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half + 1
		if hi > len(series) {
			hi = len(series)
		}
		var sum float64
		for j := lo; j < hi; j++ {
			sum += series[j]
		}
		out[i] = sum / float64(hi-lo)
	}
	return out
}

// DetectPeaks finds repetition peaks in a smoothed magnitude series.
//
// Algorithm:
// 1. Threshold = mean + thresholdFactor*stddev of the series
// 2. A candidate must exceed the threshold and be the maximum of its
//    neighbor window
// 3. Candidates closer than refractorySec to the last accepted peak
//    are dropped
//
// A flat series has threshold equal to its own level, so it yields no
// peaks. Returned indices are strictly increasing.
func DetectPeaks(series []float64, rateHz, thresholdFactor, refractorySec float64) []int {
	if len(series) < 3 {
		return nil
	}

	mean, stddev := meanStddev(series)
	threshold := mean + thresholdFactor*stddev

	minGap := int(math.Round(refractorySec * rateHz))
	if minGap < 1 {
		minGap = 1
	}
	win := minGap / 2
	if win < 1 {
		win = 1
	}

	var peaks []int
	last := -minGap - 1
	for i := 1; i < len(series)-1; i++ {
		if series[i] <= threshold {
			continue
		}
		if !isWindowMax(series, i, win) {
			continue
		}
		if i-last < minGap {
			continue
		}
		peaks = append(peaks, i)
		last = i
	}
	return peaks
}

func isWindowMax(series []float64, i, win int) bool {
	lo := i - win
	if lo < 0 {
		lo = 0
	}
	hi := i + win
	if hi > len(series)-1 {
		hi = len(series) - 1
	}
	for j := lo; j <= hi; j++ {
		if series[j] > series[i] {
			return false
		}
	}
	return true
}

// Segments assigns one non-overlapping index range per peak, splitting the
// series at midpoints between adjacent peaks. n is the series length.
func Segments(peaks []int, n int) []RepSegment {
	if len(peaks) == 0 {
		return nil
	}

	segs := make([]RepSegment, len(peaks))
	for i, p := range peaks {
		start := 0
		if i > 0 {
			start = (peaks[i-1]+p)/2 + 1
		}
		end := n - 1
		if i < len(peaks)-1 {
			end = (p + peaks[i+1]) / 2
		}
		segs[i] = RepSegment{StartIndex: start, EndIndex: end}
	}
	return segs
}

func meanStddev(series []float64) (float64, float64) {
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
	return mean, math.Sqrt(sq / n)
}
