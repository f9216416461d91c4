package coach

import (
	"math"
	"sort"
	"time"

	"github.com/ayusman/repcoach/internal/exercise"
)

// Progress thresholds
const (
	// MinWorkoutsForTrend is the shortest history that yields a trend
	MinWorkoutsForTrend = 5
	// plateauWindow is how many recent workouts the plateau check sees
	plateauWindow = 15
	// plateauSpread is the score stddev below which progress counts as flat
	plateauSpread = 3.0
	// plateauCeiling keeps high performers from being flagged as stuck
	plateauCeiling = 85.0
)

// Summary is the slice of a stored workout that progress assessment
// needs.
type Summary struct {
	Exercise  exercise.Type
	Score     float64
	CreatedAt time.Time
}

// Progress describes how a training history is developing.
type Progress struct {
	Insufficient    bool     `json:"insufficient"`
	AverageScore    float64  `json:"average_score"`
	Trend           float64  `json:"trend"`
	TrendLabel      string   `json:"trend_label"`
	Plateau         bool     `json:"plateau"`
	Recommendations []string `json:"recommendations"`
}

// AssessProgress evaluates a workout history. Fewer than five workouts
// yields Insufficient with nothing else filled in.
func AssessProgress(history []Summary) *Progress {
	if len(history) < MinWorkoutsForTrend {
		return &Progress{Insufficient: true}
	}

	ordered := make([]Summary, len(history))
	copy(ordered, history)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	p := &Progress{
		AverageScore: averageScore(ordered),
	}
	p.Trend = trend(ordered)
	p.TrendLabel = trendLabel(p.Trend)
	p.Plateau = plateau(ordered)
	p.Recommendations = recommendations(ordered, p.AverageScore)
	return p
}

// trend is the mean score of the recent half minus the mean of the older
// half.
func trend(ordered []Summary) float64 {
	mid := len(ordered) / 2
	older := averageScore(ordered[:mid])
	recent := averageScore(ordered[mid:])
	return recent - older
}

func trendLabel(trend float64) string {
	switch {
	case trend > 5:
		return "improving strongly"
	case trend > 0:
		return "improving"
	case trend > -5:
		return "steady"
	default:
		return "declining"
	}
}

// plateau reports whether the recent scores are both flat and mediocre.
func plateau(ordered []Summary) bool {
	recent := ordered
	if len(recent) > plateauWindow {
		recent = recent[len(recent)-plateauWindow:]
	}

	mean := averageScore(recent)
	var sq float64
	for _, w := range recent {
		d := w.Score - mean
		sq += d * d
	}
	stddev := math.Sqrt(sq / float64(len(recent)))

	return stddev < plateauSpread && mean < plateauCeiling
}

func recommendations(ordered []Summary, avgScore float64) []string {
	var recs []string

	if avgScore < 70 {
		recs = append(recs, "Focus on quality over quantity. Slower, cleaner reps will raise your scores.")
	}

	distinct := make(map[exercise.Type]bool)
	for _, w := range ordered {
		distinct[w.Exercise] = true
	}
	if len(distinct) < 3 {
		recs = append(recs, "Add more variety. Mixing exercises trains more muscle groups.")
	}

	perWeek := weeklyFrequency(ordered)
	if perWeek < 3 {
		recs = append(recs, "Try to train at least three times a week to keep momentum.")
	} else if perWeek > 6 {
		recs = append(recs, "You're training hard. Schedule rest days so your body can recover.")
	}

	if len(recs) == 0 {
		recs = append(recs, "Great balance across quality, variety and frequency. Keep it up!")
	}
	return recs
}

// weeklyFrequency is workouts per week over the history span; histories
// shorter than a week count as one week.
func weeklyFrequency(ordered []Summary) float64 {
	span := ordered[len(ordered)-1].CreatedAt.Sub(ordered[0].CreatedAt)
	weeks := span.Hours() / (24 * 7)
	if weeks < 1 {
		weeks = 1
	}
	return float64(len(ordered)) / weeks
}

func averageScore(workouts []Summary) float64 {
	if len(workouts) == 0 {
		return 0
	}
	var sum float64
	for _, w := range workouts {
		sum += w.Score
	}
	return sum / float64(len(workouts))
}
