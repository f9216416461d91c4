// Package coach turns analysis results into workout feedback and progress
// insights for the RepCoach exercise tracking system.
package coach

import (
	"math/rand"
	"time"

	"github.com/ayusman/repcoach/internal/analyze"
	"github.com/ayusman/repcoach/internal/exercise"
)

// Pace bands relative to the exercise target cadence
const (
	// fastPaceRatio marks reps faster than 0.6x the target cadence
	fastPaceRatio = 0.6
	// slowPaceRatio marks reps slower than 1.6x the target cadence
	slowPaceRatio = 1.6
)

// Category tags the coaching intent of one message.
type Category string

const (
	CategoryPraise        Category = "praise"
	CategoryEncouragement Category = "encouragement"
	CategoryRhythm        Category = "rhythm"
	CategoryPace          Category = "pace"
	CategoryTechniqueTip  Category = "technique_tip"
)

// Message is one coaching line tagged with its category.
type Message struct {
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Feedback builds the coaching messages for one analyzed set. The same
// result always produces the same messages in the same order.
func Feedback(result *analyze.Result) []Message {
	if result == nil {
		return nil
	}

	if result.Repetitions == 0 {
		return []Message{
			{Text: "No repetitions detected. Check your device placement and try again.", Category: CategoryEncouragement},
			techniqueTip(result.Exercise),
		}
	}

	messages := []Message{scoreFeedback(result.Score)}

	if m, ok := regularityFeedback(result.Regularity); ok {
		messages = append(messages, m)
	}
	if m, ok := paceFeedback(result.Speed, result.Exercise); ok {
		messages = append(messages, m)
	}

	return append(messages, techniqueTip(result.Exercise))
}

// Texts flattens messages to their lines, in order.
func Texts(messages []Message) []string {
	lines := make([]string, len(messages))
	for i, m := range messages {
		lines[i] = m.Text
	}
	return lines
}

func scoreFeedback(score float64) Message {
	switch {
	case score >= 95:
		return Message{Text: "Outstanding! Your form was nearly flawless.", Category: CategoryPraise}
	case score >= 90:
		return Message{Text: "Excellent work! Keep this quality up.", Category: CategoryPraise}
	case score >= 75:
		return Message{Text: "Good session. A few reps drifted from ideal form.", Category: CategoryPraise}
	case score >= 60:
		return Message{Text: "Decent effort. Focus on controlled, full-range movement.", Category: CategoryEncouragement}
	default:
		return Message{Text: "Form needs attention. Slow down and prioritize technique over rep count.", Category: CategoryEncouragement}
	}
}

func regularityFeedback(regularity float64) (Message, bool) {
	switch {
	case regularity >= 90:
		return Message{Text: "Your rhythm was rock steady.", Category: CategoryRhythm}, true
	case regularity >= 75:
		return Message{Text: "Nice consistent pacing.", Category: CategoryRhythm}, true
	case regularity < 60:
		return Message{Text: "Try to keep a steady tempo from the first rep to the last.", Category: CategoryRhythm}, true
	default:
		return Message{}, false
	}
}

// paceFeedback compares seconds per rep against the exercise target
// cadence and comments only when the set fell outside the healthy band.
func paceFeedback(speedSec float64, ex exercise.Type) (Message, bool) {
	profile, ok := exercise.ProfileFor(ex)
	if !ok || profile.TargetCadenceSec <= 0 {
		return Message{}, false
	}

	ratio := speedSec / profile.TargetCadenceSec
	switch {
	case ratio < fastPaceRatio:
		return Message{Text: "You're rushing. Slow each rep down for more control.", Category: CategoryPace}, true
	case ratio > slowPaceRatio:
		return Message{Text: "Pick up the pace a little to keep the intensity up.", Category: CategoryPace}, true
	default:
		return Message{}, false
	}
}

func techniqueTip(ex exercise.Type) Message {
	tip := Message{Category: CategoryTechniqueTip}
	switch ex {
	case exercise.Squat:
		tip.Text = "Keep your back straight and drive down until your thighs reach parallel."
	case exercise.Pushup:
		tip.Text = "Keep your body in a straight line and bend your elbows to 90 degrees."
	case exercise.Curl:
		tip.Text = "Keep your elbows fixed at your sides and squeeze the bicep at the top."
	case exercise.JumpingJack:
		tip.Text = "Stay light on your feet and hold a sustained rhythm for the cardio benefit."
	case exercise.Plank:
		tip.Text = "Hold your body straight and avoid arching your lower back."
	default:
		tip.Text = "Focus on controlled movement through the full range of motion."
	}
	return tip
}

var dailyTips = []string{
	"Hydrate before, during and after your workout.",
	"A five minute warm-up cuts injury risk and wakes up your joints.",
	"Muscles grow on rest days. Schedule them like workouts.",
	"Exhale on the effort, inhale on the release.",
	"Consistency beats intensity. Show up even for a short session.",
	"Protein within an hour of training helps recovery.",
	"Good sleep is the cheapest performance enhancer there is.",
	"Finish with a short stretch to keep your range of motion.",
}

// DailyTip returns the tip of the day. The pick is seeded from the date,
// so every call on the same day agrees.
func DailyTip(day time.Time) string {
	seed := int64(day.Year())*10000 + int64(day.Month())*100 + int64(day.Day())
	rng := rand.New(rand.NewSource(seed))
	return dailyTips[rng.Intn(len(dailyTips))]
}
