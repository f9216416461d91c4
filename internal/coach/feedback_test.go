package coach

import (
	"strings"
	"testing"
	"time"

	"github.com/ayusman/repcoach/internal/analyze"
	"github.com/ayusman/repcoach/internal/exercise"
)

func makeResult(ex exercise.Type, reps int, score, regularity, speed float64) *analyze.Result {
	return &analyze.Result{
		Exercise:    ex,
		Repetitions: reps,
		DurationSec: 10,
		Score:       score,
		Regularity:  regularity,
		Speed:       speed,
	}
}

func TestFeedback_Deterministic(t *testing.T) {
	result := makeResult(exercise.Squat, 4, 88, 80, 2.5)

	first := Feedback(result)
	second := Feedback(result)

	if len(first) != len(second) {
		t.Fatalf("expected stable message count, got %d then %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("expected identical message %d, got %v and %v", i, first[i], second[i])
		}
	}
}

func TestFeedback_ZeroReps(t *testing.T) {
	messages := Feedback(makeResult(exercise.Pushup, 0, 0, 0, 10))

	if len(messages) != 2 {
		t.Fatalf("expected 2 messages for a rep-less set, got %d: %v", len(messages), messages)
	}
	if !strings.Contains(messages[0].Text, "No repetitions detected") {
		t.Errorf("expected a no-repetitions line, got %q", messages[0].Text)
	}
	if messages[0].Category != CategoryEncouragement {
		t.Errorf("category = %v, want %v", messages[0].Category, CategoryEncouragement)
	}
}

func TestFeedback_ScoreBands(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		want     string
		category Category
	}{
		{"outstanding", 96, "Outstanding", CategoryPraise},
		{"excellent", 92, "Excellent", CategoryPraise},
		{"good", 80, "Good session", CategoryPraise},
		{"decent", 65, "Decent effort", CategoryEncouragement},
		{"needs work", 40, "Form needs attention", CategoryEncouragement},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			messages := Feedback(makeResult(exercise.Curl, 5, tt.score, 80, 2.2))
			if !strings.Contains(messages[0].Text, tt.want) {
				t.Errorf("expected first line to contain %q, got %q", tt.want, messages[0].Text)
			}
			if messages[0].Category != tt.category {
				t.Errorf("category = %v, want %v", messages[0].Category, tt.category)
			}
		})
	}
}

func TestFeedback_PaceRelativeToCadence(t *testing.T) {
	// Squat target cadence is 2.5 s per rep.
	t.Run("too fast", func(t *testing.T) {
		messages := Feedback(makeResult(exercise.Squat, 10, 85, 85, 1.0))
		if !containsSubstring(messages, "rushing") {
			t.Errorf("expected a rushing warning at 1.0 s per rep, got %v", messages)
		}
	})

	t.Run("too slow", func(t *testing.T) {
		messages := Feedback(makeResult(exercise.Squat, 2, 85, 85, 5.0))
		if !containsSubstring(messages, "Pick up the pace") {
			t.Errorf("expected a pace-up tip at 5.0 s per rep, got %v", messages)
		}
	})

	t.Run("on target", func(t *testing.T) {
		messages := Feedback(makeResult(exercise.Squat, 4, 85, 85, 2.5))
		for _, m := range messages {
			if m.Category == CategoryPace {
				t.Errorf("expected no pace comment at the target cadence, got %q", m.Text)
			}
		}
	})
}

func TestFeedback_TechniqueTipPerExercise(t *testing.T) {
	seen := make(map[string]exercise.Type)
	for _, ex := range exercise.All() {
		messages := Feedback(makeResult(ex, 5, 80, 80, 2.0))
		if len(messages) == 0 {
			t.Fatalf("expected feedback for %v", ex)
		}
		tip := messages[len(messages)-1]
		if tip.Category != CategoryTechniqueTip {
			t.Errorf("expected the set to end with a technique tip for %v, got %v", ex, tip.Category)
		}
		if tip.Text == "" {
			t.Errorf("expected a technique tip for %v", ex)
		}
		if prev, dup := seen[tip.Text]; dup {
			t.Errorf("expected a distinct tip for %v, shares one with %v", ex, prev)
		}
		seen[tip.Text] = ex
	}
}

func TestFeedback_RegularityBands(t *testing.T) {
	t.Run("steady rhythm praised", func(t *testing.T) {
		messages := Feedback(makeResult(exercise.Plank, 3, 85, 95, 4.0))
		if !containsSubstring(messages, "rock steady") {
			t.Errorf("expected rhythm praise, got %v", messages)
		}
	})

	t.Run("erratic rhythm flagged", func(t *testing.T) {
		messages := Feedback(makeResult(exercise.Plank, 3, 85, 40, 4.0))
		if !containsSubstring(messages, "steady tempo") {
			t.Errorf("expected a tempo tip, got %v", messages)
		}
	})
}

func TestFeedback_EveryMessageTagged(t *testing.T) {
	messages := Feedback(makeResult(exercise.Squat, 4, 88, 95, 2.5))
	for i, m := range messages {
		if m.Category == "" {
			t.Errorf("message %d %q has no category", i, m.Text)
		}
	}
}

func TestTexts(t *testing.T) {
	messages := []Message{
		{Text: "one", Category: CategoryPraise},
		{Text: "two", Category: CategoryTechniqueTip},
	}
	got := Texts(messages)
	if len(got) != 2 || got[0] != "one" || got[1] != "two" {
		t.Errorf("Texts() = %v, want [one two]", got)
	}
}

func TestFeedback_NilResult(t *testing.T) {
	if messages := Feedback(nil); messages != nil {
		t.Errorf("expected nil for a nil result, got %v", messages)
	}
}

func TestDailyTip(t *testing.T) {
	day := time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

	first := DailyTip(day)
	second := DailyTip(day.Add(4 * time.Hour))
	if first != second {
		t.Errorf("expected the same tip all day, got %q and %q", first, second)
	}

	found := false
	for _, tip := range dailyTips {
		if tip == first {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected the tip to come from the fixed list, got %q", first)
	}

	// Different days must be able to produce different tips.
	varies := false
	for i := 1; i <= 14; i++ {
		if DailyTip(day.AddDate(0, 0, i)) != first {
			varies = true
			break
		}
	}
	if !varies {
		t.Error("expected the tip to vary across two weeks")
	}
}

func containsSubstring[T Message | string](messages []T, sub string) bool {
	for _, m := range messages {
		var text string
		switch v := any(m).(type) {
		case Message:
			text = v.Text
		case string:
			text = v
		}
		if strings.Contains(text, sub) {
			return true
		}
	}
	return false
}
