package e2e

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/repcoach/internal/classify"
	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/features"
	"github.com/ayusman/repcoach/internal/notify"
	"github.com/ayusman/repcoach/internal/server"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/signal"
	"github.com/ayusman/repcoach/internal/store"
)

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := server.New(server.Config{
		Store:  s,
		Runner: session.New(session.Config{}),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	var workoutID string

	t.Run("CreateWorkout", func(t *testing.T) {
		resp, err := client.Post(
			ts.URL+"/api/workouts",
			"application/json",
			strings.NewReader(`{"exercise": "squat", "duration_sec": 8, "sample_rate_hz": 50, "seed": 42}`),
		)
		if err != nil {
			t.Fatalf("create workout error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
		}

		var created struct {
			Workout struct {
				ID          string  `json:"id"`
				Exercise    string  `json:"exercise"`
				Repetitions int     `json:"repetitions"`
				Score       float64 `json:"score"`
			} `json:"workout"`
			XPEarned int `json:"xp_earned"`
			Unlocked []struct {
				ID string `json:"id"`
			} `json:"unlocked_achievements"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			t.Fatalf("decode create response error = %v", err)
		}

		workoutID = created.Workout.ID
		if workoutID == "" {
			t.Fatal("expected a workout ID")
		}
		if created.Workout.Repetitions == 0 {
			t.Error("expected counted repetitions")
		}
		if created.XPEarned <= 0 {
			t.Errorf("xp_earned = %d, want > 0", created.XPEarned)
		}
		if len(created.Unlocked) == 0 {
			t.Error("first workout should unlock an achievement")
		}
	})

	t.Run("StatsReflectWorkout", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/stats")
		if err != nil {
			t.Fatalf("get stats error = %v", err)
		}
		defer resp.Body.Close()

		var stats struct {
			TotalWorkouts int `json:"total_workouts"`
			XP            int `json:"xp"`
			Level         int `json:"level"`
			CurrentStreak int `json:"current_streak"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
			t.Fatalf("decode stats error = %v", err)
		}

		if stats.TotalWorkouts != 1 {
			t.Errorf("total_workouts = %d, want 1", stats.TotalWorkouts)
		}
		if stats.XP <= 0 {
			t.Errorf("xp = %d, want > 0", stats.XP)
		}
		if stats.CurrentStreak != 1 {
			t.Errorf("current_streak = %d, want 1", stats.CurrentStreak)
		}
	})

	t.Run("AchievementsUnlocked", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/achievements")
		if err != nil {
			t.Fatalf("get achievements error = %v", err)
		}
		defer resp.Body.Close()

		var achievements struct {
			Unlocked int `json:"unlocked_count"`
			Total    int `json:"total"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&achievements); err != nil {
			t.Fatalf("decode achievements error = %v", err)
		}

		if achievements.Unlocked == 0 {
			t.Error("expected at least one unlocked achievement")
		}
		if achievements.Total == 0 {
			t.Error("expected a non-empty catalog")
		}
	})

	t.Run("HistoryListsWorkout", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/workouts")
		if err != nil {
			t.Fatalf("list workouts error = %v", err)
		}
		defer resp.Body.Close()

		var list struct {
			Workouts []struct {
				ID string `json:"id"`
			} `json:"workouts"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			t.Fatalf("decode list error = %v", err)
		}

		if len(list.Workouts) != 1 {
			t.Fatalf("expected 1 workout, got %d", len(list.Workouts))
		}
		if list.Workouts[0].ID != workoutID {
			t.Errorf("listed id = %s, want %s", list.Workouts[0].ID, workoutID)
		}
	})

	t.Run("TracePreview", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/trace?exercise=squat&seed=5")
		if err != nil {
			t.Fatalf("get trace error = %v", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}

		var trace struct {
			Samples []struct {
				T float64 `json:"t"`
			} `json:"samples"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&trace); err != nil {
			t.Fatalf("decode trace error = %v", err)
		}
		if len(trace.Samples) == 0 {
			t.Error("expected trace samples")
		}
	})

	t.Run("ExportCSV", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/workouts/export")
		if err != nil {
			t.Fatalf("export error = %v", err)
		}
		defer resp.Body.Close()

		if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
			t.Errorf("Content-Type = %s, want text/csv", ct)
		}

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read export error = %v", err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != 2 {
			t.Errorf("expected header and one row, got %d lines", len(lines))
		}
		if !strings.HasPrefix(lines[0], "id,exercise") {
			t.Errorf("unexpected CSV header: %s", lines[0])
		}
	})

	t.Run("APIStillWorks", func(t *testing.T) {
		resp, _ := client.Get(ts.URL + "/api/health")
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health check failed after workflow")
		}
		resp.Body.Close()
	})
}

func TestE2E_LiveEventsDuringWorkout(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := server.New(server.Config{
		Store:  s,
		Runner: session.New(session.Config{}),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/live"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial live socket error = %v", err)
	}
	defer conn.Close()

	// Give the hub a moment to register the client
	time.Sleep(100 * time.Millisecond)

	resp, err := ts.Client().Post(
		ts.URL+"/api/workouts",
		"application/json",
		strings.NewReader(`{"exercise": "pushup", "duration_sec": 8, "seed": 3}`),
	)
	if err != nil {
		t.Fatalf("create workout error = %v", err)
	}
	resp.Body.Close()

	// The run publishes phase transitions followed by the saved workout
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	sawWorkout := false
	for i := 0; i < 10 && !sawWorkout; i++ {
		_, message, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read live event error = %v", err)
		}

		var event struct {
			Kind      string `json:"kind"`
			Timestamp int64  `json:"timestamp"`
		}
		if err := json.Unmarshal(message, &event); err != nil {
			t.Fatalf("decode live event error = %v", err)
		}
		if event.Kind == "" {
			t.Fatal("expected an event kind")
		}
		if event.Kind == "workout" {
			sawWorkout = true
		}
	}

	if !sawWorkout {
		t.Error("expected a workout event on the live socket")
	}
}

func TestE2E_AutoDetectWithTrainedModel(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tmpDir := t.TempDir()
	modelPath := filepath.Join(tmpDir, "model.json")
	trainTinyModel(t, modelPath)

	model, err := classify.LoadModel(modelPath)
	if err != nil {
		t.Fatalf("load trained model error = %v", err)
	}

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := server.New(server.Config{
		Store: s,
		Runner: session.New(session.Config{
			Classifier: classify.NewClassifier(model, 0.3),
		}),
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Post(
		ts.URL+"/api/workouts",
		"application/json",
		strings.NewReader(`{"exercise": "squat", "duration_sec": 8, "seed": 42, "auto_detect": true}`),
	)
	if err != nil {
		t.Fatalf("create workout error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var created struct {
		Workout struct {
			Exercise     string   `json:"exercise"`
			DetectedByAI bool     `json:"detected_by_ai"`
			AIConfidence *float64 `json:"ai_confidence"`
		} `json:"workout"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response error = %v", err)
	}

	if !created.Workout.DetectedByAI {
		t.Error("expected the workout to be AI detected")
	}
	if created.Workout.AIConfidence == nil {
		t.Fatal("expected a confidence value")
	}
	if created.Workout.Exercise != "squat" {
		t.Errorf("detected exercise = %s, want squat", created.Workout.Exercise)
	}
}

func TestE2E_NotifierPluginReceivesEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}
	if runtime.GOOS == "windows" {
		t.Skip("script plugins are not supported on windows")
	}

	tmpDir := t.TempDir()
	pluginDir := filepath.Join(tmpDir, "plugins")
	logPath := writeLoggerPlugin(t, pluginDir)

	notifier := notify.NewNotifier(pluginDir, 0)
	if err := notifier.Discover(); err != nil {
		t.Fatalf("plugin discovery error = %v", err)
	}

	s, err := store.New(filepath.Join(tmpDir, "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	srv := server.New(server.Config{
		Store:    s,
		Runner:   session.New(session.Config{}),
		Notifier: notifier,
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Post(
		ts.URL+"/api/workouts",
		"application/json",
		strings.NewReader(`{"exercise": "squat", "duration_sec": 8, "seed": 42}`),
	)
	if err != nil {
		t.Fatalf("create workout error = %v", err)
	}
	resp.Body.Close()

	// Events are dispatched in the background; the first workout produces a
	// completion event and a first_step unlock.
	deadline := time.Now().Add(3 * time.Second)
	var content string
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(logPath)
		if err == nil {
			content = string(data)
			if strings.Contains(content, "workout.completed") && strings.Contains(content, "achievement.unlocked") {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
	}

	if !strings.Contains(content, "workout.completed") {
		t.Errorf("expected a workout.completed event, log = %q", content)
	}
	if !strings.Contains(content, "achievement.unlocked") {
		t.Errorf("expected an achievement.unlocked event, log = %q", content)
	}
}

// trainTinyModel fits a small forest on synthesized traces of every
// exercise and saves the artifact.
func trainTinyModel(t *testing.T, path string) {
	t.Helper()

	synth := signal.NewSynthesizer()
	extractor := features.NewExtractor()

	var vectors []features.Vector
	var labels []exercise.Type
	for ci, ex := range exercise.All() {
		for i := 0; i < 8; i++ {
			seed := int64(1000*ci + i + 1)
			trace, err := synth.Generate(ex, 8, 40, 0.05, seed)
			if err != nil {
				t.Fatalf("synthesize %s error = %v", ex, err)
			}
			vector, err := extractor.Extract(trace)
			if err != nil {
				t.Fatalf("extract features error = %v", err)
			}
			vectors = append(vectors, vector)
			labels = append(labels, ex)
		}
	}

	trainer := classify.NewTrainer(classify.TrainerConfig{NumTrees: 15, MaxDepth: 8, Seed: 7})
	model, err := trainer.Train(vectors, labels)
	if err != nil {
		t.Fatalf("train error = %v", err)
	}
	if err := model.Save(path); err != nil {
		t.Fatalf("save model error = %v", err)
	}
}

// writeLoggerPlugin installs a plugin that appends every received event to
// a log file. Returns the log path.
func writeLoggerPlugin(t *testing.T, pluginDir string) string {
	t.Helper()

	dir := filepath.Join(pluginDir, "logger")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("create plugin dir error = %v", err)
	}

	manifest := `{"name": "logger", "version": "1.0.0", "description": "Appends events to a log", "executable": "run.sh", "events": []}`
	if err := os.WriteFile(filepath.Join(dir, "plugin.json"), []byte(manifest), 0644); err != nil {
		t.Fatalf("write manifest error = %v", err)
	}

	logPath := filepath.Join(dir, "events.log")
	script := fmt.Sprintf("#!/bin/sh\ncat >> %q\necho \"\" >> %q\necho '{\"success\": true}'\n", logPath, logPath)
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("write script error = %v", err)
	}

	return logPath
}
