package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ayusman/repcoach/internal/analyze"
	"github.com/ayusman/repcoach/internal/classify"
	"github.com/ayusman/repcoach/internal/config"
	"github.com/ayusman/repcoach/internal/notify"
	"github.com/ayusman/repcoach/internal/server"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/store"
)

func main() {
	fmt.Println("RepCoach - Smart Workout Tracking")

	configPath := flag.String("config", "", "path to repcoach.yaml")
	addr := flag.String("addr", "", "listen address (overrides the config file)")
	flag.Parse()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Fatalf("Failed to get home directory: %v", err)
	}

	cfg, usedPath, err := config.LoadOrDefault(
		*configPath,
		"repcoach.yaml",
		filepath.Join(homeDir, ".repcoach", "repcoach.yaml"),
	)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if usedPath != "" {
		fmt.Printf("Loaded configuration from: %s\n", usedPath)
	}

	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(homeDir, ".repcoach")
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "repcoach.db")
	st, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer st.Close()

	runner := session.New(session.Config{
		Analyzer: analyze.NewAnalyzer(analyze.Config{
			SmoothingWindow:     cfg.Analysis.SmoothingWindow,
			PeakThresholdFactor: cfg.Analysis.PeakThresholdFactor,
			RefractorySec:       cfg.Analysis.RefractorySec,
			MinSamples:          cfg.Analysis.MinSamples,
		}),
		Classifier: loadClassifier(cfg),
		Defaults: session.Defaults{
			DurationSec:  cfg.Synthesis.DurationSec,
			SampleRateHz: cfg.Synthesis.SampleRateHz,
			NoiseLevel:   cfg.Synthesis.NoiseLevel,
		},
	})

	pluginDir := cfg.PluginDir
	if pluginDir == "" {
		pluginDir = filepath.Join(dataDir, "plugins")
	}
	notifier := notify.NewNotifier(pluginDir, 0)
	if err := notifier.Discover(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	} else if n := len(notifier.Manager().List()); n > 0 {
		fmt.Printf("Discovered %d notifier plugin(s)\n", n)
	}

	// Find web directory
	webDir := cfg.Server.WebDir
	if webDir == "" {
		webDir = findWebDir()
	}
	if webDir != "" {
		fmt.Printf("Serving static files from: %s\n", webDir)
	}

	// Configure and start server
	srv := server.New(server.Config{
		StaticDir: webDir,
		Store:     st,
		Runner:    runner,
		Notifier:  notifier,
	})

	listenAddr := cfg.Server.Addr
	if *addr != "" {
		listenAddr = *addr
	}
	fmt.Printf("Starting server on %s\n", listenAddr)
	if err := srv.ListenAndServe(listenAddr); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadClassifier builds the exercise classifier from the configured model
// artifact. A missing or unreadable model disables auto-detection rather
// than blocking startup.
func loadClassifier(cfg *config.Config) *classify.Classifier {
	if cfg.Classifier.ModelPath == "" {
		return nil
	}

	model, err := classify.LoadModel(cfg.Classifier.ModelPath)
	if err != nil {
		log.Printf("Classification disabled: %v", err)
		return nil
	}

	fmt.Printf("Loaded classification model from: %s\n", cfg.Classifier.ModelPath)
	return classify.NewClassifier(model, cfg.Classifier.ConfidenceThreshold)
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and ~/.repcoach/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	// Check relative paths from current working directory
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".repcoach", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}
