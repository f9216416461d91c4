package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Synthesis.DurationSec != 10 {
		t.Errorf("expected default duration 10, got %f", cfg.Synthesis.DurationSec)
	}
	if cfg.Synthesis.SampleRateHz != 50 {
		t.Errorf("expected default rate 50, got %f", cfg.Synthesis.SampleRateHz)
	}
	if cfg.Synthesis.NoiseLevel != 0.05 {
		t.Errorf("expected default noise 0.05, got %f", cfg.Synthesis.NoiseLevel)
	}
	if cfg.Analysis.MinSamples != 10 {
		t.Errorf("expected default min samples 10, got %d", cfg.Analysis.MinSamples)
	}
	if cfg.Classifier.ConfidenceThreshold != 0.4 {
		t.Errorf("expected default confidence threshold 0.4, got %f", cfg.Classifier.ConfidenceThreshold)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repcoach.yaml")
	content := `
server:
  addr: ":9000"
synthesis:
  noise_level: 0.1
classifier:
  model_path: /tmp/model.json
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected overridden addr, got %q", cfg.Server.Addr)
	}
	if cfg.Synthesis.NoiseLevel != 0.1 {
		t.Errorf("expected overridden noise, got %f", cfg.Synthesis.NoiseLevel)
	}
	if cfg.Classifier.ModelPath != "/tmp/model.json" {
		t.Errorf("expected model path, got %q", cfg.Classifier.ModelPath)
	}

	// Untouched sections keep their defaults.
	if cfg.Synthesis.DurationSec != 10 {
		t.Errorf("expected default duration to survive, got %f", cfg.Synthesis.DurationSec)
	}
	if cfg.Analysis.RefractorySec != 0.3 {
		t.Errorf("expected default refractory to survive, got %f", cfg.Analysis.RefractorySec)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "repcoach.yaml")
	if err := os.WriteFile(path, []byte("server: [not: a: map"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("no candidates yields defaults", func(t *testing.T) {
		cfg, used, err := LoadOrDefault("", filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("expected no error: %v", err)
		}
		if used != "" {
			t.Errorf("expected no file to be used, got %q", used)
		}
		if cfg.Server.Addr != ":8080" {
			t.Errorf("expected default config, got addr %q", cfg.Server.Addr)
		}
	})

	t.Run("first existing candidate wins", func(t *testing.T) {
		dir := t.TempDir()
		first := filepath.Join(dir, "first.yaml")
		second := filepath.Join(dir, "second.yaml")
		if err := os.WriteFile(first, []byte("server:\n  addr: \":9001\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if err := os.WriteFile(second, []byte("server:\n  addr: \":9002\"\n"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cfg, used, err := LoadOrDefault(filepath.Join(dir, "missing.yaml"), first, second)
		if err != nil {
			t.Fatalf("expected no error: %v", err)
		}
		if used != first {
			t.Errorf("expected %q to be used, got %q", first, used)
		}
		if cfg.Server.Addr != ":9001" {
			t.Errorf("expected the first candidate's addr, got %q", cfg.Server.Addr)
		}
	})
}
