// Package config loads the RepCoach configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig covers the HTTP listener.
type ServerConfig struct {
	Addr   string `yaml:"addr"`
	WebDir string `yaml:"web_dir"`
}

// SynthesisConfig holds the defaults applied to workout requests that
// omit a field. The synthesizer itself enforces the hard bounds.
type SynthesisConfig struct {
	DurationSec  float64 `yaml:"duration_sec"`
	SampleRateHz float64 `yaml:"sample_rate_hz"`
	NoiseLevel   float64 `yaml:"noise_level"`
}

// AnalysisConfig tunes repetition detection.
type AnalysisConfig struct {
	SmoothingWindow     int     `yaml:"smoothing_window"`
	PeakThresholdFactor float64 `yaml:"peak_threshold_factor"`
	RefractorySec       float64 `yaml:"refractory_sec"`
	MinSamples          int     `yaml:"min_samples"`
}

// ClassifierConfig locates the model artifact and sets the confidence
// floor for committing to a prediction.
type ClassifierConfig struct {
	ModelPath           string  `yaml:"model_path"`
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// Config is the top-level structure of repcoach.yaml.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	DataDir    string           `yaml:"data_dir"`
	PluginDir  string           `yaml:"plugin_dir"`
	Synthesis  SynthesisConfig  `yaml:"synthesis"`
	Analysis   AnalysisConfig   `yaml:"analysis"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Synthesis: SynthesisConfig{
			DurationSec:  10,
			SampleRateHz: 50,
			NoiseLevel:   0.05,
		},
		Analysis: AnalysisConfig{
			SmoothingWindow:     5,
			PeakThresholdFactor: 1.0,
			RefractorySec:       0.3,
			MinSamples:          10,
		},
		Classifier: ClassifierConfig{
			ConfidenceThreshold: 0.4,
		},
	}
}

// Load reads and parses a repcoach.yaml, layering it over the defaults so
// an incomplete file still yields a usable configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault loads the first existing path from candidates, falling
// back to DefaultConfig when none exists. The second return value names
// the file that was used, or "" for the defaults.
func LoadOrDefault(candidates ...string) (*Config, string, error) {
	for _, path := range candidates {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := Load(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return DefaultConfig(), "", nil
}
