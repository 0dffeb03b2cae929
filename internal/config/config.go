// Package config loads the optional YAML configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File mirrors the recognized configuration surface. Zero values mean
// "not set"; the CLI applies file values only to flags the user did not
// set explicitly, so precedence is flag > file > built-in default.
type File struct {
	Input              string        `yaml:"input"`
	Tool               string        `yaml:"tool"`
	WebhookURL         string        `yaml:"webhook_url"`
	ProbeConcurrency   int           `yaml:"probe_concurrency"`
	CaptureConcurrency int           `yaml:"capture_concurrency"`
	HTTPTimeout        time.Duration `yaml:"http_timeout"`
	BrowserTimeout     time.Duration `yaml:"browser_timeout"`
	UserAgent          string        `yaml:"user_agent"`
}

// Load parses the YAML config at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if f.ProbeConcurrency < 0 || f.CaptureConcurrency < 0 {
		return nil, fmt.Errorf("config %s: concurrency values must be positive", path)
	}
	return &f, nil
}
