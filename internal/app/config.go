package app

import "fmt"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ManifestPath is a single .hcl file or a directory containing .hcl files.
	ManifestPath string
	// Serve switches from one-shot build mode to the dev server.
	Serve bool
	// ListenAddr is the dev server's listen address.
	ListenAddr string
	// LogFormat is 'text' or 'json'.
	LogFormat string
	// LogLevel is 'debug', 'info', 'warn' or 'error'.
	LogLevel string
	// WorkerCount bounds concurrent image requests in build mode.
	WorkerCount int
}

// NewConfig validates a Config and fills unset fields with defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ManifestPath == "" {
		return nil, fmt.Errorf("manifest path must not be empty")
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 8
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	return &cfg, nil
}
