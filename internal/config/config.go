// Package config handles application configuration and command-line argument parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexflint/go-arg"

	"github.com/joe/stage-builds/pkg/fileops"
)

// DisplayMode selects the progress surface.
type DisplayMode int

const (
	// DisplayAuto picks tui on a terminal, plain otherwise
	DisplayAuto DisplayMode = iota
	// DisplayTUI forces the interactive display
	DisplayTUI
	// DisplayPlain forces the re-rendered plain-text table
	DisplayPlain
	// DisplayQuiet suppresses progress output entirely
	DisplayQuiet
)

// String returns the string representation of DisplayMode
func (dm DisplayMode) String() string {
	switch dm {
	case DisplayAuto:
		return "auto"
	case DisplayTUI:
		return "tui"
	case DisplayPlain:
		return "plain"
	case DisplayQuiet:
		return "quiet"
	default:
		return "unknown"
	}
}

// ParseDisplayMode parses a string into a DisplayMode
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch strings.ToLower(s) {
	case "auto":
		return DisplayAuto, nil
	case "tui":
		return DisplayTUI, nil
	case "plain":
		return DisplayPlain, nil
	case "quiet":
		return DisplayQuiet, nil
	default:
		return DisplayAuto, fmt.Errorf("invalid display mode: %s (valid: auto, tui, plain, quiet)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (dm *DisplayMode) UnmarshalText(text []byte) error {
	parsed, err := ParseDisplayMode(string(text))
	if err != nil {
		return err
	}

	*dm = parsed

	return nil
}

// Config holds the application configuration
type Config struct {
	DepotPath   string        `arg:"-s,--depot,env:STAGE_BUILDS_DEPOT" help:"Depot root holding one subdirectory per build version"`
	StagePath   string        `arg:"-d,--stage,env:STAGE_BUILDS_STAGE" help:"Local stage root, mirrors the version layout"`
	Include     string        `arg:"--include" help:"Version-name filter, match-all when empty"`
	Exclude     string        `arg:"--exclude" help:"Version-name exclusion, none when empty"`
	Pattern     string        `arg:"-p,--pattern" help:"Stage only files matching this glob"`
	Workers     int           `arg:"-w,--workers" default:"4" help:"Worker fan-out per queue drain"`
	Interval    time.Duration `arg:"--interval" default:"1s" help:"Progress publication interval"`
	Display     DisplayMode   `arg:"--display" default:"auto" help:"Progress surface: auto|tui|plain|quiet"`
	LogFile     string        `arg:"--log-file" help:"Debug log destination, off when empty"`
	HistoryPath string        `arg:"--history" help:"Session ledger path, defaults to the user cache dir"`
	NoHistory   bool          `arg:"--no-history" help:"Skip the session ledger"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Stages versioned build drops from a depot to a local stage directory, copying only what changed"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "stage-builds 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{
		Workers:  4,
		Interval: time.Second,
		Display:  DisplayAuto,
	}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig applies validation and defaulting to a parsed config
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}

	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", cfg.Interval)
	}

	if err := cfg.ValidatePaths(); err != nil {
		return nil, err
	}

	cfg.resolveHistoryPath()

	return cfg, nil
}

// ValidatePaths checks the depot root and prepares the stage root, creating
// it when absent.
func (cfg *Config) ValidatePaths() error {
	if cfg.DepotPath == "" {
		return fmt.Errorf("depot path is required")
	}

	if cfg.StagePath == "" {
		return fmt.Errorf("stage path is required")
	}

	depotInfo, err := os.Stat(cfg.DepotPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("depot path does not exist: %s", cfg.DepotPath)
	}

	if err != nil {
		return fmt.Errorf("cannot access depot path: %w", err)
	}

	if !depotInfo.IsDir() {
		return fmt.Errorf("depot path is not a directory: %s", cfg.DepotPath)
	}

	stageInfo, err := os.Stat(cfg.StagePath)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.StagePath, fileops.DefaultDirPermissions); err != nil {
			return fmt.Errorf("cannot create stage path: %w", err)
		}

		return nil
	}

	if err != nil {
		return fmt.Errorf("cannot access stage path: %w", err)
	}

	if !stageInfo.IsDir() {
		return fmt.Errorf("stage path is not a directory: %s", cfg.StagePath)
	}

	return nil
}

// resolveHistoryPath fills in the platform default ledger location. When no
// cache directory is available the ledger is skipped rather than failing
// the run.
func (cfg *Config) resolveHistoryPath() {
	if cfg.NoHistory || cfg.HistoryPath != "" {
		return
	}

	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cfg.NoHistory = true

		return
	}

	cfg.HistoryPath = filepath.Join(cacheDir, "stage-builds", "history.db")
}
