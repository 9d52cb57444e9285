package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"rankdrift/internal/predictor"
	"rankdrift/internal/rows"
)

// Config holds the settings of one classification pass
type Config struct {
	// Source is the row table URL or file path
	Source      string
	GitHubToken string
	// PreSort groups the row table by hash before the pass
	PreSort bool

	Predictor    string
	PredictorURL string
	ModelPath    string
	Delay        time.Duration
	Timeout      time.Duration
	MaxFailures  int

	OutDir  string
	Archive string
	SQLite  string

	Verbose bool
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		Source:       rows.DefaultSourceURL,
		Predictor:    string(predictor.RemoteKind),
		PredictorURL: predictor.DefaultRemoteURL,
		Delay:        predictor.DefaultDelay,
		Timeout:      predictor.DefaultTimeout,
		MaxFailures:  predictor.DefaultMaxFailures,
	}
}

// Load reads the given dotenv files (".env" when none are named) and applies
// environment overrides on top of the defaults. Missing dotenv files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("error loading %s: %w", f, err)
		}
	}

	cfg := Default()
	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHubToken = v
	}
	if v := os.Getenv("RANKDRIFT_SOURCE"); v != "" {
		c.Source = v
	}
	if v := os.Getenv("RANKDRIFT_PREDICTOR"); v != "" {
		c.Predictor = v
	}
	if v := os.Getenv("RANKDRIFT_PREDICTOR_URL"); v != "" {
		c.PredictorURL = v
	}
	if v := os.Getenv("RANKDRIFT_MODEL"); v != "" {
		c.ModelPath = v
	}
	if v := os.Getenv("RANKDRIFT_OUT"); v != "" {
		c.OutDir = v
	}
	if v := os.Getenv("RANKDRIFT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RANKDRIFT_DELAY: %w", err)
		}
		c.Delay = d
	}
	if v := os.Getenv("RANKDRIFT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("RANKDRIFT_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("RANKDRIFT_MAX_FAILURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RANKDRIFT_MAX_FAILURES: %w", err)
		}
		c.MaxFailures = n
	}
	return nil
}

// Validate checks that the settings are usable together
func (c Config) Validate() error {
	if c.Source == "" {
		return errors.New("no row source configured")
	}
	switch predictor.Kind(c.Predictor) {
	case predictor.RemoteKind:
		if c.PredictorURL == "" {
			return errors.New("remote predictor needs a URL")
		}
	case predictor.LocalKind:
		if c.ModelPath == "" {
			return errors.New("local predictor needs a model file")
		}
	default:
		return fmt.Errorf("unsupported predictor: %s", c.Predictor)
	}
	if c.Delay < 0 || c.Timeout < 0 {
		return errors.New("delay and timeout must not be negative")
	}
	if c.MaxFailures < 1 {
		return errors.New("max failures must be at least 1")
	}
	if c.OutDir == "" && c.Archive == "" && c.SQLite == "" {
		return errors.New("no output configured")
	}
	return nil
}

// PredictorOptions converts the settings for predictor.New
func (c Config) PredictorOptions() predictor.Options {
	return predictor.Options{
		URL:         c.PredictorURL,
		ModelPath:   c.ModelPath,
		Timeout:     c.Timeout,
		Delay:       c.Delay,
		MaxFailures: c.MaxFailures,
	}
}
