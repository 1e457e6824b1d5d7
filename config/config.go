// Package config holds the client-side settings for the document pipeline:
// storage endpoints, ledger endpoint, polling budget, and local data
// directory. Settings load from a flat key=value file, with environment
// overrides for deployment.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/fathom0x/libfathom-go/query"
	"github.com/fathom0x/libfathom-go/walrus"
)

// Config holds all runtime configuration.
type Config struct {
	DataDir         string        `validate:"required"`
	PublisherURL    string        `validate:"required,url"`
	AggregatorURL   string        `validate:"required,url"`
	LedgerURL       string        `validate:"required,url"`
	Epochs          int           `validate:"min=1"`
	PollInterval    time.Duration `validate:"gt=0"`
	PollMaxAttempts int           `validate:"min=1"`
	LogLevel        string        `validate:"oneof=debug info warn error"`
}

// DefaultConfig returns the configuration used when no file or environment
// overrides are present: public testnet endpoints, a local ledger gateway,
// and the standard polling budget.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		DataDir:         filepath.Join(home, ".fathom"),
		PublisherURL:    walrus.DefaultPublisherURL,
		AggregatorURL:   walrus.DefaultAggregatorURL,
		LedgerURL:       "http://localhost:9000/rpc",
		Epochs:          walrus.DefaultEpochs,
		PollInterval:    query.DefaultInterval,
		PollMaxAttempts: query.DefaultMaxAttempts,
		LogLevel:        "info",
	}
}

// KeystorePath returns the location of the key-material index inside the
// data directory.
func (c Config) KeystorePath() string {
	return filepath.Join(c.DataDir, "keys.db")
}

// LoadConfig reads a flat key=value config file. Missing keys keep their
// defaults, unknown keys are ignored for forward compatibility, '#' starts a
// comment.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return cfg, fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNo, line)
		}
		if err := cfg.set(strings.TrimSpace(key), strings.TrimSpace(value)); err != nil {
			return cfg, fmt.Errorf("config: line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes cfg as a flat key=value file, creating parent
// directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Fathom client configuration\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "publisher = %s\n", cfg.PublisherURL)
	fmt.Fprintf(&b, "aggregator = %s\n", cfg.AggregatorURL)
	fmt.Fprintf(&b, "ledger = %s\n", cfg.LedgerURL)
	fmt.Fprintf(&b, "epochs = %d\n", cfg.Epochs)
	fmt.Fprintf(&b, "pollinterval = %s\n", cfg.PollInterval)
	fmt.Fprintf(&b, "pollattempts = %d\n", cfg.PollMaxAttempts)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}

// FromEnv returns the defaults overridden by FATHOM_* environment variables.
// When envFile is non-empty it is loaded first (dotenv format); a missing
// env file is not an error, the environment alone decides.
func FromEnv(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: load env file %s: %w", envFile, err)
		}
	}

	cfg := DefaultConfig()
	for key, set := range map[string]string{
		"FATHOM_DATA_DIR":       "datadir",
		"FATHOM_PUBLISHER_URL":  "publisher",
		"FATHOM_AGGREGATOR_URL": "aggregator",
		"FATHOM_LEDGER_URL":     "ledger",
		"FATHOM_EPOCHS":         "epochs",
		"FATHOM_POLL_INTERVAL":  "pollinterval",
		"FATHOM_POLL_ATTEMPTS":  "pollattempts",
		"FATHOM_LOG_LEVEL":      "loglevel",
	} {
		if value, ok := os.LookupEnv(key); ok {
			if err := cfg.set(set, value); err != nil {
				return cfg, fmt.Errorf("config: %s: %w", key, err)
			}
		}
	}
	return cfg, nil
}

// set applies one key=value pair. Unknown keys are ignored so old binaries
// tolerate config files written by newer ones.
func (c *Config) set(key, value string) error {
	switch strings.ToLower(key) {
	case "datadir":
		c.DataDir = value
	case "publisher":
		c.PublisherURL = value
	case "aggregator":
		c.AggregatorURL = value
	case "ledger":
		c.LedgerURL = value
	case "epochs":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("epochs: %w", err)
		}
		c.Epochs = n
	case "pollinterval":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("pollinterval: %w", err)
		}
		c.PollInterval = d
	case "pollattempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("pollattempts: %w", err)
		}
		c.PollMaxAttempts = n
	case "loglevel":
		c.LogLevel = strings.ToLower(value)
	}
	return nil
}
