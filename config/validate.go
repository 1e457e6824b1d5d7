package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("config: validate: %w", err)
	}

	// Map the first failing field to its sentinel so callers can branch on
	// the error.
	first := fieldErrs[0]
	switch first.Field() {
	case "DataDir":
		return ErrEmptyDataDir
	case "PublisherURL", "AggregatorURL", "LedgerURL":
		return fmt.Errorf("%w: %s %q", ErrInvalidEndpoint, first.Field(), first.Value())
	case "Epochs":
		return ErrInvalidEpochs
	case "PollInterval", "PollMaxAttempts":
		return ErrInvalidPollBudget
	case "LogLevel":
		return ErrInvalidLogLevel
	}
	return fmt.Errorf("config: validate: %w", err)
}
