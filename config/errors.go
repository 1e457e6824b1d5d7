package config

import "errors"

var (
	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidEndpoint indicates a publisher, aggregator, or ledger URL is
	// malformed.
	ErrInvalidEndpoint = errors.New("config: invalid endpoint URL")

	// ErrInvalidEpochs indicates the storage epoch count is out of range.
	ErrInvalidEpochs = errors.New("config: epochs must be at least 1")

	// ErrInvalidPollBudget indicates the poll interval or attempt count is
	// out of range.
	ErrInvalidPollBudget = errors.New("config: poll interval must be positive and attempts at least 1")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")

	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrInvalidConfigLine indicates a line in the config file is malformed.
	ErrInvalidConfigLine = errors.New("config: invalid configuration line")
)
