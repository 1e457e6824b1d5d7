package keystore

import "errors"

var (
	// ErrNotFound indicates no value exists for the given key.
	ErrNotFound = errors.New("keystore: not found")

	// ErrAlreadyExists indicates an attempt to overwrite an index entry with
	// different contents. Entries are written once per blob id.
	ErrAlreadyExists = errors.New("keystore: entry already exists")

	// ErrSealFailed indicates a sealed key-material blob could not be opened:
	// wrong passphrase, truncated input, or corruption.
	ErrSealFailed = errors.New("keystore: cannot open sealed key material")
)
