package walrus

import "errors"

var (
	// ErrAllEndpointsFailed indicates every candidate store endpoint returned
	// a failure. Uploads recover from this by degrading to the SimulatedStore;
	// it appears in logs and wrapped errors, never as an Upload return value.
	ErrAllEndpointsFailed = errors.New("walrus: all endpoints failed")

	// ErrNotRetrievable indicates the blob bytes cannot be fetched: either
	// the id is a simulated-store tag with no real data behind it, or every
	// aggregator endpoint failed. There is no read-path fallback by design.
	ErrNotRetrievable = errors.New("walrus: blob not retrievable")

	// ErrUnexpectedResponse indicates a store endpoint returned 2xx but the
	// body matched neither the newly-created nor the already-certified shape.
	ErrUnexpectedResponse = errors.New("walrus: unexpected store response")
)
