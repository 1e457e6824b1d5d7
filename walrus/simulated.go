package walrus

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SimulatedIDPrefix tags every blob id issued by the SimulatedStore.
	// The tag is the contract that keeps degraded-mode results honest:
	// any component can recognize a simulated id and must never present it
	// as durably stored.
	SimulatedIDPrefix = "sim:"

	// DefaultSimulatedLatency approximates a store round trip so degraded
	// mode does not behave suspiciously instantly.
	DefaultSimulatedLatency = 250 * time.Millisecond
)

// SimulatedStore is the in-process fallback used when every real store
// endpoint is unreachable. It issues structurally valid but tagged blob ids
// and never persists bytes anywhere: its only job is to let the rest of the
// pipeline proceed deterministically while the network is down.
type SimulatedStore struct {
	Latency time.Duration
}

// NewSimulatedStore creates a SimulatedStore with the given artificial
// latency per operation. Zero latency is valid (used by tests).
func NewSimulatedStore(latency time.Duration) *SimulatedStore {
	return &SimulatedStore{Latency: latency}
}

// Upload issues a tagged blob id for the payload without storing it.
// The result mirrors a real upload except for the Simulated flag and the
// id prefix.
func (s *SimulatedStore) Upload(ctx context.Context, blob []byte) (*UploadResult, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}

	id, err := simulatedBlobID()
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		BlobID:     id,
		Size:       int64(len(blob)),
		UploadedAt: time.Now().UTC(),
		ObjectRef:  SimulatedIDPrefix + uuid.NewString(),
		Simulated:  true,
	}, nil
}

// Download always fails: a simulated id has no bytes behind it. Failing
// loudly here is what prevents fabricated data from leaking into a decrypt.
func (s *SimulatedStore) Download(ctx context.Context, blobID string) ([]byte, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s was stored in the simulated store", ErrNotRetrievable, blobID)
}

// sleep waits out the configured latency or the context, whichever ends first.
func (s *SimulatedStore) sleep(ctx context.Context) error {
	if s.Latency <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.Latency)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// simulatedBlobID builds a tagged id whose body has the same 43-character
// URL-safe-base64 shape as a real blob id.
func simulatedBlobID() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("walrus: random source failed: %w", err)
	}
	return SimulatedIDPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

// IsSimulatedID reports whether blobID was issued by the SimulatedStore.
func IsSimulatedID(blobID string) bool {
	return strings.HasPrefix(blobID, SimulatedIDPrefix)
}
