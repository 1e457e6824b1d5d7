// Package walrus implements the resilient blob-store client for the Fathom
// pipeline. It uploads and downloads opaque ciphertext against a
// content-addressed Walrus deployment, trying multiple endpoint URL shapes in
// order, normalizing the heterogeneous success responses, and falling back to
// an in-process simulated store when every real endpoint is unreachable.
package walrus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultPublisherURL and DefaultAggregatorURL point at the public
	// Walrus testnet deployment.
	DefaultPublisherURL  = "https://publisher.walrus-testnet.walrus.space"
	DefaultAggregatorURL = "https://aggregator.walrus-testnet.walrus.space"

	// DefaultEpochs is the storage duration requested when the caller does
	// not specify one.
	DefaultEpochs = 5

	// MaxBlobResponseSize caps a download body (1 GB). Prevents memory
	// exhaustion from a misbehaving aggregator.
	MaxBlobResponseSize = 1 << 30

	// maxStoreResponseSize caps the JSON body of a store response (1 MB).
	maxStoreResponseSize = 1 << 20
)

// Config holds the endpoints and defaults for a Client.
type Config struct {
	PublisherURL  string // write API base URL
	AggregatorURL string // read API base URL
	Epochs        int    // default storage epochs per upload
}

// UploadOptions carries per-upload overrides.
type UploadOptions struct {
	Epochs int // 0 uses the client default
}

// UploadResult is the single normalized output shape for an upload,
// regardless of whether the store reported a newly created blob, an already
// certified one, or the simulated fallback served the request.
type UploadResult struct {
	BlobID     string    // content handle; sole external reference to the blob
	Size       int64     // uploaded payload size in bytes
	UploadedAt time.Time // client-side completion time
	ObjectRef  string    // ledger object id of the blob, when newly created
	EndEpoch   uint64    // last storage epoch, when known
	Simulated  bool      // true when the SimulatedStore served the upload
}

// BlobInfo is the best-effort metadata for a stored blob.
type BlobInfo struct {
	Exists      bool
	Size        int64
	ContentType string
}

// Client is the blob-store client. The zero value is not usable; construct
// with NewClient.
type Client struct {
	cfg    Config
	client *http.Client
	sim    *SimulatedStore
	Log    *logrus.Logger
}

// NewClient creates a Client with the given configuration. Empty endpoint
// URLs fall back to the public testnet deployment and a zero epoch count to
// DefaultEpochs.
func NewClient(cfg Config) *Client {
	if cfg.PublisherURL == "" {
		cfg.PublisherURL = DefaultPublisherURL
	}
	if cfg.AggregatorURL == "" {
		cfg.AggregatorURL = DefaultAggregatorURL
	}
	if cfg.Epochs <= 0 {
		cfg.Epochs = DefaultEpochs
	}
	return &Client{
		cfg: cfg,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     90 * time.Second,
				MaxIdleConnsPerHost: 10,
			},
		},
		sim: NewSimulatedStore(DefaultSimulatedLatency),
		Log: logrus.StandardLogger(),
	}
}

// SetSimulatedStore replaces the fallback store. Used by tests to remove the
// simulated latency.
func (c *Client) SetSimulatedStore(sim *SimulatedStore) { c.sim = sim }

// storeEndpoints returns the ordered publisher URL shapes to try. Deployments
// differ in whether the API is versioned and whether the epochs parameter is
// accepted, so the client probes from most to least specific.
func (c *Client) storeEndpoints(epochs int) []string {
	e := strconv.Itoa(epochs)
	return []string{
		c.cfg.PublisherURL + "/v1/store?epochs=" + e,
		c.cfg.PublisherURL + "/store?epochs=" + e,
		c.cfg.PublisherURL + "/v1/store",
		c.cfg.PublisherURL + "/store",
	}
}

// readEndpoints returns the ordered aggregator URL shapes for a blob id.
func (c *Client) readEndpoints(blobID string) []string {
	return []string{
		c.cfg.AggregatorURL + "/v1/" + blobID,
		c.cfg.AggregatorURL + "/" + blobID,
	}
}

// Upload stores blob and returns the normalized result. Candidate endpoints
// are attempted strictly in order; the first 2xx response wins. Re-uploading
// identical content may return an already-certified reference with the same
// blob id — that is success, not an error.
//
// When every endpoint fails the upload is transparently re-issued against the
// SimulatedStore and the result is marked Simulated. Callers must surface
// that flag to the end user: a simulated blob id carries no real data and can
// never be downloaded.
func (c *Client) Upload(ctx context.Context, blob []byte, opts UploadOptions) (*UploadResult, error) {
	epochs := opts.Epochs
	if epochs <= 0 {
		epochs = c.cfg.Epochs
	}

	uploadID := uuid.NewString()
	log := c.Log.WithFields(logrus.Fields{
		"upload_id": uploadID,
		"size":      len(blob),
		"epochs":    epochs,
	})
	log.Debug("starting blob upload")

	var lastErr error
	for _, endpoint := range c.storeEndpoints(epochs) {
		result, err := c.uploadTo(ctx, endpoint, blob)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.WithError(err).WithField("endpoint", endpoint).Debug("store endpoint failed")
			lastErr = err
			continue
		}
		log.WithField("blob_id", result.BlobID).Info("blob uploaded")
		return result, nil
	}

	// Every real endpoint failed. Degrade to the simulated store so the rest
	// of the pipeline can proceed; the tagged blob id keeps the caller honest
	// about durability.
	log.WithError(fmt.Errorf("%w: %w", ErrAllEndpointsFailed, lastErr)).
		Warn("falling back to simulated store")

	result, err := c.sim.Upload(ctx, blob)
	if err != nil {
		return nil, err
	}
	log.WithField("blob_id", result.BlobID).Warn("blob stored in simulated store only")
	return result, nil
}

// uploadTo issues one PUT against a single store endpoint and normalizes the
// union-shaped response.
func (c *Client) uploadTo(ctx context.Context, endpoint string, blob []byte) (*UploadResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("walrus: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("walrus: put %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("walrus: %s: HTTP %d: %s", endpoint, resp.StatusCode, string(body))
	}

	var stored storeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxStoreResponseSize)).Decode(&stored); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", ErrUnexpectedResponse, err)
	}

	return stored.normalize(int64(len(blob)), time.Now().UTC())
}

// Download retrieves the blob bytes for blobID, trying aggregator endpoints
// in order. There is no simulated fallback on the read path: a simulated id
// has no bytes to return, so it fails immediately with ErrNotRetrievable
// without touching the network. All-endpoints failure also surfaces as
// ErrNotRetrievable.
func (c *Client) Download(ctx context.Context, blobID string) ([]byte, error) {
	if IsSimulatedID(blobID) {
		return nil, fmt.Errorf("%w: %s was stored in the simulated store", ErrNotRetrievable, blobID)
	}

	var lastErr error
	for _, endpoint := range c.readEndpoints(blobID) {
		data, err := c.downloadFrom(ctx, endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.Log.WithError(err).WithField("endpoint", endpoint).Debug("read endpoint failed")
			lastErr = err
			continue
		}
		c.Log.WithFields(logrus.Fields{"blob_id": blobID, "size": len(data)}).
			Debug("blob downloaded")
		return data, nil
	}

	return nil, fmt.Errorf("%w: %w", ErrNotRetrievable, lastErr)
}

// downloadFrom fetches the raw blob body from a single aggregator endpoint.
func (c *Client) downloadFrom(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("walrus: create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("walrus: get %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("walrus: %s: HTTP %d", endpoint, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBlobResponseSize))
	if err != nil {
		return nil, fmt.Errorf("walrus: %s: read body: %w", endpoint, err)
	}

	return data, nil
}

// Exists reports whether blobID is retrievable from any aggregator endpoint.
// Best-effort and read-only: network failure collapses to false, never an
// error. Simulated ids are never retrievable.
func (c *Client) Exists(ctx context.Context, blobID string) bool {
	return c.Metadata(ctx, blobID).Exists
}

// Metadata returns best-effort blob metadata via HEAD. It never returns an
// error; any failure collapses to Exists=false.
func (c *Client) Metadata(ctx context.Context, blobID string) BlobInfo {
	if IsSimulatedID(blobID) {
		return BlobInfo{}
	}

	for _, endpoint := range c.readEndpoints(blobID) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
		if err != nil {
			continue
		}
		resp, err := c.client.Do(req)
		if err != nil {
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			continue
		}

		info := BlobInfo{Exists: true, ContentType: resp.Header.Get("Content-Type")}
		if cl := resp.Header.Get("Content-Length"); cl != "" {
			if size, perr := strconv.ParseInt(cl, 10, 64); perr == nil {
				info.Size = size
			}
		}
		return info
	}

	return BlobInfo{}
}
