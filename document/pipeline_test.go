package document

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathom0x/libfathom-go/keystore"
	"github.com/fathom0x/libfathom-go/ledger"
	"github.com/fathom0x/libfathom-go/walrus"
)

// TestPipelineEndToEnd drives a 10,000-byte document through the real blob
// client: encrypt, upload (first publisher endpoint down, second succeeds),
// register, then download and decrypt back to the original bytes.
func TestPipelineEndToEnd(t *testing.T) {
	plaintext := make([]byte, 10000)
	_, err := rand.Read(plaintext)
	require.NoError(t, err)

	const blobID = "E7_nNXvFU_3qZVu3OH1yycRG7LZlyn1-UxEDCDDqGGU"

	var mu sync.Mutex
	var stored []byte
	var storePaths []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case r.Method == http.MethodPut:
			storePaths = append(storePaths, r.URL.Path+"?"+r.URL.RawQuery)
			// The versioned store endpoint is down on this deployment.
			if r.URL.Path == "/v1/store" {
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
			stored, _ = io.ReadAll(r.Body)
			fmt.Fprintf(w, `{"alreadyCertified": {"blobId": %q, "endEpoch": 20}}`, blobID)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/"+blobID:
			_, _ = w.Write(stored)
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer server.Close()

	store := walrus.NewClient(walrus.Config{PublisherURL: server.URL, AggregatorURL: server.URL})
	store.SetSimulatedStore(walrus.NewSimulatedStore(0))
	store.Log = quietLogger()

	svc := &ledger.MockService{
		RegisterDocumentFn: func(ctx context.Context, gotBlobID, name, description string) (*ledger.TxHandle, error) {
			assert.Equal(t, blobID, gotBlobID)
			return &ledger.TxHandle{Digest: "digest-e2e", ObjectID: "0xdoc-e2e"}, nil
		},
	}

	keys := keystore.NewIndex(keystore.NewMemStore())

	registrar := NewRegistrar(store, svc, keys)
	registrar.Log = quietLogger()

	reg, err := registrar.Register(context.Background(), plaintext, "dataset", "e2e document")
	require.NoError(t, err)

	assert.Equal(t, blobID, reg.BlobID)
	assert.Equal(t, "0xdoc-e2e", reg.DocumentID)
	assert.False(t, reg.Simulated)

	// The versioned endpoint was tried first, then the bare one succeeded.
	assert.Equal(t, []string{
		"/v1/store?epochs=5",
		"/store?epochs=5",
	}, storePaths)

	// The publisher never saw the plaintext.
	assert.NotEqual(t, plaintext, stored)
	assert.NotEmpty(t, stored)

	retriever := NewRetriever(store, keys)
	retriever.Log = quietLogger()

	got, err := retriever.RetrieveLocal(context.Background(), blobID)
	require.NoError(t, err)
	assert.Equal(t, plaintext, got)
}
