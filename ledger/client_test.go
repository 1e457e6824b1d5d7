package ledger

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newGateway runs a fake gateway that answers each method with the supplied
// raw JSON result.
func newGateway(t *testing.T, results map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, ok := results[req.Method]
		if !ok {
			resp := rpcResponse{ID: req.ID, Error: &rpcError{Code: -32601, Message: "method not found"}}
			_ = json.NewEncoder(w).Encode(resp)
			return
		}
		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(result)}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestClientRegisterDocument(t *testing.T) {
	server := newGateway(t, map[string]string{
		"fathom_registerDocument": `{"digest": "9yYhDigest", "objectId": "0xdoc1"}`,
	})
	defer server.Close()

	c := NewClient(RPCConfig{URL: server.URL})
	handle, err := c.RegisterDocument(context.Background(), "blob-1", "Report", "annual report")
	require.NoError(t, err)
	assert.Equal(t, "9yYhDigest", handle.Digest)
	assert.Equal(t, "0xdoc1", handle.ObjectID)
}

func TestClientRegisterDocumentEmptyBlobID(t *testing.T) {
	c := NewClient(RPCConfig{URL: "http://127.0.0.1:1"})
	_, err := c.RegisterDocument(context.Background(), "", "x", "y")
	assert.ErrorIs(t, err, ErrRejected)
}

func TestClientGetDocument(t *testing.T) {
	server := newGateway(t, map[string]string{
		"fathom_getDocument": `{
			"id": "0xdoc1", "blobId": "blob-1", "name": "Report",
			"description": "annual report", "owner": "0xowner",
			"createdAt": "2026-08-30T12:00:00Z"
		}`,
	})
	defer server.Close()

	c := NewClient(RPCConfig{URL: server.URL})
	record, err := c.GetDocument(context.Background(), "0xdoc1")
	require.NoError(t, err)
	assert.Equal(t, "blob-1", record.BlobID)
	assert.Equal(t, "0xowner", record.Owner)
	assert.Equal(t, time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC), record.CreatedAt)
}

func TestClientGetDocumentNotFound(t *testing.T) {
	server := newGateway(t, map[string]string{"fathom_getDocument": `{}`})
	defer server.Close()

	c := NewClient(RPCConfig{URL: server.URL})
	_, err := c.GetDocument(context.Background(), "0xmissing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientSubmitQuerySendsHexQuestion(t *testing.T) {
	var gotParams []interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotParams = req.Params
		resp := rpcResponse{ID: req.ID, Result: json.RawMessage(`{"digest": "d", "objectId": "0xquery1"}`)}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	c := NewClient(RPCConfig{URL: server.URL})
	handle, err := c.SubmitQuery(context.Background(), "0xdoc1", []byte("what is the conclusion?"))
	require.NoError(t, err)
	assert.Equal(t, "0xquery1", handle.ObjectID)

	require.Len(t, gotParams, 2)
	assert.Equal(t, "0xdoc1", gotParams[0])
	assert.Equal(t, hex.EncodeToString([]byte("what is the conclusion?")), gotParams[1])
}

func TestClientSubmitQueryEmptyQuestion(t *testing.T) {
	c := NewClient(RPCConfig{URL: "http://127.0.0.1:1"})
	_, err := c.SubmitQuery(context.Background(), "0xdoc1", nil)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestClientQueryEvents(t *testing.T) {
	server := newGateway(t, map[string]string{
		"fathom_queryEvents": `[
			{
				"kind": "InsightGenerated",
				"txDigest": "d2",
				"timestamp": "2026-08-30T12:00:02Z",
				"data": {"queryId": "0xq2", "answer": "later", "signature": "beef", "timestamp": "2026-08-30T12:00:02Z"}
			},
			{
				"kind": "InsightGenerated",
				"txDigest": "d1",
				"timestamp": "2026-08-30T12:00:01Z",
				"data": {"queryId": "0xq1", "answer": "earlier", "signature": "cafe", "timestamp": "2026-08-30T12:00:01Z"}
			}
		]`,
	})
	defer server.Close()

	c := NewClient(RPCConfig{URL: server.URL})
	events, err := c.QueryEvents(context.Background(), EventInsightGenerated, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Most recent first.
	answer, err := events[0].AsAnswer()
	require.NoError(t, err)
	assert.Equal(t, "0xq2", answer.QueryID)
	assert.Equal(t, "later", answer.Answer)
	assert.Equal(t, "beef", answer.Signature)
}

func TestEventAsAnswerRejectsWrongKind(t *testing.T) {
	e := &Event{Kind: EventQuerySubmitted, Data: json.RawMessage(`{}`)}
	_, err := e.AsAnswer()
	assert.ErrorIs(t, err, ErrWrongEventKind)
}

func TestEventAsAnswerRequiresQueryID(t *testing.T) {
	e := &Event{
		Kind: EventInsightGenerated,
		Data: json.RawMessage(`{"answer": "orphan", "signature": "00"}`),
	}
	_, err := e.AsAnswer()
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestEventAsQuery(t *testing.T) {
	e := &Event{
		Kind: EventQuerySubmitted,
		Data: json.RawMessage(`{"queryId": "0xq1", "documentId": "0xdoc1", "question": "why?", "submittedAt": "2026-08-30T11:59:00Z"}`),
	}
	query, err := e.AsQuery()
	require.NoError(t, err)
	assert.Equal(t, "0xq1", query.QueryID)
	assert.Equal(t, "0xdoc1", query.DocumentID)
	assert.Equal(t, "why?", query.Question)

	_, err = (&Event{Kind: EventInsightGenerated}).AsQuery()
	assert.ErrorIs(t, err, ErrWrongEventKind)
}
