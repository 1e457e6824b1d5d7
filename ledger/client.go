package ledger

import (
	"context"
	"encoding/hex"
	"fmt"
)

// Client implements Service against the fathom gateway's JSON-RPC surface.
type Client struct {
	rpc *RPCClient
}

// Compile-time interface check.
var _ Service = (*Client)(nil)

// NewClient creates a Service implementation talking to the gateway at cfg.URL.
func NewClient(cfg RPCConfig) *Client {
	return &Client{rpc: NewRPCClient(cfg)}
}

// RegisterDocument records a blob pointer and its metadata on the ledger.
func (c *Client) RegisterDocument(ctx context.Context, blobID, name, description string) (*TxHandle, error) {
	if blobID == "" {
		return nil, fmt.Errorf("%w: empty blob id", ErrRejected)
	}
	var handle TxHandle
	if err := c.rpc.Call(ctx, "fathom_registerDocument",
		[]interface{}{blobID, name, description}, &handle); err != nil {
		return nil, err
	}
	if handle.ObjectID == "" {
		return nil, fmt.Errorf("%w: register returned no document id", ErrInvalidResponse)
	}
	return &handle, nil
}

// GetDocument returns the registered record for a document id.
func (c *Client) GetDocument(ctx context.Context, documentID string) (*DocumentRecord, error) {
	var record DocumentRecord
	if err := c.rpc.Call(ctx, "fathom_getDocument",
		[]interface{}{documentID}, &record); err != nil {
		return nil, err
	}
	if record.ID == "" {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, documentID)
	}
	return &record, nil
}

// SubmitQuery records a question against a document. The question travels as
// hex so the gateway treats it as opaque bytes.
func (c *Client) SubmitQuery(ctx context.Context, documentID string, question []byte) (*TxHandle, error) {
	if len(question) == 0 {
		return nil, fmt.Errorf("%w: empty question", ErrRejected)
	}
	var handle TxHandle
	if err := c.rpc.Call(ctx, "fathom_submitQuery",
		[]interface{}{documentID, hex.EncodeToString(question)}, &handle); err != nil {
		return nil, err
	}
	if handle.ObjectID == "" {
		return nil, fmt.Errorf("%w: submit returned no query id", ErrInvalidResponse)
	}
	return &handle, nil
}

// SubmitAnswer records the oracle's signed answer for a query.
func (c *Client) SubmitAnswer(ctx context.Context, queryID, answer string, signature []byte) (*TxHandle, error) {
	var handle TxHandle
	if err := c.rpc.Call(ctx, "fathom_submitAnswer",
		[]interface{}{queryID, answer, hex.EncodeToString(signature)}, &handle); err != nil {
		return nil, err
	}
	return &handle, nil
}

// QueryEvents returns up to limit events of the given kind, most recent first.
func (c *Client) QueryEvents(ctx context.Context, kind string, limit int) ([]*Event, error) {
	var events []*Event
	if err := c.rpc.Call(ctx, "fathom_queryEvents",
		[]interface{}{kind, "descending", limit}, &events); err != nil {
		return nil, err
	}
	return events, nil
}
