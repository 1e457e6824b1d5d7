// Package ledger defines the boundary to the distributed ledger that records
// document metadata and query/answer events. The pipeline consumes it as an
// opaque RPC surface: submit a transaction, read events back. Contract
// semantics (ownership, execution) live on the other side of this interface.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds emitted by the document contract.
const (
	// EventQuerySubmitted is emitted when a user submits a question against
	// a registered document. Consumed by the oracle node.
	EventQuerySubmitted = "QuerySubmitted"

	// EventInsightGenerated is emitted when the oracle records a signed
	// answer. Consumed by the query coordinator.
	EventInsightGenerated = "InsightGenerated"
)

// Service is the primary interface for ledger interaction. The pipeline
// never retries these calls on its own: a rejected transaction is surfaced
// immediately because resubmission risks duplicate on-ledger effects.
type Service interface {
	// RegisterDocument records a blob pointer with its display metadata and
	// returns the transaction handle carrying the created document id.
	RegisterDocument(ctx context.Context, blobID, name, description string) (*TxHandle, error)

	// GetDocument returns the registered record for a document id.
	GetDocument(ctx context.Context, documentID string) (*DocumentRecord, error)

	// SubmitQuery records a question against a document and returns the
	// transaction handle carrying the created query id.
	SubmitQuery(ctx context.Context, documentID string, question []byte) (*TxHandle, error)

	// SubmitAnswer records the oracle's signed answer for a query.
	SubmitAnswer(ctx context.Context, queryID, answer string, signature []byte) (*TxHandle, error)

	// QueryEvents returns up to limit events of the given kind, most recent
	// first.
	QueryEvents(ctx context.Context, kind string, limit int) ([]*Event, error)
}

// TxHandle identifies an accepted transaction and the object it created.
type TxHandle struct {
	Digest   string `json:"digest"`
	ObjectID string `json:"objectId"` // created document or query object id
}

// DocumentRecord is the on-ledger document metadata. The pipeline only ever
// reads it back; mutation is a contract responsibility.
type DocumentRecord struct {
	ID          string    `json:"id"`
	BlobID      string    `json:"blobId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Event is one contract event as returned by the event feed. Data carries
// the kind-specific payload; decode it with AsAnswer or AsQuery.
type Event struct {
	Kind      string          `json:"kind"`
	TxDigest  string          `json:"txDigest"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// AnswerEvent is the payload of an EventInsightGenerated event.
//
// QueryID is mandatory: it is the correlation field that lets a coordinator
// match an answer to its own query under concurrent use. An event feed that
// omits it cannot be polled safely.
type AnswerEvent struct {
	QueryID   string    `json:"queryId"`
	Answer    string    `json:"answer"`
	Signature string    `json:"signature"` // hex-encoded oracle signature
	Timestamp time.Time `json:"timestamp"`
}

// QueryEvent is the payload of an EventQuerySubmitted event.
type QueryEvent struct {
	QueryID     string    `json:"queryId"`
	DocumentID  string    `json:"documentId"`
	Question    string    `json:"question"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// AsAnswer decodes the event payload as an AnswerEvent.
func (e *Event) AsAnswer() (*AnswerEvent, error) {
	if e.Kind != EventInsightGenerated {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongEventKind, e.Kind, EventInsightGenerated)
	}
	var answer AnswerEvent
	if err := json.Unmarshal(e.Data, &answer); err != nil {
		return nil, fmt.Errorf("%w: decode answer event: %w", ErrInvalidResponse, err)
	}
	if answer.QueryID == "" {
		return nil, fmt.Errorf("%w: answer event has no query id", ErrInvalidResponse)
	}
	return &answer, nil
}

// AsQuery decodes the event payload as a QueryEvent.
func (e *Event) AsQuery() (*QueryEvent, error) {
	if e.Kind != EventQuerySubmitted {
		return nil, fmt.Errorf("%w: got %q, want %q", ErrWrongEventKind, e.Kind, EventQuerySubmitted)
	}
	var query QueryEvent
	if err := json.Unmarshal(e.Data, &query); err != nil {
		return nil, fmt.Errorf("%w: decode query event: %w", ErrInvalidResponse, err)
	}
	if query.QueryID == "" {
		return nil, fmt.Errorf("%w: query event has no query id", ErrInvalidResponse)
	}
	return &query, nil
}
