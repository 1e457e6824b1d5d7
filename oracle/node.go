// Package oracle implements the answering side of the query cycle: a node
// that watches the ledger for submitted questions, retrieves and decrypts the
// referenced document, produces an answer, and records it back on the ledger
// with an authenticating signature.
package oracle

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fathom0x/libfathom-go/crypt"
	"github.com/fathom0x/libfathom-go/ledger"
)

const (
	// DefaultPollInterval is the pause between event-feed sweeps.
	DefaultPollInterval = 5 * time.Second

	// DefaultEventLimit is how many recent query events each sweep fetches.
	DefaultEventLimit = 10
)

// Answerer produces an answer to a question about a decrypted document. The
// analysis itself is opaque to the node.
type Answerer interface {
	Answer(ctx context.Context, document []byte, question string) (string, error)
}

// AnswererFunc adapts a function to the Answerer interface.
type AnswererFunc func(ctx context.Context, document []byte, question string) (string, error)

func (f AnswererFunc) Answer(ctx context.Context, document []byte, question string) (string, error) {
	return f(ctx, document, question)
}

// Downloader is the read slice of the blob store the node needs.
type Downloader interface {
	Download(ctx context.Context, blobID string) ([]byte, error)
}

// KeyResolver maps a blob id to its decryption key material.
// *keystore.Index satisfies it.
type KeyResolver interface {
	KeyMaterial(blobID string) (*crypt.KeyMaterial, error)
}

// Node is one oracle worker. It is single-threaded per Run call; queries are
// processed in feed order and each query is answered at most once per node
// lifetime.
type Node struct {
	Ledger     ledger.Service
	Store      Downloader
	Keys       KeyResolver
	Answerer   Answerer
	SigningKey []byte

	Interval   time.Duration
	EventLimit int
	Log        *logrus.Logger

	processed map[string]struct{}
}

// NewNode wires a Node with the package defaults.
func NewNode(svc ledger.Service, store Downloader, keys KeyResolver, answerer Answerer, signingKey []byte) *Node {
	return &Node{
		Ledger:     svc,
		Store:      store,
		Keys:       keys,
		Answerer:   answerer,
		SigningKey: signingKey,
		Interval:   DefaultPollInterval,
		EventLimit: DefaultEventLimit,
		Log:        logrus.StandardLogger(),
		processed:  make(map[string]struct{}),
	}
}

// Run sweeps the event feed until ctx is cancelled. Feed errors and
// per-query failures are logged and retried on the next sweep; only
// cancellation stops the loop.
func (n *Node) Run(ctx context.Context) error {
	interval := n.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	n.Log.WithField("interval", interval).Info("oracle node started")

	for {
		n.Sweep(ctx)

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			n.Log.Info("oracle node stopped")
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Sweep fetches the recent query events and answers every unprocessed one.
func (n *Node) Sweep(ctx context.Context) {
	limit := n.EventLimit
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	events, err := n.Ledger.QueryEvents(ctx, ledger.EventQuerySubmitted, limit)
	if err != nil {
		n.Log.WithError(err).Warn("query event sweep failed")
		return
	}

	for _, ev := range events {
		q, err := ev.AsQuery()
		if err != nil {
			n.Log.WithError(err).Debug("skipping undecodable query event")
			continue
		}
		if _, done := n.processed[q.QueryID]; done {
			continue
		}
		if err := n.answer(ctx, q); err != nil {
			// Not marked processed: the query is retried next sweep.
			n.Log.WithError(err).WithField("query_id", q.QueryID).
				Warn("failed to answer query")
			continue
		}
		n.processed[q.QueryID] = struct{}{}
	}
}

// answer runs the full pipeline for one query: resolve the document, fetch
// and decrypt its blob, produce the answer, sign it, and record it.
func (n *Node) answer(ctx context.Context, q *ledger.QueryEvent) error {
	log := n.Log.WithFields(logrus.Fields{
		"query_id":    q.QueryID,
		"document_id": q.DocumentID,
	})
	log.Info("answering query")

	record, err := n.Ledger.GetDocument(ctx, q.DocumentID)
	if err != nil {
		return err
	}

	ciphertext, err := n.Store.Download(ctx, record.BlobID)
	if err != nil {
		return err
	}

	km, err := n.Keys.KeyMaterial(record.BlobID)
	if err != nil {
		return err
	}

	plaintext, err := crypt.Decrypt(ciphertext, *km)
	if err != nil {
		return err
	}

	answer, err := n.Answerer.Answer(ctx, plaintext, q.Question)
	if err != nil {
		return err
	}

	sig := Sign(n.SigningKey, q.QueryID, answer)
	if _, err := n.Ledger.SubmitAnswer(ctx, q.QueryID, answer, sig); err != nil {
		return err
	}

	log.Info("answer recorded")
	return nil
}
