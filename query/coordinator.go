// Package query coordinates the ask/answer cycle: submit a question against a
// registered document, then poll the ledger event feed until the oracle's
// signed answer shows up or the attempt budget runs out.
package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fathom0x/libfathom-go/ledger"
)

const (
	// DefaultInterval is the pause between poll attempts.
	DefaultInterval = 2 * time.Second

	// DefaultMaxAttempts bounds the polling loop. With the default interval
	// this gives the oracle roughly a minute to answer.
	DefaultMaxAttempts = 30

	// DefaultEventLimit is how many recent events each poll fetches.
	DefaultEventLimit = 10
)

// State is the lifecycle position of one in-flight query.
type State string

const (
	StateCreated    State = "created"
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateAnswered   State = "answered"
	StateTimedOut   State = "timed_out"
	StateFailed     State = "failed"
)

// Answer is the oracle's response to a query.
type Answer struct {
	QueryID   string
	Text      string
	Signature string // hex-encoded oracle signature
	Timestamp time.Time
	Attempts  int // poll attempts consumed before the match
}

// Coordinator submits queries and waits for their answers. Zero-value fields
// take the package defaults; construct with NewCoordinator.
type Coordinator struct {
	Ledger      ledger.Service
	Interval    time.Duration
	MaxAttempts int
	EventLimit  int

	// Verify, when set, is called on every candidate answer event before it
	// is accepted. A verification failure skips the event and polling
	// continues; it does not abort the wait.
	Verify func(*ledger.AnswerEvent) error

	Log *logrus.Logger
}

// NewCoordinator wires a Coordinator with the package defaults.
func NewCoordinator(svc ledger.Service) *Coordinator {
	return &Coordinator{
		Ledger:      svc,
		Interval:    DefaultInterval,
		MaxAttempts: DefaultMaxAttempts,
		EventLimit:  DefaultEventLimit,
		Log:         logrus.StandardLogger(),
	}
}

// Query is one in-flight question. Its state is observable from other
// goroutines while Run is executing.
type Query struct {
	DocumentID string
	Question   string

	coord *Coordinator

	mu       sync.Mutex
	state    State
	queryID  string
	txDigest string
}

// NewQuery prepares a query without submitting it. Call Run to execute the
// full cycle.
func (c *Coordinator) NewQuery(documentID, question string) *Query {
	return &Query{DocumentID: documentID, Question: question, coord: c, state: StateCreated}
}

// Ask runs the full cycle for a one-shot caller: submit, poll, return the
// answer or the terminal error.
func (c *Coordinator) Ask(ctx context.Context, documentID, question string) (*Answer, error) {
	return c.NewQuery(documentID, question).Run(ctx)
}

// State returns the query's current lifecycle position.
func (q *Query) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

// QueryID returns the ledger-assigned query object id, empty until the
// submission is accepted.
func (q *Query) QueryID() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.queryID
}

// TxDigest returns the digest of the submission transaction, empty until the
// submission is accepted.
func (q *Query) TxDigest() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.txDigest
}

func (q *Query) setState(s State) {
	q.mu.Lock()
	q.state = s
	q.mu.Unlock()
}

// Run submits the question and polls for the matching answer event.
//
// A submission rejection is terminal and never retried here: resubmitting
// risks a duplicate query on the ledger. Individual poll failures are treated
// as "no match this round" and consume one attempt, so a transient feed
// outage cannot abort the wait early. When ctx is cancelled only this local
// wait stops — the submitted transaction stays on the ledger and its answer
// may still arrive for a later poller.
func (q *Query) Run(ctx context.Context) (*Answer, error) {
	c := q.coord
	interval := c.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	maxAttempts := c.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	limit := c.EventLimit
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	q.setState(StateSubmitting)
	log := c.Log.WithField("document_id", q.DocumentID)
	log.Info("submitting query")

	handle, err := c.Ledger.SubmitQuery(ctx, q.DocumentID, []byte(q.Question))
	if err != nil {
		q.setState(StateFailed)
		return nil, fmt.Errorf("query: submit: %w", err)
	}

	q.mu.Lock()
	q.queryID = handle.ObjectID
	q.txDigest = handle.Digest
	q.state = StatePolling
	q.mu.Unlock()

	log = log.WithField("query_id", handle.ObjectID)
	log.Info("query accepted, polling for answer")

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		answer := q.pollOnce(ctx, limit, attempt)
		if answer != nil {
			q.setState(StateAnswered)
			log.WithField("attempts", attempt).Info("answer received")
			return answer, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	q.setState(StateTimedOut)
	return nil, fmt.Errorf("query %s: %w after %d attempts", handle.ObjectID, ErrTimeout, maxAttempts)
}

// pollOnce fetches the most recent answer events and scans them for this
// query's id. Any failure (feed error, undecodable event, signature
// verification) counts as no match.
func (q *Query) pollOnce(ctx context.Context, limit, attempt int) *Answer {
	c := q.coord

	events, err := c.Ledger.QueryEvents(ctx, ledger.EventInsightGenerated, limit)
	if err != nil {
		c.Log.WithError(err).WithFields(logrus.Fields{
			"query_id": q.QueryID(),
			"attempt":  attempt,
		}).Debug("event poll failed")
		return nil
	}

	for _, ev := range events {
		ans, err := ev.AsAnswer()
		if err != nil {
			continue
		}
		if ans.QueryID != q.QueryID() {
			continue
		}
		if c.Verify != nil {
			if err := c.Verify(ans); err != nil {
				c.Log.WithError(err).WithField("query_id", ans.QueryID).
					Warn("answer event failed verification, skipping")
				continue
			}
		}
		return &Answer{
			QueryID:   ans.QueryID,
			Text:      ans.Answer,
			Signature: ans.Signature,
			Timestamp: ans.Timestamp,
			Attempts:  attempt,
		}
	}
	return nil
}
