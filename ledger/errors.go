package ledger

import "errors"

var (
	// ErrConnectionFailed indicates the client could not reach the ledger
	// gateway.
	ErrConnectionFailed = errors.New("ledger: connection failed")

	// ErrInvalidResponse indicates the gateway returned a malformed or
	// unexpected response.
	ErrInvalidResponse = errors.New("ledger: invalid response")

	// ErrRejected indicates the ledger refused the transaction. Never
	// retried automatically: resubmission risks duplicate on-ledger effects.
	ErrRejected = errors.New("ledger: transaction rejected")

	// ErrNotFound indicates the requested object does not exist.
	ErrNotFound = errors.New("ledger: object not found")

	// ErrWrongEventKind indicates an event payload was decoded as the wrong
	// kind.
	ErrWrongEventKind = errors.New("ledger: wrong event kind")
)
