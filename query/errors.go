package query

import "errors"

// ErrTimeout means the poll budget was exhausted with no matching answer
// event. Distinguishable from a submission rejection, which surfaces the
// ledger error instead.
var ErrTimeout = errors.New("query: timed out waiting for answer")
