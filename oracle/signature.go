package oracle

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/fathom0x/libfathom-go/ledger"
)

// ErrBadSignature means an answer event's signature does not authenticate
// its query id and answer text.
var ErrBadSignature = errors.New("oracle: bad answer signature")

// Sign authenticates an answer: HMAC-SHA256 over "queryID:answer" under the
// node's signing key. The signature binds the answer to its query, so a valid
// signature replayed against a different query does not verify.
func Sign(key []byte, queryID, answer string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(queryID + ":" + answer))
	return mac.Sum(nil)
}

// Verify reports whether sig authenticates the (queryID, answer) pair under
// key.
func Verify(key []byte, queryID, answer string, sig []byte) bool {
	return hmac.Equal(sig, Sign(key, queryID, answer))
}

// VerifyHook returns a verification callback for query.Coordinator.Verify:
// it decodes the event's hex signature and checks it against the shared key.
func VerifyHook(key []byte) func(*ledger.AnswerEvent) error {
	return func(ev *ledger.AnswerEvent) error {
		sig, err := hex.DecodeString(ev.Signature)
		if err != nil {
			return fmt.Errorf("%w: decode hex: %w", ErrBadSignature, err)
		}
		if !Verify(key, ev.QueryID, ev.Answer, sig) {
			return ErrBadSignature
		}
		return nil
	}
}
