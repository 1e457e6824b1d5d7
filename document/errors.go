package document

import (
	"fmt"

	"github.com/fathom0x/libfathom-go/crypt"
)

// RegistrationError reports a ledger failure after the ciphertext was
// already uploaded. The blob id and key material survive in it (and in the
// local index) so the caller can retry only the ledger step.
type RegistrationError struct {
	BlobID      string
	KeyMaterial crypt.KeyMaterial
	Simulated   bool
	Err         error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("document: ledger registration failed for blob %s (ciphertext uploaded): %v", e.BlobID, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }
