package document

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fathom0x/libfathom-go/crypt"
	"github.com/fathom0x/libfathom-go/keystore"
)

// Retriever downloads and decrypts registered documents for local delivery.
type Retriever struct {
	Store BlobStore
	Keys  *keystore.Index // optional; required only for RetrieveLocal
	Log   *logrus.Logger
}

// NewRetriever wires a Retriever with the standard logger.
func NewRetriever(store BlobStore, keys *keystore.Index) *Retriever {
	return &Retriever{Store: store, Keys: keys, Log: logrus.StandardLogger()}
}

// Retrieve downloads the ciphertext for blobID and decrypts it with the
// supplied key material.
//
// The two failure kinds stay distinguishable for the caller: storage
// failures carry walrus.ErrNotRetrievable ("storage unavailable"), key
// failures carry crypt.ErrDecryptionFailed or crypt.ErrInvalidKeyMaterial
// ("check your key").
func (r *Retriever) Retrieve(ctx context.Context, blobID string, km crypt.KeyMaterial) ([]byte, error) {
	r.Log.WithField("blob_id", blobID).Info("downloading ciphertext")

	ciphertext, err := r.Store.Download(ctx, blobID)
	if err != nil {
		return nil, err
	}

	plaintext, err := crypt.Decrypt(ciphertext, km)
	if err != nil {
		return nil, err
	}

	r.Log.WithFields(logrus.Fields{
		"blob_id": blobID,
		"size":    len(plaintext),
	}).Info("document decrypted")

	return plaintext, nil
}

// RetrieveLocal retrieves a document whose key material is in the local
// index. Fails with keystore.ErrNotFound when this machine never registered
// the blob — there is no other place the key could come from.
func (r *Retriever) RetrieveLocal(ctx context.Context, blobID string) ([]byte, error) {
	if r.Keys == nil {
		return nil, fmt.Errorf("document: no key index configured")
	}
	km, err := r.Keys.KeyMaterial(blobID)
	if err != nil {
		return nil, fmt.Errorf("document: key material for %s: %w", blobID, err)
	}
	return r.Retrieve(ctx, blobID, *km)
}
