// Package document orchestrates the encrypted document pipeline: the
// Registrar turns a plaintext file into a registered, queryable document
// (encrypt, upload, record on ledger, persist key material) and the
// Retriever runs the inverse path (download, decrypt).
package document

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/fathom0x/libfathom-go/crypt"
	"github.com/fathom0x/libfathom-go/keystore"
	"github.com/fathom0x/libfathom-go/ledger"
	"github.com/fathom0x/libfathom-go/walrus"
)

// BlobStore is the slice of the blob-store client the pipeline needs.
// *walrus.Client satisfies it.
type BlobStore interface {
	Upload(ctx context.Context, blob []byte, opts walrus.UploadOptions) (*walrus.UploadResult, error)
	Download(ctx context.Context, blobID string) ([]byte, error)
}

// Registration is the outcome of a successful Register call.
type Registration struct {
	BlobID      string
	DocumentID  string
	TxDigest    string
	KeyMaterial crypt.KeyMaterial
	Fingerprint string // SHA-256 of the plaintext, for integrity display
	Simulated   bool   // ciphertext lives only in the simulated store
}

// Registrar registers plaintext documents. All collaborators are required.
type Registrar struct {
	Store  BlobStore
	Ledger ledger.Service
	Keys   *keystore.Index
	Epochs int // storage epochs per upload; 0 uses the store client default
	Log    *logrus.Logger
}

// NewRegistrar wires a Registrar with the standard logger.
func NewRegistrar(store BlobStore, svc ledger.Service, keys *keystore.Index) *Registrar {
	return &Registrar{Store: store, Ledger: svc, Keys: keys, Log: logrus.StandardLogger()}
}

// Register encrypts plaintext under fresh key material, uploads the
// ciphertext, records the blob pointer on the ledger, and persists the key
// material and document id locally, indexed by blob id.
//
// Key material is persisted as soon as the upload succeeds: from that moment
// the ciphertext exists under a blob id and losing the key would strand it.
// A ledger failure after that point is a recoverable partial state — the
// returned *RegistrationError carries the blob id and key material, and the
// caller retries only the ledger step via Reregister (re-uploading would at
// best dedup to the same blob id).
func (r *Registrar) Register(ctx context.Context, plaintext []byte, name, description string) (*Registration, error) {
	log := r.Log.WithField("name", name)
	log.Info("encrypting document")

	ciphertext, km, err := crypt.Encrypt(plaintext, nil)
	if err != nil {
		return nil, err
	}
	fingerprint := crypt.Fingerprint(plaintext)

	log.WithFields(logrus.Fields{
		"plaintext_size":  len(plaintext),
		"ciphertext_size": len(ciphertext),
	}).Info("uploading ciphertext")

	upload, err := r.Store.Upload(ctx, ciphertext, walrus.UploadOptions{Epochs: r.Epochs})
	if err != nil {
		return nil, err
	}

	if err := r.Keys.SaveKeyMaterial(upload.BlobID, *km); err != nil {
		return nil, fmt.Errorf("document: persist key material: %w", err)
	}

	if upload.Simulated {
		log.WithField("blob_id", upload.BlobID).
			Warn("ciphertext stored in simulated store only; it is not durable")
	}

	handle, err := r.Ledger.RegisterDocument(ctx, upload.BlobID, name, description)
	if err != nil {
		return nil, &RegistrationError{
			BlobID:      upload.BlobID,
			KeyMaterial: *km,
			Simulated:   upload.Simulated,
			Err:         err,
		}
	}

	if err := r.Keys.SaveDocumentID(upload.BlobID, handle.ObjectID); err != nil {
		return nil, fmt.Errorf("document: persist document id: %w", err)
	}

	log.WithFields(logrus.Fields{
		"blob_id":     upload.BlobID,
		"document_id": handle.ObjectID,
		"simulated":   upload.Simulated,
	}).Info("document registered")

	return &Registration{
		BlobID:      upload.BlobID,
		DocumentID:  handle.ObjectID,
		TxDigest:    handle.Digest,
		KeyMaterial: *km,
		Fingerprint: fingerprint,
		Simulated:   upload.Simulated,
	}, nil
}

// Reregister retries only the ledger step for a blob whose upload already
// succeeded. The key material must already be in the local index (Register
// saved it before the ledger call failed).
func (r *Registrar) Reregister(ctx context.Context, blobID, name, description string) (*Registration, error) {
	km, err := r.Keys.KeyMaterial(blobID)
	if err != nil {
		return nil, fmt.Errorf("document: no key material for %s: %w", blobID, err)
	}

	handle, err := r.Ledger.RegisterDocument(ctx, blobID, name, description)
	if err != nil {
		return nil, &RegistrationError{
			BlobID:      blobID,
			KeyMaterial: *km,
			Simulated:   walrus.IsSimulatedID(blobID),
			Err:         err,
		}
	}

	if err := r.Keys.SaveDocumentID(blobID, handle.ObjectID); err != nil {
		return nil, fmt.Errorf("document: persist document id: %w", err)
	}

	return &Registration{
		BlobID:      blobID,
		DocumentID:  handle.ObjectID,
		TxDigest:    handle.Digest,
		KeyMaterial: *km,
		Simulated:   walrus.IsSimulatedID(blobID),
	}, nil
}
