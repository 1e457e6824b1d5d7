package keystore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fathom0x/libfathom-go/crypt"
)

// Flat key prefixes. No schema versioning: the index is two maps with
// string keys, per the persistence boundary contract.
const (
	keyPrefixMaterial = "key:" // blobID -> JSON key material
	keyPrefixDocument = "doc:" // blobID -> registered document id
)

// Index is the typed layer over a Store. Each blob id gets exactly one
// key-material entry and one document-id entry, written once at registration
// time and read many times afterwards.
type Index struct {
	store Store
}

// NewIndex wraps store with the typed accessors.
func NewIndex(store Store) *Index {
	return &Index{store: store}
}

// Close closes the underlying store.
func (i *Index) Close() error { return i.store.Close() }

// SaveKeyMaterial persists the key material for blobID. Writing a second,
// different value for the same blob id fails with ErrAlreadyExists: the
// material for a stored ciphertext never legitimately changes. Re-saving an
// identical value is a no-op (content-addressed stores dedup uploads, so the
// same blob id can come back from a repeated registration).
func (i *Index) SaveKeyMaterial(blobID string, km crypt.KeyMaterial) error {
	encoded, err := json.Marshal(km)
	if err != nil {
		return fmt.Errorf("keystore: encode key material: %w", err)
	}
	return i.writeOnce(keyPrefixMaterial+blobID, string(encoded))
}

// KeyMaterial returns the key material stored for blobID, or ErrNotFound.
func (i *Index) KeyMaterial(blobID string) (*crypt.KeyMaterial, error) {
	value, err := i.store.Get(keyPrefixMaterial + blobID)
	if err != nil {
		return nil, err
	}
	var km crypt.KeyMaterial
	if err := json.Unmarshal([]byte(value), &km); err != nil {
		return nil, fmt.Errorf("keystore: decode key material for %s: %w", blobID, err)
	}
	return &km, nil
}

// SaveDocumentID records the registered document id for blobID, write-once
// with the same semantics as SaveKeyMaterial.
func (i *Index) SaveDocumentID(blobID, documentID string) error {
	return i.writeOnce(keyPrefixDocument+blobID, documentID)
}

// DocumentID returns the registered document id for blobID, or ErrNotFound.
func (i *Index) DocumentID(blobID string) (string, error) {
	return i.store.Get(keyPrefixDocument + blobID)
}

// writeOnce sets key to value unless a different value is already present.
func (i *Index) writeOnce(key, value string) error {
	existing, err := i.store.Get(key)
	switch {
	case errors.Is(err, ErrNotFound):
		return i.store.Set(key, value)
	case err != nil:
		return err
	case existing == value:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrAlreadyExists, key)
	}
}
