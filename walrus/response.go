package walrus

import "time"

// The store API answers with one of two JSON shapes: a full blob descriptor
// when the content is new, or a slim reference when identical content was
// already certified in a previous epoch window. Both resolve to the same
// UploadResult here, at the boundary, so nothing downstream handles the union.

// storeResponse is the tagged union returned by a successful store PUT.
type storeResponse struct {
	NewlyCreated     *newlyCreatedBlob     `json:"newlyCreated"`
	AlreadyCertified *alreadyCertifiedBlob `json:"alreadyCertified"`
}

// newlyCreatedBlob describes a blob stored for the first time.
type newlyCreatedBlob struct {
	BlobObject  blobObject `json:"blobObject"`
	EncodedSize int64      `json:"encodedSize"`
	Cost        int64      `json:"cost"`
}

// blobObject is the on-ledger descriptor of a stored blob.
type blobObject struct {
	ID             string        `json:"id"` // ledger object id
	StoredEpoch    uint64        `json:"storedEpoch"`
	BlobID         string        `json:"blobId"`
	Size           int64         `json:"size"`
	CertifiedEpoch uint64        `json:"certifiedEpoch"`
	Storage        storageWindow `json:"storage"`
}

// storageWindow is the epoch range the blob is paid for.
type storageWindow struct {
	ID          string `json:"id"`
	StartEpoch  uint64 `json:"startEpoch"`
	EndEpoch    uint64 `json:"endEpoch"`
	StorageSize int64  `json:"storageSize"`
}

// alreadyCertifiedBlob references content the store already holds.
// Content addressing makes this a success: the blob id is identical to what
// a fresh upload would have produced.
type alreadyCertifiedBlob struct {
	BlobID   string    `json:"blobId"`
	Event    certEvent `json:"event"`
	EndEpoch uint64    `json:"endEpoch"`
}

// certEvent identifies the ledger event that certified the existing blob.
type certEvent struct {
	TxDigest string `json:"txDigest"`
	EventSeq string `json:"eventSeq"`
}

// normalize resolves the union into the single result type used everywhere
// else. size is the client-side payload length; the store's encoded size
// includes erasure-coding overhead and is not what callers care about.
func (r *storeResponse) normalize(size int64, uploadedAt time.Time) (*UploadResult, error) {
	switch {
	case r.NewlyCreated != nil:
		return &UploadResult{
			BlobID:     r.NewlyCreated.BlobObject.BlobID,
			Size:       size,
			UploadedAt: uploadedAt,
			ObjectRef:  r.NewlyCreated.BlobObject.ID,
			EndEpoch:   r.NewlyCreated.BlobObject.Storage.EndEpoch,
		}, nil
	case r.AlreadyCertified != nil:
		return &UploadResult{
			BlobID:     r.AlreadyCertified.BlobID,
			Size:       size,
			UploadedAt: uploadedAt,
			EndEpoch:   r.AlreadyCertified.EndEpoch,
		}, nil
	default:
		return nil, ErrUnexpectedResponse
	}
}
