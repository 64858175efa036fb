package domain

import "context"

// PublishTier tells callers how durably a published blob is stored.
type PublishTier string

const (
	TierConfirmed          PublishTier = "confirmed"
	TierDegradedButWritten PublishTier = "degraded_but_written"
	TierInlineFallback     PublishTier = "inline_fallback"
)

// BlobCost is the store's estimate for keeping a blob.
type BlobCost struct {
	StorageCost uint64 `json:"storage_cost"`
	WriteCost   uint64 `json:"write_cost"`
}

// PublishResult is the tagged outcome of a publish. URL always holds
// something usable: a store URL, or an inline data URI for TierInlineFallback.
type PublishResult struct {
	Tier   PublishTier `json:"tier"`
	URL    string      `json:"url"`
	BlobID string      `json:"blob_id,omitempty"`
	Cost   *BlobCost   `json:"cost,omitempty"`
	Size   int         `json:"size"`
}

// Durable reports whether the bytes live in the blob store.
func (r PublishResult) Durable() bool {
	return r.Tier == TierConfirmed
}

// BlobStore is a content-addressed binary store.
type BlobStore interface {
	EstimateCost(ctx context.Context, size int64, epochs int) (BlobCost, error)
	WriteBlob(ctx context.Context, data []byte, epochs int, deletable bool) (string, error)
	ConfirmBlob(ctx context.Context, blobID string) error
	ReadBlob(ctx context.Context, blobID string) ([]byte, error)
	BlobURL(blobID string) string
}

type BlobPublisher interface {
	Publish(ctx context.Context, data []byte, retentionEpochs int, deletable bool) (PublishResult, error)
	Read(ctx context.Context, blobID string) ([]byte, error)
}

type AvatarUsecase interface {
	UploadAvatar(ctx context.Context, owner, filename string, data []byte) (*PublishResult, error)
	SetAvatarURL(ctx context.Context, owner, url string) error
	PublishBlob(ctx context.Context, data []byte, epochs int, deletable bool) (*PublishResult, error)
	ReadBlob(ctx context.Context, blobID string) ([]byte, error)
}
