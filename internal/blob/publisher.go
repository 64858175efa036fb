// Package blob publishes binary assets to a content-addressed store and
// degrades instead of failing when the store misbehaves.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"resume-ledger-backend/internal/domain"
)

type Publisher struct {
	store domain.BlobStore
	log   *slog.Logger
}

func NewPublisher(store domain.BlobStore, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{store: store, log: log}
}

// Publish runs estimate, write and confirm. Past input validation it never
// returns an error: a written but unconfirmed blob is returned as
// TierDegradedButWritten, anything worse falls back to an inline data URI.
func (p *Publisher) Publish(ctx context.Context, data []byte, retentionEpochs int, deletable bool) (domain.PublishResult, error) {
	if len(data) == 0 {
		return domain.PublishResult{}, fmt.Errorf("%w: empty data", ErrInvalidInput)
	}
	if retentionEpochs < 1 {
		return domain.PublishResult{}, fmt.Errorf("%w: retention epochs must be at least 1", ErrInvalidInput)
	}

	result := domain.PublishResult{Size: len(data)}
	log := p.log.With("size", len(data), "epochs", retentionEpochs, "deletable", deletable)

	// Estimating: informational only.
	if cost, err := p.store.EstimateCost(ctx, int64(len(data)), retentionEpochs); err != nil {
		log.Warn("Blob cost estimation failed", "error", err)
	} else {
		result.Cost = &cost
		log.Debug("Blob cost estimated", "storage_cost", cost.StorageCost, "write_cost", cost.WriteCost)
	}

	// Writing
	blobID, err := p.store.WriteBlob(ctx, data, retentionEpochs, deletable)
	if err != nil || blobID == "" {
		log.Error("Blob write failed, using inline fallback", "error", err)
		return inline(data, result), nil
	}
	result.BlobID = blobID
	result.URL = p.store.BlobURL(blobID)
	log = log.With("blob_id", blobID)

	// ConfirmingAvailability
	if err := p.store.ConfirmBlob(ctx, blobID); err != nil {
		if errors.Is(err, ErrInsufficientConfirmations) {
			log.Warn("Blob written but not confirmed", "error", err)
			result.Tier = domain.TierDegradedButWritten
			return result, nil
		}
		log.Error("Blob confirmation failed, using inline fallback", "error", err)
		result.BlobID = ""
		return inline(data, result), nil
	}

	log.Info("Blob published")
	result.Tier = domain.TierConfirmed
	return result, nil
}

func (p *Publisher) Read(ctx context.Context, blobID string) ([]byte, error) {
	if blobID == "" {
		return nil, errInvalidBlobID
	}
	return p.store.ReadBlob(ctx, blobID)
}

func inline(data []byte, result domain.PublishResult) domain.PublishResult {
	result.Tier = domain.TierInlineFallback
	result.URL = EncodeDataURI(data)
	return result
}
