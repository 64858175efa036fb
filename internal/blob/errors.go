package blob

import (
	"errors"
	"fmt"

	"resume-ledger-backend/internal/domain"
)

var (
	// ErrInsufficientConfirmations means the write happened but the store
	// could not confirm full availability in time.
	ErrInsufficientConfirmations = errors.New("not enough blob confirmations")
	// ErrWriteFailed means nothing was written.
	ErrWriteFailed   = errors.New("blob write failed")
	ErrBlobNotFound  = errors.New("blob not found")
	ErrInvalidInput  = errors.New("invalid blob input")
	errInvalidBlobID = fmt.Errorf("%w: empty blob id", ErrInvalidInput)
)

// storageUnit is the billing granularity of the store.
const storageUnit = 1 << 20

// estimateCost prices size bytes kept for epochs. Every started unit is
// billed.
func estimateCost(size int64, epochs int, storagePrice, writePrice uint64) (domain.BlobCost, error) {
	if size <= 0 || epochs < 1 {
		return domain.BlobCost{}, fmt.Errorf("%w: size %d, epochs %d", ErrInvalidInput, size, epochs)
	}
	units := uint64((size + storageUnit - 1) / storageUnit)
	return domain.BlobCost{
		StorageCost: units * uint64(epochs) * storagePrice,
		WriteCost:   units * writePrice,
	}, nil
}
