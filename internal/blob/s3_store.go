package blob

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"resume-ledger-backend/internal/domain"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"github.com/zeebo/blake3"
)

// S3API is the subset of *s3.Client the store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type S3Config struct {
	Bucket        string
	PublicBaseURL string
	// EpochDuration converts retention epochs into the retention-days object
	// tag. S3 itself never deletes objects; a bucket lifecycle rule filtered
	// on that tag does.
	EpochDuration time.Duration

	StoragePricePerUnit uint64
	WritePricePerUnit   uint64

	ConfirmTimeout time.Duration
}

// S3Store is a content-addressed blob store on S3-compatible storage. Blob
// ids are the base64url BLAKE3 digest of the content.
type S3Store struct {
	api S3API
	cfg S3Config
	now func() time.Time
}

func NewS3Store(api S3API, cfg S3Config) *S3Store {
	if cfg.EpochDuration <= 0 {
		cfg.EpochDuration = 24 * time.Hour
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 30 * time.Second
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &S3Store{api: api, cfg: cfg, now: time.Now}
}

func ContentID(data []byte) string {
	sum := blake3.Sum256(data)
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func objectKey(blobID string) string {
	return "blobs/" + blobID
}

func (s *S3Store) EstimateCost(_ context.Context, size int64, epochs int) (domain.BlobCost, error) {
	return estimateCost(size, epochs, s.cfg.StoragePricePerUnit, s.cfg.WritePricePerUnit)
}

// WriteBlob stores data under its content id. Retention is recorded as
// object tags (retention-epochs, retention-days, expires-at, deletable) for
// bucket lifecycle rules to act on.
func (s *S3Store) WriteBlob(ctx context.Context, data []byte, epochs int, deletable bool) (string, error) {
	blobID := ContentID(data)
	retention := time.Duration(epochs) * s.cfg.EpochDuration
	expiresAt := s.now().Add(retention).UTC().Format(time.RFC3339)

	tags := url.Values{}
	tags.Set("retention-epochs", strconv.Itoa(epochs))
	tags.Set("retention-days", strconv.Itoa(retentionDays(retention)))
	tags.Set("expires-at", expiresAt)
	tags.Set("deletable", strconv.FormatBool(deletable))

	_, err := s.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(objectKey(blobID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimetype.Detect(data).String()),
		Tagging:     aws.String(tags.Encode()),
		Metadata: map[string]string{
			"epochs":     strconv.Itoa(epochs),
			"expires-at": expiresAt,
			"deletable":  strconv.FormatBool(deletable),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: put %s: %v", ErrWriteFailed, blobID, err)
	}
	return blobID, nil
}

// retentionDays rounds up to whole days, the granularity of lifecycle rules.
func retentionDays(d time.Duration) int {
	days := int((d + 24*time.Hour - 1) / (24 * time.Hour))
	if days < 1 {
		days = 1
	}
	return days
}

// ConfirmBlob waits until HeadObject sees the object.
func (s *S3Store) ConfirmBlob(ctx context.Context, blobID string) error {
	waiter := s3.NewObjectExistsWaiter(s.api, func(o *s3.ObjectExistsWaiterOptions) {
		o.MinDelay = 500 * time.Millisecond
		o.MaxDelay = 5 * time.Second
	})
	err := waiter.Wait(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(objectKey(blobID)),
	}, s.cfg.ConfirmTimeout)
	if err == nil {
		return nil
	}
	if ctx.Err() == nil && strings.Contains(err.Error(), "exceeded max wait time") {
		return fmt.Errorf("%w: %s", ErrInsufficientConfirmations, blobID)
	}
	return fmt.Errorf("confirm %s: %w", blobID, err)
}

func (s *S3Store) ReadBlob(ctx context.Context, blobID string) ([]byte, error) {
	if blobID == "" {
		return nil, errInvalidBlobID
	}
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.cfg.Bucket),
		Key:    aws.String(objectKey(blobID)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, blobID)
		}
		return nil, fmt.Errorf("get %s: %w", blobID, err)
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *S3Store) BlobURL(blobID string) string {
	return s.cfg.PublicBaseURL + "/" + objectKey(blobID)
}
