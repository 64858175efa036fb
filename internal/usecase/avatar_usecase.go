package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"resume-ledger-backend/internal/blob"
	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"
	"resume-ledger-backend/pkg/imaging"
	"resume-ledger-backend/pkg/security"
	"resume-ledger-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

type AvatarConfig struct {
	MaxDimension  int
	JPEGQuality   int
	DefaultEpochs int
	Deletable     bool
}

type avatarUsecase struct {
	publisher domain.BlobPublisher
	overlay   domain.OverlayStore
	validate  *validator.Validate
	cfg       AvatarConfig
	log       *slog.Logger
}

// NewAvatarUsecase creates a new avatar usecase instance
func NewAvatarUsecase(publisher domain.BlobPublisher, overlay domain.OverlayStore, validate *validator.Validate, cfg AvatarConfig, log *slog.Logger) domain.AvatarUsecase {
	if cfg.DefaultEpochs < 1 {
		cfg.DefaultEpochs = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &avatarUsecase{publisher: publisher, overlay: overlay, validate: validate, cfg: cfg, log: log}
}

type avatarURLInput struct {
	Owner string `validate:"required,sui_address"`
	URL   string `validate:"required,avatar_url,max=2097152"`
}

// UploadAvatar validates and downsizes an image, publishes it and records the
// resulting URL for the owner
func (u *avatarUsecase) UploadAvatar(ctx context.Context, owner, filename string, data []byte) (*domain.PublishResult, error) {
	if err := u.validate.Var(owner, "required,sui_address"); err != nil {
		return nil, apperror.BadRequest("Invalid owner address")
	}
	owner = domain.NormalizeAddress(owner)
	if check := security.ValidateImage(filename, data); !check.Valid {
		return nil, apperror.New(http.StatusBadRequest, "Invalid avatar image: "+check.Error, errors.New(check.Error))
	}

	payload := data
	compressed, err := imaging.Compress(data, u.cfg.MaxDimension, u.cfg.JPEGQuality)
	if err != nil {
		u.log.Warn("Avatar compression failed, using original", "owner", owner, "error", err)
	} else if len(compressed) < len(data) {
		payload = compressed
		u.log.Debug("Avatar compressed", "owner", owner, "from", len(data), "to", len(compressed))
	}

	result, err := u.publisher.Publish(ctx, payload, u.cfg.DefaultEpochs, u.cfg.Deletable)
	if err != nil {
		return nil, blobError(err)
	}

	if err := u.overlay.Set(ctx, domain.AvatarKey(owner), result.URL); err != nil {
		return nil, apperror.Internal(err)
	}
	return &result, nil
}

func (u *avatarUsecase) SetAvatarURL(ctx context.Context, owner, url string) error {
	if err := u.validate.Struct(avatarURLInput{Owner: owner, URL: url}); err != nil {
		return validationError(err)
	}
	if err := u.overlay.Set(ctx, domain.AvatarKey(owner), url); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

// PublishBlob publishes raw bytes; epochs <= 0 selects the configured default
func (u *avatarUsecase) PublishBlob(ctx context.Context, data []byte, epochs int, deletable bool) (*domain.PublishResult, error) {
	if epochs <= 0 {
		epochs = u.cfg.DefaultEpochs
	}
	result, err := u.publisher.Publish(ctx, data, epochs, deletable)
	if err != nil {
		return nil, blobError(err)
	}
	return &result, nil
}

func (u *avatarUsecase) ReadBlob(ctx context.Context, blobID string) ([]byte, error) {
	data, err := u.publisher.Read(ctx, blobID)
	if err != nil {
		return nil, blobError(err)
	}
	return data, nil
}

func blobError(err error) error {
	switch {
	case errors.Is(err, blob.ErrInvalidInput):
		return apperror.New(http.StatusBadRequest, err.Error(), err)
	case errors.Is(err, blob.ErrBlobNotFound):
		return apperror.NotFound("Blob not found")
	default:
		return apperror.BadGateway("Blob store unavailable", err)
	}
}

func validationError(err error) error {
	msgs := validation.FormatValidationErrors(err)
	msg := "Validation failed"
	if len(msgs) > 0 {
		msg = msgs[0]
	}
	return apperror.New(http.StatusBadRequest, msg, err)
}
