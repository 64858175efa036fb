package usecase

import (
	"context"
	"strings"

	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

type socialUsecase struct {
	overlay  domain.OverlayStore
	validate *validator.Validate
}

// NewSocialUsecase creates a new social binding usecase instance
func NewSocialUsecase(overlay domain.OverlayStore, validate *validator.Validate) domain.SocialUsecase {
	return &socialUsecase{overlay: overlay, validate: validate}
}

type bindInput struct {
	Owner  string `validate:"required,sui_address"`
	Handle string `validate:"required,social_handle,no_emoji"`
}

func (u *socialUsecase) Status(ctx context.Context, owner string) (*domain.SocialBinding, error) {
	if err := u.validate.Var(owner, "required,sui_address"); err != nil {
		return nil, apperror.BadRequest("Invalid owner address")
	}
	handle, ok, err := u.overlay.Get(ctx, domain.SocialKey(owner))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.SocialBinding{Owner: domain.NormalizeAddress(owner), IsBound: ok && handle != "", Handle: handle}, nil
}

// Bind records the handle without a leading '@'; rebinding overwrites
func (u *socialUsecase) Bind(ctx context.Context, owner, handle string) (*domain.SocialBinding, error) {
	in := bindInput{Owner: owner, Handle: strings.TrimSpace(handle)}
	if err := u.validate.Struct(in); err != nil {
		return nil, validationError(err)
	}
	normalized := strings.TrimPrefix(in.Handle, "@")
	if err := u.overlay.Set(ctx, domain.SocialKey(owner), normalized); err != nil {
		return nil, apperror.Internal(err)
	}
	return &domain.SocialBinding{Owner: domain.NormalizeAddress(owner), IsBound: true, Handle: normalized}, nil
}

func (u *socialUsecase) Unbind(ctx context.Context, owner string) error {
	if err := u.validate.Var(owner, "required,sui_address"); err != nil {
		return apperror.BadRequest("Invalid owner address")
	}
	if err := u.overlay.Delete(ctx, domain.SocialKey(owner)); err != nil {
		return apperror.Internal(err)
	}
	return nil
}
