package domain

import "context"

// Overlay key namespaces. Keys are the prefix followed by the normalized
// owner address.
const (
	AvatarKeyPrefix = "resume_avatar_url_"
	SocialKeyPrefix = "resume_social_handle_"
)

func AvatarKey(owner string) string { return AvatarKeyPrefix + NormalizeAddress(owner) }

func SocialKey(owner string) string { return SocialKeyPrefix + NormalizeAddress(owner) }

// OverlayStore holds attributes the ledger object does not persist.
// Last write wins; entries never expire.
type OverlayStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	GetMany(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// SocialBinding is the binding state of an owner's social account.
type SocialBinding struct {
	Owner   string `json:"owner"`
	IsBound bool   `json:"is_bound"`
	Handle  string `json:"handle,omitempty"`
}

type SocialUsecase interface {
	Status(ctx context.Context, owner string) (*SocialBinding, error)
	Bind(ctx context.Context, owner, handle string) (*SocialBinding, error)
	Unbind(ctx context.Context, owner string) error
}
