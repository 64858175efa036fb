package domain_test

import (
	"strings"
	"testing"

	"resume-ledger-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestResumeIndexKeepsInsertionPosition(t *testing.T) {
	idx := domain.NewResumeIndex()
	idx.Put("a", "alice", 0)
	idx.Put("b", "bob", 1)
	idx.Put("a", "carol", 2)

	assert.Equal(t, []string{"a", "b"}, idx.IDs())
	owner, ok := idx.Owner("a")
	assert.True(t, ok)
	assert.Equal(t, "carol", owner)
	assert.Equal(t, int64(2), idx.Entries()[0].Seq)
}

func TestResumeIndexFilterOwner(t *testing.T) {
	idx := domain.NewResumeIndex()
	idx.Put("a", "alice", 0)
	idx.Put("b", "bob", 1)
	idx.Put("c", "alice", 2)

	filtered := idx.FilterOwner("alice")
	assert.Equal(t, []string{"a", "c"}, filtered.IDs())
	assert.Equal(t, 3, idx.Len())
}

func TestNilIndexIsEmpty(t *testing.T) {
	var idx *domain.ResumeIndex
	assert.Equal(t, 0, idx.Len())
	assert.Nil(t, idx.IDs())
}

func TestNormalizeAddress(t *testing.T) {
	padded := "0x" + strings.Repeat("0", 62) + "ab"

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short uppercase", "0xAB", padded},
		{"already canonical", padded, padded},
		{"uppercase prefix and whitespace", " 0XaB ", padded},
		{"full length", "0x" + strings.Repeat("F", 64), "0x" + strings.Repeat("f", 64)},
		{"not hex", "0xzz", "0xzz"},
		{"too long", "0x" + strings.Repeat("1", 65), "0x" + strings.Repeat("1", 65)},
		{"no prefix", "alice", "alice"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NormalizeAddress(tt.in))
		})
	}
}

func TestOverlayKeysShareNormalizedOwner(t *testing.T) {
	padded := "0x" + strings.Repeat("0", 62) + "ab"

	assert.Equal(t, domain.AvatarKey(padded), domain.AvatarKey("0xAB"))
	assert.Equal(t, domain.SocialKey(padded), domain.SocialKey("0xab"))
	assert.True(t, domain.SameAddress("0xAB", padded))
}

func TestResumeIndexFilterOwnerNormalizesAddresses(t *testing.T) {
	idx := domain.NewResumeIndex()
	idx.Put("a", "0x"+strings.Repeat("0", 62)+"ab", 0)
	idx.Put("b", "0xcd", 1)

	assert.Equal(t, []string{"a"}, idx.FilterOwner("0xAB").IDs())
}
