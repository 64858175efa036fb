package domain

import (
	"context"
	"encoding/json"
)

// Entry is one experience or achievement line. Verified is set by an
// external verifier, never by the owner.
type Entry struct {
	Text     string `json:"text"`
	Verified bool   `json:"verified"`
}

// Resume is the reconciled read model of an on-chain resume object.
type Resume struct {
	ID           string   `json:"id"`
	Owner        string   `json:"owner"`
	Name         string   `json:"name"`
	BirthDate    string   `json:"birth_date"`
	Education    string   `json:"education"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	Abilities    []string `json:"abilities"`
	Experiences  []Entry  `json:"experiences"`
	Achievements []Entry  `json:"achievements"`
	AvatarURL    string   `json:"avatar_url,omitempty"`
	SocialHandle string   `json:"social_handle,omitempty"`
}

// CreationEvent is the parsed payload of a ResumeCreated ledger event.
type CreationEvent struct {
	RecordID  string `json:"resume"`
	Owner     string `json:"user"`
	Name      string `json:"name"`
	BirthDate string `json:"date"`
	Education string `json:"education"`
	Email     string `json:"mail"`
	Phone     string `json:"number"`
}

// FieldSnapshot is the current field state of a ledger object. Fields are
// kept raw because their shapes changed over the contract's lifetime.
type FieldSnapshot struct {
	ObjectID string                     `json:"object_id"`
	Version  string                     `json:"version"`
	Type     string                     `json:"type"`
	Fields   map[string]json.RawMessage `json:"fields"`
}

// IndexEntry ties a record id to its owner. Seq is the ledger position of
// the most recent event that named the record.
type IndexEntry struct {
	RecordID string
	Owner    string
	Seq      int64
}

// ResumeIndex is an insertion-ordered record id -> owner map. Putting an
// existing id updates owner and seq but keeps its original position.
type ResumeIndex struct {
	entries []IndexEntry
	pos     map[string]int
}

func NewResumeIndex() *ResumeIndex {
	return &ResumeIndex{pos: make(map[string]int)}
}

func (idx *ResumeIndex) Put(recordID, owner string, seq int64) {
	if i, ok := idx.pos[recordID]; ok {
		idx.entries[i].Owner = owner
		idx.entries[i].Seq = seq
		return
	}
	idx.pos[recordID] = len(idx.entries)
	idx.entries = append(idx.entries, IndexEntry{RecordID: recordID, Owner: owner, Seq: seq})
}

func (idx *ResumeIndex) Owner(recordID string) (string, bool) {
	i, ok := idx.pos[recordID]
	if !ok {
		return "", false
	}
	return idx.entries[i].Owner, true
}

func (idx *ResumeIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Entries returns a copy of the entries in insertion order.
func (idx *ResumeIndex) Entries() []IndexEntry {
	if idx == nil {
		return nil
	}
	out := make([]IndexEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

func (idx *ResumeIndex) IDs() []string {
	if idx == nil {
		return nil
	}
	ids := make([]string, len(idx.entries))
	for i, e := range idx.entries {
		ids[i] = e.RecordID
	}
	return ids
}

// FilterOwner returns a new index holding only the records of owner.
// Addresses compare in normalized form.
func (idx *ResumeIndex) FilterOwner(owner string) *ResumeIndex {
	out := NewResumeIndex()
	for _, e := range idx.Entries() {
		if SameAddress(e.Owner, owner) {
			out.Put(e.RecordID, e.Owner, e.Seq)
		}
	}
	return out
}

// EventScanner builds the identity index from creation events.
type EventScanner interface {
	Scan(ctx context.Context, eventType string, pageLimit int) (*ResumeIndex, error)
}

// ObjectFetcher returns the snapshot of a ledger object, or (nil, nil) when
// the object no longer resolves.
type ObjectFetcher interface {
	Fetch(ctx context.Context, id string) (*FieldSnapshot, error)
	FetchAll(ctx context.Context, ids []string) BatchResult
	FetchOwned(ctx context.Context, owner, structType string) ([]FieldSnapshot, error)
}

// BatchResult is the outcome of a fan-out fetch. Failed ids are omitted from
// Snapshots rather than failing the whole batch.
type BatchResult struct {
	Snapshots map[string]*FieldSnapshot
	Missing   []string
	Failed    []string
}

type ResumeUsecase interface {
	ListResumes(ctx context.Context) ([]Resume, error)
	CachedResumes(ctx context.Context) ([]Resume, error)
	GetOwnerResume(ctx context.Context, owner string) (*Resume, error)
	HasResume(ctx context.Context, owner string) (bool, error)
}

type ExportUsecase interface {
	ExportDirectory(ctx context.Context, format string) ([]byte, string, error)
}

// StateReconciler turns an index and its snapshots into the public directory.
type StateReconciler interface {
	Reconcile(ctx context.Context, idx *ResumeIndex, snapshots map[string]*FieldSnapshot, overlay OverlayStore) []Resume
	Materialize(ctx context.Context, owner string, snap *FieldSnapshot, overlay OverlayStore) (Resume, bool)
}
