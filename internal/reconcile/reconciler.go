// Package reconcile merges the creation-event index, object snapshots and
// overlay entries into the resume directory.
package reconcile

import (
	"context"
	"log/slog"

	"resume-ledger-backend/internal/domain"
)

type Reconciler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Reconciler {
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{log: log}
}

// Reconcile returns one resume per owner in index order. Ids without a
// snapshot are skipped. When an owner has several materialized records the
// one named by the most recent event wins; owners are grouped by normalized
// address. An overlay entry that exists replaces the snapshot field, even
// when its value is empty. Overlay failures only cost the enrichment.
func (r *Reconciler) Reconcile(ctx context.Context, idx *domain.ResumeIndex, snapshots map[string]*domain.FieldSnapshot, overlay domain.OverlayStore) []domain.Resume {
	entries := idx.Entries()

	winners := make(map[string]domain.IndexEntry)
	for _, e := range entries {
		if snapshots[e.RecordID] == nil {
			continue
		}
		owner := domain.NormalizeAddress(e.Owner)
		if best, ok := winners[owner]; !ok || e.Seq > best.Seq {
			winners[owner] = e
		}
	}

	overlays := r.loadOverlays(ctx, winners, overlay)

	resumes := make([]domain.Resume, 0, len(winners))
	for _, e := range entries {
		if best, ok := winners[domain.NormalizeAddress(e.Owner)]; !ok || best.RecordID != e.RecordID {
			continue
		}
		res := r.materialize(e, snapshots[e.RecordID])
		if url, ok := overlays[domain.AvatarKey(e.Owner)]; ok {
			res.AvatarURL = url
		}
		if handle, ok := overlays[domain.SocialKey(e.Owner)]; ok {
			res.SocialHandle = handle
		}
		resumes = append(resumes, res)
	}
	return resumes
}

func (r *Reconciler) loadOverlays(ctx context.Context, winners map[string]domain.IndexEntry, overlay domain.OverlayStore) map[string]string {
	if overlay == nil || len(winners) == 0 {
		return nil
	}
	keys := make([]string, 0, 2*len(winners))
	for owner := range winners {
		keys = append(keys, domain.AvatarKey(owner), domain.SocialKey(owner))
	}
	values, err := overlay.GetMany(ctx, keys)
	if err != nil {
		r.log.Warn("Overlay lookup failed, continuing without enrichment", "owners", len(winners), "error", err)
		return nil
	}
	return values
}

func (r *Reconciler) materialize(e domain.IndexEntry, snap *domain.FieldSnapshot) domain.Resume {
	fields := snap.Fields
	mismatches := make([]string, 0)
	text := func(key string) string {
		v, ok := scalarField(fields, key)
		if !ok {
			mismatches = append(mismatches, key)
		}
		return v
	}

	res := domain.Resume{
		ID:        e.RecordID,
		Owner:     e.Owner,
		Name:      text("name"),
		BirthDate: text("date"),
		Education: text("education"),
		Email:     text("mail"),
		Phone:     text("number"),
		AvatarURL: text("avatar_url"),
	}

	abilitiesKey := "abilities"
	if _, ok := fields[abilitiesKey]; !ok {
		abilitiesKey = "ability"
	}
	var ok bool
	if res.Abilities, ok = parseStrings(fields[abilitiesKey]); !ok {
		mismatches = append(mismatches, abilitiesKey)
	}
	if res.Experiences, ok = parseEntries(fields["experiences"], "experience"); !ok {
		mismatches = append(mismatches, "experiences")
	}
	if res.Achievements, ok = parseEntries(fields["achievements"], "achievement"); !ok {
		mismatches = append(mismatches, "achievements")
	}

	if len(mismatches) > 0 {
		r.log.Debug("Coerced unexpected snapshot shapes", "object_id", e.RecordID, "fields", mismatches)
	}
	return res
}

// Materialize reconciles a single snapshot without an index, for owner
// lookups that bypass the event log. It reports false when snap is nil.
func (r *Reconciler) Materialize(ctx context.Context, owner string, snap *domain.FieldSnapshot, overlay domain.OverlayStore) (domain.Resume, bool) {
	if snap == nil {
		return domain.Resume{}, false
	}
	idx := domain.NewResumeIndex()
	idx.Put(snap.ObjectID, owner, 0)
	out := r.Reconcile(ctx, idx, map[string]*domain.FieldSnapshot{snap.ObjectID: snap}, overlay)
	if len(out) == 0 {
		return domain.Resume{}, false
	}
	return out[0], true
}
