package ledger

import (
	"context"
	"log/slog"

	"resume-ledger-backend/internal/domain"

	"golang.org/x/sync/errgroup"
)

const ownedObjectsPage = 50

// Object error codes that mean the id simply no longer resolves.
var notFoundCodes = map[string]bool{
	"notExists":             true,
	"deleted":               true,
	"dynamicFieldNotFound":  true,
	"objectNotExists":       true,
	"objectDeleted":         true,
	"dynamicFieldNotExists": true,
}

type Fetcher struct {
	client      *Client
	concurrency int
	log         *slog.Logger
}

func NewFetcher(client *Client, concurrency int, log *slog.Logger) *Fetcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Fetcher{client: client, concurrency: concurrency, log: log}
}

// Fetch returns (nil, nil) when the object does not resolve.
func (f *Fetcher) Fetch(ctx context.Context, id string) (*domain.FieldSnapshot, error) {
	resp, err := f.client.GetObject(ctx, id)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		if notFoundCodes[resp.Error.Code] {
			return nil, nil
		}
		return nil, resp.Error
	}
	return toSnapshot(resp.Data), nil
}

// FetchAll fetches every id with at most f.concurrency calls in flight. A
// failing id is logged and left out; it never fails the batch.
func (f *Fetcher) FetchAll(ctx context.Context, ids []string) domain.BatchResult {
	ids = dedupe(ids)

	type outcome struct {
		snap *domain.FieldSnapshot
		err  error
	}
	outcomes := make([]outcome, len(ids))
	launched := make([]bool, len(ids))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		launched[i] = true
		g.Go(func() error {
			snap, err := f.Fetch(ctx, id)
			outcomes[i] = outcome{snap: snap, err: err}
			return nil
		})
	}
	_ = g.Wait()

	result := domain.BatchResult{Snapshots: make(map[string]*domain.FieldSnapshot, len(ids))}
	for i, id := range ids {
		switch {
		case !launched[i]:
			f.log.Warn("Object fetch not started", "object_id", id, "error", ctx.Err())
			result.Failed = append(result.Failed, id)
		case outcomes[i].err != nil:
			f.log.Error("Object fetch failed", "object_id", id, "error", outcomes[i].err)
			result.Failed = append(result.Failed, id)
		case outcomes[i].snap == nil:
			result.Missing = append(result.Missing, id)
		default:
			result.Snapshots[id] = outcomes[i].snap
		}
	}

	if len(result.Failed) > 0 {
		f.log.Warn("Partial batch failure", "requested", len(ids), "failed", len(result.Failed))
	}
	return result
}

// FetchOwned lists every object of structType owned by owner.
func (f *Fetcher) FetchOwned(ctx context.Context, owner, structType string) ([]domain.FieldSnapshot, error) {
	var snaps []domain.FieldSnapshot
	var cursor *string
	for {
		page, err := f.client.GetOwnedObjects(ctx, owner, structType, cursor, ownedObjectsPage)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Data {
			if obj.Error != nil {
				continue
			}
			if snap := toSnapshot(obj.Data); snap != nil {
				snaps = append(snaps, *snap)
			}
		}
		if !page.HasNextPage || page.NextCursor == nil {
			break
		}
		cursor = page.NextCursor
	}
	return snaps, nil
}

func toSnapshot(data *ObjectData) *domain.FieldSnapshot {
	if data == nil || data.Content == nil || data.Content.Fields == nil {
		return nil
	}
	typ := data.Type
	if typ == "" {
		typ = data.Content.Type
	}
	return &domain.FieldSnapshot{
		ObjectID: data.ObjectID,
		Version:  data.Version,
		Type:     typ,
		Fields:   data.Content.Fields,
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
