package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"resume-ledger-backend/internal/domain"
	"resume-ledger-backend/pkg/apperror"
)

var errAllFetchesFailed = errors.New("every object fetch failed")

type ResumeConfig struct {
	EventType      string
	StructType     string
	EventPageLimit int
}

type resumeUsecase struct {
	scanner    domain.EventScanner
	fetcher    domain.ObjectFetcher
	reconciler domain.StateReconciler
	overlay    domain.OverlayStore
	cache      *DirectoryCache
	cfg        ResumeConfig
	log        *slog.Logger
}

// NewResumeUsecase creates a new resume usecase instance
func NewResumeUsecase(
	scanner domain.EventScanner,
	fetcher domain.ObjectFetcher,
	reconciler domain.StateReconciler,
	overlay domain.OverlayStore,
	cache *DirectoryCache,
	cfg ResumeConfig,
	log *slog.Logger,
) domain.ResumeUsecase {
	if cache == nil {
		cache = NewDirectoryCache()
	}
	if log == nil {
		log = slog.Default()
	}
	return &resumeUsecase{
		scanner:    scanner,
		fetcher:    fetcher,
		reconciler: reconciler,
		overlay:    overlay,
		cache:      cache,
		cfg:        cfg,
		log:        log,
	}
}

// ListResumes rebuilds the directory from the ledger and caches it
func (u *resumeUsecase) ListResumes(ctx context.Context) ([]domain.Resume, error) {
	gen := u.cache.Begin()

	idx, err := u.scanner.Scan(ctx, u.cfg.EventType, u.cfg.EventPageLimit)
	if err != nil {
		return nil, apperror.BadGateway("Failed to query resume events", err)
	}

	resumes, err := u.materialize(ctx, idx)
	if err != nil {
		return nil, err
	}

	if !u.cache.Store(gen, resumes) {
		u.log.Debug("Discarded stale directory refresh", "generation", gen)
	}
	return resumes, nil
}

// CachedResumes serves the last directory, building one on first use
func (u *resumeUsecase) CachedResumes(ctx context.Context) ([]domain.Resume, error) {
	if resumes, _, ok := u.cache.Load(); ok {
		return resumes, nil
	}
	return u.ListResumes(ctx)
}

// GetOwnerResume prefers objects the owner holds and falls back to the event
// index for shared resume objects
func (u *resumeUsecase) GetOwnerResume(ctx context.Context, owner string) (*domain.Resume, error) {
	owner = domain.NormalizeAddress(owner)
	owned, err := u.fetcher.FetchOwned(ctx, owner, u.cfg.StructType)
	if err != nil {
		return nil, apperror.BadGateway("Failed to query owned objects", err)
	}
	if res, ok := u.reconciler.Materialize(ctx, owner, newestSnapshot(owned), u.overlay); ok {
		return &res, nil
	}

	idx, err := u.scanner.Scan(ctx, u.cfg.EventType, u.cfg.EventPageLimit)
	if err != nil {
		return nil, apperror.BadGateway("Failed to query resume events", err)
	}
	mine := idx.FilterOwner(owner)
	if mine.Len() == 0 {
		return nil, apperror.NotFound("Resume not found")
	}

	resumes, err := u.materialize(ctx, mine)
	if err != nil {
		return nil, err
	}
	if len(resumes) == 0 {
		return nil, apperror.NotFound("Resume not found")
	}
	return &resumes[0], nil
}

func (u *resumeUsecase) HasResume(ctx context.Context, owner string) (bool, error) {
	_, err := u.GetOwnerResume(ctx, owner)
	if err == nil {
		return true, nil
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code == http.StatusNotFound {
		return false, nil
	}
	return false, err
}

// materialize fetches every indexed record and reconciles the survivors.
// The batch only fails when every single fetch failed.
func (u *resumeUsecase) materialize(ctx context.Context, idx *domain.ResumeIndex) ([]domain.Resume, error) {
	ids := idx.IDs()
	batch := u.fetcher.FetchAll(ctx, ids)
	if len(batch.Missing) > 0 || len(batch.Failed) > 0 {
		u.log.Warn("Resume batch partially resolved",
			"requested", len(ids),
			"missing", len(batch.Missing),
			"failed", len(batch.Failed),
		)
	}
	if len(ids) > 0 && len(batch.Failed) == len(ids) {
		return nil, apperror.BadGateway("Failed to fetch resume objects", errAllFetchesFailed)
	}
	return u.reconciler.Reconcile(ctx, idx, batch.Snapshots, u.overlay), nil
}

// newestSnapshot picks the highest object version; ties keep the first.
func newestSnapshot(snaps []domain.FieldSnapshot) *domain.FieldSnapshot {
	var best *domain.FieldSnapshot
	var bestVersion uint64
	for i := range snaps {
		v, _ := strconv.ParseUint(snaps[i].Version, 10, 64)
		if best == nil || v > bestVersion {
			best = &snaps[i]
			bestVersion = v
		}
	}
	return best
}
