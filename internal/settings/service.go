package settings

import (
	"context"
	"log/slog"

	"github.com/surtidor-erp/surtidor-erp/internal/settlement"
)

// RepositoryPort defines data access for branch settings.
type RepositoryPort interface {
	Get(ctx context.Context, branchID int64) (*Record, error)
	Upsert(ctx context.Context, req UpdateRequest) (*Record, error)
}

// Service resolves and updates the collection parameters. Lookups fall back
// from the branch row to the company-wide row (branch 0) to the documented
// defaults, so the calculator always receives usable values.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Resolve returns the effective settings record for a branch.
func (s *Service) Resolve(ctx context.Context, branchID int64) (Record, error) {
	if rec, err := s.cache.Get(ctx, branchID); err == nil && rec != nil {
		return *rec, nil
	} else if err != nil && s.logger != nil {
		s.logger.Warn("settings cache read", slog.Int64("branch_id", branchID), slog.Any("error", err))
	}

	rec, err := s.lookup(ctx, branchID)
	if err != nil {
		return Record{}, err
	}
	if err := s.cache.Set(ctx, rec); err != nil && s.logger != nil {
		s.logger.Warn("settings cache write", slog.Int64("branch_id", branchID), slog.Any("error", err))
	}
	return rec, nil
}

func (s *Service) lookup(ctx context.Context, branchID int64) (Record, error) {
	rec, err := s.repo.Get(ctx, branchID)
	if err != nil {
		return Record{}, err
	}
	if rec == nil && branchID != 0 {
		rec, err = s.repo.Get(ctx, 0)
		if err != nil {
			return Record{}, err
		}
	}
	if rec == nil {
		return DefaultRecord(branchID), nil
	}
	effective := *rec
	effective.BranchID = branchID
	return effective, nil
}

// Get implements settlement.SettingsProvider.
func (s *Service) Get(ctx context.Context, branchID int64) (settlement.Settings, error) {
	rec, err := s.Resolve(ctx, branchID)
	if err != nil {
		return settlement.Settings{}, err
	}
	return rec.ToSettings(), nil
}

// Update writes a branch's settings and invalidates its cache entry.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (Record, error) {
	rec, err := s.repo.Upsert(ctx, req)
	if err != nil {
		return Record{}, err
	}
	if err := s.cache.Invalidate(ctx, req.BranchID); err != nil && s.logger != nil {
		s.logger.Warn("settings cache invalidate", slog.Int64("branch_id", req.BranchID), slog.Any("error", err))
	}
	return *rec, nil
}

// Warmup preloads the cache for the given branches. Used by the background
// worker after startup and after invalidations.
func (s *Service) Warmup(ctx context.Context, branchIDs []int64) error {
	for _, id := range branchIDs {
		rec, err := s.lookup(ctx, id)
		if err != nil {
			return err
		}
		if err := s.cache.Set(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

var _ settlement.SettingsProvider = (*Service)(nil)
