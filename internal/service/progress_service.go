package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Poojitha-916/DRC-capstone/internal/models"
	"github.com/Poojitha-916/DRC-capstone/internal/repository"
	appErrors "github.com/Poojitha-916/DRC-capstone/pkg/errors"
)

type progressStore interface {
	GetByScholarID(ctx context.Context, scholarID string) (*models.ResearchProgress, error)
	Upsert(ctx context.Context, progress *models.ResearchProgress) error
}

// ProgressService exposes research progress snapshots with optional caching.
type ProgressService struct {
	repo     progressStore
	scholars assignmentStore
	cache    queueCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewProgressService constructs the service.
func NewProgressService(repo progressStore, scholars assignmentStore, logger *zap.Logger) *ProgressService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressService{repo: repo, scholars: scholars, cacheTTL: 5 * time.Minute, logger: logger}
}

// WithCache enables cached snapshot reads.
func (s *ProgressService) WithCache(cache queueCache, ttl time.Duration) *ProgressService {
	s.cache = cache
	if ttl > 0 {
		s.cacheTTL = ttl
	}
	return s
}

// ForScholar returns the progress snapshot for a scholar. Scholars may only
// read their own snapshot; staff may read any.
func (s *ProgressService) ForScholar(ctx context.Context, scholarID string, actor *models.JWTClaims) (*models.ResearchProgress, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleScholar {
		own, err := s.scholars.GetScholarByUserID(ctx, actor.UserID)
		if err != nil || own.ScholarID != scholarID {
			return nil, appErrors.ErrForbidden
		}
	}

	key := repository.ProgressKey(scholarID)
	if s.cache != nil {
		var cached models.ResearchProgress
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("progress cache read failed", zap.Error(err))
		}
	}

	progress, err := s.repo.GetByScholarID(ctx, scholarID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No counters yet: present an empty snapshot rather than a 404.
			return &models.ResearchProgress{ScholarID: scholarID}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load research progress")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, progress, s.cacheTTL); err != nil {
			s.logger.Warn("progress cache write failed", zap.Error(err))
		}
	}
	return progress, nil
}

// Record replaces a scholar's counters. Staff only.
func (s *ProgressService) Record(ctx context.Context, progress *models.ResearchProgress, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if actor.Role == models.RoleScholar {
		return appErrors.ErrForbidden
	}
	if progress == nil || progress.ScholarID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "scholarId is required")
	}
	if err := s.repo.Upsert(ctx, progress); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store research progress")
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, repository.ProgressKey(progress.ScholarID)); err != nil {
			s.logger.Warn("progress cache invalidation failed", zap.Error(err))
		}
	}
	return nil
}
