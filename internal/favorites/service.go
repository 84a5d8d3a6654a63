package favorites

import (
	"context"
	"errors"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/jobs"
)

const maxListLimit = 200

// JobSource verifies the bookmarked listing exists.
type JobSource interface {
	Get(ctx context.Context, id string) (*jobs.JobListing, error)
}

type Service struct {
	repo Repository
	jobs JobSource
}

func NewService(repo Repository, jobsSrc JobSource) *Service {
	return &Service{repo: repo, jobs: jobsSrc}
}

// Add bookmarks a listing; adding an existing bookmark is a no-op.
func (s *Service) Add(ctx context.Context, userID, jobID string) error {
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		return err
	}
	return s.repo.Insert(ctx, &Favorite{UserID: userID, JobID: jobID})
}

func (s *Service) Remove(ctx context.Context, userID, jobID string) error {
	return s.repo.Delete(ctx, userID, jobID)
}

func (s *Service) IsFavorited(ctx context.Context, userID, jobID string) (bool, error) {
	return s.repo.Exists(ctx, userID, jobID)
}

// ListMine returns the caller's bookmarks, newest first, capped at 200.
func (s *Service) ListMine(ctx context.Context, userID string, limit int) ([]*Favorite, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// ListMineWithJobs resolves the bookmarked listings; bookmarks pointing to a
// listing that has since disappeared are skipped.
func (s *Service) ListMineWithJobs(ctx context.Context, userID string, limit int) ([]*jobs.JobListing, error) {
	favs, err := s.ListMine(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*jobs.JobListing, 0, len(favs))
	for _, f := range favs {
		j, err := s.jobs.Get(ctx, f.JobID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		out = append(out, j)
	}
	return out, nil
}
