package applications

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hirepath/hirepath/internal/apperrors"
)

// MemoryRepository implements Repository in memory for tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*Application
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*Application)}
}

func (r *MemoryRepository) Insert(_ context.Context, a *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, row := range r.rows {
		if row.JobID == a.JobID && row.ApplicantID == a.ApplicantID {
			return fmt.Errorf("%w: job %s", apperrors.ErrDuplicateApplication, a.JobID)
		}
	}
	now := time.Now().UTC()
	if a.ID == "" {
		a.ID = primitive.NewObjectID().Hex()
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *MemoryRepository) Update(_ context.Context, a *Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[a.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	a.UpdatedAt = time.Now().UTC()
	cp := *a
	r.rows[a.ID] = &cp
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) GetByJobAndApplicant(_ context.Context, jobID, applicantID string) (*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.rows {
		if a.JobID == jobID && a.ApplicantID == applicantID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryRepository) ListByApplicant(_ context.Context, applicantID string, limit int) ([]*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Application
	for _, a := range r.rows {
		if a.ApplicantID == applicantID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return capRows(out, limit), nil
}

func (r *MemoryRepository) ListByCompany(_ context.Context, companyID, jobID string, statuses []Status, limit int) ([]*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Application
	for _, a := range r.rows {
		if a.CompanyID != companyID {
			continue
		}
		if jobID != "" && a.JobID != jobID {
			continue
		}
		if len(statuses) > 0 && !statusIn(a.Status, statuses) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return capRows(out, limit), nil
}

func (r *MemoryRepository) ListByJobStatuses(_ context.Context, jobID string, statuses ...Status) ([]*Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Application
	for _, a := range r.rows {
		if a.JobID == jobID && statusIn(a.Status, statuses) {
			cp := *a
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *MemoryRepository) CountNonWithdrawn(_ context.Context, jobID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.rows {
		if a.JobID == jobID && a.Status != StatusWithdrawn {
			n++
		}
	}
	return n, nil
}

func statusIn(s Status, set []Status) bool {
	for _, x := range set {
		if s == x {
			return true
		}
	}
	return false
}

func sortNewestFirst(rows []*Application) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
}

func capRows(rows []*Application, limit int) []*Application {
	if limit > 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
