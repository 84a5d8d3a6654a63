package jobs

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var errJobMissing = errors.New("job listing not found")

// MemoryRepository is an in-memory Repository for unit tests and local runs.
// Text search degrades to substring matching over the search blob, which is
// close enough to the datastore's index for test purposes.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*JobListing
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*JobListing)}
}

func (r *MemoryRepository) Insert(_ context.Context, j *JobListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if j.ID == "" {
		j.ID = primitive.NewObjectID().Hex()
	}
	j.CreatedAt = now
	j.UpdatedAt = now
	cp := *j
	r.store[cp.ID] = &cp
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*JobListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if j, ok := r.store[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) Update(_ context.Context, j *JobListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.store[j.ID]; !ok {
		return errJobMissing
	}
	j.UpdatedAt = time.Now().UTC()
	cp := *j
	r.store[cp.ID] = &cp
	return nil
}

func (r *MemoryRepository) Search(_ context.Context, f SearchFilter) ([]*JobListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	text := strings.ToLower(f.Text)
	var out []*JobListing
	for _, j := range r.store {
		if !f.IncludeClosed && !j.IsActive {
			continue
		}
		if text != "" && !strings.Contains(j.SearchBlob, text) {
			continue
		}
		if f.CompanyID != "" && j.CompanyID != f.CompanyID {
			continue
		}
		if f.Location != "" && !strings.Contains(strings.ToLower(j.Location), strings.ToLower(f.Location)) {
			continue
		}
		if f.WorkplaceType != "" && j.WorkplaceType != f.WorkplaceType {
			continue
		}
		if f.EmploymentType != "" && j.EmploymentType != f.EmploymentType {
			continue
		}
		if f.MinSalary != nil && (j.SalaryMax == nil || *j.SalaryMax < *f.MinSalary) {
			continue
		}
		if len(f.Tags) > 0 && !hasAnyTag(j.Tags, f.Tags) {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

func (r *MemoryRepository) ListByCompany(_ context.Context, companyID string, includeClosed bool, limit int) ([]*JobListing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*JobListing
	for _, j := range r.store {
		if j.CompanyID != companyID {
			continue
		}
		if !includeClosed && !j.IsActive {
			continue
		}
		cp := *j
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].CreatedAt.After(out[k].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) CountByCompany(_ context.Context, companyID string, activeOnly bool) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, j := range r.store {
		if j.CompanyID != companyID {
			continue
		}
		if activeOnly && !j.IsActive {
			continue
		}
		n++
	}
	return n, nil
}

func (r *MemoryRepository) IncrementApplicationCount(_ context.Context, id string, delta int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.store[id]
	if !ok {
		return errJobMissing
	}
	j.ApplicationCount += delta
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) SetApplicationCount(_ context.Context, id string, count int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.store[id]
	if !ok {
		return errJobMissing
	}
	j.ApplicationCount = count
	j.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryRepository) DeactivateByCompany(_ context.Context, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, j := range r.store {
		if j.CompanyID == companyID && j.IsActive {
			j.IsActive = false
			closed := now
			j.ClosedAt = &closed
			j.UpdatedAt = now
		}
	}
	return nil
}
