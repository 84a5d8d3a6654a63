package favorites

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository implements Repository in memory for tests.
type MemoryRepository struct {
	mu   sync.RWMutex
	rows map[string]*Favorite // keyed by user_id + "/" + job_id
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[string]*Favorite)}
}

func favKey(userID, jobID string) string { return userID + "/" + jobID }

func (r *MemoryRepository) Insert(_ context.Context, f *Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := favKey(f.UserID, f.JobID)
	if _, ok := r.rows[key]; ok {
		return nil
	}
	if f.ID == "" {
		f.ID = primitive.NewObjectID().Hex()
	}
	f.CreatedAt = time.Now().UTC()
	cp := *f
	r.rows[key] = &cp
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, favKey(userID, jobID))
	return nil
}

func (r *MemoryRepository) Exists(_ context.Context, userID, jobID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rows[favKey(userID, jobID)]
	return ok, nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]*Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Favorite
	for _, f := range r.rows {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
