package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryRepository is an in-memory Repository for unit tests and local runs.
type MemoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Notification
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{store: make(map[string]*Notification)}
}

func (r *MemoryRepository) Insert(_ context.Context, n *Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = primitive.NewObjectID().Hex()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	cp := *n
	r.store[cp.ID] = &cp
	return nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string, unreadOnly bool, limit int) ([]*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Notification
	for _, n := range r.store {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, v := range r.store {
		if v.UserID == userID && !v.Read {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) MarkRead(_ context.Context, id, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.store[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	now := time.Now().UTC()
	n.Read = true
	n.ReadAt = &now
	return true, nil
}

func (r *MemoryRepository) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, n := range r.store {
		if n.UserID == userID && !n.Read {
			n.Read = true
			n.ReadAt = &now
		}
	}
	return nil
}
