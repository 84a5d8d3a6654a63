package profiles

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// In-memory repositories for tests.

type MemoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]*Profile // keyed by user id
}

func NewMemoryProfileRepository() *MemoryProfileRepository {
	return &MemoryProfileRepository{profiles: make(map[string]*Profile)}
}

func (r *MemoryProfileRepository) Upsert(_ context.Context, p *Profile) (*Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	existing, ok := r.profiles[p.UserID]
	if !ok {
		existing = &Profile{ID: primitive.NewObjectID().Hex(), UserID: p.UserID, CreatedAt: now}
	}
	existing.Headline = p.Headline
	existing.Summary = p.Summary
	existing.Location = p.Location
	existing.ContactLinks = p.ContactLinks
	existing.YearsExperience = p.YearsExperience
	existing.Skills = p.Skills
	existing.OpenToWork = p.OpenToWork
	existing.UpdatedAt = now
	r.profiles[p.UserID] = existing
	cp := *existing
	return &cp, nil
}

func (r *MemoryProfileRepository) GetByUser(_ context.Context, userID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

type MemoryResumeRepository struct {
	mu      sync.RWMutex
	resumes map[string]*Resume
}

func NewMemoryResumeRepository() *MemoryResumeRepository {
	return &MemoryResumeRepository{resumes: make(map[string]*Resume)}
}

func (r *MemoryResumeRepository) Insert(_ context.Context, res *Resume) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if res.ID == "" {
		res.ID = primitive.NewObjectID().Hex()
	}
	res.CreatedAt = now
	res.UpdatedAt = now
	cp := *res
	r.resumes[res.ID] = &cp
	return nil
}

func (r *MemoryResumeRepository) GetByID(_ context.Context, id string) (*Resume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.resumes[id]
	if !ok {
		return nil, nil
	}
	cp := *res
	return &cp, nil
}

func (r *MemoryResumeRepository) ListByUser(_ context.Context, userID string) ([]*Resume, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Resume
	for _, res := range r.resumes {
		if res.UserID == userID {
			cp := *res
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryResumeRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.resumes, id)
	return nil
}

func (r *MemoryResumeRepository) SetDefault(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	target, ok := r.resumes[id]
	if !ok || target.UserID != userID {
		return mongo.ErrNoDocuments
	}
	for _, res := range r.resumes {
		if res.UserID == userID {
			res.IsDefault = res.ID == id
		}
	}
	return nil
}

type MemoryExperienceRepository struct {
	mu   sync.RWMutex
	rows map[string]*Experience
}

func NewMemoryExperienceRepository() *MemoryExperienceRepository {
	return &MemoryExperienceRepository{rows: make(map[string]*Experience)}
}

func (r *MemoryExperienceRepository) Insert(_ context.Context, e *Experience) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *MemoryExperienceRepository) GetByID(_ context.Context, id string) (*Experience, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryExperienceRepository) Update(_ context.Context, e *Experience) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	e.UpdatedAt = time.Now().UTC()
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *MemoryExperienceRepository) ListByUser(_ context.Context, userID string) ([]*Experience, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Experience
	for _, e := range r.rows {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out, nil
}

func (r *MemoryExperienceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

type MemoryEducationRepository struct {
	mu   sync.RWMutex
	rows map[string]*Education
}

func NewMemoryEducationRepository() *MemoryEducationRepository {
	return &MemoryEducationRepository{rows: make(map[string]*Education)}
}

func (r *MemoryEducationRepository) Insert(_ context.Context, e *Education) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if e.ID == "" {
		e.ID = primitive.NewObjectID().Hex()
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *MemoryEducationRepository) GetByID(_ context.Context, id string) (*Education, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (r *MemoryEducationRepository) Update(_ context.Context, e *Education) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[e.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	e.UpdatedAt = time.Now().UTC()
	cp := *e
	r.rows[e.ID] = &cp
	return nil
}

func (r *MemoryEducationRepository) ListByUser(_ context.Context, userID string) ([]*Education, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Education
	for _, e := range r.rows {
		if e.UserID == userID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out, nil
}

func (r *MemoryEducationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

type MemoryCertificationRepository struct {
	mu   sync.RWMutex
	rows map[string]*Certification
}

func NewMemoryCertificationRepository() *MemoryCertificationRepository {
	return &MemoryCertificationRepository{rows: make(map[string]*Certification)}
}

func (r *MemoryCertificationRepository) Insert(_ context.Context, c *Certification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = primitive.NewObjectID().Hex()
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *MemoryCertificationRepository) GetByID(_ context.Context, id string) (*Certification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.rows[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *MemoryCertificationRepository) Update(_ context.Context, c *Certification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[c.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	r.rows[c.ID] = &cp
	return nil
}

func (r *MemoryCertificationRepository) ListByUser(_ context.Context, userID string) ([]*Certification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Certification
	for _, c := range r.rows {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.After(out[j].IssueDate) })
	return out, nil
}

func (r *MemoryCertificationRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}
