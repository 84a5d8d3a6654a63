package identity

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories used for unit tests and local runs without Mongo.

type MemoryUserRepository struct {
	mu    sync.RWMutex
	store map[string]*User // by id
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{store: make(map[string]*User)}
}

func (r *MemoryUserRepository) UpsertByExternalID(_ context.Context, u *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, existing := range r.store {
		if existing.ExternalID == u.ExternalID {
			existing.Email = u.Email
			existing.FirstName = u.FirstName
			existing.LastName = u.LastName
			existing.AvatarURL = u.AvatarURL
			existing.UpdatedAt = now
			cp := *existing
			return &cp, nil
		}
	}
	cp := *u
	cp.ID = primitive.NewObjectID().Hex()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.store[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryUserRepository) GetByExternalID(_ context.Context, externalID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.store {
		if u.ExternalID == externalID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.store[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryUserRepository) DeleteByExternalID(_ context.Context, externalID string) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.store {
		if u.ExternalID == externalID {
			cp := *u
			delete(r.store, id)
			return &cp, nil
		}
	}
	return nil, nil
}

type MemoryCompanyRepository struct {
	mu    sync.RWMutex
	store map[string]*Company
}

func NewMemoryCompanyRepository() *MemoryCompanyRepository {
	return &MemoryCompanyRepository{store: make(map[string]*Company)}
}

func (r *MemoryCompanyRepository) UpsertByExternalOrgID(_ context.Context, c *Company) (*Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for _, existing := range r.store {
		if existing.ExternalOrgID == c.ExternalOrgID {
			existing.Name = c.Name
			existing.Slug = c.Slug
			existing.UpdatedAt = now
			cp := *existing
			return &cp, nil
		}
	}
	cp := *c
	cp.ID = primitive.NewObjectID().Hex()
	if cp.Plan == "" {
		cp.Plan = PlanFree
	}
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.store[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryCompanyRepository) GetByExternalOrgID(_ context.Context, externalOrgID string) (*Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.store {
		if c.ExternalOrgID == externalOrgID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryCompanyRepository) GetByID(_ context.Context, id string) (*Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.store[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryCompanyRepository) SetPlan(_ context.Context, id string, plan Plan, seatLimit, jobLimit int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.store[id]
	if !ok {
		return errNoCompany
	}
	c.Plan = plan
	c.SeatLimit = seatLimit
	c.JobLimit = jobLimit
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *MemoryCompanyRepository) DeleteByExternalOrgID(_ context.Context, externalOrgID string) (*Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.store {
		if c.ExternalOrgID == externalOrgID {
			cp := *c
			delete(r.store, id)
			return &cp, nil
		}
	}
	return nil, nil
}

type MemoryMemberRepository struct {
	mu    sync.RWMutex
	store map[string]*CompanyMember
}

func NewMemoryMemberRepository() *MemoryMemberRepository {
	return &MemoryMemberRepository{store: make(map[string]*CompanyMember)}
}

func (r *MemoryMemberRepository) Upsert(_ context.Context, m *CompanyMember) (*CompanyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	for id, existing := range r.store {
		if existing.CompanyID != m.CompanyID {
			continue
		}
		match := (m.ID != "" && id == m.ID) ||
			(m.ID == "" && m.UserID != "" && existing.UserID == m.UserID) ||
			(m.ID == "" && m.UserID == "" && m.InvitedEmail != "" && existing.InvitedEmail == m.InvitedEmail)
		if match {
			existing.UserID = m.UserID
			existing.InvitedEmail = m.InvitedEmail
			existing.Role = m.Role
			existing.Status = m.Status
			existing.UpdatedAt = now
			cp := *existing
			return &cp, nil
		}
	}
	cp := *m
	cp.ID = primitive.NewObjectID().Hex()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.store[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryMemberRepository) Get(_ context.Context, companyID, userID string) (*CompanyMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.store {
		if m.CompanyID == companyID && m.UserID == userID && m.UserID != "" {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryMemberRepository) GetByInvitedEmail(_ context.Context, companyID, email string) (*CompanyMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.store {
		if m.CompanyID == companyID && m.InvitedEmail == email && email != "" {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *MemoryMemberRepository) ListByCompany(_ context.Context, companyID string) ([]*CompanyMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*CompanyMember
	for _, m := range r.store {
		if m.CompanyID == companyID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryMemberRepository) CountByStatus(_ context.Context, companyID string, statuses ...MemberStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, m := range r.store {
		if m.CompanyID != companyID {
			continue
		}
		for _, s := range statuses {
			if m.Status == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *MemoryMemberRepository) SetStatusByUser(_ context.Context, userID string, status MemberStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.store {
		if m.UserID == userID {
			m.Status = status
			m.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func (r *MemoryMemberRepository) Remove(_ context.Context, companyID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.store {
		if m.CompanyID == companyID && m.UserID == userID {
			delete(r.store, id)
			return nil
		}
	}
	return nil
}
