package plans

import (
	"context"
	"fmt"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/identity"
)

// Default ceilings per tier, used only when the synced company record carries
// no explicit limit yet (limit 0 = never synced).
var defaultLimits = map[identity.Plan]struct{ Seats, Jobs int }{
	identity.PlanFree:    {Seats: 3, Jobs: 1},
	identity.PlanStarter: {Seats: 10, Jobs: 5},
	identity.PlanGrowth:  {Seats: 50, Jobs: 25},
}

// Usage is a live snapshot of a company's seat and job consumption.
type Usage struct {
	ActiveMembers  int64 `json:"activeMembers"`
	InvitedMembers int64 `json:"invitedMembers"`
	ActiveJobs     int64 `json:"activeJobs"`
	TotalJobs      int64 `json:"totalJobs"`
}

// MemberCounter is the slice of the membership repository usage needs.
type MemberCounter interface {
	CountByStatus(ctx context.Context, companyID string, statuses ...identity.MemberStatus) (int64, error)
}

// JobCounter is the slice of the job repository usage needs.
type JobCounter interface {
	CountByCompany(ctx context.Context, companyID string, activeOnly bool) (int64, error)
}

// CompanySource reads and updates the synced entitlement fields.
type CompanySource interface {
	GetByID(ctx context.Context, id string) (*identity.Company, error)
	SetPlan(ctx context.Context, id string, plan identity.Plan, seatLimit, jobLimit int) error
}

// Service computes usage against externally-synced plan limits. Limits are a
// cache written by SyncPlan; they are trusted as-is at check time and never
// recomputed from billing state here.
type Service struct {
	companies CompanySource
	members   MemberCounter
	jobs      JobCounter
}

func NewService(companies CompanySource, members MemberCounter, jobs JobCounter) *Service {
	return &Service{companies: companies, members: members, jobs: jobs}
}

// EffectiveLimits returns the seat and job ceilings for a company, falling
// back to plan defaults when a limit was never synced.
func EffectiveLimits(c *identity.Company) (seats, jobs int) {
	seats, jobs = c.SeatLimit, c.JobLimit
	def, ok := defaultLimits[c.Plan]
	if !ok {
		def = defaultLimits[identity.PlanFree]
	}
	if seats <= 0 {
		seats = def.Seats
	}
	if jobs <= 0 {
		jobs = def.Jobs
	}
	return seats, jobs
}

// Usage scans current membership and listing rows; no caching, always live.
func (s *Service) Usage(ctx context.Context, companyID string) (Usage, error) {
	var u Usage
	var err error
	if u.ActiveMembers, err = s.members.CountByStatus(ctx, companyID, identity.MemberActive); err != nil {
		return u, err
	}
	if u.InvitedMembers, err = s.members.CountByStatus(ctx, companyID, identity.MemberInvited); err != nil {
		return u, err
	}
	if u.ActiveJobs, err = s.jobs.CountByCompany(ctx, companyID, true); err != nil {
		return u, err
	}
	if u.TotalJobs, err = s.jobs.CountByCompany(ctx, companyID, false); err != nil {
		return u, err
	}
	return u, nil
}

// SeatAvailable reports whether one more seat (active or pending invite) fits
// under the company's ceiling.
func (s *Service) SeatAvailable(ctx context.Context, companyID string) (bool, error) {
	c, err := s.company(ctx, companyID)
	if err != nil {
		return false, err
	}
	seatLimit, _ := EffectiveLimits(c)
	active, err := s.members.CountByStatus(ctx, companyID, identity.MemberActive)
	if err != nil {
		return false, err
	}
	invited, err := s.members.CountByStatus(ctx, companyID, identity.MemberInvited)
	if err != nil {
		return false, err
	}
	return active+invited < int64(seatLimit), nil
}

// JobSlotAvailable reports whether one more active listing fits under the
// company's ceiling.
func (s *Service) JobSlotAvailable(ctx context.Context, companyID string) (bool, error) {
	c, err := s.company(ctx, companyID)
	if err != nil {
		return false, err
	}
	_, jobLimit := EffectiveLimits(c)
	active, err := s.jobs.CountByCompany(ctx, companyID, true)
	if err != nil {
		return false, err
	}
	return active < int64(jobLimit), nil
}

// SyncPlan writes client-observed entitlements onto the company mirror.
func (s *Service) SyncPlan(ctx context.Context, companyID string, plan identity.Plan, seatLimit, jobLimit int) error {
	if !identity.IsValidPlan(plan) {
		return fmt.Errorf("%w: unknown plan %q", apperrors.ErrInvalidInput, plan)
	}
	if seatLimit < 0 || jobLimit < 0 {
		return fmt.Errorf("%w: limits must not be negative", apperrors.ErrInvalidInput)
	}
	if _, err := s.company(ctx, companyID); err != nil {
		return err
	}
	return s.companies.SetPlan(ctx, companyID, plan, seatLimit, jobLimit)
}

func (s *Service) company(ctx context.Context, companyID string) (*identity.Company, error) {
	c, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}
	return c, nil
}
