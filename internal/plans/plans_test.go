package plans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/jobs"
)

func newPlanFixture(t *testing.T, plan identity.Plan) (*Service, *identity.Company, *identity.MemoryMemberRepository, *jobs.MemoryRepository) {
	t.Helper()
	companies := identity.NewMemoryCompanyRepository()
	members := identity.NewMemoryMemberRepository()
	jobsRepo := jobs.NewMemoryRepository()
	company, err := companies.UpsertByExternalOrgID(context.Background(), &identity.Company{
		ExternalOrgID: "org_1", Name: "Acme", Slug: "acme", Plan: plan,
	})
	require.NoError(t, err)
	return NewService(companies, members, jobsRepo), company, members, jobsRepo
}

func TestEffectiveLimitsDefaults(t *testing.T) {
	cases := []struct {
		plan  identity.Plan
		seats int
		jobs  int
	}{
		{identity.PlanFree, 3, 1},
		{identity.PlanStarter, 10, 5},
		{identity.PlanGrowth, 50, 25},
		{identity.Plan("unknown"), 3, 1},
	}
	for _, tc := range cases {
		seats, jobLimit := EffectiveLimits(&identity.Company{Plan: tc.plan})
		assert.Equal(t, tc.seats, seats, string(tc.plan))
		assert.Equal(t, tc.jobs, jobLimit, string(tc.plan))
	}

	// synced limits win over defaults
	seats, jobLimit := EffectiveLimits(&identity.Company{Plan: identity.PlanFree, SeatLimit: 7, JobLimit: 2})
	assert.Equal(t, 7, seats)
	assert.Equal(t, 2, jobLimit)
}

func TestSeatAvailableCountsInvites(t *testing.T) {
	svc, company, members, _ := newPlanFixture(t, identity.PlanFree) // 3 seats
	ctx := context.Background()

	add := func(userID, email string, status identity.MemberStatus) {
		_, err := members.Upsert(ctx, &identity.CompanyMember{
			CompanyID: company.ID, UserID: userID, InvitedEmail: email,
			Role: identity.RoleMember, Status: status,
		})
		require.NoError(t, err)
	}
	add("u1", "", identity.MemberActive)
	add("u2", "", identity.MemberActive)

	ok, err := svc.SeatAvailable(ctx, company.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// a pending invitation holds the last seat
	add("", "pending@example.com", identity.MemberInvited)
	ok, err = svc.SeatAvailable(ctx, company.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// removed members do not count
	add("u2", "", identity.MemberRemoved)
	ok, err = svc.SeatAvailable(ctx, company.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = svc.SeatAvailable(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestJobSlotAvailable(t *testing.T) {
	svc, company, _, jobsRepo := newPlanFixture(t, identity.PlanFree) // 1 listing
	ctx := context.Background()

	ok, err := svc.JobSlotAvailable(ctx, company.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	job := &jobs.JobListing{CompanyID: company.ID, Title: "Engineer", IsActive: true}
	require.NoError(t, jobsRepo.Insert(ctx, job))

	ok, err = svc.JobSlotAvailable(ctx, company.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUsageSnapshot(t *testing.T) {
	svc, company, members, jobsRepo := newPlanFixture(t, identity.PlanGrowth)
	ctx := context.Background()

	_, err := members.Upsert(ctx, &identity.CompanyMember{CompanyID: company.ID, UserID: "u1", Role: identity.RoleAdmin, Status: identity.MemberActive})
	require.NoError(t, err)
	_, err = members.Upsert(ctx, &identity.CompanyMember{CompanyID: company.ID, InvitedEmail: "p@example.com", Role: identity.RoleMember, Status: identity.MemberInvited})
	require.NoError(t, err)
	require.NoError(t, jobsRepo.Insert(ctx, &jobs.JobListing{CompanyID: company.ID, Title: "Open", IsActive: true}))
	require.NoError(t, jobsRepo.Insert(ctx, &jobs.JobListing{CompanyID: company.ID, Title: "Closed", IsActive: false}))

	u, err := svc.Usage(ctx, company.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, u.ActiveMembers)
	assert.EqualValues(t, 1, u.InvitedMembers)
	assert.EqualValues(t, 1, u.ActiveJobs)
	assert.EqualValues(t, 2, u.TotalJobs)
}

func TestSyncPlan(t *testing.T) {
	svc, company, _, _ := newPlanFixture(t, identity.PlanFree)
	ctx := context.Background()

	require.NoError(t, svc.SyncPlan(ctx, company.ID, identity.PlanStarter, 12, 6))
	ok, err := svc.SeatAvailable(ctx, company.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = svc.SyncPlan(ctx, company.ID, identity.Plan("platinum"), 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = svc.SyncPlan(ctx, company.ID, identity.PlanStarter, -1, 5)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	err = svc.SyncPlan(ctx, "missing", identity.PlanStarter, 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
