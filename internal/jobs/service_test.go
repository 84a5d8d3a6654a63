package jobs

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/authz"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/notifications"
	"github.com/hirepath/hirepath/internal/plans"
)

type sentNote struct {
	userID  string
	t       notifications.Type
	message string
}

type captureNotifier struct {
	sent []sentNote
}

func (n *captureNotifier) Notify(_ context.Context, userID string, t notifications.Type, _, message, _ string, _ map[string]string) error {
	n.sent = append(n.sent, sentNote{userID: userID, t: t, message: message})
	return nil
}

type staticApplicants struct {
	ids []string
}

func (a *staticApplicants) PendingApplicantIDs(context.Context, string) ([]string, error) {
	return a.ids, nil
}

type jobsFixture struct {
	svc      *Service
	repo     *MemoryRepository
	members  *identity.MemoryMemberRepository
	notifier *captureNotifier
	company  *identity.Company
}

func newJobsFixture(t *testing.T, plan identity.Plan) *jobsFixture {
	t.Helper()
	companies := identity.NewMemoryCompanyRepository()
	members := identity.NewMemoryMemberRepository()
	repo := NewMemoryRepository()
	notifier := &captureNotifier{}

	company, err := companies.UpsertByExternalOrgID(context.Background(), &identity.Company{
		ExternalOrgID: "org_1",
		Name:          "Acme Robotics",
		Slug:          "acme-robotics",
		Plan:          plan,
	})
	require.NoError(t, err)

	planSvc := plans.NewService(companies, members, repo)
	svc := NewService(repo, authz.NewGuard(members), planSvc, companies, notifier)
	return &jobsFixture{svc: svc, repo: repo, members: members, notifier: notifier, company: company}
}

func (f *jobsFixture) addMember(t *testing.T, userID string, role identity.Role) {
	t.Helper()
	_, err := f.members.Upsert(context.Background(), &identity.CompanyMember{
		CompanyID: f.company.ID,
		UserID:    userID,
		Role:      role,
		Status:    identity.MemberActive,
	})
	require.NoError(t, err)
}

func (f *jobsFixture) createJob(t *testing.T, actorID, title string) *JobListing {
	t.Helper()
	j, err := f.svc.Create(context.Background(), actorID, CreateInput{
		CompanyID:      f.company.ID,
		Title:          title,
		Description:    "<p>Build robot firmware in Go.</p>",
		Location:       "Berlin",
		EmploymentType: EmploymentFullTime,
		WorkplaceType:  WorkplaceHybrid,
		Tags:           []string{"go", "embedded"},
	})
	require.NoError(t, err)
	return j
}

func TestCreateJob(t *testing.T) {
	f := newJobsFixture(t, identity.PlanStarter)
	f.addMember(t, "u_rec", identity.RoleRecruiter)
	ctx := context.Background()

	min, max := int64(60000), int64(90000)
	j, err := f.svc.Create(ctx, "u_rec", CreateInput{
		CompanyID:      f.company.ID,
		Title:          "  Firmware Engineer ",
		Description:    "<p>Robots &amp; Go.</p>",
		Location:       "Berlin",
		EmploymentType: EmploymentFullTime,
		WorkplaceType:  WorkplaceRemote,
		SalaryMin:      &min,
		SalaryMax:      &max,
		SalaryCurrency: "EUR",
		Tags:           []string{"Go", "go", " embedded "},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, j.ID)
	assert.True(t, j.IsActive)
	assert.Equal(t, "Firmware Engineer", j.Title)
	assert.Equal(t, "Acme Robotics", j.CompanyName)
	assert.Equal(t, "u_rec", j.PostedBy)
	assert.Equal(t, []string{"Go", "embedded"}, j.Tags)
	assert.Contains(t, j.SearchBlob, "firmware engineer")
	assert.Contains(t, j.SearchBlob, "robots & go")
	assert.NotContains(t, j.SearchBlob, "<p>")
	assert.Contains(t, j.SearchBlob, "acme robotics")
}

func TestCreateJobValidation(t *testing.T) {
	f := newJobsFixture(t, identity.PlanStarter)
	f.addMember(t, "u_adm", identity.RoleAdmin)
	f.addMember(t, "u_plain", identity.RoleMember)
	ctx := context.Background()

	base := CreateInput{
		CompanyID:      f.company.ID,
		Title:          "Engineer",
		EmploymentType: EmploymentFullTime,
		WorkplaceType:  WorkplaceOnSite,
	}

	in := base
	in.Title = "   "
	_, err := f.svc.Create(ctx, "u_adm", in)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	in = base
	min, max := int64(90000), int64(60000)
	in.SalaryMin, in.SalaryMax = &min, &max
	_, err = f.svc.Create(ctx, "u_adm", in)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	in = base
	in.EmploymentType = EmploymentType("gig")
	_, err = f.svc.Create(ctx, "u_adm", in)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.Create(ctx, "u_plain", base)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.Create(ctx, "u_stranger", base)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestCreateJobCeiling(t *testing.T) {
	// Free plan with no synced limits defaults to one active listing.
	f := newJobsFixture(t, identity.PlanFree)
	f.addMember(t, "u_adm", identity.RoleAdmin)
	ctx := context.Background()

	f.createJob(t, "u_adm", "First Role")

	_, err := f.svc.Create(ctx, "u_adm", CreateInput{
		CompanyID:      f.company.ID,
		Title:          "Second Role",
		EmploymentType: EmploymentFullTime,
		WorkplaceType:  WorkplaceRemote,
	})
	assert.ErrorIs(t, err, apperrors.ErrLimitExceeded)
}

func TestUpdateJob(t *testing.T) {
	f := newJobsFixture(t, identity.PlanStarter)
	f.addMember(t, "u_adm", identity.RoleAdmin)
	f.addMember(t, "u_plain", identity.RoleMember)
	ctx := context.Background()

	j := f.createJob(t, "u_adm", "Firmware Engineer")

	title := "Senior Firmware Engineer"
	updated, err := f.svc.Update(ctx, "u_adm", j.ID, UpdateInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Contains(t, updated.SearchBlob, "senior firmware engineer")

	_, err = f.svc.Update(ctx, "u_plain", j.ID, UpdateInput{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	badMin, badMax := int64(90000), int64(60000)
	_, err = f.svc.Update(ctx, "u_adm", j.ID, UpdateInput{SalaryMin: &badMin, SalaryMax: &badMax})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.Update(ctx, "u_adm", "missing", UpdateInput{Title: &title})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateJobDeactivateAndReopen(t *testing.T) {
	f := newJobsFixture(t, identity.PlanFree) // ceiling of one
	f.addMember(t, "u_adm", identity.RoleAdmin)
	ctx := context.Background()

	first := f.createJob(t, "u_adm", "First Role")

	off := false
	closed, err := f.svc.Update(ctx, "u_adm", first.ID, UpdateInput{IsActive: &off})
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	require.NotNil(t, closed.ClosedAt)

	// Slot freed up, so a second listing fits.
	f.createJob(t, "u_adm", "Second Role")

	// Reopening does not re-check the ceiling even though the company is now
	// over it.
	on := true
	reopened, err := f.svc.Update(ctx, "u_adm", first.ID, UpdateInput{IsActive: &on})
	require.NoError(t, err)
	assert.True(t, reopened.IsActive)
	assert.Nil(t, reopened.ClosedAt)

	active, err := f.repo.CountByCompany(ctx, f.company.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)
}

func TestCloseJobFanOut(t *testing.T) {
	f := newJobsFixture(t, identity.PlanStarter)
	f.addMember(t, "u_adm", identity.RoleAdmin)
	ctx := context.Background()

	j := f.createJob(t, "u_adm", "Firmware Engineer")
	f.svc.SetApplicantSource(&staticApplicants{ids: []string{"cand_1", "cand_2"}})

	closed, err := f.svc.Close(ctx, "u_adm", j.ID)
	require.NoError(t, err)
	assert.False(t, closed.IsActive)
	require.NotNil(t, closed.ClosedAt)

	require.Len(t, f.notifier.sent, 2)
	for _, n := range f.notifier.sent {
		assert.Equal(t, notifications.TypeJobClosed, n.t)
		assert.True(t, strings.Contains(n.message, "Firmware Engineer"))
	}

	_, err = f.svc.Close(ctx, "u_adm", j.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStateTransition)
}

func TestAutoCloseExcludesAcceptedApplicant(t *testing.T) {
	f := newJobsFixture(t, identity.PlanStarter)
	f.addMember(t, "u_adm", identity.RoleAdmin)
	ctx := context.Background()

	j := f.createJob(t, "u_adm", "Firmware Engineer")
	f.svc.SetApplicantSource(&staticApplicants{ids: []string{"cand_1", "cand_2", "cand_3"}})

	require.NoError(t, f.svc.AutoClose(ctx, j.ID, "cand_2"))

	got, err := f.repo.Get(ctx, j.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	recipients := make([]string, 0, len(f.notifier.sent))
	for _, n := range f.notifier.sent {
		recipients = append(recipients, n.userID)
	}
	assert.ElementsMatch(t, []string{"cand_1", "cand_3"}, recipients)

	// Already closed: a second auto-close is a no-op.
	f.notifier.sent = nil
	require.NoError(t, f.svc.AutoClose(ctx, j.ID, ""))
	assert.Empty(t, f.notifier.sent)
}

func TestSearchJobs(t *testing.T) {
	f := newJobsFixture(t, identity.PlanStarter)
	f.addMember(t, "u_adm", identity.RoleAdmin)
	ctx := context.Background()

	a := f.createJob(t, "u_adm", "Firmware Engineer")
	b := f.createJob(t, "u_adm", "Sales Lead")

	got, err := f.svc.Search(ctx, SearchFilter{Text: "firmware"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	// Closed listings are excluded unless asked for.
	_, err = f.svc.Close(ctx, "u_adm", b.ID)
	require.NoError(t, err)
	got, err = f.svc.Search(ctx, SearchFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	got, err = f.svc.Search(ctx, SearchFilter{IncludeClosed: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCompanyJobsRequiresMembership(t *testing.T) {
	f := newJobsFixture(t, identity.PlanStarter)
	f.addMember(t, "u_adm", identity.RoleAdmin)
	f.addMember(t, "u_plain", identity.RoleMember)
	ctx := context.Background()

	f.createJob(t, "u_adm", "Firmware Engineer")

	got, err := f.svc.CompanyJobs(ctx, "u_plain", f.company.ID, false, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.svc.CompanyJobs(ctx, "u_stranger", f.company.ID, false, 0)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestDeactivateCompanyJobs(t *testing.T) {
	f := newJobsFixture(t, identity.PlanStarter)
	f.addMember(t, "u_adm", identity.RoleAdmin)
	ctx := context.Background()

	f.createJob(t, "u_adm", "Role A")
	f.createJob(t, "u_adm", "Role B")

	require.NoError(t, f.svc.DeactivateCompanyJobs(ctx, f.company.ID))

	active, err := f.repo.CountByCompany(ctx, f.company.ID, true)
	require.NoError(t, err)
	assert.Zero(t, active)
}
