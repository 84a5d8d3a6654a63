package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/notifications"
	"github.com/hirepath/hirepath/pkg/logger"
)

const (
	maxSearchLimit      = 100
	maxCompanyListLimit = 200
)

// Guard is the authorization surface the service depends on.
type Guard interface {
	RequireActiveMembership(ctx context.Context, companyID, userID string) (*identity.CompanyMember, error)
	RequireRole(ctx context.Context, companyID, userID string, roles ...identity.Role) (*identity.CompanyMember, error)
}

// PlanSource answers whether the company has a free active-job slot.
type PlanSource interface {
	JobSlotAvailable(ctx context.Context, companyID string) (bool, error)
}

// CompanySource resolves company mirrors (for the denormalized name).
type CompanySource interface {
	GetByID(ctx context.Context, id string) (*identity.Company, error)
}

// Notifier writes one inbox notification; implemented by notifications.Service.
type Notifier interface {
	Notify(ctx context.Context, userID string, t notifications.Type, title, message, linkURL string, metadata map[string]string) error
}

// ApplicantSource lists applicants still awaiting a decision on a job.
// Implemented by the applications layer.
type ApplicantSource interface {
	PendingApplicantIDs(ctx context.Context, jobID string) ([]string, error)
}

// Service implements the listing lifecycle: create under the plan ceiling,
// update with search-blob upkeep, close with applicant fan-out, reopen.
type Service struct {
	repo       Repository
	guard      Guard
	plans      PlanSource
	companies  CompanySource
	notifier   Notifier
	applicants ApplicantSource
}

func NewService(repo Repository, guard Guard, plans PlanSource, companies CompanySource, notifier Notifier) *Service {
	return &Service{repo: repo, guard: guard, plans: plans, companies: companies, notifier: notifier}
}

// SetApplicantSource wires the applications layer (done in main to avoid a
// construction cycle between the two services).
func (s *Service) SetApplicantSource(a ApplicantSource) { s.applicants = a }

// CreateInput carries the writable listing fields.
type CreateInput struct {
	CompanyID         string
	Title             string
	Description       string
	Location          string
	EmploymentType    EmploymentType
	WorkplaceType     WorkplaceType
	SalaryMin         *int64
	SalaryMax         *int64
	SalaryCurrency    string
	Tags              []string
	AutoCloseOnAccept bool
}

// UpdateInput uses pointers for partial updates; nil fields are untouched.
type UpdateInput struct {
	Title             *string
	Description       *string
	Location          *string
	EmploymentType    *EmploymentType
	WorkplaceType     *WorkplaceType
	SalaryMin         *int64
	SalaryMax         *int64
	SalaryCurrency    *string
	Tags              *[]string
	IsActive          *bool
	AutoCloseOnAccept *bool
}

// Create posts a new active listing, enforcing the company's active-job
// ceiling and the salary-range invariant.
func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (*JobListing, error) {
	member, err := s.guard.RequireRole(ctx, in.CompanyID, actorID, identity.RoleAdmin, identity.RoleRecruiter)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
	}
	if !IsValidEmploymentType(in.EmploymentType) {
		return nil, fmt.Errorf("%w: unknown employment type %q", apperrors.ErrInvalidInput, in.EmploymentType)
	}
	if !IsValidWorkplaceType(in.WorkplaceType) {
		return nil, fmt.Errorf("%w: unknown workplace type %q", apperrors.ErrInvalidInput, in.WorkplaceType)
	}
	if err := validateSalaryRange(in.SalaryMin, in.SalaryMax); err != nil {
		return nil, err
	}
	ok, err := s.plans.JobSlotAvailable(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: active job ceiling reached", apperrors.ErrLimitExceeded)
	}
	company, err := s.companies.GetByID(ctx, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, in.CompanyID)
	}

	j := &JobListing{
		CompanyID:         in.CompanyID,
		CompanyName:       company.Name,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Location:          strings.TrimSpace(in.Location),
		EmploymentType:    in.EmploymentType,
		WorkplaceType:     in.WorkplaceType,
		SalaryMin:         in.SalaryMin,
		SalaryMax:         in.SalaryMax,
		SalaryCurrency:    in.SalaryCurrency,
		Tags:              normalizeTags(in.Tags),
		IsActive:          true,
		AutoCloseOnAccept: in.AutoCloseOnAccept,
		PostedBy:          member.UserID,
	}
	j.SearchBlob = BuildSearchBlob(j.Title, j.Description, j.Location, j.CompanyName, j.Tags)
	if err := s.repo.Insert(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Update applies a partial edit. Setting IsActive false records the close
// time; setting it true reopens without re-checking the job ceiling (recorded
// product decision). The search blob is rebuilt whenever a contributing field
// changes.
func (s *Service) Update(ctx context.Context, actorID, jobID string, in UpdateInput) (*JobListing, error) {
	j, err := s.getOwned(ctx, actorID, jobID)
	if err != nil {
		return nil, err
	}

	blobDirty := false
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title is required", apperrors.ErrInvalidInput)
		}
		j.Title = strings.TrimSpace(*in.Title)
		blobDirty = true
	}
	if in.Description != nil {
		j.Description = *in.Description
		blobDirty = true
	}
	if in.Location != nil {
		j.Location = strings.TrimSpace(*in.Location)
		blobDirty = true
	}
	if in.EmploymentType != nil {
		if !IsValidEmploymentType(*in.EmploymentType) {
			return nil, fmt.Errorf("%w: unknown employment type %q", apperrors.ErrInvalidInput, *in.EmploymentType)
		}
		j.EmploymentType = *in.EmploymentType
	}
	if in.WorkplaceType != nil {
		if !IsValidWorkplaceType(*in.WorkplaceType) {
			return nil, fmt.Errorf("%w: unknown workplace type %q", apperrors.ErrInvalidInput, *in.WorkplaceType)
		}
		j.WorkplaceType = *in.WorkplaceType
	}
	if in.SalaryMin != nil {
		j.SalaryMin = in.SalaryMin
	}
	if in.SalaryMax != nil {
		j.SalaryMax = in.SalaryMax
	}
	if err := validateSalaryRange(j.SalaryMin, j.SalaryMax); err != nil {
		return nil, err
	}
	if in.SalaryCurrency != nil {
		j.SalaryCurrency = *in.SalaryCurrency
	}
	if in.Tags != nil {
		j.Tags = normalizeTags(*in.Tags)
		blobDirty = true
	}
	if in.AutoCloseOnAccept != nil {
		j.AutoCloseOnAccept = *in.AutoCloseOnAccept
	}
	if in.IsActive != nil && *in.IsActive != j.IsActive {
		if *in.IsActive {
			j.IsActive = true
			j.ClosedAt = nil
		} else {
			now := time.Now().UTC()
			j.IsActive = false
			j.ClosedAt = &now
		}
	}
	if blobDirty {
		j.SearchBlob = BuildSearchBlob(j.Title, j.Description, j.Location, j.CompanyName, j.Tags)
	}
	if err := s.repo.Update(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// Close transitions Active→Closed and notifies every applicant still awaiting
// a decision.
func (s *Service) Close(ctx context.Context, actorID, jobID string) (*JobListing, error) {
	j, err := s.getOwned(ctx, actorID, jobID)
	if err != nil {
		return nil, err
	}
	if !j.IsActive {
		return nil, fmt.Errorf("%w: listing is already closed", apperrors.ErrInvalidStateTransition)
	}
	if err := s.closeListing(ctx, j, ""); err != nil {
		return nil, err
	}
	return j, nil
}

// AutoClose closes a listing as a side effect of accepting an application.
// The accepted applicant is excluded from the fan-out. The caller has already
// authorized the decision.
func (s *Service) AutoClose(ctx context.Context, jobID, excludeApplicantID string) error {
	j, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if j == nil || !j.IsActive {
		return nil
	}
	return s.closeListing(ctx, j, excludeApplicantID)
}

func (s *Service) closeListing(ctx context.Context, j *JobListing, excludeApplicantID string) error {
	now := time.Now().UTC()
	j.IsActive = false
	j.ClosedAt = &now
	if err := s.repo.Update(ctx, j); err != nil {
		return err
	}
	s.notifyClosed(ctx, j, excludeApplicantID)
	return nil
}

// notifyClosed fans out job_closed to pending applicants. Each write is
// best-effort: one failed recipient does not block the rest.
func (s *Service) notifyClosed(ctx context.Context, j *JobListing, excludeApplicantID string) {
	if s.applicants == nil || s.notifier == nil {
		return
	}
	ids, err := s.applicants.PendingApplicantIDs(ctx, j.ID)
	if err != nil {
		logger.Errorf("list pending applicants for job %s: %v", j.ID, err)
		return
	}
	for _, userID := range ids {
		if userID == excludeApplicantID {
			continue
		}
		err := s.notifier.Notify(ctx, userID, notifications.TypeJobClosed,
			"Position closed",
			fmt.Sprintf("%s at %s is no longer accepting applications.", j.Title, j.CompanyName),
			"/jobs/"+j.ID,
			map[string]string{"jobId": j.ID})
		if err != nil {
			logger.Errorf("notify applicant %s of closed job %s: %v", userID, j.ID, err)
		}
	}
}

// Get returns one listing; ErrNotFound when absent.
func (s *Service) Get(ctx context.Context, id string) (*JobListing, error) {
	j, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("%w: job %s", apperrors.ErrNotFound, id)
	}
	return j, nil
}

// Search runs the public listing search, capped at 100 rows.
func (s *Service) Search(ctx context.Context, f SearchFilter) ([]*JobListing, error) {
	if f.Limit <= 0 || f.Limit > maxSearchLimit {
		f.Limit = maxSearchLimit
	}
	return s.repo.Search(ctx, f)
}

// CompanyJobs lists a company's own listings for members, capped at 200.
func (s *Service) CompanyJobs(ctx context.Context, actorID, companyID string, includeClosed bool, limit int) ([]*JobListing, error) {
	if _, err := s.guard.RequireActiveMembership(ctx, companyID, actorID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > maxCompanyListLimit {
		limit = maxCompanyListLimit
	}
	return s.repo.ListByCompany(ctx, companyID, includeClosed, limit)
}

// IncrementApplicationCount and SetApplicationCount expose counter upkeep to
// the applications layer.
func (s *Service) IncrementApplicationCount(ctx context.Context, jobID string, delta int64) error {
	return s.repo.IncrementApplicationCount(ctx, jobID, delta)
}

func (s *Service) SetApplicationCount(ctx context.Context, jobID string, count int64) error {
	return s.repo.SetApplicationCount(ctx, jobID, count)
}

// DeactivateCompanyJobs closes every active listing of a company; used by the
// identity sync when the provider deletes an organization.
func (s *Service) DeactivateCompanyJobs(ctx context.Context, companyID string) error {
	return s.repo.DeactivateByCompany(ctx, companyID)
}

func (s *Service) getOwned(ctx context.Context, actorID, jobID string) (*JobListing, error) {
	j, err := s.repo.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, fmt.Errorf("%w: job %s", apperrors.ErrNotFound, jobID)
	}
	if _, err := s.guard.RequireRole(ctx, j.CompanyID, actorID, identity.RoleAdmin, identity.RoleRecruiter); err != nil {
		return nil, err
	}
	return j, nil
}

func validateSalaryRange(min, max *int64) error {
	if min != nil && max != nil && *min > *max {
		return fmt.Errorf("%w: salaryMin exceeds salaryMax", apperrors.ErrInvalidInput)
	}
	return nil
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
