package applications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/internal/jobs"
	"github.com/hirepath/hirepath/internal/notifications"
	"github.com/hirepath/hirepath/internal/profiles"
	"github.com/hirepath/hirepath/pkg/logger"
	"github.com/hirepath/hirepath/pkg/metrics"
)

const (
	maxMineLimit    = 200
	maxCompanyLimit = 500

	// companyScanWindow bounds the rows examined when the advanced filters
	// need a per-row profile join. Only the newest rows inside the window
	// are considered.
	companyScanWindow = 500
)

// JobsService is the slice of the listing layer the state machine needs.
type JobsService interface {
	Get(ctx context.Context, id string) (*jobs.JobListing, error)
	AutoClose(ctx context.Context, jobID, excludeApplicantID string) error
	IncrementApplicationCount(ctx context.Context, jobID string, delta int64) error
	SetApplicationCount(ctx context.Context, jobID string, count int64) error
}

type Guard interface {
	RequireActiveMembership(ctx context.Context, companyID, userID string) (*identity.CompanyMember, error)
	RequireRole(ctx context.Context, companyID, userID string, roles ...identity.Role) (*identity.CompanyMember, error)
}

// ApplicantDirectory resolves applicant identity mirrors.
type ApplicantDirectory interface {
	GetByID(ctx context.Context, id string) (*identity.User, error)
}

// ProfileSource joins applications to applicant profiles for the advanced
// company filters; a nil profile means none saved.
type ProfileSource interface {
	GetByUser(ctx context.Context, userID string) (*profiles.Profile, error)
}

// ResumeSource answers resume ownership for the apply precondition.
type ResumeSource interface {
	OwnsResume(ctx context.Context, resumeID, userID string) (bool, error)
}

// CompanySource reads the company mirror; the plan tier gates the advanced
// filters.
type CompanySource interface {
	GetByID(ctx context.Context, id string) (*identity.Company, error)
}

type Notifier interface {
	Notify(ctx context.Context, userID string, t notifications.Type, title, message, linkURL string, metadata map[string]string) error
}

// Service is the application state machine:
//
//	submitted -> in_review -> accepted | rejected
//	submitted -------------> accepted | rejected
//	submitted | in_review --> withdrawn (applicant only)
//
// accepted, rejected and withdrawn are terminal, except that a withdrawn row
// is reused in place when the applicant applies again.
type Service struct {
	repo      Repository
	jobs      JobsService
	guard     Guard
	users     ApplicantDirectory
	profiles  ProfileSource
	resumes   ResumeSource
	companies CompanySource
	notifier  Notifier
}

func NewService(repo Repository, jobsSvc JobsService, guard Guard, users ApplicantDirectory, profilesSrc ProfileSource, resumes ResumeSource, companies CompanySource, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		jobs:      jobsSvc,
		guard:     guard,
		users:     users,
		profiles:  profilesSrc,
		resumes:   resumes,
		companies: companies,
		notifier:  notifier,
	}
}

// ApplyInput carries one submission.
type ApplyInput struct {
	JobID       string
	CoverLetter string
	ResumeID    string
	Answers     map[string]string
}

// Apply submits an application. A withdrawn row for the same (job, applicant)
// pair is reopened in place; a live one fails with ErrDuplicateApplication.
func (s *Service) Apply(ctx context.Context, applicantID string, in ApplyInput) (*Application, error) {
	job, err := s.jobs.Get(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if !job.IsActive {
		return nil, fmt.Errorf("%w: listing is not accepting applications", apperrors.ErrInvalidInput)
	}
	applicant, err := s.users.GetByID(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant == nil || applicant.FirstName == "" || applicant.LastName == "" {
		return nil, fmt.Errorf("%w: add your first and last name before applying", apperrors.ErrInvalidInput)
	}
	if in.ResumeID != "" {
		owns, err := s.resumes.OwnsResume(ctx, in.ResumeID, applicantID)
		if err != nil {
			return nil, err
		}
		if !owns {
			return nil, fmt.Errorf("%w: resume %s", apperrors.ErrNotFound, in.ResumeID)
		}
	}

	existing, err := s.repo.GetByJobAndApplicant(ctx, in.JobID, applicantID)
	if err != nil {
		return nil, err
	}
	var app *Application
	switch {
	case existing == nil:
		app = &Application{
			JobID:       in.JobID,
			CompanyID:   job.CompanyID,
			ApplicantID: applicantID,
			Status:      StatusSubmitted,
			CoverLetter: in.CoverLetter,
			ResumeID:    in.ResumeID,
			Answers:     in.Answers,
		}
		if err := s.repo.Insert(ctx, app); err != nil {
			return nil, err
		}
	case existing.Status == StatusWithdrawn:
		existing.Status = StatusSubmitted
		existing.CoverLetter = in.CoverLetter
		existing.ResumeID = in.ResumeID
		existing.Answers = in.Answers
		existing.DecidedBy = ""
		existing.DecidedAt = nil
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, err
		}
		app = existing
	default:
		return nil, fmt.Errorf("%w: job %s", apperrors.ErrDuplicateApplication, in.JobID)
	}

	if err := s.jobs.IncrementApplicationCount(ctx, in.JobID, 1); err != nil {
		logger.Errorf("increment application count for job %s: %v", in.JobID, err)
	}
	metrics.ApplicationsSubmitted.Inc()

	err = s.notifier.Notify(ctx, job.PostedBy, notifications.TypeApplicationReceived,
		"New application",
		fmt.Sprintf("%s %s applied to %s.", applicant.FirstName, applicant.LastName, job.Title),
		"/company/jobs/"+job.ID+"/applications",
		map[string]string{"jobId": job.ID, "applicationId": app.ID})
	if err != nil {
		logger.Errorf("notify poster of application %s: %v", app.ID, err)
	}
	return app, nil
}

// Decide moves a pending application to in_review, accepted or rejected.
// Accepting on an auto-close listing closes it and notifies the other pending
// applicants.
func (s *Service) Decide(ctx context.Context, actorID, applicationID string, target Status) (*Application, error) {
	if target != StatusInReview && target != StatusAccepted && target != StatusRejected {
		return nil, fmt.Errorf("%w: cannot decide to %q", apperrors.ErrInvalidInput, target)
	}
	app, err := s.repo.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("%w: application %s", apperrors.ErrNotFound, applicationID)
	}
	if _, err := s.guard.RequireRole(ctx, app.CompanyID, actorID, identity.RoleAdmin, identity.RoleRecruiter); err != nil {
		return nil, err
	}
	if !IsPending(app.Status) {
		return nil, fmt.Errorf("%w: application is %s", apperrors.ErrInvalidStateTransition, app.Status)
	}
	if target == StatusInReview && app.Status != StatusSubmitted {
		return nil, fmt.Errorf("%w: application is already %s", apperrors.ErrInvalidStateTransition, app.Status)
	}

	now := time.Now().UTC()
	app.Status = target
	app.DecidedBy = actorID
	app.DecidedAt = &now
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, err
	}

	job, err := s.jobs.Get(ctx, app.JobID)
	if err != nil {
		return nil, err
	}
	if target == StatusAccepted && job.AutoCloseOnAccept && job.IsActive {
		if err := s.jobs.AutoClose(ctx, job.ID, app.ApplicantID); err != nil {
			logger.Errorf("auto-close job %s after accepting %s: %v", job.ID, app.ID, err)
		}
	}

	var message string
	if target == StatusAccepted {
		message = fmt.Sprintf("Congratulations! Your application to %s at %s was accepted.", job.Title, job.CompanyName)
	} else {
		message = fmt.Sprintf("Your application to %s at %s is now %s.", job.Title, job.CompanyName, target)
	}
	err = s.notifier.Notify(ctx, app.ApplicantID, notifications.TypeApplicationStatus,
		"Application update", message, "/applications/"+app.ID,
		map[string]string{"jobId": job.ID, "applicationId": app.ID, "status": string(target)})
	if err != nil {
		logger.Errorf("notify applicant %s of decision on %s: %v", app.ApplicantID, app.ID, err)
	}
	return app, nil
}

// Withdraw is applicant-only and fails once a decision has been recorded.
func (s *Service) Withdraw(ctx context.Context, applicantID, applicationID string) (*Application, error) {
	app, err := s.repo.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil || app.ApplicantID != applicantID {
		return nil, fmt.Errorf("%w: application %s", apperrors.ErrNotFound, applicationID)
	}
	if !IsPending(app.Status) {
		return nil, fmt.Errorf("%w: application is %s", apperrors.ErrInvalidStateTransition, app.Status)
	}
	app.Status = StatusWithdrawn
	if err := s.repo.Update(ctx, app); err != nil {
		return nil, err
	}
	if err := s.jobs.IncrementApplicationCount(ctx, app.JobID, -1); err != nil {
		logger.Errorf("decrement application count for job %s: %v", app.JobID, err)
	}
	return app, nil
}

// Get returns one application to its applicant or to an active member of the
// owning company.
func (s *Service) Get(ctx context.Context, actorID, applicationID string) (*Application, error) {
	app, err := s.repo.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, fmt.Errorf("%w: application %s", apperrors.ErrNotFound, applicationID)
	}
	if app.ApplicantID == actorID {
		return app, nil
	}
	if _, err := s.guard.RequireActiveMembership(ctx, app.CompanyID, actorID); err != nil {
		return nil, err
	}
	return app, nil
}

// ListMine returns the caller's applications, newest first, capped at 200.
func (s *Service) ListMine(ctx context.Context, applicantID string, limit int) ([]*Application, error) {
	if limit <= 0 || limit > maxMineLimit {
		limit = maxMineLimit
	}
	return s.repo.ListByApplicant(ctx, applicantID, limit)
}

// ListCompany returns a company's applications for an active member. The
// skills and years filters only take effect on the growth plan; otherwise they
// are ignored. When active, they run as a bounded scan of the newest rows with
// a per-row profile join, not an indexed query.
func (s *Service) ListCompany(ctx context.Context, actorID, companyID string, f CompanyFilter) ([]*Application, error) {
	if _, err := s.guard.RequireActiveMembership(ctx, companyID, actorID); err != nil {
		return nil, err
	}
	for _, st := range f.Statuses {
		if !IsValidStatus(st) {
			return nil, fmt.Errorf("%w: unknown status %q", apperrors.ErrInvalidInput, st)
		}
	}
	if f.Limit <= 0 || f.Limit > maxCompanyLimit {
		f.Limit = maxCompanyLimit
	}

	advanced := len(f.Skills) > 0 || f.MinYears > 0 || f.MaxYears > 0
	if advanced {
		company, err := s.companies.GetByID(ctx, companyID)
		if err != nil {
			return nil, err
		}
		advanced = company != nil && company.Plan == identity.PlanGrowth
	}
	if !advanced {
		return s.repo.ListByCompany(ctx, companyID, f.JobID, f.Statuses, f.Limit)
	}

	window, err := s.repo.ListByCompany(ctx, companyID, f.JobID, f.Statuses, companyScanWindow)
	if err != nil {
		return nil, err
	}
	filterSkills := normalizeFilterSkills(f.Skills)
	out := make([]*Application, 0, len(window))
	for _, app := range window {
		p, err := s.profiles.GetByUser(ctx, app.ApplicantID)
		if err != nil {
			return nil, err
		}
		if !profileMatches(p, filterSkills, f.MinYears, f.MaxYears) {
			continue
		}
		out = append(out, app)
		if len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// PendingApplicantIDs lists distinct applicants still in submitted or
// in_review on a job. The listing layer uses it for the close fan-out.
func (s *Service) PendingApplicantIDs(ctx context.Context, jobID string) ([]string, error) {
	rows, err := s.repo.ListByJobStatuses(ctx, jobID, PendingStatuses...)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, a := range rows {
		if _, ok := seen[a.ApplicantID]; ok {
			continue
		}
		seen[a.ApplicantID] = struct{}{}
		ids = append(ids, a.ApplicantID)
	}
	return ids, nil
}

// RepairApplicationCount recomputes a job's counter from the rows themselves.
// Restricted to the owning company's admins and recruiters.
func (s *Service) RepairApplicationCount(ctx context.Context, actorID, jobID string) (int64, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if _, err := s.guard.RequireRole(ctx, job.CompanyID, actorID, identity.RoleAdmin, identity.RoleRecruiter); err != nil {
		return 0, err
	}
	count, err := s.repo.CountNonWithdrawn(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if err := s.jobs.SetApplicationCount(ctx, jobID, count); err != nil {
		return 0, err
	}
	return count, nil
}

func normalizeFilterSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	for _, sk := range skills {
		sk = strings.ToLower(strings.TrimSpace(sk))
		if sk != "" {
			out = append(out, sk)
		}
	}
	return out
}

// profileMatches evaluates the advanced filters against one applicant profile.
// Skill matching is bidirectional substring containment, which is fuzzy on
// purpose ("go" matches "django").
func profileMatches(p *profiles.Profile, filterSkills []string, minYears, maxYears int) bool {
	if p == nil {
		return false
	}
	if minYears > 0 && p.YearsExperience < minYears {
		return false
	}
	if maxYears > 0 && p.YearsExperience > maxYears {
		return false
	}
	if len(filterSkills) == 0 {
		return true
	}
	for _, want := range filterSkills {
		for _, have := range p.Skills {
			have = strings.ToLower(strings.TrimSpace(have))
			if have == "" {
				continue
			}
			if strings.Contains(have, want) || strings.Contains(want, have) {
				return true
			}
		}
	}
	return false
}
