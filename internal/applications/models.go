package applications

import "time"

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusInReview  Status = "in_review"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

func IsValidStatus(s Status) bool {
	switch s {
	case StatusSubmitted, StatusInReview, StatusAccepted, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

// IsPending reports whether the application is still awaiting a decision.
func IsPending(s Status) bool {
	return s == StatusSubmitted || s == StatusInReview
}

// PendingStatuses lists the states a decision or a job close still touches.
var PendingStatuses = []Status{StatusSubmitted, StatusInReview}

// Application is one candidate's submission against one listing. CompanyID is
// denormalized from the listing for company-scoped queries. A withdrawn row is
// reused in place on re-apply, so at most one row ever exists per
// (job, applicant) pair.
type Application struct {
	ID          string            `bson:"_id,omitempty" json:"id"`
	JobID       string            `bson:"job_id" json:"jobId"`
	CompanyID   string            `bson:"company_id" json:"companyId"`
	ApplicantID string            `bson:"applicant_id" json:"applicantId"`
	Status      Status            `bson:"status" json:"status"`
	CoverLetter string            `bson:"cover_letter,omitempty" json:"coverLetter,omitempty"`
	ResumeID    string            `bson:"resume_id,omitempty" json:"resumeId,omitempty"`
	Answers     map[string]string `bson:"answers,omitempty" json:"answers,omitempty"`
	DecidedBy   string            `bson:"decided_by,omitempty" json:"decidedBy,omitempty"`
	DecidedAt   *time.Time        `bson:"decided_at,omitempty" json:"decidedAt,omitempty"`
	CreatedAt   time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time         `bson:"updated_at" json:"updatedAt"`
}

// CompanyFilter narrows the company-side application list. Skills, MinYears
// and MaxYears are the advanced filters available on the growth plan.
type CompanyFilter struct {
	JobID    string
	Statuses []Status
	Skills   []string
	MinYears int
	MaxYears int
	Limit    int
}
