package jobs

import "time"

type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "full_time"
	EmploymentPartTime   EmploymentType = "part_time"
	EmploymentContract   EmploymentType = "contract"
	EmploymentInternship EmploymentType = "internship"
	EmploymentTemporary  EmploymentType = "temporary"
)

func IsValidEmploymentType(t EmploymentType) bool {
	switch t {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentInternship, EmploymentTemporary:
		return true
	}
	return false
}

type WorkplaceType string

const (
	WorkplaceOnSite WorkplaceType = "on_site"
	WorkplaceRemote WorkplaceType = "remote"
	WorkplaceHybrid WorkplaceType = "hybrid"
)

func IsValidWorkplaceType(t WorkplaceType) bool {
	switch t {
	case WorkplaceOnSite, WorkplaceRemote, WorkplaceHybrid:
		return true
	}
	return false
}

// JobListing is one posting owned by a company.
//
// SearchBlob is a denormalized lowercase concatenation of title, HTML-stripped
// description, location, company name and tags; it is regenerated whenever any
// of those inputs change and feeds the datastore's text index.
//
// ApplicationCount equals the number of non-withdrawn applications for this
// listing; it is maintained incrementally with a repair routine available.
type JobListing struct {
	ID                string         `bson:"_id,omitempty" json:"id"`
	CompanyID         string         `bson:"company_id" json:"companyId"`
	CompanyName       string         `bson:"company_name" json:"companyName"`
	Title             string         `bson:"title" json:"title"`
	Description       string         `bson:"description" json:"description"`
	Location          string         `bson:"location,omitempty" json:"location,omitempty"`
	EmploymentType    EmploymentType `bson:"employment_type" json:"employmentType"`
	WorkplaceType     WorkplaceType  `bson:"workplace_type" json:"workplaceType"`
	SalaryMin         *int64         `bson:"salary_min,omitempty" json:"salaryMin,omitempty"`
	SalaryMax         *int64         `bson:"salary_max,omitempty" json:"salaryMax,omitempty"`
	SalaryCurrency    string         `bson:"salary_currency,omitempty" json:"salaryCurrency,omitempty"`
	Tags              []string       `bson:"tags,omitempty" json:"tags,omitempty"`
	SearchBlob        string         `bson:"search_blob" json:"-"`
	IsActive          bool           `bson:"is_active" json:"isActive"`
	AutoCloseOnAccept bool           `bson:"auto_close_on_accept" json:"autoCloseOnAccept"`
	ApplicationCount  int64          `bson:"application_count" json:"applicationCount"`
	PostedBy          string         `bson:"posted_by" json:"postedBy"`
	CreatedAt         time.Time      `bson:"created_at" json:"createdAt"`
	UpdatedAt         time.Time      `bson:"updated_at" json:"updatedAt"`
	ClosedAt          *time.Time     `bson:"closed_at,omitempty" json:"closedAt,omitempty"`
}

// SearchFilter narrows a public job search. Text goes to the full-text index;
// the rest are structured predicates.
type SearchFilter struct {
	Text           string
	CompanyID      string
	Location       string
	WorkplaceType  WorkplaceType
	EmploymentType EmploymentType
	MinSalary      *int64
	Tags           []string
	IncludeClosed  bool
	Limit          int
}
