package profiles

import (
	"strings"
	"time"
)

// Profile is a candidate's public card, 1:1 with a user and absent until the
// first save.
type Profile struct {
	ID              string            `bson:"_id,omitempty" json:"id"`
	UserID          string            `bson:"user_id" json:"userId"`
	Headline        string            `bson:"headline,omitempty" json:"headline,omitempty"`
	Summary         string            `bson:"summary,omitempty" json:"summary,omitempty"`
	Location        string            `bson:"location,omitempty" json:"location,omitempty"`
	ContactLinks    map[string]string `bson:"contact_links,omitempty" json:"contactLinks,omitempty"`
	YearsExperience int               `bson:"years_experience" json:"yearsExperience"`
	Skills          []string          `bson:"skills,omitempty" json:"skills,omitempty"`
	OpenToWork      bool              `bson:"open_to_work" json:"openToWork"`
	CreatedAt       time.Time         `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `bson:"updated_at" json:"updatedAt"`
}

// NormalizeSkills trims entries, drops empties and deduplicates
// case-insensitively, keeping the first spelling and the original order.
// Saved and re-read skill lists are byte-for-byte identical.
func NormalizeSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]struct{}, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Experience is one work-history entry. Order is an explicit display position.
type Experience struct {
	ID          string     `bson:"_id,omitempty" json:"id"`
	UserID      string     `bson:"user_id" json:"userId"`
	Title       string     `bson:"title" json:"title"`
	Company     string     `bson:"company" json:"company"`
	Location    string     `bson:"location,omitempty" json:"location,omitempty"`
	StartDate   time.Time  `bson:"start_date" json:"startDate"`
	EndDate     *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Description string     `bson:"description,omitempty" json:"description,omitempty"`
	Order       int        `bson:"order" json:"order"`
	CreatedAt   time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updated_at" json:"updatedAt"`
}

type Education struct {
	ID        string     `bson:"_id,omitempty" json:"id"`
	UserID    string     `bson:"user_id" json:"userId"`
	School    string     `bson:"school" json:"school"`
	Degree    string     `bson:"degree,omitempty" json:"degree,omitempty"`
	Field     string     `bson:"field,omitempty" json:"field,omitempty"`
	StartDate time.Time  `bson:"start_date" json:"startDate"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"endDate,omitempty"`
	Order     int        `bson:"order" json:"order"`
	CreatedAt time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updatedAt"`
}

type Certification struct {
	ID            string     `bson:"_id,omitempty" json:"id"`
	UserID        string     `bson:"user_id" json:"userId"`
	Name          string     `bson:"name" json:"name"`
	Issuer        string     `bson:"issuer,omitempty" json:"issuer,omitempty"`
	IssueDate     time.Time  `bson:"issue_date" json:"issueDate"`
	ExpiryDate    *time.Time `bson:"expiry_date,omitempty" json:"expiryDate,omitempty"`
	CredentialURL string     `bson:"credential_url,omitempty" json:"credentialUrl,omitempty"`
	CreatedAt     time.Time  `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updatedAt"`
}

// Resume is an uploaded file owned by a user. At most one per user carries the
// default flag; deleting the default promotes the most recent remaining file.
type Resume struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	UserID      string    `bson:"user_id" json:"userId"`
	Title       string    `bson:"title" json:"title"`
	ObjectKey   string    `bson:"object_key" json:"-"`
	FileName    string    `bson:"file_name" json:"fileName"`
	FileSize    int64     `bson:"file_size" json:"fileSize"`
	ContentType string    `bson:"content_type" json:"contentType"`
	IsDefault   bool      `bson:"is_default" json:"isDefault"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}
