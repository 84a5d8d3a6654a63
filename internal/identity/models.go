package identity

import "time"

// User mirrors an identity-provider user. Rows are created on first
// authenticated access or by provider webhooks; the provider remains the
// source of truth.
type User struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	ExternalID string    `bson:"external_id" json:"externalId"`
	Email      string    `bson:"email" json:"email"`
	FirstName  string    `bson:"first_name" json:"firstName"`
	LastName   string    `bson:"last_name" json:"lastName"`
	AvatarURL  string    `bson:"avatar_url,omitempty" json:"avatarUrl,omitempty"`
	CreatedAt  time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updatedAt"`
}

// Plan is the externally-billed tier controlling seat and job ceilings.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanStarter Plan = "starter"
	PlanGrowth  Plan = "growth"
)

// IsValidPlan reports whether p is a known plan tier.
func IsValidPlan(p Plan) bool {
	return p == PlanFree || p == PlanStarter || p == PlanGrowth
}

// Company mirrors an identity-provider organization. Plan, SeatLimit and
// JobLimit are pushed by a client-side sync against the billing provider;
// they are a cache of entitlements, not the source of truth.
type Company struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	ExternalOrgID string    `bson:"external_org_id" json:"externalOrgId"`
	Name          string    `bson:"name" json:"name"`
	Slug          string    `bson:"slug" json:"slug"`
	Plan          Plan      `bson:"plan" json:"plan"`
	SeatLimit     int       `bson:"seat_limit" json:"seatLimit"`
	JobLimit      int       `bson:"job_limit" json:"jobLimit"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updatedAt"`
}

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRecruiter Role = "recruiter"
	RoleMember    Role = "member"
)

type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInvited   MemberStatus = "invited"
	MemberSuspended MemberStatus = "suspended"
	MemberRemoved   MemberStatus = "removed"
)

// CompanyMember joins a user to a company with a role and status. Only
// "active" rows count toward authorization and seat usage; "invited" rows
// have no user yet and are keyed by InvitedEmail until the provider reports
// the membership as created.
type CompanyMember struct {
	ID           string       `bson:"_id,omitempty" json:"id"`
	CompanyID    string       `bson:"company_id" json:"companyId"`
	UserID       string       `bson:"user_id,omitempty" json:"userId,omitempty"`
	InvitedEmail string       `bson:"invited_email,omitempty" json:"invitedEmail,omitempty"`
	Role         Role         `bson:"role" json:"role"`
	Status       MemberStatus `bson:"status" json:"status"`
	CreatedAt    time.Time    `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `bson:"updated_at" json:"updatedAt"`
}
