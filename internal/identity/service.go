package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hirepath/hirepath/pkg/logger"
)

var errNoCompany = errors.New("company not found")

// Event is one identity-provider webhook event.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Provider payload fragments. Only the fields the mirrors need are decoded.
type userPayload struct {
	ID        string `json:"id"`
	Email     string `json:"email_address"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

type orgPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type membershipPayload struct {
	Organization orgPayload `json:"organization"`
	Role         string     `json:"role"`
	PublicUser   struct {
		UserID string `json:"user_id"`
		Email  string `json:"identifier"`
	} `json:"public_user_data"`
}

// JobCloser is implemented by the jobs layer; the sync service uses it to
// deactivate listings when the provider deletes an organization.
type JobCloser interface {
	DeactivateCompanyJobs(ctx context.Context, companyID string) error
}

// Service keeps the local user/company/membership mirrors in step with the
// identity provider (claims on authenticated access, webhook events otherwise).
type Service struct {
	users     UserRepository
	companies CompanyRepository
	members   MemberRepository
	jobs      JobCloser // optional
}

func NewService(users UserRepository, companies CompanyRepository, members MemberRepository) *Service {
	return &Service{users: users, companies: companies, members: members}
}

// SetJobCloser wires the jobs layer for the organization.deleted cascade.
func (s *Service) SetJobCloser(jc JobCloser) { s.jobs = jc }

func (s *Service) Users() UserRepository        { return s.users }
func (s *Service) Companies() CompanyRepository { return s.companies }
func (s *Service) Members() MemberRepository    { return s.members }

// UpsertUserFromClaims creates or refreshes the user mirror from verified
// OIDC claims. Returns nil when the claims carry no subject.
func (s *Service) UpsertUserFromClaims(ctx context.Context, claims map[string]interface{}) (*User, error) {
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, nil
	}
	email, _ := claims["email"].(string)
	first, _ := claims["given_name"].(string)
	last, _ := claims["family_name"].(string)
	avatar, _ := claims["picture"].(string)
	if first == "" && last == "" {
		if name, _ := claims["name"].(string); name != "" {
			parts := strings.SplitN(name, " ", 2)
			first = parts[0]
			if len(parts) == 2 {
				last = parts[1]
			}
		}
	}
	return s.users.UpsertByExternalID(ctx, &User{
		ExternalID: sub,
		Email:      email,
		FirstName:  first,
		LastName:   last,
		AvatarURL:  avatar,
	})
}

// GetUser returns the user mirror by internal id, nil when absent.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// CompanyContext resolves the provider org id to the local mirror along with
// the caller's membership, creating the mirror on first sight.
func (s *Service) CompanyContext(ctx context.Context, externalOrgID, userID string) (*Company, *CompanyMember, error) {
	company, err := s.companies.GetByExternalOrgID(ctx, externalOrgID)
	if err != nil {
		return nil, nil, err
	}
	if company == nil {
		return nil, nil, nil
	}
	member, err := s.members.Get(ctx, company.ID, userID)
	if err != nil {
		return nil, nil, err
	}
	return company, member, nil
}

// ApplyEvent routes one webhook event to the matching mirror operation.
// Unknown event types are logged and ignored so a provider rollout of new
// types never breaks the endpoint.
func (s *Service) ApplyEvent(ctx context.Context, evt Event) error {
	switch evt.Type {
	case "user.created", "user.updated":
		var p userPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", evt.Type, err)
		}
		_, err := s.users.UpsertByExternalID(ctx, &User{
			ExternalID: p.ID,
			Email:      p.Email,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			AvatarURL:  p.ImageURL,
		})
		return err

	case "user.deleted":
		var p userPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", evt.Type, err)
		}
		u, err := s.users.DeleteByExternalID(ctx, p.ID)
		if err != nil {
			return err
		}
		if u != nil {
			// memberships survive as tombstones so company views stay coherent
			return s.members.SetStatusByUser(ctx, u.ID, MemberRemoved)
		}
		return nil

	case "organization.created", "organization.updated":
		var p orgPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", evt.Type, err)
		}
		_, err := s.companies.UpsertByExternalOrgID(ctx, &Company{
			ExternalOrgID: p.ID,
			Name:          p.Name,
			Slug:          p.Slug,
		})
		return err

	case "organization.deleted":
		var p orgPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", evt.Type, err)
		}
		c, err := s.companies.DeleteByExternalOrgID(ctx, p.ID)
		if err != nil {
			return err
		}
		if c != nil && s.jobs != nil {
			if err := s.jobs.DeactivateCompanyJobs(ctx, c.ID); err != nil {
				logger.Errorf("deactivate jobs for deleted org %s: %v", c.ID, err)
			}
		}
		return nil

	case "organizationMembership.created", "organizationMembership.updated":
		return s.applyMembership(ctx, evt)

	case "organizationMembership.deleted":
		var p membershipPayload
		if err := json.Unmarshal(evt.Data, &p); err != nil {
			return fmt.Errorf("decode %s: %w", evt.Type, err)
		}
		company, user, err := s.resolveMembershipRefs(ctx, p)
		if err != nil || company == nil || user == nil {
			return err
		}
		_, err = s.members.Upsert(ctx, &CompanyMember{
			CompanyID: company.ID,
			UserID:    user.ID,
			Role:      normalizeRole(p.Role),
			Status:    MemberRemoved,
		})
		return err

	default:
		logger.Debugf("ignoring webhook event type %q", evt.Type)
		return nil
	}
}

func (s *Service) applyMembership(ctx context.Context, evt Event) error {
	var p membershipPayload
	if err := json.Unmarshal(evt.Data, &p); err != nil {
		return fmt.Errorf("decode %s: %w", evt.Type, err)
	}
	company, user, err := s.resolveMembershipRefs(ctx, p)
	if err != nil {
		return err
	}
	if company == nil || user == nil {
		return nil
	}
	m := &CompanyMember{
		CompanyID: company.ID,
		UserID:    user.ID,
		Role:      normalizeRole(p.Role),
		Status:    MemberActive,
	}
	// claim a pending invitation row for the same address, if any
	if p.PublicUser.Email != "" {
		invited, err := s.members.GetByInvitedEmail(ctx, company.ID, p.PublicUser.Email)
		if err != nil {
			return err
		}
		if invited != nil {
			m.InvitedEmail = ""
			invited.UserID = user.ID
			invited.InvitedEmail = ""
			invited.Role = m.Role
			invited.Status = MemberActive
			_, err = s.members.Upsert(ctx, invited)
			return err
		}
	}
	_, err = s.members.Upsert(ctx, m)
	return err
}

// resolveMembershipRefs maps provider ids in a membership payload to local
// mirrors, creating them if the provider delivered events out of order.
func (s *Service) resolveMembershipRefs(ctx context.Context, p membershipPayload) (*Company, *User, error) {
	company, err := s.companies.UpsertByExternalOrgID(ctx, &Company{
		ExternalOrgID: p.Organization.ID,
		Name:          p.Organization.Name,
		Slug:          p.Organization.Slug,
	})
	if err != nil {
		return nil, nil, err
	}
	if p.PublicUser.UserID == "" {
		return company, nil, nil
	}
	// look up first: the membership payload carries too little user detail to
	// overwrite an existing mirror with
	user, err := s.users.GetByExternalID(ctx, p.PublicUser.UserID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		user, err = s.users.UpsertByExternalID(ctx, &User{
			ExternalID: p.PublicUser.UserID,
			Email:      p.PublicUser.Email,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return company, user, nil
}

func normalizeRole(raw string) Role {
	r := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(raw)), "org:")
	switch Role(r) {
	case RoleAdmin, RoleRecruiter, RoleMember:
		return Role(r)
	default:
		return RoleMember
	}
}
