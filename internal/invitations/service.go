package invitations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/identity"
	"github.com/hirepath/hirepath/pkg/logger"
)

// SeatChecker answers whether the company has a free seat.
type SeatChecker interface {
	SeatAvailable(ctx context.Context, companyID string) (bool, error)
}

type Guard interface {
	RequireRole(ctx context.Context, companyID, userID string, roles ...identity.Role) (*identity.CompanyMember, error)
}

type CompanySource interface {
	GetByID(ctx context.Context, id string) (*identity.Company, error)
}

// MemberWriter records the pending invitation locally so it counts toward the
// seat ceiling until the provider reports the membership as created.
type MemberWriter interface {
	Upsert(ctx context.Context, m *identity.CompanyMember) (*identity.CompanyMember, error)
}

// Service sends organization invitations through the identity provider. The
// local seat check runs before any network call; a full company never causes
// provider traffic.
type Service struct {
	guard     Guard
	seats     SeatChecker
	companies CompanySource
	members   MemberWriter
	baseURL   string
	apiKey    string
	client    *http.Client
}

func NewService(guard Guard, seats SeatChecker, companies CompanySource, members MemberWriter, baseURL, apiKey string) *Service {
	return &Service{
		guard:     guard,
		seats:     seats,
		companies: companies,
		members:   members,
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Invite asks the provider to invite email into the company's organization
// with the given role. Admin only.
func (s *Service) Invite(ctx context.Context, actorID, companyID, email string, role identity.Role) (*identity.CompanyMember, error) {
	if _, err := s.guard.RequireRole(ctx, companyID, actorID, identity.RoleAdmin); err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", apperrors.ErrInvalidInput)
	}
	if role != identity.RoleAdmin && role != identity.RoleRecruiter && role != identity.RoleMember {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrInvalidInput, role)
	}

	ok, err := s.seats.SeatAvailable(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: seat ceiling reached", apperrors.ErrLimitExceeded)
	}

	company, err := s.companies.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, fmt.Errorf("%w: company %s", apperrors.ErrNotFound, companyID)
	}

	if err := s.createRemoteInvitation(ctx, company.ExternalOrgID, email, role); err != nil {
		return nil, err
	}

	member, err := s.members.Upsert(ctx, &identity.CompanyMember{
		CompanyID:    companyID,
		InvitedEmail: email,
		Role:         role,
		Status:       identity.MemberInvited,
	})
	if err != nil {
		return nil, err
	}
	logger.Infof("invited %s to company %s as %s", email, companyID, role)
	return member, nil
}

type invitationRequest struct {
	EmailAddress string `json:"email_address"`
	Role         string `json:"role"`
}

func (s *Service) createRemoteInvitation(ctx context.Context, externalOrgID, email string, role identity.Role) error {
	body, err := json.Marshal(invitationRequest{EmailAddress: email, Role: "org:" + string(role)})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/organizations/%s/invitations", s.baseURL, externalOrgID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: create invitation: %v", apperrors.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: create invitation: status %d: %s", apperrors.ErrUpstreamFailure, resp.StatusCode, snippet)
	}
	return nil
}
