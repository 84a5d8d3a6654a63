package authz

import (
	"context"
	"fmt"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/internal/identity"
)

// MemberSource is the slice of the membership repository the guard needs.
type MemberSource interface {
	Get(ctx context.Context, companyID, userID string) (*identity.CompanyMember, error)
}

// Guard answers "may this user act on this company". Checks are performed
// fresh on every call; nothing is cached across requests.
type Guard struct {
	members MemberSource
}

func NewGuard(members MemberSource) *Guard {
	return &Guard{members: members}
}

// RequireActiveMembership returns the caller's membership row or ErrForbidden
// when there is no row or its status is not active.
func (g *Guard) RequireActiveMembership(ctx context.Context, companyID, userID string) (*identity.CompanyMember, error) {
	m, err := g.members.Get(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.Status != identity.MemberActive {
		return nil, fmt.Errorf("%w: not an active member of company %s", apperrors.ErrForbidden, companyID)
	}
	return m, nil
}

// RequireRole additionally fails with ErrForbidden when the active member's
// role is not in the allowed set.
func (g *Guard) RequireRole(ctx context.Context, companyID, userID string, roles ...identity.Role) (*identity.CompanyMember, error) {
	m, err := g.RequireActiveMembership(ctx, companyID, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range roles {
		if m.Role == r {
			return m, nil
		}
	}
	return nil, fmt.Errorf("%w: role %q is not permitted", apperrors.ErrForbidden, m.Role)
}
