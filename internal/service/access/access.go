package access

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"studioboard/internal/repository"
	"studioboard/pkg/rbac"
)

var ErrNotMember = errors.New("not a project member")

// Checker resolves a user's project role and checks it against the
// static role/permission map.
type Checker struct {
	members *repository.MemberRepository
}

func NewChecker(members *repository.MemberRepository) *Checker {
	return &Checker{members: members}
}

// RequireMember verifies the user is on the project roster.
func (c *Checker) RequireMember(ctx context.Context, projectID, userID int) error {
	_, err := c.members.GetRole(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return err
	}
	return nil
}

// Require verifies the user is on the roster and that their role grants
// the permission.
func (c *Checker) Require(ctx context.Context, projectID, userID int, permission string) error {
	role, err := c.members.GetRole(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotMember
		}
		return err
	}
	return rbac.CheckPermission(role, permission)
}

// IsDenied reports whether err is an authorization failure (as opposed to an
// infrastructure error).
func IsDenied(err error) bool {
	var permErr *rbac.PermissionDeniedError
	return errors.Is(err, ErrNotMember) || errors.As(err, &permErr)
}
