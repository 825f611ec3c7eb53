package access

import (
	"context"
	"errors"
	"strings"
)

// Checker is the authorization collaborator consulted for every imported row.
type Checker interface {
	CanAccess(ctx context.Context, user User, projectID int64) (bool, error)
	HasGlobalScope(user User) bool
}

type Service struct {
	Repo MembershipRepo
}

func NewService(repo MembershipRepo) *Service {
	return &Service{Repo: repo}
}

func (s *Service) HasGlobalScope(user User) bool {
	return user.GlobalScope()
}

// CanAccess reports whether user may act on records of the given project.
func (s *Service) CanAccess(ctx context.Context, user User, projectID int64) (bool, error) {
	if user.GlobalScope() {
		return true, nil
	}
	if strings.TrimSpace(user.ID) == "" {
		return false, nil
	}
	if s == nil || s.Repo == nil {
		return false, errors.New("access service not configured")
	}
	return s.Repo.IsMember(ctx, projectID, user.ID)
}

var _ Checker = (*Service)(nil)
