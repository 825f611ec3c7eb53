package access

import "context"

// MembershipRepo answers project membership questions from project_users.
type MembershipRepo interface {
	IsMember(ctx context.Context, projectID int64, userID string) (bool, error)
}
