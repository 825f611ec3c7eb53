package access

import (
	"context"
	"database/sql"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) IsMember(ctx context.Context, projectID int64, userID string) (bool, error) {
	const query = `
SELECT EXISTS (
  SELECT 1 FROM project_users WHERE project_id = $1 AND user_id = $2
)`
	var ok bool
	if err := r.DB.QueryRowContext(ctx, query, projectID, userID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}
