package workers

import (
	"context"
	"database/sql"
	"errors"
)

// translate() tables folding Latin accented letters, so stored CINs compare
// like cinKey output without requiring the unaccent extension.
const (
	accentedLetters = `'ÀÁÂÃÄÅàáâãäåÇçÈÉÊËèéêëÌÍÎÏìíîïÑñÒÓÔÕÖòóôõöÙÚÛÜùúûüÝýÿ'`
	foldedLetters   = `'AAAAAAaaaaaaCcEEEEeeeeIIIIiiiiNnOOOOOoooooUUUUuuuuYyy'`
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) FindByCIN(ctx context.Context, cin string) (Worker, error) {
	const query = `
SELECT id, cin, first_name, last_name, project_id
FROM workers
WHERE regexp_replace(upper(translate(cin, ` + accentedLetters + `, ` + foldedLetters + `)), '[^A-Z0-9]', '', 'g') = $1
LIMIT 1`
	var w Worker
	var projectID sql.NullInt64
	err := r.DB.QueryRowContext(ctx, query, cinKey(cin)).Scan(
		&w.ID,
		&w.CIN,
		&w.FirstName,
		&w.LastName,
		&projectID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Worker{}, ErrNotFound
		}
		return Worker{}, err
	}
	if projectID.Valid {
		id := projectID.Int64
		w.ProjectID = &id
	}
	return w, nil
}
