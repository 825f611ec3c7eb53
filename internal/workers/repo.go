package workers

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("worker not found")

// Repo looks workers up by their normalized CIN.
type Repo interface {
	FindByCIN(ctx context.Context, cin string) (Worker, error)
}
