package records

import (
	"context"
	"errors"
)

var ErrUnknownKind = errors.New("unknown record kind")

type Repo interface {
	Exists(ctx context.Context, key DuplicateKey) (bool, error)
	Create(ctx context.Context, r Record) (Record, error)
}
