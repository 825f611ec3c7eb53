package ppe

import (
	"context"
	"fmt"
	"strings"
)

// Ledger issues PPE against per-project stock. Issue is atomic: on any error
// the stock is left untouched.
type Ledger interface {
	Issue(ctx context.Context, req IssueRequest) (Issuance, error)
	Stock(ctx context.Context, projectID int64) ([]StockLine, error)
}

func validate(req IssueRequest) (IssueRequest, error) {
	req.ItemName = strings.TrimSpace(req.ItemName)
	switch {
	case req.ItemName == "":
		return req, fmt.Errorf("%w: item name is required", ErrInvalidInput)
	case req.Quantity < 1:
		return req, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	case req.WorkerID == 0 || req.ProjectID == 0:
		return req, fmt.Errorf("%w: worker and project are required", ErrInvalidInput)
	}
	return req, nil
}
