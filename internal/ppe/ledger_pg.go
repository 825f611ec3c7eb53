package ppe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hse-backend/internal/shared/storage/db"
)

type PGLedger struct {
	DB *sql.DB
}

func (l *PGLedger) Issue(ctx context.Context, req IssueRequest) (Issuance, error) {
	req, err := validate(req)
	if err != nil {
		return Issuance{}, err
	}

	var iss Issuance
	err = db.WithTx(ctx, l.DB, func(tx *sql.Tx) error {
		item, err := findOrCreateItem(ctx, tx, req.ItemName)
		if err != nil {
			return err
		}
		stock, err := lockStock(ctx, tx, req.ProjectID, item.ID)
		if err != nil {
			return err
		}
		if stock < req.Quantity {
			return ErrNotEnoughStock
		}
		if _, err := tx.ExecContext(ctx, `
UPDATE ppe_project_stocks SET stock_quantity = stock_quantity - $1, updated_at = now()
WHERE project_id = $2 AND ppe_item_id = $3`, req.Quantity, req.ProjectID, item.ID); err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}

		iss = Issuance{
			WorkerID:   req.WorkerID,
			ProjectID:  req.ProjectID,
			ItemID:     item.ID,
			ItemName:   item.Name,
			Quantity:   req.Quantity,
			IssueDate:  req.IssueDate,
			IssuedBy:   req.IssuedBy,
			StockAfter: stock - req.Quantity,
		}
		if err := tx.QueryRowContext(ctx, `
INSERT INTO ppe_issuances (worker_id, project_id, ppe_item_id, quantity, issue_date, issued_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at`,
			req.WorkerID, req.ProjectID, item.ID, req.Quantity, req.IssueDate, req.IssuedBy,
		).Scan(&iss.ID, &iss.CreatedAt); err != nil {
			return fmt.Errorf("insert issuance: %w", err)
		}
		return nil
	})
	if err != nil {
		return Issuance{}, err
	}
	return iss, nil
}

func (l *PGLedger) Stock(ctx context.Context, projectID int64) ([]StockLine, error) {
	rows, err := l.DB.QueryContext(ctx, `
SELECT s.project_id, s.ppe_item_id, i.name, s.stock_quantity
FROM ppe_project_stocks s
JOIN ppe_items i ON i.id = s.ppe_item_id
WHERE s.project_id = $1
ORDER BY lower(i.name)`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockLine
	for rows.Next() {
		var line StockLine
		if err := rows.Scan(&line.ProjectID, &line.ItemID, &line.ItemName, &line.Quantity); err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, rows.Err()
}

func findOrCreateItem(ctx context.Context, tx *sql.Tx, name string) (Item, error) {
	var item Item
	err := tx.QueryRowContext(ctx, `
SELECT id, name FROM ppe_items WHERE lower(name) = lower($1) LIMIT 1`, name).Scan(&item.ID, &item.Name)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("find item: %w", err)
	}

	if err := tx.QueryRowContext(ctx, `
INSERT INTO ppe_items (name) VALUES ($1) RETURNING id`, name).Scan(&item.ID); err != nil {
		return Item{}, fmt.Errorf("create item: %w", err)
	}
	item.Name = name
	if _, err := tx.ExecContext(ctx, `
INSERT INTO ppe_project_stocks (project_id, ppe_item_id, stock_quantity)
SELECT id, $1, 0 FROM projects
ON CONFLICT (project_id, ppe_item_id) DO NOTHING`, item.ID); err != nil {
		return Item{}, fmt.Errorf("seed item stock: %w", err)
	}
	return item, nil
}

const lockStockQuery = `
SELECT stock_quantity FROM ppe_project_stocks
WHERE project_id = $1 AND ppe_item_id = $2
FOR UPDATE`

// lockStock reads the stock row under a row lock, creating it at zero first
// when the project has never held the item.
func lockStock(ctx context.Context, tx *sql.Tx, projectID, itemID int64) (int, error) {
	var qty int
	err := tx.QueryRowContext(ctx, lockStockQuery, projectID, itemID).Scan(&qty)
	if err == nil {
		return qty, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("lock stock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO ppe_project_stocks (project_id, ppe_item_id, stock_quantity)
VALUES ($1, $2, 0)
ON CONFLICT (project_id, ppe_item_id) DO NOTHING`, projectID, itemID); err != nil {
		return 0, fmt.Errorf("create stock row: %w", err)
	}
	if err := tx.QueryRowContext(ctx, lockStockQuery, projectID, itemID).Scan(&qty); err != nil {
		return 0, fmt.Errorf("lock stock: %w", err)
	}
	return qty, nil
}

var _ Ledger = (*PGLedger)(nil)
