package ppe

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

type stockKey struct {
	projectID int64
	itemID    int64
}

// MemoryLedger keeps the whole ledger behind one mutex, which gives Issue the
// same read-check-write isolation as the row lock used by PGLedger.
type MemoryLedger struct {
	mu         sync.Mutex
	projects   []int64
	items      map[string]Item
	nextItemID int64
	stocks     map[stockKey]int
	issuances  []Issuance
	nextIssue  int64
}

func NewMemoryLedger(projectIDs ...int64) *MemoryLedger {
	return &MemoryLedger{
		projects: append([]int64(nil), projectIDs...),
		items:    make(map[string]Item),
		stocks:   make(map[stockKey]int),
	}
}

// Restock adds quantity to a project's stock of the named item, creating the item when needed.
func (l *MemoryLedger) Restock(projectID int64, itemName string, quantity int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	item := l.itemLocked(strings.TrimSpace(itemName))
	l.stocks[stockKey{projectID: projectID, itemID: item.ID}] += quantity
}

// Quantity returns the current stock, zero when no row exists.
func (l *MemoryLedger) Quantity(projectID int64, itemName string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	item, ok := l.items[strings.ToLower(strings.TrimSpace(itemName))]
	if !ok {
		return 0
	}
	return l.stocks[stockKey{projectID: projectID, itemID: item.ID}]
}

// Issuances returns a copy of every recorded issuance.
func (l *MemoryLedger) Issuances() []Issuance {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Issuance(nil), l.issuances...)
}

func (l *MemoryLedger) Issue(ctx context.Context, req IssueRequest) (Issuance, error) {
	if err := ctx.Err(); err != nil {
		return Issuance{}, err
	}
	req, err := validate(req)
	if err != nil {
		return Issuance{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// An unknown item has no stock anywhere. Nothing is created on failure,
	// matching the rolled-back transaction in PGLedger.
	item, ok := l.items[strings.ToLower(req.ItemName)]
	if !ok {
		return Issuance{}, ErrNotEnoughStock
	}
	key := stockKey{projectID: req.ProjectID, itemID: item.ID}
	current := l.stocks[key]
	if current < req.Quantity {
		return Issuance{}, ErrNotEnoughStock
	}
	l.stocks[key] = current - req.Quantity

	l.nextIssue++
	iss := Issuance{
		ID:         l.nextIssue,
		WorkerID:   req.WorkerID,
		ProjectID:  req.ProjectID,
		ItemID:     item.ID,
		ItemName:   item.Name,
		Quantity:   req.Quantity,
		IssueDate:  req.IssueDate,
		IssuedBy:   req.IssuedBy,
		StockAfter: current - req.Quantity,
		CreatedAt:  time.Now().UTC(),
	}
	l.issuances = append(l.issuances, iss)
	return iss, nil
}

func (l *MemoryLedger) Stock(ctx context.Context, projectID int64) ([]StockLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []StockLine
	for _, item := range l.items {
		qty, ok := l.stocks[stockKey{projectID: projectID, itemID: item.ID}]
		if !ok {
			continue
		}
		out = append(out, StockLine{ProjectID: projectID, ItemID: item.ID, ItemName: item.Name, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].ItemName) < strings.ToLower(out[j].ItemName) })
	return out, nil
}

// itemLocked finds an item case-insensitively or creates it, seeding zero
// stock for every known project. Caller holds l.mu.
func (l *MemoryLedger) itemLocked(name string) Item {
	key := strings.ToLower(name)
	if item, ok := l.items[key]; ok {
		return item
	}
	l.nextItemID++
	item := Item{ID: l.nextItemID, Name: name}
	l.items[key] = item
	for _, projectID := range l.projects {
		l.stocks[stockKey{projectID: projectID, itemID: item.ID}] = 0
	}
	return item
}

var _ Ledger = (*MemoryLedger)(nil)
