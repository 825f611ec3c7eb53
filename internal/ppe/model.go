package ppe

import "time"

type Item struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// StockLine is the remaining quantity of one item in one project.
type StockLine struct {
	ProjectID int64  `json:"projectId"`
	ItemID    int64  `json:"itemId"`
	ItemName  string `json:"itemName"`
	Quantity  int    `json:"quantity"`
}

type IssueRequest struct {
	WorkerID  int64
	ProjectID int64
	ItemName  string
	Quantity  int
	IssueDate time.Time
	IssuedBy  string
}

type Issuance struct {
	ID         int64     `json:"id"`
	WorkerID   int64     `json:"workerId"`
	ProjectID  int64     `json:"projectId"`
	ItemID     int64     `json:"itemId"`
	ItemName   string    `json:"itemName"`
	Quantity   int       `json:"quantity"`
	IssueDate  time.Time `json:"issueDate"`
	IssuedBy   string    `json:"issuedBy"`
	StockAfter int       `json:"stockAfter"`
	CreatedAt  time.Time `json:"createdAt"`
}
