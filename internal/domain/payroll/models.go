package payroll

import "time"

const (
	// StatusPending exists in the schema and history filters; batches are
	// created directly in StatusApproved and no operation produces it.
	StatusPending  = "pending"
	StatusApproved = "approved"

	DefaultApprover     = "Admin"
	DefaultHistoryLimit = 50

	PolicyTrustClient = "trust-client"
	PolicyRecompute   = "always-recompute"
)

// LineItem is a frozen per-person snapshot embedded in a batch. The
// component maps keep the values as submitted (numeric strings included)
// so the sanitizer sees exactly what the client sent.
type LineItem struct {
	PersonnelID     string         `json:"personnelId"`
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Rank            string         `json:"rank"`
	ServiceNumber   string         `json:"serviceNumber"`
	Unit            string         `json:"unit"`
	Corps           string         `json:"corps"`
	BankName        string         `json:"bankName"`
	AccountNumber   string         `json:"accountNumber"`
	Salary          map[string]any `json:"salary"`
	Deductions      map[string]any `json:"deductions"`
	TotalEarnings   float64        `json:"totalEarnings"`
	TotalDeductions float64        `json:"totalDeductions"`
	NetPay          float64        `json:"netPay"`
	Status          string         `json:"status"`
}

// Batch is a monthly payroll run. (Month, Year) is a uniqueness key
// backed by a DB unique index. Once approved a batch is immutable
// history: it can be read or deleted, never updated.
type Batch struct {
	ID          string     `json:"id"`
	Month       string     `json:"month"`
	Year        int        `json:"year"`
	Personnel   []LineItem `json:"personnel"`
	TotalAmount float64    `json:"totalAmount"`
	Status      string     `json:"status"`
	ApprovedBy  string     `json:"approvedBy"`
	ApprovedAt  *time.Time `json:"approvedAt"`
	CreatedBy   string     `json:"createdBy"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Notes       string     `json:"notes"`
}

type HistoryFilter struct {
	Year   int
	Status string
}

// Preview is the read-only active-personnel projection returned before
// an approval is committed.
type Preview struct {
	Personnel   []LineItem `json:"personnel"`
	TotalAmount float64    `json:"totalAmount"`
	Count       int        `json:"count"`
}
