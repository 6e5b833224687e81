package payroll

import (
	"context"

	"milpay/internal/domain/roster"
)

// StoreAPI is the payroll batch repository consumed by the workflow.
type StoreAPI interface {
	// FindByPeriod returns ErrNotFound when no batch exists for the period.
	FindByPeriod(ctx context.Context, month string, year int) (*Batch, error)
	// Insert persists a batch and returns it with its assigned id. A
	// concurrent insert for the same (month, year) surfaces as
	// ErrDuplicatePeriod via the unique index, not the caller's pre-check.
	Insert(ctx context.Context, batch Batch) (*Batch, error)
	List(ctx context.Context, filter HistoryFilter, limit int) ([]Batch, error)
	GetByID(ctx context.Context, id string) (*Batch, error)
	Delete(ctx context.Context, id string) error
}

// RosterAPI is the slice of the personnel repository the workflow needs.
type RosterAPI interface {
	ListActive(ctx context.Context) ([]roster.Soldier, error)
}
