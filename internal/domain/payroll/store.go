package payroll

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const batchColumns = `
    id, month, year, personnel, total_amount, status,
    COALESCE(approved_by, ''), approved_at,
    COALESCE(created_by, ''), created_at, updated_at,
    COALESCE(notes, '')`

// Store is the Postgres payroll repository. The (month, year) uniqueness
// invariant lives in a unique index; Insert maps its violation to
// ErrDuplicatePeriod so racing approvals resolve to exactly one batch.
type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindByPeriod(ctx context.Context, month string, year int) (*Batch, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+batchColumns+`
    FROM payrolls
    WHERE month = $1 AND year = $2
  `, month, year)
	return scanBatch(row)
}

func (s *Store) Insert(ctx context.Context, batch Batch) (*Batch, error) {
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payrolls (month, year, personnel, total_amount, status,
                          approved_by, approved_at, created_by, notes)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
    RETURNING id, created_at, updated_at
  `, batch.Month, batch.Year, batch.Personnel, batch.TotalAmount, batch.Status,
		batch.ApprovedBy, batch.ApprovedAt, batch.CreatedBy, batch.Notes,
	).Scan(&batch.ID, &batch.CreatedAt, &batch.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicatePeriod
		}
		return nil, err
	}
	return &batch, nil
}

func (s *Store) List(ctx context.Context, filter HistoryFilter, limit int) ([]Batch, error) {
	query := `
    SELECT` + batchColumns + `
    FROM payrolls
    WHERE 1=1`
	args := make([]any, 0, 3)
	if filter.Year != 0 {
		args = append(args, filter.Year)
		query += fmt.Sprintf(" AND year = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		batch, err := scanBatch(rows)
		if err != nil {
			return nil, err
		}
		batches = append(batches, *batch)
	}
	return batches, rows.Err()
}

func (s *Store) GetByID(ctx context.Context, id string) (*Batch, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+batchColumns+`
    FROM payrolls
    WHERE id = $1
  `, id)
	return scanBatch(row)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM payrolls WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBatch(row rowScanner) (*Batch, error) {
	var batch Batch
	err := row.Scan(
		&batch.ID, &batch.Month, &batch.Year, &batch.Personnel,
		&batch.TotalAmount, &batch.Status,
		&batch.ApprovedBy, &batch.ApprovedAt,
		&batch.CreatedBy, &batch.CreatedAt, &batch.UpdatedAt,
		&batch.Notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &batch, nil
}
