package roster

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	cryptoutil "milpay/internal/platform/crypto"
)

const soldierColumns = `
    id,
    first_name, last_name, rank, service_number,
    COALESCE(unit, ''), COALESCE(corps, ''),
    COALESCE(bank_name, ''), COALESCE(account_number, ''),
    COALESCE(passport, ''),
    salary, deductions,
    status, COALESCE(created_by, ''), created_at, updated_at`

// Store is the Postgres roster repository. When Crypto is configured,
// bank account numbers are sealed before they hit the database and
// opened again on read.
type Store struct {
	DB     *pgxpool.Pool
	Crypto *cryptoutil.Service
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) Create(ctx context.Context, soldier Soldier) (*Soldier, error) {
	account, err := s.Crypto.Seal(soldier.AccountNumber)
	if err != nil {
		return nil, err
	}
	err = s.DB.QueryRow(ctx, `
    INSERT INTO soldiers (first_name, last_name, rank, service_number, unit, corps,
                          bank_name, account_number, passport, salary, deductions,
                          status, created_by)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    RETURNING id, created_at, updated_at
  `, soldier.FirstName, soldier.LastName, soldier.Rank, soldier.ServiceNumber,
		soldier.Unit, soldier.Corps, soldier.BankName, account,
		soldier.Passport, soldier.Salary, soldier.Deductions, soldier.Status,
		soldier.CreatedBy,
	).Scan(&soldier.ID, &soldier.CreatedAt, &soldier.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateServiceNumber
		}
		return nil, err
	}
	soldier.deriveTotals()
	return &soldier, nil
}

func (s *Store) List(ctx context.Context) ([]Soldier, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+soldierColumns+`
    FROM soldiers
    ORDER BY last_name, first_name
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanSoldiers(rows)
}

func (s *Store) ListActive(ctx context.Context) ([]Soldier, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT`+soldierColumns+`
    FROM soldiers
    WHERE status = $1
    ORDER BY last_name, first_name
  `, StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return s.scanSoldiers(rows)
}

func (s *Store) Get(ctx context.Context, id string) (*Soldier, error) {
	row := s.DB.QueryRow(ctx, `
    SELECT`+soldierColumns+`
    FROM soldiers
    WHERE id = $1
  `, id)
	soldier, err := s.scanSoldier(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return soldier, nil
}

// Update replaces the stored record with the supplied one. Callers merge
// partial payloads into the existing record before calling.
func (s *Store) Update(ctx context.Context, id string, soldier Soldier) (*Soldier, error) {
	account, err := s.Crypto.Seal(soldier.AccountNumber)
	if err != nil {
		return nil, err
	}
	row := s.DB.QueryRow(ctx, `
    UPDATE soldiers
    SET first_name = $2, last_name = $3, rank = $4, service_number = $5,
        unit = $6, corps = $7, bank_name = $8, account_number = $9,
        passport = $10, salary = $11, deductions = $12, status = $13,
        updated_at = now()
    WHERE id = $1
    RETURNING`+soldierColumns+`
  `, id, soldier.FirstName, soldier.LastName, soldier.Rank, soldier.ServiceNumber,
		soldier.Unit, soldier.Corps, soldier.BankName, account,
		soldier.Passport, soldier.Salary, soldier.Deductions, soldier.Status)
	updated, err := s.scanSoldier(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateServiceNumber
		}
		return nil, err
	}
	return updated, nil
}

func (s *Store) ToggleStatus(ctx context.Context, id string) (*Soldier, error) {
	row := s.DB.QueryRow(ctx, `
    UPDATE soldiers
    SET status = CASE WHEN status = $2 THEN $3 ELSE $2 END,
        updated_at = now()
    WHERE id = $1
    RETURNING`+soldierColumns+`
  `, id, StatusActive, StatusInactive)
	soldier, err := s.scanSoldier(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return soldier, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM soldiers WHERE id = $1", id)
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

func (s *Store) scanSoldier(row rowScanner) (*Soldier, error) {
	var soldier Soldier
	if err := row.Scan(
		&soldier.ID,
		&soldier.FirstName, &soldier.LastName, &soldier.Rank, &soldier.ServiceNumber,
		&soldier.Unit, &soldier.Corps,
		&soldier.BankName, &soldier.AccountNumber,
		&soldier.Passport,
		&soldier.Salary, &soldier.Deductions,
		&soldier.Status, &soldier.CreatedBy, &soldier.CreatedAt, &soldier.UpdatedAt,
	); err != nil {
		return nil, err
	}
	account, err := s.Crypto.Open(soldier.AccountNumber)
	if err != nil {
		return nil, err
	}
	soldier.AccountNumber = account
	soldier.deriveTotals()
	return &soldier, nil
}

func (s *Store) scanSoldiers(rows pgx.Rows) ([]Soldier, error) {
	var soldiers []Soldier
	for rows.Next() {
		soldier, err := s.scanSoldier(rows)
		if err != nil {
			return nil, err
		}
		soldiers = append(soldiers, *soldier)
	}
	return soldiers, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
