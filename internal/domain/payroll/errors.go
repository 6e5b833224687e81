package payroll

import "errors"

var (
	ErrMissingPeriod   = errors.New("month and year are required")
	ErrNoPersonnel     = errors.New("no personnel data provided")
	ErrDuplicatePeriod = errors.New("payroll for this period already exists")
	ErrNotFound        = errors.New("payroll record not found")
)
