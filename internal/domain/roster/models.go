package roster

import "time"

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Soldier struct {
	ID              string             `json:"id"`
	FirstName       string             `json:"firstName"`
	LastName        string             `json:"lastName"`
	Rank            string             `json:"rank"`
	ServiceNumber   string             `json:"serviceNumber"`
	Unit            string             `json:"unit"`
	Corps           string             `json:"corps"`
	BankName        string             `json:"bankName"`
	AccountNumber   string             `json:"accountNumber"`
	Passport        string             `json:"passport,omitempty"`
	Salary          map[string]float64 `json:"salary"`
	Deductions      map[string]float64 `json:"deductions"`
	TotalEarnings   float64            `json:"totalEarnings"`
	TotalDeductions float64            `json:"totalDeductions"`
	NetPay          float64            `json:"netPay"`
	Status          string             `json:"status"`
	CreatedBy       string             `json:"createdBy,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

// deriveTotals fills the derived pay figures from the component maps.
// Net pay may be negative; that is surfaced for review, not corrected.
func (s *Soldier) deriveTotals() {
	s.TotalEarnings = 0
	s.TotalDeductions = 0
	for _, amount := range s.Salary {
		s.TotalEarnings += amount
	}
	for _, amount := range s.Deductions {
		s.TotalDeductions += amount
	}
	s.NetPay = s.TotalEarnings - s.TotalDeductions
}
