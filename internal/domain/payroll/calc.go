package payroll

import (
	"encoding/json"
	"strconv"

	"milpay/internal/domain/roster"
)

// Totals sums the earning and deduction components of one person.
// Values are coerced to float64; anything non-numeric counts as zero.
// Net pay may be negative and is returned as-is.
func Totals(salary, deductions map[string]any) (earnings, deds, net float64) {
	for _, value := range salary {
		earnings += numeric(value)
	}
	for _, value := range deductions {
		deds += numeric(value)
	}
	net = earnings - deds
	return earnings, deds, net
}

// Snapshot projects a roster record into a payroll line item, copying
// identity and bank fields and computing the pay figures. Later edits to
// the roster record do not touch the snapshot.
func Snapshot(s roster.Soldier) LineItem {
	item := LineItem{
		PersonnelID:   s.ID,
		FirstName:     s.FirstName,
		LastName:      s.LastName,
		Rank:          s.Rank,
		ServiceNumber: s.ServiceNumber,
		Unit:          s.Unit,
		Corps:         s.Corps,
		BankName:      s.BankName,
		AccountNumber: s.AccountNumber,
		Salary:        componentMap(s.Salary),
		Deductions:    componentMap(s.Deductions),
		Status:        s.Status,
	}
	item.TotalEarnings, item.TotalDeductions, item.NetPay = Totals(item.Salary, item.Deductions)
	return item
}

func componentMap(components map[string]float64) map[string]any {
	out := make(map[string]any, len(components))
	for name, amount := range components {
		out[name] = amount
	}
	return out
}

func numeric(value any) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0
		}
		return parsed
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}
