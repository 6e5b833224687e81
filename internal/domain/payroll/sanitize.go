package payroll

import (
	"encoding/json"
	"math"
	"strconv"
)

// maxSafeMagnitude is the largest magnitude stored as an exact integer
// without risking the persistence layer's signed 64-bit range.
const maxSafeMagnitude = 9e18

// Sanitize recursively rewrites values the persistence layer cannot
// safely represent. Per scalar: non-finite numbers become 0; numbers
// beyond maxSafeMagnitude are coerced to float64 (trading integer
// precision for representability); numeric strings become numbers unless
// they would exceed the threshold, in which case they stay text. Maps and
// slices are processed element-wise; everything else passes through.
// Sanitize is total and idempotent.
func Sanitize(value any) any {
	switch v := value.(type) {
	case map[string]any:
		clean := make(map[string]any, len(v))
		for key, entry := range v {
			clean[key] = Sanitize(entry)
		}
		return clean
	case []any:
		clean := make([]any, len(v))
		for i, entry := range v {
			clean[i] = Sanitize(entry)
		}
		return clean
	case float64:
		return sanitizeNumber(v)
	case float32:
		return sanitizeNumber(float64(v))
	case int:
		return sanitizeInt(int64(v), v)
	case int32:
		return sanitizeInt(int64(v), v)
	case int64:
		return sanitizeInt(v, v)
	case uint64:
		if float64(v) > maxSafeMagnitude {
			return float64(v)
		}
		return v
	case json.Number:
		return sanitizeString(v.String())
	case string:
		return sanitizeString(v)
	default:
		return value
	}
}

func sanitizeNumber(f float64) any {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return float64(0)
	}
	// Floats beyond the threshold are already the coerced representation.
	return f
}

func sanitizeInt(i int64, original any) any {
	if math.Abs(float64(i)) > maxSafeMagnitude {
		return float64(i)
	}
	return original
}

func sanitizeString(s string) any {
	parsed, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	// Out-of-range and non-finite values stay textual rather than
	// producing a numeric the store cannot hold.
	if math.IsInf(parsed, 0) || math.IsNaN(parsed) || math.Abs(parsed) > maxSafeMagnitude {
		return s
	}
	return parsed
}

// sanitizeBatch cleans every dynamic part of a batch in place right
// before it is handed to the store.
func sanitizeBatch(b *Batch) {
	for i := range b.Personnel {
		item := &b.Personnel[i]
		item.Salary, _ = Sanitize(item.Salary).(map[string]any)
		item.Deductions, _ = Sanitize(item.Deductions).(map[string]any)
		item.TotalEarnings = finite(item.TotalEarnings)
		item.TotalDeductions = finite(item.TotalDeductions)
		item.NetPay = finite(item.NetPay)
	}
	b.TotalAmount = finite(b.TotalAmount)
}

func finite(f float64) float64 {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0
	}
	return f
}
