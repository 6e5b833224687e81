package roster

import "testing"

func TestDeriveTotals(t *testing.T) {
	s := Soldier{
		Salary:     map[string]float64{"conafss": 150000, "staffGrant": 20000},
		Deductions: map[string]float64{"incomeTax": 12000, "benevolent": 3000},
	}
	s.deriveTotals()
	if s.TotalEarnings != 170000 {
		t.Fatalf("expected earnings 170000, got %v", s.TotalEarnings)
	}
	if s.TotalDeductions != 15000 {
		t.Fatalf("expected deductions 15000, got %v", s.TotalDeductions)
	}
	if s.NetPay != 155000 {
		t.Fatalf("expected net 155000, got %v", s.NetPay)
	}
}

func TestDeriveTotalsNegativeNet(t *testing.T) {
	s := Soldier{
		Salary:     map[string]float64{"conafss": 1000},
		Deductions: map[string]float64{"quarterRental": 2500},
	}
	s.deriveTotals()
	if s.NetPay != -1500 {
		t.Fatalf("negative net must be preserved, got %v", s.NetPay)
	}
}

func TestDeriveTotalsEmptyMaps(t *testing.T) {
	s := Soldier{TotalEarnings: 99, TotalDeductions: 99, NetPay: 99}
	s.deriveTotals()
	if s.TotalEarnings != 0 || s.TotalDeductions != 0 || s.NetPay != 0 {
		t.Fatalf("stale totals must reset, got %v/%v/%v", s.TotalEarnings, s.TotalDeductions, s.NetPay)
	}
}
