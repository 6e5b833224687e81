package payroll

import (
	"bytes"
	"context"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

// RegisterPDF renders an approved batch as a bank payment register.
func (s *Service) RegisterPDF(ctx context.Context, id string) ([]byte, error) {
	batch, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(100, 10, fmt.Sprintf("Payroll Register - %s %d", batch.Month, batch.Year))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(100, 8, fmt.Sprintf("Status: %s    Approved by: %s", batch.Status, batch.ApprovedBy))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	headers := []struct {
		label string
		width float64
	}{
		{"Service No", 35},
		{"Name", 60},
		{"Rank", 30},
		{"Bank", 45},
		{"Account", 40},
		{"Net Pay", 35},
	}
	for _, h := range headers {
		pdf.CellFormat(h.width, 8, h.label, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range batch.Personnel {
		pdf.CellFormat(35, 7, item.ServiceNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(60, 7, fmt.Sprintf("%s %s", item.FirstName, item.LastName), "1", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, item.Rank, "1", 0, "L", false, 0, "")
		pdf.CellFormat(45, 7, item.BankName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, item.AccountNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(35, 7, fmt.Sprintf("%.2f", item.NetPay), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(210, 8, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, fmt.Sprintf("%.2f", batch.TotalAmount), "1", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
