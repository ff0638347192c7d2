// Package export renders payroll documents: a PDF payslip per staff row and
// an xlsx workbook per month.
package export

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/payroll"
)

const BusinessName = "Yarey Spa"

// Core PDF fonts carry no baht sign.
func thb(a domain.Amount) string {
	return "THB " + a.Decimal().StringFixed(2)
}

// Payslip renders one staff row as an A5 payslip.
func Payslip(month string, row payroll.StaffRow) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, BusinessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Payslip "+month, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW, 5, row.Name, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Staff ID %s  |  Role %s", row.StaffID, row.Role), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)

	label := contentW * 0.6
	value := contentW * 0.4
	lines := []struct {
		name  string
		value string
	}{
		{"Base salary", thb(row.BaseSalary)},
		{fmt.Sprintf("Sales commission (%d bookings)", row.CommissionCount), thb(row.SalesComm)},
		{fmt.Sprintf("Service pay (%s h)", row.ServiceHours.Decimal().StringFixed(2)), thb(row.ServiceComm)},
	}
	pdf.SetFont("Helvetica", "", 9)
	for _, l := range lines {
		pdf.CellFormat(label, 6, l.name, "", 0, "L", false, 0, "")
		pdf.CellFormat(value, 6, l.value, "", 1, "R", false, 0, "")
	}

	pdf.Ln(1)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(1)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(label, 7, "Total payout", "", 0, "L", false, 0, "")
	pdf.CellFormat(value, 7, thb(row.TotalPayout), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("payslip pdf: %w", err)
	}
	return buf.Bytes(), nil
}
