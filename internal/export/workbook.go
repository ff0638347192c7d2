package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"yarey/backend/internal/payroll"
)

const (
	payrollSheet = "Payroll"
	summarySheet = "Summary"
)

var payrollHeader = []any{"Staff ID", "Name", "Role", "Base Salary", "Bookings", "Sales Comm", "Service Hours", "Service Comm", "Total Payout"}

// PayrollWorkbook writes the month's staff rows to one sheet and the
// finance summary to another.
func PayrollWorkbook(report payroll.Report, summary payroll.Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", payrollSheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(payrollSheet, "A1", &payrollHeader); err != nil {
		return nil, err
	}

	for i, row := range report.Staff {
		values := []any{
			row.StaffID,
			row.Name,
			row.Role,
			row.BaseSalary.Float64(),
			row.CommissionCount,
			row.SalesComm.Float64(),
			row.ServiceHours.Float64(),
			row.ServiceComm.Float64(),
			row.TotalPayout.Float64(),
		}
		if err := f.SetSheetRow(payrollSheet, fmt.Sprintf("A%d", i+2), &values); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	rows := [][]any{
		{"Month", summary.Month},
		{"Total Revenue", summary.TotalRevenue.Float64()},
		{"Total Payout", summary.TotalPayout.Float64()},
		{"Outsource Hours", report.Outsource.Hours.Float64()},
		{"Outsource Cost", summary.OutsourceCost.Float64()},
		{"Expenses", summary.TotalExpenses.Float64()},
		{"Net Profit", summary.NetProfit.Float64()},
		{"Unattributed Sales Comm", report.Unattributed.SalesComm.Float64()},
		{"Unattributed Service Cost", report.Unattributed.ServiceComm.Float64()},
	}
	for i, r := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("payroll workbook: %w", err)
	}
	return buf.Bytes(), nil
}
