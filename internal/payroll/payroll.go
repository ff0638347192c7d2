// Package payroll aggregates monthly staff payouts, outsource costs and
// revenue from frozen booking snapshots.
package payroll

import (
	"sort"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/loyalty"
)

type StaffRow struct {
	StaffID         string        `json:"staffId"`
	Name            string        `json:"name"`
	Role            string        `json:"role"`
	BaseSalary      domain.Amount `json:"baseSalary"`
	CommissionCount int           `json:"commissionCount"`
	SalesComm       domain.Amount `json:"salesComm"`
	ServiceHours    domain.Amount `json:"serviceHours"`
	ServiceComm     domain.Amount `json:"serviceComm"`
	TotalPayout     domain.Amount `json:"totalPayout"`

	serviceMinutes int
}

type Outsource struct {
	Hours domain.Amount `json:"hours"`
	Cost  domain.Amount `json:"cost"`

	minutes int
}

// Unattributed collects commission and service cost on bookings whose
// salesman or therapist has no payroll row, typically because the staff
// member has since been deactivated. It is reported, never paid out.
type Unattributed struct {
	SalesComm   domain.Amount `json:"salesComm"`
	ServiceComm domain.Amount `json:"serviceComm"`
	Bookings    int           `json:"bookings"`
	StaffIDs    []string      `json:"staffIds"`
}

type Report struct {
	Month        string        `json:"month"`
	Staff        []StaffRow    `json:"staff"`
	Outsource    Outsource     `json:"outsource"`
	TotalRevenue domain.Amount `json:"totalRevenue"`
	TotalPayout  domain.Amount `json:"totalPayout"`
	Unattributed Unattributed  `json:"unattributed"`
}

// Row returns the payroll row for staffID.
func (r Report) Row(staffID string) (StaffRow, bool) {
	for _, row := range r.Staff {
		if row.StaffID == staffID {
			return row, true
		}
	}
	return StaffRow{}, false
}

// Monthly builds one row per active staff member, seeded with their base
// salary, then walks the month's non-cancelled bookings once. Salesman and
// therapist matches are independent, so one person can earn both on the same
// booking. OUTSOURCE service cost goes to its own bucket.
func Monthly(bookings []domain.Booking, staff []domain.Staff, month string, today string) Report {
	rows := make([]StaffRow, 0, len(staff))
	index := make(map[string]int, len(staff))
	for _, s := range staff {
		if !s.Active || s.ID == "" {
			continue
		}
		if _, dup := index[s.ID]; dup {
			continue
		}
		role := s.Role
		if role == "" {
			role = domain.RoleSales
		}
		index[s.ID] = len(rows)
		rows = append(rows, StaffRow{
			StaffID:     s.ID,
			Name:        s.DisplayName(),
			Role:        role,
			BaseSalary:  s.BaseSalary,
			TotalPayout: s.BaseSalary,
		})
	}

	report := Report{Month: month}
	missing := map[string]bool{}

	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		if domain.MonthKey(domain.NormalizeDate(b.Date, today)) != month {
			continue
		}

		report.TotalRevenue = report.TotalRevenue.Add(b.PriceSnapshot)
		unattributed := false

		if b.SalesmanID != "" {
			if i, ok := index[b.SalesmanID]; ok {
				rows[i].CommissionCount++
				rows[i].SalesComm = rows[i].SalesComm.Add(b.CommissionAmount)
				rows[i].TotalPayout = rows[i].TotalPayout.Add(b.CommissionAmount)
			} else {
				report.Unattributed.SalesComm = report.Unattributed.SalesComm.Add(b.CommissionAmount)
				missing[b.SalesmanID] = true
				unattributed = true
			}
		}

		switch {
		case b.TherapistID == domain.OutsourceTherapistID:
			report.Outsource.Cost = report.Outsource.Cost.Add(b.TherapistCostSnapshot)
			report.Outsource.minutes += loyalty.BookingMinutes(b)
		case b.TherapistID != "":
			if i, ok := index[b.TherapistID]; ok {
				rows[i].ServiceComm = rows[i].ServiceComm.Add(b.TherapistCostSnapshot)
				rows[i].TotalPayout = rows[i].TotalPayout.Add(b.TherapistCostSnapshot)
				rows[i].serviceMinutes += loyalty.BookingMinutes(b)
			} else {
				report.Unattributed.ServiceComm = report.Unattributed.ServiceComm.Add(b.TherapistCostSnapshot)
				missing[b.TherapistID] = true
				unattributed = true
			}
		}

		if unattributed {
			report.Unattributed.Bookings++
		}
	}

	for i := range rows {
		rows[i].ServiceHours = minutesToHours(rows[i].serviceMinutes)
		report.TotalPayout = report.TotalPayout.Add(rows[i].TotalPayout)
	}
	report.Outsource.Hours = minutesToHours(report.Outsource.minutes)
	report.Staff = rows

	report.Unattributed.StaffIDs = make([]string, 0, len(missing))
	for id := range missing {
		report.Unattributed.StaffIDs = append(report.Unattributed.StaffIDs, id)
	}
	sort.Strings(report.Unattributed.StaffIDs)

	return report
}

func minutesToHours(minutes int) domain.Amount {
	return domain.AmountFromInt(int64(minutes)).DivInt(60).Round(2)
}
