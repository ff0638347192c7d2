// Package checkout computes the financial snapshot frozen onto each booking
// created from a point-of-sale cart.
package checkout

import (
	"fmt"
	"strings"
	"time"

	"yarey/backend/internal/domain"
)

const (
	TimeNow      = "Now"
	MethodWalkIn = "Walk-In"
	MethodHotel  = "Hotel Guest"
)

// Line is one guest in the cart with its treatment resolved. Voucher is set
// when the guest redeems a prepaid voucher.
type Line struct {
	Input     domain.CheckoutLine
	Treatment domain.Treatment
	Voucher   *domain.Voucher
}

type Attribution struct {
	Revenue          domain.Amount `json:"revenue"`
	CommissionRate   domain.Rate   `json:"commissionRate"`
	CommissionAmount domain.Amount `json:"commissionAmount"`
	TherapistCost    domain.Amount `json:"therapistCost"`
}

// AttributeLine prices one cart line.
//
// A redeemed voucher records the voucher's price paid as revenue; spend
// totals drop it again through the redemption predicate. Otherwise revenue
// is the list price less any manual discount, floored at zero. Commission
// is revenue times the salesman's rate. Therapist cost is the treatment
// length in hours times the outsource rate for OUTSOURCE, or the therapist's
// hourly rate.
func AttributeLine(line Line, salesman *domain.Staff, therapist *domain.Staff, outsourceRate domain.Amount) Attribution {
	var a Attribution

	if line.Voucher != nil {
		a.Revenue = line.Voucher.PricePaid.NonNegative()
	} else {
		a.Revenue = line.Treatment.PriceTHB.Sub(line.Input.ManualDiscount).NonNegative()
	}

	if salesman != nil {
		a.CommissionRate = salesman.CommissionRate
		a.CommissionAmount = a.Revenue.Mul(salesman.CommissionRate)
	}

	therapistID := strings.TrimSpace(line.Input.TherapistID)
	if therapistID != "" {
		minutes := domain.AmountFromInt(int64(line.Treatment.DurationMin))
		switch {
		case therapistID == domain.OutsourceTherapistID:
			a.TherapistCost = minutes.Mul(outsourceRate).DivInt(60)
		case therapist != nil:
			a.TherapistCost = minutes.Mul(therapist.HourlyRate).DivInt(60)
		}
	}

	return a
}

type BookingParams struct {
	Line          Line
	Attribution   Attribution
	Date          string
	Today         string
	Now           time.Time
	GroupID       string
	SalesmanID    string
	PaymentMethod string
}

// BuildBooking assembles the booking record for one cart line. Guests
// checked in "Now" for today arrive immediately; everything else is a
// confirmed reservation.
func BuildBooking(p BookingParams) domain.Booking {
	in := p.Line.Input

	status := domain.BookingStatusConfirmed
	bookingTime := strings.TrimSpace(in.Time)
	if bookingTime == "" {
		bookingTime = TimeNow
	}
	if bookingTime == TimeNow {
		if p.Date == p.Today {
			status = domain.BookingStatusArrived
		}
		bookingTime = p.Now.Format("15:04")
	}

	method := strings.TrimSpace(in.Source)
	if method == "" {
		method = MethodWalkIn
		if in.IsHotelGuest {
			method = MethodHotel
		}
	}

	handle := strings.TrimSpace(in.Phone)
	if in.IsHotelGuest {
		room := strings.TrimSpace(in.Room)
		if room == "" {
			room = "?"
		}
		handle = "Room " + room
	} else if handle == "" {
		handle = p.GroupID
	}

	b := domain.Booking{
		Guests:    1,
		Time:      bookingTime,
		Date:      p.Date,
		Status:    status,
		Treatment: p.Line.Treatment.Title,
		Contact: domain.Contact{
			Name:        strings.TrimSpace(in.Name),
			Method:      method,
			Handle:      handle,
			Email:       domain.NormalizeEmail(in.Email),
			Nationality: strings.TrimSpace(in.Nationality),
			Source:      strings.TrimSpace(in.Source),
		},
		Notes:                 Notes(p.Line),
		IsWalkIn:              true,
		GroupID:               p.GroupID,
		PriceSnapshot:         p.Attribution.Revenue,
		SalesmanID:            strings.TrimSpace(p.SalesmanID),
		CommissionSnapshot:    p.Attribution.CommissionRate,
		CommissionAmount:      p.Attribution.CommissionAmount,
		TherapistID:           strings.TrimSpace(in.TherapistID),
		TherapistCostSnapshot: p.Attribution.TherapistCost,
		PaymentMethod:         p.PaymentMethod,
		Items: []domain.BookingItem{{
			Title:       p.Line.Treatment.Title,
			DurationMin: domain.AmountFromInt(int64(p.Line.Treatment.DurationMin)),
		}},
	}
	return b
}

// Notes writes the informational markers staff read on the booking card.
// PREPAID [CODE] is also what marks the booking as a voucher redemption.
func Notes(line Line) string {
	parts := []string{"POS Booking."}
	if line.Input.ManualDiscount.IsPositive() {
		parts = append(parts, fmt.Sprintf("DISCOUNTED [-%s]", line.Input.ManualDiscount))
	}
	if line.Voucher != nil {
		parts = append(parts, fmt.Sprintf("PREPAID [%s]", line.Voucher.Code))
	}
	if line.Input.SendConfirmation && strings.TrimSpace(line.Input.Email) != "" {
		parts = append(parts, "Confirmation sent to "+strings.TrimSpace(line.Input.Email)+".")
	}
	nationality := strings.TrimSpace(line.Input.Nationality)
	if nationality == "" {
		nationality = "Unknown"
	}
	parts = append(parts, "Nat: "+nationality)
	return strings.Join(parts, " ")
}
