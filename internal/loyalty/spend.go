// Package loyalty derives a client's lifetime spend, service hours and
// membership tier from raw booking and voucher records. Everything here is
// pure; callers load the records and decide what to cache.
package loyalty

import (
	"regexp"

	"yarey/backend/internal/domain"
)

var redemptionNotes = regexp.MustCompile(`(?i)voucher|redeem|gift|prepaid|package|promo|comp`)

// IsRedemptionBooking reports whether the booking consumed money that was
// already received as a voucher sale. It is the only place that decides this;
// the live calculator and the batch sync both call it.
func IsRedemptionBooking(b domain.Booking) bool {
	if b.PaymentMethod == domain.PaymentMethodVoucher {
		return true
	}
	return b.Notes != "" && redemptionNotes.MatchString(b.Notes)
}

// BookingSpend is what a single booking adds to its client's spend: zero for
// cancelled and redemption bookings, the price snapshot otherwise.
func BookingSpend(b domain.Booking) domain.Amount {
	if b.IsCancelled() || IsRedemptionBooking(b) {
		return domain.Amount{}
	}
	return b.PriceSnapshot
}

// VoucherSpend is what a voucher adds to its owner's spend. ISSUED and
// REDEEMED both count; VOID and REFUNDED never do.
func VoucherSpend(v domain.Voucher) domain.Amount {
	if !v.CountsTowardSpend() {
		return domain.Amount{}
	}
	return v.PricePaid
}

// ClientSpend computes the funder-model lifetime spend for one client.
// Bookings match by normalized contact email, vouchers strictly by clientId.
func ClientSpend(bookings []domain.Booking, vouchers []domain.Voucher, email string, clientID string) domain.Amount {
	email = domain.NormalizeEmail(email)
	total := domain.Amount{}

	if email != "" {
		for _, b := range bookings {
			if b.ContactEmail() != email {
				continue
			}
			total = total.Add(BookingSpend(b))
		}
	}

	if clientID != "" {
		for _, v := range vouchers {
			if v.ClientID != clientID {
				continue
			}
			total = total.Add(VoucherSpend(v))
		}
	}

	return total.NonNegative()
}
