package loyalty

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"yarey/backend/internal/domain"
)

const DefaultSessionMinutes = 60

var durationLabel = regexp.MustCompile(`(?i)(\d+)\s*(?:min|m\b|m\s|m\|)`)

// Checked in order; the first token found in the title wins.
var durationFallbacks = []struct {
	token   string
	minutes int
}{
	{"90", 90},
	{"120", 120},
	{"30", 30},
	{"45", 45},
	{"180", 180},
}

// ParseDurationMinutes estimates a session length from a voucher title such
// as "90m | Signature Massage". A labelled number wins; otherwise the first
// known duration found in the title is used; otherwise one hour.
func ParseDurationMinutes(title string) int {
	if m := durationLabel.FindStringSubmatch(title); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	for _, fb := range durationFallbacks {
		if strings.Contains(title, fb.token) {
			return fb.minutes
		}
	}
	return DefaultSessionMinutes
}

// BookingMinutes is the session length of one booking: the sum of its item
// durations (duration, then duration_min, then one hour per item), or one
// hour when it has no items.
func BookingMinutes(b domain.Booking) int {
	if len(b.Items) == 0 {
		return DefaultSessionMinutes
	}
	total := 0
	for _, item := range b.Items {
		total += itemMinutes(item)
	}
	return total
}

func itemMinutes(item domain.BookingItem) int {
	if item.Duration.IsPositive() {
		return int(item.Duration.IntPart())
	}
	if item.DurationMin.IsPositive() {
		return int(item.DurationMin.IntPart())
	}
	return DefaultSessionMinutes
}

// ServiceMinutes totals the client's non-cancelled booking sessions plus the
// estimated length of every still-ISSUED voucher they own.
func ServiceMinutes(bookings []domain.Booking, vouchers []domain.Voucher, email string, clientID string) int {
	email = domain.NormalizeEmail(email)
	total := 0

	if email != "" {
		for _, b := range bookings {
			if b.IsCancelled() || b.ContactEmail() != email {
				continue
			}
			total += BookingMinutes(b)
		}
	}

	if clientID != "" {
		for _, v := range vouchers {
			if v.ClientID != clientID || v.Status != domain.VoucherStatusIssued {
				continue
			}
			total += ParseDurationMinutes(v.TreatmentTitle)
		}
	}

	return total
}

// HoursFromMinutes rounds to the nearest whole hour, halves away from zero.
func HoursFromMinutes(minutes int) int {
	return int(math.Round(float64(minutes) / 60))
}
