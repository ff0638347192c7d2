// Package voucher implements the prepaid voucher lifecycle: issuance, code
// validation at checkout, redemption and admin voids and refunds.
//
// Persisted states are ISSUED, REDEEMED, VOID and REFUNDED. Only ISSUED has
// outgoing transitions. EXPIRED is derived at read time and never stored.
package voucher

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"yarey/backend/internal/domain"
)

var (
	ErrAlreadyApplied    = errors.New("code already applied to another guest in this session")
	ErrExpired           = errors.New("voucher expired")
	ErrNotFound          = errors.New("voucher not found or already redeemed")
	ErrInvalidTransition = errors.New("invalid voucher status transition")
	ErrInvalidIssue      = errors.New("invalid voucher issue request")
)

// NormalizeCode is how every code is compared: trimmed, upper-case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ParseTimestamp accepts the ISO timestamps the store holds as well as bare
// dates.
func ParseTimestamp(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", domain.DateLayout} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsExpired reports whether an ISSUED voucher is past its expiry. Vouchers
// without a readable expiry never expire.
func IsExpired(v domain.Voucher, now time.Time) bool {
	if v.Status != domain.VoucherStatusIssued {
		return false
	}
	exp, ok := ParseTimestamp(v.ExpiresAt)
	if !ok {
		return false
	}
	return now.After(exp)
}

// DisplayStatus is the status to show: EXPIRED for lapsed ISSUED vouchers,
// the stored status otherwise.
func DisplayStatus(v domain.Voucher, now time.Time) string {
	if IsExpired(v, now) {
		return domain.VoucherStatusExpired
	}
	return v.Status
}

// Validate resolves a code entered at checkout. The checks run in a fixed
// order so each failure has its own reason: already used in this cart, no
// ISSUED voucher with that code, then expired.
func Validate(code string, applied []string, vouchers []domain.Voucher, now time.Time) (domain.Voucher, error) {
	clean := NormalizeCode(code)
	if clean == "" {
		return domain.Voucher{}, ErrNotFound
	}

	for _, other := range applied {
		if NormalizeCode(other) == clean {
			return domain.Voucher{}, ErrAlreadyApplied
		}
	}

	for _, v := range vouchers {
		if NormalizeCode(v.Code) != clean || v.Status != domain.VoucherStatusIssued {
			continue
		}
		if IsExpired(v, now) {
			return domain.Voucher{}, fmt.Errorf("%w on %s", ErrExpired, v.ExpiresAt)
		}
		return v, nil
	}

	return domain.Voucher{}, ErrNotFound
}

// Transition moves an ISSUED voucher to a terminal state.
func Transition(v domain.Voucher, to string) (domain.Voucher, error) {
	if v.Status != domain.VoucherStatusIssued {
		return v, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, to)
	}
	switch to {
	case domain.VoucherStatusRedeemed, domain.VoucherStatusVoid, domain.VoucherStatusRefunded:
		v.Status = to
		return v, nil
	default:
		return v, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, to)
	}
}

// Redeem consumes one use. Single vouchers become REDEEMED; package vouchers
// spend a credit and only become REDEEMED when none are left. A package with
// no credit count behaves like a single voucher.
func Redeem(v domain.Voucher) (domain.Voucher, error) {
	if v.Status != domain.VoucherStatusIssued {
		return v, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, v.Status, domain.VoucherStatusRedeemed)
	}
	if v.Type == domain.VoucherTypePackage && v.CreditsRemaining > 0 {
		v.CreditsRemaining--
		if v.CreditsRemaining > 0 {
			return v, nil
		}
	}
	return Transition(v, domain.VoucherStatusRedeemed)
}
