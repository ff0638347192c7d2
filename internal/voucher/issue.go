package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"yarey/backend/internal/domain"
)

const (
	CodePrefix    = "PROMO-"
	codeLength    = 6
	DefaultPeriod = "3M"
)

type IssueParams struct {
	Treatment     domain.Treatment
	ClientID      string
	RecipientName string
	PricePaid     domain.Amount
	Validity      string
	CustomExpiry  string
	Type          string
	Credits       int
	Now           time.Time
	// Code overrides the generated code; tests use it.
	Code string
}

// NewCode returns a PROMO- code made of six upper-case hex characters
// taken from a random uuid.
func NewCode() string {
	hex := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return CodePrefix + hex[:codeLength]
}

// ExpiryFor computes the expiry timestamp for a validity period. Unknown or
// empty periods, and CUSTOM without a date, fall back to three months.
func ExpiryFor(period string, custom string, now time.Time) (string, error) {
	now = now.UTC()
	switch strings.ToUpper(strings.TrimSpace(period)) {
	case "1M":
		return formatTimestamp(now.AddDate(0, 1, 0)), nil
	case "6M":
		return formatTimestamp(now.AddDate(0, 6, 0)), nil
	case "1Y":
		return formatTimestamp(now.AddDate(1, 0, 0)), nil
	case "CUSTOM":
		if strings.TrimSpace(custom) != "" {
			t, ok := ParseTimestamp(custom)
			if !ok {
				return "", fmt.Errorf("%w: unreadable expiry %q", ErrInvalidIssue, custom)
			}
			return formatTimestamp(t.UTC()), nil
		}
	}
	return formatTimestamp(now.AddDate(0, 3, 0)), nil
}

// Issue builds a new ISSUED voucher for a registered client. The title is
// prefixed with the treatment duration so hour estimates can parse it back.
func Issue(p IssueParams) (domain.Voucher, error) {
	clientID := strings.TrimSpace(p.ClientID)
	if clientID == "" {
		return domain.Voucher{}, fmt.Errorf("%w: a registered member is required", ErrInvalidIssue)
	}
	if strings.TrimSpace(p.Treatment.ID) == "" {
		return domain.Voucher{}, fmt.Errorf("%w: treatment is required", ErrInvalidIssue)
	}
	if p.PricePaid.IsNegative() {
		return domain.Voucher{}, fmt.Errorf("%w: price paid must not be negative", ErrInvalidIssue)
	}

	expires, err := ExpiryFor(p.Validity, p.CustomExpiry, p.Now)
	if err != nil {
		return domain.Voucher{}, err
	}

	code := NormalizeCode(p.Code)
	if code == "" {
		code = NewCode()
	}

	v := domain.Voucher{
		Code:           code,
		TreatmentID:    p.Treatment.ID,
		TreatmentTitle: fmt.Sprintf("%dm | %s", p.Treatment.DurationMin, p.Treatment.Title),
		PricePaid:      p.PricePaid,
		OriginalPrice:  p.Treatment.PriceTHB,
		Status:         domain.VoucherStatusIssued,
		Type:           domain.VoucherTypeSingle,
		RecipientName:  strings.TrimSpace(p.RecipientName),
		ClientID:       clientID,
		IssuedAt:       formatTimestamp(p.Now.UTC()),
		ExpiresAt:      expires,
	}

	if p.Type == domain.VoucherTypePackage {
		credits := p.Credits
		if credits < 1 {
			credits = 1
		}
		v.Type = domain.VoucherTypePackage
		v.CreditsTotal = credits
		v.CreditsRemaining = credits
	}

	return v, nil
}

func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02T15:04:05.000Z07:00")
}
