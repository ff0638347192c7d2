package loyalty

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"yarey/backend/internal/domain"
)

var ErrInvalidTierTable = errors.New("invalid tier table")

const TopTierMessage = "Transcendence Achieved"

type Tier struct {
	Name  string        `json:"name"`
	Spend domain.Amount `json:"spend"`
	// Hours is kept for display; tier assignment is by spend only.
	Hours int `json:"hours"`
}

type TierStatus struct {
	TierName        string        `json:"tierName"`
	NextTierName    string        `json:"nextTierName,omitempty"`
	ProgressPercent float64       `json:"progressPercent"`
	RemainingToNext domain.Amount `json:"remainingToNext"`
	Message         string        `json:"message"`
}

// TierTable is an ascending, validated list of tiers whose lowest spend
// threshold is zero, so every spend figure maps to some tier.
type TierTable struct {
	tiers []Tier
}

func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Seeker", Spend: domain.AmountFromInt(0), Hours: 0},
		{Name: "Initiate", Spend: domain.AmountFromInt(8000), Hours: 5},
		{Name: "Devotee", Spend: domain.AmountFromInt(25000), Hours: 15},
		{Name: "Alchemist", Spend: domain.AmountFromInt(55000), Hours: 30},
		{Name: "Guardian", Spend: domain.AmountFromInt(88000), Hours: 50},
	}
}

func DefaultTierTable() *TierTable {
	table, err := NewTierTable(DefaultTiers())
	if err != nil {
		panic(err)
	}
	return table
}

func NewTierTable(tiers []Tier) (*TierTable, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("%w: no tiers", ErrInvalidTierTable)
	}

	sorted := make([]Tier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Spend.LessThan(sorted[j].Spend)
	})

	seen := make(map[string]bool, len(sorted))
	for i, tier := range sorted {
		name := strings.TrimSpace(tier.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tier %d has no name", ErrInvalidTierTable, i)
		}
		if seen[strings.ToLower(name)] {
			return nil, fmt.Errorf("%w: duplicate tier %q", ErrInvalidTierTable, name)
		}
		seen[strings.ToLower(name)] = true
		if tier.Hours < 0 {
			return nil, fmt.Errorf("%w: tier %q has negative hours", ErrInvalidTierTable, name)
		}
		sorted[i].Name = name
	}
	if !sorted[0].Spend.IsZero() {
		return nil, fmt.Errorf("%w: lowest tier %q must start at 0, got %s", ErrInvalidTierTable, sorted[0].Name, sorted[0].Spend)
	}

	return &TierTable{tiers: sorted}, nil
}

// Tiers returns a copy of the table in ascending order.
func (t *TierTable) Tiers() []Tier {
	out := make([]Tier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Rank is the index of the named tier, or -1.
func (t *TierTable) Rank(name string) int {
	for i, tier := range t.tiers {
		if tier.Name == name {
			return i
		}
	}
	return -1
}

// Determine scans from the highest tier down and awards the first one whose
// threshold the spend reaches (inclusive).
func (t *TierTable) Determine(spend domain.Amount) TierStatus {
	current := 0
	for i := len(t.tiers) - 1; i >= 0; i-- {
		if !spend.LessThan(t.tiers[i].Spend) {
			current = i
			break
		}
	}

	tier := t.tiers[current]
	if current == len(t.tiers)-1 {
		return TierStatus{
			TierName:        tier.Name,
			ProgressPercent: 100,
			Message:         TopTierMessage,
		}
	}

	next := t.tiers[current+1]
	remaining := next.Spend.Sub(spend).NonNegative()

	return TierStatus{
		TierName:        tier.Name,
		NextTierName:    next.Name,
		ProgressPercent: progressPercent(spend, tier.Spend, next.Spend),
		RemainingToNext: remaining,
		Message:         fmt.Sprintf("Spend %s more to reach %s", FormatTHB(remaining), next.Name),
	}
}

func progressPercent(spend, floor, ceiling domain.Amount) float64 {
	width := ceiling.Sub(floor).Decimal()
	if !width.IsPositive() {
		return 0
	}
	ratio := spend.Sub(floor).Decimal().Div(width)
	if ratio.IsNegative() {
		ratio = decimal.Zero
	}
	if ratio.GreaterThan(decimal.NewFromInt(1)) {
		ratio = decimal.NewFromInt(1)
	}
	pct, _ := ratio.Mul(decimal.NewFromInt(100)).Round(2).Float64()
	return pct
}
