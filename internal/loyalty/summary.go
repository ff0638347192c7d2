package loyalty

import "yarey/backend/internal/domain"

// Summary is the live loyalty view of one member. It is always derived from
// bookings and vouchers, never from the stored client aggregates.
type Summary struct {
	Client domain.Client `json:"client"`
	Spend  domain.Amount `json:"spend"`
	Hours  int           `json:"hours"`
	Tier   TierStatus    `json:"tier"`
}

func Summarize(client domain.Client, bookings []domain.Booking, vouchers []domain.Voucher, table *TierTable) Summary {
	if table == nil {
		table = DefaultTierTable()
	}
	email := client.Email
	if email == "" {
		email = client.ID
	}
	spend := ClientSpend(bookings, vouchers, email, client.ID)
	return Summary{
		Client: client,
		Spend:  spend,
		Hours:  HoursFromMinutes(ServiceMinutes(bookings, vouchers, email, client.ID)),
		Tier:   table.Determine(spend),
	}
}
