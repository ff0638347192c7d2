package payroll

import (
	"fmt"
	"strings"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/loyalty"
)

type Summary struct {
	Month         string        `json:"month"`
	TotalRevenue  domain.Amount `json:"totalRevenue"`
	TotalPayout   domain.Amount `json:"totalPayout"`
	OutsourceCost domain.Amount `json:"outsourceCost"`
	TotalExpenses domain.Amount `json:"totalExpenses"`
	NetProfit     domain.Amount `json:"netProfit"`
}

// MonthExpenses filters expenses down to the given YYYY-MM.
func MonthExpenses(expenses []domain.Expense, month string) []domain.Expense {
	out := make([]domain.Expense, 0, len(expenses))
	for _, e := range expenses {
		if strings.TrimSpace(e.Month) == month {
			out = append(out, e)
		}
	}
	return out
}

// Summarize derives net profit: revenue less every payout, the outsource
// bucket and the month's operating expenses. It may be negative.
func Summarize(report Report, expenses []domain.Expense) Summary {
	total := domain.Amount{}
	for _, e := range MonthExpenses(expenses, report.Month) {
		total = total.Add(e.Amount)
	}

	return Summary{
		Month:         report.Month,
		TotalRevenue:  report.TotalRevenue,
		TotalPayout:   report.TotalPayout,
		OutsourceCost: report.Outsource.Cost,
		TotalExpenses: total,
		NetProfit:     report.TotalRevenue.Sub(report.TotalPayout).Sub(report.Outsource.Cost).Sub(total),
	}
}

const (
	PaymentCash       = "Cash"
	PaymentTransfer   = "Transfer"
	PaymentCreditCard = "Credit Card"
	PaymentWeChat     = "WeChat Pay"
	PaymentAliPay     = "AliPay"
)

type GuestLine struct {
	Name          string        `json:"name"`
	Treatment     string        `json:"treatment"`
	Price         domain.Amount `json:"price"`
	PaymentMethod string        `json:"paymentMethod,omitempty"`
}

type DailyClosing struct {
	Date         string        `json:"date"`
	TotalRevenue domain.Amount `json:"totalRevenue"`
	Cash         domain.Amount `json:"cash"`
	Transfer     domain.Amount `json:"transfer"`
	CreditCard   domain.Amount `json:"creditCard"`
	WeChat       domain.Amount `json:"wechat"`
	AliPay       domain.Amount `json:"alipay"`
	Other        domain.Amount `json:"other"`
	Guests       int           `json:"guests"`
	GuestList    []GuestLine   `json:"guestList"`
}

// Daily totals one day's takings by payment method. Cancelled and no-show
// bookings are left out; a booking without a guest count is one guest.
func Daily(bookings []domain.Booking, date string, today string) DailyClosing {
	closing := DailyClosing{Date: date, GuestList: []GuestLine{}}

	for _, b := range bookings {
		if b.Status == domain.BookingStatusCancelled || b.Status == domain.BookingStatusNoShow {
			continue
		}
		if domain.NormalizeDate(b.Date, today) != date {
			continue
		}

		price := b.PriceSnapshot
		closing.TotalRevenue = closing.TotalRevenue.Add(price)
		if b.Guests > 0 {
			closing.Guests += b.Guests
		} else {
			closing.Guests++
		}

		switch b.PaymentMethod {
		case PaymentCash:
			closing.Cash = closing.Cash.Add(price)
		case PaymentTransfer:
			closing.Transfer = closing.Transfer.Add(price)
		case PaymentCreditCard:
			closing.CreditCard = closing.CreditCard.Add(price)
		case PaymentWeChat:
			closing.WeChat = closing.WeChat.Add(price)
		case PaymentAliPay:
			closing.AliPay = closing.AliPay.Add(price)
		default:
			closing.Other = closing.Other.Add(price)
		}

		name := b.Contact.Name
		if name == "" {
			name = "Guest"
		}
		treatment := b.Treatment
		if treatment == "" {
			treatment = "Service"
		}
		closing.GuestList = append(closing.GuestList, GuestLine{
			Name:          name,
			Treatment:     treatment,
			Price:         price,
			PaymentMethod: b.PaymentMethod,
		})
	}

	return closing
}

// Text renders the closing as the plain-text message staff paste into chat.
func (d DailyClosing) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "YAREY WELLNESS - DAILY CLOSE\nDate: %s\n\n", d.Date)
	fmt.Fprintf(&sb, "TOTAL REVENUE: %s\n\n", loyalty.FormatTHB(d.TotalRevenue))
	fmt.Fprintf(&sb, "Cash: %s\n", loyalty.FormatTHB(d.Cash))
	fmt.Fprintf(&sb, "Transfer: %s\n", loyalty.FormatTHB(d.Transfer))
	fmt.Fprintf(&sb, "Credit Card: %s\n", loyalty.FormatTHB(d.CreditCard))
	fmt.Fprintf(&sb, "WeChat: %s\n", loyalty.FormatTHB(d.WeChat))
	fmt.Fprintf(&sb, "AliPay: %s\n", loyalty.FormatTHB(d.AliPay))
	if d.Other.IsPositive() {
		fmt.Fprintf(&sb, "Other: %s\n", loyalty.FormatTHB(d.Other))
	}
	fmt.Fprintf(&sb, "\nGUEST LIST (%d):\n", len(d.GuestList))
	for i, g := range d.GuestList {
		method := ""
		if g.PaymentMethod != "" {
			m := []rune(g.PaymentMethod)
			if len(m) > 4 {
				m = m[:4]
			}
			method = " [" + string(m) + "]"
		}
		fmt.Fprintf(&sb, "%d. %s - %s - %s%s\n", i+1, g.Name, g.Treatment, loyalty.FormatTHB(g.Price), method)
	}
	return sb.String()
}
