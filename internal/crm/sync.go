// Package crm rebuilds client aggregate fields (spend, visits, first and last
// visit) from the full booking and voucher history.
package crm

import (
	"sort"
	"strings"
	"unicode/utf8"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/loyalty"
)

// MinEmailLength rejects noise such as "-" or "na" typed into the email box.
const MinEmailLength = 3

const UnknownName = "Unknown"

type Options struct {
	// Today resolves bookings dated "Today".
	Today string
	// PhoneRegion is the default region for walk-in phone handles.
	PhoneRegion string
}

type Result struct {
	Clients          []domain.Client
	CreditedVouchers int
}

type workingSet struct {
	byID    map[string]*domain.Client
	byEmail map[string]string
	order   []string
}

func (w *workingSet) put(c domain.Client) {
	if _, exists := w.byID[c.ID]; !exists {
		w.order = append(w.order, c.ID)
	}
	client := c
	w.byID[c.ID] = &client
	if email := domain.NormalizeEmail(c.Email); email != "" {
		if _, taken := w.byEmail[email]; !taken {
			w.byEmail[email] = c.ID
		}
	}
}

func (w *workingSet) lookupEmail(email string) *domain.Client {
	if id, ok := w.byEmail[email]; ok {
		return w.byID[id]
	}
	return w.byID[email]
}

// Sync recomputes every client's totalSpend, visitCount, lastVisit and
// joinedDate. Existing profiles keep their id, email, notes, phone and
// joinedDate floor; bookings from unknown emails become walk-in profiles.
// The result depends only on the inputs, so running it again over its own
// output with the same bookings and vouchers yields the same aggregates.
func Sync(bookings []domain.Booking, vouchers []domain.Voucher, clients []domain.Client, opts Options) Result {
	w := &workingSet{
		byID:    make(map[string]*domain.Client, len(clients)),
		byEmail: make(map[string]string, len(clients)),
	}

	for _, c := range clients {
		if strings.TrimSpace(c.ID) == "" {
			continue
		}
		c.TotalSpend = domain.Amount{}
		c.VisitCount = 0
		c.LastVisit = domain.EpochVisit
		if c.Email == "" && strings.Contains(c.ID, "@") {
			c.Email = c.ID
		}
		w.put(c)
	}

	for _, b := range bookings {
		email := b.ContactEmail()
		if len(email) < MinEmailLength {
			continue
		}
		if w.lookupEmail(email) != nil {
			continue
		}
		name := strings.TrimSpace(b.Contact.Name)
		if name == "" {
			name = UnknownName
		}
		w.put(domain.Client{
			ID:         email,
			Email:      email,
			Name:       name,
			Phone:      NormalizePhone(b.Contact.Handle, opts.PhoneRegion),
			JoinedDate: domain.NormalizeDate(b.Date, opts.Today),
			LastVisit:  domain.EpochVisit,
		})
	}

	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		email := b.ContactEmail()
		if len(email) < MinEmailLength {
			continue
		}
		client := w.lookupEmail(email)
		if client == nil {
			continue
		}

		client.TotalSpend = client.TotalSpend.Add(loyalty.BookingSpend(b))
		client.VisitCount++

		if date := domain.NormalizeDate(b.Date, opts.Today); date != "" {
			if date > client.LastVisit {
				client.LastVisit = date
			}
			joined := domain.NormalizeDate(client.JoinedDate, opts.Today)
			if joined == "" || date < joined {
				client.JoinedDate = date
			}
		}

		if name := strings.TrimSpace(b.Contact.Name); utf8.RuneCountInString(name) > utf8.RuneCountInString(client.Name) {
			client.Name = name
		}
	}

	credited := 0
	for _, v := range vouchers {
		if !v.CountsTowardSpend() || v.ClientID == "" {
			continue
		}
		client, ok := w.byID[v.ClientID]
		if !ok {
			continue
		}
		client.TotalSpend = client.TotalSpend.Add(v.PricePaid)
		credited++
	}

	out := make([]domain.Client, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, *w.byID[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return Result{Clients: out, CreditedVouchers: credited}
}
