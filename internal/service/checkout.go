package service

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"yarey/backend/internal/checkout"
	"yarey/backend/internal/domain"
	"yarey/backend/internal/events"
	"yarey/backend/internal/store"
	"yarey/backend/internal/voucher"
	"yarey/backend/internal/xid"
)

// Checkout turns a cart into one booking per guest line. Every line is
// resolved and every voucher validated before anything is written; the
// writes themselves run together and are not rolled back on failure.
func (s *Service) Checkout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	today := s.today()
	now := s.clock()

	date := domain.NormalizeDate(req.Date, today)
	if !domain.ValidDate(date) {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: date %q", ErrInvalidRequest, req.Date)
	}
	if len(req.Lines) == 0 {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: cart is empty", ErrInvalidRequest)
	}
	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		return domain.CheckoutResponse{}, fmt.Errorf("%w: payment method is required", ErrInvalidRequest)
	}

	snap, err := s.load(ctx, domain.CollectionTreatments, domain.CollectionVouchers, domain.CollectionStaff)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	treatments := make(map[string]domain.Treatment, len(snap.treatments))
	for _, t := range snap.treatments {
		treatments[t.ID] = t
	}
	staff := make(map[string]*domain.Staff, len(snap.staff))
	for i := range snap.staff {
		staff[snap.staff[i].ID] = &snap.staff[i]
	}

	lines := make([]checkout.Line, 0, len(req.Lines))
	applied := make([]string, 0, len(req.Lines))
	for i, in := range req.Lines {
		line := checkout.Line{Input: in}

		treatmentID := strings.TrimSpace(in.TreatmentID)
		if code := strings.TrimSpace(in.VoucherCode); code != "" {
			v, err := voucher.Validate(code, applied, snap.vouchers, now)
			if err != nil {
				return domain.CheckoutResponse{}, fmt.Errorf("line %d: %w", i+1, err)
			}
			applied = append(applied, v.Code)
			line.Voucher = &v
			if v.TreatmentID != "" {
				treatmentID = v.TreatmentID
			}
		}

		t, ok := treatments[treatmentID]
		if !ok {
			return domain.CheckoutResponse{}, fmt.Errorf("%w: line %d treatment %q not found", ErrInvalidRequest, i+1, treatmentID)
		}
		line.Treatment = t
		lines = append(lines, line)
	}

	rate, err := s.OutsourceRate(ctx)
	if err != nil {
		return domain.CheckoutResponse{}, err
	}

	salesmanID := strings.TrimSpace(req.SalesmanID)
	groupID := xid.Short("grp", 9)
	resp := domain.CheckoutResponse{
		GroupID:          groupID,
		Bookings:         make([]domain.Booking, len(lines)),
		RedeemedVouchers: []domain.Voucher{},
	}

	for i, line := range lines {
		attribution := checkout.AttributeLine(line, staff[salesmanID], staff[strings.TrimSpace(line.Input.TherapistID)], rate)
		resp.Bookings[i] = checkout.BuildBooking(checkout.BookingParams{
			Line:          line,
			Attribution:   attribution,
			Date:          date,
			Today:         today,
			Now:           now,
			GroupID:       groupID,
			SalesmanID:    salesmanID,
			PaymentMethod: paymentMethod,
		})
		resp.Revenue = resp.Revenue.Add(attribution.Revenue)

		if line.Voucher != nil {
			redeemed, err := voucher.Redeem(*line.Voucher)
			if err != nil {
				return domain.CheckoutResponse{}, fmt.Errorf("line %d: %w", i+1, err)
			}
			resp.RedeemedVouchers = append(resp.RedeemedVouchers, redeemed)
		}
	}

	var g errgroup.Group
	g.SetLimit(writeConcurrency)
	for i := range resp.Bookings {
		i := i
		g.Go(func() error {
			id, err := store.CreateRecord(ctx, s.repo, domain.CollectionBookings, resp.Bookings[i])
			if err != nil {
				return fmt.Errorf("create booking for %s: %w", resp.Bookings[i].Contact.Name, err)
			}
			resp.Bookings[i].ID = id
			return nil
		})
	}
	for _, v := range resp.RedeemedVouchers {
		v := v
		g.Go(func() error {
			if err := store.PutRecord(ctx, s.repo, domain.CollectionVouchers, v.ID, v); err != nil {
				return fmt.Errorf("redeem voucher %s: %w", v.Code, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.CheckoutResponse{}, err
	}

	affected := make([]string, 0, len(resp.Bookings)+len(resp.RedeemedVouchers))
	bookingIDs := make([]string, 0, len(resp.Bookings))
	for _, b := range resp.Bookings {
		affected = append(affected, b.ContactEmail())
		bookingIDs = append(bookingIDs, b.ID)
	}
	codes := make([]string, 0, len(resp.RedeemedVouchers))
	for _, v := range resp.RedeemedVouchers {
		affected = append(affected, v.ClientID)
		codes = append(codes, v.Code)
	}
	s.invalidate(ctx, affected...)

	s.publish(ctx, events.CheckoutCompleted, events.CheckoutCompletedEvent{
		GroupID:    groupID,
		Date:       date,
		BookingIDs: bookingIDs,
		Vouchers:   codes,
		Revenue:    resp.Revenue.String(),
		OccurredAt: now.Format(timestampLayout),
	})

	return resp, nil
}
