package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/events"
	"yarey/backend/internal/store"
	"yarey/backend/internal/voucher"
)

// VoucherView adds the read-time status, which may be EXPIRED.
type VoucherView struct {
	domain.Voucher
	DisplayStatus string `json:"displayStatus"`
}

func (s *Service) ListVouchers(ctx context.Context) ([]VoucherView, error) {
	vouchers, err := store.ListRecords[domain.Voucher](ctx, s.repo, domain.CollectionVouchers)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	out := make([]VoucherView, 0, len(vouchers))
	for _, v := range vouchers {
		out = append(out, VoucherView{Voucher: v, DisplayStatus: voucher.DisplayStatus(v, now)})
	}
	return out, nil
}

func (s *Service) ValidateVoucherCode(ctx context.Context, req domain.VoucherValidateRequest) (domain.Voucher, error) {
	vouchers, err := store.ListRecords[domain.Voucher](ctx, s.repo, domain.CollectionVouchers)
	if err != nil {
		return domain.Voucher{}, err
	}
	return voucher.Validate(req.Code, req.AppliedCodes, vouchers, s.clock())
}

// IssueVoucher sells a prepaid voucher to a registered member.
func (s *Service) IssueVoucher(ctx context.Context, req domain.VoucherIssueRequest) (domain.Voucher, error) {
	clientID := strings.TrimSpace(req.ClientID)
	if _, err := store.GetRecord[domain.Client](ctx, s.repo, domain.CollectionClients, clientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Voucher{}, fmt.Errorf("%w: client %q is not registered", voucher.ErrInvalidIssue, clientID)
		}
		return domain.Voucher{}, err
	}

	treatment, err := store.GetRecord[domain.Treatment](ctx, s.repo, domain.CollectionTreatments, strings.TrimSpace(req.TreatmentID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Voucher{}, fmt.Errorf("%w: treatment %q not found", voucher.ErrInvalidIssue, req.TreatmentID)
		}
		return domain.Voucher{}, err
	}

	existing, err := store.ListRecords[domain.Voucher](ctx, s.repo, domain.CollectionVouchers)
	if err != nil {
		return domain.Voucher{}, err
	}
	taken := make(map[string]bool, len(existing))
	for _, v := range existing {
		taken[voucher.NormalizeCode(v.Code)] = true
	}
	code := voucher.NewCode()
	for attempt := 0; taken[code] && attempt < 5; attempt++ {
		code = voucher.NewCode()
	}
	if taken[code] {
		return domain.Voucher{}, fmt.Errorf("could not allocate a unique voucher code")
	}

	v, err := voucher.Issue(voucher.IssueParams{
		Treatment:     *treatment,
		ClientID:      clientID,
		RecipientName: req.RecipientName,
		PricePaid:     req.PricePaid,
		Validity:      req.Validity,
		CustomExpiry:  req.CustomExpiry,
		Type:          req.Type,
		Credits:       req.Credits,
		Now:           s.now(),
		Code:          code,
	})
	if err != nil {
		return domain.Voucher{}, err
	}

	id, err := store.CreateRecord(ctx, s.repo, domain.CollectionVouchers, v)
	if err != nil {
		return domain.Voucher{}, err
	}
	v.ID = id

	s.invalidate(ctx, v.ClientID)
	s.publish(ctx, events.VoucherIssued, events.VoucherIssuedEvent{
		VoucherID:  v.ID,
		Code:       v.Code,
		ClientID:   v.ClientID,
		PricePaid:  v.PricePaid.String(),
		OccurredAt: s.clock().Format(timestampLayout),
	})
	return v, nil
}

// TransitionVoucher voids or refunds an ISSUED voucher.
func (s *Service) TransitionVoucher(ctx context.Context, id string, req domain.VoucherStatusRequest) (domain.Voucher, error) {
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	if status != domain.VoucherStatusVoid && status != domain.VoucherStatusRefunded {
		return domain.Voucher{}, fmt.Errorf("%w: status %q", ErrInvalidRequest, req.Status)
	}

	current, err := store.GetRecord[domain.Voucher](ctx, s.repo, domain.CollectionVouchers, strings.TrimSpace(id))
	if err != nil {
		return domain.Voucher{}, err
	}

	next, err := voucher.Transition(*current, status)
	if err != nil {
		return domain.Voucher{}, err
	}
	if err := store.PutRecord(ctx, s.repo, domain.CollectionVouchers, next.ID, next); err != nil {
		return domain.Voucher{}, err
	}

	s.invalidate(ctx, next.ClientID)
	return next, nil
}
