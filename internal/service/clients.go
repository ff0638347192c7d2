package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"yarey/backend/internal/cache"
	"yarey/backend/internal/crm"
	"yarey/backend/internal/domain"
	"yarey/backend/internal/events"
	"yarey/backend/internal/loyalty"
	"yarey/backend/internal/store"
)

func (s *Service) ListClients(ctx context.Context) ([]domain.Client, error) {
	return store.ListRecords[domain.Client](ctx, s.repo, domain.CollectionClients)
}

// CreateClient registers a member keyed by normalized email.
func (s *Service) CreateClient(ctx context.Context, req domain.ClientCreateRequest) (domain.Client, error) {
	email := domain.NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)
	if name == "" || len(email) < crm.MinEmailLength || !strings.Contains(email, "@") {
		return domain.Client{}, fmt.Errorf("%w: name and a valid email are required", ErrInvalidRequest)
	}

	_, err := store.GetRecord[domain.Client](ctx, s.repo, domain.CollectionClients, email)
	if err == nil {
		return domain.Client{}, fmt.Errorf("%w: client %s", ErrAlreadyExists, email)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.Client{}, err
	}

	client := domain.Client{
		ID:         email,
		Name:       name,
		Email:      email,
		Phone:      crm.NormalizePhone(req.Phone, s.phoneRegion),
		Notes:      strings.TrimSpace(req.Notes),
		VisitCount: 0,
		LastVisit:  domain.EpochVisit,
		JoinedDate: s.today(),
	}
	if err := store.PutRecord(ctx, s.repo, domain.CollectionClients, client.ID, client); err != nil {
		return domain.Client{}, err
	}
	return client, nil
}

func (s *Service) DeleteClient(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if err := s.repo.Delete(ctx, domain.CollectionClients, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// ClientLoyalty returns the live spend, hours and tier for one member.
func (s *Service) ClientLoyalty(ctx context.Context, clientID string) (loyalty.Summary, error) {
	clientID = strings.TrimSpace(clientID)

	if cached, ok, err := s.cache.Get(ctx, clientID); err != nil {
		log.Warn().Err(err).Str("client", clientID).Msg("[service] loyalty cache read failed")
	} else if ok {
		return *cached, nil
	}

	client, err := store.GetRecord[domain.Client](ctx, s.repo, domain.CollectionClients, clientID)
	if err != nil {
		return loyalty.Summary{}, err
	}

	snap, err := s.load(ctx, domain.CollectionBookings, domain.CollectionVouchers)
	if err != nil {
		return loyalty.Summary{}, err
	}

	summary := loyalty.Summarize(*client, snap.bookings, snap.vouchers, s.tiers)
	if err := s.cache.Set(ctx, clientID, &summary, s.cacheTTL); err != nil {
		log.Warn().Err(err).Str("client", clientID).Msg("[service] loyalty cache write failed")
	}
	return summary, nil
}

// SyncClients rebuilds every client's aggregates from the full booking and
// voucher history and writes them back. Writes are best effort: a partial
// failure returns the report together with ErrPartialWrite.
func (s *Service) SyncClients(ctx context.Context) (domain.SyncReport, error) {
	release, err := s.locker.Obtain(ctx, cache.SyncLockKey, s.syncLockTTL)
	if errors.Is(err, cache.ErrLocked) {
		return domain.SyncReport{}, ErrSyncInProgress
	}
	if err != nil {
		return domain.SyncReport{}, err
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("[service] failed to release client sync lock")
		}
	}()

	snap, err := s.load(ctx, domain.CollectionBookings, domain.CollectionVouchers, domain.CollectionClients)
	if err != nil {
		return domain.SyncReport{}, err
	}

	result := crm.Sync(snap.bookings, snap.vouchers, snap.clients, crm.Options{
		Today:       s.today(),
		PhoneRegion: s.phoneRegion,
	})

	// A client document that could not be read is never overwritten.
	skipped := make(map[string]bool, len(snap.skippedClients))
	for _, id := range snap.skippedClients {
		skipped[id] = true
	}
	writes := make([]domain.Client, 0, len(result.Clients))
	for _, c := range result.Clients {
		if skipped[c.ID] {
			log.Warn().Str("client", c.ID).Msg("[service] client sync left undecodable document untouched")
			continue
		}
		writes = append(writes, c)
	}

	var failed atomic.Int64
	var g errgroup.Group
	g.SetLimit(writeConcurrency)
	for _, client := range writes {
		client := client
		g.Go(func() error {
			if err := store.PutRecord(ctx, s.repo, domain.CollectionClients, client.ID, client); err != nil {
				failed.Add(1)
				log.Warn().Err(err).Str("client", client.ID).Msg("[service] client sync write failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]string, 0, len(writes))
	for _, c := range writes {
		ids = append(ids, c.ID)
	}
	s.invalidate(ctx, ids...)

	report := domain.SyncReport{
		UpdatedClients:   len(writes) - int(failed.Load()),
		CreditedVouchers: result.CreditedVouchers,
		Failed:           int(failed.Load()),
	}
	log.Info().
		Int("updated", report.UpdatedClients).
		Int("credited_vouchers", report.CreditedVouchers).
		Int("failed", report.Failed).
		Msg("[service] client sync finished")

	s.publish(ctx, events.ClientsSynced, events.ClientsSyncedEvent{
		UpdatedClients:   report.UpdatedClients,
		CreditedVouchers: report.CreditedVouchers,
		Failed:           report.Failed,
		OccurredAt:       s.clock().Format(timestampLayout),
	})

	if report.Failed > 0 {
		return report, fmt.Errorf("%w: %d of %d clients", ErrPartialWrite, report.Failed, len(writes))
	}
	return report, nil
}
