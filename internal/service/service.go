package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"yarey/backend/internal/cache"
	"yarey/backend/internal/domain"
	"yarey/backend/internal/events"
	"yarey/backend/internal/loyalty"
	"yarey/backend/internal/store"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrAlreadyExists  = errors.New("already exists")
	ErrSyncInProgress = errors.New("client sync already in progress")
	// ErrPartialWrite accompanies a result when some, not all, writes of a
	// batch failed. Rerunning the batch is safe.
	ErrPartialWrite = errors.New("some writes failed")
)

// writeConcurrency bounds fan-out writes against the document store.
const writeConcurrency = 8

const timestampLayout = time.RFC3339

type Options struct {
	Cache                 cache.LoyaltyCache
	CacheTTL              time.Duration
	Locker                cache.Locker
	SyncLockTTL           time.Duration
	Publisher             events.Publisher
	Tiers                 *loyalty.TierTable
	OutsourceRateFallback domain.Amount
	Location              *time.Location
	PhoneRegion           string
	Now                   func() time.Time
}

type Service struct {
	repo          store.Repository
	cache         cache.LoyaltyCache
	cacheTTL      time.Duration
	locker        cache.Locker
	syncLockTTL   time.Duration
	publisher     events.Publisher
	tiers         *loyalty.TierTable
	outsourceRate domain.Amount
	loc           *time.Location
	phoneRegion   string
	now           func() time.Time
}

func New(repo store.Repository, opts Options) *Service {
	s := &Service{
		repo:          repo,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		locker:        opts.Locker,
		syncLockTTL:   opts.SyncLockTTL,
		publisher:     opts.Publisher,
		tiers:         opts.Tiers,
		outsourceRate: opts.OutsourceRateFallback,
		loc:           opts.Location,
		phoneRegion:   opts.PhoneRegion,
		now:           opts.Now,
	}

	if s.cache == nil {
		s.cache = cache.NoopLoyaltyCache{}
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = time.Minute
	}
	if s.locker == nil {
		s.locker = cache.NoopLocker{}
	}
	if s.syncLockTTL <= 0 {
		s.syncLockTTL = 2 * time.Minute
	}
	if s.publisher == nil {
		s.publisher = events.NoopPublisher{}
	}
	if s.tiers == nil {
		s.tiers = loyalty.DefaultTierTable()
	}
	if !s.outsourceRate.IsPositive() {
		s.outsourceRate = domain.AmountFromInt(300)
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

func (s *Service) clock() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) today() string {
	return domain.Today(s.now(), s.loc)
}

func (s *Service) Tiers() []loyalty.Tier {
	return s.tiers.Tiers()
}

// snapshot is a point-in-time read of the collections an operation needs.
type snapshot struct {
	bookings   []domain.Booking
	vouchers   []domain.Voucher
	clients    []domain.Client
	staff      []domain.Staff
	treatments []domain.Treatment
	expenses   []domain.Expense
	// skippedClients are client ids whose documents could not be decoded.
	skippedClients []string
}

// load reads the requested collections concurrently.
func (s *Service) load(ctx context.Context, collections ...string) (*snapshot, error) {
	snap := &snapshot{}
	g, gctx := errgroup.WithContext(ctx)

	for _, collection := range collections {
		collection := collection
		switch collection {
		case domain.CollectionBookings:
			g.Go(func() (err error) {
				snap.bookings, err = store.ListRecords[domain.Booking](gctx, s.repo, collection)
				return err
			})
		case domain.CollectionVouchers:
			g.Go(func() (err error) {
				snap.vouchers, err = store.ListRecords[domain.Voucher](gctx, s.repo, collection)
				return err
			})
		case domain.CollectionClients:
			g.Go(func() (err error) {
				snap.clients, snap.skippedClients, err = store.DecodeCollection[domain.Client](gctx, s.repo, collection)
				return err
			})
		case domain.CollectionStaff:
			g.Go(func() (err error) {
				snap.staff, err = store.ListRecords[domain.Staff](gctx, s.repo, collection)
				return err
			})
		case domain.CollectionTreatments:
			g.Go(func() (err error) {
				snap.treatments, err = store.ListRecords[domain.Treatment](gctx, s.repo, collection)
				return err
			})
		case domain.CollectionExpenses:
			g.Go(func() (err error) {
				snap.expenses, err = store.ListRecords[domain.Expense](gctx, s.repo, collection)
				return err
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *Service) publish(ctx context.Context, queue string, event any) {
	if err := s.publisher.Publish(ctx, queue, event); err != nil {
		log.Warn().Err(err).Str("queue", queue).Msg("[service] failed to publish event")
	}
}

func (s *Service) invalidate(ctx context.Context, clientIDs ...string) {
	ids := make([]string, 0, len(clientIDs))
	seen := make(map[string]bool, len(clientIDs))
	for _, id := range clientIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, ids...); err != nil {
		log.Warn().Err(err).Strs("clients", ids).Msg("[service] failed to invalidate loyalty cache")
	}
}
