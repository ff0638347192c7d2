package memory

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/store"
)

type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]json.RawMessage
}

func New() *Store {
	return &Store{collections: make(map[string]map[string]json.RawMessage)}
}

// NewSeeded returns a store preloaded with a small demo menu, staff roster,
// members and bookings so the API is usable without a database.
func NewSeeded() *Store {
	s := New()

	treatments := []domain.Treatment{
		{ID: "t-royal-thai", Title: "Royal Thai Massage", Category: "massage", DurationMin: 90, PriceTHB: domain.AmountFromInt(1800), Active: true},
		{ID: "t-aroma", Title: "Aroma Oil Ritual", Category: "massage", DurationMin: 60, PriceTHB: domain.AmountFromInt(1500), Active: true},
		{ID: "t-foot", Title: "Foot Reflexology", Category: "massage", DurationMin: 45, PriceTHB: domain.AmountFromInt(900), Active: true},
		{ID: "t-herbal", Title: "Herbal Compress Journey", Category: "signature", DurationMin: 120, PriceTHB: domain.AmountFromInt(3200), Active: true,
			Includes: []string{"herbal steam", "compress massage", "tea ceremony"}},
	}
	staff := []domain.Staff{
		{ID: "st-nok", Name: "Siriporn K.", Nickname: "Nok", Role: domain.RoleDual, Active: true,
			CommissionRate: domain.ParseAmount("0.05"), BaseSalary: domain.AmountFromInt(15000), HourlyRate: domain.AmountFromInt(150)},
		{ID: "st-ann", Name: "Anchalee P.", Nickname: "Ann", Role: domain.RoleSales, Active: true,
			CommissionRate: domain.ParseAmount("0.1"), BaseSalary: domain.AmountFromInt(12000)},
		{ID: "st-lek", Name: "Wanida S.", Nickname: "Lek", Role: domain.RoleTherapist, Active: true,
			BaseSalary: domain.AmountFromInt(9000), HourlyRate: domain.AmountFromInt(200)},
	}
	clients := []domain.Client{
		{ID: "somchai@example.com", Name: "Somchai Jaidee", Email: "somchai@example.com", Phone: "+66812345678",
			LastVisit: domain.EpochVisit, JoinedDate: "2025-01-02"},
	}
	bookings := []domain.Booking{
		{ID: "bk-seed-1", Guests: 1, Time: "10:00", Date: "2025-01-10", Status: domain.BookingStatusComplete,
			Treatment: "Royal Thai Massage", Contact: domain.Contact{Name: "Somchai Jaidee", Email: "somchai@example.com", Handle: "+66812345678"},
			PriceSnapshot: domain.AmountFromInt(1800), SalesmanID: "st-ann", CommissionSnapshot: domain.ParseAmount("0.1"), CommissionAmount: domain.AmountFromInt(180),
			TherapistID: "st-nok", TherapistCostSnapshot: domain.AmountFromInt(225), PaymentMethod: "Cash",
			Items: []domain.BookingItem{{Title: "Royal Thai Massage", DurationMin: domain.AmountFromInt(90)}}},
	}
	vouchers := []domain.Voucher{
		{ID: "vc-seed-1", Code: "PROMO-WELCOM", TreatmentID: "t-aroma", TreatmentTitle: "60m | Aroma Oil Ritual",
			PricePaid: domain.AmountFromInt(1200), OriginalPrice: domain.AmountFromInt(1500), Status: domain.VoucherStatusIssued,
			Type: domain.VoucherTypeSingle, RecipientName: "Somchai Jaidee", ClientID: "somchai@example.com",
			IssuedAt: "2025-01-10T10:00:00.000Z", ExpiresAt: "2099-01-01T00:00:00.000Z"},
	}

	for _, t := range treatments {
		s.seed(domain.CollectionTreatments, t.ID, t)
	}
	for _, st := range staff {
		s.seed(domain.CollectionStaff, st.ID, st)
	}
	for _, c := range clients {
		s.seed(domain.CollectionClients, c.ID, c)
	}
	for _, b := range bookings {
		s.seed(domain.CollectionBookings, b.ID, b)
	}
	for _, v := range vouchers {
		s.seed(domain.CollectionVouchers, v.ID, v)
	}
	s.seed(domain.CollectionSettings, domain.SettingsOutsourceID, domain.OutsourceSettings{Rate: domain.AmountFromInt(300)})

	return s
}

func (s *Store) seed(collection string, id string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Fatal().Err(err).Str("collection", collection).Msg("[memory-store] failed to encode seed document")
	}
	s.put(collection, id, data)
}

func (s *Store) put(collection string, id string, data json.RawMessage) {
	docs, ok := s.collections[collection]
	if !ok {
		docs = make(map[string]json.RawMessage)
		s.collections[collection] = docs
	}
	docs[id] = slices.Clone(data)
}

func (s *Store) List(_ context.Context, collection string) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.collections[collection]
	out := make([]store.Document, 0, len(docs))
	for id, data := range docs {
		out = append(out, store.Document{ID: id, Data: slices.Clone(data)})
	}
	slices.SortFunc(out, func(a, b store.Document) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, collection string, id string) (*store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.collections[collection][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.Document{ID: id, Data: slices.Clone(data)}, nil
}

func (s *Store) Upsert(_ context.Context, collection string, id string, data json.RawMessage) error {
	if err := store.ValidKey(collection, id); err != nil {
		return err
	}
	if !json.Valid(data) {
		return store.ErrInvalidDocument
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(collection, id, data)
	return nil
}

func (s *Store) Create(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	id := store.NewID(collection)
	if err := s.Upsert(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(_ context.Context, collection string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := s.collections[collection]
	if _, ok := docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(docs, id)
	return nil
}
