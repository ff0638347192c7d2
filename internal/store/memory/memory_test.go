package memory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/store"
)

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.Create(ctx, domain.CollectionBookings, json.RawMessage(`{"status":"Confirmed"}`))
	require.NoError(t, err)
	assert.Regexp(t, `^bk-`, id)

	doc, err := s.Get(ctx, domain.CollectionBookings, id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"Confirmed"}`, string(doc.Data))

	require.NoError(t, s.Delete(ctx, domain.CollectionBookings, id))
	_, err = s.Get(ctx, domain.CollectionBookings, id)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, domain.CollectionBookings, id), store.ErrNotFound)
}

func TestUpsertRejectsBadInput(t *testing.T) {
	s := New()
	assert.ErrorIs(t, s.Upsert(context.Background(), domain.CollectionClients, "", json.RawMessage(`{}`)), store.ErrInvalidDocument)
	assert.ErrorIs(t, s.Upsert(context.Background(), domain.CollectionClients, "a", json.RawMessage(`{`)), store.ErrInvalidDocument)
}

func TestListIsSortedAndIsolated(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Upsert(ctx, "c", "b", json.RawMessage(`{"n":2}`)))
	require.NoError(t, s.Upsert(ctx, "c", "a", json.RawMessage(`{"n":1}`)))

	docs, err := s.List(ctx, "c")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)

	docs[0].Data[0] = 'x'
	again, _ := s.Get(ctx, "c", "a")
	assert.JSONEq(t, `{"n":1}`, string(again.Data))
}

func TestRecordHelpersRoundTripAndSkipGarbage(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()

	require.NoError(t, s.Upsert(ctx, domain.CollectionClients, "broken", json.RawMessage(`"not an object"`)))

	clients, err := store.ListRecords[domain.Client](ctx, s, domain.CollectionClients)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "somchai@example.com", clients[0].ID)

	staff, err := store.GetRecord[domain.Staff](ctx, s, domain.CollectionStaff, "st-nok")
	require.NoError(t, err)
	assert.Equal(t, "Nok", staff.Nickname)
	assert.True(t, staff.CommissionRate.Equal(domain.ParseAmount("0.05")))

	_, err = store.GetRecord[domain.Staff](ctx, s, domain.CollectionStaff, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	id, err := store.CreateRecord(ctx, s, domain.CollectionExpenses, domain.Expense{Month: "2025-01", Title: "Rent", Amount: domain.AmountFromInt(20000)})
	require.NoError(t, err)
	expense, err := store.GetRecord[domain.Expense](ctx, s, domain.CollectionExpenses, id)
	require.NoError(t, err)
	assert.Equal(t, id, expense.ID)
	assert.True(t, expense.Amount.Equal(domain.AmountFromInt(20000)))
}

func TestDecodeCollectionCoercesMistypedFields(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Upsert(ctx, domain.CollectionBookings, "b1", json.RawMessage(`{"guests":"2","priceSnapshot":1500,"status":"Complete"}`)))
	require.NoError(t, s.Upsert(ctx, domain.CollectionBookings, "b2", json.RawMessage(`"not a booking"`)))

	bookings, skipped, err := store.DecodeCollection[domain.Booking](ctx, s, domain.CollectionBookings)
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, "b1", bookings[0].ID)
	assert.Equal(t, 0, bookings[0].Guests)
	assert.True(t, bookings[0].PriceSnapshot.Equal(domain.AmountFromInt(1500)))
	assert.Equal(t, domain.BookingStatusComplete, bookings[0].Status)
	assert.Equal(t, []string{"b2"}, skipped)

	_, err = store.GetRecord[domain.Booking](ctx, s, domain.CollectionBookings, "b2")
	assert.ErrorIs(t, err, store.ErrInvalidDocument)
}
