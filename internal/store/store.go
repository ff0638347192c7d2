package store

import (
	"context"
	"encoding/json"
	"errors"

	"yarey/backend/internal/domain"
	"yarey/backend/internal/xid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidDocument = errors.New("invalid document")
)

// Document is one record in a collection. Data is the JSON body exactly as
// stored; ID is the key it is stored under.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Repository is a collection-oriented document store: read a whole
// collection, read one document, overwrite one document, add one with a
// store-assigned id, delete one. Writes are last-write-wins per document.
type Repository interface {
	List(ctx context.Context, collection string) ([]Document, error)
	Get(ctx context.Context, collection string, id string) (*Document, error)
	Upsert(ctx context.Context, collection string, id string, data json.RawMessage) error
	Create(ctx context.Context, collection string, data json.RawMessage) (string, error)
	Delete(ctx context.Context, collection string, id string) error
}

var idPrefixes = map[string]string{
	domain.CollectionBookings:   "bk",
	domain.CollectionVouchers:   "vc",
	domain.CollectionClients:    "cl",
	domain.CollectionStaff:      "st",
	domain.CollectionTreatments: "tr",
	domain.CollectionExpenses:   "ex",
}

// NewID assigns an id for Create in stores that do not generate their own.
func NewID(collection string) string {
	return xid.New(idPrefixes[collection])
}

// ValidKey rejects empty collection names and ids.
func ValidKey(collection string, id string) error {
	if collection == "" || id == "" {
		return ErrInvalidDocument
	}
	return nil
}
