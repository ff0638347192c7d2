package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

var errNotObject = errors.New("document is not a JSON object")

// Record is a domain entity that learns its id from the document key.
type Record[T any] interface {
	*T
	SetID(id string)
}

// ListRecords decodes a whole collection. See DecodeCollection for how
// malformed documents are handled.
func ListRecords[T any, PT Record[T]](ctx context.Context, repo Repository, collection string) ([]T, error) {
	recs, _, err := DecodeCollection[T, PT](ctx, repo, collection)
	return recs, err
}

// DecodeCollection decodes a whole collection and also returns the ids of
// documents it had to skip. A field holding the wrong JSON type decodes to
// its zero value and the rest of the record is kept. Only documents that
// are not JSON objects are skipped.
func DecodeCollection[T any, PT Record[T]](ctx context.Context, repo Repository, collection string) ([]T, []string, error) {
	docs, err := repo.List(ctx, collection)
	if err != nil {
		return nil, nil, fmt.Errorf("list %s: %w", collection, err)
	}

	out := make([]T, 0, len(docs))
	var skipped []string
	for _, doc := range docs {
		var rec T
		if err := decodeRecord(doc.Data, &rec); err != nil {
			log.Warn().Err(err).Str("collection", collection).Str("id", doc.ID).Msg("skipping undecodable document")
			skipped = append(skipped, doc.ID)
			continue
		}
		PT(&rec).SetID(doc.ID)
		out = append(out, rec)
	}
	return out, skipped, nil
}

// GetRecord decodes one document. ErrNotFound passes through unwrapped so
// callers can match it with errors.Is.
func GetRecord[T any, PT Record[T]](ctx context.Context, repo Repository, collection string, id string) (*T, error) {
	doc, err := repo.Get(ctx, collection, id)
	if err != nil {
		return nil, err
	}
	var rec T
	if err := decodeRecord(doc.Data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", ErrInvalidDocument, collection, id, err)
	}
	PT(&rec).SetID(doc.ID)
	return &rec, nil
}

// decodeRecord unmarshals a JSON object into dest. encoding/json skips a
// mistyped field and keeps filling the others, so a type error is logged
// and tolerated.
func decodeRecord(data json.RawMessage, dest any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errNotObject
	}
	err := json.Unmarshal(trimmed, dest)
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		log.Warn().Str("field", typeErr.Field).Str("value", typeErr.Value).Msg("coercing mistyped field to zero")
		return nil
	}
	return err
}

// PutRecord overwrites the document at id with the JSON form of rec.
func PutRecord(ctx context.Context, repo Repository, collection string, id string, rec any) error {
	if err := ValidKey(collection, id); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return repo.Upsert(ctx, collection, id, data)
}

// CreateRecord adds rec under a store-assigned id and returns it.
func CreateRecord(ctx context.Context, repo Repository, collection string, rec any) (string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return repo.Create(ctx, collection, data)
}
