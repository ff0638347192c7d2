// Package firestore stores documents in Cloud Firestore, one Firestore
// collection per record collection. Bodies are converted between JSON and
// Firestore maps at the boundary.
package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"yarey/backend/internal/store"
)

type Store struct {
	client *firestore.Client
}

// New connects to projectID. An empty credentialsFile uses application
// default credentials, or the emulator when FIRESTORE_EMULATOR_HOST is set.
func New(ctx context.Context, projectID string, credentialsFile string) (*Store, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, err
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Document, error) {
	snaps, err := s.client.Collection(collection).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}

	docs := make([]store.Document, 0, len(snaps))
	for _, snap := range snaps {
		data, err := fromFields(snap.Data())
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", collection, snap.Ref.ID, err)
		}
		docs = append(docs, store.Document{ID: snap.Ref.ID, Data: data})
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (*store.Document, error) {
	if err := store.ValidKey(collection, id); err != nil {
		return nil, store.ErrNotFound
	}
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	data, err := fromFields(snap.Data())
	if err != nil {
		return nil, err
	}
	return &store.Document{ID: id, Data: data}, nil
}

func (s *Store) Upsert(ctx context.Context, collection string, id string, data json.RawMessage) error {
	if err := store.ValidKey(collection, id); err != nil {
		return err
	}
	fields, err := toFields(data)
	if err != nil {
		return err
	}
	_, err = s.client.Collection(collection).Doc(id).Set(ctx, fields)
	return err
}

func (s *Store) Create(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	fields, err := toFields(data)
	if err != nil {
		return "", err
	}
	ref, _, err := s.client.Collection(collection).Add(ctx, fields)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	if err := store.ValidKey(collection, id); err != nil {
		return store.ErrNotFound
	}
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		if isNotFound(err) {
			return store.ErrNotFound
		}
		return err
	}
	return nil
}

// toFields decodes a JSON object body into the map form Firestore stores.
func toFields(data json.RawMessage) (map[string]any, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidDocument, err)
	}
	if fields == nil {
		return nil, store.ErrInvalidDocument
	}
	return fields, nil
}

// fromFields encodes a Firestore document back to JSON. Timestamps become
// RFC 3339 strings.
func fromFields(fields map[string]any) (json.RawMessage, error) {
	if fields == nil {
		fields = map[string]any{}
	}
	return json.Marshal(fields)
}

func isNotFound(err error) bool {
	if errors.Is(err, store.ErrNotFound) {
		return true
	}
	return status.Code(err) == codes.NotFound
}
