package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"yarey/backend/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	body JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, id)
)`

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the documents table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Store) List(ctx context.Context, collection string) ([]store.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, body
		FROM documents
		WHERE collection = $1
		ORDER BY id
	`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]store.Document, 0, 64)
	for rows.Next() {
		var doc store.Document
		var body []byte
		if err := rows.Scan(&doc.ID, &body); err != nil {
			return nil, err
		}
		doc.Data = body
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection string, id string) (*store.Document, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT body
		FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &store.Document{ID: id, Data: body}, nil
}

func (s *Store) Upsert(ctx context.Context, collection string, id string, data json.RawMessage) error {
	if err := store.ValidKey(collection, id); err != nil {
		return err
	}
	if !json.Valid(data) {
		return store.ErrInvalidDocument
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, now(), now())
		ON CONFLICT (collection, id)
		DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`, collection, id, string(data))
	return err
}

func (s *Store) Create(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	if collection == "" || !json.Valid(data) {
		return "", store.ErrInvalidDocument
	}

	id := store.NewID(collection)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, body, created_at, updated_at)
		VALUES ($1, $2, $3::jsonb, now(), now())
	`, collection, id, string(data))
	if err != nil {
		if isUniqueViolation(err) {
			return "", store.ErrInvalidDocument
		}
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, collection string, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM documents
		WHERE collection = $1 AND id = $2
	`, collection, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
