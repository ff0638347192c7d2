package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"yarey/backend/internal/store"
)

func TestDocumentRoundTrip(t *testing.T) {
	databaseURL := os.Getenv("YAREY_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set YAREY_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	collection := fmt.Sprintf("it-%d", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = $1`, collection)
	})

	id, err := s.Create(ctx, collection, json.RawMessage(`{"status":"Confirmed","priceSnapshot":1500}`))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.Upsert(ctx, collection, id, json.RawMessage(`{"status":"Complete","priceSnapshot":1500}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	doc, err := s.Get(ctx, collection, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var body map[string]any
	if err := json.Unmarshal(doc.Data, &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "Complete" {
		t.Fatalf("expected upserted status Complete, got %v", body["status"])
	}

	docs, err := s.List(ctx, collection)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}

	if err := s.Delete(ctx, collection, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, collection, id); err != store.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
