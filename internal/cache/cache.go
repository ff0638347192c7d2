package cache

import (
	"context"
	"time"

	"yarey/backend/internal/loyalty"
)

type LoyaltyCache interface {
	Get(ctx context.Context, clientID string) (*loyalty.Summary, bool, error)
	Set(ctx context.Context, clientID string, value *loyalty.Summary, ttl time.Duration) error
	Delete(ctx context.Context, clientIDs ...string) error
}

type NoopLoyaltyCache struct{}

func (NoopLoyaltyCache) Get(_ context.Context, _ string) (*loyalty.Summary, bool, error) {
	return nil, false, nil
}

func (NoopLoyaltyCache) Set(_ context.Context, _ string, _ *loyalty.Summary, _ time.Duration) error {
	return nil
}

func (NoopLoyaltyCache) Delete(_ context.Context, _ ...string) error {
	return nil
}

func loyaltyKey(clientID string) string {
	return "loyalty:" + clientID
}
