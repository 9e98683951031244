package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/parcelapi/planengine/internal/domain/billing"
	"github.com/redis/go-redis/v9"
)

const selectionKeyPrefix = "planengine:selection:"

// selectionStore implements billing.SelectionStore.
type selectionStore struct {
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *Breaker
}

// NewSelectionStore creates a selection store backed by Redis.
// A zero ttl keeps selections until they are overwritten. breaker may be nil.
func NewSelectionStore(client redis.UniversalClient, ttl time.Duration, breaker *Breaker) billing.SelectionStore {
	return &selectionStore{client: client, ttl: ttl, breaker: breaker}
}

func (s *selectionStore) Load(ctx context.Context, key string) (*billing.Selection, error) {
	var val []byte
	err := s.breaker.Do(func() error {
		var err error
		val, err = s.client.Get(ctx, selectionKeyPrefix+key).Bytes()
		return err
	})
	if errors.Is(err, redis.Nil) {
		return nil, billing.ErrSelectionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get selection: %w", err)
	}

	var sel billing.Selection
	if err := json.Unmarshal(val, &sel); err != nil {
		return nil, fmt.Errorf("unmarshal selection: %w", err)
	}
	return &sel, nil
}

func (s *selectionStore) Save(ctx context.Context, key string, sel billing.Selection) error {
	data, err := json.Marshal(sel)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	return s.breaker.Do(func() error {
		return s.client.Set(ctx, selectionKeyPrefix+key, data, s.ttl).Err()
	})
}

// Compile-time check
var _ billing.SelectionStore = (*selectionStore)(nil)
