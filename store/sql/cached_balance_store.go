package sqlstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-vault/core"
)

const balanceCacheKeyPrefix = "go-vault::account_balance::v1"

type BalanceReader interface {
	Get(ctx context.Context, account core.AccountID) (core.Amount, error)
}

type BalanceStore interface {
	BalanceReader
	Save(ctx context.Context, account core.AccountID, balance core.Amount) error
}

// CachedBalanceStore is a read-through cache over a balance snapshot store.
// Saves write the base store first, then drop the cache entry, so a read
// after a committed save fetches the committed value.
type CachedBalanceStore struct {
	base  BalanceStore
	cache repositorycache.CacheService
}

func NewCachedBalanceStore(
	base BalanceStore,
	cacheService repositorycache.CacheService,
) (*CachedBalanceStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base balance store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: balance cache service is required")
	}
	return &CachedBalanceStore{base: base, cache: cacheService}, nil
}

// BalanceCacheKey returns the deterministic cache key contract for balance
// reads: go-vault::account_balance::v1::<account> with the account segment
// URL-path escaped after trimming.
func BalanceCacheKey(account core.AccountID) (string, error) {
	trimmed := strings.TrimSpace(string(account))
	if trimmed == "" {
		return "", core.ErrInvalidAccount
	}
	return balanceCacheKeyPrefix + "::" + url.PathEscape(trimmed), nil
}

func (s *CachedBalanceStore) Get(ctx context.Context, account core.AccountID) (core.Amount, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return 0, fmt.Errorf("sqlstore: cached balance store is not configured")
	}
	cacheKey, err := BalanceCacheKey(account)
	if err != nil {
		return 0, err
	}
	return repositorycache.GetOrFetch(ctx, s.cache, cacheKey, func(ctx context.Context) (core.Amount, error) {
		return s.base.Get(ctx, account)
	})
}

func (s *CachedBalanceStore) Save(ctx context.Context, account core.AccountID, balance core.Amount) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached balance store is not configured")
	}
	cacheKey, err := BalanceCacheKey(account)
	if err != nil {
		return err
	}
	if err := s.base.Save(ctx, account, balance); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, cacheKey); err != nil {
		return err
	}
	return nil
}
