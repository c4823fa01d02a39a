// Package cache stores rendered catalog responses so repeated listing and
// detail reads skip the database.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired
var ErrMiss = errors.New("cache miss")

// CatalogPrefix namespaces every cached catalog response
const CatalogPrefix = "catalog:"

// Provider is a byte-oriented key/value cache
type Provider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key that starts with prefix and reports how many were removed
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// Noop is used when caching is disabled; every read misses
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

func (Noop) DeletePrefix(context.Context, string) (int64, error) { return 0, nil }

func (Noop) Ping(context.Context) error { return nil }

func (Noop) Close() error { return nil }

// CatalogInvalidator drops cached catalog responses after a write
type CatalogInvalidator struct {
	provider Provider
}

func NewCatalogInvalidator(provider Provider) *CatalogInvalidator {
	return &CatalogInvalidator{provider: provider}
}

// InvalidateCatalog removes all cached catalog responses
func (c *CatalogInvalidator) InvalidateCatalog(ctx context.Context) error {
	if c == nil || c.provider == nil {
		return nil
	}
	_, err := c.provider.DeletePrefix(ctx, CatalogPrefix)
	return err
}
