// Package kvstore provides the key/value persistence gateway used by the
// registries. Every implementation guarantees that Update is an atomic
// read-modify-write of a single key.
package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates that a key holds no value.
	ErrNotFound = errors.New("key not found")
	// ErrSkipWrite may be returned by an UpdateFunc to leave the stored value untouched.
	ErrSkipWrite = errors.New("skip write")
	// ErrConflict is returned when a concurrent writer kept winning until retries ran out.
	ErrConflict = errors.New("concurrent update conflict")
)

// UpdateFunc receives the current value of a key (nil when absent) and returns its replacement.
type UpdateFunc func(current []byte, exists bool) ([]byte, error)

// Gateway is a namespaced key/value store holding JSON payloads.
type Gateway interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

type namespaced struct {
	inner  Gateway
	prefix string
}

// Namespaced prefixes every key passed to inner with prefix and a colon.
// An empty prefix returns inner unchanged.
func Namespaced(inner Gateway, prefix string) Gateway {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return inner
	}
	return &namespaced{inner: inner, prefix: prefix + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.inner.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.inner.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.inner.Remove(ctx, n.prefix+key)
}

func (n *namespaced) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return n.inner.Update(ctx, n.prefix+key, fn)
}

func (n *namespaced) Close() error {
	return n.inner.Close()
}

// MigrateKey copies the payload stored under fromKey into toKey after passing it
// through convert. The old key is never modified and an existing toKey is never
// overwritten, so both shapes can live side by side while callers move over.
// It reports whether a new value was written.
func MigrateKey(ctx context.Context, gw Gateway, fromKey, toKey string, convert func([]byte) ([]byte, error)) (bool, error) {
	if fromKey == toKey {
		return false, fmt.Errorf("migration source and target are both %q", fromKey)
	}

	source, err := gw.Get(ctx, fromKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", fromKey, err)
	}

	migrated := false
	err = gw.Update(ctx, toKey, func(_ []byte, exists bool) ([]byte, error) {
		if exists {
			return nil, ErrSkipWrite
		}
		converted, err := convert(source)
		if err != nil {
			return nil, fmt.Errorf("convert %s: %w", fromKey, err)
		}
		migrated = true
		return converted, nil
	})
	if err != nil {
		return false, err
	}

	return migrated, nil
}

func requireKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key is required")
	}
	return nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
