package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/pkg/apperrors"
	"github.com/yigit/hobbysphere/internal/pkg/kvstore"
)

// collection stores every record of one type as a single JSON array under key.
// All writes go through Gateway.Update, so a mutation observes and replaces
// the array atomically.
type collection[T any] struct {
	gw       kvstore.Gateway
	key      string
	idOf     func(*T) string
	notFound error
	logger   zerolog.Logger
}

func decodeRecords[T any](data []byte) ([]T, error) {
	if len(data) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// List returns a snapshot of every record in stored order
func (c *collection[T]) List(ctx context.Context) ([]T, error) {
	data, err := c.gw.Get(ctx, c.key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", c.key, err)
	}

	records, err := decodeRecords[T](data)
	if err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", c.key, err)
	}
	return records, nil
}

// Get returns a copy of the record with id
func (c *collection[T]) Get(ctx context.Context, id string) (*T, error) {
	records, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if c.idOf(&records[i]) == id {
			return &records[i], nil
		}
	}
	return nil, c.notFound
}

// Insert appends record; an existing id is rejected
func (c *collection[T]) Insert(ctx context.Context, record T) error {
	id := c.idOf(&record)

	err := c.gw.Update(ctx, c.key, func(current []byte, _ bool) ([]byte, error) {
		records, err := decodeRecords[T](current)
		if err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", c.key, err)
		}
		for i := range records {
			if c.idOf(&records[i]) == id {
				return nil, apperrors.NewCustomError(apperrors.ErrResourceAlreadyExists,
					fmt.Sprintf("record %s already exists in %s", id, c.key))
			}
		}
		return json.Marshal(append(records, record))
	})
	return c.translate(err, id)
}

// Mutate runs fn against the stored record with id and persists the result in
// the same atomic update. fn may run more than once when the gateway retries,
// so it must derive everything from the record it is handed. Returning
// kvstore.ErrSkipWrite from fn leaves the collection untouched. Mutate returns
// the record as fn left it.
func (c *collection[T]) Mutate(ctx context.Context, id string, fn func(*T) error) (*T, error) {
	var result T

	err := c.gw.Update(ctx, c.key, func(current []byte, _ bool) ([]byte, error) {
		records, err := decodeRecords[T](current)
		if err != nil {
			return nil, fmt.Errorf("error decoding %s: %w", c.key, err)
		}

		for i := range records {
			if c.idOf(&records[i]) != id {
				continue
			}
			fnErr := fn(&records[i])
			result = records[i]
			if fnErr != nil {
				return nil, fnErr
			}
			return json.Marshal(records)
		}
		return nil, c.notFound
	})
	if err = c.translate(err, id); err != nil {
		return nil, err
	}
	return &result, nil
}

// Count returns the number of stored records
func (c *collection[T]) Count(ctx context.Context) (int, error) {
	records, err := c.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

func (c *collection[T]) translate(err error, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, kvstore.ErrConflict) {
		c.logger.Warn().Err(err).Str("key", c.key).Str("id", id).Msg("Gave up after repeated write conflicts")
		return apperrors.NewCustomError(apperrors.ErrConflict,
			fmt.Sprintf("%s is being modified concurrently, try again", c.key))
	}
	return err
}
