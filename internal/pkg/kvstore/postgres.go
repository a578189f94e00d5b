package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/pkg/dberrors"
)

const (
	postgresTable      = "kv_entries"
	postgresPrimaryKey = "kv_entries_pkey"
)

var errVersionMismatch = errors.New("version mismatch")

// PgxQuerier is the subset of *pgxpool.Pool used by PostgresStore.
type PgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresOptions tunes the retry and timeout behaviour of PostgresStore.
type PostgresOptions struct {
	// OpTimeout bounds every individual statement.
	OpTimeout time.Duration
	// RetryMaxElapsed bounds the total time spent retrying an Update after version conflicts.
	RetryMaxElapsed time.Duration
	// Close is invoked by PostgresStore.Close; nil when the pool is owned elsewhere.
	Close func()
}

// PostgresStore is a Gateway over a kv_entries table. Update is optimistic:
// each row carries a version and a write only lands if the version it read is
// still current. Losing writers back off and retry from a fresh read.
type PostgresStore struct {
	db     PgxQuerier
	opts   PostgresOptions
	logger zerolog.Logger
}

// NewPostgresStore creates a PostgresStore. The kv_entries table must exist (see migrations).
func NewPostgresStore(db PgxQuerier, opts PostgresOptions, logger zerolog.Logger) *PostgresStore {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 5 * time.Second
	}
	if opts.RetryMaxElapsed <= 0 {
		opts.RetryMaxElapsed = 2 * time.Second
	}
	return &PostgresStore{db: db, opts: opts, logger: logger}
}

// Get fetches the value stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := requireKey(key); err != nil {
		return nil, err
	}

	value, _, exists, err := s.read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}
	return value, nil
}

// Set upserts value under key and bumps its version.
func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	if err := requireKey(key); err != nil {
		return err
	}

	query := squirrel.Insert(postgresTable).
		Columns("key", "value", "version", "updated_at").
		Values(key, value, 1, squirrel.Expr("NOW()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, version = " + postgresTable + ".version + 1, updated_at = NOW()").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (s *PostgresStore) Remove(ctx context.Context, key string) error {
	if err := requireKey(key); err != nil {
		return err
	}

	query := squirrel.Delete(postgresTable).
		Where(squirrel.Eq{"key": key}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

// Update performs a compare-and-swap on the row version, retrying with
// exponential backoff while other writers win the race.
func (s *PostgresStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	if err := requireKey(key); err != nil {
		return err
	}

	attempt := 0
	operation := func() error {
		attempt++
		current, version, exists, err := s.read(ctx, key)
		if err != nil {
			return backoff.Permanent(err)
		}

		next, err := fn(current, exists)
		if errors.Is(err, ErrSkipWrite) {
			return nil
		}
		if err != nil {
			return backoff.Permanent(err)
		}

		if exists {
			err = s.compareAndSwap(ctx, key, version, next)
		} else {
			err = s.insert(ctx, key, next)
		}
		if errors.Is(err, errVersionMismatch) {
			s.logger.Debug().Str("key", key).Int("attempt", attempt).Msg("Version conflict, retrying update")
			return err
		}
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 5 * time.Millisecond
	policy.MaxInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = s.opts.RetryMaxElapsed

	err := backoff.Retry(operation, backoff.WithContext(policy, ctx))
	if errors.Is(err, errVersionMismatch) {
		s.logger.Warn().Str("key", key).Int("attempts", attempt).Msg("Giving up on contended update")
		return fmt.Errorf("%w: %s", ErrConflict, key)
	}
	return err
}

// Close releases the pool when PostgresOptions.Close was provided.
func (s *PostgresStore) Close() error {
	if s.opts.Close != nil {
		s.opts.Close()
	}
	return nil
}

func (s *PostgresStore) read(ctx context.Context, key string) ([]byte, int64, bool, error) {
	query := squirrel.Select("value", "version").
		From(postgresTable).
		Where(squirrel.Eq{"key": key}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, false, fmt.Errorf("error building SQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	var (
		value   []byte
		version int64
	)
	err = s.db.QueryRow(ctx, sql, args...).Scan(&value, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("error executing query: %w", err)
	}
	return value, version, true, nil
}

func (s *PostgresStore) insert(ctx context.Context, key string, value []byte) error {
	query := squirrel.Insert(postgresTable).
		Columns("key", "value", "version", "updated_at").
		Values(key, value, 1, squirrel.Expr("NOW()")).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	_, err = s.db.Exec(ctx, sql, args...)
	if dberrors.IsDuplicateConstraintError(err, postgresPrimaryKey) || dberrors.IsRetryable(err) {
		return errVersionMismatch
	}
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}

func (s *PostgresStore) compareAndSwap(ctx context.Context, key string, version int64, value []byte) error {
	query := squirrel.Update(postgresTable).
		Set("value", value).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"key": key, "version": version}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.OpTimeout)
	defer cancel()

	result, err := s.db.Exec(ctx, sql, args...)
	if dberrors.IsRetryable(err) {
		return errVersionMismatch
	}
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return errVersionMismatch
	}
	return nil
}
