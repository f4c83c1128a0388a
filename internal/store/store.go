// Package store implements the event store on Redis.
//
// Events are kept in append-only lists written with LPUSH, so index 0 is
// always the most recent record. Distinct network addresses and visitor
// identifiers live in plain sets. The lists are bounded with LTRIM; the
// sets grow monotonically.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"
)

// Well-known store keys, combined with the configured prefix.
const (
	VisitsKey         = "visits"
	ServerLogsKey     = "server_logs"
	UniqueIPsKey      = "unique_ips"
	UniqueVisitorsKey = "unique_visitors"
)

// Store is the event store adapter backed by a Redis-compatible server.
type Store struct {
	client redis.UniversalClient
	prefix string
	logger *slog.Logger
}

// New connects to the Redis server identified by url. The prefix, when
// non-empty, namespaces every key the store touches.
func New(url string, prefix string, logger *slog.Logger) (*Store, error) {
	opts := redis.UniversalOptions{}

	parsed, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("store: invalid redis url: %w", err)
	}
	opts.DB = parsed.DB
	opts.Addrs = []string{parsed.Addr}
	opts.Username = parsed.Username
	opts.Password = parsed.Password
	opts.TLSConfig = parsed.TLSConfig

	logger.Debug("Created event store client",
		slog.String("addr", parsed.Addr),
		slog.Int("db", parsed.DB),
		slog.String("prefix", prefix))

	return &Store{
		client: redis.NewUniversalClient(&opts),
		prefix: prefix,
		logger: logger,
	}, nil
}

// Ping verifies connectivity to the underlying server.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return fmt.Sprintf("%s:%s", s.prefix, name)
}

// AppendEvent prepends one serialized record to the named list.
func (s *Store) AppendEvent(ctx context.Context, key string, record []byte) error {
	if err := s.client.LPush(ctx, s.key(key), record).Err(); err != nil {
		return fmt.Errorf("store: append to %s: %w", key, err)
	}
	return nil
}

// TrimToMostRecent drops every list entry beyond the n most recent.
func (s *Store) TrimToMostRecent(ctx context.Context, key string, n int64) error {
	if err := s.client.LTrim(ctx, s.key(key), 0, n-1).Err(); err != nil {
		return fmt.Errorf("store: trim %s: %w", key, err)
	}
	return nil
}

// AddToSet records a value in the named unique-value set.
func (s *Store) AddToSet(ctx context.Context, setKey string, value string) error {
	if err := s.client.SAdd(ctx, s.key(setKey), value).Err(); err != nil {
		return fmt.Errorf("store: add to set %s: %w", setKey, err)
	}
	return nil
}

// ReadAllRecords returns every raw record in the named list, most recent
// first. An absent key yields an empty slice.
func (s *Store) ReadAllRecords(ctx context.Context, key string) ([]string, error) {
	records, err := s.client.LRange(ctx, s.key(key), 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("store: read %s: %w", key, err)
	}
	return records, nil
}

// ReadSet returns the members of the named unique-value set. An absent key
// yields an empty slice.
func (s *Store) ReadSet(ctx context.Context, setKey string) ([]string, error) {
	members, err := s.client.SMembers(ctx, s.key(setKey)).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("store: read set %s: %w", setKey, err)
	}
	return members, nil
}
