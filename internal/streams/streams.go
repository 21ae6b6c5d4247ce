package streams

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"travel-planner/internal/config"
)

const (
	FlightSearchRequested = "search:flights:requested"
	HotelSearchRequested  = "search:hotels:requested"

	// Streams are short-lived; expiry is refreshed on every append so an
	// abandoned search cleans itself up.
	streamTTL = 30 * time.Minute

	readBlock = 5 * time.Second
	readCount = 10
)

func SearchResultStream(searchID string) string {
	return "search:results:" + searchID
}

func AlertStream(userID string) string {
	return "alerts:user:" + userID
}

// Connect opens a Redis client and verifies the connection.
func Connect(ctx context.Context, cfg config.Redis) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}
	return rdb, nil
}

// Bus wraps the stream operations both services share.
type Bus struct {
	rdb *redis.Client
}

func NewBus(rdb *redis.Client) *Bus {
	return &Bus{rdb: rdb}
}

func (b *Bus) Add(ctx context.Context, stream string, values map[string]any) error {
	if err := b.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: values,
	}).Err(); err != nil {
		return err
	}
	b.rdb.Expire(ctx, stream, streamTTL)
	return nil
}

// Read returns entries after lastID without a consumer group, so every
// reader of the stream sees the full sequence.
func (b *Bus) Read(ctx context.Context, stream, lastID string) ([]redis.XStream, error) {
	return b.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Block:   readBlock,
		Count:   readCount,
	}).Result()
}

func (b *Bus) ReadGroup(ctx context.Context, stream, group, consumer string) ([]redis.XStream, error) {
	return b.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    group,
		Consumer: consumer,
		Streams:  []string{stream, ">"},
		Block:    readBlock,
		Count:    readCount,
	}).Result()
}

func (b *Bus) Ack(ctx context.Context, stream, group, messageID string) error {
	return b.rdb.XAck(ctx, stream, group, messageID).Err()
}

func (b *Bus) Delete(ctx context.Context, stream string) error {
	return b.rdb.Del(ctx, stream).Err()
}

// CreateGroup creates a consumer group, creating the stream when absent.
// Re-creating an existing group is not an error.
func (b *Bus) CreateGroup(ctx context.Context, stream, group, start string) error {
	err := b.rdb.XGroupCreateMkStream(ctx, stream, group, start).Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	if err != nil {
		return err
	}
	// MkStream may have created an empty stream that no Add ever touches;
	// give it the same expiry so it cannot linger forever.
	b.rdb.Expire(ctx, stream, streamTTL)
	return nil
}

// IsNoGroup reports whether err is Redis rejecting a group read because the
// stream or its consumer group no longer exists, e.g. after expiry.
func IsNoGroup(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "NOGROUP")
}
