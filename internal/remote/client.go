// Package remote implements the cloud-store client.
//
// Records live in one Redis hash per identity per collection:
//
//	user:{identity}:{collection}  field = record key, value = JSON
//
// HGetAll gives the full-collection read used by login merge, and
// TxPipelined gives the all-or-nothing batched write used by merge
// upload and queue drain. The shared question catalog lives in a
// single unpartitioned hash.
//
// The client never requires connectivity at construction time; every
// failure is classified per call into a RemoteError so callers can
// queue the write and move on.
package remote

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis connection with per-identity document
// operations.
type Client struct {
	rdb    *redis.Client
	logger *log.Logger
}

// New creates a client from a redis:// URL. The connection is lazy:
// a bad address surfaces as a RemoteError on first use, not here.
func New(redisURL string, logger *log.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return NewWithClient(redis.NewClient(opts), logger), nil
}

// NewWithClient creates a client from an existing Redis connection.
// If logger is nil, a default logger writing to stderr is used.
func NewWithClient(rdb *redis.Client, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(os.Stderr, "[remote] ", log.LstdFlags)
	}
	return &Client{rdb: rdb, logger: logger}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks reachability. Used by the connectivity prober.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return c.wrap("ping", err)
	}
	return nil
}

func (c *Client) key(identity, collection string) string {
	return "user:" + identity + ":" + collection
}

// ReadAll returns every record in the identity's collection as a map
// of record key to raw JSON. An absent collection is an empty map.
func (c *Client) ReadAll(ctx context.Context, identity, collection string) (map[string]string, error) {
	vals, err := c.rdb.HGetAll(ctx, c.key(identity, collection)).Result()
	if err != nil {
		return nil, c.wrap("read all "+collection, err)
	}
	return vals, nil
}

// ReadOne returns one record's raw JSON and whether it exists.
func (c *Client) ReadOne(ctx context.Context, identity, collection, key string) (string, bool, error) {
	val, err := c.rdb.HGet(ctx, c.key(identity, collection), key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, c.wrap(fmt.Sprintf("read %s/%s", collection, key), err)
	}
	return val, true, nil
}

// WriteOne stores one record.
func (c *Client) WriteOne(ctx context.Context, identity, collection, key, value string) error {
	if err := c.rdb.HSet(ctx, c.key(identity, collection), key, value).Err(); err != nil {
		return c.wrap(fmt.Sprintf("write %s/%s", collection, key), err)
	}
	return nil
}

// WriteBatch stores every entry in one atomic MULTI/EXEC round trip.
// A partial failure is a full failure: either every entry lands or
// the caller must treat none as delivered.
func (c *Client) WriteBatch(ctx context.Context, identity, collection string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		key := c.key(identity, collection)
		for field, value := range values {
			pipe.HSet(ctx, key, field, value)
		}
		return nil
	})
	if err != nil {
		return c.wrap(fmt.Sprintf("write batch %s (%d records)", collection, len(values)), err)
	}
	return nil
}

// Delete removes one record. Removing an absent record is not an
// error.
func (c *Client) Delete(ctx context.Context, identity, collection, key string) error {
	if err := c.rdb.HDel(ctx, c.key(identity, collection), key).Err(); err != nil {
		return c.wrap(fmt.Sprintf("delete %s/%s", collection, key), err)
	}
	return nil
}

// ReadCatalog returns the shared question catalog (id -> raw JSON).
// The catalog is reference data owned by no identity.
func (c *Client) ReadCatalog(ctx context.Context, collection string) (map[string]string, error) {
	vals, err := c.rdb.HGetAll(ctx, "catalog:"+collection).Result()
	if err != nil {
		return nil, c.wrap("read catalog "+collection, err)
	}
	return vals, nil
}

// wrap classifies a Redis failure into a RemoteError. Authentication
// and permission replies get their own kinds; everything else,
// including timeouts and dial failures, is transient.
func (c *Client) wrap(op string, err error) error {
	kind := KindTransient
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NOAUTH") || strings.Contains(msg, "WRONGPASS"):
		kind = KindUnauthenticated
	case strings.Contains(msg, "NOPERM") || strings.Contains(msg, "READONLY"):
		kind = KindPermission
	}
	return &RemoteError{Kind: kind, Op: op, Err: err}
}
