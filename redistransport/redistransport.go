// Package redistransport writes segments to Redis lists, one list per segment.
package redistransport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/trviph/linekeeper"
)

// Client is the minimal surface needed from a Redis client.
// [GoRedisClient] implements it on top of github.com/redis/go-redis/v9.
type Client interface {
	Del(ctx context.Context, key string) error
	RPush(ctx context.Context, key string, values ...interface{}) error
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// GoRedisClient adapts a go-redis client to [Client].
type GoRedisClient struct{ c redis.UniversalClient }

// NewGoRedisClient connects to the Redis server at addr, for example "127.0.0.1:6379".
func NewGoRedisClient(addr string) *GoRedisClient {
	return &GoRedisClient{c: redis.NewClient(&redis.Options{Addr: addr})}
}

// WrapClient adapts an existing go-redis client.
func WrapClient(c redis.UniversalClient) *GoRedisClient {
	return &GoRedisClient{c: c}
}

func (g *GoRedisClient) Del(ctx context.Context, key string) error {
	return g.c.Del(ctx, key).Err()
}

func (g *GoRedisClient) RPush(ctx context.Context, key string, values ...interface{}) error {
	return g.c.RPush(ctx, key, values...).Err()
}

func (g *GoRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	return g.c.Keys(ctx, pattern).Result()
}

// Ping checks that the server is reachable.
func (g *GoRedisClient) Ping(ctx context.Context) error {
	return g.c.Ping(ctx).Err()
}

// Close closes the underlying connection pool.
func (g *GoRedisClient) Close() error {
	return g.c.Close()
}

// Transport is a [linekeeper.Transport] storing every segment as a Redis list.
// Lines are kept in memory until Flush pushes them with a single RPUSH.
type Transport struct {
	client  Client
	timeout time.Duration

	key     string
	open    bool
	pending []interface{}
}

var (
	_ linekeeper.Transport  = (*Transport)(nil)
	_ linekeeper.Remover    = (*Transport)(nil)
	_ linekeeper.Discoverer = (*Transport)(nil)
)

// New returns a [Transport] bounding every Redis call by timeout.
// A non-positive timeout defaults to five seconds.
func New(client Client, timeout time.Duration) *Transport {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Transport{client: client, timeout: timeout}
}

// Open deletes the list called name so the segment starts empty.
func (t *Transport) Open(name string) error {
	if err := t.Close(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if err := t.client.Del(ctx, name); err != nil {
		return fmt.Errorf("failed to truncate %s, caused by %w", name, err)
	}
	t.key, t.open = name, true
	return nil
}

// WriteLine queues line for the next Flush.
func (t *Transport) WriteLine(line string) error {
	if !t.open {
		return linekeeper.ErrTransportClosed
	}
	t.pending = append(t.pending, line)
	return nil
}

// Flush appends the queued lines to the list.
func (t *Transport) Flush() error {
	if !t.open {
		return linekeeper.ErrTransportClosed
	}
	if len(t.pending) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	if err := t.client.RPush(ctx, t.key, t.pending...); err != nil {
		return fmt.Errorf("failed to push to %s, caused by %w", t.key, err)
	}
	t.pending = t.pending[:0]
	return nil
}

// Close flushes queued lines and forgets the current list.
func (t *Transport) Close() error {
	if !t.open {
		return nil
	}
	err := t.Flush()
	t.key, t.open, t.pending = "", false, nil
	return err
}

// Remove deletes the list called name.
func (t *Transport) Remove(name string) error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	return t.client.Del(ctx, name)
}

// Discover returns the keys matching pattern in lexical order, Redis keeps no creation time.
func (t *Transport) Discover(pattern string) ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()
	keys, err := t.client.Keys(ctx, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s, caused by %w", pattern, err)
	}
	sort.Strings(keys)
	return keys, nil
}

// ErrNoServer is returned by [Dial] when the server does not answer.
var ErrNoServer = errors.New("redis server is not reachable")

// Dial connects to addr and checks the connection.
func Dial(ctx context.Context, addr string) (*GoRedisClient, error) {
	c := NewGoRedisClient(addr)
	if err := c.Ping(ctx); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%w at %s, caused by %v", ErrNoServer, addr, err)
	}
	return c, nil
}
