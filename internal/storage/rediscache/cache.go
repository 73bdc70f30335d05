package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"newsdesk/internal/domain"
)

// clearScript deletes the key and announces it only if the key existed, so
// clearing an absent entry is silent.
var clearScript = redis.NewScript(`
if redis.call("DEL", KEYS[1]) == 1 then
	redis.call("PUBLISH", ARGV[1], ARGV[2])
	return 1
end
return 0
`)

// notice is broadcast on the change channel after every write that changes
// the key.
type notice struct {
	Origin string          `json:"origin"`
	Key    string          `json:"key"`
	Value  json.RawMessage `json:"value,omitempty"`
}

// Cache keeps user data under one Redis key and announces writes on a
// pub/sub channel so other instances sharing the key can react.
type Cache struct {
	rdb     *redis.Client
	key     string
	channel string
	origin  string
	pubsub  *redis.PubSub
	logger  *slog.Logger

	changes   chan domain.CacheChange
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func New(ctx context.Context, rdb *redis.Client, key string, logger *slog.Logger) (*Cache, error) {
	channel := key + ":changes"

	pubsub := rdb.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}

	c := &Cache{
		rdb:     rdb,
		key:     key,
		channel: channel,
		origin:  uuid.NewString(),
		pubsub:  pubsub,
		logger:  logger.With("component", "rediscache", "key", key),
		changes: make(chan domain.CacheChange, 16),
	}

	c.wg.Add(1)
	go c.loop()

	return c, nil
}

func (c *Cache) Get(ctx context.Context) (domain.UserData, error) {
	data, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", c.key, err)
	}
	if domain.IsEmptyUserData(data) {
		return nil, nil
	}
	return data, nil
}

func (c *Cache) Set(ctx context.Context, data domain.UserData) error {
	msg, err := json.Marshal(notice{Origin: c.origin, Key: c.key, Value: json.RawMessage(data)})
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.key, []byte(data), 0)
		pipe.Publish(ctx, c.channel, msg)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %s: %w", c.key, err)
	}
	return nil
}

func (c *Cache) Clear(ctx context.Context) error {
	msg, err := json.Marshal(notice{Origin: c.origin, Key: c.key})
	if err != nil {
		return fmt.Errorf("marshal notice: %w", err)
	}

	if err := clearScript.Run(ctx, c.rdb, []string{c.key}, c.channel, msg).Err(); err != nil {
		return fmt.Errorf("clear %s: %w", c.key, err)
	}
	return nil
}

func (c *Cache) Changes() <-chan domain.CacheChange {
	return c.changes
}

// Close stops the subscription. It does not close the Redis client.
func (c *Cache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.pubsub.Close()
		c.wg.Wait()
		close(c.changes)
	})
	return err
}

func (c *Cache) loop() {
	defer c.wg.Done()

	for msg := range c.pubsub.Channel() {
		var n notice
		if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
			c.logger.Warn("ignoring malformed change notice", "error", err)
			continue
		}
		if n.Origin == c.origin {
			continue
		}

		change := domain.CacheChange{Key: n.Key}
		if !domain.IsEmptyUserData(n.Value) {
			change.Value = domain.UserData(n.Value)
		}

		select {
		case c.changes <- change:
		default:
			c.logger.Warn("dropping cache change, consumer is behind")
		}
	}
}
