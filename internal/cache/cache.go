// Package cache wraps the shared Redis client: unread counters, the
// capped inbox/chat lists, and the per-user live stream. Grounded on
// relay-core/src/redis.rs (pool creation, URL masking) adapted to
// github.com/redis/go-redis/v9, the idiomatic ecosystem client for
// this key design — no repo in the retrieval pack wires Redis itself,
// so this is a necessity pick (see DESIGN.md).
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache struct {
	client *redis.Client
}

func Open(ctx context.Context, url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Cache{client: client}, nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func unreadKey(user string) string              { return fmt.Sprintf("UNREAD:%s", user) }
func unreadPlatformKey(user, platform string) string { return fmt.Sprintf("UNREAD:%s:%s", user, platform) }
func inboxKey(user string) string               { return fmt.Sprintf("INBOX:%s", user) }
func chatKey(conversationID string) string      { return fmt.Sprintf("CHAT:%s", conversationID) }
func streamKey(user string) string              { return fmt.Sprintf("STREAM:CHAT:%s", user) }

// IncrUnread bumps the global per-user counter and, when platform is
// non-empty, the per-platform counter too (§4.2 step 4).
func (c *Cache) IncrUnread(ctx context.Context, user, platform string) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, unreadKey(user))
	if platform != "" {
		pipe.Incr(ctx, unreadPlatformKey(user, platform))
	}
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("incr unread for %s: %w", user, err)
	}
	return nil
}

// DecrUnread floors at zero (§8 property 6: "non-negative floor").
func (c *Cache) DecrUnread(ctx context.Context, user string) error {
	n, err := c.client.Decr(ctx, unreadKey(user)).Result()
	if err != nil {
		return fmt.Errorf("decr unread for %s: %w", user, err)
	}
	if n < 0 {
		c.client.Set(ctx, unreadKey(user), 0, 0)
	}
	return nil
}

func (c *Cache) GetUnread(ctx context.Context, user string) (int64, error) {
	n, err := c.client.Get(ctx, unreadKey(user)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get unread for %s: %w", user, err)
	}
	return n, nil
}

func (c *Cache) GetUnreadByPlatform(ctx context.Context, user, platform string) (int64, error) {
	n, err := c.client.Get(ctx, unreadPlatformKey(user, platform)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get unread for %s/%s: %w", user, platform, err)
	}
	return n, nil
}

// PushInbox appends to the capped INBOX:{user} list (LPUSH+LTRIM 0 99).
func (c *Cache) PushInbox(ctx context.Context, user string, payload []byte) error {
	key := inboxKey(user)
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, 99)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("push inbox for %s: %w", user, err)
	}
	return nil
}

// PushChat appends to the capped CHAT:{conversation_id} list
// (LPUSH+LTRIM 0 49), per §4.3 step 6.
func (c *Cache) PushChat(ctx context.Context, conversationID string, payload []byte) error {
	key := chatKey(conversationID)
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, payload)
	pipe.LTrim(ctx, key, 0, 49)
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("push chat for %s: %w", conversationID, err)
	}
	return nil
}

// AppendStream XADDs to the recipient's live stream with an
// auto-generated id (§4.3 step 7).
func (c *Cache) AppendStream(ctx context.Context, user string, fields map[string]interface{}) error {
	err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(user),
		ID:     "*",
		Values: fields,
	}).Err()
	if err != nil {
		return fmt.Errorf("append stream for %s: %w", user, err)
	}
	return nil
}

// StreamEntry is one XRANGE/XREAD result, carrying the id needed to
// resume a blocking read.
type StreamEntry struct {
	ID     string
	Fields map[string]interface{}
}

// ReadStream blocks up to block waiting for entries newer than
// lastID (§4.5's "1s block window"); lastID="0" on first read.
func (c *Cache) ReadStream(ctx context.Context, user, lastID string, block time.Duration) ([]StreamEntry, error) {
	res, err := c.client.XRead(ctx, &redis.XReadArgs{
		Streams: []string{streamKey(user), lastID},
		Block:   block,
		Count:   100,
	}).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stream for %s: %w", user, err)
	}
	if len(res) == 0 {
		return nil, nil
	}
	out := make([]StreamEntry, 0, len(res[0].Messages))
	for _, m := range res[0].Messages {
		out = append(out, StreamEntry{ID: m.ID, Fields: m.Values})
	}
	return out, nil
}
