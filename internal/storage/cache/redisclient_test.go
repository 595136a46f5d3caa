package cache

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestRedisClient_DelWithoutKeys(t *testing.T) {
	// Nothing listens here; an empty Del must not reach the server.
	c := &RedisClient{rdb: redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})}
	t.Cleanup(func() { _ = c.Close() })

	assert.NoError(t, c.Del(context.Background()))
	assert.Error(t, c.Del(context.Background(), "notify:center:app:pending"))
}
