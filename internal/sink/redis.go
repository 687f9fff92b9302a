package sink

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisSink：RPUSH 到列表键，单条命令即单行，天然不交错
type RedisSink struct {
	rc  *redis.Client
	key string
}

func NewRedis(rc *redis.Client, key string) *RedisSink {
	return &RedisSink{rc: rc, key: key}
}

func (s *RedisSink) Append(ctx context.Context, line string) error {
	return s.rc.RPush(ctx, s.key, line).Err()
}

func (s *RedisSink) Close() error { return s.rc.Close() }
