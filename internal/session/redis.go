package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisDriver stores each session key as a plain redis string under
// "session:<namespace>:<key>".
type RedisDriver struct {
	client *redis.Client
	prefix string
}

var _ Driver = (*RedisDriver)(nil)

func NewRedisDriver(client *redis.Client, namespace string) *RedisDriver {
	return &RedisDriver{client: client, prefix: "session:" + namespace + ":"}
}

// OpenRedisDriver connects and pings the server before returning.
func OpenRedisDriver(ctx context.Context, addr string, password string, db int, namespace string) (*RedisDriver, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisDriver(client, namespace), nil
}

func (d *RedisDriver) Load(ctx context.Context, key string) (string, bool, error) {
	value, err := d.client.Get(ctx, d.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (d *RedisDriver) Save(ctx context.Context, key string, value string) error {
	return d.client.Set(ctx, d.prefix+key, value, 0).Err()
}

func (d *RedisDriver) Delete(ctx context.Context, key string) error {
	return d.client.Del(ctx, d.prefix+key).Err()
}

func (d *RedisDriver) Close() error {
	return d.client.Close()
}
