package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-redis/redis/v8"
	pkgerrors "github.com/pkg/errors"
)

const redisScanBatch = 100

// RedisStore persists slots in a shared Redis instance so state survives
// process restarts. All keys live under a common namespace so Clear only
// touches this application's slots.
type RedisStore struct {
	inner *redis.Client
	codec redisKeyCodec
}

// GetRedisStore connects to the Redis instance specified by
// REDIS_HOST/REDIS_PORT/REDIS_PASSWD and pings it once before returning.
func GetRedisStore() (*RedisStore, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", os.Getenv("REDIS_HOST"), os.Getenv("REDIS_PORT")),
		Password: os.Getenv("REDIS_PASSWD"),
		DB:       0, // use default DB
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		return nil, err
	}
	return &RedisStore{
		inner: redisClient,
		codec: redisKeyCodec{namespace: "instagram_store", delimiter: "__"},
	}, nil
}

type redisKeyCodec struct {
	namespace string
	delimiter string
}

func (c redisKeyCodec) Validate(key string) bool {
	return key != "" && !strings.Contains(key, c.delimiter)
}

func (c redisKeyCodec) Encode(key string) (string, error) {
	if !c.Validate(key) {
		return "", fmt.Errorf("invalid key: %s", key)
	}
	return fmt.Sprintf("%s%s%s", c.namespace, c.delimiter, key), nil
}

// Prefix matches every key Encode can produce.
func (c redisKeyCodec) Prefix() string {
	return c.namespace + c.delimiter + "*"
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	encoded, err := s.codec.Encode(key)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return pkgerrors.Wrapf(err, "fail to serialize value for key %s", key)
	}
	return s.inner.Set(ctx, encoded, data, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string, dest interface{}) error {
	encoded, err := s.codec.Encode(key)
	if err != nil {
		return err
	}
	data, err := s.inner.Get(ctx, encoded).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "fail to read key %s", key)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return pkgerrors.Wrapf(err, "fail to deserialize value for key %s", key)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	encoded, err := s.codec.Encode(key)
	if err != nil {
		return err
	}
	return s.inner.Del(ctx, encoded).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	var cursor uint64
	for {
		keys, next, err := s.inner.Scan(ctx, cursor, s.codec.Prefix(), redisScanBatch).Result()
		if err != nil {
			return pkgerrors.Wrap(err, "fail to scan namespace")
		}
		if len(keys) > 0 {
			if err := s.inner.Del(ctx, keys...).Err(); err != nil {
				return pkgerrors.Wrap(err, "fail to delete scanned keys")
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
