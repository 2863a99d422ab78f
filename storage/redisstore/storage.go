// Package redisstore keeps session values in Redis, one hash per session.
package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const opTimeout = 2 * time.Second

// Client returns a redis client with short timeouts.
func Client(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  1 * time.Second,
		WriteTimeout: 1 * time.Second,
	})
}

// Healthy verifies redis connectivity.
func Healthy(ctx context.Context, rdb redis.UniversalClient) bool {
	return rdb != nil && rdb.Ping(ctx).Err() == nil
}

// Storage is the session storage of one session id. Reads and writes refresh the expiry of
// the whole hash, so a session expires ttl after its last use.
type Storage struct {
	rdb redis.UniversalClient
	key string
	ttl time.Duration
}

func New(rdb redis.UniversalClient, prefix, sessionID string, ttl time.Duration) *Storage {
	return &Storage{rdb: rdb, key: prefix + ":" + sessionID, ttl: ttl}
}

func (s *Storage) Key() string { return s.key }

func (s *Storage) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	var get *redis.StringCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, s.key, key)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	if err != nil && err != redis.Nil {
		return "", false, errors.Wrapf(err, "redis HGET %s", s.key)
	}
	v, err := get.Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "redis HGET %s", s.key)
	}
	return v, true, nil
}

func (s *Storage) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key, key, value)
		if s.ttl > 0 {
			pipe.Expire(ctx, s.key, s.ttl)
		}
		return nil
	})
	return errors.Wrapf(err, "redis HSET %s", s.key)
}

func (s *Storage) Remove(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return errors.Wrapf(s.rdb.HDel(ctx, s.key, keys...).Err(), "redis HDEL %s", s.key)
}
