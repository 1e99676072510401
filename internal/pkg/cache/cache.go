package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/ds124wfegd/item-analyzer/internal/entity"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "item-analysis:"

type Options struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewRedisClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	})
}

// ResultCache keeps validated extraction results for identical composites
// for a bounded time, so a repeated upload does not hit the backend again.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	return &ResultCache{
		client: client,
		ttl:    ttl,
	}
}

// Key is derived from the encoded composite, so the same photos in the same
// order map to the same entry.
func Key(payload []byte) string {
	sum := sha256.Sum256(payload)
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (r *ResultCache) Get(ctx context.Context, key string) (*entity.ItemRecord, bool, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var record entity.ItemRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (r *ResultCache) Set(ctx context.Context, key string, record *entity.ItemRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *ResultCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *ResultCache) Close() error {
	return r.client.Close()
}
