package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisURL = "redis://localhost:6379"

// RedisStorage implements Store on Redis string keys.
// Content and metadata are written together in one MULTI/EXEC.
type RedisStorage struct {
	client *redis.Client
}

type redisMeta struct {
	ContentType string            `json:"content_type,omitempty"`
	SizeBytes   int64             `json:"size_bytes"`
	Custom      map[string]string `json:"custom,omitempty"`
}

// NewRedisStorage connects to Redis and verifies the connection
func NewRedisStorage(url string) (*RedisStorage, error) {
	if url == "" {
		url = defaultRedisURL
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStorage{client: client}, nil
}

// Close closes the underlying Redis client
func (s *RedisStorage) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

// GetReader returns the object content
func (s *RedisStorage) GetReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	data, err := s.client.Get(ctx, objectKey(bucket, key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
		return nil, fmt.Errorf("get %s/%s: %w", bucket, key, err)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Exists checks the content key
func (s *RedisStorage) Exists(ctx context.Context, bucket, key string) (bool, error) {
	n, err := s.client.Exists(ctx, objectKey(bucket, key)).Result()
	if err != nil {
		return false, fmt.Errorf("exists %s/%s: %w", bucket, key, err)
	}
	return n > 0, nil
}

// GetMetadata returns the stored metadata record
func (s *RedisStorage) GetMetadata(ctx context.Context, bucket, key string) (*Metadata, error) {
	pipe := s.client.Pipeline()
	sizeCmd := pipe.StrLen(ctx, objectKey(bucket, key))
	metaCmd := pipe.Get(ctx, metaKey(bucket, key))
	_, _ = pipe.Exec(ctx)

	size, err := sizeCmd.Result()
	if err != nil {
		return nil, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}
	// STRLEN answers 0 for a missing key
	if size == 0 {
		ok, err := s.Exists(ctx, bucket, key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
		}
	}

	md := &Metadata{Size: size, Custom: map[string]string{}}
	raw, err := metaCmd.Bytes()
	switch {
	case err == nil:
		var rm redisMeta
		if err := json.Unmarshal(raw, &rm); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
		md.ContentType = rm.ContentType
		for k, v := range rm.Custom {
			md.Custom[strings.ToLower(k)] = v
		}
	case !errors.Is(err, redis.Nil):
		return nil, fmt.Errorf("get metadata %s/%s: %w", bucket, key, err)
	}
	return md, nil
}

// Put stores content and metadata atomically without expiry
func (s *RedisStorage) Put(ctx context.Context, bucket, key string, r io.Reader, meta Metadata) error {
	content, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read content: %w", err)
	}
	payload, err := json.Marshal(redisMeta{
		ContentType: meta.ContentType,
		SizeBytes:   int64(len(content)),
		Custom:      meta.Custom,
	})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, objectKey(bucket, key), content, 0)
	pipe.Set(ctx, metaKey(bucket, key), payload, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put %s/%s: %w", bucket, key, err)
	}
	return nil
}

// URI returns a redis:// location
func (s *RedisStorage) URI(bucket, key string) string {
	return "redis://" + bucket + "/" + key
}

func objectKey(bucket, key string) string {
	return "obj:data:" + bucket + "/" + key
}

func metaKey(bucket, key string) string {
	return "obj:meta:" + bucket + "/" + key
}
