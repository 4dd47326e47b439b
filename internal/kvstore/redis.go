package kvstore

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/redis/go-redis/v9"
)

// redisScanCount はSCAN 1回あたりのヒント件数。
const redisScanCount = 100

// RedisStore はRedisを使用したStore実装。
// 前方一致列挙にはSCAN MATCHを使用する（KEYSは使用しない）。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore はRedisStoreを生成する。
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// NewRedisClient はredis://形式のURLからクライアントを生成する。
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// Set はキーに値を保存する。有効期限は設定しない。
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set redis key: %w", err)
	}
	return nil
}

// Get はキーの値を返す。
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get redis key: %w", err)
	}
	return v, true, nil
}

// Delete はキーを削除する。
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to delete redis key: %w", err)
	}
	return nil
}

// Scan はSCANカーソルでprefixに一致するキーを列挙する。
// SCANは同じキーを複数回返しうるため、既出のキーは読み飛ばす。
// 走査中に削除されたキーも読み飛ばす。
func (s *RedisStore) Scan(ctx context.Context, prefix string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		seen := make(map[string]struct{})
		it := s.client.Scan(ctx, 0, redisMatchPattern(prefix), redisScanCount).Iterator()
		for it.Next(ctx) {
			key := it.Val()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}

			value, found, err := s.Get(ctx, key)
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !found {
				continue
			}
			if !yield(Entry{Key: key, Value: value}, nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(Entry{}, fmt.Errorf("failed to scan redis keys: %w", err))
		}
	}
}

// Ping はRedis接続を確認する。ヘルスチェックで使用する。
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// redisMatchPattern はglobのメタ文字をエスケープした前方一致パターンを返す。
func redisMatchPattern(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`, `]`, `\]`)
	return r.Replace(prefix) + "*"
}

var _ Store = (*RedisStore)(nil)
