package kvstore

import (
	"context"
	"iter"
	"strings"
)

// DefaultNamespace はアプリケーションデータのキー接頭辞。
const DefaultNamespace = "moodglow:"

// NamespacedStore は全てのキーに固定の接頭辞を付与するStoreラッパー。
// Scanで返すキーからは接頭辞を取り除く。
type NamespacedStore struct {
	inner  Store
	prefix string
}

// WithNamespace はinnerをprefixで名前空間化したStoreを返す。
func WithNamespace(inner Store, prefix string) *NamespacedStore {
	return &NamespacedStore{inner: inner, prefix: prefix}
}

// Set はキーに値を保存する。
func (s *NamespacedStore) Set(ctx context.Context, key string, value []byte) error {
	return s.inner.Set(ctx, s.prefix+key, value)
}

// Get はキーの値を返す。
func (s *NamespacedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

// Delete はキーを削除する。
func (s *NamespacedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Scan はprefixで始まるキーを列挙する。
func (s *NamespacedStore) Scan(ctx context.Context, prefix string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for e, err := range s.inner.Scan(ctx, s.prefix+prefix) {
			if err != nil {
				yield(Entry{}, err)
				return
			}
			e.Key = strings.TrimPrefix(e.Key, s.prefix)
			if !yield(e, nil) {
				return
			}
		}
	}
}

var _ Store = (*NamespacedStore)(nil)
