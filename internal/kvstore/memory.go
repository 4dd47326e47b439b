package kvstore

import (
	"context"
	"iter"
	"strings"
	"sync"
)

// MemoryStore はプロセス内マップを使用したStore実装。
// テストおよび単一プロセス構成で使用する。
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryStore は空のMemoryStoreを生成する。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

// Set はキーに値を保存する。
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

// Get はキーの値を返す。
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

// Delete はキーを削除する。
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// Scan はprefixで始まるキーを列挙する。
// 列挙開始時点のスナップショットを返すため、yield中の書き込みでデッドロックしない。
func (s *MemoryStore) Scan(ctx context.Context, prefix string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		s.mu.RLock()
		entries := make([]Entry, 0)
		for k, v := range s.data {
			if strings.HasPrefix(k, prefix) {
				entries = append(entries, Entry{Key: k, Value: append([]byte(nil), v...)})
			}
		}
		s.mu.RUnlock()

		for _, e := range entries {
			if err := ctx.Err(); err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// Len は保存されているキー数を返す。
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// compile-time interface check
var _ Store = (*MemoryStore)(nil)
