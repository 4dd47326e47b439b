package kvstore

import (
	"context"
	"iter"
	"time"
)

// Observer はストア操作の計測結果を受け取るインターフェース。
// metrics.Collectorが実装する。
type Observer interface {
	ObserveStoreOp(op string, duration time.Duration, err error)
}

// InstrumentedStore は各操作の所要時間とエラーをObserverに通知するStoreラッパー。
type InstrumentedStore struct {
	inner    Store
	observer Observer
}

// Instrument はinnerの操作を計測するStoreを返す。
func Instrument(inner Store, observer Observer) *InstrumentedStore {
	return &InstrumentedStore{inner: inner, observer: observer}
}

// Set はキーに値を保存する。
func (s *InstrumentedStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value)
	s.observer.ObserveStoreOp("set", time.Since(start), err)
	return err
}

// Get はキーの値を返す。
func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	v, found, err := s.inner.Get(ctx, key)
	s.observer.ObserveStoreOp("get", time.Since(start), err)
	return v, found, err
}

// Delete はキーを削除する。
func (s *InstrumentedStore) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := s.inner.Delete(ctx, key)
	s.observer.ObserveStoreOp("delete", time.Since(start), err)
	return err
}

// Scan はprefixで始まるキーを列挙する。列挙完了までを1回の操作として計測する。
func (s *InstrumentedStore) Scan(ctx context.Context, prefix string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		start := time.Now()
		var scanErr error
		defer func() {
			s.observer.ObserveStoreOp("scan", time.Since(start), scanErr)
		}()
		for e, err := range s.inner.Scan(ctx, prefix) {
			if err != nil {
				scanErr = err
			}
			if !yield(e, err) {
				return
			}
		}
	}
}

var _ Store = (*InstrumentedStore)(nil)
