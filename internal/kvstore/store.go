// Package kvstore は文字列キーと値を永続化するキーバリューストアを提供する。
//
// 全ての値はJSONとして保存される想定で、上位のリポジトリ層は
// PutJSON / GetJSON / ScanJSON を通して型付きで読み書きする。
// 複数キーにまたがるトランザクションは提供しない。
package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
)

// Entry はScanで列挙される1件のキーと値。
type Entry struct {
	Key   string
	Value []byte
}

// Store はキーバリューストアのインターフェース。
type Store interface {
	// Set はキーに値を保存する。既存の値は置き換えられる。
	Set(ctx context.Context, key string, value []byte) error

	// Get はキーの値を返す。存在しない場合はfound=falseを返す。
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Delete はキーを削除する。存在しない場合もエラーにしない。
	Delete(ctx context.Context, key string) error

	// Scan はprefixで始まる全キーを遅延列挙する。順序は規定しない。
	// 呼び出すたびに現在の状態を再走査する。
	Scan(ctx context.Context, prefix string) iter.Seq2[Entry, error]
}

// PutJSON はvをJSONにエンコードして保存する。
func PutJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value for %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

// GetJSON はキーの値をTとしてデコードして返す。
func GetJSON[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var v T
	b, found, err := s.Get(ctx, key)
	if err != nil || !found {
		return v, found, err
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, false, fmt.Errorf("failed to unmarshal value for %s: %w", key, err)
	}
	return v, true, nil
}

// ScanJSON はprefixで始まる全キーの値をTとしてデコードしながら列挙する。
func ScanJSON[T any](ctx context.Context, s Store, prefix string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for e, err := range s.Scan(ctx, prefix) {
			var v T
			if err != nil {
				yield(v, err)
				return
			}
			if err := json.Unmarshal(e.Value, &v); err != nil {
				yield(v, fmt.Errorf("failed to unmarshal value for %s: %w", e.Key, err))
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// CollectJSON はScanJSONの結果をスライスにまとめて返す。
func CollectJSON[T any](ctx context.Context, s Store, prefix string) ([]T, error) {
	var out []T
	for v, err := range ScanJSON[T](ctx, s, prefix) {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
