package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// KVStreakRepo はキーバリューストアを使用した連続記録リポジトリ。
type KVStreakRepo struct {
	store kvstore.Store
}

// NewKVStreakRepo はKVStreakRepoを生成する。
func NewKVStreakRepo(store kvstore.Store) *KVStreakRepo {
	return &KVStreakRepo{store: store}
}

// Find はユーザーの連続記録を返す。未保存の場合はゼロ値を返す。
func (r *KVStreakRepo) Find(ctx context.Context, userID string) (model.Streak, error) {
	key, err := userKey(userID, "streak")
	if err != nil {
		return model.Streak{}, err
	}
	s, _, err := kvstore.GetJSON[model.Streak](ctx, r.store, key)
	if err != nil {
		return model.Streak{}, fmt.Errorf("failed to find streak: %w", err)
	}
	return s, nil
}

// Save は連続記録を保存する。
func (r *KVStreakRepo) Save(ctx context.Context, userID string, streak model.Streak) error {
	key, err := userKey(userID, "streak")
	if err != nil {
		return err
	}
	if err := kvstore.PutJSON(ctx, r.store, key, streak); err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}

// compile-time interface check
var _ StreakRepository = (*KVStreakRepo)(nil)
