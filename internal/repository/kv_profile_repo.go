package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// KVProfileRepo はキーバリューストアを使用したプロフィールリポジトリ。
type KVProfileRepo struct {
	store kvstore.Store
}

// NewKVProfileRepo はKVProfileRepoを生成する。
func NewKVProfileRepo(store kvstore.Store) *KVProfileRepo {
	return &KVProfileRepo{store: store}
}

// FindByID は指定ユーザーのプロフィールを取得する。見つからない場合はnilを返す。
func (r *KVProfileRepo) FindByID(ctx context.Context, userID string) (*model.Profile, error) {
	key, err := userKey(userID, "profile")
	if err != nil {
		return nil, err
	}
	p, found, err := kvstore.GetJSON[model.Profile](ctx, r.store, key)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &p, nil
}

// Save はプロフィールを保存する。
func (r *KVProfileRepo) Save(ctx context.Context, profile *model.Profile) error {
	key, err := userKey(profile.UserID, "profile")
	if err != nil {
		return err
	}
	if err := kvstore.PutJSON(ctx, r.store, key, profile); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// DeleteByID はプロフィールを削除する。
func (r *KVProfileRepo) DeleteByID(ctx context.Context, userID string) error {
	key, err := userKey(userID, "profile")
	if err != nil {
		return err
	}
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ProfileRepository = (*KVProfileRepo)(nil)
