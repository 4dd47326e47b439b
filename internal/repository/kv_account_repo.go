package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// KVAccountRepo はキーバリューストアを使用したアカウントディレクトリ。
type KVAccountRepo struct {
	store kvstore.Store
}

// NewKVAccountRepo はKVAccountRepoを生成する。
func NewKVAccountRepo(store kvstore.Store) *KVAccountRepo {
	return &KVAccountRepo{store: store}
}

// Reserve はユーザー名をユーザーIDに割り当てる。
func (r *KVAccountRepo) Reserve(ctx context.Context, name, userID string) error {
	if err := model.ValidateUserID(userID); err != nil {
		return err
	}
	existing, found, err := r.Resolve(ctx, name)
	if err != nil {
		return err
	}
	if found && existing != userID {
		return model.NewNameTakenError(name)
	}

	if err := kvstore.PutJSON(ctx, r.store, usernameKey(name), userID); err != nil {
		return fmt.Errorf("failed to reserve username: %w", err)
	}
	return nil
}

// Resolve はユーザー名に対応するユーザーIDを返す。
func (r *KVAccountRepo) Resolve(ctx context.Context, name string) (string, bool, error) {
	userID, found, err := kvstore.GetJSON[string](ctx, r.store, usernameKey(name))
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve username: %w", err)
	}
	return userID, found, nil
}

// Release はユーザー名の割り当てを解除する。
func (r *KVAccountRepo) Release(ctx context.Context, name, userID string) error {
	existing, found, err := r.Resolve(ctx, name)
	if err != nil {
		return err
	}
	if !found || existing != userID {
		return nil
	}
	if err := r.store.Delete(ctx, usernameKey(name)); err != nil {
		return fmt.Errorf("failed to release username: %w", err)
	}
	return nil
}

// compile-time interface check
var _ AccountRepository = (*KVAccountRepo)(nil)
