package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// KVContactsRepo はキーバリューストアを使用した緊急連絡先リポジトリ。
type KVContactsRepo struct {
	store kvstore.Store
}

// NewKVContactsRepo はKVContactsRepoを生成する。
func NewKVContactsRepo(store kvstore.Store) *KVContactsRepo {
	return &KVContactsRepo{store: store}
}

// Replace は連絡先リスト全体を置き換える。
func (r *KVContactsRepo) Replace(ctx context.Context, record *model.ContactsRecord) error {
	key, err := userKey(record.UserID, "contacts")
	if err != nil {
		return err
	}
	if err := kvstore.PutJSON(ctx, r.store, key, record); err != nil {
		return fmt.Errorf("failed to save contacts: %w", err)
	}
	return nil
}

// Find はユーザーの連絡先リストを返す。
func (r *KVContactsRepo) Find(ctx context.Context, userID string) (*model.ContactsRecord, error) {
	key, err := userKey(userID, "contacts")
	if err != nil {
		return nil, err
	}
	rec, found, err := kvstore.GetJSON[model.ContactsRecord](ctx, r.store, key)
	if err != nil {
		return nil, fmt.Errorf("failed to find contacts: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// compile-time interface check
var _ ContactsRepository = (*KVContactsRepo)(nil)
