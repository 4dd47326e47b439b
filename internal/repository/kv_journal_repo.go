package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// KVJournalRepo はキーバリューストアを使用した日記リポジトリ。
type KVJournalRepo struct {
	store kvstore.Store
}

// NewKVJournalRepo はKVJournalRepoを生成する。
func NewKVJournalRepo(store kvstore.Store) *KVJournalRepo {
	return &KVJournalRepo{store: store}
}

// Create は日記エントリを保存する。
func (r *KVJournalRepo) Create(ctx context.Context, entry *model.JournalEntry) error {
	key, err := journalKey(entry.UserID, entry.ID)
	if err != nil {
		return err
	}
	if err := kvstore.PutJSON(ctx, r.store, key, entry); err != nil {
		return fmt.Errorf("failed to save journal entry: %w", err)
	}
	return nil
}

// ListByOwner はユーザーの全エントリを返す。
func (r *KVJournalRepo) ListByOwner(ctx context.Context, userID string) ([]model.JournalEntry, error) {
	prefix, err := journalKey(userID, "")
	if err != nil {
		return nil, err
	}
	entries, err := kvstore.CollectJSON[model.JournalEntry](ctx, r.store, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	return entries, nil
}

// compile-time interface check
var _ JournalRepository = (*KVJournalRepo)(nil)
