package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// KVPeriodRepo はキーバリューストアを使用した生理記録リポジトリ。
type KVPeriodRepo struct {
	store kvstore.Store
}

// NewKVPeriodRepo はKVPeriodRepoを生成する。
func NewKVPeriodRepo(store kvstore.Store) *KVPeriodRepo {
	return &KVPeriodRepo{store: store}
}

// Save は生理記録を保存する。
func (r *KVPeriodRepo) Save(ctx context.Context, record *model.PeriodRecord) error {
	key, err := periodKey(record.UserID, record.ID)
	if err != nil {
		return err
	}
	if err := kvstore.PutJSON(ctx, r.store, key, record); err != nil {
		return fmt.Errorf("failed to save period record: %w", err)
	}
	return nil
}

// ListByOwner はユーザーの全記録を返す。
func (r *KVPeriodRepo) ListByOwner(ctx context.Context, userID string) ([]model.PeriodRecord, error) {
	prefix, err := periodKey(userID, "")
	if err != nil {
		return nil, err
	}
	records, err := kvstore.CollectJSON[model.PeriodRecord](ctx, r.store, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list period records: %w", err)
	}
	return records, nil
}

// compile-time interface check
var _ PeriodRepository = (*KVPeriodRepo)(nil)
