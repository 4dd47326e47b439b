package repository

import (
	"context"
	"fmt"

	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// KVCheckInRepo はキーバリューストアを使用したチェックインリポジトリ。
type KVCheckInRepo struct {
	store kvstore.Store
}

// NewKVCheckInRepo はKVCheckInRepoを生成する。
func NewKVCheckInRepo(store kvstore.Store) *KVCheckInRepo {
	return &KVCheckInRepo{store: store}
}

// Save はチェックインを保存する。
func (r *KVCheckInRepo) Save(ctx context.Context, checkIn *model.CheckIn) error {
	key, err := checkInKey(checkIn.UserID, checkIn.Date)
	if err != nil {
		return err
	}
	if err := kvstore.PutJSON(ctx, r.store, key, checkIn); err != nil {
		return fmt.Errorf("failed to save checkin: %w", err)
	}
	return nil
}

// FindByDate は指定日のチェックインを取得する。
func (r *KVCheckInRepo) FindByDate(ctx context.Context, userID, date string) (*model.CheckIn, error) {
	key, err := checkInKey(userID, date)
	if err != nil {
		return nil, err
	}
	c, found, err := kvstore.GetJSON[model.CheckIn](ctx, r.store, key)
	if err != nil {
		return nil, fmt.Errorf("failed to find checkin: %w", err)
	}
	if !found {
		return nil, nil
	}
	return &c, nil
}

// ListByOwner はユーザーの全チェックインを返す。
func (r *KVCheckInRepo) ListByOwner(ctx context.Context, userID string) ([]model.CheckIn, error) {
	prefix, err := checkInKey(userID, "")
	if err != nil {
		return nil, err
	}
	checkIns, err := kvstore.CollectJSON[model.CheckIn](ctx, r.store, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkins: %w", err)
	}
	return checkIns, nil
}

// compile-time interface check
var _ CheckInRepository = (*KVCheckInRepo)(nil)
