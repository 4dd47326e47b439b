package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// KVSessionRepo はキーバリューストアを使用したセッションリポジトリ。
type KVSessionRepo struct {
	store kvstore.Store
	now   func() time.Time
}

// NewKVSessionRepo はKVSessionRepoを生成する。
func NewKVSessionRepo(store kvstore.Store) *KVSessionRepo {
	return &KVSessionRepo{store: store, now: time.Now}
}

// Create はセッションを作成する。
func (r *KVSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if err := kvstore.PutJSON(ctx, r.store, sessionKey(session.ID), session); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
func (r *KVSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	s, found, err := kvstore.GetJSON[model.Session](ctx, r.store, sessionKey(id))
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if !found || s.Expired(r.now()) {
		return nil, nil
	}
	return &s, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (r *KVSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れのセッションを全て削除する。
func (r *KVSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	var expired []string
	for s, err := range kvstore.ScanJSON[model.Session](ctx, r.store, sessionKey("")) {
		if err != nil {
			return 0, fmt.Errorf("failed to scan sessions: %w", err)
		}
		if s.Expired(now) {
			expired = append(expired, s.ID)
		}
	}

	for i, id := range expired {
		if err := r.store.Delete(ctx, sessionKey(id)); err != nil {
			return i, fmt.Errorf("failed to delete expired session: %w", err)
		}
	}
	return len(expired), nil
}

// compile-time interface check
var _ SessionRepository = (*KVSessionRepo)(nil)
