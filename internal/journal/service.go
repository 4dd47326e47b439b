// Package journal はパスワードで閲覧を制限する日記エントリの保存と取得を提供する。
//
// パスワードは暗号化ではなく閲覧の絞り込みに使用する。
// 一覧取得では保存時のパスワードと完全一致するエントリだけを返し、
// パスワードなしで保存したエントリはパスワードなしの問い合わせでのみ返る。
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/moodglow/internal/model"
	"github.com/hitoshi/moodglow/internal/repository"
)

// Service は日記エントリのサービス層。
type Service struct {
	repo  repository.JournalRepository
	newID func() (string, error)
	now   func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.JournalRepository) *Service {
	return &Service{
		repo:  repo,
		newID: newEntryID,
		now:   time.Now,
	}
}

// newEntryID は時刻順に並ぶ一意なエントリIDを生成する。
func newEntryID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Save は日記エントリを保存する。titleが空の場合は"Untitled"となる。
// タイトルと本文は入力のまま保存する。
func (s *Service) Save(ctx context.Context, userID, content, password, title string) (*model.JournalEntry, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return nil, err
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate entry ID: %w", err)
	}

	if title == "" {
		title = model.DefaultJournalTitle
	}

	entry := &model.JournalEntry{
		ID:        id,
		UserID:    userID,
		Title:     title,
		Content:   content,
		Password:  password,
		Timestamp: s.now().UTC(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, model.NewStorageError("save journal entry", err)
	}

	slog.Info("journal entry saved",
		slog.String("user_id", userID),
		slog.String("entry_id", id),
		slog.Bool("protected", password != ""),
	)
	return entry, nil
}

// List はpasswordと保存時のパスワードが一致するエントリを返す。順序は規定しない。
func (s *Service) List(ctx context.Context, userID, password string) ([]model.JournalEntry, error) {
	all, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, model.NewStorageError("list journal entries", err)
	}

	entries := make([]model.JournalEntry, 0, len(all))
	for _, e := range all {
		if e.Password == password {
			entries = append(entries, e)
		}
	}
	return entries, nil
}
