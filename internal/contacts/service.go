// Package contacts はユーザーごとの緊急連絡先リストを提供する。
package contacts

import (
	"context"
	"log/slog"
	"slices"

	"github.com/hitoshi/moodglow/internal/model"
	"github.com/hitoshi/moodglow/internal/repository"
)

// Service は緊急連絡先のサービス層。
type Service struct {
	repo repository.ContactsRepository
}

// NewService はServiceを生成する。
func NewService(repo repository.ContactsRepository) *Service {
	return &Service{repo: repo}
}

// Replace は連絡先リスト全体を置き換える。以前のリストは破棄される。
func (s *Service) Replace(ctx context.Context, userID string, contacts []model.Contact) ([]model.Contact, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return nil, err
	}

	saved := slices.Clone(contacts)
	if saved == nil {
		saved = []model.Contact{}
	}

	record := &model.ContactsRecord{UserID: userID, Contacts: saved}
	if err := s.repo.Replace(ctx, record); err != nil {
		return nil, model.NewStorageError("save contacts", err)
	}

	slog.Info("contacts replaced",
		slog.String("user_id", userID),
		slog.Int("count", len(saved)),
	)
	return saved, nil
}

// List は保存済みの連絡先リストを返す。未保存の場合は空のリストを返す。
func (s *Service) List(ctx context.Context, userID string) ([]model.Contact, error) {
	record, err := s.repo.Find(ctx, userID)
	if err != nil {
		return nil, model.NewStorageError("find contacts", err)
	}
	if record == nil || record.Contacts == nil {
		return []model.Contact{}, nil
	}
	return record.Contacts, nil
}
