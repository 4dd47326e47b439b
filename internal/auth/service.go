// Package auth はユーザー名とパスワードによる認証、サインアップ、
// HTTP APIのセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/moodglow/internal/model"
	"github.com/hitoshi/moodglow/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge time.Duration // セッション有効期間
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	accounts    repository.AccountRepository
	profiles    repository.ProfileRepository
	sessionRepo repository.SessionRepository
	verifier    PasswordVerifier
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	accounts repository.AccountRepository,
	profiles repository.ProfileRepository,
	sessionRepo repository.SessionRepository,
	verifier PasswordVerifier,
	config ServiceConfig,
) *Service {
	return &Service{
		accounts:    accounts,
		profiles:    profiles,
		sessionRepo: sessionRepo,
		verifier:    verifier,
		config:      config,
		now:         time.Now,
	}
}

// Signup はプロフィールを作成し、ユーザー名を登録する。
//
// 同じuserIDで既にプロフィールが存在する場合は、パスワードが一致するときに限り
// 保存済みのプロフィールをそのまま返す（再送に対して冪等）。一致しなければInvalidPasswordを返す。
// userIDはmodel.ValidateUserIDの形式でなければならない。
// ユーザー名が別のユーザーに使用されている場合はNameTakenを返す。
// プロフィール保存後にユーザー名の登録に失敗した場合は、保存したプロフィールを削除して
// 孤立したプロフィールが残らないようにする。削除にも失敗した場合はその失敗も返すエラーに含める。
func (s *Service) Signup(ctx context.Context, userID, name, password string, gender model.Gender) (*model.Profile, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return nil, err
	}

	// 1. ユーザー名の事前確認
	if name != "" {
		owner, found, err := s.accounts.Resolve(ctx, name)
		if err != nil {
			return nil, model.NewStorageError("resolve username", err)
		}
		if found && owner != userID {
			return nil, model.NewNameTakenError(name)
		}
	}

	// 2. 既存プロフィールがあればそのまま返す
	existing, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewStorageError("find profile", err)
	}
	if existing != nil {
		if !s.verifier.Verify(existing.Password, password) {
			slog.Warn("signup retry rejected: password mismatch", slog.String("user_id", userID))
			return nil, model.NewInvalidPasswordError()
		}
		return existing, nil
	}

	// 3. プロフィールを作成
	stored, err := s.verifier.Hash(password)
	if err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	profile := &model.Profile{
		UserID:    userID,
		Name:      name,
		Password:  stored,
		Gender:    model.ParseGender(string(gender)),
		CreatedAt: s.now().UTC(),
	}
	if profile.Name == "" {
		profile.Name = model.DefaultProfileName
	}

	if err := s.profiles.Save(ctx, profile); err != nil {
		return nil, model.NewStorageError("save profile", err)
	}

	// 4. ユーザー名を登録（失敗時はプロフィールを削除して補償）
	if name != "" {
		if err := s.accounts.Reserve(ctx, name, userID); err != nil {
			var rollbackErr error
			if delErr := s.profiles.DeleteByID(ctx, userID); delErr != nil {
				slog.Error("failed to roll back profile after username reservation failure",
					slog.String("user_id", userID),
					slog.String("error", delErr.Error()),
				)
				rollbackErr = fmt.Errorf("profile %s left without username: %w", userID, delErr)
			}
			if errors.Is(err, model.ErrNameTaken) {
				return nil, errors.Join(err, rollbackErr)
			}
			return nil, model.NewStorageError("reserve username", errors.Join(err, rollbackErr))
		}
	}

	slog.Info("new user signed up",
		slog.String("user_id", userID),
		slog.String("gender", string(profile.Gender)),
	)

	return profile, nil
}

// Login はユーザー名とパスワードでユーザーを認証し、プロフィールを返す。
func (s *Service) Login(ctx context.Context, name, password string) (*model.Profile, error) {
	userID, found, err := s.accounts.Resolve(ctx, name)
	if err != nil {
		return nil, model.NewStorageError("resolve username", err)
	}
	if !found {
		return nil, model.NewUserNotFoundError()
	}

	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewStorageError("find profile", err)
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError(userID)
	}

	if !s.verifier.Verify(profile.Password, password) {
		slog.Warn("login failed: invalid password", slog.String("user_id", userID))
		return nil, model.NewInvalidPasswordError()
	}

	slog.Info("user logged in", slog.String("user_id", userID))
	return profile, nil
}

// GetProfile は指定ユーザーのプロフィールを返す。
func (s *Service) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profiles.FindByID(ctx, userID)
	if err != nil {
		return nil, model.NewStorageError("find profile", err)
	}
	if profile == nil {
		return nil, model.NewProfileNotFoundError(userID)
	}
	return profile, nil
}

// CreateSession はHTTP API用のセッションを発行して永続化する。
func (s *Service) CreateSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := s.now().UTC()
	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: now.Add(s.config.SessionMaxAge),
		CreatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, model.NewStorageError("create session", err)
	}

	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return model.NewStorageError("delete session", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーのプロフィールを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.Profile, error) {
	if sessionID == "" {
		return nil, model.NewNotAuthenticatedError()
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, model.NewStorageError("find session", err)
	}
	if session == nil {
		return nil, model.NewNotAuthenticatedError()
	}

	return s.GetProfile(ctx, session.UserID)
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
