// Package checkin は1日1回の気分チェックインと連続記録の更新を提供する。
package checkin

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/moodglow/internal/metrics"
	"github.com/hitoshi/moodglow/internal/model"
	"github.com/hitoshi/moodglow/internal/repository"
)

// Service はチェックインのサービス層。
// チェックインの保存後、同じ日付で連続記録を更新してから返る。
type Service struct {
	checkIns repository.CheckInRepository
	streaks  repository.StreakRepository
	metrics  metrics.MetricsCollector
	loc      *time.Location
	now      func() time.Time
}

// NewService はServiceを生成する。locはカレンダー日付の算出に使うタイムゾーン。
func NewService(
	checkIns repository.CheckInRepository,
	streaks repository.StreakRepository,
	collector metrics.MetricsCollector,
	loc *time.Location,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		checkIns: checkIns,
		streaks:  streaks,
		metrics:  collector,
		loc:      loc,
		now:      time.Now,
	}
}

// Record は今日の日付でチェックインを保存し、連続記録を更新する。
// 同日に再度保存した場合はチェックインが上書きされ、連続日数は変化しない。
func (s *Service) Record(ctx context.Context, userID string, mood model.MoodData) (*model.CheckIn, model.Streak, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return nil, model.Streak{}, err
	}

	now := s.now()
	day := model.DayOf(now, s.loc)

	answers := mood.Answers
	if answers == nil {
		answers = map[string]string{}
	}
	checkIn := &model.CheckIn{
		UserID:    userID,
		Date:      day,
		Mood:      mood.Mood,
		Emoji:     mood.Emoji,
		Answers:   answers,
		Timestamp: now.UTC(),
	}

	if err := s.checkIns.Save(ctx, checkIn); err != nil {
		return nil, model.Streak{}, model.NewStorageError("save check-in", err)
	}

	streak, err := s.updateStreak(ctx, userID, day)
	if err != nil {
		return nil, model.Streak{}, err
	}

	s.metrics.RecordCheckIn(streak.Current)
	slog.Info("check-in recorded",
		slog.String("user_id", userID),
		slog.String("date", day),
		slog.Int("streak_current", streak.Current),
		slog.Int("streak_longest", streak.Longest),
	)

	return checkIn, streak, nil
}

// updateStreak は保存済みの連続記録を読み込み、dayを反映して保存する。
func (s *Service) updateStreak(ctx context.Context, userID, day string) (model.Streak, error) {
	current, err := s.streaks.Find(ctx, userID)
	if err != nil {
		return model.Streak{}, model.NewStorageError("find streak", err)
	}

	next, err := Advance(current, day)
	if err != nil {
		return model.Streak{}, model.NewValidationError(err.Error())
	}

	if err := s.streaks.Save(ctx, userID, next); err != nil {
		return model.Streak{}, model.NewStorageError("save streak", err)
	}
	return next, nil
}

// List はユーザーの全チェックインを返す。順序は規定しない。
func (s *Service) List(ctx context.Context, userID string) ([]model.CheckIn, error) {
	checkIns, err := s.checkIns.ListByOwner(ctx, userID)
	if err != nil {
		return nil, model.NewStorageError("list check-ins", err)
	}
	if checkIns == nil {
		checkIns = []model.CheckIn{}
	}
	return checkIns, nil
}

// Today は今日のチェックインを返す。未チェックインの場合はnilを返す。
func (s *Service) Today(ctx context.Context, userID string) (*model.CheckIn, error) {
	day := model.DayOf(s.now(), s.loc)
	checkIn, err := s.checkIns.FindByDate(ctx, userID, day)
	if err != nil {
		return nil, model.NewStorageError("find today's check-in", err)
	}
	return checkIn, nil
}

// Streak はユーザーの連続記録を返す。未記録の場合はゼロ値を返す。
func (s *Service) Streak(ctx context.Context, userID string) (model.Streak, error) {
	streak, err := s.streaks.Find(ctx, userID)
	if err != nil {
		return model.Streak{}, model.NewStorageError("find streak", err)
	}
	return streak, nil
}
