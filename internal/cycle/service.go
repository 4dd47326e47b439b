// Package cycle は生理記録の保存と次回開始日の予測を提供する。
package cycle

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"strconv"
	"time"

	"github.com/hitoshi/moodglow/internal/model"
	"github.com/hitoshi/moodglow/internal/repository"
)

// Service は生理記録のサービス層。
type Service struct {
	repo      repository.PeriodRepository
	predictor Predictor
	loc       *time.Location
	now       func() time.Time
}

// NewService はServiceを生成する。predictorがnilの場合はFixedPredictorを使用する。
func NewService(
	repo repository.PeriodRepository,
	predictor Predictor,
	loc *time.Location,
) *Service {
	if predictor == nil {
		predictor = FixedPredictor{}
	}
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		repo:      repo,
		predictor: predictor,
		loc:       loc,
		now:       time.Now,
	}
}

// PeriodID は開始日から記録IDを導出する。開始日のUTC0時のUnixミリ秒。
// 同じ開始日の記録は同じIDとなり、保存時に上書きされる。
func PeriodID(startDate string) (string, error) {
	t, err := model.ParseDay(startDate)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(t.UnixMilli(), 10), nil
}

// Record は生理記録を保存する。
func (s *Service) Record(ctx context.Context, userID string, data model.PeriodData) (*model.PeriodRecord, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return nil, err
	}

	id, err := PeriodID(data.StartDate)
	if err != nil {
		return nil, model.NewValidationError("startDate must be YYYY-MM-DD")
	}
	if data.EndDate != "" {
		days, err := model.DaysBetween(data.StartDate, data.EndDate)
		if err != nil {
			return nil, model.NewValidationError("endDate must be YYYY-MM-DD")
		}
		if days < 0 {
			return nil, model.NewValidationError("endDate must not be before startDate")
		}
	}

	record := &model.PeriodRecord{
		ID:        id,
		UserID:    userID,
		StartDate: data.StartDate,
		EndDate:   data.EndDate,
		Flow:      data.Flow,
		Symptoms:  slices.Clone(data.Symptoms),
		Notes:     data.Notes,
		Timestamp: s.now().UTC(),
	}

	if err := s.repo.Save(ctx, record); err != nil {
		return nil, model.NewStorageError("save period", err)
	}

	slog.Info("period recorded",
		slog.String("user_id", userID),
		slog.String("period_id", id),
	)
	return record, nil
}

// ListWithPrediction は全記録を開始日の降順で返し、記録があれば次回開始日の予測を付与する。
func (s *Service) ListWithPrediction(ctx context.Context, userID string) (*model.PeriodOverview, error) {
	periods, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, model.NewStorageError("list periods", err)
	}
	if periods == nil {
		periods = []model.PeriodRecord{}
	}

	// YYYY-MM-DDは文字列比較で日付順になる
	slices.SortFunc(periods, func(a, b model.PeriodRecord) int {
		if c := cmp.Compare(b.StartDate, a.StartDate); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	overview := &model.PeriodOverview{Periods: periods}
	if len(periods) == 0 {
		return overview, nil
	}

	today := model.DayOf(s.now(), s.loc)
	prediction, err := s.predictor.Predict(periods, today)
	if err != nil {
		return nil, model.NewValidationError(err.Error())
	}
	overview.Prediction = prediction
	return overview, nil
}
