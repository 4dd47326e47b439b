package cycle

import (
	"math"

	"github.com/hitoshi/moodglow/internal/model"
)

// デフォルトの周期
const (
	DefaultCycleLength   = 28
	DefaultDaysUntilNext = 14
)

// 予測方式
const (
	PredictionFixed   = "fixed"
	PredictionAverage = "average"
)

// Predictor は生理記録から次回開始日を予測する。
// periodsは開始日の降順で、少なくとも1件含まれる。todayは呼び出し時点の日付。
type Predictor interface {
	Predict(periods []model.PeriodRecord, today string) (*model.CyclePrediction, error)
}

// FixedPredictor は最新の開始日に28日を加えた日付を次回開始日とする。
// 平均周期と次回までの日数は固定値を返す。
type FixedPredictor struct{}

// Predict は固定周期で次回開始日を予測する。
func (FixedPredictor) Predict(periods []model.PeriodRecord, _ string) (*model.CyclePrediction, error) {
	next, err := model.AddDays(periods[0].StartDate, DefaultCycleLength)
	if err != nil {
		return nil, err
	}
	return &model.CyclePrediction{
		NextPeriodDate:     next,
		AverageCycleLength: DefaultCycleLength,
		DaysUntilNext:      DefaultDaysUntilNext,
	}, nil
}

// AveragePredictor は連続する開始日の間隔の平均を周期として次回開始日を予測する。
// 記録が1件しかない場合は28日周期とみなす。
type AveragePredictor struct{}

// Predict は平均周期で次回開始日を予測する。
// 次回までの日数はtodayから次回開始日までで、予定日を過ぎている場合は0となる。
func (AveragePredictor) Predict(periods []model.PeriodRecord, today string) (*model.CyclePrediction, error) {
	length := DefaultCycleLength

	total, count := 0, 0
	for i := 0; i+1 < len(periods); i++ {
		d, err := model.DaysBetween(periods[i+1].StartDate, periods[i].StartDate)
		if err != nil {
			return nil, err
		}
		if d <= 0 {
			continue
		}
		total += d
		count++
	}
	if count > 0 {
		length = int(math.Round(float64(total) / float64(count)))
	}

	next, err := model.AddDays(periods[0].StartDate, length)
	if err != nil {
		return nil, err
	}
	until, err := model.DaysBetween(today, next)
	if err != nil {
		return nil, err
	}

	return &model.CyclePrediction{
		NextPeriodDate:     next,
		AverageCycleLength: length,
		DaysUntilNext:      max(until, 0),
	}, nil
}

// NewPredictor は方式名からPredictorを生成する。空文字列はfixedとして扱う。
func NewPredictor(mode string) (Predictor, bool) {
	switch mode {
	case PredictionFixed, "":
		return FixedPredictor{}, true
	case PredictionAverage:
		return AveragePredictor{}, true
	default:
		return nil, false
	}
}
