package model

import "time"

// PeriodRecord は生理の記録1件を表す。
// IDは開始日から導出されるため、同じ開始日の記録は上書きされる。
type PeriodRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate,omitempty"`
	Flow      string    `json:"flow,omitempty"`
	Symptoms  []string  `json:"symptoms,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// PeriodData は記録画面から送信される入力値。
type PeriodData struct {
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate,omitempty"`
	Flow      string   `json:"flow,omitempty"`
	Symptoms  []string `json:"symptoms,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// CyclePrediction は次回開始日の予測結果。
type CyclePrediction struct {
	NextPeriodDate     string `json:"nextPeriodDate"`
	AverageCycleLength int    `json:"averageCycleLength"`
	DaysUntilNext      int    `json:"daysUntilNext"`
}

// PeriodOverview は生理記録の一覧と予測をまとめた取得結果。Predictionは記録が1件もない場合nilとなる。
type PeriodOverview struct {
	Periods    []PeriodRecord   `json:"periods"`
	Prediction *CyclePrediction `json:"prediction"`
}
