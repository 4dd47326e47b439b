package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/moodglow/internal/api"
	"github.com/hitoshi/moodglow/internal/middleware"
	"github.com/hitoshi/moodglow/internal/model"
)

// JournalPasswordHeader は日記一覧の閲覧パスワードを渡すヘッダー。
// クエリ文字列に載せるとアクセスログに残るためヘッダーで受け取る。
const JournalPasswordHeader = "X-Journal-Password"

// WellnessBackend はログイン後の機能が必要とするAPI操作。*api.Clientが満たす。
type WellnessBackend interface {
	GetProfile(ctx context.Context, userID string) (*api.ProfileResult, error)
	SaveCheckin(ctx context.Context, userID string, data model.MoodData) (*api.CheckInResult, error)
	GetCheckins(ctx context.Context, userID string) (*api.CheckInsResult, error)
	GetStreak(ctx context.Context, userID string) (*api.StreakResult, error)
	SaveJournal(ctx context.Context, userID, content, password, title string) (*api.JournalSaveResult, error)
	GetJournalEntries(ctx context.Context, userID, password string) (*api.JournalEntriesResult, error)
	SaveContacts(ctx context.Context, userID string, list []model.Contact) (*api.SuccessResult, error)
	GetContacts(ctx context.Context, userID string) (*api.ContactsResult, error)
	SavePeriod(ctx context.Context, userID string, data model.PeriodData) (*api.PeriodSaveResult, error)
	GetPeriodData(ctx context.Context, userID string) (*model.PeriodOverview, error)
}

// TodayReader は今日のチェックインを返す。*checkin.Serviceが満たす。
type TodayReader interface {
	Today(ctx context.Context, userID string) (*model.CheckIn, error)
}

// WellnessHandler はプロフィール・チェックイン・日記・連絡先・生理記録のHTTPハンドラー。
// すべてセッションミドルウェア配下で動作する。
type WellnessHandler struct {
	backend WellnessBackend
	today   TodayReader
}

// NewWellnessHandler はWellnessHandlerを生成する。
func NewWellnessHandler(backend WellnessBackend, today TodayReader) *WellnessHandler {
	return &WellnessHandler{backend: backend, today: today}
}

// saveJournalRequest は日記保存リクエストのボディ。
type saveJournalRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Password string `json:"password"`
}

// journalEntryResponse は日記エントリのAPIレスポンス。閲覧パスワードは含めない。
type journalEntryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Protected bool      `json:"protected"`
	Timestamp time.Time `json:"timestamp"`
}

type journalEntriesResponse struct {
	Entries []journalEntryResponse `json:"entries"`
}

// saveContactsRequest は連絡先保存リクエストのボディ。
type saveContactsRequest struct {
	Contacts []model.Contact `json:"contacts"`
}

type todayResponse struct {
	CheckIn *model.CheckIn `json:"checkin"`
}

// GetProfile はログインユーザーのプロフィールを返す。
// GET /api/profile
func (h *WellnessHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	result, err := h.backend.GetProfile(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Profile: toProfileResponse(result.Profile)})
}

// SaveCheckin は今日のチェックインを保存する。
// POST /api/checkins
func (h *WellnessHandler) SaveCheckin(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req model.MoodData
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.backend.SaveCheckin(r.Context(), userID, req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GetCheckins は全チェックインを返す。
// GET /api/checkins
func (h *WellnessHandler) GetCheckins(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	result, err := h.backend.GetCheckins(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetTodayCheckin は今日のチェックインを返す。未記録の場合はcheckinがnullになる。
// GET /api/checkins/today
func (h *WellnessHandler) GetTodayCheckin(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	checkIn, err := h.today.Today(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, todayResponse{CheckIn: checkIn})
}

// GetStreak は連続記録を返す。
// GET /api/streak
func (h *WellnessHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	result, err := h.backend.GetStreak(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SaveJournal は日記エントリを保存する。
// POST /api/journal
func (h *WellnessHandler) SaveJournal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req saveJournalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.backend.SaveJournal(r.Context(), userID, req.Content, req.Password, req.Title)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GetJournalEntries はX-Journal-Passwordヘッダーと一致するパスワードのエントリを返す。
// GET /api/journal
func (h *WellnessHandler) GetJournalEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	result, err := h.backend.GetJournalEntries(r.Context(), userID, r.Header.Get(JournalPasswordHeader))
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}

	entries := make([]journalEntryResponse, len(result.Entries))
	for i, e := range result.Entries {
		entries[i] = journalEntryResponse{
			ID:        e.ID,
			Title:     e.Title,
			Content:   e.Content,
			Protected: e.Password != "",
			Timestamp: e.Timestamp,
		}
	}
	writeJSON(w, http.StatusOK, journalEntriesResponse{Entries: entries})
}

// SaveContacts は連絡先リスト全体を置き換える。
// PUT /api/contacts
func (h *WellnessHandler) SaveContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req saveContactsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Contacts == nil {
		req.Contacts = []model.Contact{}
	}
	result, err := h.backend.SaveContacts(r.Context(), userID, req.Contacts)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// GetContacts は連絡先リストを返す。
// GET /api/contacts
func (h *WellnessHandler) GetContacts(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	result, err := h.backend.GetContacts(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// SavePeriod は生理記録を保存する。
// POST /api/periods
func (h *WellnessHandler) SavePeriod(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req model.PeriodData
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.backend.SavePeriod(r.Context(), userID, req)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// GetPeriodData は生理記録と次回予測を返す。
// GET /api/periods
func (h *WellnessHandler) GetPeriodData(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	overview, err := h.backend.GetPeriodData(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
