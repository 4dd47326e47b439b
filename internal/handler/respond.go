// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/moodglow/internal/middleware"
	"github.com/hitoshi/moodglow/internal/model"
)

// maxBodyBytes はリクエストボディの上限。日記本文を含めても十分な大きさ。
const maxBodyBytes = 1 << 20

// profileResponse はプロフィールのAPIレスポンス。保存済みパスワードは含めない。
type profileResponse struct {
	UserID    string       `json:"userId"`
	Name      string       `json:"name"`
	Gender    model.Gender `json:"gender"`
	CreatedAt time.Time    `json:"createdAt"`
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		UserID:    p.UserID,
		Name:      p.Name,
		Gender:    p.Gender,
		CreatedAt: p.CreatedAt,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON はリクエストボディをvに読み込む。失敗時は400を書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	if errors.Is(err, io.EOF) {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディが空です"))
		return false
	}
	middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
	return false
}

// requireUserID はセッションミドルウェアが注入したユーザーIDを返す。
// 取得できない場合は401を書き込みfalseを返す。
func requireUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteUnauthorized(w)
		return "", false
	}
	return userID, true
}
