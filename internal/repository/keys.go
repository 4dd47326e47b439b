package repository

import (
	"strings"

	"github.com/hitoshi/moodglow/internal/model"
)

// キーはkvstore.WithNamespaceで付与される "moodglow:" 以降の部分。
//
//	username:<小文字化した名前>      → ユーザーID
//	user:<userId>:profile            → Profile
//	user:<userId>:checkin:<日付>     → CheckIn
//	user:<userId>:streak             → Streak
//	user:<userId>:journal:<entryId>  → JournalEntry
//	user:<userId>:contacts           → ContactsRecord
//	user:<userId>:period:<periodId>  → PeriodRecord
//	session:<sessionId>              → Session
//
// userIdは":"を含まないことをmodel.ValidateUserIDで保証する。
// 含められると他ユーザーの前方一致範囲にキーを作れてしまう。

// NormalizeUsername はユーザー名を比較用に正規化する。
func NormalizeUsername(name string) string {
	return strings.ToLower(name)
}

func usernameKey(name string) string {
	return "username:" + NormalizeUsername(name)
}

func userKey(userID, kind string) (string, error) {
	if err := model.ValidateUserID(userID); err != nil {
		return "", err
	}
	return "user:" + userID + ":" + kind, nil
}

func checkInKey(userID, date string) (string, error) {
	return userKey(userID, "checkin:"+date)
}

func journalKey(userID, entryID string) (string, error) {
	return userKey(userID, "journal:"+entryID)
}

func periodKey(userID, periodID string) (string, error) {
	return userKey(userID, "period:"+periodID)
}

func sessionKey(id string) string {
	return "session:" + id
}
