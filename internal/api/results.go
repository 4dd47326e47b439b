package api

import "github.com/hitoshi/moodglow/internal/model"

// ProfileResult はlogin, signup, getProfileの結果。
type ProfileResult struct {
	Profile *model.Profile `json:"profile"`
}

// CheckInResult はsaveCheckinの結果。Streakは保存後の連続記録。
type CheckInResult struct {
	Success bool           `json:"success"`
	CheckIn *model.CheckIn `json:"checkin"`
	Streak  model.Streak   `json:"streak"`
}

// CheckInsResult はgetCheckinsの結果。
type CheckInsResult struct {
	CheckIns []model.CheckIn `json:"checkins"`
}

// StreakResult はgetStreakの結果。
type StreakResult struct {
	Streak model.Streak `json:"streak"`
}

// JournalSaveResult はsaveJournalの結果。
type JournalSaveResult struct {
	Success bool   `json:"success"`
	EntryID string `json:"entryId"`
}

// JournalEntriesResult はgetJournalEntriesの結果。
type JournalEntriesResult struct {
	Entries []model.JournalEntry `json:"entries"`
}

// SuccessResult は戻り値を持たない保存操作の結果。
type SuccessResult struct {
	Success bool `json:"success"`
}

// ContactsResult はgetContactsの結果。
type ContactsResult struct {
	Contacts []model.Contact `json:"contacts"`
}

// PeriodSaveResult はsavePeriodの結果。
type PeriodSaveResult struct {
	Success    bool                `json:"success"`
	PeriodData *model.PeriodRecord `json:"periodData"`
}
