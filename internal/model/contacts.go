package model

// Contact は緊急連絡先1件を表す。
type Contact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship,omitempty"`
}

// ContactsRecord はユーザーごとに1件だけ存在する緊急連絡先リスト。
// 書き込みは常にリスト全体の置き換えとなる。
type ContactsRecord struct {
	UserID   string    `json:"userId"`
	Contacts []Contact `json:"contacts"`
}
