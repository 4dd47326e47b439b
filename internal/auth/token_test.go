package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/moodglow/internal/model"
)

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := NewTokenManager("test-secret")
	now := time.Now()
	session := &model.Session{ID: "sess-1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}

	token, err := m.Issue(session)
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	sid, uid, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if sid != "sess-1" || uid != "u1" {
		t.Errorf("Parse = (%q, %q), want (sess-1, u1)", sid, uid)
	}
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	now := time.Now()
	session := &model.Session{ID: "sess-1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	token, _ := NewTokenManager("secret-a").Issue(session)

	if _, _, err := NewTokenManager("secret-b").Parse(token); err == nil {
		t.Fatal("expected signature verification error")
	}
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret")
	past := time.Now().Add(-2 * time.Hour)
	session := &model.Session{ID: "sess-1", UserID: "u1", CreatedAt: past, ExpiresAt: past.Add(time.Hour)}
	token, _ := m.Issue(session)

	if _, _, err := m.Parse(token); err == nil {
		t.Fatal("expected expiration error")
	}
}

func TestTokenManager_RejectsTamperedToken(t *testing.T) {
	m := NewTokenManager("test-secret")
	now := time.Now()
	token, _ := m.Issue(&model.Session{ID: "sess-1", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)})

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, _, err := m.Parse(tampered); err == nil {
		t.Fatal("expected error for tampered token")
	}
	if _, _, err := m.Parse("garbage"); err == nil {
		t.Fatal("expected error for garbage token")
	}
}
