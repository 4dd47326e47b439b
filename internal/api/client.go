// Package api は表示層から利用する操作の窓口を提供する。
//
// 各操作はユーザーIDを明示的に受け取り、結果オブジェクトを返すか
// model.APIError のいずれかで失敗する。リモート呼び出しを模した待ち時間を
// 設定でき、認証系とそれ以外で異なる値を指定できる。
package api

import (
	"context"
	"errors"
	"time"

	"github.com/hitoshi/moodglow/internal/auth"
	"github.com/hitoshi/moodglow/internal/checkin"
	"github.com/hitoshi/moodglow/internal/contacts"
	"github.com/hitoshi/moodglow/internal/cycle"
	"github.com/hitoshi/moodglow/internal/journal"
	"github.com/hitoshi/moodglow/internal/metrics"
	"github.com/hitoshi/moodglow/internal/model"
)

// Latency は操作ごとに挿入する待ち時間。
type Latency struct {
	Auth    time.Duration // login, signup
	Default time.Duration // それ以外の操作
}

// Services はClientが委譲するサービス群。
type Services struct {
	Auth     *auth.Service
	CheckIn  *checkin.Service
	Journal  *journal.Service
	Contacts *contacts.Service
	Cycle    *cycle.Service
}

// Client は表示層に公開する操作の集合。
type Client struct {
	svc     Services
	latency Latency
	metrics metrics.MetricsCollector
}

// NewClient はClientを生成する。collectorがnilの場合はメトリクスを記録しない。
func NewClient(svc Services, latency Latency, collector metrics.MetricsCollector) *Client {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Client{svc: svc, latency: latency, metrics: collector}
}

// wait は指定時間だけ呼び出し元を待機させる。ctxが終了した場合はctx.Err()を返す。
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// --- 認証 ---

// Login はユーザー名とパスワードで認証し、プロフィールを返す。
func (c *Client) Login(ctx context.Context, name, password string) (*ProfileResult, error) {
	if err := wait(ctx, c.latency.Auth); err != nil {
		return nil, err
	}
	profile, err := c.svc.Auth.Login(ctx, name, password)
	if err != nil {
		c.recordAuthFailure(err)
		return nil, err
	}
	return &ProfileResult{Profile: profile}, nil
}

// Signup はプロフィールを作成する。同じuserIDと同じパスワードで再度呼び出した場合は保存済みのプロフィールを返す。
func (c *Client) Signup(ctx context.Context, userID, name, password string, gender model.Gender) (*ProfileResult, error) {
	if err := wait(ctx, c.latency.Auth); err != nil {
		return nil, err
	}
	profile, err := c.svc.Auth.Signup(ctx, userID, name, password, gender)
	if err != nil {
		c.recordAuthFailure(err)
		return nil, err
	}
	c.metrics.RecordSignup()
	return &ProfileResult{Profile: profile}, nil
}

func (c *Client) recordAuthFailure(err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		c.metrics.RecordAuthFailure(apiErr.Code)
		return
	}
	c.metrics.RecordAuthFailure("UNKNOWN")
}

// --- プロフィール ---

// GetProfile はプロフィールを返す。存在しない場合はProfileNotFoundで失敗する。
func (c *Client) GetProfile(ctx context.Context, userID string) (*ProfileResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	profile, err := c.svc.Auth.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileResult{Profile: profile}, nil
}

// --- チェックイン ---

// SaveCheckin は今日のチェックインを保存し、連続記録を更新する。
func (c *Client) SaveCheckin(ctx context.Context, userID string, data model.MoodData) (*CheckInResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	checkIn, streak, err := c.svc.CheckIn.Record(ctx, userID, data)
	if err != nil {
		return nil, err
	}
	return &CheckInResult{Success: true, CheckIn: checkIn, Streak: streak}, nil
}

// GetCheckins はユーザーの全チェックインを返す。順序は規定しない。
func (c *Client) GetCheckins(ctx context.Context, userID string) (*CheckInsResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	checkIns, err := c.svc.CheckIn.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CheckInsResult{CheckIns: checkIns}, nil
}

// GetStreak は連続記録を返す。未記録の場合はcurrentが0の値を返す。
func (c *Client) GetStreak(ctx context.Context, userID string) (*StreakResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	streak, err := c.svc.CheckIn.Streak(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &StreakResult{Streak: streak}, nil
}

// --- 日記 ---

// SaveJournal は日記エントリを保存する。passwordとtitleは空文字列で省略を表す。
func (c *Client) SaveJournal(ctx context.Context, userID, content, password, title string) (*JournalSaveResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	entry, err := c.svc.Journal.Save(ctx, userID, content, password, title)
	if err != nil {
		return nil, err
	}
	return &JournalSaveResult{Success: true, EntryID: entry.ID}, nil
}

// GetJournalEntries はpasswordと一致するパスワードで保存されたエントリを返す。
func (c *Client) GetJournalEntries(ctx context.Context, userID, password string) (*JournalEntriesResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	entries, err := c.svc.Journal.List(ctx, userID, password)
	if err != nil {
		return nil, err
	}
	return &JournalEntriesResult{Entries: entries}, nil
}

// --- 緊急連絡先 ---

// SaveContacts は連絡先リスト全体を置き換える。
func (c *Client) SaveContacts(ctx context.Context, userID string, list []model.Contact) (*SuccessResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	if _, err := c.svc.Contacts.Replace(ctx, userID, list); err != nil {
		return nil, err
	}
	return &SuccessResult{Success: true}, nil
}

// GetContacts は連絡先リストを返す。未保存の場合は空のリストを返す。
func (c *Client) GetContacts(ctx context.Context, userID string) (*ContactsResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	list, err := c.svc.Contacts.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ContactsResult{Contacts: list}, nil
}

// --- 生理記録 ---

// SavePeriod は生理記録を保存する。同じ開始日の記録は上書きされる。
func (c *Client) SavePeriod(ctx context.Context, userID string, data model.PeriodData) (*PeriodSaveResult, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	record, err := c.svc.Cycle.Record(ctx, userID, data)
	if err != nil {
		return nil, err
	}
	return &PeriodSaveResult{Success: true, PeriodData: record}, nil
}

// GetPeriodData は記録を開始日の降順で返し、記録があれば次回開始日の予測を付与する。
func (c *Client) GetPeriodData(ctx context.Context, userID string) (*model.PeriodOverview, error) {
	if err := wait(ctx, c.latency.Default); err != nil {
		return nil, err
	}
	return c.svc.Cycle.ListWithPrediction(ctx, userID)
}
