// Package session は画面遷移の状態機械とログイン状態の保持を提供する。
//
// 状態は Welcome → GenderOrAuth → Main → Welcome の順に遷移する。
// ログイン中のユーザーは3つのマーカー（ユーザーID、表示名、性別）として
// KeyStoreに個別に保存され、再起動時に再認証なしでMainへ復帰できる。
//
// 画面側のクライアントが組み込んで使うライブラリで、HTTPサーバーからは参照しない。
// HTTP APIのログイン状態はCookieのセッションで管理する。
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/moodglow/internal/api"
	"github.com/hitoshi/moodglow/internal/kvstore"
	"github.com/hitoshi/moodglow/internal/model"
)

// マーカーのキー。名前空間の外に保存する。
const (
	MarkerUserID     = "moodglow_userId"
	MarkerUserName   = "moodglow_userName"
	MarkerUserGender = "moodglow_userGender"
)

// Phase は画面の状態。
type Phase int

const (
	PhaseWelcome Phase = iota
	PhaseGenderOrAuth
	PhaseMain
)

func (p Phase) String() string {
	switch p {
	case PhaseWelcome:
		return "welcome"
	case PhaseGenderOrAuth:
		return "gender"
	case PhaseMain:
		return "main"
	default:
		return "unknown"
	}
}

// Backend はControllerが利用する操作。*api.Clientが実装する。
type Backend interface {
	Login(ctx context.Context, name, password string) (*api.ProfileResult, error)
	Signup(ctx context.Context, userID, name, password string, gender model.Gender) (*api.ProfileResult, error)
	SaveCheckin(ctx context.Context, userID string, data model.MoodData) (*api.CheckInResult, error)
	GetCheckins(ctx context.Context, userID string) (*api.CheckInsResult, error)
	GetStreak(ctx context.Context, userID string) (*api.StreakResult, error)
}

// compile-time interface check
var _ Backend = (*api.Client)(nil)

// State はヘッダー表示に必要な現在の状態。
type State struct {
	Phase     Phase
	UserID    string
	UserName  string
	Gender    model.Gender
	Streak    model.Streak
	TodayMood string // 今日のチェックインの絵文字。未チェックインは空文字列
}

// Controller は画面状態とログイン状態を管理する。
// 操作は1つずつ直列に実行される。
type Controller struct {
	backend   Backend
	markers   kvstore.Store
	loc       *time.Location
	now       func() time.Time
	newUserID func() string

	mu    sync.Mutex
	state State
}

// NewController はWelcome状態のControllerを生成する。
// markersにはマーカーを保存するストアを渡す。locは今日の日付の算出に使用する。
func NewController(backend Backend, markers kvstore.Store, loc *time.Location) *Controller {
	if loc == nil {
		loc = time.Local
	}
	return &Controller{
		backend:   backend,
		markers:   markers,
		loc:       loc,
		now:       time.Now,
		newUserID: uuid.NewString,
	}
}

// State は現在の状態のコピーを返す。
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Restore は保存済みのマーカーからログイン状態を復元する。
// ユーザーIDと表示名の両方があればMainへ遷移し、連続記録と今日の気分を読み込む。
// どちらかが欠けている場合はWelcomeのままとなる。
func (c *Controller) Restore(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseWelcome {
		return c.state, model.NewInvalidTransitionError(c.state.Phase.String(), PhaseMain.String())
	}

	userID, err := c.readMarker(ctx, MarkerUserID)
	if err != nil {
		return c.state, model.NewStorageError("read session marker", err)
	}
	userName, err := c.readMarker(ctx, MarkerUserName)
	if err != nil {
		return c.state, model.NewStorageError("read session marker", err)
	}
	if userID == "" || userName == "" {
		return c.state, nil
	}

	gender, err := c.readMarker(ctx, MarkerUserGender)
	if err != nil {
		return c.state, model.NewStorageError("read session marker", err)
	}

	c.enterMain(ctx, userID, userName, model.ParseGender(gender))
	slog.Info("session restored", slog.String("user_id", userID))
	return c.state, nil
}

// Continue はWelcomeからGenderOrAuthへ遷移する。
func (c *Controller) Continue() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseWelcome {
		return model.NewInvalidTransitionError(c.state.Phase.String(), PhaseGenderOrAuth.String())
	}
	c.state.Phase = PhaseGenderOrAuth
	return nil
}

// Login は認証に成功するとマーカーを保存してMainへ遷移する。
func (c *Controller) Login(ctx context.Context, name, password string) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseGenderOrAuth {
		return c.state, model.NewInvalidTransitionError(c.state.Phase.String(), PhaseMain.String())
	}

	res, err := c.backend.Login(ctx, name, password)
	if err != nil {
		return c.state, err
	}
	if err := c.activate(ctx, res.Profile); err != nil {
		return c.state, err
	}
	return c.state, nil
}

// Signup は新しいユーザーIDでプロフィールを作成し、マーカーを保存してMainへ遷移する。
func (c *Controller) Signup(ctx context.Context, name, password string, gender model.Gender) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseGenderOrAuth {
		return c.state, model.NewInvalidTransitionError(c.state.Phase.String(), PhaseMain.String())
	}

	res, err := c.backend.Signup(ctx, c.newUserID(), name, password, gender)
	if err != nil {
		return c.state, err
	}
	if err := c.activate(ctx, res.Profile); err != nil {
		return c.state, err
	}
	return c.state, nil
}

// activate はマーカーを保存してMainへ遷移する。
// マーカーは個別に書き込まれ、途中で失敗した場合も書き込み済みのマーカーは残る。
func (c *Controller) activate(ctx context.Context, profile *model.Profile) error {
	markers := []struct{ key, value string }{
		{MarkerUserID, profile.UserID},
		{MarkerUserName, profile.Name},
		{MarkerUserGender, string(profile.Gender)},
	}
	for _, m := range markers {
		if err := c.markers.Set(ctx, m.key, []byte(m.value)); err != nil {
			return model.NewStorageError("save session marker", err)
		}
	}

	c.enterMain(ctx, profile.UserID, profile.Name, profile.Gender)
	slog.Info("session started", slog.String("user_id", profile.UserID))
	return nil
}

// enterMain はMainへ遷移し、ヘッダー表示用の状態を読み込む。
// 読み込みに失敗してもMainへの遷移は維持する。
func (c *Controller) enterMain(ctx context.Context, userID, userName string, gender model.Gender) {
	c.state = State{
		Phase:    PhaseMain,
		UserID:   userID,
		UserName: userName,
		Gender:   gender,
	}
	if err := c.loadHeader(ctx); err != nil {
		slog.Warn("failed to load header state",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// loadHeader は連続記録と今日のチェックインを読み込む。
func (c *Controller) loadHeader(ctx context.Context) error {
	streak, err := c.backend.GetStreak(ctx, c.state.UserID)
	if err != nil {
		return err
	}
	c.state.Streak = streak.Streak

	checkIns, err := c.backend.GetCheckins(ctx, c.state.UserID)
	if err != nil {
		return err
	}
	today := model.DayOf(c.now(), c.loc)
	c.state.TodayMood = ""
	for _, ci := range checkIns.CheckIns {
		if ci.Date == today {
			c.state.TodayMood = ci.Emoji
			break
		}
	}
	return nil
}

// CompleteCheckIn は今日のチェックインを保存し、連続記録と今日の気分を更新する。
func (c *Controller) CompleteCheckIn(ctx context.Context, mood model.MoodData) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseMain {
		return c.state, model.NewNotAuthenticatedError()
	}

	res, err := c.backend.SaveCheckin(ctx, c.state.UserID, mood)
	if err != nil {
		return c.state, err
	}
	c.state.Streak = res.Streak
	c.state.TodayMood = res.CheckIn.Emoji
	return c.state, nil
}

// Refresh はヘッダー表示用の状態を再読み込みする。
func (c *Controller) Refresh(ctx context.Context) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseMain {
		return c.state, model.NewNotAuthenticatedError()
	}
	if err := c.loadHeader(ctx); err != nil {
		return c.state, err
	}
	return c.state, nil
}

// Logout はマーカーを削除し、状態を初期化してWelcomeへ戻る。
// マーカーの削除に失敗した場合も状態は初期化され、エラーを返す。
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Phase != PhaseMain {
		return model.NewInvalidTransitionError(c.state.Phase.String(), PhaseWelcome.String())
	}

	userID := c.state.UserID
	var errs []error
	for _, key := range []string{MarkerUserID, MarkerUserName, MarkerUserGender} {
		if err := c.markers.Delete(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	c.state = State{Phase: PhaseWelcome}

	slog.Info("session ended", slog.String("user_id", userID))
	if len(errs) > 0 {
		return model.NewStorageError("delete session marker", errors.Join(errs...))
	}
	return nil
}

func (c *Controller) readMarker(ctx context.Context, key string) (string, error) {
	v, found, err := c.markers.Get(ctx, key)
	if err != nil || !found {
		return "", err
	}
	return string(v), nil
}
