// Package logger はJSON構造化ログの初期化を提供する。
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName は全ログに付与するserviceフィールドの値。
const ServiceName = "moodglow"

// Redacted は秘匿属性の値の置き換え文字列。
const Redacted = "[REDACTED]"

// sensitiveKeys は値をログに残さない属性キー。
// 日記パスワードやセッショントークンが誤ってログに渡っても出力しない。
var sensitiveKeys = map[string]struct{}{
	"password":         {},
	"journal_password": {},
	"session_token":    {},
	"csrf_token":       {},
	"secret":           {},
}

// ParseLevel はログレベル名をslog.Levelに変換する。未知の値はInfoとして扱う。
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func redactSensitive(_ []string, a slog.Attr) slog.Attr {
	if _, ok := sensitiveKeys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}
	return a
}

// Setup はJSON構造化ログのslog.Loggerを生成する。
// levelはParseLevelで解釈し、全エントリにserviceフィールドを付ける。
func Setup(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       ParseLevel(level),
		ReplaceAttr: redactSensitive,
	})
	return slog.New(handler).With(slog.String("service", ServiceName))
}

// SetupDefault はSetupのロガーをグローバルロガーに設定する。
// writerがnilの場合はos.Stdoutに出力する。
func SetupDefault(w io.Writer, level string) {
	if w == nil {
		w = os.Stdout
	}
	slog.SetDefault(Setup(w, level))
}
