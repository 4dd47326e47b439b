// Package database はPostgreSQL接続とkv_entriesスキーマのマイグレーションを提供する。
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateLogger はgolang-migrateのログをslogへ流す。
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...any) {
	l.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l migrateLogger) Verbose() bool { return false }

// Migrator は埋め込みSQLファイルをkv_entriesスキーマへ適用する。
type Migrator struct {
	m *migrate.Migrate
}

// NewMigrator は埋め込みマイグレーションを読み込んだMigratorを生成する。
// loggerがnilの場合はslog.Defaultを使う。
func NewMigrator(databaseURL string, logger *slog.Logger) (*Migrator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	m.Log = migrateLogger{logger: logger}

	return &Migrator{m: m}, nil
}

// watch はctxが終了したら実行中のマイグレーションを現在のファイルの区切りで止める。
// 戻り値の関数で監視を解除する。
func (mg *Migrator) watch(ctx context.Context) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			mg.m.GracefulStop <- true
		case <-done:
		}
	}()
	return func() { close(done) }
}

// Up は未適用のマイグレーションを全て適用し、適用後のバージョンを返す。
// 適用済みの場合は何もしない。
func (mg *Migrator) Up(ctx context.Context) (uint, error) {
	stop := mg.watch(ctx)
	err := mg.m.Up()
	stop()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, dirty, err := mg.Status()
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("schema is dirty at version %d; fix it and run migrate force", version)
	}
	return version, nil
}

// Down は全てのマイグレーションを取り消す。テストとローカル環境のリセット用。
func (mg *Migrator) Down(ctx context.Context) error {
	stop := mg.watch(ctx)
	defer stop()
	if err := mg.m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to revert migrations: %w", err)
	}
	return nil
}

// Status は現在のスキーマバージョンを返す。未適用の場合は0を返す。
func (mg *Migrator) Status() (version uint, dirty bool, err error) {
	version, dirty, err = mg.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// Close はソースとデータベースの接続を閉じる。
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr)
}

// RunMigrations はMigratorを開いてUpを実行し、閉じる。
// migrateサブコマンドとテストのセットアップで使う。
func RunMigrations(ctx context.Context, databaseURL string) (uint, error) {
	mg, err := NewMigrator(databaseURL, slog.Default())
	if err != nil {
		return 0, err
	}
	defer mg.Close()

	return mg.Up(ctx)
}
