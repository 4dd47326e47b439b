package app

import (
	"fmt"
	"io"
)

// Command はmoodglowバイナリのサブコマンド。
type Command string

const (
	// CommandServe はHTTP APIとセッションクリーンアップを起動する。
	CommandServe Command = "serve"
	// CommandWorker はセッションクリーンアップのみを実行する。共有ストアが必要。
	CommandWorker Command = "worker"
	// CommandMigrate はkv_entriesスキーマのマイグレーションを適用する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は稼働中のサーバーの/healthを叩く。
	// distrolessイメージにはcurlがないため、Dockerのヘルスチェックから使う。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp は使い方を表示する。
	CommandHelp Command = "help"
)

// commands はusage表示順のサブコマンド一覧と説明。
var commands = []struct {
	cmd  Command
	desc string
}{
	{CommandServe, "start the HTTP API (default)"},
	{CommandWorker, "purge expired sessions on a shared store"},
	{CommandMigrate, "apply PostgreSQL migrations for the key-value table"},
	{CommandHealthcheck, "probe /health of a running server"},
	{CommandHelp, "show this message"},
}

// ParseCommand は先頭の引数からサブコマンドを決める。
// 引数がなければserve、-hと--helpはhelpとして扱う。2番目以降の引数は見ない。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 {
		return CommandServe, nil
	}

	switch args[0] {
	case "-h", "--help":
		return CommandHelp, nil
	}
	for _, c := range commands {
		if string(c.cmd) == args[0] {
			return c.cmd, nil
		}
	}
	return "", fmt.Errorf("unknown command %q", args[0])
}

// PrintUsage はサブコマンドの一覧をwに書き出す。
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: moodglow [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.cmd, c.desc)
	}
}
