package app

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want Command
	}{
		{"no args", nil, CommandServe},
		{"serve", []string{"serve"}, CommandServe},
		{"worker", []string{"worker"}, CommandWorker},
		{"migrate", []string{"migrate"}, CommandMigrate},
		{"healthcheck", []string{"healthcheck"}, CommandHealthcheck},
		{"help", []string{"help"}, CommandHelp},
		{"short help flag", []string{"-h"}, CommandHelp},
		{"long help flag", []string{"--help"}, CommandHelp},
		{"extra args ignored", []string{"worker", "--flag", "value"}, CommandWorker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand(tt.args)
			if err != nil {
				t.Fatalf("ParseCommand(%v) error = %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("ParseCommand(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}

func TestParseCommand_Unknown_ReturnsError(t *testing.T) {
	for _, arg := range []string{"unknown", "Serve", "fetch"} {
		if _, err := ParseCommand([]string{arg}); err == nil || !strings.Contains(err.Error(), arg) {
			t.Errorf("ParseCommand([%s]) error = %v, want unknown command error", arg, err)
		}
	}
}

func TestPrintUsage_ListsEveryCommand(t *testing.T) {
	var buf bytes.Buffer
	PrintUsage(&buf)

	out := buf.String()
	for _, c := range commands {
		if !strings.Contains(out, string(c.cmd)) {
			t.Errorf("usage missing %q:\n%s", c.cmd, out)
		}
	}
}

func TestRun_Help_PrintsUsageWithoutConfig(t *testing.T) {
	// SESSION_SECRETがなくてもhelpは成功する
	t.Setenv("SESSION_SECRET", "")

	var buf bytes.Buffer
	if err := Run(&buf, []string{"--help"}); err != nil {
		t.Fatalf("Run(--help) = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "usage: moodglow") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestRun_UnknownCommand_ReturnsErrorWithUsage(t *testing.T) {
	var buf bytes.Buffer
	err := Run(&buf, []string{"fetch"})
	if err == nil {
		t.Fatal("Run(fetch) should fail")
	}
	if !strings.Contains(buf.String(), "commands:") {
		t.Errorf("usage should be printed, got %q", buf.String())
	}
}
