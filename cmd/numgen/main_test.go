package main

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func setupCLI(t *testing.T) []string {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("NUMGEN_GENERATOR_TICKS", "2")
	t.Setenv("NUMGEN_GENERATOR_TICK_INTERVAL", "1ms")
	return []string{"--storage", "bunt", "--path", filepath.Join(t.TempDir(), "history.db"), "--log-level", "error"}
}

func TestRun_GenerateAndHistory(t *testing.T) {
	flags := setupCLI(t)

	code, out, _ := runCLI(t, append(flags, "history")...)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "history is empty, generate your first number")

	code, out, _ = runCLI(t, append(flags, "--min", "5", "--max", "6", "gen")...)
	require.Equal(t, 0, code)
	assert.Regexp(t, regexp.MustCompile(`✓ generated number: [56]\n`), out)
	// the progress line is erased before the notice, so the notice starts its own line
	assert.Contains(t, out, "\r\033[K✓ generated number:")
	assert.NotRegexp(t, regexp.MustCompile(`\.✓`), out)

	code, out, _ = runCLI(t, append(flags, "history")...)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "last 1 entries")
	assert.Contains(t, out, "[5 - 6]")

	code, out, _ = runCLI(t, append(flags, "stats")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "total generated: 1\n", out)

	code, out, _ = runCLI(t, append(flags, "clear")...)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "✓ history cleared")

	code, out, _ = runCLI(t, append(flags, "stats")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "total generated: 0\n", out)
}

func TestRun_InvalidRange(t *testing.T) {
	flags := setupCLI(t)

	tests := []struct {
		name     string
		min, max string
		want     string
	}{
		{"equal bounds", "5", "5", "minimum must be less than maximum"},
		{"inverted bounds", "10", "1", "minimum must be less than maximum"},
		{"not a number", "abc", "10", "✗"},
		{"fractional", "1.5", "10", "✗"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, _ := runCLI(t, append(flags, "--min", tt.min, "--max", tt.max, "gen")...)
			assert.Equal(t, 1, code)
			assert.Contains(t, out, tt.want)
		})
	}

	code, out, _ := runCLI(t, append(flags, "stats")...)
	require.Equal(t, 0, code)
	assert.Equal(t, "total generated: 0\n", out)
}

func TestRun_Delete(t *testing.T) {
	flags := setupCLI(t)

	code, out, _ := runCLI(t, append(flags, "delete", "nope")...)
	assert.Equal(t, 0, code)
	assert.Equal(t, "no entry with id nope\n", out)

	code, _, errOut := runCLI(t, append(flags, "delete")...)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "delete needs exactly one id")
}

func TestRun_Usage(t *testing.T) {
	flags := setupCLI(t)

	code, _, errOut := runCLI(t, flags...)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "usage: numgen")

	code, _, errOut = runCLI(t, append(flags, "launch")...)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, `unknown command "launch"`)

	code, _, _ = runCLI(t, "--storage", "floppy", "stats")
	assert.Equal(t, 1, code)
}

func TestRun_Commands(t *testing.T) {
	flags := setupCLI(t)

	code, _, _ := runCLI(t, append(flags, "--min", "1", "--max", "3", "generate")...)
	require.Equal(t, 0, code)

	tests := []struct {
		name     string
		args     []string
		code     int
		stdout   string
		stderr   string
		contains bool
	}{
		{name: "stats after one roll", args: []string{"stats"}, code: 0, stdout: "total generated: 1\n"},
		{name: "ls alias", args: []string{"ls"}, code: 0, stdout: "last 1 entries", contains: true},
		{name: "rm alias with unknown id", args: []string{"rm", "nope"}, code: 0, stdout: "no entry with id nope\n"},
		{name: "clear", args: []string{"clear"}, code: 0, stdout: "✓ history cleared\n"},
		{name: "stats after clear", args: []string{"stats"}, code: 0, stdout: "total generated: 0\n"},
		{name: "history after clear", args: []string{"history"}, code: 0, stdout: "history is empty, generate your first number\n"},
		{name: "unknown command", args: []string{"roll"}, code: 2, stderr: `unknown command "roll"`, contains: true},
		{name: "delete without id", args: []string{"delete"}, code: 2, stderr: "delete needs exactly one id", contains: true},
		{name: "unknown flag", args: []string{"--verbose", "stats"}, code: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, out, errOut := runCLI(t, append(append([]string{}, flags...), tt.args...)...)
			assert.Equal(t, tt.code, code)

			switch {
			case tt.stdout != "" && tt.contains:
				assert.Contains(t, out, tt.stdout)
			case tt.stdout != "":
				assert.Equal(t, tt.stdout, out)
			}
			if tt.stderr != "" {
				assert.Contains(t, errOut, tt.stderr)
			}
		})
	}
}
