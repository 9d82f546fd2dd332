package log

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestLogger_Modes(t *testing.T) {
	t.Parallel()

	// each case writes one warning, one command echo and one debug line
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    string
	}{
		{
			name: "default shows warnings only",
			want: "Warning: stale lock\n",
		},
		{
			name:    "verbose adds commands and debug",
			verbose: true,
			want: "Warning: stale lock\n" +
				"[/repo] $ git status --porcelain (12ms)\n" +
				"debug: git query degraded category=version err=exit status 128\n",
		},
		{
			name:  "quiet suppresses everything",
			quiet: true,
			want:  "",
		},
		{
			name:    "quiet wins over verbose",
			verbose: true,
			quiet:   true,
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			l := New(&buf, tt.verbose, tt.quiet)

			l.Printf("Warning: %s\n", "stale lock")
			l.Command("/repo", "git", "status", "--porcelain")(12 * time.Millisecond)
			l.Debug("git query degraded", "category", "version", "err", "exit status 128")

			if got := buf.String(); got != tt.want {
				t.Errorf("output =\n%q\nwant\n%q", got, tt.want)
			}
			if l.IsVerbose() != (tt.verbose && !tt.quiet) {
				t.Errorf("IsVerbose() = %v", l.IsVerbose())
			}
		})
	}
}

func TestCommand_NoDir(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	done := New(&buf, true, false).Command("", "git", "rev-parse", "HEAD")
	if buf.Len() != 0 {
		t.Errorf("Command() wrote before completion: %q", buf.String())
	}

	done(1500 * time.Microsecond)
	if got, want := buf.String(), "$ git rev-parse HEAD (2ms)\n"; got != want {
		t.Errorf("Command() = %q, want %q", got, want)
	}
}

func TestDebug_KeyValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		keyvals []any
		want    string
	}{
		{"none", nil, "debug: repository size\n"},
		{"pairs", []any{"large", true, "commits", 42}, "debug: repository size large=true commits=42\n"},
		{"odd key dropped", []any{"large", false, "files"}, "debug: repository size large=false\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			New(&buf, true, false).Debug("repository size", tt.keyvals...)
			if got := buf.String(); got != tt.want {
				t.Errorf("Debug() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintln(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New(&buf, false, false).Println("cache", "cleared")
	if got := buf.String(); got != "cache cleared\n" {
		t.Errorf("Println() = %q", got)
	}
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := New(&buf, true, false)

	if got := FromContext(WithLogger(context.Background(), l)); got != l {
		t.Error("FromContext() should return the attached logger")
	}

	fallback := FromContext(context.Background())
	if fallback.IsVerbose() {
		t.Error("fallback logger should not be verbose")
	}
	fallback.Printf("ignored %d\n", 1)
	fallback.Debug("ignored")
}
