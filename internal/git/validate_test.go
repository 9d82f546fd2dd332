package git

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate_Subcommands(t *testing.T) {
	t.Parallel()

	tests := []struct {
		sub     string
		args    []string
		wantErr bool
	}{
		{"status", []string{"--porcelain"}, false},
		{"rev-parse", []string{"--git-dir"}, false},
		{"rev-list", []string{"--count", "HEAD"}, false},
		{"log", []string{"-1", CommitFormat}, false},
		{"describe", []string{"--tags", "--abbrev=0"}, false},
		{"show-ref", []string{"--heads"}, false},
		{"push", nil, true},
		{"commit", []string{"-m", "x"}, true},
		{"checkout", []string{"main"}, true},
		{"fetch", nil, true},
		{"", nil, true},
		{"STATUS", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.sub, func(t *testing.T) {
			t.Parallel()
			err := Validate(CommandSpec{Subcommand: tt.sub, Args: tt.args})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%s %v) = %v, wantErr %v", tt.sub, tt.args, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrSecurity) {
				t.Errorf("Validate error = %v, want ErrSecurity", err)
			}
		})
	}
}

func TestValidate_Flags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"plain allowed flag", []string{"--porcelain"}, false},
		{"valued flag with safe value", []string{"--untracked-files=no"}, false},
		{"format string", []string{"--format=%H%n%s"}, false},
		{"upload-pack", []string{"--upload-pack=touch /tmp/pwned"}, true},
		{"upload-pack safe value", []string{"--upload-pack=evil"}, true},
		{"exec flag", []string{"--exec=sh"}, true},
		{"output flag", []string{"--output=/tmp/x"}, true},
		{"config injection", []string{"-c"}, true},
		{"format with shell metachar", []string{"--format=$(id)"}, true},
		{"format with space", []string{"--format=%H %s"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(CommandSpec{Subcommand: "status", Args: tt.args})
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(status %v) = %v, wantErr %v", tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestIsLegitimateRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		arg  string
		want bool
	}{
		{"main", true},
		{"feature/auth-v2", true},
		{"v1.2.3", true},
		{"HEAD", true},
		{"@", true},
		{"HEAD~3", true},
		{"HEAD^2", true},
		{"HEAD~1^2", true},
		{"main~2", true},
		{"abc1234", true},
		{"0123456789abcdef0123456789abcdef01234567", true},
		{"@{upstream}", true},
		{"@{u}", true},
		{"@{-1}", true},
		{"@{push}", true},
		{"main@{yesterday}", true},
		{"main@{2024-01-01}", true},
		{"origin/main..HEAD", true},
		{"HEAD...@{upstream}", true},
		{"v1.0.0..HEAD", true},
		{"", false},
		{"..", false},
		{"../etc/passwd", false},
		{"main..", false},
		{"..main", false},
		{"$(whoami)", false},
		{"main;rm", false},
		{"a b", false},
		{"-rf", false},
		{"@{1 week ago}", false},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			t.Parallel()
			if got := IsLegitimateRef(tt.arg); got != tt.want {
				t.Errorf("IsLegitimateRef(%q) = %v, want %v", tt.arg, got, tt.want)
			}
		})
	}
}

func TestValidate_Arguments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sub     string
		args    []string
		wantErr string // substring of the error, "" for success
	}{
		{"ancestry ref", "rev-parse", []string{"HEAD~3"}, ""},
		{"range", "rev-list", []string{"--count", "origin/main..HEAD"}, ""},
		{"symmetric upstream range", "rev-list", []string{"--left-right", "--count", "HEAD...@{upstream}"}, ""},
		{"tree path", "cat-file", []string{"-t", "HEAD:README.md"}, ""},
		{"pathspec after separator", "diff", []string{"--", "src/main.go"}, ""},
		{"semicolon", "log", []string{"main;rm -rf /"}, "shell metacharacter"},
		{"backtick", "log", []string{"`id`"}, "shell metacharacter"},
		{"pipe", "log", []string{"HEAD|cat"}, "shell metacharacter"},
		{"traversal", "show", []string{"../../etc/passwd"}, "path traversal"},
		{"whitespace", "show", []string{"HEAD README"}, "whitespace"},
		{"control char", "show", []string{"HEAD\x00"}, "control character"},
		{"too long", "show", []string{strings.Repeat("a", MaxArgLength+1)}, "too long"},
		{"max length ok", "show", []string{strings.Repeat("a", MaxArgLength)}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(CommandSpec{Subcommand: tt.sub, Args: tt.args})
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate error = %q, want to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidate_ReadOnlyGuards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sub     string
		args    []string
		wantErr bool
	}{
		{"stash list", "stash", []string{"list"}, false},
		{"stash show", "stash", []string{"show"}, false},
		{"bare stash pushes", "stash", nil, true},
		{"stash push", "stash", []string{"push"}, true},
		{"stash drop", "stash", []string{"drop"}, true},
		{"stash push with pathspec named list", "stash", []string{"--", "list"}, true},
		{"stash option before show", "stash", []string{"-q", "show"}, true},
		{"stash show with options", "stash", []string{"show", "--stat"}, false},
		{"symbolic-ref write after separator", "symbolic-ref", []string{"--", "HEAD", "refs/heads/x"}, true},
		{"branch create after separator", "branch", []string{"--", "evil"}, true},
		{"config get", "config", []string{"--get", "user.name"}, false},
		{"config list", "config", []string{"--list"}, false},
		{"config set", "config", []string{"user.name", "mallory"}, true},
		{"symbolic-ref read", "symbolic-ref", []string{"--short", "HEAD"}, false},
		{"symbolic-ref write", "symbolic-ref", []string{"HEAD", "refs/heads/x"}, true},
		{"branch show current", "branch", []string{"--show-current"}, false},
		{"branch list pattern", "branch", []string{"--list", "feature/*"}, true}, // glob is a metacharacter
		{"branch list name", "branch", []string{"--list", "main"}, false},
		{"branch create", "branch", []string{"evil"}, true},
		{"branch delete", "branch", []string{"-D", "main"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := Validate(CommandSpec{Subcommand: tt.sub, Args: tt.args})
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%s %v) = %v, wantErr %v", tt.sub, tt.args, err, tt.wantErr)
			}
		})
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		line     string
		wantSub  string
		wantArgs []string
		wantErr  bool
	}{
		{"with git prefix", "git rev-parse --abbrev-ref HEAD", "rev-parse", []string{"--abbrev-ref", "HEAD"}, false},
		{"without prefix", "status --porcelain", "status", []string{"--porcelain"}, false},
		{"extra spaces", "  git   log  -1 ", "log", []string{"-1"}, false},
		{"pipe to wc", "git ls-files | wc -l", "", nil, true},
		{"chained", "git status && git push", "", nil, true},
		{"semicolon", "git status; rm -rf /", "", nil, true},
		{"redirect", "git log > /tmp/out", "", nil, true},
		{"subshell", "git log $(id)", "", nil, true},
		{"disallowed subcommand", "git push origin main", "", nil, true},
		{"empty", "git", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			spec, err := ParseCommand(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCommand(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrSecurity) {
					t.Errorf("ParseCommand error = %v, want ErrSecurity", err)
				}
				return
			}
			if spec.Subcommand != tt.wantSub {
				t.Errorf("Subcommand = %q, want %q", spec.Subcommand, tt.wantSub)
			}
			if strings.Join(spec.Args, " ") != strings.Join(tt.wantArgs, " ") {
				t.Errorf("Args = %v, want %v", spec.Args, tt.wantArgs)
			}
		})
	}
}

func TestSecurityError_CarriesArgument(t *testing.T) {
	t.Parallel()
	err := Validate(CommandSpec{Subcommand: "log", Args: []string{"--upload-pack=x"}})
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("Validate error = %T, want *Error", err)
	}
	if ge.Kind != KindSecurity {
		t.Errorf("Kind = %v, want %v", ge.Kind, KindSecurity)
	}
	if ge.Arg != "--upload-pack=x" {
		t.Errorf("Arg = %q, want %q", ge.Arg, "--upload-pack=x")
	}
	if ge.Subcommand != "log" {
		t.Errorf("Subcommand = %q, want %q", ge.Subcommand, "log")
	}
}
