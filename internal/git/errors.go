package git

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a git failure.
type Kind int

const (
	KindGeneric Kind = iota
	KindSecurity
	KindExecution
	KindTimeout
	KindPermissionDenied
	KindCorrupt
	KindNetwork
	KindRepoNotFound
)

func (k Kind) String() string {
	switch k {
	case KindSecurity:
		return "security"
	case KindExecution:
		return "execution"
	case KindTimeout:
		return "timeout"
	case KindPermissionDenied:
		return "permission denied"
	case KindCorrupt:
		return "corrupt repository"
	case KindNetwork:
		return "network"
	case KindRepoNotFound:
		return "not a git repository"
	default:
		return "git"
	}
}

// Sentinels for errors.Is matching against an *Error of the given kind.
var (
	ErrGit              = errors.New("git command failed")
	ErrSecurity         = errors.New("git command rejected")
	ErrExecution        = errors.New("git execution failed")
	ErrTimeout          = errors.New("git command timed out")
	ErrPermissionDenied = errors.New("git permission denied")
	ErrCorrupt          = errors.New("git repository corrupt")
	ErrNetwork          = errors.New("git network failure")
	ErrRepoNotFound     = errors.New("not a git repository")
)

var kindSentinels = map[Kind]error{
	KindGeneric:          ErrGit,
	KindSecurity:         ErrSecurity,
	KindExecution:        ErrExecution,
	KindTimeout:          ErrTimeout,
	KindPermissionDenied: ErrPermissionDenied,
	KindCorrupt:          ErrCorrupt,
	KindNetwork:          ErrNetwork,
	KindRepoNotFound:     ErrRepoNotFound,
}

// Error is a failed or rejected git invocation. It carries the offending
// command, and for security rejections the offending argument.
type Error struct {
	Kind       Kind
	Subcommand string
	Args       []string
	Arg        string // offending argument, if any
	Reason     string
	ExitCode   int
	Stderr     string
	Err        error // underlying OS or context error
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "git %s", e.Subcommand)
	if e.Kind == KindSecurity {
		b.WriteString(": rejected")
		if e.Reason != "" {
			b.WriteString(": " + e.Reason)
		}
		if e.Arg != "" {
			fmt.Fprintf(&b, " %q", truncate(e.Arg, 80))
		}
		return b.String()
	}
	fmt.Fprintf(&b, ": %s", e.Kind)
	if e.ExitCode != 0 {
		fmt.Fprintf(&b, " (exit %d)", e.ExitCode)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		b.WriteString(": " + firstLine(msg))
	} else if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying error.
func (e *Error) Unwrap() []error {
	errs := []error{kindSentinels[e.Kind]}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == k
}

func securityError(sub string, args []string, arg, reason string) *Error {
	return &Error{Kind: KindSecurity, Subcommand: sub, Args: args, Arg: arg, Reason: reason}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
