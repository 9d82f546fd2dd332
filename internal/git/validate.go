package git

import (
	"regexp"
	"slices"
	"strings"
	"time"
)

// MaxArgLength bounds a single argument.
const MaxArgLength = 1000

// CommandSpec is a single git invocation prior to validation.
type CommandSpec struct {
	Subcommand string
	Args       []string
	Dir        string
	Timeout    time.Duration
}

// readOnlySubcommands is the complete set of subcommands the executor runs.
var readOnlySubcommands = map[string]bool{
	"status":       true,
	"log":          true,
	"branch":       true,
	"rev-parse":    true,
	"rev-list":     true,
	"describe":     true,
	"stash":        true,
	"diff":         true,
	"show":         true,
	"config":       true,
	"symbolic-ref": true,
	"merge-base":   true,
	"cat-file":     true,
	"ls-files":     true,
	"show-ref":     true,
}

var allowedFlags = map[string]bool{
	"--": true,

	// rev-parse / symbolic-ref
	"--git-dir": true, "--absolute-git-dir": true, "--git-common-dir": true,
	"--show-toplevel": true, "--is-inside-work-tree": true, "--is-bare-repository": true,
	"--abbrev-ref": true, "--symbolic-full-name": true, "--verify": true,
	"--quiet": true, "-q": true, "--short": true,

	// branch
	"--show-current": true, "--list": true, "-l": true, "--all": true, "-a": true,
	"-r": true, "--remotes": true, "-v": true, "-vv": true, "--merged": true,
	"--no-merged": true, "--contains": true,

	// status / diff / ls-files
	"--porcelain": true, "--branch": true, "-b": true, "-s": true, "-z": true,
	"--cached": true, "--staged": true, "--stat": true, "--numstat": true,
	"--shortstat": true, "--name-only": true, "--name-status": true,
	"--no-color": true, "--no-renames": true, "--ignore-submodules": true,
	"--others": true, "--exclude-standard": true, "--deleted": true, "--modified": true,
	"--unmerged": true, "-u": true,

	// log / rev-list / describe
	"--count": true, "--left-right": true, "--walk-reflogs": true, "-g": true,
	"--first-parent": true, "--no-merges": true, "--oneline": true, "--reverse": true,
	"--tags": true, "--always": true, "--long": true, "--exact-match": true,
	"-1": true, "-n": true,

	// config (read modes only)
	"--get": true, "--get-all": true, "--get-regexp": true, "--local": true,
	"--global": true, "--null": true,

	// cat-file / show-ref / merge-base
	"-t": true, "-p": true, "-e": true, "--heads": true, "--head": true,
	"--is-ancestor": true, "--fork-point": true,
}

// allowedValuedFlags are matched by prefix; their value must match safeFlagValue.
var allowedValuedFlags = []string{
	"--format=",
	"--pretty=",
	"--abbrev=",
	"--short=",
	"--max-count=",
	"--untracked-files=",
	"--porcelain=",
	"--ignore-submodules=",
	"--since=",
	"--until=",
	"--match=",
	"--candidates=",
	"--sort=",
	"--abbrev-ref=",
}

var (
	safeFlagValue = regexp.MustCompile(`^[A-Za-z0-9%:,._/+=@-]*$`)

	plainRefPattern = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)
	hexIDPattern    = regexp.MustCompile(`^[0-9a-fA-F]{4,40}$`)
	ancestryPattern = regexp.MustCompile(`^(HEAD|@|[A-Za-z0-9._/-]+)([~^][0-9]*)+$`)
	reflogPattern   = regexp.MustCompile(`^([A-Za-z0-9._/-]*)@\{(upstream|u|push|-?[0-9]+|[A-Za-z0-9.:_-]+)\}$`)

	shellMetaPattern   = regexp.MustCompile("[;&|`$(){}\\[\\]<>\\\\!*?'\"]")
	whitespacePattern  = regexp.MustCompile(`\s`)
	controlCharPattern = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// compositionOperators are never accepted in a raw command line.
var compositionOperators = []string{"|", "&", ";", ">", "<", "`", "$(", "\n"}

// IsAllowedSubcommand reports whether sub is on the read-only allow-list.
func IsAllowedSubcommand(sub string) bool {
	return readOnlySubcommands[sub]
}

// IsAllowedFlag reports whether flag (including any =value) is accepted.
func IsAllowedFlag(flag string) bool {
	if allowedFlags[flag] {
		return true
	}
	for _, prefix := range allowedValuedFlags {
		if strings.HasPrefix(flag, prefix) {
			return safeFlagValue.MatchString(strings.TrimPrefix(flag, prefix))
		}
	}
	return false
}

// IsLegitimateRef reports whether arg is git reference syntax: a plain ref,
// an object id, HEAD with ancestry suffixes, a reflog/upstream selector, or
// a two- or three-dot range between two such refs.
func IsLegitimateRef(arg string) bool {
	if arg == "" {
		return false
	}
	if left, right, ok := strings.Cut(arg, "..."); ok {
		return isSingleRef(left) && isSingleRef(right)
	}
	if left, right, ok := strings.Cut(arg, ".."); ok {
		return isSingleRef(left) && isSingleRef(right)
	}
	return isSingleRef(arg)
}

func isSingleRef(s string) bool {
	switch {
	case s == "":
		return false
	case s == "HEAD" || s == "@":
		return true
	case hexIDPattern.MatchString(s):
		return true
	case strings.Contains(s, ".."):
		return false
	case plainRefPattern.MatchString(s):
		return !strings.HasPrefix(s, "-")
	case ancestryPattern.MatchString(s):
		return !strings.HasPrefix(s, "-")
	case reflogPattern.MatchString(s):
		return !strings.HasPrefix(s, "-")
	}
	return false
}

// dangerousReason returns why arg is unsafe, or "" if it is not.
func dangerousReason(arg string) string {
	switch {
	case controlCharPattern.MatchString(arg):
		return "control character in argument"
	case shellMetaPattern.MatchString(arg):
		return "shell metacharacter in argument"
	case strings.Contains(arg, ".."):
		return "path traversal in argument"
	case whitespacePattern.MatchString(arg):
		return "whitespace in argument"
	}
	return ""
}

// Validate checks a command against the allow-lists without running it.
// Every failure is an *Error of KindSecurity.
func Validate(spec CommandSpec) error {
	sub := spec.Subcommand
	if !IsAllowedSubcommand(sub) {
		return securityError(sub, spec.Args, sub, "subcommand not allowed")
	}

	var positional []string
	literal := false
	for _, arg := range spec.Args {
		if len(arg) > MaxArgLength {
			return securityError(sub, spec.Args, arg, "argument too long")
		}
		if !literal && strings.HasPrefix(arg, "-") {
			if !IsAllowedFlag(arg) {
				return securityError(sub, spec.Args, arg, "flag not allowed")
			}
			if arg == "--" {
				literal = true
			}
			continue
		}
		if !IsLegitimateRef(arg) {
			if reason := dangerousReason(arg); reason != "" {
				return securityError(sub, spec.Args, arg, reason)
			}
		}
		positional = append(positional, arg)
	}

	return checkReadOnly(sub, spec.Args, positional)
}

// checkReadOnly rejects the write forms of subcommands that also have
// read forms.
func checkReadOnly(sub string, args, positional []string) error {
	switch sub {
	case "stash":
		// git treats anything before the subcommand as push options
		if len(args) == 0 || (args[0] != "list" && args[0] != "show") {
			return securityError(sub, args, "", "only stash list and stash show are allowed")
		}
	case "config":
		if !slices.ContainsFunc(args, isConfigReadFlag) {
			return securityError(sub, args, "", "config requires a read flag")
		}
	case "symbolic-ref":
		if len(positional) > 1 {
			return securityError(sub, args, positional[1], "symbolic-ref may not update a ref")
		}
	case "branch":
		if len(positional) > 0 && !slices.Contains(args, "--list") && !slices.Contains(args, "-l") &&
			!slices.Contains(args, "--contains") && !slices.Contains(args, "--merged") &&
			!slices.Contains(args, "--no-merged") {
			return securityError(sub, args, positional[0], "branch may not create branches")
		}
	}
	return nil
}

func isConfigReadFlag(arg string) bool {
	switch arg {
	case "--get", "--get-all", "--get-regexp", "--list", "-l":
		return true
	}
	return false
}

// ParseCommand splits a raw command line such as "git rev-parse HEAD" into
// a CommandSpec. Pipes, command chaining and redirections are rejected;
// the line is never handed to a shell.
func ParseCommand(line string) (CommandSpec, error) {
	for _, op := range compositionOperators {
		if strings.Contains(line, op) {
			return CommandSpec{}, securityError("", nil, op, "command composition not allowed")
		}
	}
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == "git" {
		fields = fields[1:]
	}
	if len(fields) == 0 {
		return CommandSpec{}, securityError("", nil, line, "empty command")
	}
	spec := CommandSpec{Subcommand: fields[0], Args: fields[1:]}
	if err := Validate(spec); err != nil {
		return CommandSpec{}, err
	}
	return spec, nil
}
