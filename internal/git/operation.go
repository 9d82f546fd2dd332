package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// OperationState is the in-progress multi-step operation of a repository.
type OperationState int

const (
	OpNone OperationState = iota
	OpMerge
	OpRebase
	OpCherryPick
	OpRevert
	OpBisect
	OpAm
	OpAmRebase
)

func (s OperationState) String() string {
	switch s {
	case OpMerge:
		return "merge"
	case OpRebase:
		return "rebase"
	case OpCherryPick:
		return "cherry-pick"
	case OpRevert:
		return "revert"
	case OpBisect:
		return "bisect"
	case OpAm:
		return "am"
	case OpAmRebase:
		return "am/rebase"
	default:
		return "none"
	}
}

// MarshalText renders the state by name so JSON output stays readable.
func (s OperationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name as written by MarshalText.
func (s *OperationState) UnmarshalText(text []byte) error {
	for st := OpNone; st <= OpAmRebase; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown operation state %q", text)
}

// Progress is the step of a rebase or am sequence.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Operation describes what DetectOperation found.
type Operation struct {
	State    OperationState
	Branch   string    // branch being rebased, if known
	Progress *Progress // nil when the markers carry no step counters
}

// DetectOperation inspects the marker files in gitDir.
//
// Markers are checked in a fixed order and the first match wins, so a
// single state is reported even when several transient markers coexist:
// MERGE_HEAD, rebase-merge/, rebase-apply/, CHERRY_PICK_HEAD, REVERT_HEAD,
// BISECT_LOG.
func DetectOperation(gitDir string) Operation {
	if gitDir == "" {
		return Operation{}
	}
	at := func(name ...string) string {
		return filepath.Join(append([]string{gitDir}, name...)...)
	}

	if exists(at("MERGE_HEAD")) {
		return Operation{State: OpMerge}
	}

	if isDir(at("rebase-merge")) {
		return Operation{
			State:    OpRebase,
			Branch:   readHeadName(at("rebase-merge", "head-name")),
			Progress: readProgress(at("rebase-merge", "msgnum"), at("rebase-merge", "end")),
		}
	}

	if isDir(at("rebase-apply")) {
		state := OpAmRebase
		switch {
		case exists(at("rebase-apply", "rebasing")):
			state = OpRebase
		case exists(at("rebase-apply", "applying")):
			state = OpAm
		}
		return Operation{
			State:    state,
			Branch:   readHeadName(at("rebase-apply", "head-name")),
			Progress: readProgress(at("rebase-apply", "next"), at("rebase-apply", "last")),
		}
	}

	if exists(at("CHERRY_PICK_HEAD")) {
		return Operation{State: OpCherryPick}
	}
	if exists(at("REVERT_HEAD")) {
		return Operation{State: OpRevert}
	}
	if exists(at("BISECT_LOG")) {
		return Operation{State: OpBisect}
	}
	return Operation{}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func readHeadName(path string) string {
	return strings.TrimPrefix(readTrimmed(path), "refs/heads/")
}

func readProgress(currentPath, totalPath string) *Progress {
	current, err1 := strconv.Atoi(readTrimmed(currentPath))
	total, err2 := strconv.Atoi(readTrimmed(totalPath))
	if err1 != nil || err2 != nil || total <= 0 {
		return nil
	}
	return &Progress{Current: current, Total: total}
}
