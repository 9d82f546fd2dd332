package git

import (
	"fmt"
	"strconv"
	"strings"
)

// StatusCounts summarizes "git status --porcelain" output.
type StatusCounts struct {
	Staged     int
	Unstaged   int
	Untracked  int
	Conflicted int
}

// Clean reports whether no change of any kind was found.
func (c StatusCounts) Clean() bool {
	return c.Staged == 0 && c.Unstaged == 0 && c.Untracked == 0 && c.Conflicted == 0
}

// conflictCodes are the XY pairs porcelain v1 uses for unmerged paths.
var conflictCodes = map[string]bool{
	"DD": true, "AU": true, "UD": true, "UA": true,
	"DU": true, "AA": true, "UU": true,
}

// ParsePorcelain counts entries of porcelain v1 status output. A path can
// count as both staged and unstaged; conflicts count only as conflicts.
func ParsePorcelain(out string) StatusCounts {
	var c StatusCounts
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 || strings.HasPrefix(line, "##") {
			continue
		}
		xy := line[:2]
		switch {
		case xy == "??":
			c.Untracked++
		case xy == "!!":
		case conflictCodes[xy]:
			c.Conflicted++
		default:
			if strings.ContainsRune("MADRCT", rune(xy[0])) {
				c.Staged++
			}
			if strings.ContainsRune("MDRCT", rune(xy[1])) {
				c.Unstaged++
			}
		}
	}
	return c
}

// ParseAheadBehind parses "rev-list --left-right --count A...B" output.
func ParseAheadBehind(out string) (ahead, behind int, err error) {
	parts := strings.Fields(out)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unexpected rev-list output: %q", out)
	}
	ahead, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse ahead count: %w", err)
	}
	behind, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse behind count: %w", err)
	}
	return ahead, behind, nil
}

// ParseCount parses a single integer such as "rev-list --count" output.
func ParseCount(out string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return 0, fmt.Errorf("failed to parse count %q: %w", strings.TrimSpace(out), err)
	}
	return n, nil
}

// CountLines returns the number of non-empty lines.
func CountLines(out string) int {
	n := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) != "" {
			n++
		}
	}
	return n
}

// CommitFormat is the log format ParseCommit expects. The subject comes
// last because it is the only free-text field.
const CommitFormat = "--format=%H%n%h%n%ct%n%an%n%s"

// Commit is the latest commit as reported by "git log -1".
type Commit struct {
	Hash      string
	ShortHash string
	Timestamp int64
	Author    string
	Subject   string
}

// ParseCommit parses "git log -1" output produced with CommitFormat.
func ParseCommit(out string) (Commit, error) {
	lines := strings.SplitN(strings.TrimRight(out, "\n"), "\n", 5)
	if len(lines) < 4 || lines[0] == "" {
		return Commit{}, fmt.Errorf("unexpected log output: %q", out)
	}
	ts, err := strconv.ParseInt(strings.TrimSpace(lines[2]), 10, 64)
	if err != nil {
		return Commit{}, fmt.Errorf("failed to parse commit timestamp: %w", err)
	}
	c := Commit{
		Hash:      strings.TrimSpace(lines[0]),
		ShortHash: strings.TrimSpace(lines[1]),
		Timestamp: ts,
		Author:    lines[3],
	}
	if len(lines) == 5 {
		c.Subject = lines[4]
	}
	return c, nil
}
