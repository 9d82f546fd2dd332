package format

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/git"
	"github.com/raphi011/statusline/internal/gitinfo"
)

func sampleInfo() gitinfo.GitInfo {
	info := gitinfo.EmptyGitInfo()
	info.IsRepo = true
	info.Branch = gitinfo.BranchInfo{Current: "main", Upstream: "origin/main", HasUpstream: true, Ahead: 2, Behind: 1}
	info.Status = gitinfo.WorkingStatus{Staged: 1, Unstaged: 2, Untracked: 3}
	info.Stash = gitinfo.StashInfo{Count: 2}
	info.Version = gitinfo.VersionInfo{ShortCommitID: "abc1234", Tag: "v1.2.0", CommitsSinceTag: 3}
	return info
}

func TestRender_Plain(t *testing.T) {
	t.Parallel()

	rebase := sampleInfo()
	rebase.Operation = gitinfo.OperationStatus{State: git.OpRebase, Progress: &git.Progress{Current: 2, Total: 5}}

	clean := sampleInfo()
	clean.Status = gitinfo.WorkingStatus{Clean: true}
	clean.Stash = gitinfo.StashInfo{}

	unknown := sampleInfo()
	unknown.Status = gitinfo.WorkingStatus{}

	detached := sampleInfo()
	detached.Branch = gitinfo.BranchInfo{Current: "abc1234", Detached: true}

	conflict := sampleInfo()
	conflict.Status = gitinfo.WorkingStatus{Conflicted: 1}
	conflict.Operation = gitinfo.OperationStatus{State: git.OpMerge}

	withVersion := config.Default().Display
	withVersion.ShowVersion = true

	untagged := sampleInfo()
	untagged.Version = gitinfo.VersionInfo{ShortCommitID: "abc1234"}

	branchOnly := config.Display{ShowBranch: true}

	tests := []struct {
		name    string
		info    gitinfo.GitInfo
		display config.Display
		want    string
	}{
		{"default", sampleInfo(), config.Default().Display, "main ↑2↓1 +1 !2 ?3 $2"},
		{"clean", clean, config.Default().Display, "main ↑2↓1 ✓"},
		{"unknown status omitted", unknown, config.Default().Display, "main ↑2↓1 $2"},
		{"detached", detached, config.Default().Display, "# abc1234 +1 !2 ?3 $2"},
		{"rebase progress", rebase, config.Default().Display, "main ↑2↓1 +1 !2 ?3 rebase 2/5 $2"},
		{"merge conflict", conflict, config.Default().Display, "main ↑2↓1 =1 merge $2"},
		{"version with tag", sampleInfo(), withVersion, "main ↑2↓1 +1 !2 ?3 @v1.2.0+3 $2"},
		{"version without tag", untagged, withVersion, "main ↑2↓1 +1 !2 ?3 @abc1234 $2"},
		{"branch only", sampleInfo(), branchOnly, "main ↑2↓1"},
		{"nothing shown", sampleInfo(), config.Display{}, ""},
		{"no repo", gitinfo.EmptyGitInfo(), config.Default().Display, "no-git"},
		{"no repo ignores show flags", gitinfo.EmptyGitInfo(), config.Display{}, "no-git"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := New(tt.display, false).Render(tt.info)
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_Themes(t *testing.T) {
	t.Parallel()

	info := gitinfo.EmptyGitInfo()
	info.IsRepo = true
	info.Branch.Current = "main"
	info.Status = gitinfo.WorkingStatus{Staged: 1}

	tests := []struct {
		theme string
		want  string
	}{
		{ThemeClassic, "main +1"},
		{ThemePowerline, " main > +1 >"},
		{ThemeCapsule, "(main) (+1)"},
	}

	for _, tt := range tests {
		t.Run(tt.theme, func(t *testing.T) {
			t.Parallel()

			d := config.Default().Display
			d.Theme = tt.theme
			got := New(d, true).Render(info)

			if !strings.Contains(got, "\x1b[") {
				t.Errorf("styled output has no escape sequences: %q", got)
			}
			if stripped := ansi.Strip(got); stripped != tt.want {
				t.Errorf("stripped output = %q, want %q", stripped, tt.want)
			}
		})
	}
}

func TestRender_Nerdfont(t *testing.T) {
	t.Parallel()

	d := config.Default().Display
	d.NerdFont = true
	got := New(d, false).Render(sampleInfo())

	want := nerdfontSymbols.Branch + " main " + nerdfontSymbols.Ahead + "2" + nerdfontSymbols.Behind + "1"
	if !strings.HasPrefix(got, want) {
		t.Errorf("Render() = %q, want prefix %q", got, want)
	}
	if !strings.Contains(got, nerdfontSymbols.Stash+"2") {
		t.Errorf("Render() = %q, missing nerdfont stash count", got)
	}
}

func TestParts_Kinds(t *testing.T) {
	t.Parallel()

	info := sampleInfo()
	info.Operation = gitinfo.OperationStatus{State: git.OpBisect}
	d := config.Default().Display
	d.ShowVersion = true

	parts := New(d, false).Parts(info)

	want := []Kind{KindBranch, KindDirty, KindOperation, KindVersion, KindStash}
	if len(parts) != len(want) {
		t.Fatalf("got %d parts, want %d: %+v", len(parts), len(want), parts)
	}
	for i, k := range want {
		if parts[i].Kind != k {
			t.Errorf("parts[%d].Kind = %d, want %d", i, parts[i].Kind, k)
		}
	}
}

func TestTruncateBranch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		limit int
		want  string
	}{
		{"no limit", "feature/very-long-branch", 0, "feature/very-long-branch"},
		{"fits", "main", 10, "main"},
		{"exact", "feature-x", 9, "feature-x"},
		{"cut", "feature/very-long-branch", 12, "feature/v..."},
		{"minimum of three", "feature", 1, "..."},
		{"runes", "fëätüre-branch", 8, "fëätü..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := TruncateBranch(tt.input, tt.limit); got != tt.want {
				t.Errorf("TruncateBranch(%q, %d) = %q, want %q", tt.input, tt.limit, got, tt.want)
			}
		})
	}
}
