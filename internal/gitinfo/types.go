package gitinfo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/raphi011/statusline/internal/cache"
	"github.com/raphi011/statusline/internal/git"
)

// NoGitBranch is the branch name reported when no branch could be read.
const NoGitBranch = "no-git"

// Category is one of the independent sub-queries of GitInfo.
type Category string

const (
	CategoryBranch    Category = "branch"
	CategoryStatus    Category = "status"
	CategoryOperation Category = "operation"
	CategoryVersion   Category = "version"
	CategoryStash     Category = "stash"
)

// Categories lists every category in query order.
var Categories = []Category{CategoryBranch, CategoryStatus, CategoryOperation, CategoryVersion, CategoryStash}

// ParseCategory converts a name such as "branch" to a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Categories, c) {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

func (c Category) key() cache.Key {
	return cache.Key(c)
}

// BranchInfo describes HEAD and its upstream.
type BranchInfo struct {
	Current     string `json:"current"`
	Upstream    string `json:"upstream,omitempty"`
	HasUpstream bool   `json:"has_upstream"`
	Detached    bool   `json:"detached"` // Current is then the short commit id
	Ahead       int    `json:"ahead"`
	Behind      int    `json:"behind"`
}

// WorkingStatus counts changes in the working tree and index.
type WorkingStatus struct {
	Clean      bool `json:"clean"`
	Staged     int  `json:"staged"`
	Unstaged   int  `json:"unstaged"`
	Untracked  int  `json:"untracked"`
	Conflicted int  `json:"conflicted"`
}

// OperationStatus is the in-progress multi-step operation, if any.
type OperationStatus struct {
	State    git.OperationState `json:"state"`
	Branch   string             `json:"branch,omitempty"`
	Progress *git.Progress      `json:"progress,omitempty"`
}

// InProgress reports whether an operation is underway.
func (o OperationStatus) InProgress() bool {
	return o.State != git.OpNone
}

// VersionInfo describes the latest commit and the nearest tag.
type VersionInfo struct {
	CommitID        string `json:"commit_id,omitempty"`
	ShortCommitID   string `json:"short_commit_id,omitempty"`
	Message         string `json:"message,omitempty"`
	Author          string `json:"author,omitempty"`
	Timestamp       int64  `json:"timestamp,omitempty"`
	Tag             string `json:"tag,omitempty"`
	CommitsSinceTag int    `json:"commits_since_tag,omitempty"`
}

// StashInfo counts stash entries.
type StashInfo struct {
	Count int `json:"count"`
}

// GitInfo is a snapshot of everything the status line shows about a
// repository. Every field is always populated: categories that failed or
// were not queried hold their empty value.
type GitInfo struct {
	IsRepo    bool            `json:"is_repo"`
	Branch    BranchInfo      `json:"branch"`
	Status    WorkingStatus   `json:"status"`
	Operation OperationStatus `json:"operation"`
	Version   VersionInfo     `json:"version"`
	Stash     StashInfo       `json:"stash"`
}

// EmptyBranchInfo is the branch value used when it could not be read.
func EmptyBranchInfo() BranchInfo {
	return BranchInfo{Current: NoGitBranch}
}

// EmptyGitInfo is the snapshot for a directory outside any repository.
func EmptyGitInfo() GitInfo {
	return GitInfo{Branch: EmptyBranchInfo()}
}

// QueryOptions selects what GetGitInfo queries.
type QueryOptions struct {
	ForceRefresh bool       // bypass caches and large-repo shortcuts
	Only         []Category // if set, query only these
	Skip         []Category // never query these
}

// Includes reports whether c is selected.
func (o QueryOptions) Includes(c Category) bool {
	if len(o.Only) > 0 && !slices.Contains(o.Only, c) {
		return false
	}
	return !slices.Contains(o.Skip, c)
}

// filtered reports whether any category is excluded.
func (o QueryOptions) filtered() bool {
	for _, c := range Categories {
		if !o.Includes(c) {
			return true
		}
	}
	return false
}

// Filter replaces every category not selected by opts with its empty value.
func (g GitInfo) Filter(opts QueryOptions) GitInfo {
	if !opts.Includes(CategoryBranch) {
		g.Branch = EmptyBranchInfo()
	}
	if !opts.Includes(CategoryStatus) {
		g.Status = WorkingStatus{}
	}
	if !opts.Includes(CategoryOperation) {
		g.Operation = OperationStatus{}
	}
	if !opts.Includes(CategoryVersion) {
		g.Version = VersionInfo{}
	}
	if !opts.Includes(CategoryStash) {
		g.Stash = StashInfo{}
	}
	return g
}
