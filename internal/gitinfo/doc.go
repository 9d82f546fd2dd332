// Package gitinfo gathers the git state shown in the status line.
//
// A [Service] runs read-only git commands through [git.Executor] and keeps
// the results in a per-service [cache.Store]. [Service.GetGitInfo] queries
// the five categories (branch, status, operation, version, stash)
// concurrently and always returns a fully populated [GitInfo]: a category
// that fails or is not selected holds its empty value, and a directory
// outside any repository yields [EmptyGitInfo].
//
// # Adaptive caching
//
// Every category is cached for a multiple of git.cache.duration_ms:
//
//	category    small  large
//	branch      x1     x6
//	status      x1     x2
//	operation   x1     x1
//	version     x1     x12
//	stash       x1     x6
//	aggregate   x2     x8
//
// A repository is large when it has more than 10000 commits, more tracked
// files than git.large_repo_file_threshold, or more than 100MB of objects
// (see [Service.IsLargeRepository]). In a large repository, unless a
// refresh is forced, the version query and the ahead/behind comparison are
// skipped and untracked files are not counted.
package gitinfo
