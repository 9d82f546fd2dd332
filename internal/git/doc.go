// Package git runs read-only git queries safely and inspects repository
// state on disk.
//
// All queries shell out to the git CLI through [Executor], which never
// involves a shell and refuses anything outside a fixed read-only surface.
//
// # Validation
//
// Before a process is spawned, [Validate] checks:
//
//   - the subcommand is on the read-only allow-list (status, log, branch,
//     rev-parse, rev-list, describe, stash, diff, show, config,
//     symbolic-ref, merge-base, cat-file, ls-files, show-ref)
//   - every flag is allow-listed; valued flags such as --format= carry a
//     safe value
//   - every other argument is either git reference syntax (HEAD~3,
//     @{upstream}, origin/main..HEAD) or free of shell metacharacters,
//     "..", whitespace and control characters
//   - write forms of dual-use subcommands (stash push, config set,
//     symbolic-ref update, branch create) are rejected
//
// Raw command lines go through [ParseCommand], which rejects pipes,
// chaining and redirection outright.
//
// # Execution
//
// Each invocation runs with a bounded timeout ([DefaultTimeout], capped at
// [MaxTimeout]), a bounded output buffer ([MaxOutput]) and an environment
// reduced to PATH, HOME and USER plus explicit overrides. GIT_DIR,
// GIT_WORK_TREE, GIT_INDEX_FILE and GIT_OBJECT_DIRECTORY are never passed.
// Timeouts are retried twice before surfacing.
//
// # Errors
//
// Failures are *[Error] values classified by [Kind]. Use errors.Is with
// the sentinels ([ErrSecurity], [ErrTimeout], [ErrRepoNotFound], ...) or
// errors.As to reach the offending command and argument.
//
// # Operation State
//
// [DetectOperation] reads merge/rebase/cherry-pick/revert/bisect/am marker
// files from the git directory and reports the first one found.
package git
