// Package doctor diagnoses why a git segment looks wrong or renders slowly.
//
// Checks are grouped into categories:
//
//   - [CategoryEnv]: git is installed and resolvable
//   - [CategoryConfig]: global and per-project config files load and validate
//   - [CategoryRepo]: the directory is a repository, its size class and any
//     in-progress operation
//   - [CategoryPerf]: git invocations finish well within the configured timeout
//
// Each [Check] carries a status and, for warnings and failures, a hint on
// what to change. Run never executes anything but read-only git commands.
package doctor
