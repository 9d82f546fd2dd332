// Package cmd runs external processes for statusline.
//
// Commands are always spawned directly with an argument array, never via a
// shell. [ExecRunner] bounds the captured output and the run time and
// reports the raw outcome (exit code, stderr, timeout) so callers can
// classify failures themselves.
//
// # Usage
//
//	res, err := cmd.ExecRunner{}.Run(ctx, cmd.Spec{
//	    Name:      "git",
//	    Args:      []string{"status", "--porcelain"},
//	    Dir:       repoPath,
//	    Timeout:   time.Second,
//	    MaxOutput: 1 << 20,
//	})
package cmd
