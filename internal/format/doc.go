// Package format renders a [gitinfo.GitInfo] snapshot as one status-line
// segment.
//
// A snapshot is first broken into parts (branch, status, operation,
// version, stash), each gated by a display.show_* setting. Parts are then
// joined either as plain text or styled with one of the themes:
//
//   - classic: colored text separated by spaces
//   - powerline: colored blocks joined by arrow separators
//   - capsule: each part in its own rounded block
//
// With nerdfont enabled, icons and separators come from the Nerd Font
// private use area. Otherwise plain unicode and ASCII glyphs are used.
//
// Branch names longer than display.max_branch_length are cut and end in
// "...". A directory outside any repository renders as "no-git".
package format
