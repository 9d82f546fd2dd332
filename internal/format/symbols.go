package format

// Symbols holds the glyphs used in a rendered segment
type Symbols struct {
	Branch     string
	Detached   string
	Ahead      string
	Behind     string
	Clean      string
	Staged     string
	Unstaged   string
	Untracked  string
	Conflicted string
	Operation  string
	Tag        string
	Stash      string

	// powerline and capsule edges
	Arrow     string
	CapLeft   string
	CapRight  string
	NoGitIcon string
}

var plainSymbols = Symbols{
	Branch:     "",
	Detached:   "#",
	Ahead:      "↑",
	Behind:     "↓",
	Clean:      "✓",
	Staged:     "+",
	Unstaged:   "!",
	Untracked:  "?",
	Conflicted: "=",
	Operation:  "",
	Tag:        "@",
	Stash:      "$",
	Arrow:      ">",
	CapLeft:    "(",
	CapRight:   ")",
	NoGitIcon:  "",
}

var nerdfontSymbols = Symbols{
	Branch:     "\ue725", // nf-dev-git_branch
	Detached:   "\uf417", // nf-oct-git_commit
	Ahead:      "\uf062", // nf-fa-arrow_up
	Behind:     "\uf063", // nf-fa-arrow_down
	Clean:      "\uf00c", // nf-fa-check
	Staged:     "\uf067", // nf-fa-plus
	Unstaged:   "\uf044", // nf-fa-pencil_square_o
	Untracked:  "\uf128", // nf-fa-question
	Conflicted: "\uf071", // nf-fa-warning
	Operation:  "\ue727", // nf-dev-git_merge
	Tag:        "\uf02b", // nf-fa-tag
	Stash:      "\uf01c", // nf-fa-inbox
	Arrow:      "\ue0b0", // nf-pl-left_hard_divider
	CapLeft:    "\ue0b6", // nf-ple-left_half_circle_thick
	CapRight:   "\ue0b4", // nf-ple-right_half_circle_thick
	NoGitIcon:  "\uf1d3", // nf-fa-git
}

// SymbolsFor returns the nerdfont or plain symbol set
func SymbolsFor(nerdfont bool) Symbols {
	if nerdfont {
		return nerdfontSymbols
	}
	return plainSymbols
}

// withIcon prefixes text with icon when one is set.
func withIcon(icon, text string) string {
	if icon == "" {
		return text
	}
	if text == "" {
		return icon
	}
	return icon + " " + text
}
