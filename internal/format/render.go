package format

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/raphi011/statusline/internal/config"
	"github.com/raphi011/statusline/internal/gitinfo"
)

// Kind identifies what a part shows
type Kind int

const (
	KindNoGit Kind = iota
	KindBranch
	KindClean
	KindDirty
	KindOperation
	KindVersion
	KindStash
)

// Part is one piece of the git segment
type Part struct {
	Kind Kind
	Text string
}

// Renderer turns GitInfo snapshots into segment strings
type Renderer struct {
	display config.Display
	symbols Symbols
	palette Palette
	styled  bool
}

// New creates a Renderer. Unstyled renderers emit no escape sequences.
func New(d config.Display, styled bool) *Renderer {
	return &Renderer{
		display: d,
		symbols: SymbolsFor(d.NerdFont),
		palette: DefaultPalette,
		styled:  styled,
	}
}

// Render returns the segment for info, or "" when nothing is shown.
func (r *Renderer) Render(info gitinfo.GitInfo) string {
	parts := r.Parts(info)
	if len(parts) == 0 {
		return ""
	}
	if !r.styled {
		texts := make([]string, len(parts))
		for i, p := range parts {
			texts[i] = p.Text
		}
		return strings.Join(texts, " ")
	}

	switch r.display.Theme {
	case ThemePowerline:
		return r.powerline(parts)
	case ThemeCapsule:
		return r.capsule(parts)
	default:
		return r.classic(parts)
	}
}

// Parts breaks info into the parts enabled by the display settings.
func (r *Renderer) Parts(info gitinfo.GitInfo) []Part {
	d, sym := r.display, r.symbols

	if !info.IsRepo {
		return []Part{{Kind: KindNoGit, Text: withIcon(sym.NoGitIcon, gitinfo.NoGitBranch)}}
	}

	var parts []Part
	if d.ShowBranch {
		if p, ok := r.branchPart(info.Branch); ok {
			parts = append(parts, p)
		}
	}
	if d.ShowStatus {
		if p, ok := r.statusPart(info.Status); ok {
			parts = append(parts, p)
		}
	}
	if d.ShowOperation && info.Operation.InProgress() {
		op := info.Operation
		text := op.State.String()
		if op.Progress != nil {
			text += fmt.Sprintf(" %d/%d", op.Progress.Current, op.Progress.Total)
		}
		parts = append(parts, Part{Kind: KindOperation, Text: withIcon(sym.Operation, text)})
	}
	if d.ShowVersion {
		if p, ok := r.versionPart(info.Version); ok {
			parts = append(parts, p)
		}
	}
	if d.ShowStash && info.Stash.Count > 0 {
		parts = append(parts, Part{Kind: KindStash, Text: fmt.Sprintf("%s%d", sym.Stash, info.Stash.Count)})
	}
	return parts
}

func (r *Renderer) branchPart(b gitinfo.BranchInfo) (Part, bool) {
	if b.Current == "" || b.Current == gitinfo.NoGitBranch {
		return Part{}, false
	}

	icon := r.symbols.Branch
	if b.Detached {
		icon = r.symbols.Detached
	}
	text := withIcon(icon, TruncateBranch(b.Current, r.display.MaxBranchLength))

	var track strings.Builder
	if b.Ahead > 0 {
		fmt.Fprintf(&track, "%s%d", r.symbols.Ahead, b.Ahead)
	}
	if b.Behind > 0 {
		fmt.Fprintf(&track, "%s%d", r.symbols.Behind, b.Behind)
	}
	if track.Len() > 0 {
		text += " " + track.String()
	}
	return Part{Kind: KindBranch, Text: text}, true
}

func (r *Renderer) statusPart(s gitinfo.WorkingStatus) (Part, bool) {
	if s.Clean {
		return Part{Kind: KindClean, Text: r.symbols.Clean}, true
	}

	var counts []string
	add := func(symbol string, n int) {
		if n > 0 {
			counts = append(counts, fmt.Sprintf("%s%d", symbol, n))
		}
	}
	add(r.symbols.Conflicted, s.Conflicted)
	add(r.symbols.Staged, s.Staged)
	add(r.symbols.Unstaged, s.Unstaged)
	add(r.symbols.Untracked, s.Untracked)

	// status unknown
	if len(counts) == 0 {
		return Part{}, false
	}
	return Part{Kind: KindDirty, Text: strings.Join(counts, " ")}, true
}

func (r *Renderer) versionPart(v gitinfo.VersionInfo) (Part, bool) {
	text := v.ShortCommitID
	if v.Tag != "" {
		text = v.Tag
		if v.CommitsSinceTag > 0 {
			text += fmt.Sprintf("+%d", v.CommitsSinceTag)
		}
	}
	if text == "" {
		return Part{}, false
	}
	return Part{Kind: KindVersion, Text: r.symbols.Tag + text}, true
}

func (r *Renderer) classic(parts []Part) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		style := lipgloss.NewStyle().Foreground(r.palette.colorFor(p.Kind))
		if p.Kind == KindBranch {
			style = style.Bold(true)
		}
		out[i] = style.Render(p.Text)
	}
	return strings.Join(out, " ")
}

func (r *Renderer) powerline(parts []Part) string {
	var b strings.Builder
	for i, p := range parts {
		bg := r.palette.colorFor(p.Kind)
		b.WriteString(lipgloss.NewStyle().
			Background(bg).
			Foreground(r.palette.Text).
			Padding(0, 1).
			Render(p.Text))

		arrow := lipgloss.NewStyle().Foreground(bg)
		if i+1 < len(parts) {
			arrow = arrow.Background(r.palette.colorFor(parts[i+1].Kind))
		}
		b.WriteString(arrow.Render(r.symbols.Arrow))
	}
	return b.String()
}

func (r *Renderer) capsule(parts []Part) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		c := r.palette.colorFor(p.Kind)
		edge := lipgloss.NewStyle().Foreground(c)
		body := lipgloss.NewStyle().Background(c).Foreground(r.palette.Text)
		out[i] = edge.Render(r.symbols.CapLeft) + body.Render(p.Text) + edge.Render(r.symbols.CapRight)
	}
	return strings.Join(out, " ")
}

// TruncateBranch shortens name to at most limit runes, ending in "...".
// A limit of zero or less disables truncation; positive values below 3 act as 3.
func TruncateBranch(name string, limit int) string {
	if limit <= 0 {
		return name
	}
	limit = max(limit, 3)
	runes := []rune(name)
	if len(runes) <= limit {
		return name
	}
	return string(runes[:limit-3]) + "..."
}
