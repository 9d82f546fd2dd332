package format

import (
	"image/color"

	"charm.land/lipgloss/v2"
)

// Theme names accepted by display.theme
const (
	ThemeClassic   = "classic"
	ThemePowerline = "powerline"
	ThemeCapsule   = "capsule"
)

// Palette defines the colors of a rendered segment
type Palette struct {
	Branch    color.Color // branch name and ahead/behind
	Clean     color.Color // clean working tree
	Dirty     color.Color // pending changes
	Operation color.Color // merge, rebase and friends
	Version   color.Color // tag or commit
	Stash     color.Color // stash count
	NoGit     color.Color // outside a repository
	Text      color.Color // foreground on colored blocks
}

// DefaultPalette is shared by all themes.
var DefaultPalette = Palette{
	Branch:    lipgloss.Color("62"),  // cyan/teal
	Clean:     lipgloss.Color("82"),  // green
	Dirty:     lipgloss.Color("214"), // orange
	Operation: lipgloss.Color("196"), // red
	Version:   lipgloss.Color("244"), // gray
	Stash:     lipgloss.Color("212"), // pink
	NoGit:     lipgloss.Color("240"), // dark gray
	Text:      lipgloss.Color("235"), // near black
}

// colorFor maps a part to its palette color.
func (p Palette) colorFor(k Kind) color.Color {
	switch k {
	case KindBranch:
		return p.Branch
	case KindClean:
		return p.Clean
	case KindDirty:
		return p.Dirty
	case KindOperation:
		return p.Operation
	case KindVersion:
		return p.Version
	case KindStash:
		return p.Stash
	default:
		return p.NoGit
	}
}
