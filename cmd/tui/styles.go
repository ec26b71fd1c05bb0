// Package tui is the terminal comment thread of one blog post.
// It uses the Charm Bubble Tea framework to render the comments and the draft editor.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	// SchemeLight and SchemeDark are the supported color schemes
	SchemeLight = "light"
	SchemeDark  = "dark"
)

// palette is the set of colors of one scheme
type palette struct {
	primary lipgloss.Color
	owner   lipgloss.Color
	guest   lipgloss.Color
	accent  lipgloss.Color
	err     lipgloss.Color
	fg      lipgloss.Color
	muted   lipgloss.Color
	border  lipgloss.Color
}

var (
	lightPalette = palette{
		primary: lipgloss.Color("#7C3AED"), // Violet
		owner:   lipgloss.Color("#047857"), // Dark emerald
		guest:   lipgloss.Color("#1F2937"), // Slate
		accent:  lipgloss.Color("#B45309"), // Dark amber
		err:     lipgloss.Color("#DC2626"), // Red
		fg:      lipgloss.Color("#111827"),
		muted:   lipgloss.Color("#6B7280"),
		border:  lipgloss.Color("#D1D5DB"),
	}
	darkPalette = palette{
		primary: lipgloss.Color("#7C3AED"), // Violet
		owner:   lipgloss.Color("#10B981"), // Emerald
		guest:   lipgloss.Color("#CDD6F4"),
		accent:  lipgloss.Color("#F59E0B"), // Amber
		err:     lipgloss.Color("#EF4444"), // Red
		fg:      lipgloss.Color("#CDD6F4"),
		muted:   lipgloss.Color("#6C7086"),
		border:  lipgloss.Color("#45475A"),
	}
)

// NormalizeScheme maps scheme to light or dark, light being the default
func NormalizeScheme(scheme string) string {
	if strings.ToLower(strings.TrimSpace(scheme)) == SchemeDark {
		return SchemeDark
	}

	return SchemeLight
}

// Styles are the lipgloss styles of the thread view
type Styles struct {
	Header   lipgloss.Style
	Subtitle lipgloss.Style
	Help     lipgloss.Style
	Box      lipgloss.Style
	Error    lipgloss.Style
	Progress lipgloss.Style
	// Owner and Guest render comment bubbles
	Owner lipgloss.Style
	Guest lipgloss.Style
	// Meta renders the author and age line above a comment
	Meta   lipgloss.Style
	Dimmed lipgloss.Style
}

// NewStyles builds the styles of scheme
func NewStyles(scheme string) Styles {
	p := lightPalette
	if NormalizeScheme(scheme) == SchemeDark {
		p = darkPalette
	}

	bubble := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return Styles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(p.primary).
			Padding(0, 2).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.muted).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(p.muted).
			MarginTop(1),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.border).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(p.err).
			Bold(true),
		Progress: lipgloss.NewStyle().
			Foreground(p.accent),
		Owner: bubble.
			Foreground(p.owner).
			BorderForeground(p.owner),
		Guest: bubble.
			Foreground(p.guest).
			BorderForeground(p.border),
		Meta: lipgloss.NewStyle().
			Foreground(p.muted),
		Dimmed: lipgloss.NewStyle().
			Foreground(p.muted).
			Faint(true),
	}
}
