package ui

import "github.com/charmbracelet/lipgloss"

// palette holds the colors of one theme.
type palette struct {
	primary     string
	primaryDark string
	secondary   string
	accent      string
	danger      string
	warning     string
	text        string
	muted       string
	onPrimary   string
}

var (
	darkPalette = palette{
		primary:     "#6366f1",
		primaryDark: "#4338ca",
		secondary:   "#4b5563",
		accent:      "#10b981",
		danger:      "#ef4444",
		warning:     "#f59e0b",
		text:        "#f8fafc",
		muted:       "#9ca3af",
		onPrimary:   "#ffffff",
	}
	lightPalette = palette{
		primary:     "#4f46e5",
		primaryDark: "#3730a3",
		secondary:   "#6b7280",
		accent:      "#10b981",
		danger:      "#dc2626",
		warning:     "#b45309",
		text:        "#111827",
		muted:       "#6b7280",
		onPrimary:   "#ffffff",
	}
)

// Theme is the set of styles used to render the TUI.
type Theme struct {
	Name     string
	Title    lipgloss.Style
	Header   lipgloss.Style
	Selected lipgloss.Style
	Normal   lipgloss.Style
	Done     lipgloss.Style
	Muted    lipgloss.Style
	Tag      lipgloss.Style
	High     lipgloss.Style
	Medium   lipgloss.Style
	Low      lipgloss.Style
	Overdue  lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Panel    lipgloss.Style
	Key      lipgloss.Style
}

// DarkTheme returns the default theme.
func DarkTheme() Theme {
	return newTheme("dark", darkPalette)
}

// LightTheme returns the light theme.
func LightTheme() Theme {
	return newTheme("light", lightPalette)
}

func newTheme(name string, p palette) Theme {
	c := func(hex string) lipgloss.Color { return lipgloss.Color(hex) }
	return Theme{
		Name:     name,
		Title:    lipgloss.NewStyle().Bold(true).Foreground(c(p.primary)),
		Header:   lipgloss.NewStyle().Foreground(c(p.text)),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(c(p.onPrimary)).Background(c(p.primaryDark)),
		Normal:   lipgloss.NewStyle().Foreground(c(p.text)),
		Done:     lipgloss.NewStyle().Foreground(c(p.muted)).Strikethrough(true),
		Muted:    lipgloss.NewStyle().Foreground(c(p.muted)),
		Tag:      lipgloss.NewStyle().Foreground(c(p.primary)),
		High:     lipgloss.NewStyle().Bold(true).Foreground(c(p.danger)),
		Medium:   lipgloss.NewStyle().Foreground(c(p.warning)),
		Low:      lipgloss.NewStyle().Foreground(c(p.accent)),
		Overdue:  lipgloss.NewStyle().Bold(true).Foreground(c(p.danger)),
		Error:    lipgloss.NewStyle().Foreground(c(p.danger)),
		Success:  lipgloss.NewStyle().Foreground(c(p.accent)),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(c(p.secondary)).
			Padding(0, 1),
		Key: lipgloss.NewStyle().Bold(true).Foreground(c(p.primary)),
	}
}
