package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemes(t *testing.T) {
	tests := []struct {
		name  string
		theme Theme
		pal   palette
	}{
		{"dark", DarkTheme(), darkPalette},
		{"light", LightTheme(), lightPalette},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.theme.Name != tt.name {
				t.Errorf("Name = %q, want %q", tt.theme.Name, tt.name)
			}
			if got := tt.theme.Title.GetForeground(); got != lipgloss.Color(tt.pal.primary) {
				t.Errorf("Title foreground = %v, want %s", got, tt.pal.primary)
			}
			if got := tt.theme.Selected.GetBackground(); got != lipgloss.Color(tt.pal.primaryDark) {
				t.Errorf("Selected background = %v, want %s", got, tt.pal.primaryDark)
			}
			if got := tt.theme.High.GetForeground(); got != lipgloss.Color(tt.pal.danger) {
				t.Errorf("High foreground = %v, want %s", got, tt.pal.danger)
			}
			if out := tt.theme.Panel.Render("body"); !strings.Contains(out, "body") {
				t.Errorf("Panel.Render lost its content: %q", out)
			}
		})
	}
}
