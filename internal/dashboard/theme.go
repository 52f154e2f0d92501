package dashboard

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/renderdash/rdash/internal/domain"
)

// Theme holds the lipgloss styles for the dashboard.
type Theme struct {
	Title       lipgloss.Style
	Card        lipgloss.Style
	CardFocused lipgloss.Style
	CardID      lipgloss.Style
	Details     lipgloss.Style
	Actions     lipgloss.Style
	StatusBar   lipgloss.Style
	Notice      lipgloss.Style
	FilterLabel lipgloss.Style
	Modal       lipgloss.Style
	ModalTitle  lipgloss.Style
	EnvKey      lipgloss.Style
}

// DefaultTheme is the built-in style set.
var DefaultTheme = Theme{
	Title: lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1),
	Card: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("8")).
		Padding(0, 1),
	CardFocused: lipgloss.NewStyle().
		Border(lipgloss.ThickBorder()).
		BorderForeground(lipgloss.Color("11")).
		Padding(0, 1),
	CardID: lipgloss.NewStyle().
		Faint(true),
	Details: lipgloss.NewStyle().
		Foreground(lipgloss.Color("7")),
	Actions: lipgloss.NewStyle().
		Faint(true),
	StatusBar: lipgloss.NewStyle().
		Faint(true).
		Padding(0, 1),
	Notice: lipgloss.NewStyle().
		Foreground(lipgloss.Color("9")),
	FilterLabel: lipgloss.NewStyle().
		Foreground(lipgloss.Color("14")),
	Modal: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("12")).
		Padding(1, 2),
	ModalTitle: lipgloss.NewStyle().
		Bold(true),
	EnvKey: lipgloss.NewStyle().
		Foreground(lipgloss.Color("14")),
}

// statusColors maps a service status to its dot color.
var statusColors = map[domain.ServiceStatus]lipgloss.Color{
	domain.StatusAvailable: lipgloss.Color("10"),
	domain.StatusDeploying: lipgloss.Color("11"),
	domain.StatusFailed:    lipgloss.Color("9"),
	domain.StatusSuspended: lipgloss.Color("8"),
	domain.StatusUnknown:   lipgloss.Color("7"),
}

// statusDot returns the colored indicator for a status: a filled dot
// for active states, hollow for suspended.
func statusDot(status domain.ServiceStatus, theme Theme) string {
	dot := "●"
	if status == domain.StatusSuspended {
		dot = "○"
	}
	color, ok := statusColors[status]
	if !ok {
		color = statusColors[domain.StatusUnknown]
	}
	return lipgloss.NewStyle().Foreground(color).Render(dot)
}
