package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/renderdash/rdash/internal/domain"
)

// envModal is the environment-variable lookup overlay. Values are
// fetched on demand and held only in memory; they are never written
// to the response cache.
type envModal struct {
	serviceID   string
	serviceName string
	loading     bool
	vars        []domain.EnvVar
	err         error
}

// render draws the modal centered in the given area.
func (m *envModal) render(width, height int, theme Theme) string {
	title := theme.ModalTitle.Render(fmt.Sprintf("Environment: %s", m.serviceName))

	var body string
	switch {
	case m.loading:
		body = "Fetching environment variables…"
	case m.err != nil:
		body = theme.Notice.Render(fmt.Sprintf("Error: %v", m.err))
	case len(m.vars) == 0:
		body = "No environment variables."
	default:
		lines := make([]string, 0, len(m.vars))
		for _, v := range m.vars {
			lines = append(lines, fmt.Sprintf("%s=%s", theme.EnvKey.Render(v.Key), v.Value))
		}
		body = strings.Join(lines, "\n")
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
		"",
		theme.Actions.Render("esc to close"),
	)

	box := theme.Modal.MaxWidth(width - 4).Render(content)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}
