package dashboard

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/renderdash/rdash/internal/index"
)

// renderCard draws one service entry as a bordered card.
func renderCard(entry *index.Entry, focused bool, width int, theme Theme) string {
	svc := entry.Service

	header := fmt.Sprintf("%s  %s %s  %s",
		lipgloss.NewStyle().Bold(true).Render(svc.Name),
		statusDot(svc.Status, theme),
		svc.Status.Title(),
		theme.CardID.Render(svc.ID),
	)

	details := theme.Details.Render(deployLine(entry))

	lines := []string{header, details}
	if url := svc.DisplayURL(); url != "" {
		lines = append(lines, theme.Details.Render("   "+url))
	}
	lines = append(lines, theme.Actions.Render("l)ogs  e)vents  m)etrics  s)ettings  d)eploys  v)ars"))

	style := theme.Card
	if focused {
		style = theme.CardFocused
	}
	if width > 4 {
		style = style.Width(width - 2)
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// deployLine summarizes the latest deploy for the card details row.
func deployLine(entry *index.Entry) string {
	deploy := entry.Service.LatestDeploy
	if deploy == nil {
		return "└─ No deployments"
	}

	line := fmt.Sprintf("└─ %s  %s", deploy.Status.Label(), timeAgo(deploy.CreatedAt, time.Now()))
	if sha := deploy.ShortSHA(); sha != "" {
		line += "  " + sha
	}
	return line
}

// timeAgo formats the interval since t as a compact human string
// ("5m ago", "2h ago", "3d ago").
func timeAgo(t, now time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	delta := now.Sub(t)
	switch {
	case delta >= 24*time.Hour:
		return fmt.Sprintf("%dd ago", int(delta.Hours()/24))
	case delta >= time.Hour:
		return fmt.Sprintf("%dh ago", int(delta.Hours()))
	case delta >= time.Minute:
		return fmt.Sprintf("%dm ago", int(delta.Minutes()))
	default:
		if delta < 0 {
			delta = 0
		}
		return fmt.Sprintf("%ds ago", int(delta.Seconds()))
	}
}
