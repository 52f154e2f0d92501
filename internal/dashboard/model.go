package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/renderdash/rdash/internal/domain"
	"github.com/renderdash/rdash/internal/index"
	"github.com/renderdash/rdash/internal/links"
	"github.com/renderdash/rdash/internal/logger"
)

// envFetchTimeout bounds the on-demand env-var lookup.
const envFetchTimeout = 30 * time.Second

// Triggerer requests an out-of-band reconciliation cycle.
type Triggerer interface {
	TriggerRefresh()
}

// EnvFetcher is the slice of the API client the env-var modal needs.
type EnvFetcher interface {
	GetEnvVars(ctx context.Context, id string) ([]domain.EnvVar, error)
}

// refreshCompleteMsg is delivered through the message loop when a
// reconciliation cycle finishes (bridged from the refresher's notify
// channel).
type refreshCompleteMsg struct{}

// startupErrorMsg carries a fatal error from session startup; the
// program quits after displaying it.
type startupErrorMsg struct {
	err error
}

// StartupError wraps a fatal session-startup failure for delivery
// through Program.Send from outside the package.
func StartupError(err error) tea.Msg { return startupErrorMsg{err: err} }

// envVarsMsg is the result of an asynchronous env-var fetch.
type envVarsMsg struct {
	serviceID string
	vars      []domain.EnvVar
	err       error
}

// browserOpenedMsg reports a deep-link launch attempt. A failure
// surfaces the URL in the status bar instead of an error dialog.
type browserOpenedMsg struct {
	url string
	err error
}

// filterModel is the search-filter state: case-insensitive substring
// matching over service name, id, and type. Filtering only narrows
// what is rendered; the underlying display set is untouched.
type filterModel struct {
	Input  string
	Active bool
}

func (f *filterModel) matches(svc *domain.Service) bool {
	if f.Input == "" {
		return true
	}
	q := strings.ToLower(f.Input)
	return strings.Contains(strings.ToLower(svc.Name), q) ||
		strings.Contains(strings.ToLower(svc.ID), q) ||
		strings.Contains(strings.ToLower(svc.Type), q)
}

// Model is the top-level bubbletea model for the dashboard.
type Model struct {
	display   *index.DisplaySet
	refresher Triggerer
	env       EnvFetcher
	log       logger.Logger
	notify    <-chan struct{}

	keys  KeyMap
	theme Theme

	width  int
	height int
	ready  bool

	cursor    int
	focusedID string // stable focus: track the focused card by service id
	filter    filterModel

	refreshing bool
	spin       spinner.Model
	notice     string
	modal      *envModal
	fatalErr   error
}

// NewModel creates the dashboard model. notify receives a signal
// after every completed reconciliation cycle.
func NewModel(
	display *index.DisplaySet,
	refresher Triggerer,
	env EnvFetcher,
	log logger.Logger,
	notify <-chan struct{},
) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		display:   display,
		refresher: refresher,
		env:       env,
		log:       log,
		notify:    notify,
		keys:      DefaultKeyMap,
		theme:     DefaultTheme,
		spin:      sp,
	}
}

// FatalErr returns the startup error that ended the session, if any.
// Checked by the caller after the program exits.
func (m Model) FatalErr() error { return m.fatalErr }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return listenForRefresh(m.notify)
}

// listenForRefresh blocks until the next cycle-complete signal and
// delivers it as a refreshCompleteMsg.
func listenForRefresh(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return refreshCompleteMsg{}
	}
}

// visibleEntries returns the display entries passing the filter, in
// display order.
func (m Model) visibleEntries() []*index.Entry {
	all := m.display.All()
	if m.filter.Input == "" {
		return all
	}
	out := make([]*index.Entry, 0, len(all))
	for _, e := range all {
		if m.filter.matches(e.Service) {
			out = append(out, e)
		}
	}
	return out
}

// Update implements tea.Model.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		m.width = message.Width
		m.height = message.Height
		m.ready = true
		return m, nil

	case startupErrorMsg:
		m.fatalErr = message.err
		return m, tea.Quit

	case refreshCompleteMsg:
		m.refreshing = false
		m.restoreFocus()
		return m, listenForRefresh(m.notify)

	case envVarsMsg:
		if m.modal != nil && m.modal.serviceID == message.serviceID {
			m.modal.loading = false
			m.modal.vars = message.vars
			m.modal.err = message.err
		}
		return m, nil

	case browserOpenedMsg:
		if message.err != nil {
			m.notice = fmt.Sprintf("browser launch failed, open manually: %s", message.url)
			m.log.Warn("browser launch failed",
				logger.String("url", message.url),
				logger.Error(message.err))
		}
		return m, nil

	case spinner.TickMsg:
		if !m.refreshing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(message)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(message)
	}

	return m, nil
}

func (m Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Modal routes everything until dismissed.
	if m.modal != nil {
		if key.Matches(message, m.keys.FilterClear) || key.Matches(message, m.keys.Quit) {
			m.modal = nil
		}
		return m, nil
	}

	if m.filter.Active {
		return m.handleFilterKey(message)
	}

	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(message, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(message, m.keys.Refresh):
		m.refreshing = true
		m.notice = ""
		m.refresher.TriggerRefresh()
		return m, m.spin.Tick

	case key.Matches(message, m.keys.FilterActivate):
		m.filter.Active = true
		return m, nil

	case key.Matches(message, m.keys.FilterClear):
		m.filter.Input = ""
		m.restoreFocus()
		return m, nil

	case key.Matches(message, m.keys.Logs):
		return m, m.openFocused(links.ActionLogs)
	case key.Matches(message, m.keys.Events):
		return m, m.openFocused(links.ActionEvents)
	case key.Matches(message, m.keys.Metrics):
		return m, m.openFocused(links.ActionMetrics)
	case key.Matches(message, m.keys.Settings):
		return m, m.openFocused(links.ActionSettings)
	case key.Matches(message, m.keys.Deploys):
		return m, m.openFocused(links.ActionDeploys)

	case key.Matches(message, m.keys.EnvVars):
		return m.openEnvModal()
	}

	return m, nil
}

func (m Model) handleFilterKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEscape:
		m.filter.Active = false
		m.filter.Input = ""
		m.restoreFocus()
		return m, nil
	case tea.KeyEnter:
		m.filter.Active = false
		return m, nil
	case tea.KeyBackspace:
		if m.filter.Input != "" {
			runes := []rune(m.filter.Input)
			m.filter.Input = string(runes[:len(runes)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.filter.Input += string(message.Runes)
	}
	m.clampCursor()
	return m, nil
}

// moveCursor shifts focus by delta within the visible entries and
// records the focused id so focus survives reconciliation merges.
func (m *Model) moveCursor(delta int) {
	entries := m.visibleEntries()
	if len(entries) == 0 {
		m.cursor = 0
		m.focusedID = ""
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(entries) {
		m.cursor = len(entries) - 1
	}
	m.focusedID = entries[m.cursor].Service.ID
}

// restoreFocus re-derives the cursor from the focused id after the
// entry set changed under it (refresh merge or filter edit).
func (m *Model) restoreFocus() {
	entries := m.visibleEntries()
	for i, e := range entries {
		if e.Service.ID == m.focusedID {
			m.cursor = i
			return
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	entries := m.visibleEntries()
	if len(entries) == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= len(entries) {
		m.cursor = len(entries) - 1
	}
	if m.cursor >= 0 && m.cursor < len(entries) {
		m.focusedID = entries[m.cursor].Service.ID
	}
}

// focusedEntry returns the currently focused entry, nil when the list
// is empty.
func (m Model) focusedEntry() *index.Entry {
	entries := m.visibleEntries()
	if len(entries) == 0 || m.cursor < 0 || m.cursor >= len(entries) {
		return nil
	}
	return entries[m.cursor]
}

// openFocused launches the dashboard deep link for the focused
// service.
func (m Model) openFocused(action links.Action) tea.Cmd {
	entry := m.focusedEntry()
	if entry == nil {
		return nil
	}
	url := links.ServiceURL(entry.Service.ID, action)
	return func() tea.Msg {
		return browserOpenedMsg{url: url, err: links.Open(url)}
	}
}

// openEnvModal opens the env-var overlay for the focused service and
// starts the fetch.
func (m Model) openEnvModal() (tea.Model, tea.Cmd) {
	entry := m.focusedEntry()
	if entry == nil {
		return m, nil
	}
	svc := entry.Service
	m.modal = &envModal{
		serviceID:   svc.ID,
		serviceName: svc.Name,
		loading:     true,
	}
	env := m.env
	id := svc.ID
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), envFetchTimeout)
		defer cancel()
		vars, err := env.GetEnvVars(ctx, id)
		return envVarsMsg{serviceID: id, vars: vars, err: err}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.fatalErr != nil {
		return m.theme.Notice.Render(fmt.Sprintf("Error: %v", m.fatalErr)) + "\n"
	}
	if !m.ready {
		return "Loading…"
	}
	if m.modal != nil {
		return m.modal.render(m.width, m.height, m.theme)
	}

	header := m.theme.Title.Render("Render Services Dashboard")
	if m.filter.Active || m.filter.Input != "" {
		label := "/" + m.filter.Input
		if m.filter.Active {
			label += "▌"
		}
		header += "  " + m.theme.FilterLabel.Render(label)
	}

	statusBar := m.statusBar()
	avail := m.height - lipgloss.Height(header) - lipgloss.Height(statusBar)

	body := m.renderCards(avail)

	return lipgloss.JoinVertical(lipgloss.Left, header, body, statusBar)
}

// renderCards draws the visible cards, windowed so the focused card
// stays on screen.
func (m Model) renderCards(avail int) string {
	entries := m.visibleEntries()
	if len(entries) == 0 {
		msg := "No services to display."
		if m.display.LastRefresh().IsZero() {
			msg = "Loading services…"
		} else if n := len(m.display.Failures()); n > 0 {
			msg = fmt.Sprintf("No services to display (%d fetch failures, press r to retry).", n)
		} else if m.filter.Input != "" {
			msg = fmt.Sprintf("No services match %q.", m.filter.Input)
		}
		return lipgloss.NewStyle().Padding(1, 2).Render(msg)
	}

	cards := make([]string, len(entries))
	heights := make([]int, len(entries))
	for i, e := range entries {
		cards[i] = renderCard(e, i == m.cursor, m.width, m.theme)
		heights[i] = lipgloss.Height(cards[i])
	}

	// Slide the window start forward until the focused card fits.
	start := 0
	for start < m.cursor {
		used := 0
		for i := start; i <= m.cursor; i++ {
			used += heights[i]
		}
		if used <= avail {
			break
		}
		start++
	}

	var b strings.Builder
	used := 0
	for i := start; i < len(cards); i++ {
		if used+heights[i] > avail && i > m.cursor {
			break
		}
		b.WriteString(cards[i])
		b.WriteString("\n")
		used += heights[i]
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) statusBar() string {
	parts := []string{}

	if m.refreshing {
		parts = append(parts, m.spin.View()+"refreshing…")
	} else if last := m.display.LastRefresh(); !last.IsZero() {
		parts = append(parts, fmt.Sprintf("refreshed %s", timeAgo(last, time.Now())))
	}

	parts = append(parts, fmt.Sprintf("%d services", m.display.Count()))
	if n := len(m.display.Failures()); n > 0 {
		parts = append(parts, m.theme.Notice.Render(fmt.Sprintf("%d failed", n)))
	}
	if m.notice != "" {
		parts = append(parts, m.theme.Notice.Render(m.notice))
	}
	parts = append(parts, "r refresh · / filter · q quit")

	return m.theme.StatusBar.Render(strings.Join(parts, "  ·  "))
}
