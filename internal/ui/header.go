package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hostpanel/panelview/internal/panel"
	"github.com/hostpanel/panelview/internal/render"
	"github.com/hostpanel/panelview/internal/state"
	"github.com/hostpanel/panelview/internal/tabview"
)

// renderHeader renders the status bar: logo, title, panel identity,
// connection badge and the last refresh time.
func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := lipgloss.Color(m.theme.Surface)
	on := func(s lipgloss.Style) lipgloss.Style { return s.Background(bg) }

	conn := connectionState(m.snapshot)
	parts := []string{
		on(styles.Logo).Render("panelview"),
		styles.StateStyle(conn).Render(strings.ToUpper(conn)),
	}
	if m.title != "" {
		parts = append(parts, on(styles.Text.Bold(true)).Render(m.title))
	}
	if m.snapshot.HasStatus {
		parts = append(parts, on(styles.AccentText).Render(m.snapshot.Status.Label()))
	}
	if !m.snapshot.LastUpdated.IsZero() {
		parts = append(parts, on(styles.MutedText).Render(m.snapshot.LastUpdated.Format("15:04:05")))
	}
	if m.snapshot.LastError != nil {
		parts = append(parts, on(styles.DangerText).Render(truncate(describeError(m.snapshot.LastError), 60)))
	}

	sep := lipgloss.NewStyle().Background(bg).Render("  ")
	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

// renderCommandBar shows the filter input while typing, otherwise the
// short key help.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	if m.filtering {
		return styles.Footer.Width(m.width).Render(m.filterInput.View())
	}

	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	keyStyle := styles.WarningText.Background(lipgloss.Color(m.theme.Surface))
	descStyle := styles.MutedText.Background(lipgloss.Color(m.theme.Surface))
	space := lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Surface)).Render(" ")
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, keyStyle.Render("<"+h.Key+">")+space+descStyle.Render(h.Desc))
	}
	return styles.Footer.Width(m.width).Render(strings.Join(parts, space+space))
}

// renderFooter renders the paging summary under the table.
func (m Model) renderFooter(vm tabview.ViewModel) string {
	styles := m.theme.Styles()
	return styles.Footer.Width(m.width).Render(render.Summary(vm))
}

// connectionState maps a snapshot to a header badge state.
func connectionState(snap state.Snapshot) string {
	switch {
	case snap.LastError != nil && snap.IsOffline():
		return stateOffline
	case snap.LastError != nil:
		return stateStale
	case snap.Generation == 0:
		return stateLoading
	default:
		return stateLive
	}
}

// describeError turns a fetch error into a short operator-facing message.
func describeError(err error) string {
	var apiErr *panel.APIError
	switch {
	case errors.Is(err, panel.ErrUnauthorized):
		return "unauthorized: check username and token"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.As(err, &apiErr):
		return apiErr.Error()
	default:
		return err.Error()
	}
}
