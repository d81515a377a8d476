package model

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/factory"
	"github.com/modoterra/svcpanel/pkg/presenter"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("57"))

	buttonStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	selectedButtonStyle = selectedStyle

	statusRunning = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusActive  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	statusStopped = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusFailed  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	menuStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)

	barStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Background(lipgloss.Color("236"))

	iconFirst  = barStyle.PaddingLeft(1)
	iconMiddle = barStyle.PaddingLeft(1)
	iconLast   = barStyle.Padding(0, 1)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

var sectionGlyphs = map[core.Section]string{
	core.SectionSystemd: "⚙",
	core.SectionCron:    "⏲",
	core.SectionDocker:  "◆",
	core.SectionPodman:  "◇",
}

var actionGlyphs = map[string]string{
	"media-playback-start-symbolic": "▶",
	"media-playback-stop-symbolic":  "■",
	"view-refresh-symbolic":         "↻",
	"list-add-symbolic":             "+",
	"list-remove-symbolic":          "−",
}

// View renders the TUI.
func (a App) View() string {
	var b strings.Builder
	b.WriteString(a.renderStatusBar())
	b.WriteString("\n")

	if a.panel.IsOpen() {
		b.WriteString(a.renderMenu())
		b.WriteString("\n")
		if a.mode == ModeFilter || a.filter.Value() != "" {
			b.WriteString(a.filter.View())
			b.WriteString("\n")
		}
		b.WriteString(a.help.View(menuKeys{keys}))
	} else {
		b.WriteString(a.help.View(closedKeys{keys}))
	}
	return b.String()
}

func (a App) renderStatusBar() string {
	icons := a.panel.icons
	if len(icons) == 0 {
		return barStyle.Render(" svcpanel: no active sections ")
	}
	var b strings.Builder
	for _, icon := range icons {
		b.WriteString(renderIcon(icon))
	}
	return b.String()
}

func renderIcon(icon factory.Icon) string {
	glyph, ok := sectionGlyphs[icon.Section]
	if !ok {
		glyph = "?"
	}
	switch icon.Variant {
	case factory.VariantMiddle:
		return iconMiddle.Render(glyph)
	case factory.VariantLast:
		return iconLast.Render(glyph)
	default:
		return iconFirst.Render(glyph)
	}
}

func (a App) renderMenu() string {
	query := a.filter.Value()
	rows := a.panel.rows(query)
	if len(rows) == 0 {
		if query != "" {
			return menuStyle.Render(dimStyle.Render("no match"))
		}
		return menuStyle.Render(dimStyle.Render("no sections enabled"))
	}

	selected := a.selected()
	width := max(a.width-6, 20)

	var lines []string
	for _, r := range rows {
		if r.item == nil {
			lines = append(lines, renderHeader(r.section))
			continue
		}
		lines = append(lines, a.renderItem(r.item, r.item == selected, width))
	}
	return menuStyle.Render(strings.Join(lines, "\n"))
}

func renderHeader(s *sectionView) string {
	title := titleStyle.Render(sectionGlyphs[s.section] + " " + s.title)
	if s.loading {
		title += " " + dimStyle.Render("loading...")
	}
	return title
}

func (a App) renderItem(iv *itemView, selected bool, width int) string {
	cfg := iv.cfg
	if cfg.Error {
		return "  " + statusFailed.Render(cfg.Label)
	}
	if cfg.ID == presenter.MoreItemsID {
		line := "  " + cfg.Label
		if selected {
			return selectedStyle.Render(line)
		}
		return dimStyle.Render(line)
	}

	var buttons []string
	for n, b := range iv.visibleButtons() {
		label := actionGlyphs[b.icon] + " " + string(b.action)
		if selected && n == a.button {
			buttons = append(buttons, selectedButtonStyle.Render("["+label+"]"))
		} else {
			buttons = append(buttons, buttonStyle.Render("["+label+"]"))
		}
	}
	actions := strings.Join(buttons, " ")

	name := truncate(cfg.Label, width-lipgloss.Width(actions)-4)
	line := " " + statusIndicator(cfg.Item) + " " + name
	if selected && len(buttons) == 0 {
		line = selectedStyle.Render(line)
	}
	if actions != "" {
		line += " " + actions
	}
	return line
}

func statusIndicator(item core.Item) string {
	switch {
	case item.IsRunning:
		return statusRunning.Render("●")
	case item.IsActive:
		return statusActive.Render("◐")
	case item.IsEnabled:
		return statusStopped.Render("○")
	default:
		return dimStyle.Render("·")
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
