package notify

import "github.com/charmbracelet/lipgloss"

type styles struct {
	header    lipgloss.Style
	redCard   lipgloss.Style
	blackCard lipgloss.Style
	hidden    lipgloss.Style
	win       lipgloss.Style
	loss      lipgloss.Style
	push      lipgloss.Style
	warning   lipgloss.Style
	info      lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true),
		redCard: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		blackCard: r.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true),
		hidden: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
		win: r.NewStyle().
			Foreground(lipgloss.Color("#96CEB4")).
			Bold(true),
		loss: r.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true),
		push: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")),
		warning: r.NewStyle().
			Foreground(lipgloss.Color("#FFEAA7")).
			Bold(true),
		info: r.NewStyle().
			Foreground(lipgloss.Color("#626262")),
	}
}
