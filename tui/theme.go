package tui

import "github.com/charmbracelet/lipgloss"

type theme struct {
	header     lipgloss.Style
	session    lipgloss.Style
	userLabel  lipgloss.Style
	agentLabel lipgloss.Style
	timestamp  lipgloss.Style
	body       lipgloss.Style
	hint       lipgloss.Style
	typing     lipgloss.Style
	errorLine  lipgloss.Style
	inputPanel lipgloss.Style
	help       lipgloss.Style
	spinner    lipgloss.Style
}

func newTheme() theme {
	indigo := lipgloss.Color("#4f46e5")
	sky := lipgloss.Color("#38bdf8")
	mint := lipgloss.Color("#34d399")
	rose := lipgloss.Color("#f43f5e")
	muted := lipgloss.Color("#94a3b8")

	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#f8fafc")).
			Background(indigo).
			Padding(0, 1),
		session:    lipgloss.NewStyle().Foreground(muted).Padding(0, 1),
		userLabel:  lipgloss.NewStyle().Foreground(sky).Bold(true),
		agentLabel: lipgloss.NewStyle().Foreground(mint).Bold(true),
		timestamp:  lipgloss.NewStyle().Foreground(muted),
		body:       lipgloss.NewStyle().PaddingLeft(2),
		hint:       lipgloss.NewStyle().Foreground(muted).Italic(true),
		typing:     lipgloss.NewStyle().Foreground(muted),
		errorLine:  lipgloss.NewStyle().Foreground(rose).Bold(true),
		inputPanel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(indigo).
			Padding(0, 1),
		help:    lipgloss.NewStyle().Foreground(muted),
		spinner: lipgloss.NewStyle().Foreground(mint),
	}
}
