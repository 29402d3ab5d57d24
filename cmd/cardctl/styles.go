package main

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/okian/buildcard/internal/domain/tier"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	labelStyle  = lipgloss.NewStyle().Width(14)
)

// scoreStyle colors a label the way the card colors an item score.
func scoreStyle(percent float64) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(tier.ItemColor(percent)))
}
