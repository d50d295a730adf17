package main

import "github.com/charmbracelet/lipgloss"

// ANSI base colors so the help output reads on light and dark terminals.
var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	usageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	descStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	flagStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)
