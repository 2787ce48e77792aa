// Package report renders categorized trips and mileage summaries as
// styled terminal output and CSV exports.
package report

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#4ECDC4") // Teal
	// BusinessColor highlights business mileage.
	BusinessColor = lipgloss.Color("#95E1D3") // Light teal
	// PersonalColor highlights personal mileage.
	PersonalColor = lipgloss.Color("#FFE66D") // Yellow
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// SubtleColor indicates less prominent output.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// BusinessStyle formats business mileage figures.
	BusinessStyle = lipgloss.NewStyle().
			Foreground(BusinessColor)

	// PersonalStyle formats personal mileage figures.
	PersonalStyle = lipgloss.NewStyle().
			Foreground(PersonalColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// Icons.
const (
	CarIcon     = "🚗"
	WarningIcon = "⚠️"
)

// FormatTitle formats a section title with the car icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(CarIcon + " " + title)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}
