package ui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"pydojo/internal/progress"
)

type Theme struct {
	Name string

	Header     lipgloss.Style
	PanelTitle lipgloss.Style
	Panel      lipgloss.Style
	Body       lipgloss.Style
	Accent     lipgloss.Style
	Pass       lipgloss.Style
	Partial    lipgloss.Style
	Fail       lipgloss.Style
	Muted      lipgloss.Style
	Info       lipgloss.Style
	Toast      lipgloss.Style

	// CodeStyle is the chroma style used for highlighted snippets.
	CodeStyle string
	BarStart  color.Color
	BarEnd    color.Color
	Rarity    map[progress.Rarity]lipgloss.Style
}

func DefaultTheme() Theme {
	return ThemeForVariant("modern_arcade")
}

func ThemeVariants() []string {
	return []string{"modern_arcade", "cozy_clean", "retro_terminal"}
}

func ThemeForVariant(variant string) Theme {
	switch variant {
	case "cozy_clean":
		return cozyCleanTheme()
	case "retro_terminal":
		return retroTerminalTheme()
	default:
		return modernArcadeTheme()
	}
}

func modernArcadeTheme() Theme {
	amber := lipgloss.Color("#FFC857")
	mint := lipgloss.Color("#67F0A8")
	brick := lipgloss.Color("#FF6F91")
	ink := lipgloss.Color("#0E1420")
	powder := lipgloss.Color("#EAF2FF")
	blue := lipgloss.Color("#5EEBFF")
	border := lipgloss.Color("#4B5F8A")
	violet := lipgloss.Color("#B48CFF")

	return Theme{
		Name: "modern_arcade",
		Header: lipgloss.NewStyle().
			Background(ink).
			Foreground(powder).
			Bold(true).
			Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().
			Foreground(blue).
			Bold(true),
		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(0, 1),
		Body:    lipgloss.NewStyle().Foreground(powder),
		Accent:  lipgloss.NewStyle().Foreground(blue).Bold(true),
		Pass:    lipgloss.NewStyle().Foreground(mint).Bold(true),
		Partial: lipgloss.NewStyle().Foreground(amber).Bold(true),
		Fail:    lipgloss.NewStyle().Foreground(brick).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CAAC6")),
		Info:    lipgloss.NewStyle().Foreground(blue),
		Toast: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(blue).
			Padding(0, 1),
		CodeStyle: "monokai",
		BarStart:  blue,
		BarEnd:    mint,
		Rarity: map[progress.Rarity]lipgloss.Style{
			progress.RarityCommon:    lipgloss.NewStyle().Foreground(powder),
			progress.RarityRare:      lipgloss.NewStyle().Foreground(blue),
			progress.RarityEpic:      lipgloss.NewStyle().Foreground(violet).Bold(true),
			progress.RarityLegendary: lipgloss.NewStyle().Foreground(amber).Bold(true),
		},
	}
}

func cozyCleanTheme() Theme {
	honey := lipgloss.Color("#F2B872")
	sage := lipgloss.Color("#80C4A3")
	rose := lipgloss.Color("#D17A86")
	slate := lipgloss.Color("#30394A")
	paper := lipgloss.Color("#F4F6FA")
	sky := lipgloss.Color("#86B6F6")

	return Theme{
		Name:       "cozy_clean",
		Header:     lipgloss.NewStyle().Background(slate).Foreground(paper).Bold(true).Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Foreground(honey).Bold(true),
		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4A5972")).
			Padding(0, 1),
		Body:      lipgloss.NewStyle().Foreground(paper),
		Accent:    lipgloss.NewStyle().Foreground(sky).Bold(true),
		Pass:      lipgloss.NewStyle().Foreground(sage).Bold(true),
		Partial:   lipgloss.NewStyle().Foreground(honey).Bold(true),
		Fail:      lipgloss.NewStyle().Foreground(rose).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#A3ACC2")),
		Info:      lipgloss.NewStyle().Foreground(sky),
		Toast:     lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(honey).Padding(0, 1),
		CodeStyle: "friendly",
		BarStart:  sky,
		BarEnd:    sage,
		Rarity: map[progress.Rarity]lipgloss.Style{
			progress.RarityCommon:    lipgloss.NewStyle().Foreground(paper),
			progress.RarityRare:      lipgloss.NewStyle().Foreground(sky),
			progress.RarityEpic:      lipgloss.NewStyle().Foreground(rose).Bold(true),
			progress.RarityLegendary: lipgloss.NewStyle().Foreground(honey).Bold(true),
		},
	}
}

func retroTerminalTheme() Theme {
	lime := lipgloss.Color("#9CF5A2")
	amber := lipgloss.Color("#E5D47A")
	red := lipgloss.Color("#FF6B6B")
	deep := lipgloss.Color("#07150A")
	glow := lipgloss.Color("#C5F7C4")

	return Theme{
		Name:       "retro_terminal",
		Header:     lipgloss.NewStyle().Background(deep).Foreground(glow).Bold(true).Padding(0, 1),
		PanelTitle: lipgloss.NewStyle().Foreground(amber).Bold(true),
		Panel: lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#1F5C2F")).
			Padding(0, 1),
		Body:      lipgloss.NewStyle().Foreground(glow),
		Accent:    lipgloss.NewStyle().Foreground(lime).Bold(true),
		Pass:      lipgloss.NewStyle().Foreground(lime).Bold(true),
		Partial:   lipgloss.NewStyle().Foreground(amber).Bold(true),
		Fail:      lipgloss.NewStyle().Foreground(red).Bold(true),
		Muted:     lipgloss.NewStyle().Foreground(lipgloss.Color("#73A17A")),
		Info:      lipgloss.NewStyle().Foreground(lime),
		Toast:     lipgloss.NewStyle().BorderStyle(lipgloss.DoubleBorder()).BorderForeground(amber).Padding(0, 1),
		CodeStyle: "rrt",
		BarStart:  lipgloss.Color("#1F5C2F"),
		BarEnd:    lime,
		Rarity: map[progress.Rarity]lipgloss.Style{
			progress.RarityCommon:    lipgloss.NewStyle().Foreground(glow),
			progress.RarityRare:      lipgloss.NewStyle().Foreground(lime),
			progress.RarityEpic:      lipgloss.NewStyle().Foreground(amber),
			progress.RarityLegendary: lipgloss.NewStyle().Foreground(amber).Bold(true).Underline(true),
		},
	}
}
