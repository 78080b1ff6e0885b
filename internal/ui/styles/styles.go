package styles

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colours a theme is drawn with
type Palette struct {
	Name       string
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Accent     lipgloss.Color
	Text       lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
}

var (
	DarkPalette = Palette{
		Name:       "dark",
		Primary:    lipgloss.Color("#8B5CF6"), // Violet
		Secondary:  lipgloss.Color("#333333"),
		Accent:     lipgloss.Color("#22D3EE"),
		Text:       lipgloss.Color("#FFFFFF"),
		Muted:      lipgloss.Color("#999999"),
		Error:      lipgloss.Color("#FF4444"),
		Success:    lipgloss.Color("#44FF44"),
		Background: lipgloss.Color("#000000"),
		Surface:    lipgloss.Color("236"),
	}

	LightPalette = Palette{
		Name:       "light",
		Primary:    lipgloss.Color("#6D28D9"),
		Secondary:  lipgloss.Color("#D4D4D8"),
		Accent:     lipgloss.Color("#0E7490"),
		Text:       lipgloss.Color("#18181B"),
		Muted:      lipgloss.Color("#71717A"),
		Error:      lipgloss.Color("#B91C1C"),
		Success:    lipgloss.Color("#15803D"),
		Background: lipgloss.Color("#FFFFFF"),
		Surface:    lipgloss.Color("254"),
	}
)

// Current is the palette the styles were last built from
var Current Palette

var (
	BaseStyle             lipgloss.Style
	TitleStyle            lipgloss.Style
	HeaderStyle           lipgloss.Style
	FooterStyle           lipgloss.Style
	ActiveTabStyle        lipgloss.Style
	InactiveTabStyle      lipgloss.Style
	InputStyle            lipgloss.Style
	InputFocusedStyle     lipgloss.Style
	ListStyle             lipgloss.Style
	ListItemStyle         lipgloss.Style
	SelectedListItemStyle lipgloss.Style
	SectionTitleStyle     lipgloss.Style
	PlayerStyle           lipgloss.Style
	EpisodeTitleStyle     lipgloss.Style
	PodcastNameStyle      lipgloss.Style
	StatusStyle           lipgloss.Style
	PlayingStatusStyle    lipgloss.Style
	PausedStatusStyle     lipgloss.Style
	ErrorStatusStyle      lipgloss.Style
	SuccessStatusStyle    lipgloss.Style
	LoadingStatusStyle    lipgloss.Style
	SearchBoxStyle        lipgloss.Style
	SearchResultsStyle    lipgloss.Style
	FormStyle             lipgloss.Style
	HelpStyle             lipgloss.Style
)

func init() {
	Apply(DarkPalette)
}

// Apply rebuilds every style from p
func Apply(p Palette) {
	Current = p

	BaseStyle = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Background)

	TitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Padding(0, 1).
		MarginBottom(1)

	HeaderStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(p.Secondary).
		MarginBottom(1)

	FooterStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(p.Secondary).
		MarginTop(1).
		Padding(0, 1)

	ActiveTabStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.Primary).
		Bold(true).
		Padding(0, 2).
		MarginRight(1)

	InactiveTabStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Background(p.Secondary).
		Padding(0, 2).
		MarginRight(1)

	InputStyle = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Surface).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary)

	InputFocusedStyle = InputStyle.
		BorderForeground(p.Primary).
		Bold(true)

	ListStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Padding(1)

	ListItemStyle = lipgloss.NewStyle().
		Padding(0, 1)

	SelectedListItemStyle = ListItemStyle.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(p.Primary).
		Bold(true)

	SectionTitleStyle = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	PlayerStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1).
		MarginBottom(1)

	EpisodeTitleStyle = lipgloss.NewStyle().
		Foreground(p.Text).
		Bold(true)

	PodcastNameStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginBottom(1)

	StatusStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true)

	PlayingStatusStyle = StatusStyle.
		Foreground(p.Success).
		Bold(true)

	PausedStatusStyle = StatusStyle.
		Foreground(p.Accent)

	ErrorStatusStyle = StatusStyle.
		Foreground(p.Error).
		Bold(true)

	SuccessStatusStyle = StatusStyle.
		Foreground(p.Success)

	LoadingStatusStyle = StatusStyle.
		Foreground(p.Accent).
		Bold(true)

	SearchBoxStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Accent).
		Padding(1).
		MarginBottom(1)

	SearchResultsStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Padding(1)

	FormStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)

	HelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		Italic(true).
		MarginTop(1)
}

// PaletteFor maps a resolved theme name to its palette
func PaletteFor(theme string) Palette {
	if theme == LightPalette.Name {
		return LightPalette
	}
	return DarkPalette
}

// RenderProgressBar renders a progress bar with the given percentage
func RenderProgressBar(width int, progress float64) string {
	if width <= 0 {
		return ""
	}

	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	fillWidth := int(float64(width) * progress)

	filled := lipgloss.NewStyle().
		Foreground(Current.Primary).
		Render(strings.Repeat("█", fillWidth))
	empty := lipgloss.NewStyle().
		Foreground(Current.Secondary).
		Render(strings.Repeat("█", width-fillWidth))

	return lipgloss.JoinHorizontal(lipgloss.Left, filled, empty)
}

// FormatClock formats d as m:ss, or h:mm:ss for long episodes
func FormatClock(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// TruncateText truncates text to fit within the specified width
func TruncateText(text string, width int) string {
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	if width <= 3 {
		return "..."
	}
	return string(runes[:width-3]) + "..."
}

// VisibleWindow returns the [start, end) slice of a list of total items that keeps
// selected roughly centred in maxVisible rows.
func VisibleWindow(selected, total, maxVisible int) (int, int) {
	if maxVisible <= 0 || total <= maxVisible {
		return 0, total
	}
	start := selected - maxVisible/2
	if start < 0 {
		start = 0
	}
	end := start + maxVisible
	if end > total {
		end = total
		start = end - maxVisible
	}
	return start, end
}

// RenderList renders items with the selected one highlighted, scrolled to fit maxVisible rows
func RenderList(items []string, selected, maxVisible int) string {
	start, end := VisibleWindow(selected, len(items), maxVisible)

	rows := make([]string, 0, end-start+1)
	for i := start; i < end; i++ {
		if i == selected {
			rows = append(rows, SelectedListItemStyle.Render("▶ "+items[i]))
		} else {
			rows = append(rows, ListItemStyle.Render("  "+items[i]))
		}
	}
	if end-start < len(items) {
		rows = append(rows, StatusStyle.Render(fmt.Sprintf("  [%d-%d of %d]", start+1, end, len(items))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// RenderEpisodeHeading renders an episode title above its podcast name
func RenderEpisodeHeading(title, podcastTitle string, width int) string {
	if title == "" {
		title = "Untitled episode"
	}
	if podcastTitle == "" {
		podcastTitle = "Unknown podcast"
	}
	maxWidth := width - 4
	return lipgloss.JoinVertical(
		lipgloss.Left,
		EpisodeTitleStyle.Render(TruncateText(title, maxWidth)),
		PodcastNameStyle.Render(TruncateText(podcastTitle, maxWidth)),
	)
}
