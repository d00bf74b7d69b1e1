package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	// Base colors
	Background    lipgloss.Color
	Surface       lipgloss.Color
	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	// Accent colors
	Primary lipgloss.Color
	Button  lipgloss.Color

	// Semantic colors
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	// UI element colors
	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// Light is the default color theme
var Light = Theme{
	Name: "light",

	Background:    lipgloss.Color("#f0f4f8"),
	Surface:       lipgloss.Color("#ffffff"),
	Foreground:    lipgloss.Color("#2d3748"),
	ForegroundDim: lipgloss.Color("#718096"),

	Primary: lipgloss.Color("#4299e1"),
	Button:  lipgloss.Color("#e2e8f0"),

	Success: lipgloss.Color("#48bb78"),
	Warning: lipgloss.Color("#ed8936"),
	Error:   lipgloss.Color("#f56565"),

	Border:      lipgloss.Color("#cbd5e0"),
	BorderFocus: lipgloss.Color("#4299e1"),
	Selection:   lipgloss.Color("#e2e8f0"),
}

// Dark is the alternate color theme
var Dark = Theme{
	Name: "dark",

	Background:    lipgloss.Color("#1a202c"),
	Surface:       lipgloss.Color("#2d3748"),
	Foreground:    lipgloss.Color("#e2e8f0"),
	ForegroundDim: lipgloss.Color("#a0aec0"),

	Primary: lipgloss.Color("#4299e1"),
	Button:  lipgloss.Color("#4a5568"),

	Success: lipgloss.Color("#48bb78"),
	Warning: lipgloss.Color("#f6ad55"),
	Error:   lipgloss.Color("#fc8181"),

	Border:      lipgloss.Color("#718096"),
	BorderFocus: lipgloss.Color("#4299e1"),
	Selection:   lipgloss.Color("#4a5568"),
}

// current is process-wide; views must read it through Current on every
// rebuild since it can be toggled at any time.
var current = Light

// Current returns the active theme
func Current() Theme {
	return current
}

// Toggle switches between the light and dark themes and returns the new one
func Toggle() Theme {
	if current.Name == Dark.Name {
		current = Light
	} else {
		current = Dark
	}
	return current
}

// Set activates the theme called name. Unknown names leave the theme unchanged.
func Set(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case Light.Name:
		current = Light
	case Dark.Name:
		current = Dark
	default:
		return false
	}
	return true
}

// MaxWidth is the maximum content width for the app (classic terminal width)
const MaxWidth = 100

// ContentWidth returns the actual content width to use (min of terminal width and MaxWidth)
func ContentWidth(terminalWidth int) int {
	if terminalWidth > MaxWidth {
		return MaxWidth
	}
	return terminalWidth
}

// CenterView wraps content and centers it horizontally if terminal is wider than MaxWidth
func CenterView(content string, terminalWidth, terminalHeight int) string {
	if terminalWidth <= MaxWidth {
		return content
	}
	return lipgloss.Place(terminalWidth, terminalHeight,
		lipgloss.Center, lipgloss.Top,
		content,
	)
}

// Styles holds all the pre-computed styles for the UI
type Styles struct {
	Theme Theme

	// Title bar
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	// Navigation bar
	Nav       lipgloss.Style
	NavItem   lipgloss.Style
	NavActive lipgloss.Style

	// Lists
	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	// Task rows
	TaskText lipgloss.Style
	TaskDone lipgloss.Style
	TaskDate lipgloss.Style

	// Popups and boxed panels
	Popup lipgloss.Style
	Panel lipgloss.Style

	// Buttons
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	ButtonPrimary lipgloss.Style
	ButtonDanger  lipgloss.Style

	// Input fields
	Input        lipgloss.Style
	InputFocused lipgloss.Style

	// Help text
	Help     lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	// Status line
	StatusBar     lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusWarning lipgloss.Style
	StatusError   lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current()

	return &Styles{
		Theme: t,

		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Nav: lipgloss.NewStyle().
			Background(t.Primary).
			Padding(0, 1),

		NavItem: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(t.Primary).
			Padding(0, 2),

		NavActive: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(lipgloss.Color("#ffffff")).
			Padding(0, 2).
			Bold(true),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 1),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 1).
			Bold(true),

		TaskText: lipgloss.NewStyle().
			Foreground(t.Foreground),

		TaskDone: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Strikethrough(true),

		TaskDate: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		Popup: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		Panel: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border),

		Button: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 2),

		ButtonFocused: lipgloss.NewStyle().
			Foreground(t.Primary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 2).
			Bold(true),

		ButtonPrimary: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(t.Primary).
			Padding(0, 2).
			Bold(true),

		ButtonDanger: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(t.Error).
			Padding(0, 2).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		InputFocused: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.BorderFocus).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 1, 0, 1),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		StatusBar: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(0, 1),

		StatusSuccess: lipgloss.NewStyle().
			Foreground(t.Success).
			Padding(0, 1),

		StatusWarning: lipgloss.NewStyle().
			Foreground(t.Warning).
			Padding(0, 1),

		StatusError: lipgloss.NewStyle().
			Foreground(t.Error).
			Padding(0, 1).
			Bold(true),
	}
}
