package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/intellidetect/dashboard/pkg/domain"
)

// Sweep animation for the header logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

const logoText = "INTELLIDETECT"

// renderShimmerLogo renders the product name with a radar-style sweep of light.
// Deep navy (#12304a) -> bright cyan (#38bdf8).
func renderShimmerLogo(frame int) string {
	n := len(logoText)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.12 - x*3.5
		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.6)
		b = b*0.8 + 0.15

		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(18 + b*(56-18))
		g := clampByte(48 + b*(189-48))
		bl := clampByte(74 + b*(248-74))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(logoText[i])))

		if i < n-1 {
			out.WriteString(" ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e8f0")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38bdf8"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#38bdf8")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	okStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f0a040"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#606878")).
			Width(14)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#38bdf8")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	statValueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e8f0")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(0, 1)

	borderColor = lipgloss.Color("#2a3444")

	// Selected row background
	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e2634"))
)

// riskColors maps obstacle risk levels to their display color.
var riskColors = map[domain.RiskLevel]lipgloss.Color{
	domain.RiskLow:    lipgloss.Color("#34d474"),
	domain.RiskMedium: lipgloss.Color("#f0a040"),
	domain.RiskHigh:   lipgloss.Color("#e06060"),
}

// RiskStyle returns a bold style colored for the given risk level.
func RiskStyle(level domain.RiskLevel) lipgloss.Style {
	if c, ok := riskColors[level]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8890a0")).Bold(true)
}

// stateStyle colors an accident description state.
func stateStyle(state string) lipgloss.Style {
	switch strings.ToLower(state) {
	case "resolved", "closed":
		return okStyle
	case "pending", "open", "":
		return warnStyle
	default:
		return normalStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins help entries for the bottom line.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpView renders the help overlay.
func helpView() string {
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	keys := []struct{ key, desc string }{
		{"1", "Dashboard"},
		{"2", "Accidents"},
		{"3", "Obstacles"},
		{"4", "Account"},
		{"j/k", "Move the cursor"},
		{"n/p", "Next and previous page"},
		{"enter", "Open the selected record"},
		{"e", "Edit display info"},
		{"o", "Open media in the browser"},
		{"c", "Copy media URL"},
		{"r", "Refresh"},
		{"esc", "Back"},
		{"q", "Quit"},
	}
	commands := []struct{ cmd, desc string }{
		{"intellidetect", "Open the dashboard"},
		{"intellidetect login", "Sign in from the command line"},
		{"intellidetect logout", "Clear the stored session"},
		{"intellidetect accidents", "List, inspect and annotate accidents"},
		{"intellidetect obstacles", "List and inspect obstacles"},
		{"intellidetect mock-server", "Run a local backend with demo data"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render("I N T E L L I D E T E C T"))

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-8s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", c.cmd)), descStyle.Render(c.desc))
	}
	return b.String()
}
