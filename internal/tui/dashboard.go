package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/intellidetect/dashboard/pkg/client"
	"github.com/intellidetect/dashboard/pkg/domain"
)

// realtimeInterval is how often the dashboard polls the detection feed.
const realtimeInterval = 5 * time.Second

type accidentStatsMsg struct {
	stats *domain.AccidentStats
	err   error
}

type obstacleStatsMsg struct {
	stats *domain.ObstacleStats
	err   error
}

type highRiskMsg struct {
	obstacles []domain.Obstacle
	err       error
}

type realtimeMsg struct {
	detections []domain.Detection
	err        error
}

// realtimeTickMsg carries the mount generation so stale tickers stop.
type realtimeTickMsg struct {
	gen int
}

type dashboardModel struct {
	services      *client.Services
	gen           int
	accidentStats *domain.AccidentStats
	obstacleStats *domain.ObstacleStats
	highRisk      []domain.Obstacle
	detections    []domain.Detection
	errs          map[string]string
	updatedAt     time.Time
	width         int
	height        int
	loading       bool
}

func newDashboardModel(s *client.Services, gen int) dashboardModel {
	return dashboardModel{
		services: s,
		gen:      gen,
		errs:     make(map[string]string),
		loading:  true,
	}
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadAccidentStats(), m.loadObstacleStats(), m.loadHighRisk(), m.loadRealtime(), m.tick())
}

func (m dashboardModel) loadAccidentStats() tea.Cmd {
	c := m.services.Accidents
	return func() tea.Msg {
		st, err := c.AccidentStats(context.Background())
		return accidentStatsMsg{stats: st, err: err}
	}
}

func (m dashboardModel) loadObstacleStats() tea.Cmd {
	c := m.services.Obstacles
	return func() tea.Msg {
		st, err := c.ObstacleStats(context.Background())
		return obstacleStatsMsg{stats: st, err: err}
	}
}

func (m dashboardModel) loadHighRisk() tea.Cmd {
	c := m.services.Obstacles
	return func() tea.Msg {
		obs, err := c.HighRiskObstacles(context.Background())
		return highRiskMsg{obstacles: obs, err: err}
	}
}

func (m dashboardModel) loadRealtime() tea.Cmd {
	c := m.services.Obstacles
	return func() tea.Msg {
		ds, err := c.RealtimeDetections(context.Background())
		return realtimeMsg{detections: ds, err: err}
	}
}

func (m dashboardModel) tick() tea.Cmd {
	gen := m.gen
	return tea.Tick(realtimeInterval, func(time.Time) tea.Msg {
		return realtimeTickMsg{gen: gen}
	})
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case accidentStatsMsg:
		m.loading = false
		m.setErr("accidents", msg.err)
		if msg.err == nil {
			m.accidentStats = msg.stats
		}

	case obstacleStatsMsg:
		m.setErr("obstacles", msg.err)
		if msg.err == nil {
			m.obstacleStats = msg.stats
		}

	case highRiskMsg:
		m.setErr("high-risk", msg.err)
		if msg.err == nil {
			m.highRisk = msg.obstacles
		}

	case realtimeMsg:
		m.setErr("detections", msg.err)
		if msg.err == nil {
			m.detections = msg.detections
			m.updatedAt = time.Now()
		}

	case realtimeTickMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m, tea.Batch(m.loadRealtime(), m.tick())

	case tea.KeyMsg:
		if msg.String() == "r" {
			m.loading = true
			return m, tea.Batch(m.loadAccidentStats(), m.loadObstacleStats(), m.loadHighRisk(), m.loadRealtime())
		}
	}
	return m, nil
}

func (m dashboardModel) setErr(section string, err error) {
	if err != nil {
		m.errs[section] = client.Message(err)
		return
	}
	delete(m.errs, section)
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Overview"))
	if !m.updatedAt.IsZero() {
		b.WriteString("  " + metaStyle.Render("feed updated "+m.updatedAt.Format("15:04:05")))
	}
	b.WriteString("\n\n")

	cards := []string{m.accidentCard(), m.obstacleCard()}
	if m.width >= 70 {
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[0], " ", cards[1]))
	} else {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, cards...))
	}
	b.WriteString("\n\n")

	b.WriteString(" " + sectionHeaderStyle.Render("HIGH-RISK OBSTACLES") + "\n")
	switch {
	case m.errs["high-risk"] != "":
		b.WriteString("   " + errorStyle.Render(m.errs["high-risk"]) + "\n")
	case len(m.highRisk) == 0:
		b.WriteString("   " + dimStyle.Render("none") + "\n")
	default:
		for i, o := range m.highRisk {
			if i == 5 {
				b.WriteString("   " + dimStyle.Render(fmt.Sprintf("+%d more", len(m.highRisk)-5)) + "\n")
				break
			}
			fmt.Fprintf(&b, "   %s %s %s\n",
				RiskStyle(o.RiskLevel).Render(fmt.Sprintf("#%-4d", o.ID)),
				normalStyle.Render(fmt.Sprintf("%-10s", o.Type)),
				dimStyle.Render(truncStr(oneLine(o.Description), max(m.width-24, 10))))
		}
	}

	b.WriteString("\n " + sectionHeaderStyle.Render("REALTIME DETECTIONS") + "\n")
	switch {
	case m.errs["detections"] != "":
		b.WriteString("   " + errorStyle.Render(m.errs["detections"]) + "\n")
	case len(m.detections) == 0:
		b.WriteString("   " + dimStyle.Render("no detections") + "\n")
	default:
		for _, d := range m.detections {
			fmt.Fprintf(&b, "   %s %s %s %s\n",
				metaStyle.Render(fmt.Sprintf("%-9s", formatTime(d.Timestamp))),
				accentStyle.Render(fmt.Sprintf("%-6s", d.Type)),
				normalStyle.Render(fmt.Sprintf("%5.1fcm", d.Size)),
				dimStyle.Render(fmt.Sprintf("%3.0f%%  %.5f, %.5f", d.Confidence*100, d.Coordinates.Latitude, d.Coordinates.Longitude)))
		}
	}
	return b.String()
}

func (m dashboardModel) accidentCard() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("ACCIDENTS") + "\n")
	switch {
	case m.errs["accidents"] != "":
		b.WriteString(errorStyle.Render(m.errs["accidents"]))
	case m.accidentStats == nil:
		b.WriteString(dimStyle.Render("loading..."))
	default:
		st := m.accidentStats
		b.WriteString(statLine("total", fmt.Sprintf("%d", st.TotalAccidents)) + "\n")
		b.WriteString(statLine("resolved", okStyle.Render(fmt.Sprintf("%d", st.ResolvedAccidents))) + "\n")
		b.WriteString(statLine("pending", warnStyle.Render(fmt.Sprintf("%d", st.PendingAccidents))) + "\n")
		b.WriteString(statLine("rate", fmt.Sprintf("%.1f%%", st.AccidentRate*100)))
	}
	return cardStyle.Width(32).Render(b.String())
}

func (m dashboardModel) obstacleCard() string {
	var b strings.Builder
	b.WriteString(sectionHeaderStyle.Render("OBSTACLES") + "\n")
	switch {
	case m.errs["obstacles"] != "":
		b.WriteString(errorStyle.Render(m.errs["obstacles"]))
	case m.obstacleStats == nil:
		b.WriteString(dimStyle.Render("loading..."))
	default:
		st := m.obstacleStats
		b.WriteString(statLine("total", fmt.Sprintf("%d", st.TotalObstacles)) + "\n")
		b.WriteString(statLine("high risk", RiskStyle(domain.RiskHigh).Render(fmt.Sprintf("%d", st.HighRiskObstacles))))
		for _, t := range domain.ObstacleTypes {
			if n := st.ByType[t]; n > 0 {
				b.WriteString("\n" + statLine(string(t), fmt.Sprintf("%d", n)))
			}
		}
	}
	return cardStyle.Width(32).Render(b.String())
}

func statLine(label, value string) string {
	return dimStyle.Render(fmt.Sprintf("%-10s", label)) + statValueStyle.Render(value)
}
