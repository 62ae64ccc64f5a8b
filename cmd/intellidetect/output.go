package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-json"

	"github.com/intellidetect/dashboard/pkg/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#D4A017"))
	highStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#f87171")).Bold(true)
)

// emit writes v as indented JSON when --json is set, otherwise the result of
// human.
func (c *cli) emit(w io.Writer, v any, human func() string) error {
	if c.jsonOutput {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}
	_, err := fmt.Fprint(w, human())
	return err
}

func field(b *strings.Builder, label, value string) {
	if value == "" {
		value = "-"
	}
	fmt.Fprintf(b, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-14s", label)), value)
}

func riskLabel(r domain.RiskLevel) string {
	if r == domain.RiskHigh {
		return highStyle.Render(string(r))
	}
	if r == domain.RiskMedium {
		return warnStyle.Render(string(r))
	}
	return string(r)
}

func pageFooter(b *strings.Builder, current, pages, total int) {
	fmt.Fprintf(b, "\n  %s\n", labelStyle.Render(fmt.Sprintf("page %d of %d, %d total", current, pages, total)))
}

func formatUserHuman(u *domain.User) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render(u.Username))
	field(&b, "id", fmt.Sprint(u.ID))
	field(&b, "email", u.Email)
	field(&b, "phone", u.PhoneNumber)
	field(&b, "created", u.CreateTime)
	b.WriteString("\n")
	return b.String()
}

func formatAccidentListHuman(p *domain.Page[domain.Accident]) string {
	var b strings.Builder
	b.WriteString("\n")
	if len(p.Records) == 0 {
		b.WriteString("  No accidents recorded.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  %s\n", boldStyle.Render(fmt.Sprintf("%-6s %-10s %-22s %s", "ID", "STATE", "TIME", "DESCRIPTION")))
	for _, a := range p.Records {
		fmt.Fprintf(&b, "  %-6d %-10s %-22s %s\n", a.ID, a.AccidentDescriptionState, a.AccidentDescriptionTime, a.AccidentDescription)
	}
	pageFooter(&b, p.Current, p.TotalPageCount(), p.Total)
	return b.String()
}

func formatAccidentHuman(a *domain.Accident) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render(fmt.Sprintf("Accident #%d", a.ID)))
	field(&b, "description", a.AccidentDescription)
	field(&b, "details", a.AccidentDescriptionText)
	field(&b, "time", a.AccidentDescriptionTime)
	field(&b, "state", a.AccidentDescriptionState)
	field(&b, "display", a.DisplayInfo)
	field(&b, "video", a.VideoURL)
	field(&b, "image", a.ImageURL)
	b.WriteString("\n")
	return b.String()
}

func formatAccidentStatsHuman(s *domain.AccidentStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render("Accidents"))
	field(&b, "total", fmt.Sprint(s.TotalAccidents))
	field(&b, "resolved", fmt.Sprint(s.ResolvedAccidents))
	field(&b, "pending", fmt.Sprint(s.PendingAccidents))
	field(&b, "rate", fmt.Sprintf("%.1f%%", s.AccidentRate*100))
	b.WriteString("\n")
	return b.String()
}

func formatObstacleRows(b *strings.Builder, obstacles []domain.Obstacle) {
	fmt.Fprintf(b, "  %s\n", boldStyle.Render(fmt.Sprintf("%-6s %-10s %-8s %-22s %s", "ID", "TYPE", "RISK", "POSITION", "DESCRIPTION")))
	for _, o := range obstacles {
		// Pad before styling so ANSI codes don't break alignment.
		risk := riskLabel(o.RiskLevel) + strings.Repeat(" ", max(0, 8-len(o.RiskLevel)))
		pos := fmt.Sprintf("%.5f,%.5f", o.Latitude, o.Longitude)
		fmt.Fprintf(b, "  %-6d %-10s %s %-22s %s\n", o.ID, o.Type, risk, pos, o.Description)
	}
}

func formatObstacleListHuman(p *domain.Page[domain.Obstacle]) string {
	var b strings.Builder
	b.WriteString("\n")
	if len(p.Records) == 0 {
		b.WriteString("  No obstacles recorded.\n")
		return b.String()
	}
	formatObstacleRows(&b, p.Records)
	pageFooter(&b, p.Current, p.TotalPageCount(), p.Total)
	return b.String()
}

func formatHighRiskHuman(obstacles []domain.Obstacle) string {
	var b strings.Builder
	b.WriteString("\n")
	if len(obstacles) == 0 {
		b.WriteString("  No high-risk obstacles.\n")
		return b.String()
	}
	formatObstacleRows(&b, obstacles)
	b.WriteString("\n")
	return b.String()
}

func formatObstacleHuman(o *domain.Obstacle) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render(fmt.Sprintf("Obstacle #%d", o.ID)))
	field(&b, "type", string(o.Type))
	field(&b, "risk", riskLabel(o.RiskLevel))
	field(&b, "position", fmt.Sprintf("%.6f, %.6f", o.Latitude, o.Longitude))
	if o.Height > 0 {
		field(&b, "height", fmt.Sprintf("%.1f m", o.Height))
	}
	field(&b, "description", o.Description)
	field(&b, "display", o.DisplayInfo)
	field(&b, "image", o.ImageURL)
	b.WriteString("\n")
	return b.String()
}

func formatObstacleStatsHuman(s *domain.ObstacleStats) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render("Obstacles"))
	field(&b, "total", fmt.Sprint(s.TotalObstacles))
	field(&b, "high risk", fmt.Sprint(s.HighRiskObstacles))
	for _, t := range domain.ObstacleTypes {
		if n, ok := s.ByType[t]; ok {
			field(&b, string(t), fmt.Sprint(n))
		}
	}
	b.WriteString("\n")
	return b.String()
}

func formatDetectionsHuman(ds []domain.Detection) string {
	var b strings.Builder
	b.WriteString("\n")
	if len(ds) == 0 {
		b.WriteString("  No detections.\n")
		return b.String()
	}
	fmt.Fprintf(&b, "  %s\n", boldStyle.Render(fmt.Sprintf("%-6s %-20s %-6s %-8s %-6s %s", "ID", "TIME", "TYPE", "SIZE", "CONF", "POSITION")))
	for _, d := range ds {
		fmt.Fprintf(&b, "  %-6d %-20s %-6s %-8s %-6s %.5f,%.5f\n",
			d.ID, d.Timestamp.Local().Format("2006-01-02 15:04:05"), d.Type,
			fmt.Sprintf("%.0fcm", d.Size), fmt.Sprintf("%.0f%%", d.Confidence*100),
			d.Coordinates.Latitude, d.Coordinates.Longitude)
	}
	b.WriteString("\n")
	return b.String()
}

// status renders a one-line confirmation.
func status(msg string) string {
	return "  " + titleStyle.Render("✓") + " " + msg + "\n"
}
