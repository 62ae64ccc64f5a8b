package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/intellidetect/dashboard/pkg/client"
	"github.com/intellidetect/dashboard/pkg/domain"
)

type obstaclesLoadedMsg struct {
	page *domain.Page[domain.Obstacle]
	err  error
}

type obstacleLoadedMsg struct {
	obstacle *domain.Obstacle
	err      error
}

type obstacleSavedMsg struct {
	obstacle *domain.Obstacle
	err      error
}

type obstacleListModel struct {
	client   *client.Client
	page     *domain.Page[domain.Obstacle]
	pageNum  int
	cursor   int
	highOnly bool
	loading  bool
	err      string
	width    int
	height   int
}

func newObstacleListModel(s *client.Services) obstacleListModel {
	return obstacleListModel{
		client:  s.Obstacles,
		pageNum: domain.DefaultPage,
		loading: true,
	}
}

func (m obstacleListModel) Init() tea.Cmd {
	return m.load()
}

func (m obstacleListModel) load() tea.Cmd {
	c, page := m.client, m.pageNum
	return func() tea.Msg {
		p, err := c.ListObstacles(context.Background(), page, domain.DefaultPageSize)
		return obstaclesLoadedMsg{page: p, err: err}
	}
}

// visible returns the records shown under the current filter.
func (m obstacleListModel) visible() []domain.Obstacle {
	if m.page == nil {
		return nil
	}
	if !m.highOnly {
		return m.page.Records
	}
	var out []domain.Obstacle
	for _, o := range m.page.Records {
		if o.RiskLevel == domain.RiskHigh {
			out = append(out, o)
		}
	}
	return out
}

func (m obstacleListModel) Update(msg tea.Msg) (obstacleListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case obstaclesLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		m.err = ""
		m.page = msg.page
		if m.cursor >= len(m.visible()) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.visible())-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "n", "right":
			if m.page != nil && m.page.HasNext() {
				m.pageNum++
				m.cursor = 0
				m.loading = true
				return m, m.load()
			}
		case "p", "left":
			if m.page != nil && m.page.HasPrev() {
				m.pageNum--
				m.cursor = 0
				m.loading = true
				return m, m.load()
			}
		case "f":
			m.highOnly = !m.highOnly
			m.cursor = 0
		case "r":
			m.loading = true
			return m, m.load()
		case "enter":
			if rows := m.visible(); m.cursor < len(rows) {
				return m, navigateTo("/obstacles/"+strconv.FormatInt(rows[m.cursor].ID, 10), "")
			}
		}
	}
	return m, nil
}

func (m obstacleListModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Obstacles"))
	if m.page != nil {
		b.WriteString("  " + metaStyle.Render(fmt.Sprintf("page %d/%d . %d total", m.page.Current, max(m.page.TotalPageCount(), 1), m.page.Total)))
	}
	if m.highOnly {
		b.WriteString("  " + RiskStyle(domain.RiskHigh).Render("[high risk only]"))
	}
	b.WriteString("\n")
	b.WriteString(separator(m.width) + "\n")

	if m.loading && m.page == nil {
		return b.String() + " " + dimStyle.Render("loading...") + "\n"
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	rows := m.visible()
	if m.page != nil && len(rows) == 0 {
		return b.String() + " " + dimStyle.Render("no obstacles on this page") + "\n"
	}

	descW := max(m.width-48, 12)
	for i, o := range rows {
		row := fmt.Sprintf(" %-5d %-10s %-7s %9.5f %10.5f  %s",
			o.ID, o.Type, o.RiskLevel, o.Latitude, o.Longitude,
			truncStr(oneLine(o.Description), descW))
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(selectedStyle.Render(">" + row)))
		} else {
			b.WriteString(" " + RiskStyle(o.RiskLevel).UnsetBold().Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m obstacleListModel) helpKeys() string {
	return helpBar("j/k", "nav", "n/p", "page", "f", "high risk", "enter", "open", "r", "refresh", "q", "quit")
}

type obstacleDetailModel struct {
	client   *client.Client
	id       int64
	obstacle *domain.Obstacle
	loading  bool
	editing  bool
	draft    string
	err      string
	status   string
	width    int
	height   int
}

func newObstacleDetailModel(s *client.Services, rawID string) obstacleDetailModel {
	m := obstacleDetailModel{client: s.Obstacles, loading: true}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		m.loading = false
		m.err = fmt.Sprintf("invalid obstacle id %q", rawID)
		return m
	}
	m.id = id
	return m
}

func (m obstacleDetailModel) Init() tea.Cmd {
	if m.id == 0 {
		return nil
	}
	c, id := m.client, m.id
	return func() tea.Msg {
		o, err := c.GetObstacle(context.Background(), id)
		return obstacleLoadedMsg{obstacle: o, err: err}
	}
}

func (m obstacleDetailModel) save() tea.Cmd {
	c, id, info := m.client, m.id, m.draft
	return func() tea.Msg {
		o, err := c.UpdateObstacleDisplay(context.Background(), id, info)
		return obstacleSavedMsg{obstacle: o, err: err}
	}
}

func (m obstacleDetailModel) Update(msg tea.Msg) (obstacleDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case obstacleLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		m.obstacle = msg.obstacle

	case obstacleSavedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("save failed: " + client.Message(msg.err))
			return m, nil
		}
		if msg.obstacle != nil && msg.obstacle.ID != 0 {
			m.obstacle = msg.obstacle
		} else if m.obstacle != nil {
			m.obstacle.DisplayInfo = m.draft
		}
		m.status = okStyle.Render("display info saved")

	case mediaResultMsg:
		m.status = mediaStatus(msg)

	case tea.KeyMsg:
		m.status = ""
		if m.editing {
			switch msg.String() {
			case "enter":
				m.editing = false
				return m, m.save()
			case "esc":
				m.editing = false
			default:
				m.draft = editRune(m.draft, msg.String())
			}
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, navigateTo("/obstacles", "")
		case "e":
			if m.obstacle != nil {
				m.editing = true
				m.draft = m.obstacle.DisplayInfo
			}
		case "o":
			if m.obstacle != nil && m.obstacle.ImageURL != "" {
				return m, openCmd(m.obstacle.ImageURL)
			}
		case "c":
			if m.obstacle != nil {
				return m, copyCmd(fmt.Sprintf("%.6f,%.6f", m.obstacle.Latitude, m.obstacle.Longitude))
			}
		}
	}
	return m, nil
}

func (m obstacleDetailModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render(fmt.Sprintf("Obstacle #%d", m.id)) + "\n")
	b.WriteString(separator(m.width) + "\n")

	if m.loading {
		return b.String() + " " + dimStyle.Render("loading...") + "\n"
	}
	if m.err != "" {
		return b.String() + " " + errorStyle.Render(m.err) + "\n"
	}
	o := m.obstacle
	if o == nil {
		return b.String()
	}

	height := "-"
	if o.Height > 0 {
		height = fmt.Sprintf("%.1f m", o.Height)
	}
	rows := [][2]string{
		{"Type", normalStyle.Render(string(o.Type))},
		{"Risk", RiskStyle(o.RiskLevel).Render(string(o.RiskLevel))},
		{"Position", normalStyle.Render(fmt.Sprintf("%.6f, %.6f", o.Latitude, o.Longitude))},
		{"Height", normalStyle.Render(height)},
		{"Description", normalStyle.Render(orDash(o.Description))},
		{"Image", accentStyle.Render(orDash(o.ImageURL))},
		{"Created", dimStyle.Render(formatStamp(orDash(o.CreateTime)))},
		{"Updated", dimStyle.Render(formatStamp(orDash(o.UpdateTime)))},
	}
	for _, r := range rows {
		b.WriteString("   " + labelStyle.Render(r[0]) + r[1] + "\n")
	}

	b.WriteString("\n   " + labelStyle.Render("Display info"))
	if m.editing {
		b.WriteString(inputPromptStyle.Render("> ") + selectedStyle.Render(m.draft) + accentStyle.Render("█"))
	} else {
		b.WriteString(normalStyle.Render(orDash(o.DisplayInfo)))
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n " + m.status + "\n")
	}
	return b.String()
}

func (m obstacleDetailModel) helpKeys() string {
	if m.editing {
		return helpBar("enter", "save", "esc", "cancel")
	}
	return helpBar("e", "edit display", "o", "open image", "c", "copy position", "esc", "back")
}
