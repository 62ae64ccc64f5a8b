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

type accidentsLoadedMsg struct {
	page *domain.Page[domain.Accident]
	err  error
}

type accidentLoadedMsg struct {
	accident *domain.Accident
	err      error
}

type accidentSavedMsg struct {
	accident *domain.Accident
	err      error
}

// accidentListModel pages through accident records.
type accidentListModel struct {
	client  *client.Client
	page    *domain.Page[domain.Accident]
	pageNum int
	cursor  int
	loading bool
	err     string
	width   int
	height  int
}

func newAccidentListModel(s *client.Services) accidentListModel {
	return accidentListModel{
		client:  s.Accidents,
		pageNum: domain.DefaultPage,
		loading: true,
	}
}

func (m accidentListModel) Init() tea.Cmd {
	return m.load()
}

func (m accidentListModel) load() tea.Cmd {
	c, page := m.client, m.pageNum
	return func() tea.Msg {
		p, err := c.ListAccidents(context.Background(), page, domain.DefaultPageSize)
		return accidentsLoadedMsg{page: p, err: err}
	}
}

func (m accidentListModel) Update(msg tea.Msg) (accidentListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case accidentsLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		m.err = ""
		m.page = msg.page
		if m.cursor >= len(m.page.Records) {
			m.cursor = 0
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "j", "down":
			if m.page != nil && m.cursor < len(m.page.Records)-1 {
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
		case "r":
			m.loading = true
			return m, m.load()
		case "enter":
			if m.page != nil && m.cursor < len(m.page.Records) {
				id := m.page.Records[m.cursor].ID
				return m, navigateTo("/accidents/"+strconv.FormatInt(id, 10), "")
			}
		}
	}
	return m, nil
}

func (m accidentListModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Accidents"))
	if m.page != nil {
		b.WriteString("  " + metaStyle.Render(fmt.Sprintf("page %d/%d . %d total", m.page.Current, max(m.page.TotalPageCount(), 1), m.page.Total)))
	}
	b.WriteString("\n")
	b.WriteString(separator(m.width) + "\n")

	if m.loading && m.page == nil {
		return b.String() + " " + dimStyle.Render("loading...") + "\n"
	}
	if m.err != "" {
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	if m.page == nil {
		return b.String()
	}
	if len(m.page.Records) == 0 {
		return b.String() + " " + dimStyle.Render("no accidents recorded") + "\n"
	}

	descW := max(m.width-40, 12)
	for i, a := range m.page.Records {
		row := fmt.Sprintf(" %-5d %-16s %-9s %s",
			a.ID,
			formatStamp(orDash(a.AccidentDescriptionTime)),
			truncStr(orDash(a.AccidentDescriptionState), 9),
			truncStr(oneLine(a.AccidentDescription), descW))
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(selectedStyle.Render(">" + row)))
		} else {
			b.WriteString(" " + normalStyle.Render(row))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m accidentListModel) helpKeys() string {
	return helpBar("j/k", "nav", "n/p", "page", "enter", "open", "r", "refresh", "h", "help", "q", "quit")
}

// accidentDetailModel shows one accident and edits its display info.
type accidentDetailModel struct {
	client   *client.Client
	id       int64
	accident *domain.Accident
	loading  bool
	editing  bool
	draft    string
	err      string
	status   string
	width    int
	height   int
}

func newAccidentDetailModel(s *client.Services, rawID string) accidentDetailModel {
	m := accidentDetailModel{client: s.Accidents, loading: true}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		m.loading = false
		m.err = fmt.Sprintf("invalid accident id %q", rawID)
		return m
	}
	m.id = id
	return m
}

func (m accidentDetailModel) Init() tea.Cmd {
	if m.id == 0 {
		return nil
	}
	c, id := m.client, m.id
	return func() tea.Msg {
		a, err := c.GetAccident(context.Background(), id)
		return accidentLoadedMsg{accident: a, err: err}
	}
}

func (m accidentDetailModel) save() tea.Cmd {
	c, id, info := m.client, m.id, m.draft
	return func() tea.Msg {
		a, err := c.UpdateAccidentDisplay(context.Background(), id, info)
		return accidentSavedMsg{accident: a, err: err}
	}
}

func (m accidentDetailModel) Update(msg tea.Msg) (accidentDetailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case accidentLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		m.accident = msg.accident

	case accidentSavedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("save failed: " + client.Message(msg.err))
			return m, nil
		}
		if msg.accident != nil && msg.accident.ID != 0 {
			m.accident = msg.accident
		} else if m.accident != nil {
			m.accident.DisplayInfo = m.draft
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
			return m, navigateTo("/accidents", "")
		case "e":
			if m.accident != nil {
				m.editing = true
				m.draft = m.accident.DisplayInfo
			}
		case "o":
			if m.accident != nil && m.accident.VideoURL != "" {
				return m, openCmd(m.accident.VideoURL)
			}
		case "i":
			if m.accident != nil && m.accident.ImageURL != "" {
				return m, openCmd(m.accident.ImageURL)
			}
		case "c":
			if m.accident != nil && m.accident.VideoURL != "" {
				return m, copyCmd(m.accident.VideoURL)
			}
		}
	}
	return m, nil
}

func (m accidentDetailModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render(fmt.Sprintf("Accident #%d", m.id)) + "\n")
	b.WriteString(separator(m.width) + "\n")

	if m.loading {
		return b.String() + " " + dimStyle.Render("loading...") + "\n"
	}
	if m.err != "" {
		return b.String() + " " + errorStyle.Render(m.err) + "\n"
	}
	a := m.accident
	if a == nil {
		return b.String()
	}

	rows := [][2]string{
		{"State", stateStyle(a.AccidentDescriptionState).Render(orDash(a.AccidentDescriptionState))},
		{"Time", normalStyle.Render(formatStamp(orDash(a.AccidentDescriptionTime)))},
		{"Summary", normalStyle.Render(orDash(a.AccidentDescription))},
		{"Details", normalStyle.Render(orDash(a.AccidentDescriptionText))},
		{"Video", accentStyle.Render(orDash(a.VideoURL))},
		{"Image", accentStyle.Render(orDash(a.ImageURL))},
		{"Created", dimStyle.Render(formatStamp(orDash(a.CreateTime)))},
		{"Updated", dimStyle.Render(formatStamp(orDash(a.UpdateTime)))},
	}
	for _, r := range rows {
		b.WriteString("   " + labelStyle.Render(r[0]) + r[1] + "\n")
	}

	b.WriteString("\n   " + labelStyle.Render("Display info"))
	if m.editing {
		b.WriteString(inputPromptStyle.Render("> ") + selectedStyle.Render(m.draft) + accentStyle.Render("█"))
	} else {
		b.WriteString(normalStyle.Render(orDash(a.DisplayInfo)))
	}
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString("\n " + m.status + "\n")
	}
	return b.String()
}

func (m accidentDetailModel) helpKeys() string {
	if m.editing {
		return helpBar("enter", "save", "esc", "cancel")
	}
	return helpBar("e", "edit display", "o", "open video", "i", "open image", "c", "copy url", "esc", "back")
}
