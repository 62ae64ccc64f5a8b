package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/intellidetect/dashboard/internal/router"
	"github.com/intellidetect/dashboard/pkg/client"
	"github.com/intellidetect/dashboard/pkg/domain"
)

type accountMode int

const (
	accountNormal accountMode = iota
	accountPassword
	accountConfirmDelete
)

type userLoadedMsg struct {
	user *domain.User
	err  error
}

type passwordChangedMsg struct{ err error }
type accountDeletedMsg struct{ err error }
type loggedOutMsg struct{ err error }

// accountModel shows the signed-in user's profile and account actions.
type accountModel struct {
	client  *client.Client
	id      int64
	user    *domain.User
	mode    accountMode
	form    form
	loading bool
	err     string
	status  string
	width   int
	height  int
}

func newAccountModel(s *client.Services, rawID string) accountModel {
	m := accountModel{client: s.Users(), loading: true}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		m.loading = false
		m.err = fmt.Sprintf("invalid user id %q", rawID)
		return m
	}
	m.id = id
	return m
}

func (m accountModel) Init() tea.Cmd {
	if m.id == 0 {
		return nil
	}
	c, id := m.client, m.id
	return func() tea.Msg {
		u, err := c.GetUser(context.Background(), id)
		return userLoadedMsg{user: u, err: err}
	}
}

func (m accountModel) editing() bool {
	return m.mode != accountNormal
}

func (m accountModel) Update(msg tea.Msg) (accountModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case userLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		m.user = msg.user

	case passwordChangedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("password change failed: " + client.Message(msg.err))
			return m, nil
		}
		m.status = okStyle.Render("password updated")

	case accountDeletedMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("delete failed: " + client.Message(msg.err))
			return m, nil
		}
		return m, navigateTo(router.PathLogin, "account deleted")

	case loggedOutMsg:
		notice := "signed out"
		if msg.err != nil {
			notice = "signed out, but the session file could not be cleared: " + msg.err.Error()
		}
		return m, navigateTo(router.PathLogin, notice)

	case tea.KeyMsg:
		m.status = ""
		switch m.mode {
		case accountPassword:
			return m.updatePassword(msg)
		case accountConfirmDelete:
			return m.updateConfirm(msg)
		}
		switch msg.String() {
		case "p":
			m.mode = accountPassword
			m.form = newForm(
				field{label: "Current", secret: true},
				field{label: "New", secret: true},
			)
		case "l":
			c := m.client
			return m, func() tea.Msg {
				return loggedOutMsg{err: c.Logout()}
			}
		case "D":
			m.mode = accountConfirmDelete
		case "r":
			m.loading = true
			return m, m.Init()
		}
	}
	return m, nil
}

func (m accountModel) updatePassword(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = accountNormal
		return m, nil
	case "enter":
		if !m.form.onLast() {
			m.form = m.form.update("tab")
			return m, nil
		}
		if !m.form.complete() {
			m.status = errorStyle.Render("both fields are required")
			return m, nil
		}
		c := m.client
		change := domain.PasswordChange{OldPassword: m.form.value(0), NewPassword: m.form.value(1)}
		m.mode = accountNormal
		return m, func() tea.Msg {
			return passwordChangedMsg{err: c.UpdatePassword(context.Background(), change)}
		}
	default:
		m.form = m.form.update(msg.String())
	}
	return m, nil
}

func (m accountModel) updateConfirm(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	if msg.String() != "y" {
		m.mode = accountNormal
		return m, nil
	}
	m.mode = accountNormal
	c := m.client
	return m, func() tea.Msg {
		return accountDeletedMsg{err: c.DeleteUser(context.Background())}
	}
}

func (m accountModel) View() string {
	var b strings.Builder
	b.WriteString(" " + titleStyle.Render("Account") + "\n")
	b.WriteString(separator(m.width) + "\n")

	switch {
	case m.loading:
		b.WriteString(" " + dimStyle.Render("loading...") + "\n")
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	case m.user != nil:
		rows := [][2]string{
			{"Username", m.user.Username},
			{"User ID", strconv.FormatInt(m.user.ID, 10)},
			{"Phone", orDash(m.user.PhoneNumber)},
			{"Email", orDash(m.user.Email)},
			{"Member since", formatStamp(orDash(m.user.CreateTime))},
		}
		for _, r := range rows {
			b.WriteString("   " + labelStyle.Render(r[0]) + normalStyle.Render(r[1]) + "\n")
		}
	}

	switch m.mode {
	case accountPassword:
		b.WriteString("\n " + sectionHeaderStyle.Render("CHANGE PASSWORD") + "\n")
		b.WriteString(m.form.view())
	case accountConfirmDelete:
		b.WriteString("\n " + errorStyle.Render("Delete this account permanently? press y to confirm, any other key to cancel") + "\n")
	}

	if m.status != "" {
		b.WriteString("\n " + m.status + "\n")
	}
	return b.String()
}

func (m accountModel) helpKeys() string {
	switch m.mode {
	case accountPassword:
		return helpBar("tab", "next", "enter", "submit", "esc", "cancel")
	case accountConfirmDelete:
		return helpBar("y", "delete", "any", "cancel")
	}
	return helpBar("p", "password", "l", "sign out", "D", "delete account", "r", "refresh", "q", "quit")
}
