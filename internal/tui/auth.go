package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/intellidetect/dashboard/internal/router"
	"github.com/intellidetect/dashboard/pkg/client"
	"github.com/intellidetect/dashboard/pkg/domain"
	"github.com/intellidetect/dashboard/pkg/session"
)

type loginResultMsg struct {
	user *domain.User
	err  error
}

type registerResultMsg struct {
	user *domain.User
	err  error
}

// loginModel is the sign-in form.
type loginModel struct {
	services   *client.Services
	form       form
	submitting bool
	err        string
	width      int
	height     int
}

func newLoginModel(s *client.Services) loginModel {
	return loginModel{
		services: s,
		form: newForm(
			field{label: "Username"},
			field{label: "Password", secret: true},
		),
	}
}

func (m loginModel) submit() tea.Cmd {
	users := m.services.Users()
	creds := domain.Credentials{
		Username: strings.TrimSpace(m.form.value(0)),
		Password: m.form.value(1),
	}
	return func() tea.Msg {
		ctx := context.Background()
		res, err := users.Login(ctx, creds)
		if err != nil {
			return loginResultMsg{err: err}
		}
		u := res.User
		if u == nil {
			// Login responses may omit the profile.
			u, err = users.GetUserByUsername(ctx, creds.Username)
			if err == nil {
				err = session.SaveUser(users.Store(), u)
			}
			if err != nil {
				return loginResultMsg{err: err}
			}
		}
		return loginResultMsg{user: u}
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case loginResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		return m, navigateTo(router.PathDashboard, "welcome, "+msg.user.Username)

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+r":
			return m, navigateTo(router.PathRegister, "")
		case "enter":
			if !m.form.onLast() {
				m.form = m.form.update("tab")
				return m, nil
			}
			if !m.form.complete() {
				m.err = "username and password are required"
				return m, nil
			}
			m.err = ""
			m.submitting = true
			return m, m.submit()
		default:
			m.form = m.form.update(msg.String())
		}
	}
	return m, nil
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Sign in") + "  " + dimStyle.Render("accident and obstacle monitoring") + "\n\n")
	b.WriteString(m.form.view())
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("signing in...") + "\n")
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}

func (m loginModel) helpKeys() string {
	return helpBar("tab", "next", "enter", "sign in", "ctrl+r", "register", "ctrl+c", "quit")
}

// registerModel is the sign-up form.
type registerModel struct {
	services   *client.Services
	form       form
	submitting bool
	err        string
	width      int
	height     int
}

// Register form field positions.
const (
	regUsername = iota
	regPassword
	regPhone
	regEmail
)

func newRegisterModel(s *client.Services) registerModel {
	return registerModel{
		services: s,
		form: newForm(
			field{label: "Username"},
			field{label: "Password", secret: true},
			field{label: "Phone"},
			field{label: "Email"},
		),
	}
}

func (m registerModel) submit() tea.Cmd {
	users := m.services.Users()
	reg := domain.Registration{
		Username:    strings.TrimSpace(m.form.value(regUsername)),
		Password:    m.form.value(regPassword),
		PhoneNumber: strings.TrimSpace(m.form.value(regPhone)),
		Email:       strings.TrimSpace(m.form.value(regEmail)),
	}
	return func() tea.Msg {
		u, err := users.Register(context.Background(), reg)
		return registerResultMsg{user: u, err: err}
	}
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case registerResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = client.Message(msg.err)
			return m, nil
		}
		return m, navigateTo(router.PathLogin, "account created, please sign in")

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, navigateTo(router.PathLogin, "")
		case "enter":
			if !m.form.onLast() {
				m.form = m.form.update("tab")
				return m, nil
			}
			if !m.form.complete(regPhone, regEmail) {
				m.err = "username and password are required"
				return m, nil
			}
			m.err = ""
			m.submitting = true
			return m, m.submit()
		default:
			m.form = m.form.update(msg.String())
		}
	}
	return m, nil
}

func (m registerModel) View() string {
	var b strings.Builder
	b.WriteString("\n " + titleStyle.Render("Create account") + "\n\n")
	b.WriteString(m.form.view())
	b.WriteString("\n")
	switch {
	case m.submitting:
		b.WriteString(" " + dimStyle.Render("creating account...") + "\n")
	case m.err != "":
		b.WriteString(" " + errorStyle.Render(m.err) + "\n")
	}
	return b.String()
}

func (m registerModel) helpKeys() string {
	return helpBar("tab", "next", "enter", "submit", "esc", "back to sign in", "ctrl+c", "quit")
}
