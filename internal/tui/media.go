package tui

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/intellidetect/dashboard/internal/browser"
)

// Replaced in tests.
var (
	openURL  = browser.Open
	copyText = clipboard.WriteAll
)

// mediaResultMsg reports the outcome of an open or copy action.
type mediaResultMsg struct {
	action string // "open" or "copy"
	err    error
}

func openCmd(url string) tea.Cmd {
	return func() tea.Msg {
		return mediaResultMsg{action: "open", err: openURL(url)}
	}
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return mediaResultMsg{action: "copy", err: copyText(text)}
	}
}

// mediaStatus renders a mediaResultMsg for the status line.
func mediaStatus(msg mediaResultMsg) string {
	if msg.err != nil {
		return errorStyle.Render(msg.action + " failed: " + msg.err.Error())
	}
	if msg.action == "copy" {
		return okStyle.Render("copied!")
	}
	return okStyle.Render("opened!")
}
