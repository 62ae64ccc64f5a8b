package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/intellidetect/dashboard/internal/release"
)

// versionCheckMsg carries the result of a background release check.
type versionCheckMsg struct {
	latestVersion string
	hasUpdate     bool
}

// Replaced in tests.
var releaseURL = release.LatestURL

// checkVersion looks for a newer dashboard release without blocking the UI.
// Returns nil for dev builds. Failures are silent.
func checkVersion(current string) tea.Cmd {
	if !release.Checkable(current) {
		return nil
	}
	url := releaseURL
	return func() tea.Msg {
		latest, err := release.Latest(context.Background(), url)
		if err != nil || !release.IsNewer(latest, current) {
			return versionCheckMsg{}
		}
		return versionCheckMsg{latestVersion: "v" + latest, hasUpdate: true}
	}
}
