package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/intellidetect/dashboard/internal/tui"
)

// runTUI opens the interactive dashboard. Expired sessions are handled by the
// router, which swaps the mounted view for the login screen.
func (c *cli) runTUI(ctx context.Context) error {
	r, err := c.newRouter()
	if err != nil {
		return err
	}
	app := tui.NewApp(tui.Options{
		Services:  c.services(r),
		Router:    r,
		Version:   version,
		StartPath: c.startPath,
	})
	c.log.Info().Str("version", version).Str("start", c.startPath).Msg("dashboard started")

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx), tea.WithInput(c.in), tea.WithOutput(c.out))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}
