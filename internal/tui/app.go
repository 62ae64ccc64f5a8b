package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/intellidetect/dashboard/internal/router"
	"github.com/intellidetect/dashboard/pkg/client"
	"github.com/intellidetect/dashboard/pkg/session"
)

// navigateMsg asks the App to push a path through the router.
type navigateMsg struct {
	path   string
	notice string
}

func navigateTo(path, notice string) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{path: path, notice: notice}
	}
}

// Options configures the App.
type Options struct {
	Services *client.Services
	Router   *router.Router
	// Version is the running build; "dev" disables the update check.
	Version string
	// StartPath is the first location pushed; defaults to "/".
	StartPath string
}

// App is the root Bubbletea model. It mounts one view per router location and
// re-syncs with the router after every message, so a navigation triggered
// elsewhere (a 401 from any request) replaces the mounted view.
type App struct {
	services *client.Services
	router   *router.Router
	store    session.Store
	version  string

	loc    router.Location
	view   router.View
	mounts int

	login     loginModel
	register  registerModel
	dashboard dashboardModel
	accidents accidentListModel
	accident  accidentDetailModel
	obstacles obstacleListModel
	obstacle  obstacleDetailModel
	account   accountModel

	helpOpen bool
	notice   string
	newer    string
	width    int
	height   int
	frame    int
	initCmd  tea.Cmd
}

// NewApp creates the TUI and performs the initial navigation.
func NewApp(opts Options) App {
	a := App{
		services: opts.Services,
		router:   opts.Router,
		store:    opts.Services.Accidents.Store(),
		version:  opts.Version,
	}
	start := opts.StartPath
	if start == "" {
		start = "/"
	}
	if _, _, err := a.router.Push(start); err != nil {
		a.notice = err.Error()
		a.router.Push(router.PathDashboard) //nolint:errcheck // the default table always has it
	}
	a, a.initCmd = a.syncRoute()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.initCmd, shimmerTickCmd(), checkVersion(a.version))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	a, cmd := a.update(msg)
	a, mount := a.syncRoute()
	return a, tea.Batch(cmd, mount)
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a.forward(a.bodySize())

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case versionCheckMsg:
		if msg.hasUpdate {
			a.newer = msg.latestVersion
		}
		return a, nil

	case navigateMsg:
		if _, _, err := a.router.Push(msg.path); err != nil {
			a.notice = err.Error()
			return a, nil
		}
		a.notice = msg.notice
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch msg.String() {
			case "h", "esc", "?":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.isEditing() {
			a.notice = ""
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "h", "?":
				a.helpOpen = true
				return a, nil
			case "1":
				return a, a.goTo(router.PathDashboard)
			case "2":
				return a, a.goTo("/accidents")
			case "3":
				return a, a.goTo("/obstacles")
			case "4":
				if u := session.CachedUser(a.store); u != nil {
					return a, a.goTo("/user/" + strconv.FormatInt(u.ID, 10))
				}
				a.notice = "profile unavailable, sign in again"
				return a, nil
			}
		}
	}
	return a.forward(msg)
}

// goTo navigates unless the location is already mounted.
func (a App) goTo(path string) tea.Cmd {
	if a.loc.Path == path {
		return nil
	}
	return navigateTo(path, "")
}

// forward hands msg to the mounted view.
func (a App) forward(msg tea.Msg) (App, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case router.ViewLogin:
		a.login, cmd = a.login.Update(msg)
	case router.ViewRegister:
		a.register, cmd = a.register.Update(msg)
	case router.ViewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case router.ViewAccidents:
		a.accidents, cmd = a.accidents.Update(msg)
	case router.ViewAccident:
		a.accident, cmd = a.accident.Update(msg)
	case router.ViewObstacles:
		a.obstacles, cmd = a.obstacles.Update(msg)
	case router.ViewObstacle:
		a.obstacle, cmd = a.obstacle.Update(msg)
	case router.ViewUser:
		a.account, cmd = a.account.Update(msg)
	}
	return a, cmd
}

// syncRoute mounts a fresh view when the router location changed.
func (a App) syncRoute() (App, tea.Cmd) {
	loc := a.router.Current()
	if loc.Path == a.loc.Path && loc.View == a.view {
		return a, nil
	}
	a.loc = loc
	a.view = loc.View
	a.mounts++

	var cmd tea.Cmd
	switch loc.View {
	case router.ViewLogin:
		a.login = newLoginModel(a.services)
	case router.ViewRegister:
		a.register = newRegisterModel(a.services)
	case router.ViewDashboard:
		a.dashboard = newDashboardModel(a.services, a.mounts)
		cmd = a.dashboard.Init()
	case router.ViewAccidents:
		a.accidents = newAccidentListModel(a.services)
		cmd = a.accidents.Init()
	case router.ViewAccident:
		a.accident = newAccidentDetailModel(a.services, loc.Param("id"))
		cmd = a.accident.Init()
	case router.ViewObstacles:
		a.obstacles = newObstacleListModel(a.services)
		cmd = a.obstacles.Init()
	case router.ViewObstacle:
		a.obstacle = newObstacleDetailModel(a.services, loc.Param("id"))
		cmd = a.obstacle.Init()
	case router.ViewUser:
		a.account = newAccountModel(a.services, loc.Param("id"))
		cmd = a.account.Init()
	}
	a, _ = a.forward(a.bodySize())
	return a, cmd
}

// Chrome: header(2) + tabs(1) + blank(1) + help(1)
const chromeHeight = 5

func (a App) bodySize() tea.WindowSizeMsg {
	return tea.WindowSizeMsg{Width: a.width, Height: a.height - chromeHeight}
}

func (a App) isEditing() bool {
	switch a.view {
	case router.ViewLogin, router.ViewRegister:
		return true
	case router.ViewAccident:
		return a.accident.editing
	case router.ViewObstacle:
		return a.obstacle.editing
	case router.ViewUser:
		return a.account.editing()
	}
	return false
}

func (a App) public() bool {
	return a.view == router.ViewLogin || a.view == router.ViewRegister
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	header := center(logo, a.width)

	var status []string
	if u := session.CachedUser(a.store); u != nil && !a.public() {
		status = append(status, "signed in as "+u.Username)
	}
	if a.newer != "" {
		status = append(status, warnStyle.Render(a.newer+" available"))
	}
	header += "\n" + center(metaStyle.Render(strings.Join(status, " . ")), a.width)

	var tabBar string
	if !a.public() {
		tabBar = a.renderTabs()
	}

	var body, help string
	switch a.view {
	case router.ViewLogin:
		body, help = a.login.View(), a.login.helpKeys()
	case router.ViewRegister:
		body, help = a.register.View(), a.register.helpKeys()
	case router.ViewDashboard:
		body, help = a.dashboard.View(), helpBar("1-4", "tabs", "r", "refresh", "h", "help", "q", "quit")
	case router.ViewAccidents:
		body, help = a.accidents.View(), a.accidents.helpKeys()
	case router.ViewAccident:
		body, help = a.accident.View(), a.accident.helpKeys()
	case router.ViewObstacles:
		body, help = a.obstacles.View(), a.obstacles.helpKeys()
	case router.ViewObstacle:
		body, help = a.obstacle.View(), a.obstacle.helpKeys()
	case router.ViewUser:
		body, help = a.account.View(), a.account.helpKeys()
	}

	if a.helpOpen {
		body = helpView()
		help = helpBar("esc", "close")
	}
	if a.notice != "" {
		help = " " + accentStyle.Render(a.notice)
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-chromeHeight), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n\n%s", header, tabBar, body, help)
}

func (a App) renderTabs() string {
	tabs := []struct {
		key   string
		name  string
		views []router.View
	}{
		{"1", "Dashboard", []router.View{router.ViewDashboard}},
		{"2", "Accidents", []router.View{router.ViewAccidents, router.ViewAccident}},
		{"3", "Obstacles", []router.View{router.ViewObstacles, router.ViewObstacle}},
		{"4", "Account", []router.View{router.ViewUser}},
	}

	colWidth := a.width / len(tabs)
	var bar strings.Builder
	for _, t := range tabs {
		active := false
		for _, v := range t.views {
			active = active || v == a.view
		}
		var label string
		if active {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		w := lipgloss.Width(label)
		left := max((colWidth-w)/2, 0)
		right := max(colWidth-w-left, 0)
		bar.WriteString(strings.Repeat(" ", left) + label + strings.Repeat(" ", right))
	}
	return bar.String()
}

// center pads s on the left so it sits in the middle of width.
func center(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}
