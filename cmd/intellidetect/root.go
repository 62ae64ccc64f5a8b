package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/intellidetect/dashboard/internal/config"
	"github.com/intellidetect/dashboard/internal/logging"
	"github.com/intellidetect/dashboard/internal/router"
	"github.com/intellidetect/dashboard/pkg/client"
	"github.com/intellidetect/dashboard/pkg/session"
)

// cli holds the state shared by every command. It is populated by the root
// command's PersistentPreRunE, after flags are parsed.
type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// flags
	configPath  string
	accidentURL string
	obstacleURL string
	jsonOutput  bool
	ephemeral   bool
	logLevel    string
	startPath   string

	cfg     *config.Config
	store   session.Store
	log     zerolog.Logger
	logFile io.Closer

	// httpClient, when set, carries API requests in place of the default.
	httpClient *http.Client
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{in: in, out: out, errOut: errOut, log: zerolog.Nop()}
}

func newRootCmd(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:   "intellidetect",
		Short: "Terminal dashboard for accident and obstacle detection",
		Long: `intellidetect is a terminal dashboard for the IntelliDetect accident and
obstacle monitoring services. Run it without arguments to open the interactive
dashboard, or use the subcommands for scripting.

Environment Variables:
  INTELLIDETECT_API_ACCIDENT_URL  Accident service URL
  INTELLIDETECT_API_OBSTACLE_URL  Obstacle service URL
  INTELLIDETECT_CONFIG            Config file path`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.logFile != nil {
				return c.logFile.Close()
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default: ./intellidetect.yaml or ~/.intellidetect/config.yaml)")
	pf.StringVar(&c.accidentURL, "accident-api-url", "", "accident service URL (overrides config)")
	pf.StringVar(&c.obstacleURL, "obstacle-api-url", "", "obstacle service URL (overrides config)")
	pf.BoolVar(&c.jsonOutput, "json", false, "output JSON instead of human-readable text")
	pf.BoolVar(&c.ephemeral, "ephemeral", false, "keep the session in memory only")
	pf.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.Flags().StringVar(&c.startPath, "open", "/", "dashboard location to open, e.g. /accidents/42")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newRegisterCmd(c),
		newWhoamiCmd(c),
		newAccountCmd(c),
		newAccidentsCmd(c),
		newObstaclesCmd(c),
		newDetectionsCmd(c),
		newMockServerCmd(c),
		newVersionCmd(c),
	)
	return root
}

// setup loads configuration, applies flag overrides, and opens the session store.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("accident-api-url") {
		cfg.API.AccidentURL = c.accidentURL
	}
	if flags.Changed("obstacle-api-url") {
		cfg.API.ObstacleURL = c.obstacleURL
	}
	if flags.Changed("ephemeral") {
		cfg.Session.Ephemeral = c.ephemeral
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	c.cfg = cfg

	// The dashboard owns the terminal, so it logs to a file. Everything else
	// logs to stderr.
	out := c.errOut
	if cmd == cmd.Root() && cfg.Log.File != "" {
		f, err := logging.OpenFile(cfg.Log.File)
		if err != nil {
			return err
		}
		c.logFile = f
		out = f
	}
	c.log = logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: out})

	if cfg.Session.Ephemeral {
		c.store = session.NewMemoryStore()
		return nil
	}
	fs, err := session.OpenFileStore(cfg.Session.Path)
	if err != nil {
		return err
	}
	c.store = fs
	return nil
}

// services builds API clients that report expired sessions through nav.
func (c *cli) services(nav client.Navigator) *client.Services {
	opts := []client.Option{
		client.WithHTTPClient(c.httpClient),
		client.WithTimeout(c.cfg.API.Timeout),
		client.WithLogger(c.log),
	}
	if nav != nil {
		opts = append(opts, client.WithNavigator(nav))
	}
	return client.NewServices(c.cfg.API.AccidentURL, c.cfg.API.ObstacleURL, c.store, opts...)
}

// commandServices is services for one-shot commands. A 401 prints a hint
// instead of switching views.
func (c *cli) commandServices() *client.Services {
	return c.services(expiredNotice{w: c.errOut})
}

// newRouter builds the dashboard router over the session store.
func (c *cli) newRouter() (*router.Router, error) {
	return router.New(router.DefaultRoutes(), c.store, router.WithLogger(c.log))
}

// requireSession fails fast when no credential is stored.
func (c *cli) requireSession() error {
	if !session.LoggedIn(c.store) {
		return errNotLoggedIn
	}
	return nil
}

var errNotLoggedIn = errors.New("not logged in, run `intellidetect login` first")

// expiredNotice is the navigator for one-shot commands.
type expiredNotice struct {
	w io.Writer
}

func (n expiredNotice) RedirectToLogin() {
	fmt.Fprintln(n.w, "Session expired. Run `intellidetect login` to sign in again.") //nolint:errcheck
}

// deadline bounds a whole command, a few requests at most.
func (c *cli) deadline() time.Duration {
	return 3 * c.cfg.API.Timeout
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
