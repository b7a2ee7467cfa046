package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/evanschultz/agenda/internal/config"
	"github.com/evanschultz/agenda/internal/platform"
	"github.com/evanschultz/agenda/internal/tui"
	"github.com/spf13/cobra"
)

// version is stamped at build time.
var version = "dev"

// program is the part of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the terminal program for one model.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root := newRootCommand(os.Stdout, os.Stderr)
	err := fang.Execute(ctx, root, fang.WithVersion(version))
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// run executes one command line without fang's styled output.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// cli holds the persistent flags shared by every command.
type cli struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	dbPath     string
	serverURL  string
	appName    string
	devMode    bool
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "agenda",
		Short: "Tasks, appointments and a kanban board in the terminal",
		Example: strings.TrimSpace(`
  # Open the terminal UI over the local database
  agenda

  # Serve the REST API and MCP endpoint
  agenda serve --bind 127.0.0.1:8080

  # Point the terminal UI at a running server
  agenda --server http://127.0.0.1:8080

  # Export completed tasks of the last 90 days
  agenda export history --period 90

  # Back up and restore everything
  agenda export snapshot --out agenda.json
  agenda import --in agenda.json
`),
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runTUI(cmd.Context())
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	appName := "agenda"
	if envApp := strings.TrimSpace(os.Getenv("AGENDA_APP_NAME")); envApp != "" {
		appName = envApp
	}
	devMode := version == "dev"
	if envDev, ok := parseBoolEnv("AGENDA_DEV_MODE"); ok {
		devMode = envDev
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "path to config TOML")
	flags.StringVar(&c.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&c.serverURL, "server", "", "base URL of a running agenda server (empty starts an embedded one)")
	flags.StringVar(&c.appName, "app", appName, "application name for config/data path resolution")
	flags.BoolVar(&c.devMode, "dev", devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		c.serveCommand(),
		c.seedCommand(),
		c.exportCommand(),
		c.importCommand(),
		c.pathsCommand(),
	)
	return root
}

// runtimeEnv is the resolved configuration of one command run.
type runtimeEnv struct {
	paths      platform.Paths
	configPath string
	cfg        config.Config
	logger     *runtimeLogger
}

// close releases the log sinks.
func (e *runtimeEnv) close(stderr io.Writer) {
	if closeErr := e.logger.Close(); closeErr != nil && e.logger.shouldLogToSink(e.logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

func (c *cli) resolvePaths() (platform.Paths, error) {
	return platform.DefaultPathsWithOptions(platform.Options{
		AppName: c.appName,
		DevMode: c.devMode,
	})
}

// prepare resolves paths, config and logging for command. A muted console
// keeps runtime logs in the dev-file sink only.
func (c *cli) prepare(command string, muteConsole bool) (*runtimeEnv, error) {
	paths, err := c.resolvePaths()
	if err != nil {
		return nil, err
	}

	configPath := strings.TrimSpace(c.configPath)
	if configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("AGENDA_CONFIG")); envPath != "" {
			configPath = envPath
		} else {
			configPath = paths.ConfigPath
		}
	}
	dbPath := strings.TrimSpace(c.dbPath)
	dbOverridden := dbPath != ""
	if !dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("AGENDA_DB_PATH")); envPath != "" {
			dbPath = envPath
			dbOverridden = true
		} else {
			dbPath = paths.DBPath
		}
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}
	serverURL := strings.TrimSpace(c.serverURL)
	if serverURL == "" {
		serverURL = strings.TrimSpace(os.Getenv("AGENDA_SERVER"))
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("server override: %w", err)
		}
	}

	logger, err := newRuntimeLogger(c.stderr, c.appName, c.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if muteConsole {
		logger.SetConsoleEnabled(false)
	}

	logger.Info("startup configuration resolved", "app", c.appName, "dev_mode", c.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	logger.Info("configuration loaded", "config_path", configPath, "db_path", cfg.Database.Path, "server_url", cfg.Server.URL, "log_level", cfg.Logging.Level)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}
	return &runtimeEnv{
		paths:      paths,
		configPath: configPath,
		cfg:        cfg,
		logger:     logger,
	}, nil
}

// runTUI starts the terminal UI against the configured or embedded backend.
func (c *cli) runTUI(ctx context.Context) error {
	env, err := c.prepare("tui", true)
	if err != nil {
		return err
	}
	defer env.close(c.stderr)

	svc, stop, err := openTUIBackend(ctx, env)
	if err != nil {
		env.logger.Error("backend start failed", "err", err)
		return err
	}
	defer stop()

	m := tui.NewModel(svc, tuiOptions(env)...)
	env.logger.Info("starting tui program loop")
	if _, err := programFactory(m).Run(); err != nil {
		env.logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	env.logger.Info("command flow complete", "command", "tui")
	return nil
}

// tuiOptions maps the [ui] config section onto model options.
func tuiOptions(env *runtimeEnv) []tui.Option {
	ui := env.cfg.UI
	return []tui.Option{
		tui.WithPerPage(ui.PerPage),
		tui.WithKanbanFetchCap(ui.KanbanFetchCap),
		tui.WithHistoryPeriodDays(ui.HistoryPeriodDays),
		tui.WithNoticeTTL(time.Duration(ui.NoticeSeconds) * time.Second),
		tui.WithLocale(ui.Locale),
		tui.WithExportDir(env.paths.ExportDir),
	}
}

// parseBoolEnv reads a boolean env var; ok is false when unset or malformed.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
