package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	serveradapter "github.com/vidiannovantry/datatracker/internal/adapters/server"
	servercommon "github.com/vidiannovantry/datatracker/internal/adapters/server/common"
	"github.com/vidiannovantry/datatracker/internal/adapters/storage/sqlite"
	"github.com/vidiannovantry/datatracker/internal/app"
	"github.com/vidiannovantry/datatracker/internal/config"
	"github.com/vidiannovantry/datatracker/internal/domain"
	"github.com/vidiannovantry/datatracker/internal/platform"
	"github.com/vidiannovantry/datatracker/internal/report"
	"github.com/vidiannovantry/datatracker/internal/tui"
)

// version is stamped at build time.
var version = "dev"

// program is the subset of tea.Program the tui command drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests replace it.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := fang.Execute(ctx, newRootCommand(os.Stdout, os.Stderr), fang.WithVersion(version)); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree against args without fang's styled output.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// rootOptions holds persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand builds the command tree. Running the root command starts the TUI.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	opts := &rootOptions{appName: platform.DefaultAppName}
	defaultDevMode := version == "dev"
	if envDev, ok := platform.DevModeFromEnv(os.Getenv); ok {
		defaultDevMode = envDev
	}

	var tuiParty string
	root := &cobra.Command{
		Use:           "datatracker",
		Short:         "Search IETF documents and browse responsible AD workload",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr, tuiParty)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config TOML")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	root.PersistentFlags().StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	root.PersistentFlags().BoolVar(&opts.devMode, "dev", defaultDevMode, "use dev mode paths (<app>-dev)")
	root.Flags().StringVar(&tuiParty, "ad", "", "open the documents of one AD name key")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newServeCommand(opts, stderr),
		newImportCommand(opts, stdout, stderr),
		newExportCommand(opts, stdout, stderr),
		newWorkloadCommand(opts, stdout, stderr),
		newADDocsCommand(opts, stdout, stderr),
		newSearchCommand(opts, stdout, stderr),
		newTUICommand(opts, stderr),
	)
	return root
}

// runtimeEnv holds the opened store, service, and logger for one command.
type runtimeEnv struct {
	cfg      config.Config
	paths    platform.Paths
	logger   *runtimeLogger
	repo     *sqlite.Repository
	svc      *app.Service
	registry *prometheus.Registry
}

// openRuntime resolves paths and config, configures logging, and opens the store.
func openRuntime(opts *rootOptions, stderr io.Writer, command string) (*runtimeEnv, error) {
	paths, envOverrides, err := platform.Resolve(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	}, os.Getenv)
	if err != nil {
		return nil, err
	}
	configPath := strings.TrimSpace(opts.configPath)
	if configPath == "" {
		configPath = paths.ConfigPath
	}
	dbPath := strings.TrimSpace(opts.dbPath)
	dbOverridden := dbPath != "" || envOverrides.DB
	if dbPath == "" {
		dbPath = paths.DBPath
	}

	cfg, err := config.Load(configPath, config.Default(dbPath))
	if err != nil {
		return nil, fmt.Errorf("load config %q: %w", configPath, err)
	}
	if dbOverridden {
		cfg.Database.Path = dbPath
	}

	logger, err := newRuntimeLogger(stderr, opts.appName, opts.devMode, cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", configPath, "data_dir", paths.DataDir, "db_path", cfg.Database.Path)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	logger.Info("opening sqlite repository", "db_path", cfg.Database.Path)
	repo, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", cfg.Database.Path, "err", err)
		_ = logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc := app.NewService(repo, uuid.NewString, nil, app.ServiceConfig{
		StalenessWindow: cfg.Dashboard.StalenessWindow(),
		MaxResults:      cfg.Search.MaxResults,
		MaxADResults:    cfg.Dashboard.MaxADResults,
		CacheTTL:        cfg.Search.CacheTTL(),
		SlowCacheTTL:    cfg.Search.SlowCacheTTL(),
	}).WithLogger(logger).WithMetrics(app.NewMetrics(registry))
	logger.Debug("application service initialized", "max_results", cfg.Search.MaxResults, "staleness_days", cfg.Dashboard.StalenessDays)

	return &runtimeEnv{
		cfg:      cfg,
		paths:    paths,
		logger:   logger,
		repo:     repo,
		svc:      svc,
		registry: registry,
	}, nil
}

// Close releases the store and log sinks.
func (e *runtimeEnv) Close(stderr io.Writer) {
	if e == nil {
		return
	}
	if err := e.repo.Close(); err != nil {
		e.logger.Warn("sqlite close failed", "db_path", e.cfg.Database.Path, "err", err)
	}
	if err := e.logger.Close(); err != nil && e.logger.consoleEnabled {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// withRuntime opens the runtime, runs fn, and logs the command flow.
func withRuntime(opts *rootOptions, stderr io.Writer, command string, fn func(*runtimeEnv) error) error {
	env, err := openRuntime(opts, stderr, command)
	if err != nil {
		return err
	}
	defer env.Close(stderr)
	env.logger.Info("command flow start", "command", command)
	if err := fn(env); err != nil {
		env.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	env.logger.Info("command flow complete", "command", command)
	return nil
}

func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			paths, _, err := platform.Resolve(platform.Options{AppName: opts.appName, DevMode: opts.devMode}, os.Getenv)
			if err != nil {
				return err
			}
			if opts.configPath != "" {
				paths.ConfigPath = opts.configPath
			}
			if opts.dbPath != "" {
				paths.DBPath = opts.dbPath
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", paths.DBPath)
			return nil
		},
	}
}

func newServeCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var httpBind, apiEndpoint, mcpEndpoint string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API, MCP tools, and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(opts, stderr, "serve", func(env *runtimeEnv) error {
				cfg := serveradapter.Config{
					HTTPBind:        firstNonEmpty(httpBind, env.cfg.Server.HTTPBind),
					APIEndpoint:     firstNonEmpty(apiEndpoint, env.cfg.Server.APIEndpoint),
					MCPEndpoint:     firstNonEmpty(mcpEndpoint, env.cfg.Server.MCPEndpoint),
					MetricsEndpoint: env.cfg.Server.MetricsEndpoint,
					ServerName:      opts.appName,
					ServerVersion:   version,
				}
				env.logger.Info("serving", "http_bind", cfg.HTTPBind, "api", cfg.APIEndpoint, "mcp", cfg.MCPEndpoint)
				return serveradapter.Run(cmd.Context(), cfg, serveradapter.Dependencies{
					Service: servercommon.NewAppServiceAdapter(env.svc),
					Ready:   env.svc.Ready,
					Metrics: env.registry,
				})
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "HTTP bind address (overrides config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "JSON API base path (overrides config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP endpoint path (overrides config)")
	return cmd
}

func newImportCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var inPath, format string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a JSON or YAML corpus snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return fmt.Errorf("--in is required")
			}
			snapFormat, err := snapshotFormat(format, inPath)
			if err != nil {
				return err
			}
			return withRuntime(opts, stderr, "import", func(env *runtimeEnv) error {
				f, err := os.Open(inPath)
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer func() { _ = f.Close() }()
				snap, err := app.DecodeSnapshot(f, snapFormat)
				if err != nil {
					return err
				}
				stats, err := env.svc.ImportSnapshot(cmd.Context(), snap)
				if err != nil {
					return fmt.Errorf("import snapshot: %w", err)
				}
				_, _ = fmt.Fprintf(stdout, "imported %d persons, %d roles, %d groups, %d states, %d documents, %d events\n",
					stats.Persons, stats.Roles, stats.Groups, stats.States, stats.Documents, stats.Events)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot file")
	cmd.Flags().StringVar(&format, "format", "", "snapshot format: json or yaml (default from extension)")
	return cmd
}

func newExportCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var outPath, format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the corpus as a JSON or YAML snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snapFormat, err := snapshotFormat(format, outPath)
			if err != nil {
				return err
			}
			return withRuntime(opts, stderr, "export", func(env *runtimeEnv) error {
				snap, err := env.svc.ExportSnapshot(cmd.Context())
				if err != nil {
					return fmt.Errorf("export snapshot: %w", err)
				}
				if outPath == "-" {
					return app.EncodeSnapshot(stdout, snap, snapFormat)
				}
				if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
					return fmt.Errorf("create export output dir: %w", err)
				}
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := app.EncodeSnapshot(f, snap, snapFormat); err != nil {
					_ = f.Close()
					return err
				}
				return f.Close()
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "snapshot format: json or yaml (default from extension)")
	return cmd
}

func newWorkloadCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "workload",
		Short: "Print per-AD document counts by review bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(opts, stderr, "workload", func(env *runtimeEnv) error {
				wl, err := env.svc.ADWorkload(cmd.Context())
				if err != nil {
					return err
				}
				return report.WriteWorkload(stdout, wl)
			})
		},
	}
}

func newADDocsCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var raw bool
	var style string
	var width int
	cmd := &cobra.Command{
		Use:   "ad-docs <name-key>",
		Short: "Print one AD's documents in dashboard order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(opts, stderr, "ad-docs", func(env *runtimeEnv) error {
				docs, err := env.svc.DocsForAD(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				md := report.DocumentsMarkdown(docs)
				if raw {
					_, err := io.WriteString(stdout, md)
					return err
				}
				rendered, err := report.RenderMarkdown(md, style, width)
				if err != nil {
					return err
				}
				_, err = io.WriteString(stdout, rendered)
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal rendering")
	cmd.Flags().StringVar(&style, "style", "", "glamour style (dark, light, notty, ...)")
	cmd.Flags().IntVar(&width, "width", 100, "wrap width")
	return cmd
}

func newSearchCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var q app.SearchQuery
	var by, sort string
	var docTypes []string
	cmd := &cobra.Command{
		Use:   "search [name]",
		Short: "Search documents by name and one optional field filter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				q.Name = args[0]
			}
			q.By = app.SearchBy(by)
			q.Sort = sort
			for _, dt := range docTypes {
				q.DocTypes = append(q.DocTypes, domain.DocType(dt))
			}
			return withRuntime(opts, stderr, "search", func(env *runtimeEnv) error {
				result, err := env.svc.Search(cmd.Context(), q)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(stdout, report.SearchTable(result.Rows))
				suffix := ""
				if result.Truncated {
					suffix = " (truncated)"
				}
				_, _ = fmt.Fprintf(stdout, "%d documents%s\n", result.Total, suffix)
				return nil
			})
		},
	}
	flags := cmd.Flags()
	flags.BoolVar(&q.RFCs, "rfcs", false, "include RFCs")
	flags.BoolVar(&q.ActiveDrafts, "active", true, "include active drafts")
	flags.BoolVar(&q.OldDrafts, "old", false, "include expired, replaced, and withdrawn drafts")
	flags.StringVar(&by, "by", "", "field filter: author, group, area, ad, state, irtfstate, stream")
	flags.StringVar(&q.Author, "author", "", "author name or email fragment")
	flags.StringVar(&q.Group, "group", "", "group acronym")
	flags.StringVar(&q.Area, "area", "", "area acronym")
	flags.StringVar(&q.AD, "ad", "", "responsible person id")
	flags.StringVar(&q.State, "state", "", "IESG state slug")
	flags.StringVar(&q.Substate, "substate", "", "IESG substate tag, or 0 for none")
	flags.StringVar(&q.IRTFState, "irtfstate", "", "IRTF state slug")
	flags.StringVar(&q.Stream, "stream", "", "stream slug")
	flags.StringSliceVar(&docTypes, "doctype", nil, "non-draft document types to include")
	flags.StringVar(&sort, "sort", "", "sort field (document, title, date, status, ad), - prefix for descending")
	return cmd
}

func newTUICommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var party string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the AD workload dashboard in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr, party)
		},
	}
	cmd.Flags().StringVar(&party, "ad", "", "open the documents of one AD name key")
	return cmd
}

// runTUI starts the dashboard browser with console logging muted.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer, party string) error {
	return withRuntime(opts, stderr, "tui", func(env *runtimeEnv) error {
		if err := env.svc.Ready(ctx); err != nil {
			return err
		}
		env.logger.SetConsoleEnabled(false)
		defer env.logger.SetConsoleEnabled(true)
		m := tui.NewModel(env.svc, tui.WithLogger(env.logger), tui.WithInitialParty(party))
		if _, err := programFactory(m).Run(); err != nil {
			return fmt.Errorf("run tui program: %w", err)
		}
		return nil
	})
}

// snapshotFormat resolves an explicit format or infers one from the file path.
func snapshotFormat(explicit, path string) (app.SnapshotFormat, error) {
	switch strings.ToLower(strings.TrimSpace(explicit)) {
	case "":
		return app.SnapshotFormatForPath(path), nil
	case "json":
		return app.SnapshotJSON, nil
	case "yaml", "yml":
		return app.SnapshotYAML, nil
	default:
		return "", fmt.Errorf("unknown snapshot format %q", explicit)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
