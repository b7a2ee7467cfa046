package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanschultz/agenda/internal/adapters/server"
	"github.com/evanschultz/agenda/internal/adapters/server/common"
	"github.com/evanschultz/agenda/internal/app"
	"github.com/evanschultz/agenda/internal/domain"
	"github.com/evanschultz/agenda/internal/viewstate"
	"github.com/spf13/cobra"
)

// now is the CLI clock.
var now = time.Now

func (c *cli) serveCommand() *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API and MCP endpoint over the local database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.prepare("serve", false)
			if err != nil {
				return err
			}
			defer env.close(c.stderr)

			svc, closeRepo, err := openLocalService(env)
			if err != nil {
				return err
			}
			defer closeRepo()

			addr := strings.TrimSpace(bind)
			if addr == "" {
				addr = env.cfg.HTTP.Bind
			}
			env.logger.Info("command flow start", "command", "serve", "bind", addr)
			err = serveRunner(cmd.Context(), serverConfig(env, addr), server.Dependencies{
				Service: common.NewAppServiceAdapter(svc),
				Logger:  env.logger.requestLogger(),
			})
			if err != nil {
				env.logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (default from [http].bind)")
	return cmd
}

func (c *cli) seedCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample tasks and appointments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.prepare("seed", false)
			if err != nil {
				return err
			}
			defer env.close(c.stderr)

			svc, closeBackend, err := openBackend(env)
			if err != nil {
				return err
			}
			defer closeBackend()

			env.logger.Info("command flow start", "command", "seed")
			tasks, appts, err := seed(cmd.Context(), svc, now(), force)
			if err != nil {
				env.logger.Error("command flow failed", "command", "seed", "err", err)
				return fmt.Errorf("run seed command: %w", err)
			}
			_, _ = fmt.Fprintf(c.stdout, "seeded %d tasks and %d appointments\n", tasks, appts)
			env.logger.Info("command flow complete", "command", "seed", "tasks", tasks, "appointments", appts)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "seed even when the database already has tasks")
	return cmd
}

func (c *cli) exportCommand() *cobra.Command {
	export := &cobra.Command{
		Use:   "export",
		Short: "Export completed-task CSV or a full JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var (
		outPath string
		filter  viewstate.HistoryFilter
	)
	history := &cobra.Command{
		Use:   "history",
		Short: "Export completed tasks as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.prepare("export", false)
			if err != nil {
				return err
			}
			defer env.close(c.stderr)

			if !cmd.Flags().Changed("period") {
				filter.PeriodDays = env.cfg.UI.HistoryPeriodDays
			}
			if filter.PeriodDays < 0 {
				return fmt.Errorf("--period must be >= 0: %d", filter.PeriodDays)
			}

			svc, closeBackend, err := openBackend(env)
			if err != nil {
				return err
			}
			defer closeBackend()

			env.logger.Info("command flow start", "command", "export", "period_days", filter.PeriodDays)
			path, count, err := exportHistory(cmd.Context(), svc, filter, outPath, env.paths.ExportDir, c.stdout)
			if err != nil {
				env.logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			if path != "" {
				_, _ = fmt.Fprintf(c.stdout, "exported %d tasks to %s\n", count, path)
			}
			env.logger.Info("command flow complete", "command", "export", "tasks", count, "path", path)
			return nil
		},
	}
	history.Flags().StringVar(&outPath, "out", "", "output file path ('-' for stdout, default <export_dir>/tarefas_concluidas_<date>.csv)")
	history.Flags().IntVar(&filter.PeriodDays, "period", viewstate.DefaultHistoryPeriodDays, "days to look back (0 keeps every date)")
	history.Flags().StringVar(&filter.Category, "category", "", "category substring")
	history.Flags().StringVar(&filter.Keyword, "keyword", "", "keyword substring over title, description and keyword")

	var snapshotOut string
	snapshot := &cobra.Command{
		Use:   "snapshot",
		Short: "Export every task and appointment as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := c.prepare("export", false)
			if err != nil {
				return err
			}
			defer env.close(c.stderr)

			svc, closeRepo, err := openLocalService(env)
			if err != nil {
				return err
			}
			defer closeRepo()

			env.logger.Info("command flow start", "command", "export snapshot")
			if err := exportSnapshot(cmd.Context(), svc, snapshotOut, c.stdout); err != nil {
				env.logger.Error("command flow failed", "command", "export snapshot", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "export snapshot")
			return nil
		},
	}
	snapshot.Flags().StringVar(&snapshotOut, "out", "-", "output file path ('-' for stdout)")

	export.AddCommand(history, snapshot)
	return export
}

func (c *cli) importCommand() *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Upsert tasks and appointments from a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return errors.New("--in is required")
			}
			env, err := c.prepare("import", false)
			if err != nil {
				return err
			}
			defer env.close(c.stderr)

			svc, closeRepo, err := openLocalService(env)
			if err != nil {
				return err
			}
			defer closeRepo()

			env.logger.Info("command flow start", "command", "import", "in", inPath)
			if err := importSnapshot(cmd.Context(), svc, inPath); err != nil {
				env.logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("run import command: %w", err)
			}
			env.logger.Info("command flow complete", "command", "import")
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	return cmd
}

func (c *cli) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			paths, err := c.resolvePaths()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(c.stdout, "app: %s\n", c.appName)
			_, _ = fmt.Fprintf(c.stdout, "dev_mode: %t\n", c.devMode)
			_, _ = fmt.Fprintf(c.stdout, "config: %s\n", paths.ConfigPath)
			_, _ = fmt.Fprintf(c.stdout, "data_dir: %s\n", paths.DataDir)
			_, _ = fmt.Fprintf(c.stdout, "db: %s\n", paths.DBPath)
			_, _ = fmt.Fprintf(c.stdout, "export_dir: %s\n", paths.ExportDir)
			return nil
		},
	}
}

// exportSnapshot writes the indented snapshot JSON to outPath or stdout for "-".
func exportSnapshot(ctx context.Context, svc *app.Service, outPath string, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	outPath = strings.TrimSpace(outPath)
	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// importSnapshot reads one snapshot file and upserts its records.
func importSnapshot(ctx context.Context, svc *app.Service, inPath string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// historySource lists completed tasks.
type historySource interface {
	ListCompletedTasks(context.Context) ([]domain.Task, error)
}

// exportHistory writes the filtered history CSV to outPath, stdout for "-",
// or a dated file under exportDir when outPath is empty. It returns the
// written file path (empty for stdout) and the row count.
func exportHistory(ctx context.Context, svc historySource, filter viewstate.HistoryFilter, outPath, exportDir string, stdout io.Writer) (string, int, error) {
	tasks, err := svc.ListCompletedTasks(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("list completed tasks: %w", err)
	}
	at := now()
	rows := viewstate.FilterHistory(tasks, filter, at)

	outPath = strings.TrimSpace(outPath)
	if outPath == "-" {
		if err := viewstate.WriteHistoryCSV(stdout, rows); err != nil {
			return "", 0, err
		}
		return "", len(rows), nil
	}
	if outPath == "" {
		if strings.TrimSpace(exportDir) == "" {
			return "", 0, errors.New("export dir is not configured; pass --out")
		}
		outPath = filepath.Join(exportDir, viewstate.HistoryFileName(at))
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", 0, fmt.Errorf("create export output dir: %w", err)
	}
	file, err := os.Create(outPath)
	if err != nil {
		return "", 0, fmt.Errorf("create export file: %w", err)
	}
	if err := viewstate.WriteHistoryCSV(file, rows); err != nil {
		_ = file.Close()
		return "", 0, err
	}
	if err := file.Close(); err != nil {
		return "", 0, fmt.Errorf("close export file: %w", err)
	}
	return outPath, len(rows), nil
}
