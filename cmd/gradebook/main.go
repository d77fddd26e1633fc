// Package main provides the CLI entrypoint for gradebook.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/gradebook/internal/config"
	"github.com/verte-zerg/gradebook/internal/model"
	"github.com/verte-zerg/gradebook/internal/report"
	"github.com/verte-zerg/gradebook/internal/session"
	"github.com/verte-zerg/gradebook/internal/store"
	"github.com/verte-zerg/gradebook/internal/viewer"
)

const (
	defaultOutputDir = "."
	defaultLogName   = "alunos.csv"
)

var (
	outputDir string
	logName   string
	dbPath    string
	verbose   bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gradebook",
		Short:         "Register students and generate report cards",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE:          runSessionCmd,
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite archive of registrations (disabled when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&outputDir, "out-dir", defaultOutputDir, "directory for report cards and the CSV log")
	rootCmd.Flags().StringVar(&logName, "log", defaultLogName, "CSV log file name")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newViewCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

func runSessionCmd(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "out-dir", &outputDir, fileCfg.Output.Dir)
	applyStringConfig(cmd, "log", &logName, fileCfg.Output.Log)
	applyStringConfig(cmd, "db", &dbPath, fileCfg.History.DB)

	opts := model.Options{
		OutputDir: outputDir,
		LogName:   logName,
		DBPath:    dbPath,
	}
	if err := validateOptions(opts); err != nil {
		return err
	}

	var archive session.Archive
	if opts.DBPath != "" {
		st, err := store.Open(opts.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logger.Error("failed to close db", "err", cerr)
			}
		}()
		archive = st
		logger.Debug("archive enabled", "path", opts.DBPath)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess := session.New(opts, cmd.InOrStdin(), cmd.OutOrStdout(), archive, logger)
	if err := sess.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("interrupted", "registered", len(sess.Students()))
			return nil
		}
		return err
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <report-file>",
		Short: "Page through a generated report card",
		Args:  cobra.ExactArgs(1),
		RunE:  runViewCmd,
	}
}

func runViewCmd(_ *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}
	m := viewer.NewModel(filepath.Base(path), string(data))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List archived registrations",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	logger := newLogger(cmd.ErrOrStderr())

	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "db", &dbPath, fileCfg.History.DB)
	if dbPath == "" {
		return fmt.Errorf("no archive configured: pass --db or set [history] db in %s", config.DefaultConfigPath())
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logger.Error("failed to close db", "err", cerr)
		}
	}()

	regs, err := st.ListRegistrations(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list registrations: %w", err)
	}
	return writeHistory(cmd.OutOrStdout(), regs)
}

func writeHistory(w io.Writer, regs []model.Registration) error {
	if len(regs) == 0 {
		_, err := fmt.Fprintln(w, "No registrations found.")
		return err
	}
	for _, line := range report.RenderRoster(regs) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# gradebook configuration
# Uncomment a value to enable it. CLI flags override config values.

[output]
# dir = %q                 # Directory for report cards and the CSV log
# log = %q        # CSV log file name (removed at every start)

[history]
# db = %q   # SQLite archive of registrations
`,
		defaultOutputDir,
		defaultLogName,
		config.DefaultDBPath(),
	)
}

func validateOptions(opts model.Options) error {
	if strings.TrimSpace(opts.OutputDir) == "" {
		return fmt.Errorf("--out-dir must not be empty")
	}
	if strings.TrimSpace(opts.LogName) == "" {
		return fmt.Errorf("--log must not be empty")
	}
	if filepath.Base(opts.LogName) != opts.LogName {
		return fmt.Errorf("--log must be a file name, not a path")
	}
	return nil
}
