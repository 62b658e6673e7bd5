package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"keepnotes/internal/config"
	"keepnotes/internal/service"
	"keepnotes/internal/storage"
)

// app holds what every subcommand needs once the root command has run.
type app struct {
	dbPath  string
	verbose bool
	asJSON  bool

	db     *sql.DB
	notes  service.NoteService
	labels service.LabelService
}

// execute runs the command line in args and closes the database afterwards.
// Cobra skips post-run hooks when a command fails, so closing happens here.
func (a *app) execute(args []string, out, errOut io.Writer) error {
	defer a.close()

	cmd := a.rootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.Execute()
}

func (a *app) rootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "keepctl",
		Short:         "Inspect and maintain a keepnotes database",
		Long:          `keepctl works directly on the keepnotes SQLite database: list and search notes, and manage labels with the same cascades the API applies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "Path to the database (defaults to DB_PATH)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Output in JSON format")

	rootCmd.AddCommand(newLabelsCmd(a), newNotesCmd(a))
	return rootCmd
}

// open loads the configuration, opens the database and builds the services.
func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	level := slog.LevelWarn
	if a.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	path := a.dbPath
	if path == "" {
		if err := cfg.EnsureDataDir(); err != nil {
			return err
		}
		path = cfg.DBPath
	}

	db, err := storage.New(path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return fmt.Errorf("migrate database: %w", err)
	}
	a.db = db

	noteRepo := storage.NewNoteRepo(db)
	labelRepo := storage.NewLabelRepo(db)
	opts := []service.Option{
		service.WithCascadePolicy(cfg.CascadePolicy),
		service.WithWriteRetries(cfg.WriteRetries),
		service.WithLogger(logger),
	}
	a.notes = service.NewNoteService(noteRepo, labelRepo, opts...)
	a.labels = service.NewLabelService(labelRepo, noteRepo, opts...)

	slog.Debug("database opened", "path", path, "cascade_policy", cfg.CascadePolicy)
	return nil
}

// close releases the database opened by the root command, if any.
func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
		a.db = nil
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
