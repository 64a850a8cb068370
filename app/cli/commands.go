// Package cli implements the volunvibe command line: the API server and
// the maintenance commands run against its store.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"volunvibe/app/config"
	"volunvibe/app/logging"
	"volunvibe/app/models"
	"volunvibe/app/repositories"
	"volunvibe/app/server"
	"volunvibe/app/services"

	"go.uber.org/zap"
)

// Version is reported by the version command.
const Version = "1.0.0"

// BackupDir receives backups written without an explicit file name.
const BackupDir = "data/backups"

// Runner executes commands. Its fields are swapped out in tests.
type Runner struct {
	Out        io.Writer
	In         io.Reader
	LoadConfig func() (*config.Config, error)
	Serve      func(cfg *config.Config) error
	NewLogger  func(cfg *config.Config) (*zap.Logger, error)
}

// NewRunner returns a Runner wired to the process streams and environment.
func NewRunner() *Runner {
	return &Runner{
		Out:        os.Stdout,
		In:         os.Stdin,
		LoadConfig: config.LoadConfig,
		Serve:      server.Run,
		NewLogger:  logging.NewLogger,
	}
}

// Run handles a command line without the program name and returns an exit code.
func (r *Runner) Run(args []string) int {
	if len(args) < 1 {
		r.printHelp()
		return 1
	}

	cmd := strings.ToLower(args[0])
	switch cmd {
	case "help":
		r.printHelp()
		return 0
	case "version":
		fmt.Fprintf(r.Out, "volunvibe version %s\n", Version)
		return 0
	case "serve":
		return r.serve()
	case "backup":
		return r.backup(args[1:])
	case "restore":
		return r.restore(args[1:])
	case "reconcile":
		return r.reconcile(args[1:])
	default:
		fmt.Fprintf(r.Out, "Unknown command: %s\n\n", args[0])
		r.printHelp()
		return 1
	}
}

func (r *Runner) printHelp() {
	helpText := `Usage: volunvibe <command> [options]

Commands:
  help                           Display this help message
  version                        Show version information
  serve                          Run the API server
  backup [file]                  Write a backup of the embedded database
  restore <file> [-y]            Replace the embedded database with a backup
  reconcile [-dry-run]           Remove requests whose post no longer exists
`
	fmt.Fprintln(r.Out, helpText)
}

func (r *Runner) setup() (*config.Config, *zap.Logger, bool) {
	cfg, err := r.LoadConfig()
	if err != nil {
		fmt.Fprintf(r.Out, "Failed to load configuration: %v\n", err)
		return nil, nil, false
	}
	logger, err := r.NewLogger(cfg)
	if err != nil {
		fmt.Fprintf(r.Out, "Failed to create logger: %v\n", err)
		return nil, nil, false
	}
	return cfg, logger, true
}

func (r *Runner) serve() int {
	cfg, logger, ok := r.setup()
	if !ok {
		return 1
	}
	defer logger.Sync()

	if err := r.Serve(cfg); err != nil {
		logger.Error("server exited", zap.Error(err))
		return 1
	}
	return 0
}

// openBadger opens the embedded store, refusing other drivers.
func (r *Runner) openBadger(command string) (*repositories.BadgerStore, *zap.Logger, bool) {
	cfg, logger, ok := r.setup()
	if !ok {
		return nil, nil, false
	}
	if cfg.StoreDriver != config.DriverBadger {
		fmt.Fprintf(r.Out, "Error: %s only supports the %s store (STORE_DRIVER=%s)\n", command, config.DriverBadger, cfg.StoreDriver)
		return nil, nil, false
	}
	if cfg.BadgerInMemory {
		fmt.Fprintf(r.Out, "Error: %s needs an on-disk database (BADGER_IN_MEMORY is set)\n", command)
		return nil, nil, false
	}

	store, err := server.OpenBadger(cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Out, "Failed to open database: %v\n", err)
		return nil, nil, false
	}
	return store, logger, true
}

// backup writes a full backup of the database.
func (r *Runner) backup(args []string) int {
	backupFile := filepath.Join(BackupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	if len(args) > 0 {
		backupFile = args[0]
	}

	store, logger, ok := r.openBadger("backup")
	if !ok {
		return 1
	}
	defer logger.Sync()
	defer store.Close()

	if err := os.MkdirAll(filepath.Dir(backupFile), 0755); err != nil {
		fmt.Fprintf(r.Out, "Failed to create backup directory: %v\n", err)
		return 1
	}
	f, err := os.Create(backupFile)
	if err != nil {
		fmt.Fprintf(r.Out, "Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := store.Backup(f); err != nil {
		fmt.Fprintf(r.Out, "Failed to backup database: %v\n", err)
		return 1
	}

	fmt.Fprintf(r.Out, "Database backed up successfully to %s\n", backupFile)
	return 0
}

// restore replaces the database contents with a backup.
func (r *Runner) restore(args []string) int {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	fs.SetOutput(r.Out)
	yes := fs.Bool("y", false, "replace existing data without asking")
	if err := fs.Parse(args); err != nil {
		return 1
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(r.Out, "Error: backup file path required for restore")
		return 1
	}
	backupFile := fs.Arg(0)
	// Flags may follow the file name.
	if err := fs.Parse(fs.Args()[1:]); err != nil {
		return 1
	}

	fi, err := os.Stat(backupFile)
	if err != nil {
		fmt.Fprintf(r.Out, "Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Fprintf(r.Out, "Backup file is empty: %s\n", backupFile)
		return 1
	}

	store, logger, ok := r.openBadger("restore")
	if !ok {
		return 1
	}
	defer logger.Sync()
	defer store.Close()

	ctx := context.Background()
	if !*yes {
		posts, err := store.Posts().List(ctx, models.PostFilter{})
		if err != nil {
			fmt.Fprintf(r.Out, "Failed to read database: %v\n", err)
			return 1
		}
		requests, err := store.Requests().List(ctx, models.RequestFilter{})
		if err != nil {
			fmt.Fprintf(r.Out, "Failed to read database: %v\n", err)
			return 1
		}
		if len(posts)+len(requests) > 0 {
			fmt.Fprintf(r.Out, "Existing database holds %d posts and %d requests. Do you want to replace it? [y/N] ", len(posts), len(requests))
			if !r.confirm() {
				fmt.Fprintln(r.Out, "Operation cancelled")
				return 1
			}
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Fprintf(r.Out, "Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if err := store.Restore(f); err != nil {
		fmt.Fprintf(r.Out, "Failed to restore database: %v\n", err)
		return 1
	}

	fmt.Fprintln(r.Out, "Database restored successfully")
	return 0
}

func (r *Runner) confirm() bool {
	line, _ := bufio.NewReader(r.In).ReadString('\n')
	response := strings.TrimSpace(line)
	return response == "y" || response == "Y"
}

// reconcile removes requests left behind by deleted posts.
func (r *Runner) reconcile(args []string) int {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(r.Out)
	dryRun := fs.Bool("dry-run", false, "report orphaned requests without removing them")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	cfg, logger, ok := r.setup()
	if !ok {
		return 1
	}
	defer logger.Sync()

	ctx := context.Background()
	store, err := server.OpenStore(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(r.Out, "Failed to open store: %v\n", err)
		return 1
	}
	defer store.Close()

	report, err := services.NewReconciler(store, logger).Run(ctx, *dryRun)
	if err != nil {
		fmt.Fprintf(r.Out, "Reconcile failed: %v\n", err)
		return 1
	}

	if *asJSON {
		enc := json.NewEncoder(r.Out)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		return 0
	}

	fmt.Fprintf(r.Out, "Scanned %d requests, %d orphaned, %d removed\n", report.Scanned, report.Orphaned, report.Removed)
	for _, id := range report.OrphanIDs {
		fmt.Fprintf(r.Out, "  orphan %s\n", id)
	}
	if *dryRun && report.Orphaned > 0 {
		fmt.Fprintln(r.Out, "Dry run: nothing was removed")
	}
	return 0
}
