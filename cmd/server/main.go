// Command server runs the CrackBano API.
//
// Usage:
//
//	server [serve]   start the HTTP server (default)
//	server migrate   apply database migrations and exit
//	server sweep     delete orphaned questions once and exit
//
// Configuration comes from the environment and an optional .env file; see
// internal/config.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/YadavAkhileshh/CrackBano/internal/cleanup"
	"github.com/YadavAkhileshh/CrackBano/internal/config"
	"github.com/YadavAkhileshh/CrackBano/internal/logger"
	sqliteRepo "github.com/YadavAkhileshh/CrackBano/internal/repository/sqlite"
	"github.com/YadavAkhileshh/CrackBano/internal/server"
)

type command string

const (
	commandServe   command = "serve"
	commandMigrate command = "migrate"
	commandSweep   command = "sweep"
)

// parseCommand returns the subcommand in args. No argument means serve.
func parseCommand(args []string) (command, error) {
	if len(args) == 0 {
		return commandServe, nil
	}
	switch c := command(args[0]); c {
	case commandServe, commandMigrate, commandSweep:
		return c, nil
	default:
		return "", fmt.Errorf("unknown command %q (want serve, migrate or sweep)", args[0])
	}
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	cmd, err := parseCommand(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	if err := ensureDBDir(cfg.DBPath); err != nil {
		return err
	}

	switch cmd {
	case commandMigrate:
		return runMigrate(cfg, log)
	case commandSweep:
		return runSweep(cfg, log)
	default:
		return runServe(cfg, log)
	}
}

func runServe(cfg *config.Config, log *slog.Logger) error {
	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	return srv.Start()
}

// runMigrate relies on sqlite.New applying pending migrations on open.
func runMigrate(cfg *config.Config, log *slog.Logger) error {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := db.SchemaVersion(context.Background())
	if err != nil {
		return err
	}
	log.Info("database schema is up to date",
		slog.String("database", cfg.DBPath),
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

func runSweep(cfg *config.Config, log *slog.Logger) error {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	deleted, err := cleanup.NewOrphanSweep(db, log, nil).Run(ctx)
	if err != nil {
		return err
	}
	log.Info("sweep finished", slog.Int64("deleted", deleted))
	return nil
}

// ensureDBDir creates the parent directory of a file database.
func ensureDBDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating database directory %s: %w", dir, err)
	}
	return nil
}
