// Command migrate manages the shop's PostgreSQL schema.
//
// By default it applies the migrations compiled into the binary; pass -dir
// to work from a checkout instead (required for "create").
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/jewelry/backend/internal/infrastructure/config"
	"github.com/jewelry/backend/internal/infrastructure/logger"
	"github.com/jewelry/backend/internal/infrastructure/migration"
	"github.com/jewelry/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// schemaCommand runs against an open migrator with the remaining arguments.
type schemaCommand struct {
	usage string
	run   func(m *migration.Migrator, log *zap.Logger, args []string) error
}

var schemaCommands = map[string]schemaCommand{
	"up":   {"up", func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() }},
	"down": {"down", func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() }},
	"step": {"step <n>", func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := intArg(args, "step count")
		if err != nil {
			return err
		}
		return m.Steps(n)
	}},
	"goto": {"goto <version>", func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		if v < 1 {
			return errors.New("version must be positive")
		}
		return m.GoTo(uint(v))
	}},
	"force": {"force <version>", func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		v, err := intArg(args, "version")
		if err != nil {
			return err
		}
		return m.Force(v)
	}},
	"version": {"version", func(m *migration.Migrator, log *zap.Logger, _ []string) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if v == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Schema version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	}},
	"drop": {"drop -confirm", func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		if !slices.Contains(args, "-confirm") && !slices.Contains(args, "--confirm") {
			return errors.New("refusing to drop the schema without -confirm")
		}
		return m.Drop()
	}},
}

func main() {
	dir := flag.String("dir", "", "Migrations directory; empty uses the embedded set")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	log, err := logger.New(logger.Config{Level: *logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(args[0], args[1:], *dir, log); err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func run(command string, args []string, dir string, log *zap.Logger) error {
	switch command {
	case "create":
		if dir == "" {
			return errors.New("create needs -dir pointing at the migrations checkout")
		}
		if len(args) == 0 {
			return errors.New("usage: migrate -dir <path> create <name> [description]")
		}
		var description string
		if len(args) > 1 {
			description = args[1]
		}
		mf, err := migration.CreateMigration(dir, args[0], description)
		if err != nil {
			return err
		}
		log.Info("Migration created",
			zap.String("version", mf.Version),
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath))
		return nil

	case "list":
		names, err := listMigrations(dir)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	}

	cmd, ok := schemaCommands[command]
	if !ok {
		usage()
		return fmt.Errorf("unknown command %q", command)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := openMigrator(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()

	log.Info("Running migration command",
		zap.String("command", command),
		zap.String("database", cfg.Database.DBName),
		zap.Bool("embedded", dir == ""))
	return cmd.run(m, log, args)
}

func openMigrator(db *sql.DB, dir string, log *zap.Logger) (*migration.Migrator, error) {
	if dir == "" {
		return migration.NewFromFS(db, migrations.FS, log)
	}
	return migration.New(db, dir, log)
}

func listMigrations(dir string) ([]string, error) {
	if dir == "" {
		return migration.ListMigrationsFS(migrations.FS)
	}
	return migration.ListMigrations(dir)
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s required", what)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return n, nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [-dir path] [-log-level level] <command> [args]")
	fmt.Fprintln(os.Stderr, "\nCommands:")
	names := make([]string, 0, len(schemaCommands))
	for name := range schemaCommands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintln(os.Stderr, "  "+schemaCommands[name].usage)
	}
	fmt.Fprintln(os.Stderr, "  create <name> [description]   (needs -dir)")
	fmt.Fprintln(os.Stderr, "  list")
}
