package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/erp/cashbook/internal/infrastructure/config"
	"github.com/erp/cashbook/internal/infrastructure/logger"
	"github.com/erp/cashbook/internal/infrastructure/migration"
	"github.com/erp/cashbook/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Migrations directory (default: the migrations compiled into this binary)")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	var source fs.FS = migrations.FS
	if migrationsPath != "" {
		source = os.DirFS(migrationsPath)
	}

	// create and list never touch the database
	switch command {
	case "create":
		if migrationsPath == "" {
			migrationsPath = "migrations"
		}
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Int("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		names, err := migration.ListMigrations(source)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver == config.DriverSQLite {
		log.Fatal("SQLite databases are created from the models at server start; migrations apply to PostgreSQL only")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database", zap.Error(err))
	}

	var m *migration.Migrator
	if migrationsPath != "" {
		m, err = migration.New(db, migrationsPath, log)
	} else {
		m, err = migration.NewEmbedded(db, source, log)
	}
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer m.Close()

	switch command {
	case "up":
		err = m.Up()

	case "down":
		err = m.Down()

	case "steps":
		n, convErr := strconv.Atoi(argAt(args, 1, "Usage: migrate steps <n>", log))
		if convErr != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		err = m.Steps(n)

	case "goto":
		v, convErr := strconv.ParseUint(argAt(args, 1, "Usage: migrate goto <version>", log), 10, 32)
		if convErr != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		err = m.GoTo(uint(v))

	case "version":
		version, dirty, verr := m.Version()
		if verr != nil {
			log.Fatal("Failed to get version", zap.Error(verr))
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))

	case "force":
		v, convErr := strconv.Atoi(argAt(args, 1, "Usage: migrate force <version>", log))
		if convErr != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		err = m.Force(v)

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func argAt(args []string, i int, usage string, log *zap.Logger) string {
	if len(args) <= i {
		log.Fatal("Missing argument. " + usage)
	}
	return args[i]
}

func printUsage() {
	fmt.Fprint(os.Stderr, `Cashbook database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  steps <n>             Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show the current migration version
  force <version>       Set the version without migrating (clears a dirty state)
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations

Flags:
  -path string          Migrations directory (default: embedded migrations)
  -log-level string     debug, info, warn, error (default: info)

The database connection is read from config.toml and CASHBOOK_DATABASE_* variables.
`)
}
