package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/invoicecapture-backend/pkg/config"
	"github.com/angelmondragon/invoicecapture-backend/pkg/db"
	"github.com/angelmondragon/invoicecapture-backend/pkg/logger"
	"github.com/angelmondragon/invoicecapture-backend/pkg/migrate"
)

type dbCommand func(ctx context.Context, logg *logger.Logger, m *migrate.Migrator) error

func up(ctx context.Context, logg *logger.Logger, m *migrate.Migrator) error {
	applied, err := m.Up(ctx)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "applied", applied), "migrations applied")
	return nil
}

func down(ctx context.Context, logg *logger.Logger, m *migrate.Migrator) error {
	version, err := m.Down(ctx)
	if err != nil {
		return err
	}
	logg.Info(logg.WithField(ctx, "version", version), "migration rolled back")
	return nil
}

func status(ctx context.Context, _ *logger.Logger, m *migrate.Migrator) error {
	rows, err := m.Status(ctx)
	if err != nil {
		return err
	}
	for _, row := range rows {
		state := "pending"
		if row.Applied {
			state = "applied"
		}
		fmt.Printf("%d\t%-8s\t%s\n", row.Version, state, row.Path)
	}
	return nil
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the filesystem
	switch *cmd {
	case "create":
		if *name == "" {
			exitf("missing -name for create\n")
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			exitf("failed to create migration: %v\n", err)
		}
		fmt.Println("created migration:", path)
		return
	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			exitf("migration validation failed: %v\n", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	commands := map[string]dbCommand{
		"up":     up,
		"down":   down,
		"status": status,
		"version": func(ctx context.Context, _ *logger.Logger, m *migrate.Migrator) error {
			return m.To(ctx, *version)
		},
	}
	run, ok := commands[*cmd]
	if !ok {
		exitf("unknown -cmd value: %s\n", *cmd)
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": *cmd,
		"dir": *dir,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	m, err := migrate.NewFromDir(sqlDB, *dir)
	requireResource(ctx, logg, "migrations", err)

	logg.Info(ctx, "migrate ready")
	if err := run(ctx, logg, m); err != nil {
		logg.Error(ctx, "migration command failed", err)
		dbClient.Close()
		os.Exit(1)
	}
	logg.Info(ctx, "migration command completed")
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
