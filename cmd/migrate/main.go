// Package main runs database migrations.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/mesa-hq/mesa-server/internal/config"
	"github.com/mesa-hq/mesa-server/internal/migrate"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	if err := run(cmd); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(cmd string) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}

	db, err := sql.Open("pgx", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	switch cmd {
	case "up":
		return migrate.Up(ctx, db)
	case "down":
		return migrate.Down(ctx, db)
	case "status":
		return migrate.Status(ctx, db)
	default:
		return fmt.Errorf("unknown command %q (want up, down, or status)", cmd)
	}
}
