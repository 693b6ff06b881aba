package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	dbfs "github.com/garnizeh/campus/db"
	"github.com/garnizeh/campus/internal/config"
	"github.com/garnizeh/campus/internal/db"
	"github.com/garnizeh/campus/internal/repository/sqlite"
	"github.com/garnizeh/campus/internal/seed"
)

func main() {
	configPath := flag.String("config", "", "Path to config YAML file")
	withSeed := flag.Bool("seed", false, "Load the demo users and projects")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	database, err := db.New(ctx, cfg.DatabasePath, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	if *withSeed {
		res, err := seed.Sample(ctx, sqlite.New(database, nil))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Seeded %d users and %d projects.\n", res.Users, res.Projects)
	}

	fmt.Println("Database initialized successfully.")
}
