// Command ideas asks the configured model for project ideas and prints them
// as JSON, falling back to the built-in ideas like the server does.
//
//	go run ./cmd/dev/ideas -tags "Go,IoT" -difficulty intermediate
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/internal/config"
	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/ollama"
	"github.com/garnizeh/campus/pkg/repository"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config YAML file")
		tags       = flag.String("tags", "Machine Learning,React", "Comma-separated interest tags")
		difficulty = flag.String("difficulty", "intermediate", "beginner, intermediate or advanced")
		mentors    = flag.Bool("mentors", false, "Also rank a sample mentor pool")
		listModels = flag.Bool("models", false, "List the models available in Ollama and exit")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg.Ollama = cfg.Ollama.WithDefaults()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := context.Background()

	if *listModels {
		client, err := ollama.NewDefaultClient(cfg.Ollama)
		if err != nil {
			log.Fatal(err)
		}
		defer client.Close()
		ms, err := client.ListModels(ctx)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(ms)
		return
	}

	d := models.Difficulty(*difficulty)
	if !d.Valid() {
		log.Fatalf("invalid difficulty %q", *difficulty)
	}
	tagList := repository.CleanList(strings.Split(*tags, ","))

	advisor, closeAI, err := ai.NewAdvisorFromConfig(ctx, cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer closeAI()

	ideas, src := advisor.ProjectIdeas(ctx, tagList, d)
	printJSON(map[string]any{"source": src, "ideas": ideas})

	if *mentors {
		matches, src := advisor.MentorMatches(ctx, tagList, samplePool())
		printJSON(map[string]any{"source": src, "mentors": matches})
	}
}

func samplePool() []models.User {
	return []models.User{
		{ID: 1, FullName: "Dr. Priya Sharma", Role: models.RoleFaculty, Expertise: []string{"Machine Learning", "Data Science", "Python"}, Rating: 4.9},
		{ID: 2, FullName: "Rahul Mehta", Role: models.RoleMentor, Expertise: []string{"React", "Node.js", "Web Development"}, Rating: 4.7},
		{ID: 3, FullName: "Anita Desai", Role: models.RoleMentor, Expertise: []string{"IoT", "Embedded Systems"}, Rating: 4.5},
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatal(err)
	}
}
