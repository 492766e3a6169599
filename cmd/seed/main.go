// Command seed populates the database with demo users, blogs and comments.
package main

import (
	"context"
	"flag"
	"log"
	"sort"
	"strings"

	"inkwell/internal/bootstrap"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/seed"
)

func main() {
	preset := flag.String("preset", "demo", "Built-in preset name ("+presetNames()+")")
	file := flag.String("file", "", "Path to a YAML preset; overrides -preset")
	users := flag.Int("users", 0, "Override the number of users")
	blogs := flag.Int("blogs", 0, "Override the number of blogs")
	clean := flag.Bool("clean", false, "Delete existing content before seeding")
	dryRun := flag.Bool("dry-run", false, "Generate data without writing it")
	flag.Parse()

	opts, err := resolveOptions(*preset, *file)
	if err != nil {
		log.Fatalf("Invalid preset: %v", err)
	}
	if *users > 0 {
		opts.Users = *users
	}
	if *blogs > 0 {
		opts.Blogs = *blogs
	}
	opts.DryRun = *dryRun

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	if _, err := bootstrap.InitObservability(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	s := seed.NewSeeder(db, opts)
	if *clean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(context.Background())
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Cached listings and analytics predate the new rows.
	if !opts.DryRun {
		if rdb := cache.InitRedis(cfg.RedisURL); rdb != nil {
			cache.InvalidateAll(context.Background())
			_ = rdb.Close()
		}
	}

	log.Printf("Seeded %d users, %d blogs, %d comments, %d likes, %d reports",
		res.Users, res.Blogs, res.Comments, res.Likes, res.Reports)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}

func resolveOptions(preset, file string) (seed.Options, error) {
	if file != "" {
		return seed.LoadPreset(file)
	}
	build, ok := seed.Presets[preset]
	if !ok {
		return seed.Options{}, &unknownPresetError{name: preset}
	}
	return build(), nil
}

type unknownPresetError struct{ name string }

func (e *unknownPresetError) Error() string {
	return "unknown preset " + e.name + " (available: " + presetNames() + ")"
}

func presetNames() string {
	names := make([]string, 0, len(seed.Presets))
	for name := range seed.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
