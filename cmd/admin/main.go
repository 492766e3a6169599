// Command admin provides account management utilities for Inkwell operators.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/events"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"gorm.io/gorm"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <email>   - Promote user to admin")
	fmt.Println("  go run ./cmd/admin demote <email>    - Demote admin to user")
	fmt.Println("  go run ./cmd/admin list-admins       - List all admins")
	fmt.Println("  go run ./cmd/admin migrate           - Apply schema migrations")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Role changes must evict cached user records.
	if rdb := cache.InitRedis(cfg.RedisURL); rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	users := service.NewUserService(repository.NewUserRepository(db), events.NewPublisher(nil), cfg.JWTSecret, cfg.JWTExpiry())
	ctx := context.Background()

	switch command := os.Args[1]; command {
	case "promote", "demote":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: go run ./cmd/admin %s <email>\n", command)
			os.Exit(1)
		}
		role := models.RoleAdmin
		if command == "demote" {
			role = models.RoleUser
		}
		setRole(ctx, users, os.Args[2], role)

	case "list-admins":
		listAdmins(db)

	case "migrate":
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
		fmt.Println("Schema is up to date")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		usage()
		os.Exit(1)
	}
}

func setRole(ctx context.Context, users *service.UserService, email string, role models.Role) {
	user, err := users.SetRole(ctx, email, role)
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) && appErr.Code == models.CodeNotFound {
			fmt.Printf("User with email %s not found\n", email)
			os.Exit(1)
		}
		log.Fatalf("Failed to change role: %v", err)
	}
	fmt.Printf("%s (ID: %d) is now %s\n", user.Username, user.ID, user.Role)
}

func listAdmins(db *gorm.DB) {
	var admins []models.User
	if err := db.Where("role = ?", models.RoleAdmin).Order("id").Find(&admins).Error; err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("Current admins:")
	for _, admin := range admins {
		status := "active"
		if !admin.IsActive {
			status = "inactive"
		}
		fmt.Printf("ID: %d | Username: %s | Email: %s | %s\n", admin.ID, admin.Username, admin.Email, status)
	}
}
