// Package bootstrap wires the process-wide runtime shared by the commands:
// logging, tracing, the database, Redis and the root admin account.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"
	"inkwell/internal/seed"
	"inkwell/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const rootAdminUsername = "inkwell_root"

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty database with the demo preset outside production.
	SeedDemo bool
}

// Runtime holds the initialized shared dependencies.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client

	shutdownTracing func(context.Context) error
}

// InitObservability configures the global logger and the tracer provider.
// The returned function flushes pending spans.
func InitObservability(cfg *config.Config) (func(context.Context) error, error) {
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)
	observability.SetGlobalLogger(middleware.Logger)

	return observability.InitTracing(observability.TracingConfig{
		ServiceName:    "inkwell-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
}

// InitRuntime initializes observability, connects to the database and Redis,
// ensures the root admin and optionally seeds demo data.
func InitRuntime(cfg *config.Config, opts Options) (*Runtime, error) {
	shutdownTracing, err := InitObservability(cfg)
	if err != nil {
		return nil, fmt.Errorf("tracing initialization failed: %w", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional; a nil client disables caching and revocation checks.
	cache.InitRedis(cfg.RedisURL)

	if err := ensureRootAdmin(cfg, db); err != nil {
		return nil, fmt.Errorf("failed to bootstrap root admin: %w", err)
	}

	if opts.SeedDemo && !cfg.IsProduction() {
		if err := seedIfEmpty(db); err != nil {
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	return &Runtime{DB: db, Redis: cache.GetClient(), shutdownTracing: shutdownTracing}, nil
}

// Close flushes tracing. Database and Redis handles are closed by the server.
func (r *Runtime) Close(ctx context.Context) error {
	if r == nil || r.shutdownTracing == nil {
		return nil
	}
	return r.shutdownTracing(ctx)
}

// ensureRootAdmin creates or promotes the account named by ROOT_ADMIN_EMAIL.
// Nothing happens unless both the email and the password are configured.
func ensureRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	email := strings.TrimSpace(strings.ToLower(cfg.RootAdminEmail))
	if email == "" || cfg.RootAdminPassword == "" {
		return nil
	}
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("ROOT_ADMIN_EMAIL: %w", err)
	}
	if err := validation.ValidatePassword(cfg.RootAdminPassword); err != nil {
		return fmt.Errorf("ROOT_ADMIN_PASSWORD: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.RootAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	var root models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				Username: rootAdminUsername,
				Email:    email,
				Password: string(hashedPassword),
				Role:     models.RoleAdmin,
				IsActive: true,
			}
			return tx.Create(&root).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&models.User{}).Where("id = ?", root.ID).Updates(map[string]any{
				"role":      models.RoleAdmin,
				"is_active": true,
			}).Error
		}
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(context.Background(), root.ID)
	middleware.Logger.Info("root admin ensured", slog.String("email", email))
	return nil
}

func seedIfEmpty(db *gorm.DB) error {
	var blogs int64
	if err := db.Model(&models.Blog{}).Count(&blogs).Error; err != nil {
		return err
	}
	if blogs > 0 {
		return nil
	}
	_, err := seed.NewSeeder(db, seed.DefaultOptions()).Run(context.Background())
	return err
}
