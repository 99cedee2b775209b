// seed inserts a development admin account for local testing. Run via go run ./cmd/seed.
// Idempotent: skips the insert if the admin email already exists. Refuses to run in production.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"eventflow/auth-service/internal/config"
	"eventflow/auth-service/internal/db"
	"eventflow/auth-service/internal/logging"
	rolerepo "eventflow/auth-service/internal/role/repository"
	"eventflow/auth-service/internal/security"
	"eventflow/auth-service/internal/user/domain"
	userrepo "eventflow/auth-service/internal/user/repository"
)

const (
	devAdminEmail = "admin@eventflow.local"
	devPassword   = "Passw0rd!"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.IsProduction() {
		logger.Fatal("seed must not run with APP_ENV=production")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("db", zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := userrepo.NewPostgresRepository(conn)
	existing, err := users.GetByEmail(ctx, devAdminEmail)
	if err != nil {
		logger.Fatal("seed check", zap.Error(err))
	}
	if existing != nil {
		logger.Info("seed already applied; skipping", zap.String("email", devAdminEmail))
		return
	}

	role, err := rolerepo.NewPostgresRepository(conn).GetByName(ctx, cfg.AdminRole)
	if err != nil {
		logger.Fatal("get admin role", zap.Error(err))
	}
	if role == nil {
		logger.Fatal("admin role not found; run migrations first", zap.String("role", cfg.AdminRole))
	}

	hash, err := security.NewHasher(cfg.BcryptCost).Hash([]byte(devPassword))
	if err != nil {
		logger.Fatal("hash password", zap.Error(err))
	}

	now := time.Now().UTC()
	admin := &domain.User{
		ID:           uuid.NewString(),
		Email:        devAdminEmail,
		PasswordHash: hash,
		FirstName:    "Dev",
		LastName:     "Admin",
		RoleID:       role.ID,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		logger.Fatal("create dev admin", zap.Error(err))
	}
	logger.Info("seeded dev admin", zap.String("email", devAdminEmail), zap.String("id", admin.ID))
}
