package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strconv"

	auth "github.com/ASANIYAN/fin-flow-backend"
	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	db, err := openDatabase(envOr("DATABASE_URL", "file:finflow.db?cache=shared&_fk=1"))
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := bootstrapSchema(context.Background(), db); err != nil {
		log.Fatalf("bootstrap schema: %v", err)
	}

	repo := auth.NewRepositoryManager(db)
	if err := repo.Validate(); err != nil {
		log.Fatalf("repository: %v", err)
	}

	cfg := auth.NewConfigFromEnv()
	if cfg.GetSigningKey() == "" {
		log.Fatal("JWT_SECRET is required")
	}

	provider := auth.NewAccountProvider(repo.Accounts()).
		WithVerifiedEmailPolicy(true)

	auther := auth.NewAuthenticator(provider, cfg)

	notifier := buildNotifier()
	frontendURL := envOr("FRONTEND_URL", "http://localhost:3000")

	controller := auth.NewAuthController(
		auth.WithControllerRepo(repo),
		auth.WithControllerAuther(auther, cfg),
		auth.WithControllerNotifier(notifier, frontendURL),
	)

	app := fiber.New(fiber.Config{
		AppName: "fin-flow-backend",
	})

	api := app.Group("/api/auth")
	auth.RegisterAuthRoutes(api, controller)

	addr := ":" + envOr("PORT", "8080")
	log.Printf("listening on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func openDatabase(dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}
	if err := sqldb.Ping(); err != nil {
		return nil, err
	}
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func bootstrapSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*auth.Account)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func buildNotifier() auth.Notifier {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return auth.NewLogNotifier(nil)
	}

	port := 587
	if raw := os.Getenv("SMTP_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}

	smtp := auth.NewSMTPNotifier(
		host,
		port,
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASS"),
		envOr("SMTP_FROM", os.Getenv("SMTP_USER")),
	)

	return auth.NewFallbackNotifier(smtp, auth.NewLogNotifier(nil))
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
