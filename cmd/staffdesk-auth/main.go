package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/staffdesk/auth"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg := loadConfig()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DBDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	provider := auth.NewUserProvider(repo.Users())
	auther := auth.NewAuthenticator(provider, cfg)

	resets := auth.NewResetTokenManager(
		repo.PasswordResets(),
		auth.WithResetTokenTTL(cfg.GetResetTokenTTL()),
	)

	mail := auth.NewMailDispatcher(nil, nil)

	controller := auth.NewAuthController(
		auth.WithAuthenticator(auther),
		auth.WithFlowHandlers(
			auth.NewRegisterUserHandler(repo).WithMailDispatcher(mail),
			auth.NewInitializePasswordResetHandler(repo, resets).WithMailDispatcher(mail),
			auth.NewFinalizePasswordResetHandler(repo, resets),
			auth.NewChangePasswordHandler(repo),
		),
	)

	app := fiber.New()
	auth.RegisterAuthRoutes(app, controller, auther.TokenService())

	go sweepResetTokens(resets)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// sweepResetTokens periodically removes stale reset tokens. Purely
// housekeeping; consumption rejects stale tokens regardless.
func sweepResetTokens(resets *auth.ResetTokenManager) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := resets.PurgeExpired(ctx); err != nil {
			log.Printf("reset token sweep: %v", err)
		}
		cancel()
	}
}
