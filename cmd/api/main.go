package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/mehtakaran9/librarium-backend/api/routes"
	"github.com/mehtakaran9/librarium-backend/internal/admin"
	"github.com/mehtakaran9/librarium-backend/internal/auth"
	"github.com/mehtakaran9/librarium-backend/internal/books"
	"github.com/mehtakaran9/librarium-backend/internal/fines"
	"github.com/mehtakaran9/librarium-backend/internal/loans"
	"github.com/mehtakaran9/librarium-backend/internal/members"
	"github.com/mehtakaran9/librarium-backend/internal/reservations"
	"github.com/mehtakaran9/librarium-backend/internal/reviews"
	"github.com/mehtakaran9/librarium-backend/pkg/config"
	"github.com/mehtakaran9/librarium-backend/pkg/db"
	"github.com/mehtakaran9/librarium-backend/pkg/logger"
	"github.com/mehtakaran9/librarium-backend/pkg/migrate"
	"github.com/mehtakaran9/librarium-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gdb := dbClient.DB()
	membersRepo := members.NewRepository(gdb)
	booksRepo := books.NewRepository(gdb)
	loansRepo := loans.NewRepository(gdb)
	reservationsRepo := reservations.NewRepository(gdb)
	finesRepo := fines.NewRepository(gdb)
	reviewsRepo := reviews.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		Members:     membersRepo,
		JWTConfig:   cfg.JWT,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	membersService, err := members.NewService(membersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create members service", err)
		os.Exit(1)
	}

	booksService, err := books.NewService(booksRepo, dbClient, loansRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create books service", err)
		os.Exit(1)
	}

	loansService, err := loans.NewService(loansRepo, dbClient, membersRepo, booksRepo, reservationsRepo, cfg.Circulation, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create loans service", err)
		os.Exit(1)
	}

	reservationsService, err := reservations.NewService(reservationsRepo, membersRepo, booksRepo, loansRepo, cfg.Circulation)
	if err != nil {
		logg.Error(context.Background(), "failed to create reservations service", err)
		os.Exit(1)
	}

	finesService, err := fines.NewService(finesRepo, loansRepo, membersRepo, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create fines service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviewsRepo, membersRepo, booksRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	adminService, err := admin.NewService(admin.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create admin service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, routes.Services{
			Auth:         authService,
			Books:        booksService,
			Members:      membersService,
			Loans:        loansService,
			Reservations: reservationsService,
			Fines:        finesService,
			Reviews:      reviewsService,
			Admin:        adminService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
