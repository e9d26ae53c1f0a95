package main

import (
	"context"
	"encoding/base64"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"rms-backend/internal/config"
	"rms-backend/internal/db"
	"rms-backend/internal/handler"
	"rms-backend/internal/repository"
	"rms-backend/internal/server"
	"rms-backend/internal/service"
	"rms-backend/internal/worker"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect database", "err", err)
		os.Exit(1)
	}
	defer pg.Close()

	// Firebase Auth (optional)
	var firebaseAuth *auth.Client
	if cfg.FirebaseProjectID != "" {
		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, firebaseOptions(cfg)...)
		if err != nil {
			logger.Error("failed to init firebase app", "err", err)
			os.Exit(1)
		}
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Error("failed to init firebase auth", "err", err)
			os.Exit(1)
		}
		firebaseAuth = client
	}

	// repositories
	userRepo := repository.UserRepository{DB: pg}
	branchRepo := repository.BranchRepository{DB: pg}
	clientRepo := repository.ClientRepository{DB: pg}
	orderRepo := repository.JobOrderRepository{DB: pg}
	expenseRepo := repository.ExpenseRepository{DB: pg}
	settingsRepo := repository.SettingsRepository{DB: pg}
	logRepo := repository.ActivityLogRepository{DB: pg}
	dashboardRepo := repository.DashboardRepository{DB: pg}

	if err := branchRepo.SeedDefaults(ctx); err != nil {
		logger.Error("failed to seed branches", "err", err)
		os.Exit(1)
	}

	// services
	authSvc := service.AuthService{Config: cfg, Users: userRepo, Logger: logger, FirebaseAuth: firebaseAuth}
	reportSvc := service.ReportService{Orders: orderRepo, Expenses: expenseRepo, Logger: logger}

	// handlers
	healthHandler := handler.HealthHandler{DB: pg}
	authHandler := handler.AuthHandler{Service: &authSvc}
	orderHandler := handler.JobOrderHandler{Repo: orderRepo, Logs: logRepo}
	clientHandler := handler.ClientHandler{Repo: clientRepo}
	expenseHandler := handler.ExpenseHandler{Repo: expenseRepo}
	branchHandler := handler.BranchHandler{Repo: branchRepo}
	dashboardHandler := handler.DashboardHandler{Repo: dashboardRepo, Reports: reportSvc}
	reportHandler := handler.ReportHandler{Orders: orderRepo, Reports: reportSvc}
	settingsHandler := handler.SettingsHandler{Repo: settingsRepo}
	logHandler := handler.ActivityLogHandler{Repo: logRepo}
	docsHandler := handler.DocsHandler{OpenAPIPath: cfg.OpenAPIPath}

	router := server.NewRouter(cfg, logger, healthHandler, authHandler, orderHandler, clientHandler, expenseHandler, branchHandler, dashboardHandler, reportHandler, settingsHandler, logHandler, docsHandler)

	snapshots := &worker.SnapshotWorker{
		Reports:  reportSvc,
		Logs:     logRepo,
		Schedule: cfg.SnapshotSchedule,
		Logger:   logger,
	}
	if err := snapshots.Start(ctx); err != nil {
		logger.Error("failed to start snapshot worker", "err", err)
		os.Exit(1)
	}
	defer snapshots.Stop()

	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func firebaseOptions(cfg config.Config) []option.ClientOption {
	if cfg.FirebaseCredFile == "" {
		return nil
	}

	cred := cfg.FirebaseCredFile
	// Allow inline JSON or base64-encoded JSON in env to avoid writing a file.
	if strings.HasPrefix(strings.TrimSpace(cred), "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(cred))}
	}
	if decoded, err := base64.StdEncoding.DecodeString(cred); err == nil && strings.HasPrefix(strings.TrimSpace(string(decoded)), "{") {
		return []option.ClientOption{option.WithCredentialsJSON(decoded)}
	}

	return []option.ClientOption{option.WithCredentialsFile(cred)}
}
