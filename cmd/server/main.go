package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"taskmaster/internal/config"
	apphttp "taskmaster/internal/http"
	"taskmaster/internal/repository/sqlite"
	"taskmaster/internal/service"
	"taskmaster/internal/service/auth"
	"taskmaster/internal/validation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatalf("parse log level: %v", err)
	}
	logger.SetLevel(level)

	tokens, err := auth.NewTokenService(auth.Settings{
		Key:               cfg.JWT.Key,
		Issuer:            cfg.JWT.Issuer,
		Audience:          cfg.JWT.Audience,
		DurationInMinutes: cfg.JWT.DurationInMinutes,
	})
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	tokenRepo := sqlite.NewRefreshTokenRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)

	if err := sqlite.InitAll(ctx, userRepo, tokenRepo, taskRepo); err != nil {
		logger.Fatalf("init repositories: %v", err)
	}

	accounts := service.NewAccountService(userRepo, tokenRepo, tokens, service.AccountOptions{
		DefaultRole: cfg.Seed.Role,
		Seed: service.SeedUser{
			UserName:  cfg.Seed.UserName,
			Email:     cfg.Seed.Email,
			FirstName: cfg.Seed.FirstName,
			LastName:  cfg.Seed.LastName,
			Password:  cfg.Seed.Password,
		},
		Logger: logger.WithField("component", "accounts"),
	})
	if err := accounts.Bootstrap(ctx); err != nil {
		logger.Fatalf("bootstrap accounts: %v", err)
	}

	validate := validation.New(time.Now)
	taskHandlers := service.NewTaskHandlers(taskRepo, accounts, validate, logger.WithField("component", "tasks"), time.Now)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(taskHandlers, accounts, tokens, validate, logger.WithField("component", "http"))
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}
