package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/avoronov/account-service/internal/api/http/handler"
	"github.com/avoronov/account-service/internal/api/http/httpctx"
	"github.com/avoronov/account-service/internal/api/http/middleware"
	"github.com/avoronov/account-service/internal/api/http/router"
	httpserver "github.com/avoronov/account-service/internal/api/http/server"
	"github.com/avoronov/account-service/internal/config"
	"github.com/avoronov/account-service/internal/logger"
	"github.com/avoronov/account-service/internal/model"
	"github.com/avoronov/account-service/internal/repository/postgres"
	redisrepo "github.com/avoronov/account-service/internal/repository/redis"
	"github.com/avoronov/account-service/internal/server"
	"github.com/avoronov/account-service/internal/service"
	"github.com/avoronov/account-service/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	redisClient := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	refreshRegistry := redisrepo.NewRefreshRegistry(redisClient, "")
	if err := refreshRegistry.Ping(ctx); err != nil {
		logger.Fatal("failed to reach refresh session registry", "error", err)
	}

	userRepo := postgres.NewUserRepository(db)
	tokenManager := token.NewJWT(token.Config{
		Secret:     cfg.JWT.Secret,
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})

	tokenService := service.NewTokenService(tokenManager, refreshRegistry, cfg.JWT.RefreshTTL, logger)
	authService := service.NewAuth(userRepo, tokenService, logger)
	userService := service.NewUser(userRepo, logger)
	ctxMgr := httpctx.NewManager()

	cookies := handler.NewCookies(handler.CookieConfig{
		Secure:     cfg.Production(),
		AccessTTL:  cfg.JWT.AccessTTL,
		RefreshTTL: cfg.JWT.RefreshTTL,
	})

	mux := router.New(router.Dependencies{
		Auth:         handler.NewAuth(authService, cookies, logger),
		Users:        handler.NewUser(userService, ctxMgr, cookies, logger),
		Authenticate: middleware.NewAuthenticate(authService, ctxMgr, logger),
		Restrict:     middleware.NewRestrict(ctxMgr, logger),
		Logger:       logger,
	})

	httpServer := httpserver.NewHTTPServer(mux, fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
