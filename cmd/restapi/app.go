package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/db"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/handlers/render"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/i18n"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/logger"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/redisclient"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository/postgres"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/repository/redisstore"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/auth"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/rbac"
	"github.com/iambishalsaha/spring-boot-rest-api-boilerplate/internal/service/user"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Connect to redis for the token store
	redisClient, err := redisclient.Connect(ctx, redisclient.Config{
		Host:           c.RedisHost,
		Port:           c.RedisPort,
		DB:             c.RedisDB,
		Password:       c.RedisPassword,
		CommandTimeout: time.Duration(c.RedisCommandTimeoutMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("error while connecting to redis. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)
	tokenRepo, err := redisstore.NewTokenRepo(redisClient)
	if err != nil {
		return nil, fmt.Errorf("error while creating token store. Err: %w", err)
	}

	// Initialize services
	provider, err := auth.NewTokenProvider(auth.TokenProviderConfig{
		SecretKey:           c.SecretKey,
		AccessExpiresIn:     time.Duration(c.AccessExpiresInMs) * time.Millisecond,
		RefreshExpiresIn:    time.Duration(c.RefreshExpiresInMs) * time.Millisecond,
		RememberMeExpiresIn: time.Duration(c.RememberMeExpiresInMs) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("error while creating token provider. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, provider, storage.User(), tokenRepo)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	userService := user.NewService(auth.DefaultHasher, storage.User())
	rbacService := rbac.NewService(storage.Role(), storage.Permission())

	// Initialize handlers
	messages := i18n.NewMessageSource(c.DefaultLocale)
	mapper := render.NewMapper(messages, logger)

	mux := handlers.NewRouter(
		authService,
		userService,
		rbacService,
		rbacService,
		mapper,
		logger,
		handlers.RouterConfig{SecurityDisabled: c.SecurityDisabled},
	)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		logger:     logger,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
