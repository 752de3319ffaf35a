package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/matheusdealcantara/tabnews.com.br/internal/db"
	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers"
	"github.com/matheusdealcantara/tabnews.com.br/internal/i18n"
	"github.com/matheusdealcantara/tabnews.com.br/internal/logger"
	"github.com/matheusdealcantara/tabnews.com.br/internal/mail"
	"github.com/matheusdealcantara/tabnews.com.br/internal/metrics"
	"github.com/matheusdealcantara/tabnews.com.br/internal/repository/postgres"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/auth"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/notify"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/recovery"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	pool   *pgxpool.Pool
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	tr, err := i18n.New(c.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("error while loading translations: %w", err)
	}

	transport, err := newTransport(c, logger)
	if err != nil {
		return nil, fmt.Errorf("error while creating email transport: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	reg := prometheus.NewRegistry()
	recorder := metrics.New(reg)

	// Initialize repositories
	storage := postgres.NewStorage(pool, postgres.Config{})

	// Initialize services
	authService, err := auth.NewService(auth.Config{}, storage.Session(), storage.User())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}

	dispatcher, err := notify.NewDispatcher(notify.Config{WebserverHost: c.WebserverHost}, transport, tr, logger, recorder)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating email dispatcher. Err: %w", err)
	}

	engine := recovery.NewEngine(recovery.Config{TTL: c.RecoveryTokenTTL}, storage.RecoveryToken())
	recoveryService, err := recovery.NewService(storage.User(), engine, dispatcher, logger, recorder)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating recovery service. Err: %w", err)
	}

	router := handlers.Router{
		Auth:           authService,
		Recovery:       recoveryService,
		DB:             pool,
		Locale:         tr,
		Metrics:        recorder,
		MetricsHandler: metrics.Handler(reg),
		Logger:         logger,
	}

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router.Handler(),
		logger:     logger,
		pool:       pool,
	}, nil
}

func newTransport(c *Config, l logger.Logger) (mail.Transport, error) {
	from := mail.From{Address: c.EmailFrom, Name: c.EmailFromName}

	switch c.EmailTransport {
	case TransportSMTP:
		return mail.NewSMTPTransport(mail.SMTPConfig{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			TLS:      c.SMTPTLS,
		}, from)
	case TransportSendGrid:
		return mail.NewSendGridTransport(mail.SendGridConfig{
			APIKey:  c.SendGridAPIKey,
			Sandbox: c.SendGridSandbox,
		}, from)
	case TransportLog:
		return mail.NewLogTransport(l.WithGroup("mail")), nil
	default:
		return nil, fmt.Errorf("unknown email transport %q", c.EmailTransport)
	}
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 5 * time.Second,
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
