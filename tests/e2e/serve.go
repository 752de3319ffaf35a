package e2e

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/matheusdealcantara/tabnews.com.br/internal/handlers"
	"github.com/matheusdealcantara/tabnews.com.br/internal/i18n"
	"github.com/matheusdealcantara/tabnews.com.br/internal/logger"
	"github.com/matheusdealcantara/tabnews.com.br/internal/metrics"
	"github.com/matheusdealcantara/tabnews.com.br/internal/repository/postgres"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/auth"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/notify"
	"github.com/matheusdealcantara/tabnews.com.br/internal/service/recovery"
	"github.com/matheusdealcantara/tabnews.com.br/internal/testutil"
	"github.com/matheusdealcantara/tabnews.com.br/internal/testutil/fixtures"
)

const WebserverHost = "https://www.tabnews.com.br"

type Services struct {
	AuthService *auth.AuthService
	Registry    *prometheus.Registry

	// Every email sent while serving
	Outbox   *testutil.Outbox
	Fixtures *fixtures.Fixtures
}

type Option func(*options)

type options struct {
	now func() time.Time
}

// Clock of recovery tokens and sessions
func WithNow(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Create db transaction and run server in with that connection (one connection cause one transaction)
// The created transaction passed to inner function: so, you can safely use testutil.WithTx with it
func ServeWithTx(dbpool *pgxpool.Pool, t *testing.T, fn func(tx pgx.Tx, srvURL string, services Services), opts ...Option) {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	testutil.WithTx(dbpool, t, func(tx pgx.Tx) {
		l := logger.NewNoOpLogger()
		reg := prometheus.NewRegistry()
		recorder := metrics.New(reg)
		outbox := &testutil.Outbox{}

		tr, err := i18n.New("pt-BR")
		require.NoError(t, err, "translations should be loaded")

		// Initialize repositories
		storage := postgres.NewStorage(tx, postgres.Config{Now: o.now})

		// Initialize services
		as, err := auth.NewService(auth.Config{Now: o.now}, storage.Session(), storage.User())
		require.NoError(t, err, "auth service starting error", err)

		dispatcher, err := notify.NewDispatcher(notify.Config{WebserverHost: WebserverHost}, outbox, tr, l, recorder)
		require.NoError(t, err)

		engine := recovery.NewEngine(recovery.Config{Now: o.now}, storage.RecoveryToken())
		rs, err := recovery.NewService(storage.User(), engine, dispatcher, l, recorder)
		require.NoError(t, err)

		// Complete all together as router
		router := handlers.Router{
			Auth:           as,
			Recovery:       rs,
			DB:             dbpool,
			Locale:         tr,
			Metrics:        recorder,
			MetricsHandler: metrics.Handler(reg),
			Logger:         l,
		}

		// Run http server with the router in transaction
		srv := httptest.NewServer(router.Handler())
		defer srv.Close()

		fn(tx, srv.URL, Services{
			AuthService: as,
			Registry:    reg,
			Outbox:      outbox,
			Fixtures:    fixtures.New(t, tx),
		})
	})
}
