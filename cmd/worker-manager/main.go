// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"car-mzansi-connect/internal/api"
	"car-mzansi-connect/internal/auth"
	"car-mzansi-connect/internal/common/aws"
	"car-mzansi-connect/internal/common/camunda"
	"car-mzansi-connect/internal/common/config"
	"car-mzansi-connect/internal/common/database"
	"car-mzansi-connect/internal/common/events"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/common/observability"
	"car-mzansi-connect/internal/finance/gateway"
	"car-mzansi-connect/internal/finance/wizard"
	"car-mzansi-connect/internal/marketplace/listings"
)

const maxRetryDelay = 30 * time.Second

// retryWithBackoff attempts to execute a function with exponential backoff,
// capped at maxRetryDelay. It gives up early once ctx is cancelled.
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s abandoned after %d attempts: %w", operationName, i+1, ctx.Err())
			case <-time.After(delay):
			}
			delay = nextDelay(delay)
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func nextDelay(d time.Duration) time.Duration {
	if d *= 2; d > maxRetryDelay {
		return maxRetryDelay
	}
	return d
}

type infra struct {
	zeebe *camunda.Client
	pg    *database.PostgresClient
	redis *database.RedisClient
	es    *database.ElasticsearchClient
}

// connect dials every backing service in parallel, each with its own retry budget.
func connect(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (*infra, error) {
	var in infra
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return retryWithBackoff(ctx, func() error {
			var err error
			in.zeebe, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	})

	g.Go(func() error {
		return retryWithBackoff(ctx, func() error {
			var err error
			in.pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return in.pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	})

	g.Go(func() error {
		return retryWithBackoff(ctx, func() error {
			var err error
			in.es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return in.es.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	})

	g.Go(func() error {
		return retryWithBackoff(ctx, func() error {
			var err error
			in.redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return in.redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
	})

	if err := g.Wait(); err != nil {
		in.close(zapLog)
		return nil, err
	}
	return &in, nil
}

func (in *infra) close(zapLog *zap.Logger) {
	if in.zeebe != nil {
		if err := in.zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	if in.pg != nil {
		_ = in.pg.Close()
	}
	if in.redis != nil {
		_ = in.redis.Close()
	}
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Warn("OpenTelemetry metrics exporter unavailable", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := connect(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("infrastructure bootstrap failed", zap.Error(err))
	}
	defer in.close(zapLog)
	zapLog.Info("Zeebe, PostgreSQL, Elasticsearch and Redis connected")

	if err := in.pg.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Event publisher ---
	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, log)
		defer kp.Close()
		publisher = kp
	}

	// --- AWS messaging ---
	deps := workerDeps{
		cfg:       cfg,
		db:        in.pg.DB,
		redis:     in.redis.Client,
		catalogue: listings.NewElastic(in.es.Client, cfg.Database.Elasticsearch.ListingsIndex),
		publisher: publisher,
		obs:       obs,
		log:       log,
	}
	if cfg.Integrations.AWS.SES.Enabled {
		mailer, err := aws.NewSESMailer(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SES.FromEmail)
		if err != nil {
			zapLog.Fatal("SES mailer init failed", zap.Error(err))
		}
		deps.email = mailer
	}
	if cfg.Integrations.AWS.SNS.Enabled {
		texter, err := aws.NewSNSTexter(ctx, cfg.Integrations.AWS.Region, cfg.Integrations.AWS.SNS.DefaultSMSSenderID)
		if err != nil {
			zapLog.Fatal("SNS texter init failed", zap.Error(err))
		}
		deps.sms = texter
	}

	workers, err := registerWorkers(in.zeebe.GetClient(), deps)
	if err != nil {
		zapLog.Fatal("worker registration failed", zap.Error(err))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Finance wizard API ---
	provider := auth.NewProvider(
		auth.NewPostgresUserRepository(in.pg.DB),
		auth.NewRedisSessionStore(in.redis.Client),
		auth.Options{
			JWTSecret:  cfg.Auth.JWTSecret,
			TokenTTL:   config.GetDuration(cfg.Auth.TokenTTL),
			BcryptCost: cfg.Auth.BcryptCost,
		},
		log,
	)

	var gw wizard.SubmissionGateway
	switch cfg.Wizard.Gateway {
	case "zeebe":
		gw = gateway.NewZeebe(in.zeebe, cfg.Wizard.ProcessID, obs, log)
	default:
		gw = gateway.NewPublishing(
			gateway.NewSimulated(config.GetDuration(cfg.Wizard.SubmissionDelay), cfg.Wizard.SimulateFailure, log),
			publisher, cfg.Kafka.Topics.Applications, log,
		)
	}

	idle := config.GetDuration(cfg.Wizard.SessionIdleExpiry)
	store := api.NewStore(func(id string, n wizard.Notifier, onClose func(string)) *wizard.Controller {
		return wizard.New(auth.SessionContext{Provider: provider}, gw,
			wizard.WithID(id),
			wizard.WithNotifier(n),
			wizard.WithCloseHook(onClose),
			wizard.WithSuccessDwell(config.GetDuration(cfg.Wizard.SuccessDwell)),
			wizard.WithLogger(log),
		)
	}, idle)
	go store.Run(ctx, idle/4+time.Second)

	annualRate, err := decimal.NewFromString(cfg.Finance.DefaultAnnualRate)
	if err != nil {
		zapLog.Fatal("finance.default_annual_rate is not a decimal", zap.Error(err))
	}

	apiServer := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.NewServer(api.Deps{
			Store:      store,
			Catalogue:  deps.catalogue,
			Auth:       provider,
			AnnualRate: annualRate,
			Logger:     log,
		}).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		zapLog.Info("API server listening", zap.String("address", cfg.HTTP.Address))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("API server failed", zap.Error(err))
			stop()
		}
	}()

	// --- Health & Metrics Server ---
	healthServer := &http.Server{Addr: cfg.HTTP.HealthAddress, Handler: healthMux(in), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.HTTP.HealthAddress))
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping API server", zap.Error(err))
	}
	for _, w := range workers {
		w.Stop()
	}
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	obs.Shutdown(shutdownCtx)

	zapLog.Info("Worker manager stopped gracefully")
}

// healthMux serves liveness, readiness and Prometheus metrics. pprof handlers
// registered on the default mux are mounted under /debug/pprof/.
func healthMux(in *infra) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		status := http.StatusOK
		for name, ping := range map[string]func(context.Context) error{
			"postgres":      in.pg.Ping,
			"redis":         in.redis.Ping,
			"elasticsearch": in.es.Ping,
			"zeebe":         in.zeebe.HealthCheck,
		} {
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		checks["time"] = time.Now().Format(time.RFC3339)
		if status == http.StatusOK {
			checks["status"] = "ready"
		} else {
			checks["status"] = "degraded"
		}
		writeStatus(w, status, checks)
	})
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/pprof/", http.DefaultServeMux)
	return mux
}

func writeStatus(w http.ResponseWriter, status int, body map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
