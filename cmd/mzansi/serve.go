package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"car-mzansi-connect/internal/api"
	"car-mzansi-connect/internal/auth"
	"car-mzansi-connect/internal/common/config"
	"car-mzansi-connect/internal/common/database"
	"car-mzansi-connect/internal/common/events"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/finance/gateway"
	"car-mzansi-connect/internal/finance/wizard"
	"car-mzansi-connect/internal/marketplace/listings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var serveFlags struct {
	configFile string
	address    string
	sample     bool
	seed       bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the wizard, listings, quotes and account API",
	Long: `serve runs only the HTTP API. It needs Postgres and Redis for accounts and
sessions; listings come from Elasticsearch unless --sample is set. --seed
indexes the sample listings into Elasticsearch first. Wizard submissions use
the simulated gateway.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveFlags.configFile, "config", "c", "", "config file (default: configs/config.yaml lookup)")
	serveCmd.Flags().StringVar(&serveFlags.address, "address", "", "listen address, overrides http.address")
	serveCmd.Flags().BoolVar(&serveFlags.sample, "sample", false, "serve the built-in sample listings")
	serveCmd.Flags().BoolVar(&serveFlags.seed, "seed", false, "index the sample listings into Elasticsearch before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	var (
		cfg *config.Config
		err error
	)
	if serveFlags.configFile != "" {
		cfg, err = config.LoadFromFile(serveFlags.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if serveFlags.address != "" {
		cfg.HTTP.Address = serveFlags.address
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	ctx := cmd.Context()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return err
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		return err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		return err
	}

	rdb, err := database.NewRedis(cfg.Database.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	sample := listings.NewSample(now())
	var catalogue listings.Catalogue = sample
	if !serveFlags.sample {
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		index := listings.NewElastic(es.Client, cfg.Database.Elasticsearch.ListingsIndex)
		if serveFlags.seed {
			for _, l := range sample.All() {
				if err := index.Index(ctx, l); err != nil {
					return fmt.Errorf("seed listing %s: %w", l.ID, err)
				}
			}
			log.Info("sample listings indexed", map[string]interface{}{"count": len(sample.All())})
		}
		catalogue = index
	}

	provider := auth.NewProvider(
		auth.NewPostgresUserRepository(pg.DB),
		auth.NewRedisSessionStore(rdb.Client),
		auth.Options{
			JWTSecret:  cfg.Auth.JWTSecret,
			TokenTTL:   config.GetDuration(cfg.Auth.TokenTTL),
			BcryptCost: cfg.Auth.BcryptCost,
		},
		log,
	)

	var publisher events.Publisher = events.Nop{}
	if cfg.Kafka.Enabled {
		kp := events.NewKafkaPublisher(cfg.Kafka.Brokers, log)
		defer kp.Close()
		publisher = kp
	}
	gw := gateway.NewPublishing(
		gateway.NewSimulated(config.GetDuration(cfg.Wizard.SubmissionDelay), cfg.Wizard.SimulateFailure, log),
		publisher, cfg.Kafka.Topics.Applications, log,
	)

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

	rate, err := decimal.NewFromString(cfg.Finance.DefaultAnnualRate)
	if err != nil {
		return fmt.Errorf("finance.default_annual_rate: %w", err)
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Address,
		Handler: api.NewServer(api.Deps{
			Store:      store,
			Catalogue:  catalogue,
			Auth:       provider,
			AnnualRate: rate,
			Logger:     log,
		}).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server listening", map[string]interface{}{"address": cfg.HTTP.Address})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
