package main

import (
	"database/sql"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/redis/go-redis/v9"

	"car-mzansi-connect/internal/common/camunda"
	"car-mzansi-connect/internal/common/config"
	"car-mzansi-connect/internal/common/events"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/common/observability"
	"car-mzansi-connect/internal/marketplace/listings"

	ca "car-mzansi-connect/internal/workers/application/check-affordability"
	car "car-mzansi-connect/internal/workers/application/create-application-record"
	sn "car-mzansi-connect/internal/workers/application/send-notification"
	vfa "car-mzansi-connect/internal/workers/application/validate-finance-application"

	btd "car-mzansi-connect/internal/workers/marketplace/book-test-drive"
	sl "car-mzansi-connect/internal/workers/marketplace/search-listings"
	sr "car-mzansi-connect/internal/workers/marketplace/submit-review"
	tw "car-mzansi-connect/internal/workers/marketplace/toggle-wishlist"
)

type workerDeps struct {
	cfg       *config.Config
	db        *sql.DB
	redis     *redis.Client
	catalogue listings.Catalogue
	publisher events.Publisher
	email     sn.EmailSender
	sms       sn.SMSSender
	obs       *observability.Observability
	log       logger.Logger
}

// registerWorkers opens a job worker for every enabled task type.
func registerWorkers(client zbc.Client, d workerDeps) ([]*camunda.CamundaWorker, error) {
	affordability, err := ca.LoadConfig(d.cfg.Finance)
	if err != nil {
		return nil, err
	}

	topics := d.cfg.Kafka.Topics
	handlers := map[string]camunda.JobHandler{
		// Finance application process
		vfa.TaskType: vfa.NewHandler(vfa.LoadConfig(), d.log),
		ca.TaskType:  ca.NewHandler(affordability, d.log),
		car.TaskType: car.NewHandler(car.LoadConfig(topics.Applications), d.db, d.publisher, d.log),
		sn.TaskType:  sn.NewHandler(sn.LoadConfig(d.cfg.Notifications), d.email, d.sms, d.log),

		// Marketplace
		btd.TaskType: btd.NewHandler(btd.LoadConfig(topics.TestDrives), d.db, d.publisher, d.log),
		sr.TaskType:  sr.NewHandler(sr.LoadConfig(topics.Reviews), d.db, d.publisher, d.log),
		tw.TaskType:  tw.NewHandler(tw.LoadConfig(), d.redis, d.catalogue, d.log),
		sl.TaskType:  sl.NewHandler(sl.LoadConfig(d.cfg.Database.Elasticsearch.ListingsIndex), d.catalogue, d.log),
	}

	var started []*camunda.CamundaWorker
	for taskType, handler := range handlers {
		if !config.IsWorkerEnabled(d.cfg, taskType) {
			d.log.Info("worker disabled", map[string]interface{}{"taskType": taskType})
			continue
		}
		wcfg := config.GetWorkerConfig(d.cfg, taskType)
		w := camunda.NewWorker(client, taskType, camunda.Options{
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
		}, handler, d.obs, d.log)
		w.Start()
		started = append(started, w)
	}
	return started, nil
}
