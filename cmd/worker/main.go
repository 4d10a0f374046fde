package main

import (
	"context"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-scheduler/internal/config"
	"github.com/jwalitptl/clinic-scheduler/internal/notify"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduler"
	"github.com/jwalitptl/clinic-scheduler/internal/worker"
	"github.com/jwalitptl/clinic-scheduler/pkg/logger"
	"github.com/jwalitptl/clinic-scheduler/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load credentials")
	}
	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("worker requires redis.addr to be configured")
	}

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("clinic_scheduler_worker")

	emailSender := notify.NewSMTPSender(creds.EmailAddress, creds.EmailAppPassword)
	smsSender := notify.NewTwilioSender(creds.TwilioAccountSID, creds.TwilioAuthToken, creds.TwilioPhoneNumber)
	gateway := notify.NewGateway(emailSender, smsSender, appLogger)

	handler := worker.NewReminderHandler(gateway, cfg.Storage.IntakeForm, appMetrics, appLogger)

	go monitorRedis(cfg.Redis, appLogger)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(scheduler.TypeReminderSend, handler.ProcessTask)

	log.Info().Str("redis", cfg.Redis.Addr).Msg("reminder worker started")
	if err := srv.Run(mux); err != nil {
		log.Fatal().Err(err).Msg("reminder worker stopped")
	}
}

// monitorRedis pings redis periodically so a broken queue connection
// shows up in the logs before operators notice missed reminders.
func monitorRedis(cfg config.RedisConfig, log *logger.Logger) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	defer client.Close()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(ctx).Err(); err != nil {
			log.Error(err, "redis health check failed")
		}
		cancel()
	}
}
