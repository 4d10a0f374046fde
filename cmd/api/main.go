package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-scheduler/internal/bootstrap"
	"github.com/jwalitptl/clinic-scheduler/internal/config"
	bookingHandler "github.com/jwalitptl/clinic-scheduler/internal/handler/booking"
	healthHandler "github.com/jwalitptl/clinic-scheduler/internal/handler/health"
	"github.com/jwalitptl/clinic-scheduler/internal/model"
	"github.com/jwalitptl/clinic-scheduler/internal/notify"
	"github.com/jwalitptl/clinic-scheduler/internal/repository"
	filestore "github.com/jwalitptl/clinic-scheduler/internal/repository/file"
	"github.com/jwalitptl/clinic-scheduler/internal/repository/postgres"
	"github.com/jwalitptl/clinic-scheduler/internal/router"
	"github.com/jwalitptl/clinic-scheduler/internal/scheduler"
	bookingService "github.com/jwalitptl/clinic-scheduler/internal/service/booking"
	reminderService "github.com/jwalitptl/clinic-scheduler/internal/service/reminder"
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

	appLogger := logger.NewLogger(nil)
	appMetrics := metrics.NewMetrics("clinic_scheduler")
	mode := model.ParseReminderMode(cfg.Reminder.Mode)

	// Storage backend
	var (
		patients     repository.PatientDirectory
		schedule     repository.ScheduleDirectory
		store        repository.BookingStore
		consumeSlots bool
	)
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := postgres.NewDB(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()
		patients = postgres.NewPatientDirectory(db)
		schedule = postgres.NewScheduleDirectory(db)
		store = postgres.NewBookingStore(db)
		// The postgres store consumes the slot inside the booking
		// transaction; no separate mark step.
	default:
		if err := bootstrap.EnsureDataFiles(cfg.Storage, cfg.Schedule.SeedDays, appLogger); err != nil {
			log.Fatal().Err(err).Msg("failed to provision data files")
		}
		patients = filestore.NewPatientDirectory(cfg.Storage.PatientsFile)
		schedule = filestore.NewScheduleDirectory(cfg.Storage.ScheduleFile, cfg.Schedule.DefaultSlotFallback)
		store = filestore.NewBookingStore(cfg.Storage.BookingsFile)
		consumeSlots = cfg.Schedule.ConsumeSlots
	}

	// Notification gateway
	emailSender := notify.NewSMTPSender(creds.EmailAddress, creds.EmailAppPassword)
	smsSender := notify.NewTwilioSender(creds.TwilioAccountSID, creds.TwilioAuthToken, creds.TwilioPhoneNumber)
	gateway := notify.NewGateway(emailSender, smsSender, appLogger)

	// Deferred execution: redis-backed queue when available, otherwise
	// in-process timers (demo only; pending jobs die with the process).
	var enqueuer scheduler.Enqueuer
	if cfg.Redis.Addr != "" {
		enqueuer = scheduler.NewAsynqEnqueuer(cfg.Redis)
	} else {
		reminderHandler := worker.NewReminderHandler(gateway, cfg.Storage.IntakeForm, appMetrics, appLogger)
		enqueuer = scheduler.NewTimerEnqueuer(reminderHandler.Handle, appLogger)
		appLogger.Warn("no redis configured, reminders run on in-process timers")
	}
	defer enqueuer.Close()

	reminders := reminderService.NewScheduler(enqueuer, gateway, mode, cfg.Storage.IntakeForm, appMetrics, appLogger)

	bookingSvc := bookingService.NewService(
		patients,
		schedule,
		store,
		gateway,
		reminders,
		bookingService.BookingLinks{New: creds.CalendlyNew, Returning: creds.CalendlyReturning},
		cfg.Storage.IntakeForm,
		consumeSlots,
		appMetrics,
		appLogger,
	)

	bookingH := bookingHandler.NewHandler(bookingSvc)
	healthH := healthHandler.NewHandler(healthHandler.Setup{
		StorageBackend:  cfg.Storage.Backend,
		PatientsFile:    cfg.Storage.PatientsFile,
		ScheduleFile:    cfg.Storage.ScheduleFile,
		BookingsFile:    cfg.Storage.BookingsFile,
		IntakeForm:      cfg.Storage.IntakeForm,
		EmailConfigured: emailSender.Configured(),
		SMSConfigured:   smsSender.Configured(),
		ReminderMode:    string(mode),
	})

	r := router.NewRouter(bookingH, healthH, router.RouterConfig{})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Str("reminder_mode", string(mode)).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.TimeoutSeconds)*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}
	log.Info().Msg("server exited")
}
