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
	"golang.org/x/time/rate"

	"github.com/medagenda/scheduler-api/internal/config"
	"github.com/medagenda/scheduler-api/internal/email"
	appointmentHandler "github.com/medagenda/scheduler-api/internal/handler/appointment"
	clinicHandler "github.com/medagenda/scheduler-api/internal/handler/clinic"
	doctorHandler "github.com/medagenda/scheduler-api/internal/handler/doctor"
	healthHandler "github.com/medagenda/scheduler-api/internal/handler/health"
	patientHandler "github.com/medagenda/scheduler-api/internal/handler/patient"
	prometheusHandler "github.com/medagenda/scheduler-api/internal/handler/prometheus"
	"github.com/medagenda/scheduler-api/internal/middleware"
	"github.com/medagenda/scheduler-api/internal/repository/postgres"
	"github.com/medagenda/scheduler-api/internal/router"
	appointmentService "github.com/medagenda/scheduler-api/internal/service/appointment"
	clinicService "github.com/medagenda/scheduler-api/internal/service/clinic"
	doctorService "github.com/medagenda/scheduler-api/internal/service/doctor"
	eventService "github.com/medagenda/scheduler-api/internal/service/event"
	patientService "github.com/medagenda/scheduler-api/internal/service/patient"
	"github.com/medagenda/scheduler-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	clinicRepo := postgres.NewClinicRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	eventSvc := eventService.NewService(outboxRepo)

	mailer := email.NewNoop()
	if cfg.SMTP.Enabled {
		mailer = email.NewService(email.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	m := metrics.NewMetrics("medagenda", "scheduler")

	appointmentSvc := appointmentService.NewService(
		appointmentRepo,
		doctorRepo,
		patientRepo,
		eventSvc,
		mailer,
		cfg.Scheduling.ToPolicy(),
		m,
	)
	doctorSvc := doctorService.NewService(doctorRepo, appointmentRepo)
	patientSvc := patientService.NewService(patientRepo)
	clinicSvc := clinicService.NewService(clinicRepo, doctorRepo)

	promH := prometheusHandler.New()

	r := router.NewRouter(
		appointmentHandler.NewHandler(appointmentSvc),
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(patientSvc),
		clinicHandler.NewHandler(clinicSvc),
		healthHandler.NewHandler(db),
		promH,
		router.RouterConfig{
			RateLimit:  rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:  cfg.RateLimit.Burst,
			CORSConfig: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
