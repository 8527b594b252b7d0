package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minetrack/minetrack-backend-go/internal/config"
	appHTTP "github.com/minetrack/minetrack-backend-go/internal/handler/http"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/cron"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/database"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/esmo"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/hikvision"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/jwt"
	"github.com/minetrack/minetrack-backend-go/internal/pkg/metrics"
	"github.com/minetrack/minetrack-backend-go/internal/repository/postgresql"
	authService "github.com/minetrack/minetrack-backend-go/internal/service/auth"
	deviceService "github.com/minetrack/minetrack-backend-go/internal/service/device"
	employeeService "github.com/minetrack/minetrack-backend-go/internal/service/employee"
	eventService "github.com/minetrack/minetrack-backend-go/internal/service/event"
	hikvisionService "github.com/minetrack/minetrack-backend-go/internal/service/hikvision"
	medicalService "github.com/minetrack/minetrack-backend-go/internal/service/medical"
	reportService "github.com/minetrack/minetrack-backend-go/internal/service/report"
	userService "github.com/minetrack/minetrack-backend-go/internal/service/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), cfg.Database.Automigrate)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		os.Exit(1)
	}
	defer db.Close()

	metrics.Register()

	employeeRepo := postgresql.NewEmployeeRepository(db)
	deviceRepo := postgresql.NewDeviceRepository(db)
	eventRepo := postgresql.NewEventRepository(db)
	medicalRepo := postgresql.NewMedicalRepository(db)
	userRepo := postgresql.NewUserRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiration)

	var portal *esmo.Client
	if cfg.Esmo.Enabled {
		portal = esmo.NewClient(cfg.Esmo.BaseURL, cfg.Esmo.User, cfg.Esmo.Pass,
			cfg.Esmo.RequestTimeout, cfg.Esmo.LoginRetries)
	}

	var isapi *hikvision.ISAPIClient
	if cfg.Hikvision.Pass != "" {
		isapi = hikvision.NewISAPIClient(cfg.Hikvision.User, cfg.Hikvision.Pass, 10*time.Second)
	}

	authSvc := authService.NewAuthService(userRepo, jwtService)
	employeeSvc := employeeService.NewEmployeeService(employeeRepo)
	deviceSvc := deviceService.NewDeviceService(deviceRepo, cfg.Device.ControlPassword)
	eventSvc := eventService.NewEventService(eventRepo, deviceRepo, employeeRepo, cfg.Esmo.OKWindowHours)
	medicalSvc := medicalService.NewMedicalService(db, medicalRepo, employeeRepo, deviceRepo, eventRepo, portal, cfg.Esmo.BackfillPages)
	reportSvc := reportService.NewReportService(eventRepo, medicalRepo, employeeRepo, deviceRepo,
		cfg.Hikvision.InHosts, cfg.Hikvision.OutHosts)
	userSvc := userService.NewUserService(userRepo)
	hikSvc := hikvisionService.NewService(deviceRepo, employeeRepo, eventRepo, isapi)

	router := appHTTP.NewRouter(
		appHTTP.RouterConfig{Env: cfg.App.Env, CORSOrigins: cfg.App.CORSOrigins},
		jwtService,
		appHTTP.NewAuthHandler(authSvc),
		appHTTP.NewEmployeeHandler(employeeSvc, auditRepo),
		appHTTP.NewDeviceHandler(deviceSvc, auditRepo),
		appHTTP.NewEventHandler(eventSvc),
		appHTTP.NewMedicalHandler(medicalSvc, cfg.Esmo.SyncTimeout),
		appHTTP.NewReportHandler(reportSvc),
		appHTTP.NewUserHandler(userSvc, auditRepo),
		appHTTP.NewHikvisionHandler(hikSvc),
	)

	scheduler := cron.NewScheduler()
	scheduler.AddJob("device-check", cfg.Device.CheckInterval, deviceSvc.CheckReachability)
	if cfg.Esmo.Enabled {
		scheduler.AddJob("esmo-poll", cfg.Esmo.PollInterval, func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, cfg.Esmo.SyncTimeout)
			defer cancel()
			_, err := medicalSvc.SyncExams(ctx)
			return err
		})
	}
	scheduler.Start()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	slog.Info("Shutting down")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
