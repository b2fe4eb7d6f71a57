package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/pupil-dashboard/api/swagger"
	"github.com/noah-isme/pupil-dashboard/internal/handler"
	"github.com/noah-isme/pupil-dashboard/internal/middleware"
	"github.com/noah-isme/pupil-dashboard/internal/repository"
	"github.com/noah-isme/pupil-dashboard/internal/service"
	"github.com/noah-isme/pupil-dashboard/pkg/cache"
	"github.com/noah-isme/pupil-dashboard/pkg/config"
	"github.com/noah-isme/pupil-dashboard/pkg/logger"
	corsmiddleware "github.com/noah-isme/pupil-dashboard/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/pupil-dashboard/pkg/middleware/requestid"
	"github.com/noah-isme/pupil-dashboard/web"
)

const shutdownTimeout = 10 * time.Second

// @title Pupil Dashboard
// @version 1.0.0
// @description Attendance, behaviour and announcements dashboard backed by the school records API
// @BasePath /
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()
	metrics := service.NewMetricsService()

	var throttleStore service.ThrottleStore
	if cfg.Throttle.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("login throttle disabled: redis unavailable", zap.Error(err))
		} else {
			repo := repository.NewThrottleRepository(client, logr)
			defer repo.Close() //nolint:errcheck
			throttleStore = repo
		}
	}

	newRepository := repository.NewRecordsRepositoryFactory(cfg.Records)
	factory := func(pupilCode, dateOfBirth string) service.RecordsClient {
		return newRepository(pupilCode, dateOfBirth)
	}

	records := service.NewRecordsService(metrics, logr)
	throttle := service.NewThrottleService(service.ThrottleParams{
		Store:       throttleStore,
		Enabled:     throttleStore != nil,
		MaxAttempts: cfg.Throttle.MaxAttempts,
		Window:      cfg.Throttle.Window,
		Metrics:     metrics,
		Logger:      logr,
	})
	sessions := service.NewSessionService(service.SessionParams{
		Factory:   factory,
		Records:   records,
		Throttle:  throttle,
		Validator: validate,
		Metrics:   metrics,
		Logger:    logr,
	})
	views := service.NewViewStore(cfg.Dashboard.ViewStateTTL, cfg.Dashboard.ViewStateLimit)
	metrics.TrackOpenViews(views.Len)
	dashboard := service.NewDashboardService(service.DashboardParams{
		Records:              records,
		Binder:               service.NewBinder(cfg.Dashboard.ChartLimit, cfg.Dashboard.PositiveTopN),
		AnnouncementsTimeout: cfg.Dashboard.AnnouncementsTimeout,
		Views:                views,
		Validator:            validate,
		Logger:               logr,
	})

	dashboardHandler := handler.NewDashboardHandler(dashboard, nil)
	if cfg.Exports.Enabled {
		exports := service.NewExportService(service.ExportParams{
			Dashboard: dashboard,
			Metrics:   metrics,
			Logger:    logr,
		})
		dashboardHandler = handler.NewDashboardHandler(dashboard, exports)
	}

	templates, err := web.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	r := gin.New()
	r.Use(logger.Recovery(logr))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(metrics))
	}

	handler.Register(r, handler.Routes{
		Auth:           handler.NewAuthHandler(sessions, cfg.Cookies),
		Records:        handler.NewRecordsHandler(records),
		Dashboard:      dashboardHandler,
		Pages:          handler.NewPageHandler(cfg.Session.PingInterval, cfg.Exports.Enabled),
		Metrics:        handler.NewMetricsHandler(metrics),
		Gate:           middleware.Records(sessions, cfg.Cookies.Secure, logr),
		Templates:      templates,
		Static:         web.Static(),
		MetricsEnabled: cfg.Metrics.Enabled,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", server.Addr, "env", cfg.Env)
		serverErrors <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	case <-ctx.Done():
		logr.Info("shutdown started")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logr.Error("graceful shutdown failed", zap.Error(err))
			_ = server.Close()
		}
	}
}
