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

	_ "github.com/campusgrid/timetable-api/api/swagger"
	"github.com/campusgrid/timetable-api/internal/handler"
	"github.com/campusgrid/timetable-api/internal/middleware"
	"github.com/campusgrid/timetable-api/internal/repository"
	"github.com/campusgrid/timetable-api/internal/scheduler"
	"github.com/campusgrid/timetable-api/internal/service"
	"github.com/campusgrid/timetable-api/pkg/cache"
	"github.com/campusgrid/timetable-api/pkg/config"
	"github.com/campusgrid/timetable-api/pkg/database"
	"github.com/campusgrid/timetable-api/pkg/export"
	"github.com/campusgrid/timetable-api/pkg/logger"
	corsmiddleware "github.com/campusgrid/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusgrid/timetable-api/pkg/middleware/requestid"
	"github.com/campusgrid/timetable-api/pkg/storage"
)

// @title CampusGrid Timetable API
// @version 1.0.0
// @description Weekly timetable generation, recommendation and conflict checking
// @BasePath /
// @schemes http

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
	sugar := logr.Sugar()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		sugar.Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		sugar.Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	slotRepo := repository.NewTimeSlotRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	offeringRepo := repository.NewOfferingRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.RecommendationTTL, logr, true)

	snapshot := service.NewSnapshotLoader(
		slotRepo,
		teacherRepo,
		roomRepo,
		courseRepo,
		sectionRepo,
		offeringRepo,
		availabilityRepo,
	)

	engine := scheduler.NewEngine(scheduler.Config{
		DurationEpsilonMin: cfg.Scheduler.DurationEpsilonMin,
		MaxRecommendations: cfg.Scheduler.MaxRecommendations,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var archiveSvc *service.ArchiveService
	if cfg.Exports.Enabled && cfg.Exports.ArchiveDir != "" {
		archiveStore, err := storage.NewLocalStorage(cfg.Exports.ArchiveDir)
		if err != nil {
			sugar.Fatalw("failed to prepare export archive", "error", err)
		}
		archiveSvc = service.NewArchiveService(archiveStore, cfg.Exports.ArchiveRetention, logr)
		archiveSvc.Start(ctx)
		defer archiveSvc.Stop()
	}

	timetableSvc := service.NewTimetableService(snapshot, assignmentRepo, engine, cacheSvc, metricsSvc, logr)
	recommendationSvc := service.NewRecommendationService(snapshot, assignmentRepo, engine, cacheSvc, metricsSvc, cfg.Scheduler.RecommendationTTL, logr)
	assignmentSvc := service.NewAssignmentService(snapshot, assignmentRepo, slotRepo, cacheSvc, logr)
	conflictSvc := service.NewConflictService(snapshot, assignmentRepo, validator.New(), logr)
	var archiveSink service.ExportArchive
	if archiveSvc != nil {
		archiveSink = archiveSvc
	}
	exportSvc := service.NewExportService(snapshot, assignmentRepo, export.NewCSVExporter(), export.NewPDFExporter(), archiveSink, cfg.Exports.Organization, logr)

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	recommendationHandler := handler.NewRecommendationHandler(recommendationSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	conflictHandler := handler.NewConflictHandler(conflictSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db, redisClient)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		timetable := api.Group("/timetable")
		{
			timetable.POST("/generate", timetableHandler.Generate)
			timetable.GET("/recommendations/:offeringId", recommendationHandler.Get)
			timetable.POST("/conflicts/check", conflictHandler.Check)
			if cfg.Exports.Enabled {
				timetable.GET("/export", exportHandler.Export)
			}
		}

		assignments := api.Group("/assignments")
		{
			assignments.GET("", assignmentHandler.List)
			assignments.PUT("/:id/lock", assignmentHandler.Lock)
			assignments.POST("/:id/apply", assignmentHandler.Apply)
			assignments.DELETE("/:id", assignmentHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		sugar.Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		sugar.Errorw("forced shutdown", "error", err)
	}
	sugar.Infow("server stopped")
}
