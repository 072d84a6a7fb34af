package main

import (
	"context"
	"fmt"
	"log"
	"net/http/pprof"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ashgrove/schedcore/api/swagger"
	"github.com/ashgrove/schedcore/internal/engine"
	internalhandler "github.com/ashgrove/schedcore/internal/handler"
	"github.com/ashgrove/schedcore/internal/intake"
	internalmiddleware "github.com/ashgrove/schedcore/internal/middleware"
	"github.com/ashgrove/schedcore/internal/repository"
	"github.com/ashgrove/schedcore/internal/service"
	"github.com/ashgrove/schedcore/pkg/cache"
	"github.com/ashgrove/schedcore/pkg/config"
	"github.com/ashgrove/schedcore/pkg/database"
	"github.com/ashgrove/schedcore/pkg/jobs"
	"github.com/ashgrove/schedcore/pkg/logger"
	corsmiddleware "github.com/ashgrove/schedcore/pkg/middleware/cors"
	reqidmiddleware "github.com/ashgrove/schedcore/pkg/middleware/requestid"
)

// @title Schedcore Optimisation Gateway
// @version 0.1.0
// @description HTTP surface around the timetabling optimisation core
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	metricsHandler := internalhandler.NewMetricsHandler(metricsSvc)

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to initialise database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, job status will not survive restarts", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	assignmentRepo := repository.NewAssignmentRepository(db)
	jobRepo := repository.NewJobRepository(db)

	eng := engine.New(logr)
	in := intake.New(logr)
	schedulingSvc := service.NewSchedulingService(eng, in, assignmentRepo, db, logr, service.SchedulingConfig{
		ProposalTTL: cfg.Scheduler.ProposalTTL,
	})

	jobRunner := service.NewJobRunnerService(jobRepo, redisClient, schedulingSvc, metricsSvc, logr, service.JobRunnerConfig{
		QueueConfig: jobs.QueueConfig{
			Workers:    cfg.Jobs.Workers,
			BufferSize: cfg.Jobs.BufferSize,
			MaxRetries: cfg.Jobs.MaxRetries,
			RetryDelay: cfg.Jobs.RetryDelay,
		},
	})
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	jobRunner.Start(jobCtx)
	defer func() {
		cancelJobs()
		jobRunner.Stop()
	}()

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		Secret:      cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
	})

	schedulingHandler := internalhandler.NewSchedulingHandler(schedulingSvc, jobRunner)
	exportHandler := internalhandler.NewExportHandler(assignmentRepo)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if gin.Mode() != gin.ReleaseMode {
		debug := r.Group("/debug/pprof")
		debug.GET("/", gin.WrapF(pprof.Index))
		debug.GET("/profile", gin.WrapF(pprof.Profile))
		debug.GET("/trace", gin.WrapF(pprof.Trace))
	}

	v1 := r.Group(cfg.APIPrefix)
	if cfg.Scheduler.Enabled {
		v1.POST("/optimise", schedulingHandler.Optimise)
		v1.POST("/proposals/:proposal_id/commit", schedulingHandler.Commit)

		jobsGroup := v1.Group("/jobs")
		jobsGroup.Use(internalmiddleware.JWT(authSvc))
		jobsGroup.POST("", schedulingHandler.SubmitJob)
		jobsGroup.GET("/:id", schedulingHandler.JobStatus)

		v1.GET("/runs/:run_id/export.csv", exportHandler.CSV)
		v1.GET("/runs/:run_id/export.pdf", exportHandler.PDF)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("starting server", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server exited", "error", err)
	}
}
