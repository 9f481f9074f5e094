// @title Course Evaluation API
// @version 1.0
// @description Student evaluations of professors with role-scoped statistics and reports.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-eval-api/api/swagger"
	"github.com/noah-isme/course-eval-api/internal/handler"
	"github.com/noah-isme/course-eval-api/internal/middleware"
	"github.com/noah-isme/course-eval-api/internal/models"
	"github.com/noah-isme/course-eval-api/internal/repository"
	"github.com/noah-isme/course-eval-api/internal/service"
	"github.com/noah-isme/course-eval-api/pkg/cache"
	"github.com/noah-isme/course-eval-api/pkg/config"
	"github.com/noah-isme/course-eval-api/pkg/database"
	"github.com/noah-isme/course-eval-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-eval-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-eval-api/pkg/middleware/requestid"
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, question cache disabled", zap.Error(err))
		redisClient = nil
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	handlers, questionCache := buildHandlers(cfg, db, redisClient, logr)
	defer questionCache.Close() //nolint:errcheck

	// Background context so pending audit entries survive the shutdown signal.
	handlers.auditSvc.Start(context.Background())

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	if cfg.Metrics.Enabled {
		r.Use(middleware.Metrics(handlers.metricsSvc))
		r.GET("/metrics", handlers.metrics.Prometheus)
	}
	registerRoutes(r, cfg, handlers)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("server forced to shutdown", zap.Error(err))
	}
	handlers.auditSvc.Stop()
	logr.Info("server exited")
}

type appHandlers struct {
	auth        *handler.AuthHandler
	users       *handler.UserHandler
	evaluations *handler.EvaluationHandler
	statistics  *handler.StatisticsHandler
	reports     *handler.ReportHandler
	metrics     *handler.MetricsHandler

	authSvc    *service.AuthService
	roleSvc    *service.RoleService
	metricsSvc *service.MetricsService
	auditSvc   *service.AuditService
}

func buildHandlers(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) (*appHandlers, *repository.CacheRepository) {
	validate := service.NewValidator()
	metricsSvc := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	professorRepo := repository.NewProfessorRepository(db)
	coordinatorRepo := repository.NewCoordinatorRepository(db)
	deanRepo := repository.NewDeanRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	careerRepo := repository.NewCareerRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewCourseAssignmentRepository(db)
	evaluationRepo := repository.NewEvaluationRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	questionCache := repository.NewCacheRepository(redisClient, "questions", logr)

	roleSvc := service.NewRoleService(roleRepo, userRepo, service.RoleProfiles{
		Professors:   professorRepo,
		Coordinators: coordinatorRepo,
		Deans:        deanRepo,
		Careers:      careerRepo,
	}, validate, logr)
	entities := service.NewEntityResolver(service.EntityRepositories{
		Professors:   professorRepo,
		Students:     studentRepo,
		Coordinators: coordinatorRepo,
		Courses:      courseRepo,
		Groups:       groupRepo,
		Careers:      careerRepo,
	}, logr)
	statsSvc := service.NewEvaluationStatsService(evaluationRepo, entities, metricsSvc, cfg.Reports.RecentLimit, logr)
	reportSvc := service.NewReportService(roleSvc, entities, statsSvc, metricsSvc, logr)
	exportSvc := service.NewReportExportService(reportSvc, logr)
	cacheSvc := service.NewCacheService(questionCache, metricsSvc, cfg.Questions.CacheTTL, logr, cfg.Questions.CacheEnabled && questionCache.Enabled())
	evaluationSvc := service.NewEvaluationService(service.EvaluationDeps{
		Evaluations: evaluationRepo,
		Enrollments: enrollmentRepo,
		Assignments: assignmentRepo,
		Questions:   questionRepo,
		Entities:    entities,
		Roles:       roleSvc,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
	}, validate, logr, cfg.Questions.CacheTTL)
	authSvc := service.NewAuthService(userRepo, roleSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})

	auditSvc := service.NewAuditService(userRepo, service.AuditConfig{
		Workers:    cfg.Audit.Workers,
		BufferSize: cfg.Audit.BufferSize,
		MaxRetries: cfg.Audit.MaxRetries,
	}, logr)

	deps := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		deps["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	return &appHandlers{
		auth:        handler.NewAuthHandler(authSvc),
		users:       handler.NewUserHandler(roleSvc),
		evaluations: handler.NewEvaluationHandler(evaluationSvc),
		statistics:  handler.NewStatisticsHandler(reportSvc),
		reports:     handler.NewReportHandler(reportSvc, exportSvc),
		metrics:     handler.NewMetricsHandler(metricsSvc, deps),
		authSvc:     authSvc,
		roleSvc:     roleSvc,
		metricsSvc:  metricsSvc,
		auditSvc:    auditSvc,
	}, questionCache
}

func registerRoutes(r *gin.Engine, cfg *config.Config, h *appHandlers) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	if cfg.SwaggerDocs || cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", h.auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(h.authSvc))
	secured.GET("/me", h.users.Me)

	guard := func(perm models.Permission) gin.HandlerFunc {
		return middleware.RequirePermission(h.roleSvc, perm)
	}

	users := secured.Group("/users/:id/roles", guard(models.PermManageUsers))
	users.GET("", h.users.ListRoles)
	users.POST("", middleware.Audit(h.auditSvc, models.AuditActionRoleAssign, "user_roles", "id"), h.users.AssignRole)
	users.DELETE("/:role", middleware.Audit(h.auditSvc, models.AuditActionRoleRevoke, "user_roles", "id"), h.users.RevokeRole)

	students := secured.Group("", guard(models.PermSubmitEvaluations))
	students.GET("/students/me/groups", h.evaluations.MyGroups)
	students.GET("/evaluations/questions", h.evaluations.Questions)
	students.POST("/evaluations", h.evaluations.Submit)

	secured.DELETE("/evaluations/questions/cache", guard(models.PermManageFaculty), h.evaluations.InvalidateQuestionCache)

	reports := secured.Group("", guard(models.PermViewReports))
	reports.GET("/professors/:id/statistics", h.statistics.ProfessorStatistics)
	reports.GET("/courses/:id/statistics", h.statistics.CourseStatistics)
	reports.GET("/reports/by-career/:careerId", h.reports.CareerReport)
	reports.GET("/reports/by-career/:careerId/export", h.reports.ExportCareerReport)

	faculty := secured.Group("/reports/all-careers", guard(models.PermViewAllCareers))
	faculty.GET("", h.reports.AllCareers)
	faculty.GET("/export", h.reports.ExportAllCareers)
}
