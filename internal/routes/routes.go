package routes

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/dealer-crm/internal/activity"
	"github.com/BruksfildServices01/dealer-crm/internal/audit"
	"github.com/BruksfildServices01/dealer-crm/internal/auth"
	"github.com/BruksfildServices01/dealer-crm/internal/config"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/session"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/user"
	"github.com/BruksfildServices01/dealer-crm/internal/handlers"
	"github.com/BruksfildServices01/dealer-crm/internal/ids"
	infraRepo "github.com/BruksfildServices01/dealer-crm/internal/infra/repository"
	"github.com/BruksfildServices01/dealer-crm/internal/logging"
	"github.com/BruksfildServices01/dealer-crm/internal/middleware"
	"github.com/BruksfildServices01/dealer-crm/internal/timezone"
	ucAppointment "github.com/BruksfildServices01/dealer-crm/internal/usecase/appointment"
	ucDashboard "github.com/BruksfildServices01/dealer-crm/internal/usecase/dashboard"
	"github.com/BruksfildServices01/dealer-crm/internal/usecase/duplicate"
	ucSettings "github.com/BruksfildServices01/dealer-crm/internal/usecase/settings"
	ucTask "github.com/BruksfildServices01/dealer-crm/internal/usecase/task"
	ucUser "github.com/BruksfildServices01/dealer-crm/internal/usecase/user"
)

const ServiceName = "dealer-crm"

// Infra carries the process-level collaborators built by main.
type Infra struct {
	Sessions   session.Store
	Audit      audit.Recorder
	Clock      func() time.Time
	IDs        ids.Generator
	Logger     *zap.Logger
	BcryptCost int
}

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, infra Infra) error {
	if infra.Sessions == nil {
		return errors.New("routes: session store is required")
	}
	if infra.Clock == nil {
		infra.Clock = time.Now
	}
	if infra.IDs == nil {
		infra.IDs = ids.NewUUIDGenerator()
	}
	logger := logging.OrNop(infra.Logger)
	loc := timezone.Location(cfg.Timezone)

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(gin.Recovery())
	if cfg.OTelEndpoint != "" {
		r.Use(otelgin.Middleware(ServiceName))
	}
	r.Use(middleware.Observe(logger))
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	userRepo := infraRepo.NewUserGormRepository(db)
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)
	taskRepo := infraRepo.NewTaskGormRepository(db)
	activityRepo := infraRepo.NewActivityGormRepository(db)
	settingsRepo := infraRepo.NewSettingsGormRepository(db)
	dashboardRepo := infraRepo.NewDashboardGormRepository(db)

	// ======================================================
	// SERVICES
	// ======================================================
	authService, err := auth.NewService(auth.ServiceConfig{
		Users:    userRepo,
		Sessions: infra.Sessions,
		Secret:   []byte(cfg.JWTSecret),
		TTL:      cfg.SessionTTL,
		IDs:      infra.IDs,
		Clock:    infra.Clock,
		Audit:    infra.Audit,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	userService, err := ucUser.NewService(ucUser.ServiceConfig{
		Repository:   userRepo,
		IDs:          infra.IDs,
		Clock:        infra.Clock,
		PrimaryAdmin: cfg.PrimaryAdmin,
		BcryptCost:   infra.BcryptCost,
		Audit:        infra.Audit,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	settingsService, err := ucSettings.NewService(ucSettings.ServiceConfig{
		Repository: settingsRepo,
		IDs:        infra.IDs,
		Clock:      infra.Clock,
		Audit:      infra.Audit,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	activityLogger := activity.NewLogger(activityRepo, infra.IDs, infra.Clock)
	duplicates := duplicate.NewDetector(appointmentRepo, loc, infra.Clock)
	scheduler := ucTask.NewScheduler(taskRepo, appointmentRepo, infra.IDs, infra.Clock, logger)
	aggregator := ucDashboard.NewAggregator(dashboardRepo, userRepo, loc, infra.Clock)

	// ======================================================
	// USE CASES: APPOINTMENTS
	// ======================================================
	opts := ucAppointment.Options{
		BookingPrefix: cfg.BookingPrefix,
		Location:      loc,
		Clock:         infra.Clock,
		IDs:           infra.IDs,
		Logger:        logger,
	}

	createAppointmentUC := ucAppointment.NewCreateAppointment(appointmentRepo, duplicates, activityLogger, scheduler, opts)
	updateAppointmentUC := ucAppointment.NewUpdateAppointment(appointmentRepo, settingsService, activityLogger, scheduler, opts)
	getAppointmentUC := ucAppointment.NewGetAppointment(appointmentRepo)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo, opts)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(authService, cfg.SessionCookieName)
	userHandler := handlers.NewUserHandler(userService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		updateAppointmentUC,
		getAppointmentUC,
		listAppointmentsUC,
		duplicates,
		activityLogger,
	)
	taskHandler := handlers.NewTaskHandler(scheduler)
	dashboardHandler := handlers.NewDashboardHandler(aggregator)
	auditLogsHandler := handlers.NewAuditLogsHandler(db, loc)

	// ======================================================
	// OPERATIONS
	// ======================================================
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(authService, cfg.SessionCookieName))
		{
			secured.GET("/auth/me", authHandler.Me)

			// ------------------------------
			// USERS
			// ------------------------------
			secured.GET("/users/cres", userHandler.ListCREs)

			users := secured.Group("/users")
			users.Use(middleware.RequireRole(user.RoleCRM))
			{
				users.GET("", userHandler.List)
				users.POST("", userHandler.Create)
				users.PUT("/:id", userHandler.Update)
				users.DELETE("/:id", userHandler.Delete)
				users.POST("/:id/reset-password", userHandler.ResetPassword)
				users.POST("/:id/toggle-lock", userHandler.ToggleLock)
			}

			// ------------------------------
			// SETTINGS
			// ------------------------------
			secured.GET("/settings", settingsHandler.Get)
			secured.PUT("/settings", settingsHandler.Update)

			secured.GET("/branches", settingsHandler.ListBranches)
			secured.POST("/branches", settingsHandler.CreateBranch)
			secured.PUT("/branches/:id", settingsHandler.UpdateBranch)
			secured.DELETE("/branches/:id", settingsHandler.DeleteBranch)

			secured.GET("/user-preferences/:page", settingsHandler.GetPreference)
			secured.PUT("/user-preferences/:page", settingsHandler.SavePreference)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments", appointmentHandler.List)
			secured.GET("/appointments/duplicates/check", appointmentHandler.CheckDuplicates)
			secured.GET("/appointments/:id", appointmentHandler.Get)
			secured.PUT("/appointments/:id", appointmentHandler.Update)
			secured.GET("/appointments/:id/activity", appointmentHandler.Activity)

			// ------------------------------
			// TASKS / DASHBOARD
			// ------------------------------
			secured.GET("/tasks", taskHandler.List)
			secured.PUT("/tasks/:id", taskHandler.Complete)

			secured.GET("/dashboard/stats", dashboardHandler.Stats)

			secured.GET("/audit-logs", middleware.RequireRole(user.RoleCRM), auditLogsHandler.List)
		}
	}

	return nil
}
