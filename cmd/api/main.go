package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/dealer-crm/internal/audit"
	"github.com/BruksfildServices01/dealer-crm/internal/config"
	dbpkg "github.com/BruksfildServices01/dealer-crm/internal/db"
	"github.com/BruksfildServices01/dealer-crm/internal/domain/session"
	infraRepo "github.com/BruksfildServices01/dealer-crm/internal/infra/repository"
	"github.com/BruksfildServices01/dealer-crm/internal/logging"
	"github.com/BruksfildServices01/dealer-crm/internal/routes"
	"github.com/BruksfildServices01/dealer-crm/internal/telemetry"
	ucUser "github.com/BruksfildServices01/dealer-crm/internal/usecase/user"
)

var cfgFile string

func main() {
	// A missing .env is fine; real deployments use the environment.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "dealer-crm",
		Short: "Service appointment CRM backend",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	})
	rootCmd.AddCommand(bootstrapAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	flags := cmd.PersistentFlags()

	flags.StringVar(&cfgFile, "config", "", "Path to configuration file")
	flags.String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	flags.String("database-driver", defaults.GetString("database.driver"), "Database driver (postgres, sqlite)")
	flags.String("database-url", defaults.GetString("database.url"), "Database DSN")
	flags.String("session-backend", defaults.GetString("session.backend"), "Session store (database, redis)")
	flags.Int("session-ttl-hours", defaults.GetInt("session.ttl_hours"), "Session lifetime in hours")
	flags.String("redis-address", defaults.GetString("redis.address"), "Redis address for the redis session store")
	flags.String("timezone", defaults.GetString("app.timezone"), "IANA timezone used for today/tomorrow")
	flags.String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	flags.String("signing-secret", "", "Session signing secret (overrides env)")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "database.driver", "database-driver")
	bindFlag(cmd, "database.url", "database-url")
	bindFlag(cmd, "session.backend", "session-backend")
	bindFlag(cmd, "session.ttl_hours", "session-ttl-hours")
	bindFlag(cmd, "redis.address", "redis-address")
	bindFlag(cmd, "app.timezone", "timezone")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "session.signing_secret", "signing-secret")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	// Without --config every key comes from defaults, env and flags.
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		return err
	}
	return nil
}

// app holds what both subcommands need.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func setup() (*app, func(), error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}

	db, err := dbpkg.NewDB(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, err
	}

	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = logger.Sync()
	}
	return &app{cfg: cfg, logger: logger, db: db}, cleanup, nil
}

func sessionStore(ctx context.Context, a *app) (session.Store, func(), error) {
	if a.cfg.SessionBackend != config.SessionBackendRedis {
		return infraRepo.NewSessionGormStore(a.db), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddress,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("redis: %w", err)
	}

	a.logger.Info("using redis session store", zap.String("address", a.cfg.RedisAddress))
	return infraRepo.NewSessionRedisStore(client, time.Now), func() { _ = client.Close() }, nil
}

func runServer(ctx context.Context) error {
	a, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	shutdownTracing := telemetry.Setup(ctx, routes.ServiceName, a.cfg.OTelEndpoint, a.cfg.OTelInsecure, a.logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	sessions, closeSessions, err := sessionStore(ctx, a)
	if err != nil {
		return err
	}
	defer closeSessions()

	auditDispatcher := audit.NewDispatcher(audit.New(a.db, time.Now), a.logger)
	defer auditDispatcher.Close()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	if err := routes.RegisterRoutes(r, a.db, a.cfg, routes.Infra{
		Sessions: sessions,
		Audit:    auditDispatcher,
		Clock:    time.Now,
		Logger:   a.logger,
	}); err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", zap.String("address", a.cfg.Addr()))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		a.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func bootstrapAdminCmd() *cobra.Command {
	var username, password, name string

	cmd := &cobra.Command{
		Use:   "bootstrap-admin",
		Short: "Create the primary CRM account if it does not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			if username == "" {
				username = a.cfg.PrimaryAdmin
			}
			if password == "" {
				password = os.Getenv("CRM_BOOTSTRAP_PASSWORD")
			}
			if password == "" {
				return errors.New("--password or CRM_BOOTSTRAP_PASSWORD is required")
			}

			svc, err := ucUser.NewService(ucUser.ServiceConfig{
				Repository:   infraRepo.NewUserGormRepository(a.db),
				PrimaryAdmin: a.cfg.PrimaryAdmin,
				Logger:       a.logger,
			})
			if err != nil {
				return err
			}

			u, created, err := svc.Bootstrap(cmd.Context(), username, password, name)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", u.Username, u.UserID)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists (%s)\n", u.Username, u.UserID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Admin username (defaults to app.primary_admin)")
	cmd.Flags().StringVar(&password, "password", "", "Admin password")
	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	return cmd
}
