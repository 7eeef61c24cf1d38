package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinova/clinova/internal/config"
	"github.com/clinova/clinova/internal/domain/assistant"
	"github.com/clinova/clinova/internal/domain/client"
	"github.com/clinova/clinova/internal/domain/company"
	"github.com/clinova/clinova/internal/domain/professional"
	"github.com/clinova/clinova/internal/domain/records"
	"github.com/clinova/clinova/internal/domain/user"
	"github.com/clinova/clinova/internal/platform/db"
	"github.com/clinova/clinova/internal/platform/middleware"
	"github.com/clinova/clinova/internal/platform/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinova-server",
		Short: "Clinic management API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// Session token service backed by the external identity provider
	verifier := token.NewFirebaseVerifier(cfg.FirebaseProjectID, cfg.FirebaseJWKSURL)
	tokenSvc, err := token.NewService(token.Config{
		Secret:     []byte(cfg.JWTSecretKey),
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  time.Duration(cfg.AccessTokenExpireMinutes) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTokenExpireDays) * 24 * time.Hour,
	}, verifier)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token service")
	}

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.RequestTimeout(30 * time.Second))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))
	e.Use(token.RequireAuth(tokenSvc, token.AuthSkipper))
	e.Use(middleware.Audit(logger))

	// Health checks
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	apiV1 := e.Group("/api/v1")

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	// -- Repositories --
	authUserRepo := user.NewAuthUserRepoPG(pool)
	userRepo := user.NewUserRepoPG(pool)
	addressRepo := user.NewAddressRepoPG(pool)
	companyRepo := company.NewCompanyRepoPG(pool)
	professionalRepo := professional.NewProfessionalRepoPG(pool)
	specialtyRepo := professional.NewSpecialtyRepoPG(pool)
	professionRepo := professional.NewProfessionRepoPG(pool)
	clientRepo := client.NewClientRepoPG(pool)
	assistantRepo := assistant.NewAssistantRepoPG(pool)
	recordRepo := records.NewRecordRepoPG(pool)
	visitRepo := records.NewVisitRepoPG(pool)
	followUpRepo := records.NewFollowUpRepoPG(pool)
	examRepo := records.NewExamRepoPG(pool)
	supportRepo := records.NewDecisionSupportRepoPG(pool)

	// -- Services --
	userSvc := user.NewService(authUserRepo, userRepo, addressRepo, tokenSvc)
	companySvc := company.NewService(companyRepo, userRepo, addressRepo)
	professionalSvc := professional.NewService(professionalRepo, specialtyRepo, professionRepo, userRepo)
	clientSvc := client.NewService(clientRepo, authUserRepo, userRepo, addressRepo, companyRepo, tokenSvc)
	assistantSvc := assistant.NewService(assistantRepo, userRepo, companyRepo, professionalRepo)
	recordsSvc := records.NewService(recordRepo, visitRepo, followUpRepo, examRepo, supportRepo)

	// -- Handlers --
	user.NewHandler(userSvc).RegisterRoutes(apiV1)
	company.NewHandler(companySvc).RegisterRoutes(apiV1)
	professional.NewHandler(professionalSvc).RegisterRoutes(apiV1)
	client.NewHandler(clientSvc).RegisterRoutes(apiV1)
	assistant.NewHandler(assistantSvc).RegisterRoutes(apiV1)
	records.NewHandler(recordsSvc, assistantSvc).RegisterRoutes(apiV1)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
