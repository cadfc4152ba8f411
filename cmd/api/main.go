package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	_ "github.com/redmonkez12/wasteless-api/docs" // Swagger docs
	"github.com/redmonkez12/wasteless-api/internal/auth"
	"github.com/redmonkez12/wasteless-api/internal/config"
	"github.com/redmonkez12/wasteless-api/internal/database"
	"github.com/redmonkez12/wasteless-api/internal/email"
	"github.com/redmonkez12/wasteless-api/internal/food"
	"github.com/redmonkez12/wasteless-api/internal/geocode"
	"github.com/redmonkez12/wasteless-api/internal/history"
	httpServer "github.com/redmonkez12/wasteless-api/internal/http"
	"github.com/redmonkez12/wasteless-api/internal/logging"
	"github.com/redmonkez12/wasteless-api/internal/ratelimit"
	"github.com/redmonkez12/wasteless-api/internal/recommend"
	"github.com/redmonkez12/wasteless-api/internal/storage"
	"github.com/redmonkez12/wasteless-api/internal/user"
)

// @title           Wasteless API
// @version         1.0
// @description     Food donation backend: post surplus food, browse listings recommended from your request history, and track pickups.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"auth_mode", cfg.Auth.Mode,
	)

	ctx := context.Background()

	// Initialize database connection
	db, err := database.Open(ctx, cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("database migrations applied")
	}

	// Initialize Redis connection
	redisClient, err := initRedis(ctx, cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	// External collaborators
	uploader, err := storage.NewS3Uploader(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	geocoder := geocode.NewGoogleClient(cfg.Geocoder.APIKey, cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout)
	recommender := recommend.NewClient(cfg.Recommender.URL, cfg.Recommender.Timeout)

	var notifier history.Notifier = email.Noop{}
	if cfg.Email.SMTPHost != "" {
		emailService, err := email.NewService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FrontendURL,
		)
		if err != nil {
			return fmt.Errorf("failed to initialize email service: %w", err)
		}
		notifier = emailService
	} else {
		logger.Warn("SMTP_HOST not set, email notifications disabled")
	}

	// Initialize repositories
	userRepo := user.NewRepository(db)
	foodRepo := food.NewRepository(db)
	historyRepo := history.NewRepository(db)
	redisStore := auth.NewRedisStore(redisClient)

	// Token service is only needed for bearer credentials
	var tokens auth.TokenService
	if cfg.Auth.Mode == config.AuthModeBearer {
		tokens, err = auth.NewTokenService(cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize token service: %w", err)
		}
	}

	// Initialize services
	authService := auth.NewService(userRepo, tokens, redisStore, redisStore, logger, auth.Options{
		Mode:                cfg.Auth.Mode,
		AccessTokenDuration: cfg.Auth.AccessTokenDuration,
		SessionDuration:     cfg.Auth.SessionDuration,
		RequireUniqueName:   cfg.Auth.RequireUniqueName,
	})
	foodService := food.NewService(foodRepo, userRepo, geocoder, uploader, recommender, logger)
	userService := user.NewService(userRepo, geocoder, uploader, logger)
	historyService := history.NewService(historyRepo, foodRepo, userRepo, notifier, logger)

	// Expiry reaper
	reaper := food.NewReaper(foodRepo, uploader, logger)
	if cfg.Reaper.Enabled {
		if err := reaper.Start(cfg.Reaper.Schedule); err != nil {
			return err
		}
	}

	// Initialize router
	router := httpServer.NewRouter(cfg, httpServer.Dependencies{
		Auth:           auth.NewHandler(authService, ratelimit.NewLimiter(redisClient), !cfg.Server.IsDevelopment()),
		Food:           food.NewHandler(foodService, cfg.Upload.MaxBytes),
		User:           user.NewHandler(userService, cfg.Upload.MaxBytes),
		History:        history.NewHandler(historyService),
		AuthMiddleware: auth.NewMiddleware(authService),
		UploadLimiter:  ratelimit.NewPerIP(cfg.Upload.RatePerMinute).Middleware,
		Checks: map[string]httpServer.Pinger{
			"postgres": db,
			"redis": httpServer.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		},
	}, logger)

	// Initialize HTTP server
	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
		logger,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("received signal", "signal", sig.String())

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		reaper.Stop(ctx)
		historyService.Wait()
	}

	return nil
}

// initRedis initializes the Redis connection and returns a Redis client
func initRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
