package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/foodcircle/foodcircle-backend/api/controllers"
	"github.com/foodcircle/foodcircle-backend/api/routes"
	"github.com/foodcircle/foodcircle-backend/internal/auth"
	"github.com/foodcircle/foodcircle-backend/internal/claims"
	"github.com/foodcircle/foodcircle-backend/internal/gamification"
	"github.com/foodcircle/foodcircle-backend/internal/listings"
	"github.com/foodcircle/foodcircle-backend/internal/notifications"
	"github.com/foodcircle/foodcircle-backend/internal/reviews"
	"github.com/foodcircle/foodcircle-backend/internal/users"
	"github.com/foodcircle/foodcircle-backend/pkg/auth/session"
	"github.com/foodcircle/foodcircle-backend/pkg/config"
	"github.com/foodcircle/foodcircle-backend/pkg/db"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
	"github.com/foodcircle/foodcircle-backend/pkg/mailer"
	"github.com/foodcircle/foodcircle-backend/pkg/maps"
	"github.com/foodcircle/foodcircle-backend/pkg/migrate"
	"github.com/foodcircle/foodcircle-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	var geocoder listings.Geocoder
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey)
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
		geocoder = mapsClient
	} else {
		logg.Warn(context.Background(), "maps api key not set, map enrichment disabled")
	}

	usersRepo := users.NewRepository(dbClient.DB())
	listingsRepo := listings.NewRepository(dbClient.DB())
	claimsRepo := claims.NewRepository(dbClient.DB())
	reviewsRepo := reviews.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())
	gamificationRepo := gamification.NewRepository(dbClient.DB())

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	gamificationService, err := gamification.NewService(gamificationRepo, notificationsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create gamification service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:        dbClient,
		UserRepoFactory: func(tx *gorm.DB) auth.RegisterUserRepository { return usersRepo.WithTx(tx) },
		PasswordConfig:  cfg.Password,
		Notifier:        notificationsService,
		Logger:          logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	profileService, err := auth.NewProfileService(usersRepo, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	listingsService, err := listings.NewService(listingsRepo, geocoder, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create listings service", err)
		os.Exit(1)
	}

	claimsService, err := claims.NewService(claims.ServiceParams{
		TxRunner:       dbClient,
		Repo:           claimsRepo,
		Listings:       listingsRepo,
		Users:          usersRepo,
		Notifier:       notificationsService,
		Mailer:         mailer.New(cfg.SMTP),
		Gamification:   gamificationService,
		ReservationTTL: cfg.Claims.ReservationTTL(),
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create claims service", err)
		os.Exit(1)
	}

	reviewsService, err := reviews.NewService(reviews.ServiceParams{
		Repo:     reviewsRepo,
		Claims:   claimsRepo,
		Listings: listingsRepo,
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	handler := routes.NewRouter(cfg, logg, sessionManager, redisClient, routes.Services{
		Auth:          authService,
		Register:      registerService,
		Profile:       profileService,
		Listings:      listingsService,
		Claims:        claimsService,
		Reviews:       reviewsService,
		Notifications: notificationsService,
		Gamification:  gamificationService,
	},
		controllers.ReadinessCheck{Name: "postgres", Ping: dbClient.Ping},
		controllers.ReadinessCheck{Name: "redis", Ping: redisClient.Ping},
	)

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
