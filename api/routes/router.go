package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodcircle/foodcircle-backend/api/controllers"
	"github.com/foodcircle/foodcircle-backend/api/middleware"
	"github.com/foodcircle/foodcircle-backend/internal/auth"
	"github.com/foodcircle/foodcircle-backend/internal/claims"
	"github.com/foodcircle/foodcircle-backend/internal/gamification"
	"github.com/foodcircle/foodcircle-backend/internal/listings"
	"github.com/foodcircle/foodcircle-backend/internal/notifications"
	"github.com/foodcircle/foodcircle-backend/internal/reviews"
	"github.com/foodcircle/foodcircle-backend/pkg/auth/session"
	"github.com/foodcircle/foodcircle-backend/pkg/config"
	"github.com/foodcircle/foodcircle-backend/pkg/logger"
)

// Services bundles everything the HTTP surface depends on.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Profile       auth.ProfileService
	Listings      listings.Service
	Claims        claims.Service
	Reviews       reviews.Service
	Notifications notifications.Service
	Gamification  gamification.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessionChecker session.AccessSessionChecker,
	rateStore middleware.RateLimiterStore,
	svcs Services,
	checks ...controllers.ReadinessCheck,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, checks...))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(svcs.Register, svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))

		r.Post("/auth/logout", controllers.AuthLogout(svcs.Auth, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.GetProfile(svcs.Profile, logg))
			r.Put("/", controllers.UpdateProfile(svcs.Profile, logg))
			r.Post("/password", controllers.ChangePassword(svcs.Profile, logg))
		})

		r.Route("/listings", func(r chi.Router) {
			r.Post("/", controllers.CreateListing(svcs.Listings, logg))
			r.Get("/", controllers.ListAvailableListings(svcs.Listings, logg))
			r.Get("/mine", controllers.ListMyListings(svcs.Listings, logg))
			r.Get("/{listingId}", controllers.GetListing(svcs.Listings, logg))
			r.Post("/{listingId}/claim", controllers.ClaimListing(svcs.Claims, logg))
		})

		r.Route("/claims", func(r chi.Router) {
			r.Get("/", controllers.ListMyClaims(svcs.Claims, logg))
			r.Get("/incoming", controllers.ListIncomingClaims(svcs.Claims, logg))
			r.Post("/{claimId}/complete", controllers.CompleteClaim(svcs.Claims, logg))
			r.Post("/{claimId}/review", controllers.SubmitReview(svcs.Reviews, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svcs.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(svcs.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svcs.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svcs.Notifications, logg))
			r.Delete("/", controllers.ClearNotifications(svcs.Notifications, logg))
		})

		r.Route("/users/{userId}", func(r chi.Router) {
			r.Get("/rating", controllers.GetUserRating(svcs.Reviews, logg))
			r.Get("/reviews", controllers.ListUserReviews(svcs.Reviews, logg))
			r.Get("/badges", controllers.GetUserBadges(svcs.Gamification, logg))
		})

		r.Get("/stats", controllers.GetMyStats(svcs.Gamification, logg))
	})

	return r
}
