package routes

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/sports-center/docs"
	"github.com/Dosada05/sports-center/handlers"
	"github.com/Dosada05/sports-center/middleware"
)

type Handlers struct {
	Auth        *handlers.AuthHandler
	Facility    *handlers.FacilityHandler
	Reservation *handlers.ReservationHandler
	Tournament  *handlers.TournamentHandler
	Membership  *handlers.MembershipHandler
	Payment     *handlers.PaymentHandler
	Admin       *handlers.AdminHandler
	WebSocket   *handlers.WebSocketHandler
}

type Options struct {
	Resolver    middleware.IdentityResolver
	CORSOrigins []string
	// Redis backs the rate limiter; nil disables it.
	Redis     *redis.Client
	RateLimit middleware.RateLimitConfig
	Logger    *slog.Logger
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusNotFound, "Recurso no encontrado")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeMessage(w, http.StatusMethodNotAllowed, "Método no permitido")
	})

	rateLimit := middleware.RateLimit(opts.RateLimit, opts.Redis, opts.Logger)
	authenticate := middleware.Authenticate(opts.Resolver)

	router.Get("/ping", ping)
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Route("/ws", func(r chi.Router) {
		r.Get("/facilities/{facilityID}", h.WebSocket.ServeFacility)
		r.Get("/tournaments/{tournamentID}", h.WebSocket.ServeTournament)
	})

	// Public routes.
	router.Group(func(r chi.Router) {
		r.Use(rateLimit)

		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		r.Get("/facilities", h.Facility.List)
		r.Get("/facilities/{facilityID}", h.Facility.Get)
		r.Get("/facilities/{facilityID}/availability", h.Facility.Availability)

		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(opts.Resolver))
			r.Get("/tournaments", h.Tournament.List)
			r.Get("/tournaments/{tournamentID}", h.Tournament.Get)
			r.Get("/tournaments/{tournamentID}/bracket", h.Tournament.Bracket)
		})
	})

	// Authenticated routes.
	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Use(rateLimit)

		r.Get("/auth/me", h.Auth.Me)
		r.Post("/auth/logout", h.Auth.Logout)

		r.Post("/payments", h.Payment.Process)

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", h.Reservation.List)
			r.Post("/", h.Reservation.Create)
			r.Post("/quote", h.Reservation.Quote)
			r.Get("/{reservationID}/refund", h.Reservation.RefundPreview)
			r.Post("/{reservationID}/cancel", h.Reservation.Cancel)
			r.Delete("/{reservationID}", h.Reservation.Delete)
		})

		r.Get("/tournaments/mine", h.Tournament.Mine)
		r.Post("/tournaments/{tournamentID}/enroll", h.Tournament.Enroll)
		r.Post("/tournaments/{tournamentID}/withdraw", h.Tournament.Withdraw)

		r.Route("/membership", func(r chi.Router) {
			r.Get("/", h.Membership.Status)
			r.Post("/subscribe", h.Membership.Subscribe)
			r.Post("/cancel", h.Membership.Cancel)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)

			r.Get("/stats", h.Admin.Stats)
			r.Get("/enrollments", h.Admin.Enrollments)

			r.Route("/facilities", func(r chi.Router) {
				r.Get("/", h.Facility.ListAll)
				r.Post("/", h.Facility.Create)
				r.Put("/{facilityID}", h.Facility.Update)
				r.Delete("/{facilityID}", h.Facility.Delete)
				r.Post("/{facilityID}/image", h.Facility.UploadImage)
			})

			r.Route("/tournaments", func(r chi.Router) {
				r.Get("/", h.Tournament.ListAll)
				r.Post("/", h.Tournament.Create)
				r.Put("/{tournamentID}", h.Tournament.Update)
				r.Delete("/{tournamentID}", h.Tournament.Delete)
			})
		})
	})
}

func ping(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":      true,
		"message": "pong",
		"time":    time.Now().Format(time.RFC3339),
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
