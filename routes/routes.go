package routes

import (
	"log/slog"
	"net/http"

	"github.com/ZAKARYA123J/teamhub/docs"
	"github.com/ZAKARYA123J/teamhub/handlers"
	"github.com/ZAKARYA123J/teamhub/middleware"
	"github.com/ZAKARYA123J/teamhub/models"
	"github.com/ZAKARYA123J/teamhub/ratelimit"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Deps collects everything the router wires together.
type Deps struct {
	Logger        *slog.Logger
	Authenticator *middleware.Authenticator

	Limiter        ratelimit.Limiter
	LoginRateLimit int
	AllowedOrigins []string

	Auth          *handlers.AuthHandler
	Admin         *handlers.AdminHandler
	Groups        *handlers.GroupHandler
	Players       *handlers.PlayerHandler
	Coach         *handlers.CoachHandler
	Notifications *handlers.NotificationHandler
}

func SetupRoutes(router chi.Router, d Deps) {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("teamhub API is running"))
	})

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(docs.OpenAPI)
	})
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	allow := func(roles ...models.Role) func(http.Handler) http.Handler {
		return middleware.Authorize(logger, roles...)
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", d.Auth.Register)
			r.With(middleware.LoginRateLimit(d.Limiter, d.LoginRateLimit, logger)).Post("/login", d.Auth.Login)
			r.With(d.Authenticator.Authenticate).Get("/me", d.Auth.Me)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.With(d.Authenticator.AuthenticateWebSocket).Get("/ws", d.Notifications.ServeWs)
			r.With(d.Authenticator.Authenticate, allow(models.RoleAdmin)).Post("/broadcast", d.Notifications.Broadcast)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(d.Authenticator.Authenticate)
			r.Use(allow(models.RoleAdmin))

			r.Get("/", d.Admin.ListAccounts)
			r.Get("/staff", d.Admin.ListStaff)
			r.Get("/coaches", d.Admin.ListCoaches)
			r.Get("/users/{id}", d.Admin.GetAccount)

			r.Route("/group", func(r chi.Router) {
				r.Post("/", d.Groups.CreateGroup)
				r.Get("/", d.Groups.ListGroups)
				r.Get("/{id}", d.Groups.GetGroup)
				r.Put("/{id}", d.Groups.UpdateGroup)
				r.Delete("/{id}", d.Groups.DeleteGroup)
				r.Get("/{id}/players", d.Groups.ListGroupPlayers)
				r.Post("/{id}/players/{playerId}", d.Groups.AddPlayer)
				r.Delete("/{id}/players/{playerId}", d.Groups.RemovePlayer)
			})

			r.Route("/players", func(r chi.Router) {
				r.Post("/", d.Players.CreatePlayer)
				r.Get("/", d.Players.ListPlayers)
				r.Get("/{id}", d.Players.GetPlayer)
				r.Put("/{id}", d.Players.UpdatePlayer)
				r.Delete("/{id}", d.Players.DeletePlayer)
				r.Post("/{id}/photo", d.Players.UploadPhoto)
			})

			r.Put("/{id}", d.Admin.UpdateAccount)
			r.Delete("/{id}", d.Admin.DeleteAccount)
		})

		r.Route("/coach", func(r chi.Router) {
			r.Use(d.Authenticator.Authenticate)

			r.With(allow(models.RoleCoach)).Get("/groups", d.Coach.MyGroups)
			r.With(allow(models.RoleCoach, models.RoleStaff)).Get("/players", d.Coach.Roster)
		})
	})
}
