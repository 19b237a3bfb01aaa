package routes

import (
	"net/http"

	"github.com/Dosada05/poker-club/handlers"
	"github.com/Dosada05/poker-club/metrics"
	"github.com/Dosada05/poker-club/middleware"
	"github.com/Dosada05/poker-club/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/poker-club/docs"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Player        *handlers.PlayerHandler
	Tournament    *handlers.TournamentHandler
	Participation *handlers.ParticipationHandler
	Statistics    *handlers.StatisticsHandler
	Admin         *handlers.AdminHandler
	WebSocket     *handlers.WebSocketHandler
}

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
}

func SetupRoutes(router chi.Router, h Handlers, opts Options) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	if opts.Metrics != nil {
		router.Use(middleware.Instrument(opts.Metrics))
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.MetricsHandler != nil {
		router.Handle("/metrics", opts.MetricsHandler)
	}
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	router.Get("/ws/scoreboard", h.WebSocket.ServeScoreboard)
	router.Get("/ws/tournaments/{tournamentID}", h.WebSocket.ServeTournament)

	authenticated := func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))
		r.Use(middleware.RequireRole(models.RoleAdmin))
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)
		r.Get("/scoreboard", h.Statistics.Scoreboard)
		r.Get("/statistics", h.Statistics.ClubStatistics)

		r.Route("/players", func(r chi.Router) {
			// Публичные маршруты для просмотра игроков
			r.Get("/", h.Player.ListPlayers)
			r.Get("/{playerID}", h.Player.GetPlayer)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Put("/{playerID}", h.Player.UpdatePlayer)
				r.Delete("/{playerID}", h.Player.DeletePlayer)
				r.Post("/{playerID}/avatar", h.Player.UploadAvatar)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.ListTournaments)
			r.Get("/{tournamentID}", h.Tournament.GetTournament)
			r.Get("/{tournamentID}/players", h.Participation.ListParticipants)

			// Результаты и управление турнирами только для администраторов
			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Post("/", h.Tournament.CreateTournament)
				r.Put("/{tournamentID}", h.Tournament.UpdateTournament)
				r.Delete("/{tournamentID}", h.Tournament.DeleteTournament)
				r.Post("/{tournamentID}/logo", h.Tournament.UploadLogo)

				r.Post("/{tournamentID}/players", h.Participation.AddPlayer)
				r.Delete("/{tournamentID}/players", h.Participation.RemovePlayer)
				r.Patch("/{tournamentID}/players", h.Participation.UpdateResult)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Get("/db-health", h.Admin.DBHealth)

			r.Group(func(r chi.Router) {
				authenticated(r)
				r.Post("/players", h.Player.CreatePlayer)
				r.Get("/audit-logs", h.Admin.ListAuditLogs)
			})
		})
	})
}
