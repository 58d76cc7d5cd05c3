package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/blog-be/internal/api/handlers"
	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/isdelr/blog-be/internal/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"
)

// Dependencies bundles everything the router wires into handlers.
type Dependencies struct {
	DB             *sql.DB
	Hub            *websocket.Hub
	Tokens         *auth.TokenService
	UserService    services.UserServiceProvider
	PostService    services.PostServiceProvider
	CommentService services.CommentServiceProvider
	EventService   services.EventServiceProvider
	CORSOrigins    []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(log.Logger))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("Request handled")
	}))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	guard := auth.NewGuard(deps.Tokens, deps.UserService)
	userHandler := handlers.NewUserHandler(deps.UserService, deps.Tokens, deps.SecureCookies)
	postHandler := handlers.NewPostHandler(deps.PostService)
	commentHandler := handlers.NewCommentHandler(deps.CommentService)
	eventHandler := handlers.NewEventHandler(deps.EventService)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.CORSOrigins)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	r.Get("/healthz", healthHandler.Check)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", wsHandler.Serve)

	r.Post("/signup", userHandler.Signup)
	r.Post("/login", userHandler.Login)
	r.With(guard.Middleware).Get("/me", userHandler.GetMe)
	r.With(guard.Middleware).Get("/events", eventHandler.GetRecent)

	r.Route("/posts", func(r chi.Router) {
		r.Get("/", postHandler.GetAll)
		r.With(guard.Middleware).Post("/", postHandler.Create)

		r.Route("/{postId}", func(r chi.Router) {
			r.Get("/", postHandler.Get)
			r.With(guard.Middleware).Put("/", postHandler.Update)
			r.With(guard.Middleware).Delete("/", postHandler.Delete)

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", commentHandler.GetAll)
				r.With(guard.Middleware).Post("/", commentHandler.Create)
				r.With(guard.Middleware).Put("/{commentId}", commentHandler.Update)
				r.With(guard.Middleware).Delete("/{commentId}", commentHandler.Delete)
			})
		})
	})

	return r
}
