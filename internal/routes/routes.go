package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/scribe/internal/auth"
	"github.com/BradenHooton/scribe/internal/handlers"
	"github.com/BradenHooton/scribe/internal/middleware"
	pkghttp "github.com/BradenHooton/scribe/pkg/http"
)

// Handlers groups everything the API routes dispatch to
type Handlers struct {
	Auth     *handlers.AuthHandler
	Articles *handlers.ArticleHandler
	Profile  *handlers.ProfileHandler
	Upload   *handlers.UploadHandler
	Logs     *handlers.AccessLogHandler
}

// RegisterRoutes registers all application routes. uploads serves stored
// images under /uploads/ and may be nil when they live elsewhere (S3).
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	tokens auth.TokenValidator,
	ipConfig *pkghttp.IPConfig,
	uploads http.Handler,
) {
	requireSession := auth.SessionMiddleware(tokens)

	if uploads != nil {
		router.Handle("/uploads/*", http.StripPrefix("/uploads/", uploads))
	}

	router.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.With(middleware.RateLimitByIP(middleware.LoginRateLimit(), ipConfig)).Post("/login", h.Auth.Login)
			r.With(requireSession).Get("/me", h.Auth.Me)
		})

		r.Route("/article", func(r chi.Router) {
			r.Get("/", h.Articles.List)
			r.Get("/{id}", h.Articles.Get)
			r.With(middleware.RateLimitByIP(middleware.LikeRateLimit(), ipConfig)).Post("/{id}/like", h.Articles.Like)

			r.Group(func(r chi.Router) {
				r.Use(requireSession)
				r.Post("/", h.Articles.Create)
				r.Put("/{id}", h.Articles.Update)
				r.Delete("/{id}", h.Articles.Delete)
			})
		})

		r.Get("/profile", h.Profile.Get)
		r.With(requireSession).Put("/profile", h.Profile.Update)

		r.With(middleware.RateLimitByIP(middleware.UploadRateLimit(), ipConfig)).Post("/upload", h.Upload.Upload)

		r.Group(func(r chi.Router) {
			r.Use(requireSession)
			r.Get("/log", h.Logs.List)
			r.Get("/log/stats", h.Logs.Stats)
		})
	})
}
