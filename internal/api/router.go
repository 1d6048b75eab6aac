package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/reliefshare/internal/api/handlers"
	"github.com/baharkarakas/reliefshare/internal/auth"
	"github.com/baharkarakas/reliefshare/internal/config"
	"github.com/baharkarakas/reliefshare/internal/metrics"
	"github.com/baharkarakas/reliefshare/internal/middleware"
	"github.com/baharkarakas/reliefshare/internal/services"
)

type RouterDeps struct {
	Cfg       config.Config
	Users     *services.UserService
	Resources *services.ResourceService
	Watchlist *services.WatchlistService
	Sessions  *auth.SessionManager
}

func NewRouter(d RouterDeps) http.Handler {
	authMW := middleware.NewAuthMiddleware(d.Sessions)
	authH := handlers.NewAuthHandler(d.Users, d.Sessions, d.Cfg.IsProd())
	resH := handlers.NewResourceHandler(d.Resources)
	watchH := handlers.NewWatchlistHandler(d.Watchlist)

	r := chi.NewRouter()
	r.Use(chimw.RealIP, middleware.RequestID, middleware.Recover, middleware.HTTPMetrics)
	r.Use(middleware.RateLimit(d.Cfg.RateRPS, d.Cfg.RateBurst))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(authMW.Load)

		r.Post("/register", authH.Register)
		r.Post("/login", authH.Login)
		r.Post("/logout", authH.Logout)
		r.Get("/resources", resH.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Get("/user", authH.User)

			r.Get("/resources/owned", resH.ListOwned)
			r.Post("/resources", resH.Create)
			r.Patch("/resources/{id}", resH.Update)
			r.Delete("/resources/{id}", resH.Delete)

			r.Get("/watchlist", watchH.List)
			r.Post("/watchlist/{id}", watchH.Add)
			r.Delete("/watchlist/{id}", watchH.Remove)
		})
	})

	if d.Cfg.StaticDir != "" {
		r.Handle("/*", spa(d.Cfg.StaticDir))
	}
	return r
}

// spa serves files from dir and falls back to index.html so client-side
// routes resolve.
func spa(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := filepath.Join(dir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
		if st, err := os.Stat(p); err != nil || st.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		fs.ServeHTTP(w, r)
	})
}
