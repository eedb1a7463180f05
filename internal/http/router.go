package http

import (
	"net/http"

	"sintiendo/internal/auth"
	"sintiendo/internal/config"
	"sintiendo/internal/diary"
	"sintiendo/internal/http/handler"
	mw "sintiendo/internal/http/middleware"
	"sintiendo/internal/media"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewRouter(cfg config.Config, db *gorm.DB, jwtSvc *auth.JWT, diarySvc *diary.Service, mediaSvc *media.Service, blobs media.Storage, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Sintiendo"))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	ah := &handler.AuthHandler{DB: db, JWT: jwtSvc, Log: log}
	r.Post("/auth/signup", ah.Signup)
	r.Post("/auth/login", ah.Login)

	requireAuth := auth.RequireAuth(jwtSvc, db)

	me := &handler.MeHandler{}
	r.With(requireAuth).Get("/me", me.Me)

	dh := &handler.DiaryHandler{Svc: diarySvc}
	eh := &handler.EmotionHandler{Svc: diarySvc}

	r.Route("/diary", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/entries", dh.Create)
		r.Get("/entries", dh.List)
		r.Get("/entries/date/{date}", dh.GetByDate)
		r.Get("/entries/{id}", dh.Get)
		r.Put("/entries/{id}", dh.Update)
		r.Delete("/entries/{id}", dh.Delete)

		r.Post("/entries/{id}/emotions", eh.Add)
		r.Put("/emotions/{id}", eh.Update)
		r.Delete("/emotions/{id}", eh.Delete)

		r.Get("/emotion-summary", eh.Summary)
		r.Get("/recent-emotions", eh.Recent)
	})

	mh := &handler.MediaHandler{Svc: mediaSvc, Blobs: blobs}
	r.Route("/media", func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/upload/audio", mh.UploadAudio)
		r.Post("/upload/drawing", mh.UploadDrawing)
		r.Get("/entry/{diary_entry_id}", mh.ListByEntry)
		r.Get("/{id}", mh.Get)
		r.Get("/{id}/download", mh.Download)
		r.Delete("/{id}", mh.Delete)
	})

	// Stored blobs are also reachable under a fixed static prefix.
	fileServer := http.StripPrefix("/uploads/", http.FileServer(http.Dir(blobs.Root())))
	r.Get("/uploads/*", fileServer.ServeHTTP)

	return r
}
