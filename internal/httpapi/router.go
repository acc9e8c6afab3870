// Package httpapi exposes the pastures over a JSON HTTP API.
package httpapi

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vovakirdan/sheepfold/internal/pasture"
	"github.com/vovakirdan/sheepfold/internal/scene"
)

// AdminHeader carries the admin key that lifts the daily prayer limit.
const AdminHeader = "X-Sheepfold-Admin"

// Options configures the router.
type Options struct {
	Manager  *pasture.Manager
	AdminKey string // Empty disables admin requests
	Logger   *log.Logger
	Params   scene.Params
}

type api struct {
	manager  *pasture.Manager
	adminKey string
	logger   *log.Logger
	params   scene.Params
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	params := opts.Params
	if params.Attempts <= 0 {
		params = scene.DefaultParams()
	}
	a := &api{
		manager:  opts.Manager,
		adminKey: opts.AdminKey,
		logger:   logger,
		params:   params,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(a.logRequests)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/owners/{ownerID}", func(or chi.Router) {
		or.Get("/", a.getProfile)
		or.Patch("/", a.renameProfile)
		or.Get("/scene", a.getScene)

		or.Route("/sheep", func(sr chi.Router) {
			sr.Get("/", a.listSheep)
			sr.Post("/", a.adoptSheep)
			sr.Get("/{sheepID}", a.getSheep)
			sr.Patch("/{sheepID}", a.annotateSheep)
			sr.Delete("/{sheepID}", a.deleteSheep)
			sr.Post("/{sheepID}/pray", a.praySheep)
		})
	})

	return r
}

func (a *api) isAdmin(r *http.Request) bool {
	if a.adminKey == "" {
		return false
	}
	got := r.Header.Get(AdminHeader)
	return subtle.ConstantTimeCompare([]byte(got), []byte(a.adminKey)) == 1
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"took", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}
