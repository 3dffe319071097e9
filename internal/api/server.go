// Package api exposes the service over HTTP: user-facing memory, request
// and recharge endpoints plus a basic-auth admin surface for translators
// and reviewers.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hiroyagi/yakumemo/internal/config"
	"github.com/hiroyagi/yakumemo/internal/models"
	"github.com/hiroyagi/yakumemo/internal/notify"
	"github.com/hiroyagi/yakumemo/internal/repository"
	"github.com/hiroyagi/yakumemo/internal/service"
	"github.com/hiroyagi/yakumemo/internal/storage"
)

type Server struct {
	addr     string
	username string
	password string
	log      *slog.Logger

	memory    *service.MemoryService
	requests  *service.RequestService
	recharges *service.RechargeService
	plans     *service.PlanService
	profiles  *service.ProfileService
	translate *service.TranslateService
	stats     *service.StatsService
	settings  *repository.ConfigRepository
	uploader  *storage.Uploader
	hub       *notify.Hub

	router *chi.Mux
}

type Deps struct {
	Memory    *service.MemoryService
	Requests  *service.RequestService
	Recharges *service.RechargeService
	Plans     *service.PlanService
	Profiles  *service.ProfileService
	Translate *service.TranslateService
	Stats     *service.StatsService
	Settings  *repository.ConfigRepository
	Uploader  *storage.Uploader
	Hub       *notify.Hub
}

func NewServer(cfg config.Config, log *slog.Logger, deps Deps) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	s := &Server{
		addr:      cfg.ListenAddr,
		username:  cfg.AdminUsername,
		password:  cfg.AdminPassword,
		log:       log,
		memory:    deps.Memory,
		requests:  deps.Requests,
		recharges: deps.Recharges,
		plans:     deps.Plans,
		profiles:  deps.Profiles,
		translate: deps.Translate,
		stats:     deps.Stats,
		settings:  deps.Settings,
		uploader:  deps.Uploader,
		hub:       deps.Hub,
		router:    r,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/profile", s.handleEnsureProfile)

		r.Group(func(user chi.Router) {
			user.Use(s.userAuthMiddleware())

			user.Get("/profile", s.handleGetProfile)
			user.Post("/translate", s.handleTranslate)
			user.Get("/plans", s.handleListActivePlans)
			user.Get("/payment-qrcode", s.handleGetPaymentQRCode)

			user.Route("/pairs", func(r chi.Router) {
				r.Get("/", s.handleListPairs)
				r.Post("/", s.handleCreatePair)
				r.Delete("/{id}", s.handleDeletePair)
				r.Post("/search", s.handleSearchPairs)
				r.Post("/import", s.handleImportPairs)
				r.Get("/export", s.handleExportPairs)
			})

			user.Route("/requests", func(r chi.Router) {
				r.Get("/", s.handleListMyRequests)
				r.Post("/", s.handleCreateRequest)
				r.Post("/{id}/cancel", s.handleCancelRequest)
				r.Post("/{id}/rating", s.handleRateRequest)
			})

			user.Route("/recharges", func(r chi.Router) {
				r.Get("/", s.handleListMyRecharges)
				r.Post("/", s.handleSubmitRecharge)
				r.Post("/proof", s.handleUploadProof)
			})
		})

		r.Route("/admin", func(admin chi.Router) {
			admin.Use(s.basicAuthMiddleware())

			admin.Get("/requests", s.handleQueue)
			admin.Post("/requests/{id}/claim", s.handleClaimRequest)
			admin.Post("/requests/{id}/result", s.handleSubmitTranslation)

			admin.Get("/recharges", s.handleListRecharges)
			admin.Post("/recharges/{id}/decision", s.handleDecideRecharge)

			admin.Route("/plans", func(r chi.Router) {
				r.Get("/", s.handleListAllPlans)
				r.Post("/", s.handleCreatePlan)
				r.Put("/{id}", s.handleUpdatePlan)
				r.Delete("/{id}", s.handleDeletePlan)
			})

			admin.Get("/users", s.handleListUsers)
			admin.Post("/users/{id}/admin", s.handleSetAdmin)

			admin.Get("/stats", s.handleStats)
			admin.Get("/export", s.handleExportAll)
			admin.Put("/payment-qrcode", s.handleSetPaymentQRCode)
			admin.Post("/payment-qrcode/image", s.handleUploadQRCodeImage)
			admin.Get("/events", s.handleEvents)
		})
	})

	return s
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the events endpoint streams indefinitely.
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Error("http shutdown error", "err", err)
		}
	}()

	s.log.Info("http server listening", "addr", s.addr)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

type contextKey string

const userIDKey contextKey = "user_id"

// userAuthMiddleware resolves the calling user from the X-User-ID header.
// Session management lives in front of this service; the header carries the
// already-authenticated profile id.
func (s *Server) userAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := parseID(r.Header.Get("X-User-ID"))
			if err != nil || id <= 0 {
				http.Error(w, "missing or invalid X-User-ID header", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
		})
	}
}

func (s *Server) basicAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if !ok || user != s.username || pass != s.password {
				w.Header().Set("WWW-Authenticate", `Basic realm="yakumemo"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func userID(r *http.Request) int64 {
	id, _ := r.Context().Value(userIDKey).(int64)
	return id
}

// adminID identifies the acting translator or reviewer behind the shared
// basic-auth credentials.
func adminID(r *http.Request) (int64, error) {
	id, err := parseID(r.Header.Get("X-Admin-ID"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("missing or invalid X-Admin-ID header: %w", models.ErrValidation)
	}
	return id, nil
}

func parseID(value string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(value), 10, 64)
}

func urlID(r *http.Request) (int64, error) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id: %w", models.ErrValidation)
	}
	return id, nil
}
