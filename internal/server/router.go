package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"
	"gorm.io/gorm"

	"github.com/gorilla/mux"

	"noticeboard/auth"
	"noticeboard/httpx"
	"noticeboard/internal/config"
	"noticeboard/internal/handlers"
	"noticeboard/internal/middleware"
	"noticeboard/internal/models"
	"noticeboard/internal/policy"
	"noticeboard/internal/services"
	"noticeboard/logger"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, cfg config.Config) http.Handler {
	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var count int64
		if err := db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	userSvc := services.NewUserService(db)
	notifSvc := services.NewNotificationService(db)
	attSvc := services.NewAttachmentService(db, cfg.UploadDir, cfg.MaxUploadSize)
	gate := policy.NewGate(db)

	authHandler := handlers.NewAuthHandler(userSvc, cfg.JWTSecret, cfg.TokenTTL)
	notifHandler := handlers.NewNotificationHandler(notifSvc)
	attHandler := handlers.NewAttachmentHandler(attSvc, cfg.MaxUploadSize)
	userHandler := handlers.NewUserHandler(userSvc)

	// Windows mirror the upstream limits: 5 logins / 15 min, 3 registrations
	// / hour, 10 uploads / min, per client IP.
	loginLimiter := middleware.NewRateLimiter(15*time.Minute, 5)
	registerLimiter := middleware.NewRateLimiter(time.Hour, 3)
	uploadLimiter := middleware.NewRateLimiter(time.Minute, 10)

	// Every mutating route stacks RequireAuth then the admin gate, so a
	// rejected caller never reaches the handler or the store behind it.
	requireAdmin := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(gate.RequireAdmin()(h))
	}

	r := mux.NewRouter()

	// --- Health endpoints ---
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		// Lightweight DB check, no detail in the body
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Auth
	r.Handle("/auth/login", loginLimiter.Limit("too_many_login_attempts", http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	r.Handle("/auth/register", registerLimiter.Limit("too_many_registrations", http.HandlerFunc(authHandler.Register))).Methods(http.MethodPost)
	r.Handle("/auth/me", auth.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods(http.MethodGet)
	r.Handle("/auth/logout", auth.RequireAuth(http.HandlerFunc(authHandler.Logout))).Methods(http.MethodPost)

	// Public notification feed
	r.HandleFunc("/notifications", notifHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}", notifHandler.Get).Methods(http.MethodGet)
	r.HandleFunc("/notifications/{id}/attachments", attHandler.ListByNotification).Methods(http.MethodGet)
	r.HandleFunc("/files/{filename}", attHandler.Download).Methods(http.MethodGet)

	// Admin notification management
	r.Handle("/notifications", requireAdmin(notifHandler.Create)).Methods(http.MethodPost)
	r.Handle("/notifications/{id}", requireAdmin(notifHandler.Update)).Methods(http.MethodPut)
	r.Handle("/notifications/{id}", requireAdmin(notifHandler.Delete)).Methods(http.MethodDelete)
	r.Handle("/admin/notifications", requireAdmin(notifHandler.AdminList)).Methods(http.MethodGet)

	// Attachments
	r.Handle("/upload", uploadLimiter.Limit("too_many_uploads", requireAdmin(attHandler.Upload))).Methods(http.MethodPost)
	r.Handle("/attachments/{id}", requireAdmin(attHandler.Delete)).Methods(http.MethodDelete)

	// User administration
	r.Handle("/users", requireAdmin(userHandler.List)).Methods(http.MethodGet)
	r.Handle("/users/{id}", requireAdmin(userHandler.Get)).Methods(http.MethodGet)
	r.Handle("/users/{id}", requireAdmin(userHandler.Update)).Methods(http.MethodPut)
	r.Handle("/users/{id}", requireAdmin(userHandler.Delete)).Methods(http.MethodDelete)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := auth.Middleware(cfg.JWTSecret)(r)
	return c.Handler(withRecover(withLogging(handler)))
}

// statusWriter captures the response code for the request log.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Log.WithFields(map[string]any{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Log.WithField("panic", rec).Error("recovered from panic")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
