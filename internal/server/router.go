package server

import (
	"context"
	_ "embed"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mokoena/sla-app/internal/auth"
	"github.com/mokoena/sla-app/internal/handlers"
	"github.com/mokoena/sla-app/internal/httpx"
	"github.com/mokoena/sla-app/internal/middleware"
	"github.com/mokoena/sla-app/internal/models"
	"github.com/mokoena/sla-app/internal/services"
)

//go:embed openapi.yaml
var openapiSpec []byte

// New wires every handler behind the middleware chain and returns the
// root handler.
func New(db *gorm.DB, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	// Sessions referring to deleted users are rejected at the door.
	auth.SetUserVerifier(verifyUser(db))

	agreements := services.NewAgreementService(db, log)

	protected := http.NewServeMux()
	handlers.NewClientHandler(db).Register(protected)
	handlers.NewQuoteHandler(db, log, agreements).Register(protected)
	handlers.NewInvoiceHandler(db).Register(protected)
	handlers.NewTemplateHandler(db).Register(protected)
	handlers.NewAgreementHandler(db, agreements).Register(protected)
	handlers.NewDetectHandler().Register(protected)
	protected.HandleFunc("/setup", handlers.NewSetupHandler(services.NewSetupService(db)).Handle)

	root := http.NewServeMux()
	handlers.NewAuthHandler(db).Register(root)
	root.HandleFunc("/healthz", healthz(db))
	root.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openapiSpec)
	})
	root.Handle("/", auth.RequireAuth(protected))

	var h http.Handler = root
	h = auth.Middleware(h)
	h = requestLogger(log, h)
	h = middleware.RequestID(h)
	h = recoverer(log, h)
	return h
}

// healthz checks DB reachability with SELECT 1.
func healthz(db *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "db_unreachable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func requestLogger(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.RequestIDFrom(r.Context())))
	})
}

func recoverer(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path))
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// verifyUser confirms the session user still exists.
func verifyUser(db *gorm.DB) auth.UserVerifier {
	return func(ctx context.Context, uid uint) bool {
		var count int64
		db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count)
		return count > 0
	}
}
