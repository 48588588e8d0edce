package httpadapter

import (
    "context"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "go.uber.org/zap"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
    "creditdesk/internal/services/analytics"
    "creditdesk/internal/services/audit"
    "creditdesk/internal/services/auth"
    "creditdesk/internal/services/clients"
    "creditdesk/internal/services/disputes"
    "creditdesk/internal/services/documents"
    "creditdesk/internal/services/letters"
    "creditdesk/internal/services/notifications"
    "creditdesk/internal/services/payments"
    "creditdesk/internal/services/reports"
    "creditdesk/internal/services/settings"
    "creditdesk/internal/workers/letterrunner"
)

// Services is everything the handlers call into.
type Services struct {
    Auth          *auth.Service
    Clients       *clients.Service
    Disputes      *disputes.Service
    Letters       *letters.Service
    Payments      *payments.Service
    Reports       *reports.Service
    Documents     *documents.Service
    Analytics     *analytics.Service
    Notifications *notifications.Service
    Settings      *settings.Service
    Audit         *audit.Service

    // Jobs and Processor back inline letter generation (?wait=true).
    Jobs      ports.JobRepository
    Processor letterrunner.Processor

    // Ping reports storage health; nil means always healthy.
    Ping func(ctx context.Context) error
}

type Server struct {
    svc Services
    log *zap.Logger
}

func New(svc Services, log *zap.Logger) *Server {
    return &Server{svc: svc, log: log}
}

// Routes returns the full router: health, auth and the authenticated /api tree.
func (s *Server) Routes() chi.Router {
    r := chi.NewRouter()
    r.Use(middleware.RequestID, middleware.RealIP, requestLogger(s.log), middleware.Recoverer)

    r.Get("/healthz", s.healthz)
    r.Route("/auth", func(r chi.Router) {
        r.Post("/register", s.register)
        r.Post("/login", s.login)
        r.Post("/refresh", s.refresh)
        r.Post("/logout", s.logout)
    })

    r.Route("/api", func(r chi.Router) {
        r.Use(s.authenticate)

        r.Route("/clients", func(r chi.Router) {
            r.Get("/", s.listClients)
            r.Post("/", s.createClient)
            r.Route("/{id}", func(r chi.Router) {
                r.Get("/", s.getClient)
                r.Put("/", s.updateClient)
                r.Delete("/", s.deleteClient)
                r.Get("/disputes", s.listClientDisputes)
                r.Post("/disputes", s.createDispute)
                r.Get("/reports", s.listReports)
                r.Post("/reports", s.addReport)
                r.Get("/documents", s.listDocuments)
                r.Post("/documents", s.createDocument)
                r.Get("/payments", s.listPayments)
                r.Post("/payments", s.recordPayment)
                r.Get("/letters", s.listLetters)
            })
        })

        r.Get("/disputes", s.listDisputes)
        r.Get("/disputes/overdue", s.overdueDisputes)
        r.Get("/disputes/{id}", s.getDispute)
        r.Patch("/disputes/{id}/status", s.transitionDispute)

        r.Delete("/documents/{id}", s.deleteDocument)
        r.Post("/payments/{id}/refund", s.refundPayment)

        r.Post("/letters", s.enqueueLetter)
        r.Get("/letters/{id}", s.getLetter)
        r.Post("/letters/{id}/sent", s.markLetterSent)

        r.Get("/analytics/dashboard", s.dashboard)

        r.Get("/notifications", s.listNotifications)
        r.Post("/notifications/{id}/read", s.markNotificationRead)

        r.Get("/settings", s.listSettings)
        r.Put("/settings/{key}", s.putSetting)

        r.With(requireRole(domain.RoleAdmin)).Get("/audit-logs", s.listAuditLogs)
    })
    return r
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
    if s.svc.Ping != nil {
        ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
        defer cancel()
        if err := s.svc.Ping(ctx); err != nil {
            s.log.Warn("health check failed", zap.Error(err))
            writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
            return
        }
    }
    writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger logs one line per request once the handler returns.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
            start := time.Now()
            defer func() {
                log.Info("request",
                    zap.String("method", r.Method),
                    zap.String("path", r.URL.Path),
                    zap.Int("status", ww.Status()),
                    zap.Int("bytes", ww.BytesWritten()),
                    zap.Duration("took", time.Since(start)),
                    zap.String("request_id", middleware.GetReqID(r.Context())),
                )
            }()
            next.ServeHTTP(ww, r)
        })
    }
}
