package httpadapter

import (
    "context"
    "encoding/json"
    "errors"
    "io"
    "net/http"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/google/uuid"
    "go.uber.org/zap"

    "creditdesk/internal/domain"
)

const maxBody = 1 << 20

type errorBody struct {
    Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
    switch {
    case errors.Is(err, domain.ErrInvalid):
        return http.StatusBadRequest
    case errors.Is(err, domain.ErrUnauthorized):
        return http.StatusUnauthorized
    case errors.Is(err, domain.ErrForbidden):
        return http.StatusForbidden
    case errors.Is(err, domain.ErrNotFound):
        return http.StatusNotFound
    case errors.Is(err, domain.ErrConflict):
        return http.StatusConflict
    case errors.Is(err, context.DeadlineExceeded):
        return http.StatusGatewayTimeout
    }
    return http.StatusInternalServerError
}

// fail writes err as a JSON error. Unexpected errors are logged and their
// text is not exposed.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
    status := statusFor(err)
    msg := err.Error()
    if status == http.StatusInternalServerError {
        s.log.Error("request failed",
            zap.String("method", r.Method),
            zap.String("path", r.URL.Path),
            zap.String("request_id", middleware.GetReqID(r.Context())),
            zap.Error(err),
        )
        msg = "internal error"
    }
    writeJSON(w, status, errorBody{Error: msg})
}

// decode reads a JSON body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
    dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
    dec.DisallowUnknownFields()
    if err := dec.Decode(dst); err != nil {
        if errors.Is(err, io.EOF) {
            return domain.Invalidf("body", "required")
        }
        return domain.Invalidf("body", "%v", err)
    }
    return nil
}

// pathID returns the named URL parameter after checking it is a UUID.
func pathID(r *http.Request, name string) (string, error) {
    raw := chi.URLParam(r, name)
    id, err := uuid.Parse(raw)
    if err != nil {
        return "", domain.Invalidf(name, "must be a UUID")
    }
    return id.String(), nil
}
