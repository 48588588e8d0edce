package httpadapter

import (
    "context"
    "net/http"
    "strings"

    "creditdesk/internal/domain"
    "creditdesk/internal/services/auth"
)

type principalKey struct{}

func withPrincipal(ctx context.Context, p auth.Principal) context.Context {
    return context.WithValue(ctx, principalKey{}, p)
}

// principal returns the authenticated caller. Only valid under /api.
func principal(r *http.Request) auth.Principal {
    p, _ := r.Context().Value(principalKey{}).(auth.Principal)
    return p
}

func (s *Server) authenticate(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        h := r.Header.Get("Authorization")
        token, ok := strings.CutPrefix(h, "Bearer ")
        if !ok || token == "" {
            w.Header().Set("WWW-Authenticate", `Bearer realm="creditdesk"`)
            s.fail(w, r, domain.ErrUnauthorized)
            return
        }
        p, err := s.svc.Auth.ParseAccessToken(token)
        if err != nil {
            w.Header().Set("WWW-Authenticate", `Bearer realm="creditdesk", error="invalid_token"`)
            s.fail(w, r, err)
            return
        }
        next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
    })
}

func requireRole(role domain.Role) func(http.Handler) http.Handler {
    return func(next http.Handler) http.Handler {
        return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
            if principal(r).Role != role {
                writeJSON(w, http.StatusForbidden, errorBody{Error: domain.ErrForbidden.Error()})
                return
            }
            next.ServeHTTP(w, r)
        })
    }
}

type credentials struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}

type refreshRequest struct {
    RefreshToken string `json:"refreshToken"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
    var in auth.RegisterInput
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    u, err := s.svc.Auth.Register(r.Context(), in)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusCreated, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
    var in credentials
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    t, err := s.svc.Auth.Login(r.Context(), in.Email, in.Password)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, t)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
    var in refreshRequest
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    t, err := s.svc.Auth.Refresh(r.Context(), in.RefreshToken)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, t)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
    var in refreshRequest
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    if err := s.svc.Auth.Logout(r.Context(), in.RefreshToken); err != nil {
        s.fail(w, r, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}
