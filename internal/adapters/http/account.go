package httpadapter

import (
    "net/http"

    "github.com/go-chi/chi/v5"
)

// Per-user resources: dashboard, notifications, settings and the audit trail.

type settingRequest struct {
    Value string `json:"value"`
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
    d, err := s.svc.Analytics.Dashboard(r.Context(), principal(r).UserID)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, d)
}

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
    unread, err := bindUnread(r)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    list, err := s.svc.Notifications.List(r.Context(), principal(r).UserID, unread)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func (s *Server) markNotificationRead(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    if err := s.svc.Notifications.MarkRead(r.Context(), principal(r).UserID, id); err != nil {
        s.fail(w, r, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listSettings(w http.ResponseWriter, r *http.Request) {
    list, err := s.svc.Settings.List(r.Context(), principal(r).UserID)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func (s *Server) putSetting(w http.ResponseWriter, r *http.Request) {
    var in settingRequest
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    st, err := s.svc.Settings.Put(r.Context(), principal(r).UserID, chi.URLParam(r, "key"), in.Value)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, st)
}

func (s *Server) listAuditLogs(w http.ResponseWriter, r *http.Request) {
    limit, err := bindLimit(r)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    list, err := s.svc.Audit.List(r.Context(), principal(r).UserID, limit)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}
