package httpadapter

import (
    "net/http"

    "creditdesk/internal/domain"
    "creditdesk/internal/services/disputes"
)

type transitionRequest struct {
    Status  domain.DisputeStatus `json:"status"`
    Outcome string               `json:"outcome"`
}

func (s *Server) listClientDisputes(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    s.writeDisputes(w, r, id)
}

func (s *Server) listDisputes(w http.ResponseWriter, r *http.Request) {
    s.writeDisputes(w, r, "")
}

func (s *Server) writeDisputes(w http.ResponseWriter, r *http.Request, clientID string) {
    f, err := bindDisputeList(r, clientID)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    list, err := s.svc.Disputes.List(r.Context(), principal(r).UserID, f)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func (s *Server) createDispute(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    var in disputes.Input
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    d, err := s.svc.Disputes.Create(r.Context(), principal(r).UserID, id, in)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusCreated, d)
}

func (s *Server) overdueDisputes(w http.ResponseWriter, r *http.Request) {
    list, err := s.svc.Disputes.Overdue(r.Context(), principal(r).UserID)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func (s *Server) getDispute(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    d, err := s.svc.Disputes.Get(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, d)
}

func (s *Server) transitionDispute(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    var in transitionRequest
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    d, err := s.svc.Disputes.Transition(r.Context(), principal(r).UserID, id, in.Status, in.Outcome)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, d)
}
