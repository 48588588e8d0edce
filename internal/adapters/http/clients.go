package httpadapter

import (
    "net/http"

    "creditdesk/internal/services/clients"
)

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
    f, err := bindClientList(r)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    page, err := s.svc.Clients.List(r.Context(), principal(r).UserID, f)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, page)
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
    var in clients.Input
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    c, err := s.svc.Clients.Create(r.Context(), principal(r).UserID, in)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusCreated, c)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    c, err := s.svc.Clients.Get(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, c)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    var in clients.Input
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    c, err := s.svc.Clients.Update(r.Context(), principal(r).UserID, id, in)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, c)
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    if err := s.svc.Clients.Delete(r.Context(), principal(r).UserID, id); err != nil {
        s.fail(w, r, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}
