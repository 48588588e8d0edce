package httpadapter

import (
    "context"
    "net/http"
    "time"

    "creditdesk/internal/services/letters"
    "creditdesk/internal/workers/letterrunner"
)

func (s *Server) enqueueLetter(w http.ResponseWriter, r *http.Request) {
    wait, timeout, err := bindLetter(r)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    var in letters.Request
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    userID := principal(r).UserID
    l, err := s.svc.Letters.Enqueue(r.Context(), userID, in)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    if !wait {
        writeJSON(w, http.StatusAccepted, l)
        return
    }
    // Blocking path: generate with the workers' processor before responding.
    ctx, cancel := context.WithTimeout(r.Context(), time.Duration(timeout)*time.Second)
    defer cancel()
    if err := letterrunner.ProcessInline(ctx, s.svc.Jobs, s.svc.Processor, l.ID); err != nil {
        s.fail(w, r, err)
        return
    }
    l, err = s.svc.Letters.Get(r.Context(), userID, l.ID)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, l)
}

func (s *Server) listLetters(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    list, err := s.svc.Letters.ListByClient(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func (s *Server) getLetter(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    l, err := s.svc.Letters.Get(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, l)
}

func (s *Server) markLetterSent(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    l, err := s.svc.Letters.MarkSent(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, l)
}
