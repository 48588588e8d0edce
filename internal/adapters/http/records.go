package httpadapter

import (
    "net/http"

    "creditdesk/internal/services/documents"
    "creditdesk/internal/services/payments"
    "creditdesk/internal/services/reports"
)

// Credit reports, documents and payments hang off a client.

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    list, err := s.svc.Reports.List(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func (s *Server) addReport(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    var in reports.Input
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    rep, err := s.svc.Reports.Add(r.Context(), principal(r).UserID, id, in)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    list, err := s.svc.Documents.List(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func (s *Server) createDocument(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    var in documents.Input
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    d, err := s.svc.Documents.Create(r.Context(), principal(r).UserID, id, in)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusCreated, d)
}

func (s *Server) deleteDocument(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    if err := s.svc.Documents.Delete(r.Context(), principal(r).UserID, id); err != nil {
        s.fail(w, r, err)
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listPayments(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    list, err := s.svc.Payments.List(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, list)
}

func (s *Server) recordPayment(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    var in payments.Input
    if err := decode(r, &in); err != nil {
        s.fail(w, r, err)
        return
    }
    p, err := s.svc.Payments.Record(r.Context(), principal(r).UserID, id, in)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusCreated, p)
}

func (s *Server) refundPayment(w http.ResponseWriter, r *http.Request) {
    id, err := pathID(r, "id")
    if err != nil {
        s.fail(w, r, err)
        return
    }
    p, err := s.svc.Payments.Refund(r.Context(), principal(r).UserID, id)
    if err != nil {
        s.fail(w, r, err)
        return
    }
    writeJSON(w, http.StatusOK, p)
}
