package httpadapter

import (
    "net/http"

    "github.com/oapi-codegen/runtime"

    "creditdesk/internal/domain"
)

// Query parameters are bound with the same runtime generated handlers use
// (form style, exploded). Optional parameters bind into pointer fields that
// stay nil when absent.

func bindQuery(r *http.Request, name string, dest any) error {
    if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
        return domain.Invalidf(name, "%v", err)
    }
    return nil
}

func deref[T any](p *T) T {
    var zero T
    if p == nil {
        return zero
    }
    return *p
}

type clientListParams struct {
    Page     *int
    PageSize *int
    Search   *string
    Status   *string
}

func bindClientList(r *http.Request) (domain.ClientFilter, error) {
    var p clientListParams
    if err := bindQuery(r, "page", &p.Page); err != nil {
        return domain.ClientFilter{}, err
    }
    if err := bindQuery(r, "pageSize", &p.PageSize); err != nil {
        return domain.ClientFilter{}, err
    }
    if err := bindQuery(r, "search", &p.Search); err != nil {
        return domain.ClientFilter{}, err
    }
    if err := bindQuery(r, "status", &p.Status); err != nil {
        return domain.ClientFilter{}, err
    }
    return domain.ClientFilter{
        Search:   deref(p.Search),
        Status:   domain.ClientStatus(deref(p.Status)),
        Page:     deref(p.Page),
        PageSize: deref(p.PageSize),
    }, nil
}

type disputeListParams struct {
    Status *string
    Bureau *string
}

func bindDisputeList(r *http.Request, clientID string) (domain.DisputeFilter, error) {
    var p disputeListParams
    if err := bindQuery(r, "status", &p.Status); err != nil {
        return domain.DisputeFilter{}, err
    }
    if err := bindQuery(r, "bureau", &p.Bureau); err != nil {
        return domain.DisputeFilter{}, err
    }
    return domain.DisputeFilter{
        ClientID: clientID,
        Status:   domain.DisputeStatus(deref(p.Status)),
        Bureau:   domain.Bureau(deref(p.Bureau)),
    }, nil
}

type letterParams struct {
    Wait    *bool
    Timeout *int
}

// bindLetter returns whether to generate inline and the timeout in seconds.
func bindLetter(r *http.Request) (bool, int, error) {
    var p letterParams
    if err := bindQuery(r, "wait", &p.Wait); err != nil {
        return false, 0, err
    }
    if err := bindQuery(r, "timeout", &p.Timeout); err != nil {
        return false, 0, err
    }
    timeout := 30
    if p.Timeout != nil {
        timeout = *p.Timeout
    }
    if timeout <= 0 || timeout > 120 {
        return false, 0, domain.Invalidf("timeout", "must be between 1 and 120 seconds")
    }
    return deref(p.Wait), timeout, nil
}

func bindUnread(r *http.Request) (bool, error) {
    var unread *bool
    err := bindQuery(r, "unread", &unread)
    return deref(unread), err
}

func bindLimit(r *http.Request) (int, error) {
    var limit *int
    err := bindQuery(r, "limit", &limit)
    return deref(limit), err
}
