package domain

import "strings"

const (
    DefaultPageSize = 10
    MaxPageSize     = 100
)

// ClientFilter narrows a client listing by free-text search and status, then
// slices it into pages.
type ClientFilter struct {
    Search   string
    Status   ClientStatus
    Page     int
    PageSize int
}

func (f ClientFilter) Normalize() ClientFilter {
    f.Search = strings.TrimSpace(f.Search)
    if f.Page < 1 {
        f.Page = 1
    }
    if f.PageSize < 1 {
        f.PageSize = DefaultPageSize
    }
    if f.PageSize > MaxPageSize {
        f.PageSize = MaxPageSize
    }
    return f
}

func (f ClientFilter) Offset() int { return (f.Page - 1) * f.PageSize }

// Matches applies the search and status parts of the filter. Search is a
// case-insensitive substring match on name, email and phone.
func (f ClientFilter) Matches(c Client) bool {
    if f.Status != "" && c.Status != f.Status {
        return false
    }
    q := strings.ToLower(strings.TrimSpace(f.Search))
    if q == "" {
        return true
    }
    for _, field := range []string{c.FirstName, c.LastName, c.FullName(), c.Email, c.Phone} {
        if strings.Contains(strings.ToLower(field), q) {
            return true
        }
    }
    return false
}

// Apply filters and paginates an in-memory slice, returning the page and the
// total number of matches.
func (f ClientFilter) Apply(clients []Client) ([]Client, int) {
    f = f.Normalize()
    var matched []Client
    for _, c := range clients {
        if f.Matches(c) {
            matched = append(matched, c)
        }
    }
    total := len(matched)
    start := f.Offset()
    if start >= total {
        return []Client{}, total
    }
    end := start + f.PageSize
    if end > total {
        end = total
    }
    return matched[start:end], total
}

// DisputeFilter narrows dispute listings; an empty ClientID means every client
// of the tenant.
type DisputeFilter struct {
    ClientID string
    Status   DisputeStatus
    Bureau   Bureau
}
