package app

import (
    "context"
    "errors"

    "github.com/shopspring/decimal"
    "go.uber.org/zap"

    "creditdesk/internal/domain"
    "creditdesk/internal/schema"
    "creditdesk/internal/services/auth"
    "creditdesk/internal/services/clients"
    "creditdesk/internal/services/disputes"
    "creditdesk/internal/services/payments"
    "creditdesk/internal/services/reports"
)

// paths walks a dispute from draft to each seeded status.
var paths = map[string][]domain.DisputeStatus{
    "draft":       nil,
    "submitted":   {domain.DisputeSubmitted},
    "in_progress": {domain.DisputeSubmitted, domain.DisputeInProgress},
    "resolved":    {domain.DisputeSubmitted, domain.DisputeResolved},
    "rejected":    {domain.DisputeSubmitted, domain.DisputeRejected},
}

// SeedDemo loads the demo book through the services. It is a no-op when the
// demo account already exists.
func (a *App) SeedDemo(ctx context.Context) error {
    svc := a.Services
    u, err := svc.Auth.Register(ctx, auth.RegisterInput{
        Email: schema.DemoEmail, Password: schema.DemoPassword,
        FirstName: "Demo", LastName: "Admin", CompanyName: "CreditDesk Demo",
    })
    if errors.Is(err, domain.ErrConflict) {
        return nil
    }
    if err != nil {
        return err
    }

    book, demoDisputes := schema.DemoBook()
    ids := make([]string, len(book))
    for i, dc := range book {
        c, err := svc.Clients.Create(ctx, u.ID, clients.Input{
            FirstName: dc.FirstName, LastName: dc.LastName, Email: dc.Email, Phone: dc.Phone,
            City: dc.City, State: dc.State, Status: domain.ClientStatus(dc.Status),
        })
        if err != nil {
            return err
        }
        ids[i] = c.ID
        if _, err := svc.Reports.Add(ctx, u.ID, c.ID, reports.Input{Bureau: "experian", Score: dc.Score}); err != nil {
            return err
        }
        if _, err := svc.Payments.Record(ctx, u.ID, c.ID, payments.Input{
            Amount: decimal.NewFromInt(99), Method: "card", Description: "Monthly service fee",
        }); err != nil {
            return err
        }
    }
    for _, dd := range demoDisputes {
        d, err := svc.Disputes.Create(ctx, u.ID, ids[dd.Client], disputes.Input{
            Bureau: dd.Bureau, AccountName: dd.Account, Reason: dd.Reason,
        })
        if err != nil {
            return err
        }
        for _, to := range paths[dd.Status] {
            if _, err := svc.Disputes.Transition(ctx, u.ID, d.ID, to, ""); err != nil {
                return err
            }
        }
    }
    if _, err := svc.Settings.Put(ctx, u.ID, "company.timezone", "America/Chicago"); err != nil {
        return err
    }
    a.Log.Info("demo data loaded", zap.String("email", schema.DemoEmail), zap.Int("clients", len(ids)))
    return nil
}
