package analytics

import (
    "context"
    "math"
    "time"

    "golang.org/x/sync/errgroup"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

type Service struct {
    repo ports.AnalyticsRepository
    now  func() time.Time
}

func New(repo ports.AnalyticsRepository) *Service {
    return &Service{repo: repo, now: time.Now}
}

// Dashboard runs the aggregate queries concurrently and combines them.
func (s *Service) Dashboard(ctx context.Context, userID string) (domain.Dashboard, error) {
    var out domain.Dashboard
    now := s.now().UTC()
    g, ctx := errgroup.WithContext(ctx)
    g.Go(func() (err error) {
        out.ClientsByStatus, err = s.repo.CountClientsByStatus(ctx, userID)
        return err
    })
    g.Go(func() (err error) {
        out.DisputesByStatus, err = s.repo.CountDisputesByStatus(ctx, userID)
        return err
    })
    g.Go(func() (err error) {
        out.Revenue, err = s.repo.SumCompletedPayments(ctx, userID)
        return err
    })
    g.Go(func() (err error) {
        out.AverageCreditScore, err = s.repo.AverageCreditScore(ctx, userID)
        return err
    })
    g.Go(func() (err error) {
        out.OverdueDisputes, err = s.repo.CountOverdueDisputes(ctx, userID, now)
        return err
    })
    g.Go(func() (err error) {
        out.LettersReady, err = s.repo.CountLettersByStatus(ctx, userID, domain.LetterReady)
        return err
    })
    if err := g.Wait(); err != nil {
        return domain.Dashboard{}, err
    }

    for _, n := range out.ClientsByStatus {
        out.TotalClients += n
    }
    for _, n := range out.DisputesByStatus {
        out.TotalDisputes += n
    }
    out.SuccessRate = SuccessRate(out.DisputesByStatus)
    out.AverageCreditScore = math.Round(out.AverageCreditScore*10) / 10
    out.Revenue = out.Revenue.Round(2)
    return out, nil
}

// SuccessRate is the share of closed disputes that were resolved, as a
// percentage with one decimal. Zero when nothing has closed yet.
func SuccessRate(byStatus map[domain.DisputeStatus]int) float64 {
    resolved := byStatus[domain.DisputeResolved]
    closed := resolved + byStatus[domain.DisputeRejected]
    if closed == 0 {
        return 0
    }
    return math.Round(float64(resolved)/float64(closed)*1000) / 10
}
