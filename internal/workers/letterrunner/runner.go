package letterrunner

import (
    "context"
    "sync"
    "time"

    "go.uber.org/zap"

    "creditdesk/internal/ports"
)

// Processor renders and stores the content for a letter id.
type Processor interface {
    Process(ctx context.Context, letterID string) error
}

type Options struct {
    Concurrency  int
    PollInterval time.Duration
}

// Run claims queued letter jobs and hands them to workers until ctx is done.
// It returns once the dispatcher and every worker have exited.
func Run(ctx context.Context, repo ports.JobRepository, processor Processor, log *zap.Logger, opts Options) {
    if opts.Concurrency < 1 {
        return
    }
    if opts.PollInterval <= 0 {
        opts.PollInterval = time.Second
    }
    jobsCh := make(chan ports.LetterJob, opts.Concurrency)
    var wg sync.WaitGroup

    // dispatcher loop
    wg.Add(1)
    go func() {
        defer wg.Done()
        defer close(jobsCh)
        ticker := time.NewTicker(opts.PollInterval)
        defer ticker.Stop()
        for {
            select {
            case <-ctx.Done():
                return
            case <-ticker.C:
                for {
                    job, found, err := repo.ClaimNext(ctx)
                    if err != nil {
                        if ctx.Err() == nil {
                            log.Error("letter job claim failed", zap.Error(err))
                        }
                        break
                    }
                    if !found {
                        break
                    }
                    select {
                    case jobsCh <- job:
                    case <-ctx.Done():
                        // claimed but never started
                        _ = repo.MarkFailed(context.WithoutCancel(ctx), job.ID, "shutdown before processing")
                        return
                    }
                }
            }
        }
    }()

    // workers
    for i := 0; i < opts.Concurrency; i++ {
        wg.Add(1)
        go func(idx int) {
            defer wg.Done()
            wlog := log.With(zap.Int("worker", idx))
            for job := range jobsCh {
                handle(ctx, repo, processor, wlog, job)
            }
        }(i)
    }
    log.Info("letter workers started", zap.Int("concurrency", opts.Concurrency), zap.Duration("poll", opts.PollInterval))
    wg.Wait()
    log.Info("letter workers stopped")
}

func handle(ctx context.Context, repo ports.JobRepository, processor Processor, log *zap.Logger, job ports.LetterJob) {
    start := time.Now()
    done := context.WithoutCancel(ctx)
    if err := processor.Process(ctx, job.LetterID); err != nil {
        if mErr := repo.MarkFailed(done, job.ID, err.Error()); mErr != nil {
            log.Error("mark letter job failed", zap.String("job_id", job.ID), zap.Error(mErr))
        }
        log.Warn("letter generation failed", zap.String("job_id", job.ID), zap.String("letter_id", job.LetterID), zap.Error(err))
        return
    }
    if err := repo.MarkCompleted(done, job.ID); err != nil {
        log.Error("complete letter job", zap.String("job_id", job.ID), zap.Error(err))
        return
    }
    log.Debug("letter generated", zap.String("letter_id", job.LetterID), zap.Duration("took", time.Since(start)))
}

// ProcessInline starts and processes a specific letter synchronously with the
// same processor the background workers use. Once started, the job is always
// finished, even when ctx ends first.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor Processor, letterID string) error {
    jobID, err := repo.StartJobForLetter(ctx, letterID)
    if err != nil {
        return err
    }
    done := context.WithoutCancel(ctx)
    if err := processor.Process(ctx, letterID); err != nil {
        _ = repo.MarkFailed(done, jobID, err.Error())
        return err
    }
    return repo.MarkCompleted(done, jobID)
}
