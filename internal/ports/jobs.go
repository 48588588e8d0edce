package ports

import "context"

type LetterJob struct {
    ID       string
    LetterID string
}

// JobRepository supports claiming and updating letter generation jobs.
type JobRepository interface {
    ClaimNext(ctx context.Context) (job LetterJob, found bool, err error)
    StartJobForLetter(ctx context.Context, letterID string) (jobID string, err error)
    MarkCompleted(ctx context.Context, jobID string) error
    MarkFailed(ctx context.Context, jobID string, reason string) error
}

// LetterSource gives the worker everything it needs to render one letter,
// bypassing tenant scoping since jobs carry no user context.
type LetterSource interface {
    LoadLetterForRender(ctx context.Context, letterID string) (LetterRender, error)
    SaveLetterContent(ctx context.Context, letterID, content string) error
}
