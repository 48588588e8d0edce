package postgres

import (
    "context"
    "errors"
    "time"

    "github.com/jackc/pgx/v5"

    "creditdesk/internal/domain"
    "creditdesk/internal/ports"
)

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.LetterJob, found bool, err error) {
    // Use explicit transaction to safely lock and transition state
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return job, false, err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { _ = tx.Commit(ctx) }
    }()

    // Lock the next queued job
    err = tx.QueryRow(ctx, `
        SELECT id, letter_id FROM letter_jobs
        WHERE status = 'queued'
        ORDER BY queued_at
        FOR UPDATE SKIP LOCKED
        LIMIT 1
    `).Scan(&job.ID, &job.LetterID)
    if errors.Is(err, pgx.ErrNoRows) {
        return job, false, nil
    }
    if err != nil { return job, false, err }

    // Mark job running and bump attempts
    if _, err = tx.Exec(ctx, `
        UPDATE letter_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
    `, job.ID); err != nil {
        return job, false, err
    }
    if _, err = tx.Exec(ctx, `UPDATE letters SET status='generating' WHERE id=$1`, job.LetterID); err != nil {
        return job, false, err
    }
    return job, true, nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
    // complete job and letter atomically
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    return db.finishJob(ctx, jobID, "completed", domain.LetterReady, "")
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
    ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
    defer cancel()
    return db.finishJob(ctx, jobID, "failed", domain.LetterFailed, reason)
}

func (db *DB) finishJob(ctx context.Context, jobID, jobStatus string, letterStatus domain.LetterStatus, reason string) (err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { err = tx.Commit(ctx) }
    }()

    var letterID string
    if err = tx.QueryRow(ctx, `SELECT letter_id FROM letter_jobs WHERE id=$1`, jobID).Scan(&letterID); err != nil {
        return notFound(err)
    }
    if _, err = tx.Exec(ctx, `UPDATE letter_jobs SET status=$2, last_error=$3, finished_at=now() WHERE id=$1`, jobID, jobStatus, reason); err != nil {
        return err
    }
    if _, err = tx.Exec(ctx, `UPDATE letters SET status=$2, error=$3 WHERE id=$1`, letterID, letterStatus, reason); err != nil {
        return err
    }
    return nil
}

// StartJobForLetter marks the queued job for a specific letter as running and returns the job id.
func (db *DB) StartJobForLetter(ctx context.Context, letterID string) (jobID string, err error) {
    tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
    if err != nil { return "", err }
    defer func() {
        if err != nil { _ = tx.Rollback(ctx) } else { err = tx.Commit(ctx) }
    }()

    // lock specific job row if queued
    err = tx.QueryRow(ctx, `
        SELECT id FROM letter_jobs
        WHERE letter_id = $1 AND status = 'queued'
        FOR UPDATE SKIP LOCKED
    `, letterID).Scan(&jobID)
    if err != nil { return "", notFound(err) }
    if _, err = tx.Exec(ctx, `UPDATE letter_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1`, jobID); err != nil {
        return "", err
    }
    if _, err = tx.Exec(ctx, `UPDATE letters SET status='generating' WHERE id=$1`, letterID); err != nil {
        return "", err
    }
    return jobID, nil
}
