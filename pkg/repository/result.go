package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
	"github.com/jmoiron/sqlx"

	"github.com/umputun/keyscope/pkg/domain"
)

// ResultRepository persists extraction runs and their results
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository creates a new result repository
func NewResultRepository(database *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: database}
}

// CreateRun opens a new extraction run and returns its id
func (r *ResultRepository) CreateRun(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO runs (started_at) VALUES (?)", time.Now())
	if err != nil {
		return 0, fmt.Errorf("create run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get run id: %w", err)
	}
	return id, nil
}

// FinishRun stores the final summary counts for a run
func (r *ResultRepository) FinishRun(ctx context.Context, runID int64, summary domain.RunSummary) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		query := `
			UPDATE runs
			SET finished_at = ?, attempted = ?, succeeded = ?, dropped = ?, rerouted = ?, keywords = ?
			WHERE id = ?
		`
		_, err := r.db.ExecContext(ctx, query, summary.FinishedAt, summary.Attempted,
			summary.Succeeded, summary.Dropped, summary.Rerouted, summary.Keywords, runID)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("finish run: %w", err)}
		}
		return nil
	}, errCritical)
}

// SaveResult inserts one extraction result with its keywords in a single
// transaction
func (r *ResultRepository) SaveResult(ctx context.Context, runID int64, res *domain.ExtractionResult) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	return retrier.Do(ctx, func() error {
		tx, err := r.db.BeginTxx(ctx, nil)
		if err != nil {
			if isLockError(err) {
				return err // repeater will retry this
			}
			return &criticalError{err: fmt.Errorf("begin tx: %w", err)}
		}
		defer func() { _ = tx.Rollback() }()

		sqlRes, err := tx.ExecContext(ctx,
			"INSERT INTO results (run_id, item_url, item_name, provider, elapsed_ms) VALUES (?, ?, ?, ?, ?)",
			runID, res.ItemURL, res.ItemName, res.Provider, res.Elapsed.Milliseconds())
		if err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("insert result: %w", err)}
		}

		resultID, err := sqlRes.LastInsertId()
		if err != nil {
			return &criticalError{err: fmt.Errorf("get result id: %w", err)}
		}

		for _, kw := range res.Keywords {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO keywords (result_id, keyword, dimension, reason) VALUES (?, ?, ?, ?)",
				resultID, kw.Keyword, kw.Dimension, kw.Reason); err != nil {
				if isLockError(err) {
					return err
				}
				return &criticalError{err: fmt.Errorf("insert keyword: %w", err)}
			}
		}

		if err := tx.Commit(); err != nil {
			if isLockError(err) {
				return err
			}
			return &criticalError{err: fmt.Errorf("commit result: %w", err)}
		}
		return nil
	}, errCritical)
}

// CountResults returns how many results a run produced
func (r *ResultRepository) CountResults(ctx context.Context, runID int64) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM results WHERE run_id = ?", runID); err != nil {
		return 0, fmt.Errorf("count results: %w", err)
	}
	return count, nil
}

// RunResults binds the repository to one run so the scheduler can persist
// results as they arrive
type RunResults struct {
	repo  *ResultRepository
	runID int64
}

// ForRun returns a result writer bound to the given run id
func (r *ResultRepository) ForRun(runID int64) *RunResults {
	return &RunResults{repo: r, runID: runID}
}

// SaveResult persists one result under the bound run
func (b *RunResults) SaveResult(ctx context.Context, res *domain.ExtractionResult) error {
	return b.repo.SaveResult(ctx, b.runID, res)
}
