package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"time"
)

// Revision returns the account revision, it changes on every task write.
func (r *Repository) Revision(ctx context.Context) (int64, error) {
	var rev int64
	err := r.db.QueryRowContext(ctx, `SELECT revision FROM account_revisions WHERE account_id = ?`, r.accountID).Scan(&rev)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, backendErr("could not query account revision", err)
	}
	return rev, nil
}

func (r *Repository) bumpRevision(ctx context.Context, tx *sql.Tx) error {
	query := `
		INSERT INTO account_revisions (account_id, revision)
		VALUES (?, 1)
		ON CONFLICT (account_id) DO UPDATE SET revision = revision + 1
	`
	if _, err := tx.ExecContext(ctx, query, r.accountID); err != nil {
		return backendErr("could not bump account revision", err)
	}
	return nil
}

// SubscribeToExternalChanges polls the account revision and calls fn once per
// observed change, whoever the writer was. The returned stop function ends
// the polling and waits for it to finish.
func (r *Repository) SubscribeToExternalChanges(ctx context.Context, fn func()) (stop func(), err error) {
	last, err := r.Revision(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)

		ticker := time.NewTicker(r.watchInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			rev, err := r.Revision(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Warningf("Could not poll account revision: %s", err)
				continue
			}
			if rev == last {
				continue
			}

			r.logger.Debugf("Account revision changed %d -> %d", last, rev)
			last = rev
			fn()
		}
	}()

	var once sync.Once
	stop = func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}

	return stop, nil
}
