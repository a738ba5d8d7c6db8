package store

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/wordtrainer/internal/model"
	"github.com/verte-zerg/wordtrainer/internal/revision"
	"github.com/verte-zerg/wordtrainer/internal/wordlist"
)

// ErrLocked is returned when another drill session holds the store.
var ErrLocked = errors.New("store: another session is in progress")

// StaleLockAfter is how old a session lock must be before it can be taken over.
const StaleLockAfter = 12 * time.Hour

// Fixed width so timestamps compare correctly as text.
const lockLayout = "2006-01-02T15:04:05.000Z"

// LoadAll reads every revision record in insertion order. Rows with an
// unparseable date, an interval off the ladder or an invalid word are skipped
// and counted.
func (s *Store) LoadAll(ctx context.Context) ([]model.RevisionRecord, int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, next_due, interval FROM revision_records ORDER BY position ASC, rowid ASC`)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var records []model.RevisionRecord
	skipped := 0
	for rows.Next() {
		var word, nextDue, interval sql.NullString
		if err := rows.Scan(&word, &nextDue, &interval); err != nil {
			return nil, 0, err
		}
		rec, ok := parseRecord(scanString(word), scanString(nextDue), scanString(interval))
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return records, skipped, nil
}

// SaveAll replaces every stored revision record with records.
func (s *Store) SaveAll(ctx context.Context, records []model.RevisionRecord) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM revision_records`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO revision_records (position, word, next_due, interval) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := stmt.Close(); cerr != nil {
			// Best-effort statement close.
			_ = cerr
		}
	}()
	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, i, rec.Word, rec.NextDue.Format(dateLayout), rec.Interval); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func parseRecord(word, nextDue, interval string) (model.RevisionRecord, bool) {
	if !wordlist.IsWord(word) {
		return model.RevisionRecord{}, false
	}
	due, err := time.Parse(dateLayout, nextDue)
	if err != nil {
		return model.RevisionRecord{}, false
	}
	days, err := strconv.Atoi(interval)
	if err != nil || !revision.ValidInterval(days) {
		return model.RevisionRecord{}, false
	}
	return model.RevisionRecord{Word: word, NextDue: due, Interval: days}, true
}

// Lock is a held drill session lock.
type Lock struct {
	store  *Store
	holder string
}

// AcquireLock claims the store for one drill session. It fails with ErrLocked
// while a lock younger than StaleLockAfter is held.
func (s *Store) AcquireLock(ctx context.Context) (*Lock, error) {
	holder := uuid.NewString()
	now := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO session_lock (id, holder, acquired_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET holder = excluded.holder, acquired_at = excluded.acquired_at
		 WHERE session_lock.acquired_at < ?`,
		holder,
		now.Format(lockLayout),
		now.Add(-StaleLockAfter).Format(lockLayout),
	)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrLocked
	}
	return &Lock{store: s, holder: holder}, nil
}

// Release frees the lock if it is still held by this session.
func (l *Lock) Release(ctx context.Context) error {
	_, err := l.store.db.ExecContext(ctx, `DELETE FROM session_lock WHERE id = 1 AND holder = ?`, l.holder)
	return err
}

// Holder returns the lock token.
func (l *Lock) Holder() string {
	return l.holder
}

var _ revision.RecordStore = (*Store)(nil)

func scanString(v sql.NullString) string {
	if !v.Valid {
		return ""
	}
	return v.String
}
