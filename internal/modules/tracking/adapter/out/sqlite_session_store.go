package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"babylog/internal/modules/tracking/domain"
	trackingout "babylog/internal/modules/tracking/port/out"
	apperrors "babylog/internal/platform/errors"
	"babylog/internal/platform/sqlite"
)

const sessionColumns = `id, baby_id, kind, start_time, last_checkpoint_at, status, left_seconds, right_seconds, paused_seconds, seconds, notes, fields`

type SQLiteSessionStore struct {
	db *sql.DB
}

func NewSQLiteSessionStore(db *sql.DB) trackingout.SessionStore {
	return &SQLiteSessionStore{db: db}
}

func (s *SQLiteSessionStore) Get(ctx context.Context, babyID string, kind domain.Kind) (domain.ActiveSession, error) {
	row := sqlite.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM active_sessions WHERE baby_id = ? AND kind = ?`, babyID, string(kind))
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ActiveSession{}, apperrors.ErrNoActiveSession
	}
	if err != nil {
		return domain.ActiveSession{}, apperrors.Persistence("get active session", err)
	}
	return session, nil
}

func (s *SQLiteSessionStore) Insert(ctx context.Context, session domain.ActiveSession) error {
	args, err := sessionArgs(session)
	if err != nil {
		return err
	}
	_, err = sqlite.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO active_sessions (`+sessionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if isUniqueViolation(err) {
		return apperrors.ErrActiveSessionExists
	}
	if err != nil {
		return apperrors.Persistence("insert active session", err)
	}
	return nil
}

func (s *SQLiteSessionStore) Update(ctx context.Context, session domain.ActiveSession) error {
	fields, err := encodeFields(session.Fields)
	if err != nil {
		return err
	}
	b := session.Timer.Buckets()
	res, err := sqlite.Conn(ctx, s.db).ExecContext(ctx, `
UPDATE active_sessions SET
  start_time = ?,
  last_checkpoint_at = ?,
  status = ?,
  left_seconds = ?,
  right_seconds = ?,
  paused_seconds = ?,
  seconds = ?,
  notes = ?,
  fields = ?
WHERE id = ?`,
		formatTime(session.StartTime),
		formatTime(session.LastCheckpointAt),
		session.Timer.Status().String(),
		b.Left, b.Right, b.Paused, b.Seconds,
		session.Notes,
		fields,
		session.ID,
	)
	if err != nil {
		return apperrors.Persistence("update active session", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.ErrNoActiveSession
	}
	return nil
}

func (s *SQLiteSessionStore) Delete(ctx context.Context, babyID string, kind domain.Kind) error {
	res, err := sqlite.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM active_sessions WHERE baby_id = ? AND kind = ?`, babyID, string(kind))
	if err != nil {
		return apperrors.Persistence("delete active session", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Persistence("delete active session", err)
	}
	if n == 0 {
		return apperrors.ErrNoActiveSession
	}
	return nil
}

func (s *SQLiteSessionStore) ListOpen(ctx context.Context, babyID string) ([]domain.ActiveSession, error) {
	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM active_sessions WHERE baby_id = ? ORDER BY start_time, kind`, babyID)
	if err != nil {
		return nil, apperrors.Persistence("list active sessions", err)
	}
	defer rows.Close()

	var out []domain.ActiveSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, apperrors.Persistence("scan active session", err)
		}
		out = append(out, session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("list active sessions", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.ActiveSession, error) {
	var (
		session            domain.ActiveSession
		kind, status       string
		startRaw, checkRaw string
		fieldsRaw          string
		b                  domain.Buckets
	)
	if err := row.Scan(&session.ID, &session.BabyID, &kind, &startRaw, &checkRaw, &status,
		&b.Left, &b.Right, &b.Paused, &b.Seconds, &session.Notes, &fieldsRaw); err != nil {
		return domain.ActiveSession{}, err
	}
	var err error
	if session.StartTime, err = parseTime(startRaw); err != nil {
		return domain.ActiveSession{}, err
	}
	if session.LastCheckpointAt, err = parseTime(checkRaw); err != nil {
		return domain.ActiveSession{}, err
	}
	if session.Timer, err = domain.RestoreTimer(domain.Kind(kind), status, b); err != nil {
		return domain.ActiveSession{}, fmt.Errorf("restore timer: %w", err)
	}
	if session.Fields, err = decodeFields(fieldsRaw); err != nil {
		return domain.ActiveSession{}, err
	}
	return session, nil
}

func sessionArgs(session domain.ActiveSession) ([]any, error) {
	fields, err := encodeFields(session.Fields)
	if err != nil {
		return nil, err
	}
	b := session.Timer.Buckets()
	return []any{
		session.ID,
		session.BabyID,
		string(session.Kind()),
		formatTime(session.StartTime),
		formatTime(session.LastCheckpointAt),
		session.Timer.Status().String(),
		b.Left, b.Right, b.Paused, b.Seconds,
		session.Notes,
		fields,
	}, nil
}
