package out

import (
	"context"
	"database/sql"
	"time"

	"babylog/internal/modules/tracking/domain"
	trackingout "babylog/internal/modules/tracking/port/out"
	apperrors "babylog/internal/platform/errors"
	"babylog/internal/platform/sqlite"
)

type SQLiteRecordStore struct {
	db *sql.DB
}

func NewSQLiteRecordStore(db *sql.DB) trackingout.RecordStore {
	return &SQLiteRecordStore{db: db}
}

func (s *SQLiteRecordStore) Create(ctx context.Context, record domain.Record) error {
	fields, err := encodeFields(record.Fields)
	if err != nil {
		return err
	}
	const stmt = `
INSERT INTO activity_records (id, baby_id, kind, start_time, end_time, left_seconds, right_seconds, paused_seconds, seconds, notes, fields, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = sqlite.Conn(ctx, s.db).ExecContext(ctx, stmt,
		record.ID,
		record.BabyID,
		string(record.Kind),
		formatTime(record.StartTime),
		formatTime(record.EndTime),
		record.LeftSeconds,
		record.RightSeconds,
		record.PausedSeconds,
		record.Seconds,
		record.Notes,
		fields,
		formatTime(record.CreatedAt),
	)
	if err != nil {
		return apperrors.Persistence("create activity record", err)
	}
	return nil
}

// List compares start times as text, which orders correctly because every
// timestamp is written in UTC with the same layout.
func (s *SQLiteRecordStore) List(ctx context.Context, babyID string, from, to time.Time) ([]domain.Record, error) {
	rows, err := sqlite.Conn(ctx, s.db).QueryContext(ctx, `
SELECT id, baby_id, kind, start_time, end_time, left_seconds, right_seconds, paused_seconds, seconds, notes, fields, created_at
FROM activity_records
WHERE baby_id = ? AND start_time >= ? AND start_time < ?
ORDER BY start_time, created_at`, babyID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, apperrors.Persistence("list activity records", err)
	}
	defer rows.Close()

	records := []domain.Record{}
	for rows.Next() {
		var (
			r                            domain.Record
			kind, startRaw, endRaw, fRaw string
			createdRaw                   string
		)
		if err := rows.Scan(&r.ID, &r.BabyID, &kind, &startRaw, &endRaw,
			&r.LeftSeconds, &r.RightSeconds, &r.PausedSeconds, &r.Seconds, &r.Notes, &fRaw, &createdRaw); err != nil {
			return nil, apperrors.Persistence("scan activity record", err)
		}
		r.Kind = domain.Kind(kind)
		if r.StartTime, err = parseTime(startRaw); err != nil {
			return nil, apperrors.Persistence("scan activity record", err)
		}
		if r.EndTime, err = parseTime(endRaw); err != nil {
			return nil, apperrors.Persistence("scan activity record", err)
		}
		if r.CreatedAt, err = parseTime(createdRaw); err != nil {
			return nil, apperrors.Persistence("scan activity record", err)
		}
		if r.Fields, err = decodeFields(fRaw); err != nil {
			return nil, apperrors.Persistence("scan activity record", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Persistence("list activity records", err)
	}
	return records, nil
}
