package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
)

type sqliteDB struct {
	*sql.DB
}

func (d *sqliteDB) count(t *testing.T, ctx context.Context) int {
	t.Helper()
	var n int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM activity_records`).Scan(&n); err != nil {
		t.Fatalf("count records: %v", err)
	}
	return n
}
