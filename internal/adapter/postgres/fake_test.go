package postgres

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
)

// fakeRow hands values to Scan the way pgx does, converting to named types
// such as domain.TableStatus.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(r.values, dest)
}

func assign(values []any, dest []any) error {
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		target.Set(reflect.ValueOf(values[i]).Convert(target.Type()))
	}
	return nil
}

type fakeRows struct {
	values [][]any
	pos    int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.values) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error { return assign(r.values[r.pos-1], dest) }
func (r *fakeRows) Err() error             { return r.err }
func (r *fakeRows) Close()                 { r.closed = true }

type fakeTag int64

func (t fakeTag) RowsAffected() int64 { return int64(t) }

type statement struct {
	sql  string
	args []any
}

// fakeQuerier answers every statement with the configured row, rows or tag
// and records what was run.
type fakeQuerier struct {
	mu       sync.Mutex
	row      fakeRow
	rows     *fakeRows
	queryErr error
	affected int64
	execErr  error
	ran      []statement
}

func (q *fakeQuerier) record(sql string, args []any) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ran = append(q.ran, statement{sql: sql, args: args})
}

func (q *fakeQuerier) Query(_ context.Context, sql string, args ...any) (Rows, error) {
	q.record(sql, args)
	if q.queryErr != nil {
		return nil, q.queryErr
	}
	if q.rows == nil {
		return &fakeRows{}, nil
	}
	return q.rows, nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) Row {
	q.record(sql, args)
	return q.row
}

func (q *fakeQuerier) Exec(_ context.Context, sql string, args ...any) (CommandTag, error) {
	q.record(sql, args)
	if q.execErr != nil {
		return nil, q.execErr
	}
	return fakeTag(q.affected), nil
}

func (q *fakeQuerier) last() statement {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.ran) == 0 {
		return statement{}
	}
	return q.ran[len(q.ran)-1]
}

func (s statement) locks() bool {
	return strings.Contains(s.sql, "FOR UPDATE")
}

type fakeTx struct {
	*fakeQuerier
	committed  bool
	rolledBack bool
	commitErr  error
}

func (t *fakeTx) Commit(context.Context) error {
	if t.rolledBack {
		return pgx.ErrTxClosed
	}
	t.committed = true
	return t.commitErr
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeDB struct {
	*fakeQuerier
	tx       *fakeTx
	beginErr error
	pingErr  error
}

func (db *fakeDB) Begin(context.Context) (Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

func (db *fakeDB) Ping(context.Context) error { return db.pingErr }
func (db *fakeDB) Close()                     {}
