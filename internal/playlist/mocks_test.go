package playlist

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockDB implements store.DB. Statements on the pool and inside a
// transaction are routed through the same funcs so a test scripts one
// conversation regardless of where it runs.
type MockDB struct {
	ExecFunc     func(sql string, args ...any) (pgconn.CommandTag, error)
	QueryRowFunc func(sql string, args ...any) pgx.Row
	QueryFunc    func(sql string, args ...any) (pgx.Rows, error)

	Execs     []string
	ExecArgs  [][]any
	Commits   int
	Rollbacks int
}

func (m *MockDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.Execs = append(m.Execs, sql)
	m.ExecArgs = append(m.ExecArgs, args)
	if m.ExecFunc != nil {
		return m.ExecFunc(sql, args...)
	}
	return pgconn.NewCommandTag("OK 1"), nil
}

func (m *MockDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(sql, args...)
	}
	return &MockRows{}, nil
}

func (m *MockDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(sql, args...)
	}
	return &MockRow{Err: pgx.ErrNoRows}
}

func (m *MockDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) {
	return &MockTx{db: m}, nil
}

// executed reports whether any Exec contained fragment.
func (m *MockDB) executed(fragment string) bool {
	for _, sql := range m.Execs {
		if strings.Contains(sql, fragment) {
			return true
		}
	}
	return false
}

// MockTx implements pgx.Tx on top of a MockDB.
type MockTx struct {
	pgx.Tx // unchecked methods panic if called

	db *MockDB
}

func (m *MockTx) Commit(context.Context) error {
	m.db.Commits++
	return nil
}

func (m *MockTx) Rollback(context.Context) error {
	m.db.Rollbacks++
	return nil
}

func (m *MockTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.db.Exec(ctx, sql, args...)
}

func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.db.QueryRow(ctx, sql, args...)
}

func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.db.Query(ctx, sql, args...)
}

// MockRow implements pgx.Row. Values are assigned positionally; a nil value
// leaves the destination untouched.
type MockRow struct {
	Values []any
	Err    error
}

func (m *MockRow) Scan(dest ...any) error {
	if m.Err != nil {
		return m.Err
	}
	assign(dest, m.Values)
	return nil
}

func rowOf(values ...any) *MockRow { return &MockRow{Values: values} }

func assign(dest, values []any) {
	for i, v := range values {
		if v == nil || i >= len(dest) || dest[i] == nil {
			continue
		}
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
}

// MockRows implements pgx.Rows over in-memory data.
type MockRows struct {
	pgx.Rows
	Data [][]any
	Idx  int
}

func (m *MockRows) Next() bool {
	m.Idx++
	return m.Idx <= len(m.Data)
}

func (m *MockRows) Scan(dest ...any) error {
	assign(dest, m.Data[m.Idx-1])
	return nil
}

func (m *MockRows) Close()                        {}
func (m *MockRows) Err() error                    { return nil }
func (m *MockRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func intPtr(v int) *int { return &v }

// entryValues is one row of entryColumns.
func entryValues(trackID, title string, position int) []any {
	return []any{
		trackID, title, "album-1", intPtr(200), "/audio/" + title + ".mp3", nil,
		int64(0), time.Now(), "Album", nil, "artist-1", "Artist",
		position, time.Now(),
	}
}
