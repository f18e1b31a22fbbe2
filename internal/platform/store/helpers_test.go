package store

import (
	"context"
	"errors"
	"reflect"
	"testing"

	perr "github.com/Committee-of-System-Library/knu-cse-notice-bot/internal/platform/errors"
)

type cmdTag string

func (c cmdTag) String() string      { return string(c) }
func (c cmdTag) RowsAffected() int64 { return 0 }

type fakeRows struct {
	cols   []string
	data   [][]any
	idx    int
	err    error
	closed bool
}

func newRows(cols []string, data [][]any) *fakeRows {
	return &fakeRows{cols: cols, data: data, idx: -1}
}

func (r *fakeRows) Columns() []string { return r.cols }

func (r *fakeRows) Next() bool {
	if r.err != nil {
		return false
	}
	r.idx++
	return r.idx >= 0 && r.idx < len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.idx < 0 || r.idx >= len(r.data) {
		return errors.New("scan out of bounds")
	}
	row := r.data[r.idx]
	if len(dest) != len(row) {
		return errors.New("dest len mismatch")
	}
	for i := range dest {
		dv := reflect.ValueOf(dest[i])
		if dv.Kind() != reflect.Pointer || !dv.Elem().CanSet() {
			return errors.New("dest not settable")
		}
		val := reflect.ValueOf(row[i])
		if val.IsValid() && val.Type().AssignableTo(dv.Elem().Type()) {
			dv.Elem().Set(val)
			continue
		}
		if !val.IsValid() {
			dv.Elem().Set(reflect.Zero(dv.Elem().Type()))
			continue
		}
		return errors.New("type mismatch")
	}
	return nil
}

func (r *fakeRows) Err() error { return r.err }
func (r *fakeRows) Close()     { r.closed = true }

type fakeQuerier struct {
	rows     Rows
	queryErr error

	execSQL string
	execTag CommandTag
	execErr error
}

func (f *fakeQuerier) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	f.execSQL = sql
	return f.execTag, f.execErr
}

func (f *fakeQuerier) Query(context.Context, string, ...any) (Rows, error) {
	return f.rows, f.queryErr
}

func (f *fakeQuerier) QueryRow(context.Context, string, ...any) Row {
	return &rowFromRows{rows: f.rows}
}

type pair struct {
	ID   int64
	Name string
}

func scanPair(r Row) (pair, error) {
	var p pair
	err := r.Scan(&p.ID, &p.Name)
	return p, err
}

func TestOneReturnsSingleRow(t *testing.T) {
	t.Parallel()

	rows := newRows([]string{"id", "name"}, [][]any{{int64(7), "seven"}})
	q := &fakeQuerier{rows: rows}

	got, err := One(context.Background(), q, scanPair, "SELECT")
	if err != nil {
		t.Fatalf("One: %v", err)
	}
	if got.ID != 7 || got.Name != "seven" {
		t.Fatalf("One = %+v", got)
	}
	if !rows.closed {
		t.Fatalf("rows not closed")
	}
}

func TestOneNotFound(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: newRows([]string{"id", "name"}, nil)}
	_, err := One(context.Background(), q, scanPair, "SELECT")
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestOneRejectsMultipleRows(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: newRows([]string{"id", "name"}, [][]any{
		{int64(1), "a"},
		{int64(2), "b"},
	})}
	if _, err := One(context.Background(), q, scanPair, "SELECT"); err == nil {
		t.Fatalf("One accepted two rows")
	}
}

func TestManyMapsAllRows(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: newRows([]string{"id", "name"}, [][]any{
		{int64(1), "a"},
		{int64(2), "b"},
	})}
	got, err := Many(context.Background(), q, scanPair, "SELECT")
	if err != nil {
		t.Fatalf("Many: %v", err)
	}
	if len(got) != 2 || got[1].Name != "b" {
		t.Fatalf("Many = %+v", got)
	}
}

func TestManyEmptyIsNil(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: newRows([]string{"id", "name"}, nil)}
	got, err := Many(context.Background(), q, scanPair, "SELECT")
	if err != nil || got != nil {
		t.Fatalf("Many empty = (%v, %v)", got, err)
	}
}

func TestScalar(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: newRows([]string{"n"}, [][]any{{int64(42)}})}
	q.rows.Next() // position the Row facade on the single row

	got, err := Scalar[int64](context.Background(), q, "SELECT count(*)")
	if err != nil {
		t.Fatalf("Scalar: %v", err)
	}
	if got != 42 {
		t.Fatalf("Scalar = %d", got)
	}
}

func TestExecOne(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{execTag: cmdTag("UPDATE 1")}
	if err := ExecOne(context.Background(), q, "UPDATE x"); err != nil {
		t.Fatalf("ExecOne: %v", err)
	}

	q = &fakeQuerier{execTag: cmdTag("UPDATE 0")}
	if err := ExecOne(context.Background(), q, "UPDATE x"); err == nil {
		t.Fatalf("ExecOne accepted zero rows")
	}
}

func TestMapAndMaps(t *testing.T) {
	t.Parallel()

	q := &fakeQuerier{rows: newRows([]string{"id", "name"}, [][]any{{int64(1), "a"}})}
	m, err := Map(context.Background(), q, "SELECT")
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	if m["id"] != int64(1) || m["name"] != "a" {
		t.Fatalf("Map = %+v", m)
	}

	q = &fakeQuerier{rows: newRows([]string{"id", "name"}, [][]any{
		{int64(1), "a"},
		{int64(2), "b"},
	})}
	ms, err := Maps(context.Background(), q, "SELECT")
	if err != nil {
		t.Fatalf("Maps: %v", err)
	}
	if len(ms) != 2 || ms[1]["name"] != "b" {
		t.Fatalf("Maps = %+v", ms)
	}
}
