package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/store"
	kit "spec11/internal/platform/testkit"
	"spec11/internal/services/spec11/domain"
)

type fakeCH struct {
	rows     [][]any
	queryErr error

	sql      string
	args     []any
	table    string
	inserted [][]any
}

func (f *fakeCH) Insert(_ context.Context, table string, data any) error {
	f.table = table
	f.inserted = data.([][]any)
	return nil
}

func (f *fakeCH) Query(_ context.Context, sql string, args ...any) (store.Rows, error) {
	f.sql, f.args = sql, args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{data: f.rows}, nil
}

func (f *fakeCH) Close() error { return nil }

func snapOf(t *testing.T, s string) domain.Snapshot {
	return domain.Snapshot{Date: day(t, s), Registrars: []domain.RegistrarThreatMatches{
		{RegistrarID: "reg-a", RegistrarEmail: "a@x", Matches: []domain.ThreatMatch{fm1, fm2}},
		{RegistrarEmail: "b@y", Matches: []domain.ThreatMatch{fm1}},
	}}
}

func TestCHStore_Snapshot(t *testing.T) {
	f := &fakeCH{rows: [][]any{
		{"a@x", "reg-a", "a.example", "MALWARE", "ANY_PLATFORM", ""},
		{"b@y", "", "b.example", "SOCIAL_ENGINEERING", "ANY_PLATFORM", "NONE"},
	}}
	snap, err := NewCH(f).Snapshot(context.Background(), day(t, "2024-05-10"))
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if snap.Len() != 2 || snap.ByEmail()["b@y"].Matches[0] != fm2 {
		t.Fatalf("snapshot = %+v", snap)
	}
	kit.MustContain(t, f.sql, CHTable)
}

func TestCHStore_SnapshotQueryError(t *testing.T) {
	f := &fakeCH{queryErr: errors.New("code: 60, table does not exist")}
	_, err := NewCH(f).Snapshot(context.Background(), day(t, "2024-05-10"))
	if !perr.IsCode(err, perr.ErrorCodeDB) {
		t.Fatalf("err = %v", err)
	}
}

func TestCHStore_PreviousDateWithData(t *testing.T) {
	prev := day(t, "2024-05-07")
	f := &fakeCH{rows: [][]any{{prev, uint64(12)}}}
	got, ok, err := NewCH(f).PreviousDateWithData(context.Background(), day(t, "2024-05-10"), day(t, "2024-04-10"))
	if err != nil || !ok || !got.Equal(prev) {
		t.Fatalf("got=%v ok=%v err=%v", got, ok, err)
	}

	f = &fakeCH{rows: [][]any{{time.Unix(0, 0).UTC(), uint64(0)}}}
	_, ok, err = NewCH(f).PreviousDateWithData(context.Background(), day(t, "2024-05-10"), day(t, "2024-04-10"))
	if err != nil || ok {
		t.Fatalf("empty window should be no baseline, ok=%v err=%v", ok, err)
	}
}

func TestCHStore_SaveSnapshot(t *testing.T) {
	f := &fakeCH{}
	if err := NewCH(f).SaveSnapshot(context.Background(), snapOf(t, "2024-05-10")); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	if f.table != CHTable || len(f.inserted) != 3 {
		t.Fatalf("insert = %q %d", f.table, len(f.inserted))
	}
	if seq := f.inserted[1][3].(uint32); seq != 1 {
		t.Fatalf("seq = %d", seq)
	}

	f = &fakeCH{}
	if err := NewCH(f).SaveSnapshot(context.Background(), domain.Snapshot{Date: day(t, "2024-05-10")}); err != nil || f.table != "" {
		t.Fatalf("empty snapshot should be a no-op, err=%v table=%q", err, f.table)
	}
}
