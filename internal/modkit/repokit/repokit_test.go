package repokit

import (
	"context"
	"errors"
	"strings"
	"testing"

	kit "spec11/internal/platform/testkit"
)

// txLog records statements; Tx records begin and its outcome
type txLog struct{ lines []string }

func (l *txLog) Exec(_ context.Context, sql string, _ ...any) (CommandTag, error) {
	l.lines = append(l.lines, sql)
	return nil, nil
}
func (l *txLog) Query(context.Context, string, ...any) (Rows, error) { return nil, nil }
func (l *txLog) QueryRow(context.Context, string, ...any) Row        { return nil }
func (l *txLog) Tx(ctx context.Context, fn func(Queryer) error) error {
	l.lines = append(l.lines, "BEGIN")
	if err := fn(l); err != nil {
		l.lines = append(l.lines, "ROLLBACK")
		return err
	}
	l.lines = append(l.lines, "COMMIT")
	return nil
}

func exec(sql string) BeginHook {
	return func(ctx context.Context, q Queryer) error {
		_, err := q.Exec(ctx, sql)
		return err
	}
}

func TestWithBeginHooks(t *testing.T) {
	ctx := context.Background()
	l := &txLog{}
	tx := WithBeginHooks(l, exec("SET a"), exec("SET b"))

	err := tx.Tx(ctx, func(q Queryer) error {
		_, err := q.Exec(ctx, "INSERT")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tx.Exec(ctx, "OUTSIDE"); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(l.lines, ";"); got != "BEGIN;SET a;SET b;INSERT;COMMIT;OUTSIDE" {
		t.Fatalf("statements = %s", got)
	}
}

func TestWithBeginHooks_HookFailureRollsBack(t *testing.T) {
	l := &txLog{}
	boom := errors.New("boom")
	ran := false
	tx := WithBeginHooks(l, func(context.Context, Queryer) error { return boom })

	err := tx.Tx(context.Background(), func(Queryer) error { ran = true; return nil })
	if !errors.Is(err, boom) || ran {
		t.Fatalf("err=%v ran=%v", err, ran)
	}
	if got := strings.Join(l.lines, ";"); got != "BEGIN;ROLLBACK" {
		t.Fatalf("statements = %s", got)
	}
}

type named struct{ q Queryer }

func TestMustBind(t *testing.T) {
	b := BindFunc[named](func(q Queryer) named { return named{q: q} })
	l := &txLog{}
	if got := MustBind[named](b, l); got.q != Queryer(l) {
		t.Fatal("bound to the wrong queryer")
	}
	kit.MustPanic(t, func() { MustBind[named](b, nil) })
}

type guard struct{ err error }

func (g guard) Guard(context.Context) error { return g.err }

func TestMustGuard(t *testing.T) {
	MustGuard(context.Background(), guard{})
	kit.MustPanic(t, func() { MustGuard(context.Background(), guard{err: errors.New("pg down")}) })
}
