package repo

import (
	"context"
	"fmt"
	"time"

	"spec11/internal/modkit/repokit"
	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/store"
)

// DefaultImportTimeout bounds each statement of a postgres import
const DefaultImportTimeout = 30 * time.Second

// PGBinder binds a PGStore to a querier, usually the one a tx hands out
var PGBinder repokit.Binder[*PGStore] = repokit.BindFunc[*PGStore](NewPG)

// StatementTimeout sets a tx local statement timeout
func StatementTimeout(d time.Duration) repokit.BeginHook {
	return func(ctx context.Context, q repokit.Queryer) error {
		_, err := q.Exec(ctx, fmt.Sprintf("SET LOCAL statement_timeout = %d", d.Milliseconds()))
		return err
	}
}

// Importer copies report files into the database snapshot sources.
// PG and CH are optional but at least one is required
type Importer struct {
	Files   *FileStore
	PG      repokit.TxRunner
	CH      store.Clickhouse
	Timeout time.Duration
}

// Import loads the report file for date and saves it to every configured target.
// Postgres replaces the date; ClickHouse appends one batch.
// It returns the number of matches copied
func (im Importer) Import(ctx context.Context, date time.Time) (int, error) {
	if im.Files == nil {
		return 0, perr.InvalidArgf("import needs a report directory")
	}
	if im.PG == nil && im.CH == nil {
		return 0, perr.InvalidArgf("import needs a pg or ch target")
	}

	snap, err := im.Files.Snapshot(ctx, date)
	if err != nil {
		return 0, err
	}

	if im.PG != nil {
		timeout := im.Timeout
		if timeout <= 0 {
			timeout = DefaultImportTimeout
		}
		tx := repokit.WithBeginHooks(im.PG, StatementTimeout(timeout))
		if err := repokit.MustBind(PGBinder, im.PG).SaveSnapshot(ctx, tx, snap); err != nil {
			return 0, err
		}
	}
	if im.CH != nil {
		if err := NewCH(im.CH).SaveSnapshot(ctx, snap); err != nil {
			return 0, err
		}
	}
	return snap.MatchCount(), nil
}
