// Command spec11-publish runs one publish decision for a job and date and exits.
// Exit codes: 0 report sent, 3 handled failure alerted, 75 job still running, 1 unhandled error.
// -migrate creates the postgres tables and -import copies a report file into pg and ch
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spec11/internal/modkit"
	"spec11/internal/modkit/module"
	"spec11/internal/platform/config"
	perr "spec11/internal/platform/errors"
	"spec11/internal/platform/logger"
	"spec11/internal/platform/store"

	s11dom "spec11/internal/services/spec11/domain"
	spec11mod "spec11/internal/services/spec11/module"
	s11repo "spec11/internal/services/spec11/repo"
)

const (
	exitOK        = 0
	exitUnhandled = 1
	exitUsage     = 2
	exitHandled   = 3
	exitRetry     = 75 // EX_TEMPFAIL
)

func main() {
	os.Exit(run())
}

func run() int {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	logger.Init(logger.FromEnv())
	l := logger.Get()

	var (
		fJob     = flag.String("job", "", "batch job id to poll")
		fDate    = flag.String("date", "", "report date YYYY-MM-DD (default today UTC)")
		fMigrate = flag.Bool("migrate", false, "create the postgres tables and exit")
		fImport  = flag.Bool("import", false, "copy the report file for -date into the configured pg and ch sources and exit")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgURL := pgCfg.MayString("DBURL", "")
	chURL := chCfg.MayString("DBURL", "")
	st, err := store.Open(ctx, store.Config{
		AppName: "spec11-publish",
		PG: store.PGConfig{
			Enabled:     pgURL != "",
			URL:         pgURL,
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chURL != "",
			URL:        chURL,
			ClientName: "spec11",
			ClientTag:  "publish",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Error().Err(err).Msg("store.Open failed")
		return exitUnhandled
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if *fMigrate {
		if st.PG == nil {
			l.Error().Msg("-migrate requires SERVICE_PGSQL_DBURL")
			return exitUsage
		}
		if err := s11repo.NewPG(st.PG).EnsureSchema(ctx); err != nil {
			l.Error().Err(err).Msg("schema migration failed")
			return exitUnhandled
		}
		l.Info().Msg("schema ready")
		return exitOK
	}

	date := time.Now().UTC()
	if *fDate != "" {
		d, err := s11dom.ParseDay(*fDate)
		if err != nil {
			l.Error().Err(err).Str("date", *fDate).Msg("bad -date")
			return exitUsage
		}
		date = d
	}

	opts := spec11mod.FromConfig(root)

	if *fImport {
		im := s11repo.Importer{Files: s11repo.NewFileStore(opts.ReportDir), PG: st.PG, CH: st.CH}
		n, err := im.Import(ctx, s11dom.Day(date))
		if err != nil {
			l.Error().Err(err).Str("date", s11dom.FormatDay(date)).Msg("import failed")
			if perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
				return exitUsage
			}
			return exitUnhandled
		}
		l.Info().Str("date", s11dom.FormatDay(date)).Int("matches", n).Msg("report imported")
		return exitOK
	}

	if *fJob == "" {
		l.Error().Msg("-job is required")
		return exitUsage
	}

	m, err := spec11mod.NewWithOptions(modkit.Deps{Cfg: root, Log: *l, PG: st.PG, CH: st.CH}, opts)
	if err != nil {
		l.Error().Err(err).Msg("spec11 module config")
		return exitUsage
	}

	res := module.MustPortsOf[s11dom.PublisherPort](m).Publish(ctx, *fJob, date)
	ev := l.Info()
	if res.Signal == s11dom.SignalUnhandledError {
		ev = l.Error().Err(res.Err)
	}
	ev.Str("signal", res.Signal.String()).
		Str("kind", res.Kind.String()).
		Str("job_id", res.JobID).
		Str("date", s11dom.FormatDay(res.Date)).
		Int("registrars", res.Registrars).
		Int("matches", res.Matches).
		Msg("spec11 publish finished")

	return exitCode(res.Signal)
}

func exitCode(s s11dom.Signal) int {
	switch s {
	case s11dom.SignalSuccess:
		return exitOK
	case s11dom.SignalHandledFailure:
		return exitHandled
	case s11dom.SignalRetryLater:
		return exitRetry
	default:
		return exitUnhandled
	}
}
