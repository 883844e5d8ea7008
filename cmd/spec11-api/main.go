// @title         Spec11 Publisher API
// @version       0.1.0
// @description   Publish action for spec11 threat reports plus meta endpoints

package main

// docs land in internal/services/api/docs; build with -tags swag to serve them
//go:generate go run github.com/swaggo/swag/v2/cmd/swag@v2.0.0-rc4 init --v3.1 -g main.go -d ./,../../internal/services -o ../../internal/services/api/docs

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"spec11/internal/modkit/repokit"
	"spec11/internal/platform/config"
	"spec11/internal/platform/logger"
	phttp "spec11/internal/platform/net/http"
	"spec11/internal/platform/store"

	"spec11/internal/services/api"
)

func main() {
	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")

	pgCfg := root.Prefix("SERVICE_PGSQL_")      // optional, enables the pg source and jobs
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_") // optional, enables the ch source
	l := logger.Get()

	pgURL := pgCfg.MayString("DBURL", "")
	chURL := chCfg.MayString("DBURL", "")
	st, err := store.Open(
		context.Background(),
		store.Config{
			AppName: "spec11-api",
			PG: store.PGConfig{
				Enabled:     pgURL != "",
				URL:         pgURL,
				MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
				SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
				LogSQL:      pgCfg.MayBool("LOG_SQL", true),
			},
			CH: store.CHConfig{
				Enabled:    chURL != "",
				URL:        chURL,
				ClientName: "spec11",
				ClientTag:  "api",
			},
		},
		store.WithLogger(*logger.Get()),
	)
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// fail fast when a configured backend is unreachable
	repokit.MustGuard(context.Background(), st)

	// http server (reads CORE_API_PORT and CORE_API_SHUTDOWN_GRACE)
	srv := phttp.NewServer(apiCfg)

	if err := api.Mount(
		srv.Router(),
		api.Options{
			ServiceName:    "spec11-api",
			Config:         root,
			Store:          st,
			Logger:         l,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
		},
	); err != nil {
		l.Panic().Err(err).Msg("api mount failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("http server stopped")
	}
}
