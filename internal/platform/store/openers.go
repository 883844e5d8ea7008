package store

import (
	"context"
	"fmt"
	"time"

	"spec11/internal/platform/logger"
	chx "spec11/internal/platform/store/ch"
	"spec11/internal/platform/store/pg"
)

// openPG builds the pool and waits for it to answer a ping, backing off
// from 150ms up to 2s between attempts
func openPG(ctx context.Context, cfg PGConfig, log logger.Logger) (*pgAdapter, error) {
	var tracer pg.QueryTracer
	if cfg.LogSQL {
		tracer = pg.Tracer(log)
	}
	p, err := pg.Open(ctx, pg.Config{URL: cfg.URL, MaxConns: cfg.MaxConns, SlowMs: cfg.SlowQueryMs}, tracer)
	if err != nil {
		return nil, err
	}

	attempts := cfg.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	timeout := cfg.PingTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	wait := 150 * time.Millisecond
	var last error
	for i := 0; i < attempts; i++ {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		last = p.Pool.Ping(pctx)
		cancel()
		if last == nil {
			return newPGAdapter(p), nil
		}

		select {
		case <-ctx.Done():
			p.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, 2*time.Second)
	}
	p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, last)
}

func openCH(ctx context.Context, cfg CHConfig) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.URL, ClientName: cfg.ClientName, ClientTag: cfg.ClientTag})
	if err != nil {
		return nil, err
	}
	return newCHAdapter(c), nil
}
