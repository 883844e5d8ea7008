// Package pg opens a pgx pool and traces queries through zerolog
package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config for Open
type Config struct {
	URL      string
	MaxConns int32
	// SlowMs marks queries at or over it as slow, negative disables
	SlowMs int
}

// PG is a pool plus the tracer its adapters report to
type PG struct {
	Pool   *pgxpool.Pool
	Tracer QueryTracer
	SlowMs int
}

// Open parses cfg.URL and creates the pool. pgxpool connects lazily
func Open(ctx context.Context, cfg Config, tracer QueryTracer) (*PG, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, Tracer: tracer, SlowMs: cfg.SlowMs}, nil
}

func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
