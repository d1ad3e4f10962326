package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// SlowQueryThreshold is the duration above which a finished query is logged at warn level.
const SlowQueryThreshold = 500 * time.Millisecond

func NewPool(ctx context.Context, databaseURL string, maxConns, minConns int32, logger zerolog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.ConnConfig.Tracer = &queryLogger{logger: logger.With().Str("component", "db").Logger()}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

type queryStartKey struct{}

type queryStart struct {
	sql   string
	start time.Time
}

// queryLogger implements pgx.QueryTracer. Failed and slow queries are logged;
// everything else is logged at debug.
type queryLogger struct {
	logger zerolog.Logger
}

func (q *queryLogger) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, start: time.Now()})
}

func (q *queryLogger) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qs, ok := ctx.Value(queryStartKey{}).(queryStart)
	if !ok {
		return
	}
	elapsed := time.Since(qs.start)

	evt := q.logger.Debug()
	switch {
	case data.Err != nil:
		evt = q.logger.Warn().Err(data.Err)
	case elapsed > SlowQueryThreshold:
		evt = q.logger.Warn().Bool("slow", true)
	}
	evt.Str("sql", qs.sql).
		Str("command", data.CommandTag.String()).
		Dur("elapsed", elapsed).
		Msg("query")
}
