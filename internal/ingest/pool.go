package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shortontech/gotrace/internal/metrics"
)

// DefaultCapacity is the default bounded pool size, per spec.md §4.B.
const DefaultCapacity = 10

// DefaultAcquireTimeout bounds how long Acquire blocks when the pool is
// saturated.
const DefaultAcquireTimeout = 5 * time.Second

// Pool is a bounded pool of live connections to the target database,
// used only by the writer thread inside Batcher — never on the emission
// hot path. It is a thin wrapper over pgxpool.Pool: pgxpool already
// blocks Acquire on a saturated pool until a connection frees up or the
// context is done, and already recycles dead connections transparently
// via its health-check loop, so Pool does not reimplement either.
type Pool struct {
	pool            *pgxpool.Pool
	acquireTimeout  time.Duration
	metrics         *metrics.Metrics
}

// OpenPool dials a bounded pgxpool.Pool against ep/dbname.
func OpenPool(ctx context.Context, ep Endpoint, dbname string, capacity int, m *metrics.Metrics) (*Pool, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	cfg, err := pgxpool.ParseConfig(connString(ep, dbname))
	if err != nil {
		return nil, fmt.Errorf("parsing pool config: %w", err)
	}
	cfg.MaxConns = int32(capacity)
	cfg.MinConns = 0
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute
	cfg.HealthCheckPeriod = time.Minute

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w: %v", ErrConnect, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, DefaultAcquireTimeout)
	defer cancel()
	if err := p.Ping(pingCtx); err != nil {
		p.Close()
		return nil, fmt.Errorf("pinging %s: %w: %v", dbname, ErrConnect, err)
	}

	return &Pool{pool: p, acquireTimeout: DefaultAcquireTimeout, metrics: m}, nil
}

// Acquire blocks until a connection is available or acquireTimeout
// elapses, whichever comes first. The caller must Release the returned
// connection.
func (p *Pool) Acquire(ctx context.Context) (*pgxpool.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, p.acquireTimeout)
	defer cancel()

	start := time.Now()
	conn, err := p.pool.Acquire(ctx)
	p.metrics.ObserveAcquire(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("acquiring connection: %w", err)
	}
	return conn, nil
}

// Close closes every connection in the pool.
func (p *Pool) Close() {
	p.pool.Close()
}
