package repository

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
	"CosmicClock/pkg/postgres"
)

//go:embed migrations/postgres/*.sql
var migrationsFS embed.FS

// PGPatternArchive implements PatternArchive on Postgres.
type PGPatternArchive struct {
	pool *postgres.Pool
}

var _ domrepo.PatternArchive = (*PGPatternArchive)(nil)

func NewPGPatternArchive(pool *postgres.Pool) *PGPatternArchive {
	return &PGPatternArchive{pool: pool}
}

// Init applies the embedded migrations.
func (s *PGPatternArchive) Init(ctx context.Context) error {
	return s.pool.Migrate(ctx, migrationsFS, "migrations/postgres")
}

const pgInsertEvent = `
    INSERT INTO pattern_events (event_id, pattern_id, name, category, description, detected_at, timezone)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    ON CONFLICT (event_id) DO NOTHING`

// Store is idempotent on EventID.
func (s *PGPatternArchive) Store(ctx context.Context, e *models.PatternEvent) error {
	if _, err := s.pool.Exec(ctx, pgInsertEvent, pgEventArgs(e)...); err != nil {
		return fmt.Errorf("insert pattern event: %w", err)
	}
	return nil
}

// StoreBatch sends all inserts in one pgx batch inside a transaction.
func (s *PGPatternArchive) StoreBatch(ctx context.Context, events []*models.PatternEvent) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	b := &pgx.Batch{}
	for _, e := range events {
		if e == nil {
			continue
		}
		b.Queue(pgInsertEvent, pgEventArgs(e)...)
	}
	if err := tx.SendBatch(ctx, b).Close(); err != nil {
		return fmt.Errorf("insert pattern events: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PGPatternArchive) Stats(ctx context.Context, from, to time.Time, g domrepo.Granularity) ([]models.PatternCount, error) {
	q := fmt.Sprintf(`
        SELECT date_trunc('%s', detected_at) AS bucket, pattern_id, count(*)
        FROM pattern_events
        WHERE detected_at >= $1 AND detected_at < $2
        GROUP BY bucket, pattern_id
        ORDER BY bucket ASC, pattern_id ASC`, pgTruncUnit(g))

	rows, err := s.pool.Query(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("pattern stats: %w", err)
	}
	defer rows.Close()

	var out []models.PatternCount
	for rows.Next() {
		var (
			c models.PatternCount
			n int64
		)
		if err := rows.Scan(&c.Bucket, &c.PatternID, &n); err != nil {
			return nil, fmt.Errorf("scan pattern count: %w", err)
		}
		c.Bucket = c.Bucket.UTC()
		c.Count = uint64(n)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PGPatternArchive) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close is a no-op; the pool is closed by its owner.
func (s *PGPatternArchive) Close() error { return nil }

func pgTruncUnit(g domrepo.Granularity) string {
	switch g {
	case domrepo.G1m:
		return "minute"
	case domrepo.G1d:
		return "day"
	default:
		return "hour"
	}
}

func pgEventArgs(e *models.PatternEvent) []interface{} {
	return []interface{}{e.EventID, e.PatternID, e.Name, string(e.Category), e.Description, e.DetectedAt.UTC(), e.Timezone}
}
