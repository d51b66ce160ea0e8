package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"CosmicClock/internal/domain/models"
	domrepo "CosmicClock/internal/domain/repository"
	pkgch "CosmicClock/pkg/clickhouse"
	applogger "CosmicClock/pkg/logger"
)

const chInsertChunk = 2000

// CHPatternArchive implements PatternArchive on ClickHouse.
type CHPatternArchive struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

var _ domrepo.PatternArchive = (*CHPatternArchive)(nil)

func NewCHPatternArchive(ch *pkgch.Client, table string, l *applogger.Logger) *CHPatternArchive {
	if table == "" {
		table = "pattern_events"
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHPatternArchive{db: ch.DB(), table: table, l: l}
}

// Init creates the events table if missing.
func (s *CHPatternArchive) Init(ctx context.Context) error {
	q := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            event_id    UUID,
            pattern_id  LowCardinality(String),
            name        String,
            category    LowCardinality(String),
            description String,
            detected_at DateTime64(3, 'UTC'),
            timezone    LowCardinality(String)
        ) ENGINE = ReplacingMergeTree
        PARTITION BY toYYYYMM(detected_at)
        ORDER BY (pattern_id, detected_at, event_id)`, s.table)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("clickhouse init %s: %w", s.table, err)
	}
	return nil
}

func (s *CHPatternArchive) Store(ctx context.Context, e *models.PatternEvent) error {
	return s.StoreBatch(ctx, []*models.PatternEvent{e})
}

// StoreBatch inserts multi-row VALUES in chunks. Nil or id-less events are skipped.
func (s *CHPatternArchive) StoreBatch(ctx context.Context, events []*models.PatternEvent) error {
	for start := 0; start < len(events); start += chInsertChunk {
		end := start + chInsertChunk
		if end > len(events) {
			end = len(events)
		}
		q, args := buildCHInsert(s.table, events[start:end])
		if q == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.l.Error("clickhouse insert error",
				applogger.String("table", s.table),
				applogger.Int("rows", len(args)/7),
				applogger.Error(err))
			return fmt.Errorf("insert pattern events: %w", err)
		}
	}
	return nil
}

// Stats counts events per (bucket, pattern) in [from, to).
func (s *CHPatternArchive) Stats(ctx context.Context, from, to time.Time, g domrepo.Granularity) ([]models.PatternCount, error) {
	start := time.Now()
	q := fmt.Sprintf(`
        SELECT %s(detected_at) AS bucket, pattern_id, count() AS n
        FROM %s FINAL
        WHERE detected_at >= ? AND detected_at < ?
        GROUP BY bucket, pattern_id
        ORDER BY bucket ASC, pattern_id ASC`, chBucketFunc(g), s.table)

	rows, err := s.db.QueryContext(ctx, q, from.UTC(), to.UTC())
	if err != nil {
		s.l.Error("clickhouse stats query error", applogger.String("table", s.table), applogger.Error(err))
		return nil, fmt.Errorf("pattern stats: %w", err)
	}
	defer rows.Close()

	out := make([]models.PatternCount, 0, 64)
	for rows.Next() {
		var c models.PatternCount
		if err := rows.Scan(&c.Bucket, &c.PatternID, &c.Count); err != nil {
			return nil, fmt.Errorf("scan pattern count: %w", err)
		}
		c.Bucket = c.Bucket.UTC()
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse stats ok",
		applogger.String("granularity", string(g)),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)))
	return out, nil
}

func (s *CHPatternArchive) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close is a no-op; the pool belongs to pkg/clickhouse.Client.
func (s *CHPatternArchive) Close() error { return nil }

func chBucketFunc(g domrepo.Granularity) string {
	switch g {
	case domrepo.G1m:
		return "toStartOfMinute"
	case domrepo.G1d:
		return "toStartOfDay"
	default:
		return "toStartOfHour"
	}
}

func buildCHInsert(table string, events []*models.PatternEvent) (string, []interface{}) {
	values := make([]string, 0, len(events))
	args := make([]interface{}, 0, len(events)*7)
	for _, e := range events {
		if e == nil || e.EventID == "" {
			continue
		}
		values = append(values, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			e.EventID,
			e.PatternID,
			e.Name,
			string(e.Category),
			e.Description,
			e.DetectedAt.UTC(),
			e.Timezone,
		)
	}
	if len(values) == 0 {
		return "", nil
	}
	q := fmt.Sprintf("INSERT INTO %s (event_id, pattern_id, name, category, description, detected_at, timezone) VALUES %s",
		table, strings.Join(values, ","))
	return q, args
}
