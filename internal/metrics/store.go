package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"comida-a-casa/internal/database"
	"comida-a-casa/internal/shared"
)

// Outcomes of a generation call.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// GenerationMetric records metadata for a single generation call.
type GenerationMetric struct {
	Operation        string
	Model            string
	Outcome          string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
	Timestamp        time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(ctx context.Context, m GenerationMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	if m.Outcome == "" {
		m.Outcome = OutcomeSuccess
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO generation_metrics (operation, model, outcome, prompt_tokens, completion_tokens, latency_ms, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.Operation, m.Model, m.Outcome, m.PromptTokens, m.CompletionTokens, m.LatencyMS, database.FormatTime(ts))
	if err != nil {
		return fmt.Errorf("failed to record generation metric: %w", err)
	}
	return nil
}

// RecordMeta records metrics directly from shared.GenerationMeta.
func (s *Store) RecordMeta(ctx context.Context, meta shared.GenerationMeta, callErr error) error {
	return s.Record(ctx, MapUsage(meta.Operation, meta.Usage, meta.Latency, callErr))
}

// DailyUsage represents token totals for a single day.
type DailyUsage struct {
	Date            string
	TotalPrompt     int
	TotalCompletion int
	TotalExecution  int
	Failures        int
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(ctx context.Context, days int) ([]DailyUsage, error) {
	since := database.FormatTime(time.Now().AddDate(0, 0, -days))
	rows, err := s.db.QueryContext(ctx, `
SELECT substr(created_at, 1, 10) AS day,
       COALESCE(SUM(prompt_tokens), 0),
       COALESCE(SUM(completion_tokens), 0),
       COUNT(*),
       COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
FROM generation_metrics
WHERE created_at >= ?
GROUP BY day
ORDER BY day DESC`, OutcomeError, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var u DailyUsage
		if err := rows.Scan(&u.Date, &u.TotalPrompt, &u.TotalCompletion, &u.TotalExecution, &u.Failures); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	threshold := database.FormatTime(time.Now().AddDate(0, 0, -olderThanDays))
	res, err := s.db.ExecContext(ctx, `DELETE FROM generation_metrics WHERE created_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}

// RecordGeneration implements llm.Recorder. Failures to store are dropped;
// metrics must not break a user request.
func (s *Store) RecordGeneration(operation string, usage shared.TokenUsage, latency time.Duration, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.Record(ctx, MapUsage(operation, usage, latency, err))
}

// MapUsage converts a token usage into a GenerationMetric.
func MapUsage(operation string, usage shared.TokenUsage, latency time.Duration, err error) GenerationMetric {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}
	return GenerationMetric{
		Operation:        operation,
		Model:            usage.Model,
		Outcome:          outcome,
		PromptTokens:     usage.PromptTokens,
		CompletionTokens: usage.CompletionTokens,
		LatencyMS:        latency.Milliseconds(),
		Timestamp:        time.Now().UTC(),
	}
}
