// Package clickhouse persists analysis records in ClickHouse.
// Columnar storage fits the workload: gap and feedback rows are
// append-only, high-volume, and queried by aggregate.
package clickhouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"material-lca/pkg/api"
)

// Config holds ClickHouse connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	Debug    bool
}

// DefaultConfig returns default development configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:     "localhost",
		Port:     9000,
		Database: "lca",
		Username: "default",
		Password: "",
		Debug:    false,
	}
}

// Store is the ClickHouse record store for gaps, feedback, and model
// performance snapshots.
type Store struct {
	conn clickhouse.Conn
	cfg  *Config
}

func NewStore(cfg *Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Debug: cfg.Debug,
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	return &Store{conn: conn, cfg: cfg}, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Migrate creates the record tables. ReplacingMergeTree keyed on the
// deterministic row id makes every write idempotent: replaying the same
// gap or feedback record collapses into one row at merge time.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS data_gaps (
			id UUID,
			run_id UUID,
			parameter String,
			material String,
			category String,
			priority UInt8,
			detail String,
			created_at DateTime
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY (run_id, id)`,
		`CREATE TABLE IF NOT EXISTS prediction_feedback (
			id UUID,
			parameter String,
			predicted Decimal(18, 6),
			actual Decimal(18, 6),
			accuracy Float64,
			created_at DateTime
		) ENGINE = ReplacingMergeTree(created_at)
		ORDER BY (parameter, id)`,
		`CREATE TABLE IF NOT EXISTS model_performance (
			predictor String,
			sample_count Int64,
			mean_accuracy Float64,
			accuracy_variance Float64,
			trend String,
			updated_at DateTime
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY predictor`,
	}
	for _, stmt := range stmts {
		if err := s.conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}

// SaveGaps batch-inserts the gaps detected in one run. Row ids are
// derived from (run, parameter, category), so saving the same run twice
// collapses to one row per gap.
func (s *Store) SaveGaps(ctx context.Context, runID uuid.UUID, gapList []api.DataGap) error {
	if len(gapList) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO data_gaps (id, run_id, parameter, material, category, priority, detail, created_at)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	now := time.Now()
	for _, gap := range gapList {
		id := uuid.NewSHA1(runID, []byte(gap.Parameter+"|"+string(gap.Category)))
		if err := batch.Append(
			id, runID, gap.Parameter, string(gap.Material),
			string(gap.Category), uint8(gap.Priority), gap.Detail, now,
		); err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}
	return batch.Send()
}

// SaveFeedback inserts one confirmed feedback record. The id is derived
// from the record tuple, so replays of the same submission collapse.
func (s *Store) SaveFeedback(ctx context.Context, record api.PredictionFeedback) error {
	key := fmt.Sprintf("%s|%.12g|%.12g|%d", record.Parameter, record.Predicted, record.Actual, record.CreatedAt.UnixNano())
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(key))

	query := `
		INSERT INTO prediction_feedback (id, parameter, predicted, actual, accuracy, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		id, record.Parameter,
		decimal.NewFromFloat(record.Predicted),
		decimal.NewFromFloat(record.Actual),
		record.Accuracy, record.CreatedAt,
	)
}

// SavePerformance upserts the aggregate for one predictor; the merge
// engine keeps the row with the latest updated_at.
func (s *Store) SavePerformance(ctx context.Context, perf api.ModelPerformance) error {
	query := `
		INSERT INTO model_performance (predictor, sample_count, mean_accuracy, accuracy_variance, trend, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	return s.conn.Exec(ctx, query,
		perf.Predictor, perf.SampleCount, perf.MeanAccuracy,
		perf.AccuracyVariance, string(perf.Trend), perf.UpdatedAt,
	)
}

// LoadPerformance reads the latest persisted aggregate for a predictor.
// A predictor with no rows yields (nil, nil).
func (s *Store) LoadPerformance(ctx context.Context, predictor string) (*api.ModelPerformance, error) {
	query := `
		SELECT predictor, sample_count, mean_accuracy, accuracy_variance, trend, updated_at
		FROM model_performance FINAL
		WHERE predictor = ?
		LIMIT 1
	`
	row := s.conn.QueryRow(ctx, query, predictor)

	var perf api.ModelPerformance
	var trend string
	err := row.Scan(&perf.Predictor, &perf.SampleCount, &perf.MeanAccuracy, &perf.AccuracyVariance, &trend, &perf.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load performance: %w", err)
	}
	perf.Trend = api.Trend(trend)
	return &perf, nil
}

// ListGaps returns the persisted gaps for one run, in insertion order.
func (s *Store) ListGaps(ctx context.Context, runID uuid.UUID) ([]api.DataGap, error) {
	query := `
		SELECT parameter, material, category, priority, detail
		FROM data_gaps FINAL
		WHERE run_id = ?
		ORDER BY priority DESC, parameter
	`
	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list gaps: %w", err)
	}
	defer rows.Close()

	var gaps []api.DataGap
	for rows.Next() {
		var gap api.DataGap
		var material, category string
		var priority uint8
		if err := rows.Scan(&gap.Parameter, &material, &category, &priority, &gap.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan gap: %w", err)
		}
		gap.Material = api.MaterialType(material)
		gap.Category = api.GapCategory(category)
		gap.Priority = int(priority)
		gaps = append(gaps, gap)
	}
	return gaps, nil
}

// RecentFeedback returns the newest feedback records for a parameter.
func (s *Store) RecentFeedback(ctx context.Context, parameter string, limit int) ([]api.PredictionFeedback, error) {
	query := `
		SELECT parameter, predicted, actual, accuracy, created_at
		FROM prediction_feedback FINAL
		WHERE parameter = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := s.conn.Query(ctx, query, parameter, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var records []api.PredictionFeedback
	for rows.Next() {
		var record api.PredictionFeedback
		var predicted, actual decimal.Decimal
		if err := rows.Scan(&record.Parameter, &predicted, &actual, &record.Accuracy, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		record.Predicted, _ = predicted.Float64()
		record.Actual, _ = actual.Float64()
		records = append(records, record)
	}
	return records, nil
}
