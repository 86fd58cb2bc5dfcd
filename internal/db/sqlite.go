package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the embedded store used by local runs and backfills. Rows
// carry the columns needed for lookups plus the full record as JSON.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteStore] open: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("[SQLiteStore] set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("[SQLiteStore] migrate: %w", err)
	}

	slog.Info("[SQLiteStore] Database opened", slog.String("path", path))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sentiment_results (
			company_id            TEXT NOT NULL,
			period                TEXT NOT NULL,
			fiscal_year           INTEGER NOT NULL,
			fiscal_quarter        INTEGER NOT NULL,
			overall_sentiment     REAL,
			management_confidence REAL,
			sentiment_label       TEXT,
			analyzed_at           INTEGER NOT NULL,
			payload               TEXT NOT NULL,
			PRIMARY KEY (company_id, period)
		)`,
		`CREATE TABLE IF NOT EXISTS trend_results (
			id            TEXT PRIMARY KEY,
			company_id    TEXT NOT NULL,
			analysis_date INTEGER NOT NULL,
			category      TEXT,
			payload       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trend_company ON trend_results(company_id, analysis_date)`,
		`CREATE TABLE IF NOT EXISTS alerts (
			id         TEXT PRIMARY KEY,
			company_id TEXT NOT NULL,
			type       TEXT,
			severity   TEXT,
			resolved   INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL,
			payload    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_company ON alerts(company_id, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveSentiment(ctx context.Context, r *models.SentimentResult) error {
	return s.SaveSentimentWithAlerts(ctx, r, nil)
}

// SaveSentimentWithAlerts upserts the result for its period and inserts the
// alerts in the same transaction.
func (s *SQLiteStore) SaveSentimentWithAlerts(ctx context.Context, r *models.SentimentResult, alerts []models.Alert) error {
	if err := validateSentimentWithAlerts(r, alerts); err != nil {
		return err
	}
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("[SQLiteStore] marshal sentiment: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[SQLiteStore] begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO sentiment_results
		(company_id, period, fiscal_year, fiscal_quarter, overall_sentiment,
		 management_confidence, sentiment_label, analyzed_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(company_id, period) DO UPDATE SET
			overall_sentiment = excluded.overall_sentiment,
			management_confidence = excluded.management_confidence,
			sentiment_label = excluded.sentiment_label,
			analyzed_at = excluded.analyzed_at,
			payload = excluded.payload`,
		r.CompanyID, models.PeriodKey(r.FiscalYear, r.FiscalQuarter), r.FiscalYear, r.FiscalQuarter,
		r.OverallSentiment, r.ManagementConfidence, r.SentimentLabel, unixNanoOrZero(r.AnalyzedAt), string(payload))
	if err != nil {
		return fmt.Errorf("[SQLiteStore] save sentiment: %w", err)
	}
	if err := insertAlerts(ctx, tx, alerts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[SQLiteStore] commit sentiment: %w", err)
	}
	return nil
}

func (s *SQLiteStore) History(ctx context.Context, companyID string, limit int) ([]models.SentimentResult, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM sentiment_results
		WHERE company_id = ?
		ORDER BY fiscal_year DESC, fiscal_quarter DESC
		LIMIT ?`, companyID, limit)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteStore] query history: %w", err)
	}
	defer rows.Close()

	var history []models.SentimentResult
	for rows.Next() {
		var r models.SentimentResult
		if err := scanPayload(rows, &r); err != nil {
			return nil, err
		}
		history = append(history, r)
	}
	return history, rows.Err()
}

func (s *SQLiteStore) HasTranscript(ctx context.Context, companyID string, fiscalYear, fiscalQuarter int) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sentiment_results WHERE company_id = ? AND period = ?`,
		companyID, models.PeriodKey(fiscalYear, fiscalQuarter)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("[SQLiteStore] lookup transcript: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) SaveTrendWithAlerts(ctx context.Context, trend *models.TrendResult, alerts []models.Alert) error {
	if err := validateTrend(trend, alerts); err != nil {
		return err
	}
	payload, err := json.Marshal(trend)
	if err != nil {
		return fmt.Errorf("[SQLiteStore] marshal trend: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[SQLiteStore] begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO trend_results (id, company_id, analysis_date, category, payload)
		VALUES (?, ?, ?, ?, ?)`,
		trend.ID, trend.CompanyID, unixNanoOrZero(trend.AnalysisDate), trend.Category, string(payload)); err != nil {
		return fmt.Errorf("[SQLiteStore] insert trend: %w", err)
	}
	if err := insertAlerts(ctx, tx, alerts); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[SQLiteStore] commit trend: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveAlerts(ctx context.Context, alerts []models.Alert) error {
	if err := validateAlerts(alerts); err != nil {
		return err
	}
	if len(alerts) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("[SQLiteStore] begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := insertAlerts(ctx, tx, alerts); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("[SQLiteStore] commit alerts: %w", err)
	}
	return nil
}

func insertAlerts(ctx context.Context, tx *sql.Tx, alerts []models.Alert) error {
	for _, a := range alerts {
		payload, err := json.Marshal(a)
		if err != nil {
			return fmt.Errorf("[SQLiteStore] marshal alert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO alerts (id, company_id, type, severity, resolved, created_at, payload)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.CompanyID, a.Type, a.Severity, a.Resolved, unixNanoOrZero(a.CreatedAt), string(payload)); err != nil {
			return fmt.Errorf("[SQLiteStore] insert alert: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) LatestTrend(ctx context.Context, companyID string) (*models.TrendResult, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM trend_results
		WHERE company_id = ?
		ORDER BY analysis_date DESC, rowid DESC
		LIMIT 1`, companyID)

	var trend models.TrendResult
	if err := scanPayload(row, &trend); err != nil {
		return nil, err
	}
	return &trend, nil
}

func (s *SQLiteStore) Alerts(ctx context.Context, companyID string) ([]models.Alert, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM alerts
		WHERE company_id = ?
		ORDER BY created_at, rowid`, companyID)
	if err != nil {
		return nil, fmt.Errorf("[SQLiteStore] query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := scanPayload(rows, &a); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPayload(row scanner, v any) error {
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("[SQLiteStore] scan: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("[SQLiteStore] unmarshal: %w", err)
	}
	return nil
}

var _ Store = (*SQLiteStore)(nil)

// unixNanoOrZero stores the zero time as 0; UnixNano is undefined for it.
func unixNanoOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}
