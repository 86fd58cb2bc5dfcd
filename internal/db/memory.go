package db

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/spacesedan/earningsflow/internal/models"
)

// MemoryStore keeps everything in process memory. It backs tests and
// dry-run backfills.
type MemoryStore struct {
	mu        sync.RWMutex
	sentiment map[string]map[string]models.SentimentResult
	trends    map[string][]models.TrendResult
	alerts    []models.Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sentiment: make(map[string]map[string]models.SentimentResult),
		trends:    make(map[string][]models.TrendResult),
	}
}

func (m *MemoryStore) SaveSentiment(ctx context.Context, r *models.SentimentResult) error {
	return m.SaveSentimentWithAlerts(ctx, r, nil)
}

func (m *MemoryStore) SaveSentimentWithAlerts(ctx context.Context, r *models.SentimentResult, alerts []models.Alert) error {
	if err := validateSentimentWithAlerts(r, alerts); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	byPeriod, ok := m.sentiment[r.CompanyID]
	if !ok {
		byPeriod = make(map[string]models.SentimentResult)
		m.sentiment[r.CompanyID] = byPeriod
	}
	byPeriod[models.PeriodKey(r.FiscalYear, r.FiscalQuarter)] = *r
	m.alerts = append(m.alerts, alerts...)
	return nil
}

func (m *MemoryStore) History(ctx context.Context, companyID string, limit int) ([]models.SentimentResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]models.SentimentResult, 0, len(m.sentiment[companyID]))
	for _, r := range m.sentiment[companyID] {
		history = append(history, r)
	}
	slices.SortFunc(history, func(a, b models.SentimentResult) int {
		if c := cmp.Compare(b.FiscalYear, a.FiscalYear); c != 0 {
			return c
		}
		return cmp.Compare(b.FiscalQuarter, a.FiscalQuarter)
	})

	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}

func (m *MemoryStore) HasTranscript(ctx context.Context, companyID string, fiscalYear, fiscalQuarter int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.sentiment[companyID][models.PeriodKey(fiscalYear, fiscalQuarter)]
	return ok, nil
}

func (m *MemoryStore) SaveTrendWithAlerts(ctx context.Context, trend *models.TrendResult, alerts []models.Alert) error {
	if err := validateTrend(trend, alerts); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.trends[trend.CompanyID] = append(m.trends[trend.CompanyID], *trend)
	m.alerts = append(m.alerts, alerts...)
	return nil
}

func (m *MemoryStore) SaveAlerts(ctx context.Context, alerts []models.Alert) error {
	if err := validateAlerts(alerts); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = append(m.alerts, alerts...)
	return nil
}

func (m *MemoryStore) LatestTrend(ctx context.Context, companyID string) (*models.TrendResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	trends := m.trends[companyID]
	if len(trends) == 0 {
		return nil, ErrNotFound
	}
	latest := trends[len(trends)-1]
	return &latest, nil
}

func (m *MemoryStore) Alerts(ctx context.Context, companyID string) ([]models.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []models.Alert
	for _, a := range m.alerts {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
