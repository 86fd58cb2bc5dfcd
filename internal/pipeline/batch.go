package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spacesedan/earningsflow/internal/models"
)

type Failure struct {
	ContentID string `json:"content_id"`
	CompanyID string `json:"company_id"`
	Error     string `json:"error"`
}

type BatchReport struct {
	Processed int                            `json:"processed"`
	Skipped   int                            `json:"skipped"`
	Trends    map[string]*models.TrendResult `json:"trends,omitempty"`
	Failures  []Failure                      `json:"failures,omitempty"`
	Elapsed   time.Duration                  `json:"elapsed"`
}

// RunBatch ingests transcripts on a bounded worker pool. A failing transcript
// is recorded and the rest of the batch carries on. Cancelling ctx stops new
// submissions; transcripts already being processed finish.
func (r *Runner) RunBatch(ctx context.Context, batch []models.RawTranscript) BatchReport {
	start := time.Now()
	report := BatchReport{Trends: make(map[string]*models.TrendResult)}
	var mu sync.Mutex

	jobs := make(chan models.RawTranscript)
	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rt := range jobs {
				// In-flight work runs to completion even after cancellation.
				trendResult, skipped, err := r.runOne(context.WithoutCancel(ctx), rt)

				mu.Lock()
				switch {
				case err != nil:
					report.Failures = append(report.Failures, Failure{
						ContentID: rt.ContentID,
						CompanyID: rt.Metadata.Ticker,
						Error:     err.Error(),
					})
				case skipped:
					report.Skipped++
				default:
					report.Processed++
					if trendResult != nil {
						report.Trends[rt.Metadata.Ticker] = trendResult
					}
				}
				mu.Unlock()
			}
		}()
	}

submit:
	for _, rt := range batch {
		if ctx.Err() != nil {
			slog.Warn("[Pipeline] Batch cancelled, no further transcripts submitted")
			break
		}
		select {
		case <-ctx.Done():
			slog.Warn("[Pipeline] Batch cancelled, no further transcripts submitted")
			break submit
		case jobs <- rt:
		}
	}
	close(jobs)
	wg.Wait()

	report.Elapsed = time.Since(start)
	slog.Info("[Pipeline] Batch complete",
		slog.Int("submitted", len(batch)),
		slog.Int("processed", report.Processed),
		slog.Int("skipped", report.Skipped),
		slog.Int("failed", len(report.Failures)),
		slog.Duration("elapsed", report.Elapsed))

	return report
}

func (r *Runner) runOne(ctx context.Context, rt models.RawTranscript) (*models.TrendResult, bool, error) {
	if !r.reprocess {
		meta := rt.Metadata.WithDefaults(r.now())
		exists, err := r.store.HasTranscript(ctx, meta.Ticker, meta.FiscalYear, meta.FiscalQuarter)
		if err != nil {
			return nil, false, err
		}
		if exists {
			slog.Debug("[Pipeline] Transcript already scored, skipping",
				slog.String("company_id", meta.Ticker),
				slog.String("period", models.PeriodKey(meta.FiscalYear, meta.FiscalQuarter)))
			return nil, true, nil
		}
	}

	t, err := r.Ingest(ctx, rt)
	if err != nil {
		slog.Error("[Pipeline] Transcript failed",
			slog.String("content_id", rt.ContentID),
			slog.String("company_id", rt.Metadata.Ticker),
			slog.String("error", err.Error()))
		return nil, false, err
	}
	return t, false, nil
}
