// Package worker implements the background task boundary for bulk
// historical rate loads.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/Farhan-slurrp/mycurrency/internal/rates"
	"github.com/Farhan-slurrp/mycurrency/internal/service"
)

// TaskTypeLoadHistorical is the Asynq task type for historical load jobs.
const TaskTypeLoadHistorical = "rates:load_historical"

// DefaultBatchSize is the number of days loaded per LoadHistorical call
// when the payload does not specify one.
const DefaultBatchSize = 30

// LoadHistoricalPayload is the payload of a historical load task.
type LoadHistoricalPayload struct {
	JobID     string `json:"job_id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Provider  string `json:"provider,omitempty"`
	BatchSize int    `json:"batch_size,omitempty"`
}

// NewLoadHistoricalHandler returns the Asynq handler for historical load
// tasks. The range is chunked into fixed-size date batches; each batch is a
// separate LoadHistorical call, so a failing batch does not discard the
// progress of earlier ones (the store upsert keeps retries idempotent).
func NewLoadHistoricalHandler(svc service.RateServiceInterface, log *zap.SugaredLogger) func(context.Context, *asynq.Task) error {
	return func(ctx context.Context, t *asynq.Task) error {
		var p LoadHistoricalPayload
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			log.Errorw("Invalid task payload", "type", t.Type(), "error", err)
			return nil
		}

		start, err := rates.ParseDate(p.StartDate)
		if err != nil {
			log.Errorw("Invalid start date in payload", "job_id", p.JobID, "start_date", p.StartDate)
			return nil
		}
		end, err := rates.ParseDate(p.EndDate)
		if err != nil {
			log.Errorw("Invalid end date in payload", "job_id", p.JobID, "end_date", p.EndDate)
			return nil
		}

		batchSize := p.BatchSize
		if batchSize <= 0 {
			batchSize = DefaultBatchSize
		}

		log.Infow("Starting historical load",
			"job_id", p.JobID, "source", p.Source, "target", p.Target,
			"start", p.StartDate, "end", p.EndDate, "batch_size", batchSize)

		totalDays := int(end.Sub(start).Hours()/24) + 1
		loaded := 0
		var batchErrs []error

		for batchStart := start; !batchStart.After(end); batchStart = batchStart.AddDate(0, 0, batchSize) {
			batchEnd := batchStart.AddDate(0, 0, batchSize-1)
			if batchEnd.After(end) {
				batchEnd = end
			}

			saved, err := svc.LoadHistorical(ctx, p.Source, p.Target, batchStart, batchEnd, p.Provider)
			if err != nil {
				log.Errorw("Batch failed",
					"job_id", p.JobID,
					"batch_start", rates.FormatDate(batchStart),
					"batch_end", rates.FormatDate(batchEnd),
					"error", err)
				batchErrs = append(batchErrs, fmt.Errorf("%s..%s: %w",
					rates.FormatDate(batchStart), rates.FormatDate(batchEnd), err))
				continue
			}

			loaded += len(saved)
			log.Infow("Batch complete",
				"job_id", p.JobID,
				"batch_start", rates.FormatDate(batchStart),
				"batch_end", rates.FormatDate(batchEnd),
				"loaded", loaded, "total_days", totalDays,
				"percent", loaded*100/totalDays)
		}

		if len(batchErrs) > 0 && loaded == 0 {
			// Nothing landed at all: let Asynq retry the whole job.
			return fmt.Errorf("historical load %s: %w", p.JobID, errors.Join(batchErrs...))
		}
		if len(batchErrs) > 0 {
			log.Warnw("Historical load completed with errors",
				"job_id", p.JobID, "loaded", loaded, "failed_batches", len(batchErrs))
			return nil
		}

		log.Infow("Historical load complete", "job_id", p.JobID, "loaded", loaded)
		return nil
	}
}

// Enqueuer submits historical load tasks to the Asynq queue with the
// configured retry and timeout policy.
type Enqueuer struct {
	client   *asynq.Client
	maxRetry int
	timeout  time.Duration
}

// NewEnqueuer creates a new Enqueuer.
func NewEnqueuer(client *asynq.Client, maxRetry int, timeout time.Duration) *Enqueuer {
	return &Enqueuer{
		client:   client,
		maxRetry: maxRetry,
		timeout:  timeout,
	}
}

// EnqueueLoadHistorical submits one historical load job.
func (e *Enqueuer) EnqueueLoadHistorical(ctx context.Context, p LoadHistoricalPayload) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeLoadHistorical, data,
		asynq.MaxRetry(e.maxRetry),
		asynq.Timeout(e.timeout),
	)

	_, err = e.client.EnqueueContext(ctx, task)
	return err
}
