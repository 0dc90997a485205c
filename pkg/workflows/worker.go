package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
)

// NewWorker returns a worker polling taskQueue. Tracing comes from the
// client's interceptor, which Temporal also applies to workers.
func (tc *TemporalClient) NewWorker(taskQueue string) worker.Worker {
	return worker.New(tc.Client, taskQueue, worker.Options{})
}

// EnsureSchedule creates the schedule unless one with the same ID exists.
// Existing schedules are left untouched so operators can pause them.
func (tc *TemporalClient) EnsureSchedule(ctx context.Context, opts client.ScheduleOptions) error {
	_, err := tc.Client.ScheduleClient().Create(ctx, opts)
	if errors.Is(err, temporal.ErrScheduleAlreadyRunning) {
		tc.log.Info("temporal schedule already exists", "schedule_id", opts.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create schedule %s: %w", opts.ID, err)
	}
	tc.log.Info("temporal schedule created", "schedule_id", opts.ID)
	return nil
}
