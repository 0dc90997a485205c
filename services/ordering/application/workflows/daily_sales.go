// Package workflows holds the Temporal workflows and activities of the
// ordering context.
package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/dineqr/dineqr/pkg/money"
	"github.com/dineqr/dineqr/services/ordering/domain"
	"github.com/dineqr/dineqr/services/ordering/domain/models"
)

const (
	// DailySalesScheduleID identifies the nightly snapshot schedule.
	DailySalesScheduleID = "ordering-daily-sales"
	// DailySalesCron runs shortly after midnight UTC, once the previous day is complete.
	DailySalesCron = "10 0 * * *"

	errTypeInvalidDate = "InvalidDate"
)

// DailySalesInput selects the day to summarise. An empty Date means
// yesterday relative to the workflow clock.
type DailySalesInput struct {
	Date string
}

// DailySalesResult summarises a built snapshot.
type DailySalesResult struct {
	Date        string
	Restaurants int
	Orders      int
	Revenue     money.Money
}

// SalesBuilder recomputes and stores the platform sales snapshot for a day.
type SalesBuilder interface {
	BuildDailySales(ctx context.Context, date string) ([]models.DailySales, error)
}

// Activities are the side-effecting steps of the ordering workflows.
type Activities struct {
	Reports SalesBuilder
}

// BuildDailySales rebuilds the snapshot for date. A malformed date is not retried.
func (a *Activities) BuildDailySales(ctx context.Context, date string) (DailySalesResult, error) {
	sales, err := a.Reports.BuildDailySales(ctx, date)
	if err != nil {
		if domain.KindOf(err) == domain.KindValidation {
			return DailySalesResult{}, temporal.NewNonRetryableApplicationError(err.Error(), errTypeInvalidDate, err)
		}
		return DailySalesResult{}, err
	}

	res := DailySalesResult{Date: date, Restaurants: len(sales)}
	for _, s := range sales {
		res.Orders += s.OrderCount
		res.Revenue += s.Revenue
	}
	activity.GetLogger(ctx).Info("daily sales snapshot built",
		"date", date, "restaurants", res.Restaurants, "revenue", res.Revenue.String())
	return res, nil
}

// DailySalesWorkflow builds the platform sales snapshot for one day.
func DailySalesWorkflow(ctx workflow.Context, in DailySalesInput) (DailySalesResult, error) {
	date := in.Date
	if date == "" {
		date = workflow.Now(ctx).UTC().AddDate(0, 0, -1).Format(time.DateOnly)
	}

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2,
			MaximumInterval:        time.Minute,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{errTypeInvalidDate},
		},
	})

	var a *Activities
	var res DailySalesResult
	if err := workflow.ExecuteActivity(ctx, a.BuildDailySales, date).Get(ctx, &res); err != nil {
		return DailySalesResult{}, fmt.Errorf("build daily sales for %s: %w", date, err)
	}
	return res, nil
}

// Registry is the registration subset shared by worker.Worker and the
// test workflow environment.
type Registry interface {
	RegisterWorkflow(w any)
	RegisterActivity(a any)
}

// Register adds the ordering workflows and activities to a worker.
func Register(r Registry, acts *Activities) {
	r.RegisterWorkflow(DailySalesWorkflow)
	r.RegisterActivity(acts)
}

// DailySalesSchedule is the nightly schedule that rebuilds yesterday's snapshot.
func DailySalesSchedule(taskQueue string) client.ScheduleOptions {
	return client.ScheduleOptions{
		ID: DailySalesScheduleID,
		Spec: client.ScheduleSpec{
			CronExpressions: []string{DailySalesCron},
		},
		Action: &client.ScheduleWorkflowAction{
			ID:        DailySalesScheduleID + "-run",
			Workflow:  DailySalesWorkflow,
			Args:      []any{DailySalesInput{}},
			TaskQueue: taskQueue,
		},
	}
}

// StartDailySales starts an on-demand rebuild for date. Starting the same
// date twice while a run is open joins the existing run.
func StartDailySales(ctx context.Context, c client.Client, taskQueue, date string) (string, error) {
	run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:                       "daily-sales-" + date,
		TaskQueue:                taskQueue,
		WorkflowExecutionTimeout: 10 * time.Minute,
	}, DailySalesWorkflow, DailySalesInput{Date: date})
	if err != nil {
		return "", fmt.Errorf("start daily sales workflow: %w", err)
	}
	return run.GetRunID(), nil
}
