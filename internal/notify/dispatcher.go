package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"smartspend/internal/budgeting"
	"smartspend/internal/period"
)

// UserLister lists the users whose budgets are checked each cycle.
type UserLister interface {
	ListActiveUserIDs(ctx context.Context) ([]string, error)
}

// AlertSource computes a user's current alerts.
type AlertSource interface {
	GetAlerts(ctx context.Context, userID string) ([]budgeting.Alert, period.Period, error)
}

// CycleResult contains the outcome of one dispatch cycle.
type CycleResult struct {
	UsersChecked int
	Published    int
	Suppressed   int
	Errors       []error
	Duration     time.Duration
}

// Dispatcher periodically turns budget alerts into broker messages.
type Dispatcher struct {
	users       UserLister
	alerts      AlertSource
	publisher   Publisher
	suppressor  *Suppressor
	metrics     *Metrics
	concurrency int
	log         *zap.SugaredLogger
	now         func() time.Time
}

// NewDispatcher creates a Dispatcher that checks at most concurrency users at
// once.
func NewDispatcher(
	users UserLister,
	alerts AlertSource,
	publisher Publisher,
	suppressor *Suppressor,
	metrics *Metrics,
	concurrency int,
	log *zap.SugaredLogger,
) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		users:       users,
		alerts:      alerts,
		publisher:   publisher,
		suppressor:  suppressor,
		metrics:     metrics,
		concurrency: concurrency,
		log:         log,
		now:         time.Now,
	}
}

// RunOnce checks every active user once. A failure for one user does not stop
// the others; it is collected in the result. Only failing to list users is
// returned as an error.
func (d *Dispatcher) RunOnce(ctx context.Context) (*CycleResult, error) {
	start := d.now()

	userIDs, err := d.users.ListActiveUserIDs(ctx)
	if err != nil {
		d.metrics.cycles.WithLabelValues("error").Inc()
		return nil, err
	}

	var (
		mu     sync.Mutex
		result = &CycleResult{UsersChecked: len(userIDs)}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for _, userID := range userIDs {
		g.Go(func() error {
			published, suppressed, errs := d.dispatchUser(gctx, userID)
			mu.Lock()
			result.Published += published
			result.Suppressed += suppressed
			result.Errors = append(result.Errors, errs...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		result.Errors = append(result.Errors, ctx.Err())
	}
	result.Duration = d.now().Sub(start)

	outcome := "ok"
	if len(result.Errors) > 0 {
		outcome = "partial"
	}
	d.metrics.cycles.WithLabelValues(outcome).Inc()
	return result, nil
}

func (d *Dispatcher) dispatchUser(ctx context.Context, userID string) (published, suppressed int, errs []error) {
	if ctx.Err() != nil {
		return 0, 0, nil
	}

	alerts, p, err := d.alerts.GetAlerts(ctx, userID)
	if err != nil {
		d.log.Warnw("failed to compute alerts", "user_id", userID, "error", err)
		return 0, 0, []error{err}
	}

	for _, a := range alerts {
		msg := NewBudgetAlertMessage(userID, p, a, d.now())
		key := msg.Key()
		if d.suppressor.Suppressed(key) {
			suppressed++
			d.metrics.suppressed.Inc()
			continue
		}

		if err := d.publisher.PublishAlert(ctx, msg); err != nil {
			d.metrics.failed.Inc()
			d.log.Warnw("failed to publish alert", "user_id", userID, "category", a.Category, "error", err)
			errs = append(errs, err)
			continue
		}

		d.suppressor.Mark(key)
		published++
		d.metrics.published.Inc()
		d.log.Debugw("published alert",
			"user_id", userID,
			"category", a.Category,
			"state", msg.State,
			"percentage", a.Percentage,
		)
	}
	return published, suppressed, errs
}

// Run calls RunOnce every interval until ctx is cancelled, starting
// immediately.
func (d *Dispatcher) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		d.runCycle(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) runCycle(ctx context.Context) {
	result, err := d.RunOnce(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			d.log.Errorw("alert cycle failed", "error", err)
		}
		return
	}

	expired := d.suppressor.CleanExpired()
	d.log.Infow("alert cycle completed",
		"users_checked", result.UsersChecked,
		"published", result.Published,
		"suppressed", result.Suppressed,
		"errors", len(result.Errors),
		"expired_keys", expired,
		"duration", result.Duration.String(),
	)
}
