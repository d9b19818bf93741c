package services

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/jakechorley/manpower/pkg/core/model"
)

// Errors returned by NotificationQueue.NotifyScheduled
var (
	ErrNotificationQueueFull   = errors.New("notification queue is full")
	ErrNotificationQueueClosed = errors.New("notification queue is closed")
)

type notificationJob struct {
	employee model.Employee
	req      model.ManpowerRequest
	schedule model.Schedule
}

// NotificationQueue is a Notifier that hands notifications to a background
// worker instead of sending them inline. NotifyScheduled only enqueues, so a
// fulfilment returns without waiting on the mail provider. Delivery failures
// are logged by the worker rather than returned to the caller.
type NotificationQueue struct {
	next   Notifier
	logger *zap.Logger
	jobs   chan notificationJob

	// ctx is handed to the wrapped notifier and cancelled when Close gives up
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewNotificationQueue starts a worker delivering through next. At most size
// notifications wait at once; beyond that NotifyScheduled fails fast.
func NewNotificationQueue(next Notifier, logger *zap.Logger, size int) *NotificationQueue {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &NotificationQueue{
		next:   next,
		logger: logger,
		jobs:   make(chan notificationJob, size),
		ctx:    ctx,
		cancel: cancel,
	}

	q.wg.Add(1)
	go q.run()

	return q
}

// NotifyScheduled queues the notification. The caller's context is not used
// for delivery since the caller usually returns before the email is sent.
func (q *NotificationQueue) NotifyScheduled(ctx context.Context, employee model.Employee, req model.ManpowerRequest, schedule model.Schedule) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrNotificationQueueClosed
	}

	select {
	case q.jobs <- notificationJob{employee: employee, req: req, schedule: schedule}:
		q.logger.Debug("Notification queued",
			zap.Int64("employee_id", employee.ID),
			zap.String("schedule_id", schedule.ID),
			zap.Int("pending", len(q.jobs)))
		return nil
	default:
		return ErrNotificationQueueFull
	}
}

func (q *NotificationQueue) run() {
	defer q.wg.Done()

	for job := range q.jobs {
		if err := q.next.NotifyScheduled(q.ctx, job.employee, job.req, job.schedule); err != nil {
			q.logger.Warn("Failed to deliver queued notification",
				zap.Int64("employee_id", job.employee.ID),
				zap.String("schedule_id", job.schedule.ID),
				zap.Error(err))
			continue
		}
		q.logger.Debug("Queued notification delivered",
			zap.Int64("employee_id", job.employee.ID),
			zap.String("schedule_id", job.schedule.ID))
	}
}

// Close stops accepting notifications and waits for the queued ones to be
// delivered. If ctx ends first the in-flight send is cancelled, the rest are
// dropped and ctx's error is returned.
func (q *NotificationQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.cancel()
		return nil
	case <-ctx.Done():
		q.cancel()
		dropped := len(q.jobs)
		q.logger.Warn("Notification queue closed before draining", zap.Int("dropped", dropped))
		return ctx.Err()
	}
}
