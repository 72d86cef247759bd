package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/jobs"
)

const notificationJobType = "notification.publish"

type channelPublisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

type jobQueue interface {
	Enqueue(job jobs.Job) error
}

// RealtimeEvent is the payload pushed to subscribers of the notification channel.
type RealtimeEvent struct {
	Type         string              `json:"type"`
	UserID       string              `json:"userId"`
	Notification models.Notification `json:"notification"`
}

// NotificationDispatcher pushes committed notifications to realtime subscribers through the job queue.
type NotificationDispatcher struct {
	queue     jobQueue
	publisher channelPublisher
	channel   string
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewNotificationDispatcher constructs a dispatcher. Call Handle from the queue handler.
func NewNotificationDispatcher(publisher channelPublisher, channel string, metrics *MetricsService, logger *zap.Logger) *NotificationDispatcher {
	return &NotificationDispatcher{
		publisher: publisher,
		channel:   channel,
		metrics:   metrics,
		logger:    defaultLogger(logger),
	}
}

// Attach sets the queue the dispatcher enqueues onto. The queue's handler must be Handle.
func (d *NotificationDispatcher) Attach(queue jobQueue) {
	d.queue = queue
}

// Publish enqueues one job per notification. Delivery is best effort; a full queue drops the event.
func (d *NotificationDispatcher) Publish(ctx context.Context, notifications []models.Notification) {
	if d.queue == nil {
		return
	}
	for _, n := range notifications {
		job := jobs.Job{ID: n.ID, Type: notificationJobType, Payload: n}
		if err := d.queue.Enqueue(job); err != nil {
			d.metrics.RecordRealtimePublish("dropped")
			d.logger.Warn("notification not queued", zap.String("notification_id", n.ID), zap.Error(err))
		}
	}
}

// Handle is the jobs.Handler that publishes a queued notification on the Pub/Sub channel.
func (d *NotificationDispatcher) Handle(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		d.metrics.RecordRealtimePublish("invalid")
		return fmt.Errorf("unexpected payload %T for job %s", job.Payload, job.ID)
	}
	event := RealtimeEvent{Type: "notification.created", UserID: n.UserID, Notification: n}
	if err := d.publisher.Publish(ctx, d.channel, event); err != nil {
		d.metrics.RecordRealtimePublish("error")
		return err
	}
	d.metrics.RecordRealtimePublish("success")
	return nil
}
