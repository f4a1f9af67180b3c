package workers

import (
	"context"

	"github.com/warbler-social/warbler/internal/services"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

// TimelineWorker keeps cached home timelines honest. It consumes domain
// events and drops the timelines a change made stale; the next read
// rebuilds them from storage.
type TimelineWorker struct {
	timeline *services.TimelineService
	consumer *queue.Consumer
	logger   *logger.Logger
}

func NewTimelineWorker(timeline *services.TimelineService, consumer *queue.Consumer, logger *logger.Logger) *TimelineWorker {
	return &TimelineWorker{
		timeline: timeline,
		consumer: consumer,
		logger:   logger,
	}
}

func (w *TimelineWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting timeline worker...")

	return w.consumer.Subscribe(ctx, func(event queue.Event) error {
		w.logger.WithFields(map[string]interface{}{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).Debug("Processing event")

		switch event.Type {
		case queue.EventMessageCreated, queue.EventMessageDeleted:
			return w.timeline.InvalidateForAuthor(ctx, event.UserID)
		case queue.EventFollowCreated, queue.EventFollowDeleted:
			// Only the follower's timeline changes shape.
			return w.timeline.Invalidate(ctx, event.FollowerID)
		case queue.EventUserDeleted:
			return w.timeline.InvalidateForAuthor(ctx, event.UserID)
		case queue.EventUserRegistered, queue.EventLikeCreated, queue.EventLikeDeleted:
			// Likes do not change timeline membership.
			return nil
		default:
			w.logger.WithField("event_type", event.Type).Warn("Unknown event type")
			return nil
		}
	})
}

func (w *TimelineWorker) Stop() error {
	return w.consumer.Close()
}
