package services

import (
	"context"
	"fmt"
	"time"

	"github.com/warbler-social/warbler/internal/config"
	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/logger"
)

// TimelineCache is the slice of the Redis client the timeline needs. A nil
// cache disables caching and every read goes to storage.
type TimelineCache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// TimelineService assembles the home timeline: the requesting user's own
// messages plus those of everyone they follow, newest first.
type TimelineService struct {
	messageRepo *repository.MessageRepository
	followRepo  *repository.FollowRepository
	cache       TimelineCache
	cfg         *config.TimelineConfig
	logger      *logger.Logger
}

func NewTimelineService(messageRepo *repository.MessageRepository, followRepo *repository.FollowRepository, cache TimelineCache, cfg *config.TimelineConfig, logger *logger.Logger) *TimelineService {
	return &TimelineService{
		messageRepo: messageRepo,
		followRepo:  followRepo,
		cache:       cache,
		cfg:         cfg,
		logger:      logger,
	}
}

func timelineKey(userID uint) string {
	return fmt.Sprintf("timeline:%d", userID)
}

func (s *TimelineService) Home(ctx context.Context, userID uint) ([]*models.Message, error) {
	if s.cache != nil {
		var cached []*models.Message
		if err := s.cache.GetJSON(ctx, timelineKey(userID), &cached); err == nil {
			return cached, nil
		}
	}

	followedIDs, err := s.followRepo.FollowedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	authorIDs := append(followedIDs, userID)

	messages, err := s.messageRepo.GetByUserIDs(ctx, authorIDs, s.cfg.MaxSize)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, timelineKey(userID), messages, s.cfg.CacheTTL); err != nil {
			s.logger.WithError(err).Warn("Failed to cache timeline")
		}
	}

	return messages, nil
}

// Invalidate drops the cached timelines of the given users. The worker
// calls it when a followed author posts or deletes, and when the follow
// graph around a user changes.
func (s *TimelineService) Invalidate(ctx context.Context, userIDs ...uint) error {
	if s.cache == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = timelineKey(id)
	}
	return s.cache.Delete(ctx, keys...)
}

// InvalidateForAuthor drops the author's cached timeline along with every
// follower's, after the author's message set changed.
func (s *TimelineService) InvalidateForAuthor(ctx context.Context, authorID uint) error {
	followerIDs, err := s.followRepo.FollowerIDs(ctx, authorID)
	if err != nil {
		return err
	}
	return s.Invalidate(ctx, append(followerIDs, authorID)...)
}
