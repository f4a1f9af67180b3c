package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

// SocialGraphService maintains the directed follow graph.
type SocialGraphService struct {
	db         *gorm.DB
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	producer   EventPublisher
	logger     *logger.Logger
}

func NewSocialGraphService(db *gorm.DB, userRepo *repository.UserRepository, followRepo *repository.FollowRepository, producer EventPublisher, logger *logger.Logger) *SocialGraphService {
	return &SocialGraphService{
		db:         db,
		userRepo:   userRepo,
		followRepo: followRepo,
		producer:   producer,
		logger:     logger,
	}
}

// Follow adds the edge follower→target. Following yourself is rejected;
// following someone twice is absorbed by the composite key and treated as
// success.
func (s *SocialGraphService) Follow(ctx context.Context, followerID, targetID uint) error {
	if followerID == targetID {
		return validationf("cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to get target user: %w", err)
	}
	if target == nil {
		return ErrNotFound
	}

	follow := &models.Follow{
		FollowerID: followerID,
		FollowedID: targetID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewFollowRepository(tx).Create(ctx, follow)
	})
	if err != nil {
		return err
	}

	event := queue.NewEvent(queue.EventFollowCreated)
	event.FollowerID = followerID
	event.FollowedID = targetID
	if err := s.producer.Publish(ctx, fmt.Sprint(followerID), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish follow created event")
	}

	s.logger.WithFields(map[string]interface{}{
		"follower_id": followerID,
		"followed_id": targetID,
	}).Info("User followed")

	return nil
}

// Unfollow removes the edge if it exists. A missing edge is a no-op, not an
// error.
func (s *SocialGraphService) Unfollow(ctx context.Context, followerID, targetID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewFollowRepository(tx).Delete(ctx, followerID, targetID)
	})
	if err != nil {
		return err
	}

	event := queue.NewEvent(queue.EventFollowDeleted)
	event.FollowerID = followerID
	event.FollowedID = targetID
	if err := s.producer.Publish(ctx, fmt.Sprint(followerID), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish follow deleted event")
	}

	s.logger.WithFields(map[string]interface{}{
		"follower_id": followerID,
		"followed_id": targetID,
	}).Info("User unfollowed")

	return nil
}

func (s *SocialGraphService) IsFollowing(ctx context.Context, userID, targetID uint) (bool, error) {
	return s.followRepo.Exists(ctx, userID, targetID)
}

func (s *SocialGraphService) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.followRepo.Exists(ctx, otherID, userID)
}

func (s *SocialGraphService) Followers(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.followRepo.Followers(ctx, userID)
}

func (s *SocialGraphService) Following(ctx context.Context, userID uint) ([]*models.User, error) {
	return s.followRepo.Following(ctx, userID)
}

func (s *SocialGraphService) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	return s.followRepo.CountFollowers(ctx, userID)
}

func (s *SocialGraphService) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	return s.followRepo.CountFollowing(ctx, userID)
}
