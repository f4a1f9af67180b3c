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

// EngagementService owns the like toggle and like-state queries.
type EngagementService struct {
	db          *gorm.DB
	messageRepo *repository.MessageRepository
	likeRepo    *repository.LikeRepository
	producer    EventPublisher
	logger      *logger.Logger
}

func NewEngagementService(db *gorm.DB, messageRepo *repository.MessageRepository, likeRepo *repository.LikeRepository, producer EventPublisher, logger *logger.Logger) *EngagementService {
	return &EngagementService{
		db:          db,
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		producer:    producer,
		logger:      logger,
	}
}

// ToggleLike flips the like state of (userID, messageID) and returns the
// resulting state: true when the call created a like, false when it removed
// one. The decision rides on the conditional insert, not on a prior read,
// so two concurrent toggles of the same pair cannot both insert; the loser
// of the race sees the edge as existing and unlikes it.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, messageID uint) (bool, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return false, fmt.Errorf("failed to get message: %w", err)
	}
	if message == nil {
		return false, ErrNotFound
	}
	if message.UserID == userID {
		return false, validationf("cannot like your own message")
	}

	liked := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		likeRepo := repository.NewLikeRepository(tx)

		inserted, err := likeRepo.Insert(ctx, &models.Like{
			UserID:    userID,
			MessageID: messageID,
		})
		if err != nil {
			return err
		}
		if inserted {
			liked = true
			return nil
		}
		// Edge already existed, so this toggle is an unlike.
		return likeRepo.Delete(ctx, userID, messageID)
	})
	if err != nil {
		return false, err
	}

	eventType := queue.EventLikeDeleted
	if liked {
		eventType = queue.EventLikeCreated
	}
	event := queue.NewEvent(eventType)
	event.UserID = userID
	event.MessageID = messageID
	if err := s.producer.Publish(ctx, fmt.Sprint(userID), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish like event")
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"message_id": messageID,
		"liked":      liked,
	}).Info("Like toggled")

	return liked, nil
}

// LikedMessages returns the messages a user has marked as liked, most
// recent like first.
func (s *EngagementService) LikedMessages(ctx context.Context, userID uint) ([]*models.Message, error) {
	return s.likeRepo.MessagesLikedBy(ctx, userID)
}

func (s *EngagementService) LikeCount(ctx context.Context, messageID uint) (int64, error) {
	return s.likeRepo.CountByMessageID(ctx, messageID)
}

func (s *EngagementService) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	return s.likeRepo.Exists(ctx, userID, messageID)
}
