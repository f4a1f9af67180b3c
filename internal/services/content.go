package services

import (
	"context"
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

// ContentService owns message creation and deletion. Messages are immutable
// once written; there is no edit path.
type ContentService struct {
	db          *gorm.DB
	messageRepo *repository.MessageRepository
	likeRepo    *repository.LikeRepository
	producer    EventPublisher
	logger      *logger.Logger
}

func NewContentService(db *gorm.DB, messageRepo *repository.MessageRepository, likeRepo *repository.LikeRepository, producer EventPublisher, logger *logger.Logger) *ContentService {
	return &ContentService{
		db:          db,
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		producer:    producer,
		logger:      logger,
	}
}

type CreateMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *ContentService) CreateMessage(ctx context.Context, authorID uint, text string) (*models.Message, error) {
	if text == "" {
		return nil, validationf("message text must not be empty")
	}
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		return nil, validationf("message text must not exceed %d characters", models.MaxMessageLength)
	}

	message := &models.Message{
		Text:   text,
		UserID: authorID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewMessageRepository(tx).Create(ctx, message)
	})
	if err != nil {
		return nil, err
	}

	event := queue.NewEvent(queue.EventMessageCreated)
	event.UserID = authorID
	event.MessageID = message.ID
	if err := s.producer.Publish(ctx, fmt.Sprint(authorID), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish message created event")
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":    authorID,
		"message_id": message.ID,
	}).Info("Message created")

	return message, nil
}

// DeleteMessage removes a message on behalf of requesterID. Only the author
// may delete; likes referencing the message cascade away with it.
func (s *ContentService) DeleteMessage(ctx context.Context, messageID, requesterID uint) error {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("failed to get message: %w", err)
	}
	if message == nil {
		return ErrNotFound
	}
	if message.UserID != requesterID {
		return ErrUnauthorized
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewMessageRepository(tx).Delete(ctx, messageID)
	})
	if err != nil {
		return err
	}

	event := queue.NewEvent(queue.EventMessageDeleted)
	event.UserID = message.UserID
	event.MessageID = messageID
	if err := s.producer.Publish(ctx, fmt.Sprint(message.UserID), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish message deleted event")
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":    requesterID,
		"message_id": messageID,
	}).Info("Message deleted")

	return nil
}

func (s *ContentService) GetMessage(ctx context.Context, messageID uint) (*models.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	if message == nil {
		return nil, ErrNotFound
	}
	return message, nil
}

func (s *ContentService) MessagesByUser(ctx context.Context, userID uint) ([]*models.Message, error) {
	return s.messageRepo.GetByUserID(ctx, userID)
}

func (s *ContentService) IsLikedBy(ctx context.Context, messageID, userID uint) (bool, error) {
	return s.likeRepo.Exists(ctx, userID, messageID)
}
