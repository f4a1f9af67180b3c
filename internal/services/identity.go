package services

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/logger"
	"github.com/warbler-social/warbler/pkg/queue"
)

// EventPublisher pushes domain events onto the bus. *queue.Producer
// satisfies it; tests substitute a no-op.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value interface{}) error
}

// IdentityService owns registration, credential verification and user
// lookup.
type IdentityService struct {
	db       *gorm.DB
	userRepo *repository.UserRepository
	producer EventPublisher
	logger   *logger.Logger
}

func NewIdentityService(db *gorm.DB, userRepo *repository.UserRepository, producer EventPublisher, logger *logger.Logger) *IdentityService {
	return &IdentityService{
		db:       db,
		userRepo: userRepo,
		producer: producer,
		logger:   logger,
	}
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	ImageURL string `json:"image_url"`
}

type UpdateProfileRequest struct {
	Email          *string `json:"email"`
	ImageURL       *string `json:"image_url"`
	HeaderImageURL *string `json:"header_image_url"`
	Bio            *string `json:"bio"`
	Location       *string `json:"location"`
}

// Register validates input, hashes the password and inserts the user inside
// one transaction. Username and email uniqueness is the storage
// constraint's job; a duplicate surfaces from the commit as
// gorm.ErrDuplicatedKey rather than as an up-front check.
func (s *IdentityService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if req.Username == "" {
		return nil, validationf("username must not be empty")
	}
	if req.Email == "" {
		return nil, validationf("email must not be empty")
	}
	if req.Password == "" {
		return nil, validationf("password must not be empty")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	imageURL := req.ImageURL
	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}

	user := &models.User{
		Username:       req.Username,
		Email:          req.Email,
		Password:       string(hashed),
		ImageURL:       imageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewUserRepository(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	event := queue.NewEvent(queue.EventUserRegistered)
	event.UserID = user.ID
	if err := s.producer.Publish(ctx, user.Username, event); err != nil {
		s.logger.WithError(err).Error("Failed to publish user registered event")
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Authenticate returns the user matching the credentials, or
// ErrNotAuthenticated. An unknown username and a wrong password produce the
// same result on purpose, so the response cannot be used to enumerate
// accounts.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotAuthenticated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrNotAuthenticated
	}

	return user, nil
}

// VerifyPassword is the re-authentication check used before destructive
// account actions. Same hash path as Authenticate, no session involved.
func (s *IdentityService) VerifyPassword(ctx context.Context, username, password string) (bool, error) {
	_, err := s.Authenticate(ctx, username, password)
	if err == ErrNotAuthenticated {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *IdentityService) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *IdentityService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

func (s *IdentityService) UpdateProfile(ctx context.Context, userID uint, req *UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if *req.Email == "" {
			return nil, validationf("email must not be empty")
		}
		user.Email = *req.Email
	}
	if req.ImageURL != nil {
		user.ImageURL = *req.ImageURL
	}
	if req.HeaderImageURL != nil {
		user.HeaderImageURL = *req.HeaderImageURL
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Location != nil {
		user.Location = *req.Location
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewUserRepository(tx).Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("Profile updated")
	return user, nil
}

// DeleteAccount removes the user; messages, follow edges and likes cascade
// away in the same transaction.
func (s *IdentityService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.GetByID(ctx, userID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repository.NewUserRepository(tx).Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	event := queue.NewEvent(queue.EventUserDeleted)
	event.UserID = userID
	if err := s.producer.Publish(ctx, fmt.Sprint(userID), event); err != nil {
		s.logger.WithError(err).Error("Failed to publish user deleted event")
	}

	s.logger.WithField("user_id", userID).Info("Account deleted")
	return nil
}

func (s *IdentityService) Search(ctx context.Context, query string, offset, limit int) ([]*models.User, error) {
	users, err := s.userRepo.Search(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}
