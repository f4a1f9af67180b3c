package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/warbler-social/warbler/internal/config"
	"github.com/warbler-social/warbler/internal/models"
	"github.com/warbler-social/warbler/internal/repository"
	"github.com/warbler-social/warbler/pkg/logger"
)

// nopPublisher satisfies EventPublisher for tests; events go nowhere.
type nopPublisher struct{}

func (nopPublisher) Publish(ctx context.Context, key string, value interface{}) error {
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps every session on the same in-memory
	// database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Message{},
		&models.Follow{},
		&models.Like{},
	))

	return db
}

type testEnv struct {
	db         *gorm.DB
	identity   *IdentityService
	social     *SocialGraphService
	content    *ContentService
	engagement *EngagementService
	timeline   *TimelineService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := logger.New()
	pub := nopPublisher{}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	likeRepo := repository.NewLikeRepository(db)

	timelineCfg := &config.TimelineConfig{MaxSize: 100}

	return &testEnv{
		db:         db,
		identity:   NewIdentityService(db, userRepo, pub, log),
		social:     NewSocialGraphService(db, userRepo, followRepo, pub, log),
		content:    NewContentService(db, messageRepo, likeRepo, pub, log),
		engagement: NewEngagementService(db, messageRepo, likeRepo, pub, log),
		timeline:   NewTimelineService(messageRepo, followRepo, nil, timelineCfg, log),
	}
}

func (e *testEnv) register(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.identity.Register(context.Background(), &RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) post(t *testing.T, authorID uint, text string) *models.Message {
	t.Helper()
	message, err := e.content.CreateMessage(context.Background(), authorID, text)
	require.NoError(t, err)
	return message
}

func (e *testEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Count(&n).Error)
	return n
}
