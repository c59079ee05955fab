package services_test

import (
	"context"
	"mime/multipart"
	"time"

	"trailmate/internal/models"
	"trailmate/internal/services"

	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(email string) (bool, error) {
	args := m.Called(email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) ExistsByNickname(nickname string) (bool, error) {
	args := m.Called(nickname)
	return args.Bool(0), args.Error(1)
}

// MockFootprintRepository is a mock implementation of repositories.FootprintRepository
type MockFootprintRepository struct {
	mock.Mock
}

func (m *MockFootprintRepository) GetByID(id string) (*models.Footprint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Footprint), args.Error(1)
}

func (m *MockFootprintRepository) FindAllByUserID(userID string, offset, limit int) ([]models.Footprint, int64, error) {
	args := m.Called(userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]models.Footprint), args.Get(1).(int64), args.Error(2)
}

// MockHikingHistoryRepository is a mock implementation of repositories.HikingHistoryRepository
type MockHikingHistoryRepository struct {
	mock.Mock
}

func (m *MockHikingHistoryRepository) FindAllByFootprintID(footprintID string) ([]models.HikingHistory, error) {
	args := m.Called(footprintID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HikingHistory), args.Error(1)
}

func (m *MockHikingHistoryRepository) FindByPeriod(footprintID, pathID string, start, end time.Time) ([]models.HikingHistory, error) {
	args := m.Called(footprintID, pathID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HikingHistory), args.Error(1)
}

func (m *MockHikingHistoryRepository) FindAllByIDs(ids []string) ([]models.HikingHistory, error) {
	args := m.Called(ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HikingHistory), args.Error(1)
}

func (m *MockHikingHistoryRepository) FindLatestByUserID(userID string) (*models.HikingHistory, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HikingHistory), args.Error(1)
}

// MockTokenStore is a mock implementation of repositories.TokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) SaveRefreshToken(ctx context.Context, email, token string, ttl time.Duration) error {
	args := m.Called(ctx, email, token, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, email string) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, token, reason string, ttl time.Duration) error {
	args := m.Called(ctx, token, reason, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenStore) SaveLoginPayload(ctx context.Context, token string, payload []byte, ttl time.Duration) error {
	args := m.Called(ctx, token, payload, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) TakeLoginPayload(ctx context.Context, token string) ([]byte, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockImageStorage is a mock implementation of storage.ImageStorage
type MockImageStorage struct {
	mock.Mock
}

func (m *MockImageStorage) UploadProfileImage(ctx context.Context, file *multipart.FileHeader) (string, error) {
	args := m.Called(ctx, file)
	return args.String(0), args.Error(1)
}

func (m *MockImageStorage) DefaultProfileImageURL() string {
	args := m.Called()
	return args.String(0)
}

// MockKakaoClient is a mock implementation of services.KakaoClient
type MockKakaoClient struct {
	mock.Mock
}

func (m *MockKakaoClient) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth2.Token), args.Error(1)
}

func (m *MockKakaoClient) FetchProfile(ctx context.Context, token *oauth2.Token) (*services.KakaoProfile, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.KakaoProfile), args.Error(1)
}
