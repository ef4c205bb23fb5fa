package service

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/security"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error) {
	args := m.Called(ctx, tokenHash, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) ListByDepartment(ctx context.Context, department string) ([]domain.User, error) {
	args := m.Called(ctx, department)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepo) Stats(ctx context.Context) (*domain.UserStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserStats), args.Error(1)
}

type MockItemRepo struct {
	mock.Mock
}

func (m *MockItemRepo) Create(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepo) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemRepo) GetBySerialNumber(ctx context.Context, serial string) (*domain.Item, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Item), args.Error(1)
}

func (m *MockItemRepo) List(ctx context.Context, category string) ([]domain.Item, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *MockItemRepo) ListAvailable(ctx context.Context) ([]domain.Item, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Item), args.Error(1)
}

func (m *MockItemRepo) Update(ctx context.Context, item *domain.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepo) UpdateImage(ctx context.Context, id int32, imageKey, imageURL string) error {
	args := m.Called(ctx, id, imageKey, imageURL)
	return args.Error(0)
}

func (m *MockItemRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepo) Stats(ctx context.Context) (*domain.ItemStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemStats), args.Error(1)
}

func (m *MockItemRepo) ReserveUnit(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockItemRepo) ReleaseUnit(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBorrowRepo struct {
	mock.Mock
}

func (m *MockBorrowRepo) Create(ctx context.Context, req *domain.BorrowRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockBorrowRepo) GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowRequest), args.Error(1)
}

func (m *MockBorrowRepo) List(ctx context.Context) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}

func (m *MockBorrowRepo) ListByUser(ctx context.Context, userID int32) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}

func (m *MockBorrowRepo) ListByUserAndStatus(ctx context.Context, userID int32, statuses []domain.BorrowStatus) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx, userID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}

func (m *MockBorrowRepo) CountActiveByItem(ctx context.Context, itemID int32) (int32, error) {
	args := m.Called(ctx, itemID)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockBorrowRepo) ListOverdue(ctx context.Context, now time.Time) ([]domain.BorrowRequest, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BorrowRequest), args.Error(1)
}

func (m *MockBorrowRepo) Update(ctx context.Context, req *domain.BorrowRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockBorrowRepo) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockBorrowRepo) Stats(ctx context.Context, now time.Time) (*domain.BorrowStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BorrowStats), args.Error(1)
}

func (m *MockBorrowRepo) RecentActivity(ctx context.Context, limit int32) ([]domain.ActivityEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ActivityEntry), args.Error(1)
}

type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}

func (m *MockNotificationRepo) CreateBatch(ctx context.Context, notes []domain.Notification) error {
	args := m.Called(ctx, notes)
	return args.Error(0)
}

func (m *MockNotificationRepo) ListByRecipient(ctx context.Context, recipientID int32) ([]domain.Notification, error) {
	args := m.Called(ctx, recipientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Notification), args.Error(1)
}

func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, recipientID int32) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepo) Delete(ctx context.Context, id, recipientID int32) error {
	args := m.Called(ctx, id, recipientID)
	return args.Error(0)
}

func (m *MockNotificationRepo) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendBorrowRequestNotification(ctx context.Context, adminEmail, adminName, requesterName, itemName string) error {
	args := m.Called(ctx, adminEmail, adminName, requesterName, itemName)
	return args.Error(0)
}

func (m *MockEmailService) SendApprovalNotification(ctx context.Context, email, name, itemName string, endDate time.Time) error {
	args := m.Called(ctx, email, name, itemName, endDate)
	return args.Error(0)
}

func (m *MockEmailService) SendRejectionNotification(ctx context.Context, email, name, itemName, reason string) error {
	args := m.Called(ctx, email, name, itemName, reason)
	return args.Error(0)
}

func (m *MockEmailService) SendReturnConfirmation(ctx context.Context, email, name, itemName string) error {
	args := m.Called(ctx, email, name, itemName)
	return args.Error(0)
}

func (m *MockEmailService) SendOverdueReminder(ctx context.Context, email, name, itemName string, endDate time.Time) error {
	args := m.Called(ctx, email, name, itemName, endDate)
	return args.Error(0)
}

func (m *MockEmailService) SendPasswordReset(ctx context.Context, email, name, resetURL string) error {
	args := m.Called(ctx, email, name, resetURL)
	return args.Error(0)
}

type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) GenerateAccessToken(userID int32, role domain.Role) (string, error) {
	args := m.Called(userID, role)
	return args.String(0), args.Error(1)
}

func (m *MockTokenManager) ValidateToken(tokenString string) (*security.UserClaims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*security.UserClaims), args.Error(1)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) SaveFile(ctx context.Context, key string, reader io.Reader) error {
	args := m.Called(ctx, key, reader)
	return args.Error(0)
}

func (m *MockStorage) ReadFile(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStorage) FileExists(ctx context.Context, key string) (bool, int64, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) FileURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}
