package service

import (
	"context"
	"time"

	"assetdesk-backend/internal/domain"
)

type AuthService interface {
	Register(ctx context.Context, name, email, password, department, phone string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetMe(ctx context.Context, userID int32) (*domain.User, error)
	UpdateDetails(ctx context.Context, userID int32, name, email, department, phone string) (*domain.User, error)
	UpdatePassword(ctx context.Context, userID int32, currentPassword, newPassword string) (string, error)
	VerifyPassword(ctx context.Context, userID int32, password string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)
}

type UserService interface {
	CreateUser(ctx context.Context, name, email, password string, role domain.Role, department, phone string) (*domain.User, error)
	GetUser(ctx context.Context, id int32) (*domain.User, error)
	ListUsers(ctx context.Context, role domain.Role, department string) ([]domain.User, error)
	UpdateUser(ctx context.Context, id int32, update UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, actorID, id int32) error
	GetUserStats(ctx context.Context) (*domain.UserStats, error)
}

// UserUpdate carries the admin-editable fields. Nil pointers mean "leave as
// is" so partial updates do not clobber columns.
type UserUpdate struct {
	Name       *string
	Email      *string
	Role       *domain.Role
	Department *string
	Phone      *string
	Status     *domain.UserStatus
}

type ItemService interface {
	CreateItem(ctx context.Context, actorID int32, item *domain.Item) (*domain.Item, error)
	GetItem(ctx context.Context, id int32) (*domain.Item, error)
	ListItems(ctx context.Context, category string) ([]domain.Item, error)
	ListAvailableItems(ctx context.Context) ([]domain.Item, error)
	UpdateItem(ctx context.Context, id int32, item *domain.Item) (*domain.Item, error)
	DeleteItem(ctx context.Context, id int32) error
	GetItemStats(ctx context.Context) (*domain.ItemStats, error)

	// UploadPhoto stores the image and records its key and URL on the item.
	// PhotoURL resolves the serving URL, falling back to the category
	// default when the item has no photo of its own.
	UploadPhoto(ctx context.Context, id int32, filename string, data []byte) (*domain.Item, error)
	PhotoURL(item *domain.Item) string
}

type BorrowService interface {
	CreateRequest(ctx context.Context, userID, itemID int32, startDate, endDate time.Time, purpose string) (*domain.BorrowRequest, error)
	GetRequest(ctx context.Context, actor *domain.User, id int32) (*domain.BorrowRequest, error)
	ListRequests(ctx context.Context) ([]domain.BorrowRequest, error)
	ListUserRequests(ctx context.Context, userID int32) ([]domain.BorrowRequest, error)
	ListUserActiveRequests(ctx context.Context, userID int32) ([]domain.BorrowRequest, error)
	ListUserHistory(ctx context.Context, userID int32) ([]domain.BorrowRequest, error)
	UpdateRequest(ctx context.Context, actor *domain.User, id int32, startDate, endDate time.Time, purpose string) (*domain.BorrowRequest, error)
	ApproveRequest(ctx context.Context, approver *domain.User, id int32) (*domain.BorrowRequest, error)
	RejectRequest(ctx context.Context, approver *domain.User, id int32, reason string) (*domain.BorrowRequest, error)
	ReturnItem(ctx context.Context, actor *domain.User, id int32, condition domain.ReturnCondition, notes string) (*domain.BorrowRequest, error)
	CancelRequest(ctx context.Context, actor *domain.User, id int32) (*domain.BorrowRequest, error)
	DeleteRequest(ctx context.Context, actor *domain.User, id int32) error
	GetBorrowStats(ctx context.Context) (*domain.BorrowStats, error)
	RecentActivity(ctx context.Context) ([]domain.ActivityEntry, error)
}

type NotificationService interface {
	ListNotifications(ctx context.Context, recipientID int32) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id, recipientID int32) error
	DeleteNotification(ctx context.Context, id, recipientID int32) error
}

type EmailService interface {
	SendBorrowRequestNotification(ctx context.Context, adminEmail, adminName, requesterName, itemName string) error
	SendApprovalNotification(ctx context.Context, email, name, itemName string, endDate time.Time) error
	SendRejectionNotification(ctx context.Context, email, name, itemName, reason string) error
	SendReturnConfirmation(ctx context.Context, email, name, itemName string) error
	SendOverdueReminder(ctx context.Context, email, name, itemName string, endDate time.Time) error
	SendPasswordReset(ctx context.Context, email, name, resetURL string) error
}
