package repository

import (
	"context"
	"time"

	"assetdesk-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int32) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	ListByDepartment(ctx context.Context, department string) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int32) error
	Stats(ctx context.Context) (*domain.UserStats, error)
}

type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) error
	GetByID(ctx context.Context, id int32) (*domain.Item, error)
	GetBySerialNumber(ctx context.Context, serial string) (*domain.Item, error)
	List(ctx context.Context, category string) ([]domain.Item, error)
	ListAvailable(ctx context.Context) ([]domain.Item, error)
	Update(ctx context.Context, item *domain.Item) error
	UpdateImage(ctx context.Context, id int32, imageKey, imageURL string) error
	Delete(ctx context.Context, id int32) error
	Stats(ctx context.Context) (*domain.ItemStats, error)

	// ReserveUnit atomically takes one unit of the item, failing with
	// ErrNoUnitsAvailable when none are left or the item is out of
	// service. ReleaseUnit returns a unit, clamped to the item quantity.
	// Both are single conditional UPDATEs so concurrent approvals cannot
	// oversubscribe the inventory.
	ReserveUnit(ctx context.Context, id int32) error
	ReleaseUnit(ctx context.Context, id int32) error
}

type BorrowRepository interface {
	Create(ctx context.Context, req *domain.BorrowRequest) error
	GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error)
	List(ctx context.Context) ([]domain.BorrowRequest, error)
	ListByUser(ctx context.Context, userID int32) ([]domain.BorrowRequest, error)
	ListByUserAndStatus(ctx context.Context, userID int32, statuses []domain.BorrowStatus) ([]domain.BorrowRequest, error)
	CountActiveByItem(ctx context.Context, itemID int32) (int32, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.BorrowRequest, error)
	Update(ctx context.Context, req *domain.BorrowRequest) error
	Delete(ctx context.Context, id int32) error
	Stats(ctx context.Context, now time.Time) (*domain.BorrowStats, error)
	RecentActivity(ctx context.Context, limit int32) ([]domain.ActivityEntry, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	CreateBatch(ctx context.Context, notes []domain.Notification) error
	ListByRecipient(ctx context.Context, recipientID int32) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, id, recipientID int32) error
	Delete(ctx context.Context, id, recipientID int32) error
	PurgeRead(ctx context.Context, olderThan time.Time) (int64, error)
}
