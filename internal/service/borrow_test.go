package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/repository"
)

func newBorrowFixture() (*MockBorrowRepo, *MockItemRepo, *MockUserRepo, *MockNotificationRepo, *MockEmailService, BorrowService) {
	borrowRepo := new(MockBorrowRepo)
	itemRepo := new(MockItemRepo)
	userRepo := new(MockUserRepo)
	noteRepo := new(MockNotificationRepo)
	emailSvc := new(MockEmailService)
	svc := NewBorrowService(borrowRepo, itemRepo, userRepo, noteRepo, emailSvc)
	return borrowRepo, itemRepo, userRepo, noteRepo, emailSvc, svc
}

func pendingRequest(id, userID, itemID int32) *domain.BorrowRequest {
	return &domain.BorrowRequest{
		ID:        id,
		UserID:    userID,
		ItemID:    itemID,
		StartDate: time.Now().Add(24 * time.Hour),
		EndDate:   time.Now().Add(7 * 24 * time.Hour),
		Purpose:   "project work",
		Status:    domain.BorrowStatusPending,
		Item:      &domain.Item{ID: itemID, Name: "ThinkPad X1", Quantity: 1, AvailableQuantity: 1},
	}
}

func manager(id int32) *domain.User {
	return &domain.User{ID: id, Name: "Morgan", Email: "morgan@corp.test", Role: domain.RoleManager}
}

func TestBorrowService_CreateRequest(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour)
	end := start.Add(5 * 24 * time.Hour)

	t.Run("Success", func(t *testing.T) {
		borrowRepo, itemRepo, userRepo, noteRepo, emailSvc, svc := newBorrowFixture()

		item := &domain.Item{ID: 7, Name: "ThinkPad X1", Status: domain.ItemStatusAvailable, Quantity: 1, AvailableQuantity: 1}
		itemRepo.On("GetByID", ctx, int32(7)).Return(item, nil)
		borrowRepo.On("Create", ctx, mock.AnythingOfType("*domain.BorrowRequest")).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.BorrowRequest).ID = 42
		}).Return(nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Name: "Riley", Email: "riley@corp.test"}, nil)
		userRepo.On("ListByRole", ctx, domain.RoleAdmin).Return([]domain.User{{ID: 9, Name: "Admin", Email: "admin@corp.test"}}, nil)
		noteRepo.On("CreateBatch", ctx, mock.Anything).Return(nil)
		emailSvc.On("SendBorrowRequestNotification", ctx, "admin@corp.test", "Admin", "Riley", "ThinkPad X1").Return(nil)
		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)

		req, err := svc.CreateRequest(ctx, 1, 7, start, end, "project work")
		assert.NoError(t, err)
		assert.Equal(t, domain.BorrowStatusPending, req.Status)
		noteRepo.AssertCalled(t, "CreateBatch", ctx, mock.Anything)
	})

	t.Run("Start date in the past", func(t *testing.T) {
		_, _, _, _, _, svc := newBorrowFixture()
		_, err := svc.CreateRequest(ctx, 1, 7, time.Now().Add(-48*time.Hour), end, "project work")
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("End date before start", func(t *testing.T) {
		_, _, _, _, _, svc := newBorrowFixture()
		_, err := svc.CreateRequest(ctx, 1, 7, start, start.Add(-24*time.Hour), "project work")
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	})

	t.Run("Same-day window is allowed", func(t *testing.T) {
		assert.NoError(t, validateDates(start, start))
	})

	t.Run("Item not borrowable", func(t *testing.T) {
		borrowRepo, itemRepo, _, _, _, svc := newBorrowFixture()
		item := &domain.Item{ID: 7, Status: domain.ItemStatusMaintenance, Quantity: 1, AvailableQuantity: 1}
		itemRepo.On("GetByID", ctx, int32(7)).Return(item, nil)

		_, err := svc.CreateRequest(ctx, 1, 7, start, end, "project work")
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
		borrowRepo.AssertNotCalled(t, "Create", ctx, mock.Anything)
	})
}

func TestBorrowService_ApproveRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Success reserves a unit", func(t *testing.T) {
		borrowRepo, itemRepo, userRepo, noteRepo, emailSvc, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)
		itemRepo.On("ReserveUnit", ctx, int32(7)).Return(nil)
		borrowRepo.On("Update", ctx, mock.AnythingOfType("*domain.BorrowRequest")).Return(nil)
		noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Name: "Riley", Email: "riley@corp.test"}, nil)
		emailSvc.On("SendApprovalNotification", ctx, "riley@corp.test", "Riley", "ThinkPad X1", mock.Anything).Return(nil)

		approved, err := svc.ApproveRequest(ctx, manager(2), 42)
		assert.NoError(t, err)
		assert.Equal(t, domain.BorrowStatusApproved, approved.Status)
		assert.NotNil(t, approved.ApprovedBy)
		assert.Equal(t, int32(2), *approved.ApprovedBy)
		assert.NotNil(t, approved.ApprovalDate)
		itemRepo.AssertCalled(t, "ReserveUnit", ctx, int32(7))
	})

	t.Run("Already approved", func(t *testing.T) {
		borrowRepo, itemRepo, _, _, _, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusApproved
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)

		_, err := svc.ApproveRequest(ctx, manager(2), 42)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
		itemRepo.AssertNotCalled(t, "ReserveUnit", ctx, int32(7))
	})

	t.Run("No units available", func(t *testing.T) {
		borrowRepo, itemRepo, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)
		itemRepo.On("ReserveUnit", ctx, int32(7)).Return(repository.ErrNoUnitsAvailable)

		_, err := svc.ApproveRequest(ctx, manager(2), 42)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
		borrowRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	})

	t.Run("Failed write releases the unit", func(t *testing.T) {
		borrowRepo, itemRepo, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)
		itemRepo.On("ReserveUnit", ctx, int32(7)).Return(nil)
		borrowRepo.On("Update", ctx, mock.Anything).Return(assert.AnError)
		itemRepo.On("ReleaseUnit", ctx, int32(7)).Return(nil)

		_, err := svc.ApproveRequest(ctx, manager(2), 42)
		assert.Error(t, err)
		itemRepo.AssertCalled(t, "ReleaseUnit", ctx, int32(7))
	})
}

func TestBorrowService_RejectRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejection leaves inventory untouched", func(t *testing.T) {
		borrowRepo, itemRepo, userRepo, noteRepo, emailSvc, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)
		borrowRepo.On("Update", ctx, mock.Anything).Return(nil)
		noteRepo.On("Create", ctx, mock.Anything).Return(nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Name: "Riley", Email: "riley@corp.test"}, nil)
		emailSvc.On("SendRejectionNotification", ctx, "riley@corp.test", "Riley", "ThinkPad X1", "no stock").Return(nil)

		rejected, err := svc.RejectRequest(ctx, manager(2), 42, "no stock")
		assert.NoError(t, err)
		assert.Equal(t, domain.BorrowStatusRejected, rejected.Status)
		assert.Equal(t, "no stock", rejected.RejectionReason)
		itemRepo.AssertNotCalled(t, "ReserveUnit", ctx, mock.Anything)
		itemRepo.AssertNotCalled(t, "ReleaseUnit", ctx, mock.Anything)
	})

	t.Run("Reason is required", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()
		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)

		_, err := svc.RejectRequest(ctx, manager(2), 42, "")
		assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
		borrowRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	})

	t.Run("Only pending can be rejected", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusReturned
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)

		_, err := svc.RejectRequest(ctx, manager(2), 42, "")
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})
}

func TestBorrowService_ReturnItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Return releases the unit", func(t *testing.T) {
		borrowRepo, itemRepo, userRepo, noteRepo, emailSvc, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusApproved
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)
		borrowRepo.On("Update", ctx, mock.Anything).Return(nil)
		itemRepo.On("ReleaseUnit", ctx, int32(7)).Return(nil)
		noteRepo.On("Create", ctx, mock.Anything).Return(nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Name: "Riley", Email: "riley@corp.test"}, nil)
		emailSvc.On("SendReturnConfirmation", ctx, "riley@corp.test", "Riley", "ThinkPad X1").Return(nil)

		returned, err := svc.ReturnItem(ctx, &domain.User{ID: 1, Role: domain.RoleUser}, 42, domain.ReturnConditionSame, "")
		assert.NoError(t, err)
		assert.Equal(t, domain.BorrowStatusReturned, returned.Status)
		assert.NotNil(t, returned.ActualReturnDate)
		itemRepo.AssertCalled(t, "ReleaseUnit", ctx, int32(7))
	})

	t.Run("Returned is terminal", func(t *testing.T) {
		borrowRepo, itemRepo, _, _, _, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusReturned
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)

		_, err := svc.ReturnItem(ctx, manager(2), 42, domain.ReturnConditionSame, "")
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
		itemRepo.AssertNotCalled(t, "ReleaseUnit", ctx, mock.Anything)
	})

	t.Run("Lost unit never returns to stock", func(t *testing.T) {
		borrowRepo, itemRepo, userRepo, noteRepo, emailSvc, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusActive
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)
		borrowRepo.On("Update", ctx, mock.Anything).Return(nil)
		itemRepo.On("GetByID", ctx, int32(7)).
			Return(&domain.Item{ID: 7, Name: "ThinkPad X1", Status: domain.ItemStatusBorrowed}, nil)
		itemRepo.On("Update", ctx, mock.AnythingOfType("*domain.Item")).Return(nil)
		noteRepo.On("Create", ctx, mock.Anything).Return(nil)
		userRepo.On("GetByID", ctx, int32(1)).Return(&domain.User{ID: 1, Name: "Riley", Email: "riley@corp.test"}, nil)
		emailSvc.On("SendReturnConfirmation", ctx, "riley@corp.test", "Riley", "ThinkPad X1").Return(nil)

		_, err := svc.ReturnItem(ctx, manager(2), 42, domain.ReturnConditionLost, "left in taxi")
		assert.NoError(t, err)
		itemRepo.AssertNotCalled(t, "ReleaseUnit", ctx, mock.Anything)
	})

	t.Run("Someone else's request", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusApproved
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)

		_, err := svc.ReturnItem(ctx, &domain.User{ID: 3, Role: domain.RoleUser}, 42, domain.ReturnConditionSame, "")
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
	})
}

func TestBorrowService_CancelRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner cancels pending", func(t *testing.T) {
		borrowRepo, itemRepo, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)
		borrowRepo.On("Update", ctx, mock.Anything).Return(nil)

		cancelled, err := svc.CancelRequest(ctx, &domain.User{ID: 1, Role: domain.RoleUser}, 42)
		assert.NoError(t, err)
		assert.Equal(t, domain.BorrowStatusCancelled, cancelled.Status)
		itemRepo.AssertNotCalled(t, "ReleaseUnit", ctx, mock.Anything)
	})

	t.Run("Approved cannot be cancelled", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusApproved
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)

		_, err := svc.CancelRequest(ctx, &domain.User{ID: 1, Role: domain.RoleUser}, 42)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
	})
}

func TestBorrowService_DeleteRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("Only pending can be deleted", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusApproved
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)

		err := svc.DeleteRequest(ctx, &domain.User{ID: 9, Role: domain.RoleAdmin}, 42)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
		borrowRepo.AssertNotCalled(t, "Delete", ctx, mock.Anything)
	})

	t.Run("Settled requests cannot be deleted either", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusCancelled
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)

		err := svc.DeleteRequest(ctx, &domain.User{ID: 9, Role: domain.RoleAdmin}, 42)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
		borrowRepo.AssertNotCalled(t, "Delete", ctx, mock.Anything)
	})

	t.Run("Stranger cannot delete", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)

		err := svc.DeleteRequest(ctx, &domain.User{ID: 3, Role: domain.RoleUser}, 42)
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
		borrowRepo.AssertNotCalled(t, "Delete", ctx, mock.Anything)
	})

	t.Run("Owner deletes own pending", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)
		borrowRepo.On("Delete", ctx, int32(42)).Return(nil)

		err := svc.DeleteRequest(ctx, &domain.User{ID: 1, Role: domain.RoleUser}, 42)
		assert.NoError(t, err)
	})
}

func TestBorrowService_UpdateRequest(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(48 * time.Hour)
	end := start.Add(5 * 24 * time.Hour)

	t.Run("Owner edits own pending", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)
		borrowRepo.On("Update", ctx, mock.AnythingOfType("*domain.BorrowRequest")).Return(nil)

		updated, err := svc.UpdateRequest(ctx, &domain.User{ID: 1, Role: domain.RoleUser}, 42, start, end, "conference demo")
		assert.NoError(t, err)
		assert.Equal(t, "conference demo", updated.Purpose)
		assert.Equal(t, domain.BorrowStatusPending, updated.Status)
	})

	t.Run("Manager edits someone else's pending", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)
		borrowRepo.On("Update", ctx, mock.Anything).Return(nil)

		_, err := svc.UpdateRequest(ctx, manager(2), 42, start, end, "")
		assert.NoError(t, err)
	})

	t.Run("Someone else's request", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("GetByID", ctx, int32(42)).Return(pendingRequest(42, 1, 7), nil)

		_, err := svc.UpdateRequest(ctx, &domain.User{ID: 3, Role: domain.RoleUser}, 42, start, end, "")
		assert.True(t, apperrors.IsKind(err, apperrors.KindUnauthorized))
		borrowRepo.AssertNotCalled(t, "Update", ctx, mock.Anything)
	})

	t.Run("Status is never changed by an edit", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		req := pendingRequest(42, 1, 7)
		req.Status = domain.BorrowStatusApproved
		borrowRepo.On("GetByID", ctx, int32(42)).Return(req, nil)
		borrowRepo.On("Update", ctx, mock.Anything).Return(nil)

		updated, err := svc.UpdateRequest(ctx, &domain.User{ID: 1, Role: domain.RoleUser}, 42, start, end, "")
		assert.NoError(t, err)
		assert.Equal(t, domain.BorrowStatusApproved, updated.Status)
	})
}

func TestBorrowService_ScopedLists(t *testing.T) {
	ctx := context.Background()

	t.Run("Active covers approved and active", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("ListByUserAndStatus", ctx, int32(1),
			[]domain.BorrowStatus{domain.BorrowStatusApproved, domain.BorrowStatusActive}).
			Return([]domain.BorrowRequest{{ID: 42, Status: domain.BorrowStatusApproved}}, nil)

		requests, err := svc.ListUserActiveRequests(ctx, 1)
		assert.NoError(t, err)
		assert.Len(t, requests, 1)
	})

	t.Run("History covers every status", func(t *testing.T) {
		borrowRepo, _, _, _, _, svc := newBorrowFixture()

		borrowRepo.On("ListByUser", ctx, int32(1)).Return([]domain.BorrowRequest{
			{ID: 40, Status: domain.BorrowStatusPending},
			{ID: 41, Status: domain.BorrowStatusApproved},
			{ID: 42, Status: domain.BorrowStatusReturned},
		}, nil)

		requests, err := svc.ListUserHistory(ctx, 1)
		assert.NoError(t, err)
		assert.Len(t, requests, 3)
	})
}
