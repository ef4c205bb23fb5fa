package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
)

const recentActivityLimit = 10

type borrowService struct {
	borrowRepo repository.BorrowRepository
	itemRepo   repository.ItemRepository
	userRepo   repository.UserRepository
	noteRepo   repository.NotificationRepository
	emailSvc   EmailService
}

func NewBorrowService(
	borrowRepo repository.BorrowRepository,
	itemRepo repository.ItemRepository,
	userRepo repository.UserRepository,
	noteRepo repository.NotificationRepository,
	emailSvc EmailService,
) BorrowService {
	return &borrowService{
		borrowRepo: borrowRepo,
		itemRepo:   itemRepo,
		userRepo:   userRepo,
		noteRepo:   noteRepo,
		emailSvc:   emailSvc,
	}
}

func validateDates(startDate, endDate time.Time) error {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if startDate.Before(today) {
		return apperrors.Validation("start date cannot be in the past")
	}
	// Same-day windows are fine; only an end before the start is invalid.
	if endDate.Before(startDate) {
		return apperrors.Validation("end date cannot be before start date")
	}
	return nil
}

func (s *borrowService) CreateRequest(ctx context.Context, userID, itemID int32, startDate, endDate time.Time, purpose string) (*domain.BorrowRequest, error) {
	if purpose == "" {
		return nil, apperrors.Validation("purpose is required")
	}
	if err := validateDates(startDate, endDate); err != nil {
		return nil, err
	}

	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("item not found")
		}
		return nil, err
	}
	// Availability is only reserved at approval; this check exists to fail
	// fast instead of queueing requests that can never be granted.
	if !item.Borrowable() {
		return nil, apperrors.InvalidState("item is not available for borrowing")
	}

	req := &domain.BorrowRequest{
		UserID:    userID,
		ItemID:    itemID,
		StartDate: startDate,
		EndDate:   endDate,
		Purpose:   purpose,
		Status:    domain.BorrowStatusPending,
	}
	if err := s.borrowRepo.Create(ctx, req); err != nil {
		return nil, err
	}
	logger.Info("Borrow request created", "requestID", req.ID, "userID", userID, "itemID", itemID)

	s.notifyAdmins(ctx, req, item)
	return s.borrowRepo.GetByID(ctx, req.ID)
}

// notifyAdmins fans a new request out to every admin. All of it is best
// effort; a failed notification never fails the request.
func (s *borrowService) notifyAdmins(ctx context.Context, req *domain.BorrowRequest, item *domain.Item) {
	requester, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		logger.Warn("Failed to load requester for notifications", "requestID", req.ID, "error", err)
		return
	}

	admins, err := s.userRepo.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		logger.Warn("Failed to list admins", "error", err)
		return
	}

	notes := make([]domain.Notification, 0, len(admins))
	for _, a := range admins {
		notes = append(notes, domain.Notification{
			RecipientID: a.ID,
			Title:       "New Borrow Request",
			Message:     fmt.Sprintf("%s requested to borrow %s", requester.Name, item.Name),
			Type:        domain.NotificationTypeBorrowRequest,
			RelatedTo:   &domain.RelatedRef{Kind: domain.RelatedKindBorrowRequest, ID: req.ID},
			ActorID:     &requester.ID,
		})
	}
	if err := s.noteRepo.CreateBatch(ctx, notes); err != nil {
		logger.Warn("Failed to create admin notifications", "requestID", req.ID, "error", err)
	}
	for _, a := range admins {
		if err := s.emailSvc.SendBorrowRequestNotification(ctx, a.Email, a.Name, requester.Name, item.Name); err != nil {
			logger.Warn("Failed to email admin", "requestID", req.ID, "email", a.Email, "error", err)
		}
	}
}

func (s *borrowService) getRequest(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	req, err := s.borrowRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("borrow request not found")
		}
		return nil, err
	}
	return req, nil
}

func (s *borrowService) GetRequest(ctx context.Context, actor *domain.User, id int32) (*domain.BorrowRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Elevated() && req.UserID != actor.ID {
		return nil, apperrors.Unauthorized("not authorized to view this request")
	}
	return req, nil
}

func (s *borrowService) ListRequests(ctx context.Context) ([]domain.BorrowRequest, error) {
	return s.borrowRepo.List(ctx)
}

func (s *borrowService) ListUserRequests(ctx context.Context, userID int32) ([]domain.BorrowRequest, error) {
	return s.borrowRepo.ListByUser(ctx, userID)
}

// ListUserActiveRequests returns what the user currently has out;
// ListUserHistory returns all of the user's requests regardless of status.
func (s *borrowService) ListUserActiveRequests(ctx context.Context, userID int32) ([]domain.BorrowRequest, error) {
	return s.borrowRepo.ListByUserAndStatus(ctx, userID,
		[]domain.BorrowStatus{domain.BorrowStatusApproved, domain.BorrowStatusActive})
}

func (s *borrowService) ListUserHistory(ctx context.Context, userID int32) ([]domain.BorrowRequest, error) {
	return s.borrowRepo.ListByUser(ctx, userID)
}

func (s *borrowService) UpdateRequest(ctx context.Context, actor *domain.User, id int32, startDate, endDate time.Time, purpose string) (*domain.BorrowRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Elevated() && req.UserID != actor.ID {
		return nil, apperrors.Unauthorized("not authorized to update this request")
	}
	if err := validateDates(startDate, endDate); err != nil {
		return nil, err
	}

	req.StartDate = startDate
	req.EndDate = endDate
	if purpose != "" {
		req.Purpose = purpose
	}
	if err := s.borrowRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *borrowService) ApproveRequest(ctx context.Context, approver *domain.User, id int32) (*domain.BorrowRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.BorrowStatusPending {
		return nil, apperrors.InvalidState("only pending requests can be approved")
	}

	// The conditional decrement is the authoritative availability check.
	// Two approvers racing for the last unit resolve here, not at read time.
	if err := s.itemRepo.ReserveUnit(ctx, req.ItemID); err != nil {
		if errors.Is(err, repository.ErrNoUnitsAvailable) {
			return nil, apperrors.InvalidState("no units of this item are available")
		}
		return nil, err
	}

	now := time.Now()
	req.Status = domain.BorrowStatusApproved
	req.ApprovedBy = &approver.ID
	req.ApprovalDate = &now
	if err := s.borrowRepo.Update(ctx, req); err != nil {
		// Give the unit back so a failed write does not leak inventory.
		if relErr := s.itemRepo.ReleaseUnit(ctx, req.ItemID); relErr != nil {
			logger.Error("Failed to release unit after approval failure", "requestID", req.ID, "error", relErr)
		}
		return nil, err
	}
	logger.Info("Borrow request approved", "requestID", req.ID, "approverID", approver.ID)

	s.notifyRequester(ctx, req, domain.NotificationTypeBorrowApproved, "Request Approved",
		func(itemName string) string { return fmt.Sprintf("Your request to borrow %s was approved", itemName) },
		func(u *domain.User, itemName string) error {
			return s.emailSvc.SendApprovalNotification(ctx, u.Email, u.Name, itemName, req.EndDate)
		})
	return s.borrowRepo.GetByID(ctx, req.ID)
}

func (s *borrowService) RejectRequest(ctx context.Context, approver *domain.User, id int32, reason string) (*domain.BorrowRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.BorrowStatusPending {
		return nil, apperrors.InvalidState("only pending requests can be rejected")
	}
	if reason == "" {
		return nil, apperrors.Validation("a rejection reason is required")
	}

	req.Status = domain.BorrowStatusRejected
	req.ApprovedBy = &approver.ID
	req.RejectionReason = reason
	if err := s.borrowRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	logger.Info("Borrow request rejected", "requestID", req.ID, "approverID", approver.ID)

	s.notifyRequester(ctx, req, domain.NotificationTypeBorrowRejected, "Request Rejected",
		func(itemName string) string { return fmt.Sprintf("Your request to borrow %s was rejected", itemName) },
		func(u *domain.User, itemName string) error {
			return s.emailSvc.SendRejectionNotification(ctx, u.Email, u.Name, itemName, reason)
		})
	return req, nil
}

func (s *borrowService) ReturnItem(ctx context.Context, actor *domain.User, id int32, condition domain.ReturnCondition, notes string) (*domain.BorrowRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Elevated() && req.UserID != actor.ID {
		return nil, apperrors.Unauthorized("not authorized to return this item")
	}
	if req.Status != domain.BorrowStatusApproved && req.Status != domain.BorrowStatusActive {
		return nil, apperrors.InvalidState("only approved or active requests can be returned")
	}
	if condition == "" {
		condition = domain.ReturnConditionSame
	}
	if !condition.Valid() {
		return nil, apperrors.Validation("unknown return condition: %s", condition)
	}

	now := time.Now()
	req.Status = domain.BorrowStatusReturned
	req.ActualReturnDate = &now
	req.ReturnCondition = condition
	req.ReturnNotes = notes
	if err := s.borrowRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	// A lost unit never comes back into circulation; everything else does.
	if condition != domain.ReturnConditionLost {
		if err := s.itemRepo.ReleaseUnit(ctx, req.ItemID); err != nil {
			logger.Error("Failed to release unit on return", "requestID", req.ID, "itemID", req.ItemID, "error", err)
		}
	}
	if condition == domain.ReturnConditionDamaged || condition == domain.ReturnConditionLost || condition == domain.ReturnConditionPoor {
		s.flagItemForReview(ctx, req.ItemID)
	}
	logger.Info("Item returned", "requestID", req.ID, "condition", condition)

	s.notifyRequester(ctx, req, domain.NotificationTypeGeneral, "Return Confirmed",
		func(itemName string) string { return fmt.Sprintf("Your return of %s has been recorded", itemName) },
		func(u *domain.User, itemName string) error {
			return s.emailSvc.SendReturnConfirmation(ctx, u.Email, u.Name, itemName)
		})
	return s.borrowRepo.GetByID(ctx, req.ID)
}

// flagItemForReview parks an item in maintenance after a bad return so an
// operator inspects it before it circulates again.
func (s *borrowService) flagItemForReview(ctx context.Context, itemID int32) {
	item, err := s.itemRepo.GetByID(ctx, itemID)
	if err != nil {
		logger.Warn("Failed to load item for review flag", "itemID", itemID, "error", err)
		return
	}
	if item.Status == domain.ItemStatusRetired {
		return
	}
	item.Status = domain.ItemStatusMaintenance
	if err := s.itemRepo.Update(ctx, item); err != nil {
		logger.Warn("Failed to flag item for review", "itemID", itemID, "error", err)
	}
}

func (s *borrowService) CancelRequest(ctx context.Context, actor *domain.User, id int32) (*domain.BorrowRequest, error) {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.Elevated() && req.UserID != actor.ID {
		return nil, apperrors.Unauthorized("not authorized to cancel this request")
	}
	if req.Status != domain.BorrowStatusPending {
		return nil, apperrors.InvalidState("only pending requests can be cancelled")
	}

	// No unit was ever reserved for a pending request, so cancellation
	// leaves the inventory untouched.
	req.Status = domain.BorrowStatusCancelled
	if err := s.borrowRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	logger.Info("Borrow request cancelled", "requestID", req.ID, "actorID", actor.ID)
	return req, nil
}

func (s *borrowService) DeleteRequest(ctx context.Context, actor *domain.User, id int32) error {
	req, err := s.getRequest(ctx, id)
	if err != nil {
		return err
	}
	if actor.Role != domain.RoleAdmin && req.UserID != actor.ID {
		return apperrors.Unauthorized("not authorized to delete this request")
	}
	if req.Status != domain.BorrowStatusPending {
		return apperrors.InvalidState("only pending requests can be deleted")
	}

	if err := s.borrowRepo.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("Borrow request deleted", "requestID", id, "actorID", actor.ID)
	return nil
}

func (s *borrowService) GetBorrowStats(ctx context.Context) (*domain.BorrowStats, error) {
	return s.borrowRepo.Stats(ctx, time.Now())
}

func (s *borrowService) RecentActivity(ctx context.Context) ([]domain.ActivityEntry, error) {
	return s.borrowRepo.RecentActivity(ctx, recentActivityLimit)
}

// notifyRequester records an in-app notification and sends the matching
// email to the request owner, both best effort.
func (s *borrowService) notifyRequester(
	ctx context.Context,
	req *domain.BorrowRequest,
	noteType domain.NotificationType,
	title string,
	message func(itemName string) string,
	sendEmail func(u *domain.User, itemName string) error,
) {
	itemName := "the item"
	if req.Item != nil {
		itemName = req.Item.Name
	}

	note := &domain.Notification{
		RecipientID: req.UserID,
		Title:       title,
		Message:     message(itemName),
		Type:        noteType,
		RelatedTo:   &domain.RelatedRef{Kind: domain.RelatedKindBorrowRequest, ID: req.ID},
		ActorID:     req.ApprovedBy,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Warn("Failed to create notification", "requestID", req.ID, "error", err)
	}

	user, err := s.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		logger.Warn("Failed to load requester for email", "requestID", req.ID, "error", err)
		return
	}
	if err := sendEmail(user, itemName); err != nil {
		logger.Warn("Failed to email requester", "requestID", req.ID, "email", user.Email, "error", err)
	}
}
