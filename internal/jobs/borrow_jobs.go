package jobs

import (
	"context"
	"fmt"
	"time"

	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
)

// readNotificationRetention is how long read notifications are kept before
// the nightly purge removes them.
const readNotificationRetention = 30 * 24 * time.Hour

// SendOverdueReminders emails every borrower whose item is out past its end
// date. Overdue is never written back to the request; it stays a read-time
// predicate so the stored lifecycle is unambiguous.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := time.Now()

		overdue, err := jr.store.BorrowRepository.ListOverdue(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue requests", "error", err)
			return
		}
		if len(overdue) == 0 {
			logger.Info("No overdue requests")
			return
		}

		reminded := 0
		for _, req := range overdue {
			if req.User == nil || req.Item == nil {
				logger.Warn("Overdue request missing joined rows", "requestID", req.ID)
				continue
			}
			if err := jr.services.Email.SendOverdueReminder(ctx, req.User.Email, req.User.Name, req.Item.Name, req.EndDate); err != nil {
				logger.Warn("Failed to send overdue reminder", "requestID", req.ID, "email", req.User.Email, "error", err)
				continue
			}

			note := &domain.Notification{
				RecipientID: req.UserID,
				Title:       "Item Overdue",
				Message:     fmt.Sprintf("%s was due back on %s", req.Item.Name, req.EndDate.Format("Jan 2, 2006")),
				Type:        domain.NotificationTypeGeneral,
				RelatedTo:   &domain.RelatedRef{Kind: domain.RelatedKindBorrowRequest, ID: req.ID},
			}
			if err := jr.store.NotificationRepository.Create(ctx, note); err != nil {
				logger.Warn("Failed to create overdue notification", "requestID", req.ID, "error", err)
			}
			reminded++
		}
		logger.Info("Overdue reminders sent", "overdue", len(overdue), "reminded", reminded)
	})
}

// PurgeReadNotifications clears old read notifications so the table does
// not grow without bound.
func (jr *JobRunner) PurgeReadNotifications() {
	jr.runWithRecovery("PurgeReadNotifications", func() {
		ctx := context.Background()
		cutoff := time.Now().Add(-readNotificationRetention)

		purged, err := jr.store.NotificationRepository.PurgeRead(ctx, cutoff)
		if err != nil {
			logger.Error("Failed to purge read notifications", "error", err)
			return
		}
		logger.Info("Read notifications purged", "purged", purged, "cutoff", cutoff)
	})
}
