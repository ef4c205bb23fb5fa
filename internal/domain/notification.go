package domain

import "time"

type NotificationType string

const (
	NotificationTypeBorrowRequest  NotificationType = "borrow_request"
	NotificationTypeBorrowApproved NotificationType = "borrow_approved"
	NotificationTypeBorrowRejected NotificationType = "borrow_rejected"
	NotificationTypeGeneral        NotificationType = "general"
)

// RelatedKind tags what a notification points at, so RelatedTo is a typed
// reference instead of an id whose target collection is implied elsewhere.
type RelatedKind string

const (
	RelatedKindBorrowRequest RelatedKind = "borrow_request"
	RelatedKindItem          RelatedKind = "item"
	RelatedKindUser          RelatedKind = "user"
)

type RelatedRef struct {
	Kind RelatedKind `json:"kind"`
	ID   int32       `json:"id"`
}

type Notification struct {
	ID          int32            `json:"id"`
	RecipientID int32            `json:"recipient_id"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	RelatedTo   *RelatedRef      `json:"related_to,omitempty"`
	ActorID     *int32           `json:"actor_id,omitempty"`
	Read        bool             `json:"read"`
	CreatedOn   time.Time        `json:"created_on"`
}
