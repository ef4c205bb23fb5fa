package domain

import "time"

type BorrowStatus string

const (
	BorrowStatusPending   BorrowStatus = "pending"
	BorrowStatusApproved  BorrowStatus = "approved"
	BorrowStatusRejected  BorrowStatus = "rejected"
	BorrowStatusActive    BorrowStatus = "active"
	BorrowStatusReturned  BorrowStatus = "returned"
	BorrowStatusOverdue   BorrowStatus = "overdue"
	BorrowStatusCancelled BorrowStatus = "cancelled"
)

type ReturnCondition string

const (
	ReturnConditionSame      ReturnCondition = "same"
	ReturnConditionDamaged   ReturnCondition = "damaged"
	ReturnConditionLost      ReturnCondition = "lost"
	ReturnConditionExcellent ReturnCondition = "excellent"
	ReturnConditionGood      ReturnCondition = "good"
	ReturnConditionFair      ReturnCondition = "fair"
	ReturnConditionPoor      ReturnCondition = "poor"
)

func (c ReturnCondition) Valid() bool {
	switch c {
	case ReturnConditionSame, ReturnConditionDamaged, ReturnConditionLost,
		ReturnConditionExcellent, ReturnConditionGood, ReturnConditionFair, ReturnConditionPoor:
		return true
	}
	return false
}

type BorrowRequest struct {
	ID               int32           `json:"id"`
	UserID           int32           `json:"user_id"`
	ItemID           int32           `json:"item_id"`
	StartDate        time.Time       `json:"start_date"`
	EndDate          time.Time       `json:"end_date"`
	ActualReturnDate *time.Time      `json:"actual_return_date,omitempty"`
	Purpose          string          `json:"purpose"`
	Status           BorrowStatus    `json:"status"`
	ApprovedBy       *int32          `json:"approved_by,omitempty"`
	ApprovalDate     *time.Time      `json:"approval_date,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	ReturnCondition  ReturnCondition `json:"return_condition"`
	ReturnNotes      string          `json:"return_notes,omitempty"`
	CreatedOn        time.Time       `json:"created_on"`
	UpdatedOn        time.Time       `json:"updated_on"`

	// Populated on reads that join the referenced rows. User may be nil for
	// requests whose owner was deleted.
	User *User `json:"user,omitempty"`
	Item *Item `json:"item,omitempty"`
}

// Overdue is a read-time predicate, never a stored transition: a request is
// overdue while it is still out past its agreed end date.
func (b *BorrowRequest) Overdue(now time.Time) bool {
	return (b.Status == BorrowStatusApproved || b.Status == BorrowStatusActive) && b.EndDate.Before(now)
}

type BorrowStats struct {
	Total     int32 `json:"total"`
	Pending   int32 `json:"pending"`
	Approved  int32 `json:"approved"`
	Active    int32 `json:"active"`
	Returned  int32 `json:"returned"`
	Rejected  int32 `json:"rejected"`
	Cancelled int32 `json:"cancelled"`
	Overdue   int32 `json:"overdue"`
}

// ActivityEntry is the simplified shape served by /borrow/recent-activity.
type ActivityEntry struct {
	ID        int32     `json:"id"`
	User      *User     `json:"user,omitempty"`
	Item      *Item     `json:"item,omitempty"`
	Action    string    `json:"action"`
	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// ActivityAction maps a request status to the verb shown in activity feeds.
func ActivityAction(s BorrowStatus) string {
	switch s {
	case BorrowStatusPending:
		return "requested"
	case BorrowStatusApproved:
		return "borrowed"
	default:
		return string(s)
	}
}
