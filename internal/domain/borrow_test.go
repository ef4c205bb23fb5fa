package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBorrowRequest_Overdue(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, 0, -2)
	future := now.AddDate(0, 0, 2)

	cases := []struct {
		name    string
		status  BorrowStatus
		endDate time.Time
		want    bool
	}{
		{"approved past end date", BorrowStatusApproved, past, true},
		{"active past end date", BorrowStatusActive, past, true},
		{"approved before end date", BorrowStatusApproved, future, false},
		{"pending past end date", BorrowStatusPending, past, false},
		{"returned past end date", BorrowStatusReturned, past, false},
		{"rejected past end date", BorrowStatusRejected, past, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := &BorrowRequest{Status: tc.status, EndDate: tc.endDate}
			assert.Equal(t, tc.want, req.Overdue(now))
		})
	}
}

func TestActivityAction(t *testing.T) {
	assert.Equal(t, "requested", ActivityAction(BorrowStatusPending))
	assert.Equal(t, "borrowed", ActivityAction(BorrowStatusApproved))
	assert.Equal(t, "returned", ActivityAction(BorrowStatusReturned))
	assert.Equal(t, "cancelled", ActivityAction(BorrowStatusCancelled))
}

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleAdmin, PermissionManageUsers))
	assert.True(t, HasPermission(RoleManager, PermissionApproveRequest))
	assert.False(t, HasPermission(RoleManager, PermissionManageUsers))
	assert.True(t, HasPermission(RoleUser, PermissionSubmitRequest))
	assert.False(t, HasPermission(RoleUser, PermissionApproveRequest))
}

func TestRole_Elevated(t *testing.T) {
	assert.True(t, RoleAdmin.Elevated())
	assert.True(t, RoleManager.Elevated())
	assert.False(t, RoleUser.Elevated())
}
