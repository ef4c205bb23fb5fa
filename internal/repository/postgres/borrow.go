package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
)

type borrowRepository struct {
	db *sql.DB
}

func NewBorrowRepository(db *sql.DB) repository.BorrowRepository {
	return &borrowRepository{db: db}
}

const borrowColumns = `br.id, br.user_id, br.item_id, br.start_date, br.end_date, br.actual_return_date,
	br.purpose, br.status, br.approved_by, br.approval_date, COALESCE(br.rejection_reason, ''),
	COALESCE(br.return_condition, 'same'), COALESCE(br.return_notes, ''), br.created_on, br.updated_on,
	u.id, u.name, u.email, COALESCE(u.department, ''), u.role,
	i.id, i.name, i.category, COALESCE(i.serial_number, ''), i.status, COALESCE(i.image_url, '')`

const borrowJoins = ` FROM borrow_requests br
	LEFT JOIN users u ON u.id = br.user_id
	JOIN items i ON i.id = br.item_id`

func scanBorrow(row interface{ Scan(...any) error }) (*domain.BorrowRequest, error) {
	b := &domain.BorrowRequest{}
	var (
		actualReturn, approvalDate sql.NullTime
		approvedBy                 sql.NullInt32
		userID                     sql.NullInt32
		userName, userEmail        sql.NullString
		userDept, userRole         sql.NullString
		item                       domain.Item
	)
	err := row.Scan(&b.ID, &b.UserID, &b.ItemID, &b.StartDate, &b.EndDate, &actualReturn,
		&b.Purpose, &b.Status, &approvedBy, &approvalDate, &b.RejectionReason,
		&b.ReturnCondition, &b.ReturnNotes, &b.CreatedOn, &b.UpdatedOn,
		&userID, &userName, &userEmail, &userDept, &userRole,
		&item.ID, &item.Name, &item.Category, &item.SerialNumber, &item.Status, &item.ImageURL)
	if err != nil {
		return nil, err
	}
	if actualReturn.Valid {
		b.ActualReturnDate = &actualReturn.Time
	}
	if approvalDate.Valid {
		b.ApprovalDate = &approvalDate.Time
	}
	if approvedBy.Valid {
		b.ApprovedBy = &approvedBy.Int32
	}
	if userID.Valid {
		b.User = &domain.User{
			ID:         userID.Int32,
			Name:       userName.String,
			Email:      userEmail.String,
			Department: userDept.String,
			Role:       domain.Role(userRole.String),
		}
	}
	b.Item = &item
	return b, nil
}

func (r *borrowRepository) Create(ctx context.Context, req *domain.BorrowRequest) error {
	query := `INSERT INTO borrow_requests (user_id, item_id, start_date, end_date, purpose, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	now := time.Now()
	req.CreatedOn = now
	req.UpdatedOn = now
	logger.DatabaseCall("INSERT", "borrow_requests", "userID", req.UserID, "itemID", req.ItemID)
	return r.db.QueryRowContext(ctx, query, req.UserID, req.ItemID, req.StartDate, req.EndDate,
		req.Purpose, req.Status, req.CreatedOn, req.UpdatedOn).Scan(&req.ID)
}

func (r *borrowRepository) GetByID(ctx context.Context, id int32) (*domain.BorrowRequest, error) {
	query := `SELECT ` + borrowColumns + borrowJoins + ` WHERE br.id = $1`
	return scanBorrow(r.db.QueryRowContext(ctx, query, id))
}

func (r *borrowRepository) List(ctx context.Context) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowColumns + borrowJoins + ` ORDER BY br.created_on DESC`
	return r.queryBorrows(ctx, query)
}

func (r *borrowRepository) ListByUser(ctx context.Context, userID int32) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowColumns + borrowJoins + ` WHERE br.user_id = $1 ORDER BY br.created_on DESC`
	return r.queryBorrows(ctx, query, userID)
}

func (r *borrowRepository) ListByUserAndStatus(ctx context.Context, userID int32, statuses []domain.BorrowStatus) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowColumns + borrowJoins + ` WHERE br.user_id = $1 AND br.status = ANY($2) ORDER BY br.created_on DESC`
	list := make([]string, len(statuses))
	for i, s := range statuses {
		list[i] = string(s)
	}
	return r.queryBorrows(ctx, query, userID, pq.Array(list))
}

func (r *borrowRepository) CountActiveByItem(ctx context.Context, itemID int32) (int32, error) {
	query := `SELECT count(*) FROM borrow_requests
	          WHERE item_id = $1 AND status IN ('pending', 'approved', 'active')`
	var count int32
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(&count)
	return count, err
}

func (r *borrowRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.BorrowRequest, error) {
	query := `SELECT ` + borrowColumns + borrowJoins + `
	          WHERE br.status IN ('approved', 'active') AND br.end_date < $1
	          ORDER BY br.end_date ASC`
	return r.queryBorrows(ctx, query, now)
}

func (r *borrowRepository) queryBorrows(ctx context.Context, query string, args ...any) ([]domain.BorrowRequest, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []domain.BorrowRequest
	for rows.Next() {
		b, err := scanBorrow(rows)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, *b)
	}
	return reqs, rows.Err()
}

func (r *borrowRepository) Update(ctx context.Context, req *domain.BorrowRequest) error {
	query := `UPDATE borrow_requests SET start_date=$1, end_date=$2, actual_return_date=$3, purpose=$4,
	          status=$5, approved_by=$6, approval_date=$7, rejection_reason=$8, return_condition=$9,
	          return_notes=$10, updated_on=$11 WHERE id=$12`
	req.UpdatedOn = time.Now()
	logger.DatabaseCall("UPDATE", "borrow_requests", "requestID", req.ID, "status", req.Status)
	result, err := r.db.ExecContext(ctx, query, req.StartDate, req.EndDate, req.ActualReturnDate,
		req.Purpose, req.Status, req.ApprovedBy, req.ApprovalDate, nullIfEmpty(req.RejectionReason),
		req.ReturnCondition, nullIfEmpty(req.ReturnNotes), req.UpdatedOn, req.ID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *borrowRepository) Delete(ctx context.Context, id int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM borrow_requests WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *borrowRepository) Stats(ctx context.Context, now time.Time) (*domain.BorrowStats, error) {
	query := `SELECT
	            count(*),
	            count(*) FILTER (WHERE status = 'pending'),
	            count(*) FILTER (WHERE status = 'approved'),
	            count(*) FILTER (WHERE status = 'active'),
	            count(*) FILTER (WHERE status = 'returned'),
	            count(*) FILTER (WHERE status = 'rejected'),
	            count(*) FILTER (WHERE status = 'cancelled'),
	            count(*) FILTER (WHERE status IN ('approved', 'active') AND end_date < $1)
	          FROM borrow_requests`
	stats := &domain.BorrowStats{}
	err := r.db.QueryRowContext(ctx, query, now).Scan(&stats.Total, &stats.Pending, &stats.Approved,
		&stats.Active, &stats.Returned, &stats.Rejected, &stats.Cancelled, &stats.Overdue)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *borrowRepository) RecentActivity(ctx context.Context, limit int32) ([]domain.ActivityEntry, error) {
	query := `SELECT ` + borrowColumns + borrowJoins + ` ORDER BY br.updated_on DESC LIMIT $1`
	reqs, err := r.queryBorrows(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.ActivityEntry, 0, len(reqs))
	for _, b := range reqs {
		entries = append(entries, domain.ActivityEntry{
			ID:        b.ID,
			User:      b.User,
			Item:      b.Item,
			Action:    domain.ActivityAction(b.Status),
			CreatedOn: b.CreatedOn,
			UpdatedOn: b.UpdatedOn,
		})
	}
	return entries, nil
}
