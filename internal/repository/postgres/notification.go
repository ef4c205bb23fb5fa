package postgres

import (
	"context"
	"database/sql"
	"time"

	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, recipient_id, title, message, type, related_kind, related_id, actor_id, read, created_on`

func scanNotification(row interface{ Scan(...any) error }) (*domain.Notification, error) {
	n := &domain.Notification{}
	var (
		relatedKind sql.NullString
		relatedID   sql.NullInt32
		actorID     sql.NullInt32
	)
	err := row.Scan(&n.ID, &n.RecipientID, &n.Title, &n.Message, &n.Type,
		&relatedKind, &relatedID, &actorID, &n.Read, &n.CreatedOn)
	if err != nil {
		return nil, err
	}
	if relatedKind.Valid && relatedID.Valid {
		n.RelatedTo = &domain.RelatedRef{Kind: domain.RelatedKind(relatedKind.String), ID: relatedID.Int32}
	}
	if actorID.Valid {
		n.ActorID = &actorID.Int32
	}
	return n, nil
}

func relatedFields(ref *domain.RelatedRef) (any, any) {
	if ref == nil {
		return nil, nil
	}
	return string(ref.Kind), ref.ID
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	query := `INSERT INTO notifications (recipient_id, title, message, type, related_kind, related_id, actor_id, read, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	note.CreatedOn = time.Now()
	kind, id := relatedFields(note.RelatedTo)
	logger.DatabaseCall("INSERT", "notifications", "recipientID", note.RecipientID, "type", note.Type)
	return r.db.QueryRowContext(ctx, query, note.RecipientID, note.Title, note.Message, note.Type,
		kind, id, note.ActorID, note.Read, note.CreatedOn).Scan(&note.ID)
}

// CreateBatch inserts the fan-out in one transaction so a partial admin
// broadcast never sticks.
func (r *notificationRepository) CreateBatch(ctx context.Context, notes []domain.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO notifications (recipient_id, title, message, type, related_kind, related_id, actor_id, read, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	now := time.Now()
	for i := range notes {
		notes[i].CreatedOn = now
		kind, id := relatedFields(notes[i].RelatedTo)
		if _, err := tx.ExecContext(ctx, query, notes[i].RecipientID, notes[i].Title, notes[i].Message,
			notes[i].Type, kind, id, notes[i].ActorID, notes[i].Read, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *notificationRepository) ListByRecipient(ctx context.Context, recipientID int32) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE recipient_id = $1 ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, recipientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, *n)
	}
	return notes, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id, recipientID int32) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`, id, recipientID)
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

func (r *notificationRepository) Delete(ctx context.Context, id, recipientID int32) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, id, recipientID)
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

func (r *notificationRepository) PurgeRead(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE read = TRUE AND created_on < $1`, olderThan)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
