package postgres

import (
	"database/sql"

	"github.com/lib/pq"

	"assetdesk-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ItemRepository
	repository.BorrowRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		UserRepository:         NewUserRepository(db),
		ItemRepository:         NewItemRepository(db),
		BorrowRepository:       NewBorrowRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}

// mapUniqueViolation converts a postgres unique-constraint error into the
// repository sentinel so callers do not depend on driver internals.
func mapUniqueViolation(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}
