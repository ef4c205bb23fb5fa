package postgres

import (
	"context"
	"database/sql"
	"time"

	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

const itemColumns = `id, name, COALESCE(description, ''), category, COALESCE(serial_number, ''), status, condition,
	COALESCE(location, ''), purchase_date, COALESCE(purchase_price_cents, 0), quantity, available_quantity,
	COALESCE(image_key, ''), COALESCE(image_url, ''), COALESCE(notes, ''), created_by, created_on, updated_on`

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	it := &domain.Item{}
	var purchaseDate sql.NullTime
	err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Category, &it.SerialNumber,
		&it.Status, &it.Condition, &it.Location, &purchaseDate, &it.PurchasePriceCents,
		&it.Quantity, &it.AvailableQuantity, &it.ImageKey, &it.ImageURL, &it.Notes,
		&it.CreatedBy, &it.CreatedOn, &it.UpdatedOn)
	if err != nil {
		return nil, err
	}
	if purchaseDate.Valid {
		it.PurchaseDate = &purchaseDate.Time
	}
	return it, nil
}

func (r *itemRepository) Create(ctx context.Context, it *domain.Item) error {
	query := `INSERT INTO items (name, description, category, serial_number, status, condition, location,
	          purchase_date, purchase_price_cents, quantity, available_quantity, notes, created_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now()
	it.CreatedOn = now
	it.UpdatedOn = now
	logger.DatabaseCall("INSERT", "items", "name", it.Name, "category", it.Category)
	err := r.db.QueryRowContext(ctx, query, it.Name, nullIfEmpty(it.Description), it.Category,
		nullIfEmpty(it.SerialNumber), it.Status, it.Condition, nullIfEmpty(it.Location),
		it.PurchaseDate, it.PurchasePriceCents, it.Quantity, it.AvailableQuantity,
		nullIfEmpty(it.Notes), it.CreatedBy, it.CreatedOn, it.UpdatedOn).Scan(&it.ID)
	return mapUniqueViolation(err)
}

func (r *itemRepository) GetByID(ctx context.Context, id int32) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(r.db.QueryRowContext(ctx, query, id))
}

func (r *itemRepository) GetBySerialNumber(ctx context.Context, serial string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE serial_number = $1`
	return scanItem(r.db.QueryRowContext(ctx, query, serial))
}

func (r *itemRepository) List(ctx context.Context, category string) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items`
	args := []any{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_on DESC`
	return r.queryItems(ctx, query, args...)
}

func (r *itemRepository) ListAvailable(ctx context.Context) ([]domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items
	          WHERE available_quantity > 0 AND status NOT IN ('maintenance', 'retired')
	          ORDER BY created_on DESC`
	return r.queryItems(ctx, query)
}

func (r *itemRepository) queryItems(ctx context.Context, query string, args ...any) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func (r *itemRepository) Update(ctx context.Context, it *domain.Item) error {
	query := `UPDATE items SET name=$1, description=$2, category=$3, serial_number=$4, status=$5, condition=$6,
	          location=$7, purchase_date=$8, purchase_price_cents=$9, quantity=$10, available_quantity=$11,
	          notes=$12, updated_on=$13 WHERE id=$14`
	it.UpdatedOn = time.Now()
	logger.DatabaseCall("UPDATE", "items", "itemID", it.ID)
	result, err := r.db.ExecContext(ctx, query, it.Name, nullIfEmpty(it.Description), it.Category,
		nullIfEmpty(it.SerialNumber), it.Status, it.Condition, nullIfEmpty(it.Location),
		it.PurchaseDate, it.PurchasePriceCents, it.Quantity, it.AvailableQuantity,
		nullIfEmpty(it.Notes), it.UpdatedOn, it.ID)
	if err != nil {
		return mapUniqueViolation(err)
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

func (r *itemRepository) UpdateImage(ctx context.Context, id int32, imageKey, imageURL string) error {
	query := `UPDATE items SET image_key=$1, image_url=$2, updated_on=$3 WHERE id=$4`
	result, err := r.db.ExecContext(ctx, query, imageKey, imageURL, time.Now(), id)
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

func (r *itemRepository) Delete(ctx context.Context, id int32) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
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

// ReserveUnit takes one unit with a conditional decrement. The guard in the
// WHERE clause is what makes two concurrent approvals of the last unit
// impossible: whichever UPDATE runs second matches zero rows.
func (r *itemRepository) ReserveUnit(ctx context.Context, id int32) error {
	query := `UPDATE items
	          SET available_quantity = available_quantity - 1,
	              status = CASE WHEN available_quantity - 1 = 0 THEN 'borrowed' ELSE status END,
	              updated_on = $1
	          WHERE id = $2 AND available_quantity > 0 AND status NOT IN ('maintenance', 'retired')`
	logger.DatabaseCall("UPDATE", "items", "itemID", id, "op", "reserve_unit")
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", rows, err, "itemID", id, "op", "reserve_unit")
	if err != nil {
		return err
	}
	if rows == 0 {
		return repository.ErrNoUnitsAvailable
	}
	return nil
}

// ReleaseUnit gives one unit back, clamped to the physical quantity so a
// stray double release cannot inflate stock.
func (r *itemRepository) ReleaseUnit(ctx context.Context, id int32) error {
	query := `UPDATE items
	          SET available_quantity = LEAST(available_quantity + 1, quantity),
	              status = CASE WHEN status = 'borrowed' THEN 'available' ELSE status END,
	              updated_on = $1
	          WHERE id = $2`
	logger.DatabaseCall("UPDATE", "items", "itemID", id, "op", "release_unit")
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
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

func (r *itemRepository) Stats(ctx context.Context) (*domain.ItemStats, error) {
	stats := &domain.ItemStats{}

	query := `SELECT
	            count(*),
	            count(*) FILTER (WHERE category <> 'accessory' AND status = 'borrowed'),
	            COALESCE(SUM(quantity) FILTER (WHERE category = 'accessory'), 0),
	            COALESCE(SUM(quantity - available_quantity) FILTER (WHERE category = 'accessory'), 0)
	          FROM items`
	err := r.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Borrowed,
		&stats.TotalAccessories, &stats.BorrowedAccessories)
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM borrow_requests WHERE status = 'pending'`).Scan(&stats.Pending)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
