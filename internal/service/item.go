package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
	"assetdesk-backend/internal/storage"
)

// defaultPhotoPaths maps each category to the stock photo served when an
// item has no uploaded image.
var defaultPhotoPaths = map[domain.ItemCategory]string{
	domain.ItemCategoryLaptop:    "/static/defaults/laptop.png",
	domain.ItemCategoryPhone:     "/static/defaults/phone.png",
	domain.ItemCategoryTablet:    "/static/defaults/tablet.png",
	domain.ItemCategoryMonitor:   "/static/defaults/monitor.png",
	domain.ItemCategoryAccessory: "/static/defaults/accessory.png",
	domain.ItemCategoryOther:     "/static/defaults/device.png",
}

var allowedPhotoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type itemService struct {
	itemRepo   repository.ItemRepository
	borrowRepo repository.BorrowRepository
	store      storage.StorageInterface
}

func NewItemService(itemRepo repository.ItemRepository, borrowRepo repository.BorrowRepository, store storage.StorageInterface) ItemService {
	return &itemService{
		itemRepo:   itemRepo,
		borrowRepo: borrowRepo,
		store:      store,
	}
}

func validateItem(item *domain.Item) error {
	if item.Name == "" {
		return apperrors.Validation("item name is required")
	}
	if !item.Category.Valid() {
		return apperrors.Validation("unknown category: %s", item.Category)
	}
	if item.Status != "" && !item.Status.Valid() {
		return apperrors.Validation("unknown status: %s", item.Status)
	}
	if item.Condition != "" && !item.Condition.Valid() {
		return apperrors.Validation("unknown condition: %s", item.Condition)
	}
	if item.Quantity < 0 || item.AvailableQuantity < 0 {
		return apperrors.Validation("quantities cannot be negative")
	}
	if item.AvailableQuantity > item.Quantity {
		return apperrors.Validation("available quantity cannot exceed quantity")
	}
	return nil
}

func (s *itemService) CreateItem(ctx context.Context, actorID int32, item *domain.Item) (*domain.Item, error) {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.AvailableQuantity == 0 {
		item.AvailableQuantity = item.Quantity
	}
	if item.Status == "" {
		item.Status = domain.ItemStatusAvailable
	}
	if item.Condition == "" {
		item.Condition = domain.ItemConditionGood
	}
	if item.SerialNumber == "" {
		item.SerialNumber = domain.SerialNumberNone
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	// Uniqueness only applies to real serial numbers, so the sentinel is
	// checked in code rather than by the partial index alone.
	if item.SerialNumber != domain.SerialNumberNone {
		if existing, err := s.itemRepo.GetBySerialNumber(ctx, item.SerialNumber); err == nil && existing != nil {
			return nil, apperrors.Validation("an item with this serial number already exists")
		} else if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	item.CreatedBy = actorID
	if err := s.itemRepo.Create(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("an item with this serial number already exists")
		}
		return nil, err
	}
	logger.Info("Item created", "itemID", item.ID, "name", item.Name, "actorID", actorID)
	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id int32) (*domain.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("item not found")
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) ListItems(ctx context.Context, category string) ([]domain.Item, error) {
	if category != "" && !domain.ItemCategory(category).Valid() {
		return nil, apperrors.Validation("unknown category: %s", category)
	}
	return s.itemRepo.List(ctx, category)
}

func (s *itemService) ListAvailableItems(ctx context.Context) ([]domain.Item, error) {
	return s.itemRepo.ListAvailable(ctx)
}

func (s *itemService) UpdateItem(ctx context.Context, id int32, update *domain.Item) (*domain.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	borrowed := item.Quantity - item.AvailableQuantity

	item.Name = update.Name
	item.Description = update.Description
	item.Category = update.Category
	item.SerialNumber = update.SerialNumber
	item.Condition = update.Condition
	item.Location = update.Location
	item.PurchaseDate = update.PurchaseDate
	item.PurchasePriceCents = update.PurchasePriceCents
	item.Notes = update.Notes
	if update.Status != "" {
		item.Status = update.Status
	}
	if update.Quantity > 0 {
		// Shrinking the fleet below what is currently out is not allowed.
		if update.Quantity < borrowed {
			return nil, apperrors.InvalidState("%d units are currently out; quantity cannot go below that", borrowed)
		}
		item.Quantity = update.Quantity
		item.AvailableQuantity = update.Quantity - borrowed
	}
	if item.SerialNumber == "" {
		item.SerialNumber = domain.SerialNumberNone
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	if err := s.itemRepo.Update(ctx, item); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("an item with this serial number already exists")
		}
		return nil, err
	}
	return item, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id int32) error {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return err
	}

	active, err := s.borrowRepo.CountActiveByItem(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperrors.InvalidState("item has active borrow requests and cannot be deleted")
	}

	if err := s.itemRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("item not found")
		}
		return err
	}

	if item.ImageKey != "" {
		if err := s.store.DeleteFile(ctx, item.ImageKey); err != nil {
			logger.Warn("Failed to delete item photo", "itemID", id, "key", item.ImageKey, "error", err)
		}
	}
	logger.Info("Item deleted", "itemID", id)
	return nil
}

func (s *itemService) GetItemStats(ctx context.Context) (*domain.ItemStats, error) {
	return s.itemRepo.Stats(ctx)
}

func (s *itemService) UploadPhoto(ctx context.Context, id int32, filename string, data []byte) (*domain.Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedPhotoExtensions[ext] {
		return nil, apperrors.Validation("unsupported image type: %s", ext)
	}

	key := fmt.Sprintf("items/%d/%s%s", id, uuid.NewString(), ext)
	if err := s.store.SaveFile(ctx, key, bytes.NewReader(data)); err != nil {
		return nil, apperrors.Dependency("failed to store photo")
	}

	oldKey := item.ImageKey
	item.ImageKey = key
	item.ImageURL = s.store.FileURL(key)
	if err := s.itemRepo.UpdateImage(ctx, id, item.ImageKey, item.ImageURL); err != nil {
		return nil, err
	}

	if oldKey != "" && oldKey != key {
		if err := s.store.DeleteFile(ctx, oldKey); err != nil {
			logger.Warn("Failed to delete replaced photo", "itemID", id, "key", oldKey, "error", err)
		}
	}
	return item, nil
}

func (s *itemService) PhotoURL(item *domain.Item) string {
	if item.ImageURL != "" {
		return item.ImageURL
	}
	if path, ok := defaultPhotoPaths[item.Category]; ok {
		return path
	}
	return defaultPhotoPaths[domain.ItemCategoryOther]
}
