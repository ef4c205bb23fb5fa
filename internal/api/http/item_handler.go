package http

import (
	"io"
	"net/http"
	"time"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/service"
)

type ItemHandler struct {
	itemSvc        service.ItemService
	maxUploadBytes int64
}

func NewItemHandler(itemSvc service.ItemService, maxUploadBytes int64) *ItemHandler {
	return &ItemHandler{itemSvc: itemSvc, maxUploadBytes: maxUploadBytes}
}

type itemRequest struct {
	Name               string               `json:"name"`
	Description        string               `json:"description"`
	Category           domain.ItemCategory  `json:"category"`
	SerialNumber       string               `json:"serial_number"`
	Status             domain.ItemStatus    `json:"status"`
	Condition          domain.ItemCondition `json:"condition"`
	Location           string               `json:"location"`
	PurchaseDate       *time.Time           `json:"purchase_date"`
	PurchasePriceCents int32                `json:"purchase_price_cents"`
	Quantity           int32                `json:"quantity"`
	Notes              string               `json:"notes"`
}

func (req *itemRequest) toDomain() *domain.Item {
	return &domain.Item{
		Name:               req.Name,
		Description:        req.Description,
		Category:           req.Category,
		SerialNumber:       req.SerialNumber,
		Status:             req.Status,
		Condition:          req.Condition,
		Location:           req.Location,
		PurchaseDate:       req.PurchaseDate,
		PurchasePriceCents: req.PurchasePriceCents,
		Quantity:           req.Quantity,
		Notes:              req.Notes,
	}
}

func (h *ItemHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	actor := CurrentUser(r)
	item, err := h.itemSvc.CreateItem(r.Context(), actor.ID, req.toDomain())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, item)
}

func (h *ItemHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	item, err := h.itemSvc.GetItem(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, item)
}

func (h *ItemHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemSvc.ListItems(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, items)
}

func (h *ItemHandler) ListAvailableItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.itemSvc.ListAvailableItems(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, items)
}

func (h *ItemHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req itemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item, err := h.itemSvc.UpdateItem(r.Context(), id, req.toDomain())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, item)
}

func (h *ItemHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.itemSvc.DeleteItem(r.Context(), id); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{})
}

func (h *ItemHandler) GetItemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.itemSvc.GetItemStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}

// UploadPhoto accepts a multipart form with a "photo" field.
func (h *ItemHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		respondError(w, apperrors.Validation("photo exceeds the maximum upload size"))
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		respondError(w, apperrors.Validation("photo file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, apperrors.Validation("failed to read photo upload"))
		return
	}

	item, err := h.itemSvc.UploadPhoto(r.Context(), id, header.Filename, data)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, item)
}

// GetPhoto redirects to the item's photo, or to the category default when
// none has been uploaded.
func (h *ItemHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	item, err := h.itemSvc.GetItem(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	http.Redirect(w, r, h.itemSvc.PhotoURL(item), http.StatusFound)
}
