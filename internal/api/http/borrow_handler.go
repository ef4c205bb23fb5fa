package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/service"
)

type BorrowHandler struct {
	borrowSvc service.BorrowService
}

func NewBorrowHandler(borrowSvc service.BorrowService) *BorrowHandler {
	return &BorrowHandler{borrowSvc: borrowSvc}
}

// parseDate accepts the wire date format used for borrow windows.
func parseDate(value, field string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, apperrors.Validation("invalid %s, expected YYYY-MM-DD", field)
	}
	return t, nil
}

func (h *BorrowHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ItemID    int32  `json:"item_id"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Purpose   string `json:"purpose"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		respondError(w, err)
		return
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		respondError(w, err)
		return
	}

	actor := CurrentUser(r)
	request, err := h.borrowSvc.CreateRequest(r.Context(), actor.ID, req.ItemID, start, end, req.Purpose)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, request)
}

func (h *BorrowHandler) GetRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	request, err := h.borrowSvc.GetRequest(r.Context(), CurrentUser(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, request)
}

func (h *BorrowHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.borrowSvc.ListRequests(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, requests)
}

func (h *BorrowHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	requests, err := h.borrowSvc.ListUserRequests(r.Context(), actor.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, requests)
}

func (h *BorrowHandler) ListMyActiveRequests(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	requests, err := h.borrowSvc.ListUserActiveRequests(r.Context(), actor.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, requests)
}

func (h *BorrowHandler) ListMyHistory(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	requests, err := h.borrowSvc.ListUserHistory(r.Context(), actor.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, requests)
}

// ListUserRequests serves another user's requests to elevated roles.
func (h *BorrowHandler) ListUserRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["userId"], 10, 32)
	if err != nil || userID <= 0 {
		respondError(w, apperrors.Validation("invalid user id"))
		return
	}
	requests, err := h.borrowSvc.ListUserRequests(r.Context(), int32(userID))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, requests)
}

func (h *BorrowHandler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Purpose   string `json:"purpose"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	start, err := parseDate(req.StartDate, "start_date")
	if err != nil {
		respondError(w, err)
		return
	}
	end, err := parseDate(req.EndDate, "end_date")
	if err != nil {
		respondError(w, err)
		return
	}

	request, err := h.borrowSvc.UpdateRequest(r.Context(), CurrentUser(r), id, start, end, req.Purpose)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, request)
}

func (h *BorrowHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	request, err := h.borrowSvc.ApproveRequest(r.Context(), CurrentUser(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, request)
}

func (h *BorrowHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	request, err := h.borrowSvc.RejectRequest(r.Context(), CurrentUser(r), id, req.Reason)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, request)
}

func (h *BorrowHandler) ReturnItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Condition domain.ReturnCondition `json:"condition"`
		Notes     string                 `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	request, err := h.borrowSvc.ReturnItem(r.Context(), CurrentUser(r), id, req.Condition, req.Notes)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, request)
}

func (h *BorrowHandler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	request, err := h.borrowSvc.CancelRequest(r.Context(), CurrentUser(r), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, request)
}

func (h *BorrowHandler) DeleteRequest(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.borrowSvc.DeleteRequest(r.Context(), CurrentUser(r), id); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{})
}

func (h *BorrowHandler) GetBorrowStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.borrowSvc.GetBorrowStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}

func (h *BorrowHandler) RecentActivity(w http.ResponseWriter, r *http.Request) {
	entries, err := h.borrowSvc.RecentActivity(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, entries)
}
