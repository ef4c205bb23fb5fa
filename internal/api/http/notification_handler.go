package http

import (
	"net/http"

	"assetdesk-backend/internal/service"
)

type NotificationHandler struct {
	noteSvc service.NotificationService
}

func NewNotificationHandler(noteSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc}
}

func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	actor := CurrentUser(r)
	notes, err := h.noteSvc.ListNotifications(r.Context(), actor.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, notes)
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	actor := CurrentUser(r)
	if err := h.noteSvc.MarkAsRead(r.Context(), id, actor.ID); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{})
}

func (h *NotificationHandler) DeleteNotification(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	actor := CurrentUser(r)
	if err := h.noteSvc.DeleteNotification(r.Context(), id, actor.ID); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{})
}
