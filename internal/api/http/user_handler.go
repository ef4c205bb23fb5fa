package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/service"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// parseID pulls the numeric {id} path variable out of the route.
func parseID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid id")
	}
	return int32(id), nil
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string      `json:"name"`
		Email      string      `json:"email"`
		Password   string      `json:"password"`
		Role       domain.Role `json:"role"`
		Department string      `json:"department"`
		Phone      string      `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userSvc.CreateUser(r.Context(), req.Name, req.Email, req.Password, req.Role, req.Department, req.Phone)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, user)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	user, err := h.userSvc.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	department := r.URL.Query().Get("department")

	users, err := h.userSvc.ListUsers(r.Context(), role, department)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, users)
}

func (h *UserHandler) ListUsersByDepartment(w http.ResponseWriter, r *http.Request) {
	department := mux.Vars(r)["department"]
	users, err := h.userSvc.ListUsers(r.Context(), "", department)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, users)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req struct {
		Name       *string            `json:"name"`
		Email      *string            `json:"email"`
		Role       *domain.Role       `json:"role"`
		Department *string            `json:"department"`
		Phone      *string            `json:"phone"`
		Status     *domain.UserStatus `json:"status"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.userSvc.UpdateUser(r.Context(), id, service.UserUpdate{
		Name:       req.Name,
		Email:      req.Email,
		Role:       req.Role,
		Department: req.Department,
		Phone:      req.Phone,
		Status:     req.Status,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		respondError(w, err)
		return
	}
	actor := CurrentUser(r)
	if err := h.userSvc.DeleteUser(r.Context(), actor.ID, id); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{})
}

func (h *UserHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userSvc.GetUserStats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, stats)
}
