package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"assetdesk-backend/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Password   string `json:"password"`
		Department string `json:"department"`
		Phone      string `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.authSvc.Register(r.Context(), req.Name, req.Email, req.Password, req.Department, req.Phone)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: user, Token: token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, token, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: user, Token: token})
}

// Logout clears the token cookie for clients that use cookie transport.
// Bearer clients simply drop the token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondData(w, http.StatusOK, map[string]any{})
}

func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := CurrentUser(r)
	fresh, err := h.authSvc.GetMe(r.Context(), user.ID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, fresh)
}

func (h *AuthHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Department string `json:"department"`
		Phone      string `json:"phone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user := CurrentUser(r)
	updated, err := h.authSvc.UpdateDetails(r.Context(), user.ID, req.Name, req.Email, req.Department, req.Phone)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, updated)
}

func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user := CurrentUser(r)
	token, err := h.authSvc.UpdatePassword(r.Context(), user.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Token: token})
}

func (h *AuthHandler) VerifyPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user := CurrentUser(r)
	if err := h.authSvc.VerifyPassword(r.Context(), user.ID, req.Password); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]bool{"verified": true})
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authSvc.ForgotPassword(r.Context(), req.Email); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, "email sent")
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.authSvc.ResetPassword(r.Context(), mux.Vars(r)["resettoken"], req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Token: token})
}
