package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Item         *ItemHandler
	Borrow       *BorrowHandler
	Notification *NotificationHandler
	Photo        *PhotoHandler
}

// NewRouter wires all routes behind the auth middleware.
func NewRouter(h *Handlers, m *Middleware) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestLogging)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondData(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Public photo serving, including the category default images.
	r.HandleFunc("/api/items/photos/{key:.+}", h.Photo.ServePhoto).Methods(http.MethodGet)

	// Auth
	auth := r.PathPrefix("/api/auth").Subrouter()
	auth.HandleFunc("/register", h.Auth.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", h.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/forgotpassword", h.Auth.ForgotPassword).Methods(http.MethodPost)
	auth.HandleFunc("/resetpassword/{resettoken}", h.Auth.ResetPassword).Methods(http.MethodPut)

	authProtected := r.PathPrefix("/api/auth").Subrouter()
	authProtected.Use(m.Protect)
	authProtected.HandleFunc("/logout", h.Auth.Logout).Methods(http.MethodGet)
	authProtected.HandleFunc("/me", h.Auth.GetMe).Methods(http.MethodGet)
	authProtected.HandleFunc("/updatedetails", h.Auth.UpdateDetails).Methods(http.MethodPut)
	authProtected.HandleFunc("/updatepassword", h.Auth.UpdatePassword).Methods(http.MethodPut)
	authProtected.HandleFunc("/verifypassword", h.Auth.VerifyPassword).Methods(http.MethodPost)

	// Admins and managers can look users up and edit them; creating and
	// deleting accounts stays with admins.
	users := r.PathPrefix("/api/users").Subrouter()
	users.Use(m.Protect, m.Authorize(domain.RoleAdmin, domain.RoleManager))
	users.HandleFunc("", h.User.ListUsers).Methods(http.MethodGet)
	users.HandleFunc("/stats", h.User.GetUserStats).Methods(http.MethodGet)
	users.HandleFunc("/department/{department}", h.User.ListUsersByDepartment).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", h.User.GetUser).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}", h.User.UpdateUser).Methods(http.MethodPut)

	usersAdmin := r.PathPrefix("/api/users").Subrouter()
	usersAdmin.Use(m.Protect, m.Authorize(domain.RoleAdmin))
	usersAdmin.HandleFunc("", h.User.CreateUser).Methods(http.MethodPost)
	usersAdmin.HandleFunc("/{id:[0-9]+}", h.User.DeleteUser).Methods(http.MethodDelete)

	// Items: reading needs a login, writing needs the manage permission.
	items := r.PathPrefix("/api/items").Subrouter()
	items.Use(m.Protect)
	items.HandleFunc("", h.Item.ListItems).Methods(http.MethodGet)
	items.HandleFunc("/available", h.Item.ListAvailableItems).Methods(http.MethodGet)
	// The numeric constraint keeps /stats from being swallowed by the id route.
	items.HandleFunc("/{id:[0-9]+}", h.Item.GetItem).Methods(http.MethodGet)
	items.HandleFunc("/{id:[0-9]+}/photo", h.Item.GetPhoto).Methods(http.MethodGet)

	manageItems := r.PathPrefix("/api/items").Subrouter()
	manageItems.Use(m.Protect, m.RequirePermission(domain.PermissionManageItems))
	manageItems.HandleFunc("", h.Item.CreateItem).Methods(http.MethodPost)
	manageItems.HandleFunc("/stats", h.Item.GetItemStats).Methods(http.MethodGet)
	manageItems.HandleFunc("/{id:[0-9]+}", h.Item.UpdateItem).Methods(http.MethodPut)
	manageItems.HandleFunc("/{id:[0-9]+}/photo", h.Item.UploadPhoto).Methods(http.MethodPut)

	itemsAdmin := r.PathPrefix("/api/items").Subrouter()
	itemsAdmin.Use(m.Protect, m.Authorize(domain.RoleAdmin))
	itemsAdmin.HandleFunc("/{id:[0-9]+}", h.Item.DeleteItem).Methods(http.MethodDelete)

	// Borrow lifecycle
	borrow := r.PathPrefix("/api/borrow").Subrouter()
	borrow.Use(m.Protect)
	borrow.HandleFunc("", h.Borrow.CreateRequest).Methods(http.MethodPost)
	borrow.HandleFunc("/my-requests", h.Borrow.ListMyRequests).Methods(http.MethodGet)
	borrow.HandleFunc("/me/active", h.Borrow.ListMyActiveRequests).Methods(http.MethodGet)
	borrow.HandleFunc("/me/history", h.Borrow.ListMyHistory).Methods(http.MethodGet)
	borrow.HandleFunc("/{id:[0-9]+}", h.Borrow.GetRequest).Methods(http.MethodGet)
	borrow.HandleFunc("/{id:[0-9]+}", h.Borrow.UpdateRequest).Methods(http.MethodPut)
	borrow.HandleFunc("/{id:[0-9]+}", h.Borrow.DeleteRequest).Methods(http.MethodDelete)
	borrow.HandleFunc("/{id:[0-9]+}/return", h.Borrow.ReturnItem).Methods(http.MethodPut)
	borrow.HandleFunc("/{id:[0-9]+}/cancel", h.Borrow.CancelRequest).Methods(http.MethodPut)

	borrowElevated := r.PathPrefix("/api/borrow").Subrouter()
	borrowElevated.Use(m.Protect, m.Authorize(domain.RoleAdmin, domain.RoleManager))
	borrowElevated.HandleFunc("", h.Borrow.ListRequests).Methods(http.MethodGet)
	borrowElevated.HandleFunc("/stats", h.Borrow.GetBorrowStats).Methods(http.MethodGet)
	borrowElevated.HandleFunc("/recent-activity", h.Borrow.RecentActivity).Methods(http.MethodGet)
	borrowElevated.HandleFunc("/user/{userId:[0-9]+}", h.Borrow.ListUserRequests).Methods(http.MethodGet)
	borrowElevated.HandleFunc("/{id:[0-9]+}/approve", h.Borrow.ApproveRequest).Methods(http.MethodPut)
	borrowElevated.HandleFunc("/{id:[0-9]+}/reject", h.Borrow.RejectRequest).Methods(http.MethodPut)

	// Notifications
	notes := r.PathPrefix("/api/notifications").Subrouter()
	notes.Use(m.Protect)
	notes.HandleFunc("", h.Notification.ListNotifications).Methods(http.MethodGet)
	notes.HandleFunc("/{id}/read", h.Notification.MarkAsRead).Methods(http.MethodPut)
	notes.HandleFunc("/{id}", h.Notification.DeleteNotification).Methods(http.MethodDelete)

	return r
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("Request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
