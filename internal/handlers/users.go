package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/linguacenter/apiserver/internal/authz"
	"github.com/linguacenter/apiserver/internal/services"
	"github.com/linguacenter/apiserver/internal/store"
	"github.com/linguacenter/apiserver/types"
)

// UserHandler provides HTTP handlers for account management.
type UserHandler struct {
	accounts *services.AccountService
}

func NewUserHandler(accounts *services.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// UserRouter registers user routes. Every route requires authentication.
func UserRouter(r chi.Router, accounts *services.AccountService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewUserHandler(accounts)

	r.Use(authMiddleware)
	r.Get("/", handler.List)
	r.Get("/me", handler.Me)
	r.Put("/update_profile", handler.UpdateProfile)
	r.Post("/change_password", handler.ChangePassword)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
		r.Put("/role", handler.SetRole)
		r.Post("/activate", handler.Activate)
		r.Post("/deactivate", handler.Deactivate)
		r.Post("/restore", handler.Restore)
	})
}

// UserResponse is the account serialization, with the computed full name and
// the role-specific profile flattened in.
type UserResponse struct {
	types.User
	FullName       string         `json:"full_name"`
	StudentProfile *types.Student `json:"student_profile,omitempty"`
	TeacherProfile *types.Teacher `json:"teacher_profile,omitempty"`
}

func newUserResponse(user types.User) UserResponse {
	resp := UserResponse{User: user, FullName: user.FullName()}
	if student := user.StudentProfile(); student != nil {
		trimmed := *student
		trimmed.User = nil
		resp.StudentProfile = &trimmed
	}
	if teacher := user.TeacherProfile(); teacher != nil {
		trimmed := *teacher
		trimmed.User = nil
		resp.TeacherProfile = &trimmed
	}
	return resp
}

func (h *UserHandler) actor(r *http.Request) (types.User, bool) {
	id, err := userIDFromContext(r.Context())
	if err != nil {
		return types.User{}, false
	}
	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		return types.User{}, false
	}
	return user, true
}

// List returns every account for admins, honoring the role/is_active/q
// filters; everyone else sees only themselves.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if !authz.IsRole(&actor, types.RoleAdmin) {
		writeJSON(w, http.StatusOK, []UserResponse{newUserResponse(actor)})
		return
	}

	filter := store.UserFilter{Search: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("role"); raw != "" {
		role := types.Role(raw)
		if !role.Valid() {
			writeError(w, http.StatusBadRequest, "invalid role filter")
			return
		}
		filter.Role = &role
	}
	if raw := r.URL.Query().Get("is_active"); raw != "" {
		active := raw == "true"
		filter.Active = &active
	}
	filter.IncludeDeleted = r.URL.Query().Get("include_deleted") == "true"

	users, err := h.accounts.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, newUserResponse(user))
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me returns the current authenticated account with its profile.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(actor))
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if !authz.IsOwnerOrAdmin(&actor, &user) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

type userUpdateRequest struct {
	FirstName   *string    `json:"first_name"`
	LastName    *string    `json:"last_name"`
	PhoneNumber *string    `json:"phone_number"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Address     *string    `json:"address"`
	AvatarURL   *string    `json:"avatar_url"`
}

func (req userUpdateRequest) toUpdate() types.UserUpdate {
	return types.UserUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		DateOfBirth: req.DateOfBirth,
		Address:     req.Address,
		AvatarURL:   req.AvatarURL,
	}
}

// Update applies a partial update to the addressed account. Owners and
// admins only.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !authz.IsOwnerOrAdmin(&actor, &user) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), user, req.toUpdate())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated))
}

// UpdateProfile applies a partial update to the current account.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req userUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), actor, req.toUpdate())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated))
}

type changePasswordRequest struct {
	OldPassword        string `json:"old_password" validate:"required"`
	NewPassword        string `json:"new_password" validate:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" validate:"required,eqfield=NewPassword"`
}

// ChangePassword verifies the old password and replaces it.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := validateStruct(req); err != nil {
		writeDomainError(w, err)
		return
	}

	if _, err := h.accounts.ChangePassword(r.Context(), actor, req.OldPassword, req.NewPassword); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password changed successfully"})
}

type setRoleRequest struct {
	Role types.Role `json:"role" validate:"required,oneof=student teacher admin receptionist"`
}

// SetRole changes an account's role. Admins only.
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !authz.IsRole(&actor, types.RoleAdmin) {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Role = types.Role(strings.TrimSpace(string(req.Role)))
	if err := validateStruct(req); err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := h.accounts.SetRole(r.Context(), id, req.Role)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// Activate enables an account. Admins only.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate disables an account. Admins only.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *UserHandler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !authz.IsRole(&actor, types.RoleAdmin) {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var user types.User
	if active {
		user, err = h.accounts.Activate(r.Context(), id)
	} else {
		user, err = h.accounts.Deactivate(r.Context(), id)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}

// Delete soft-deletes an account. Owners and admins only. With
// permanent=true the row is removed for good, which only admins may do.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.URL.Query().Get("permanent") == "true" {
		if !authz.IsRole(&actor, types.RoleAdmin) {
			writeError(w, http.StatusForbidden, "admin access required")
			return
		}
		if err := h.accounts.Delete(r.Context(), id); err != nil {
			writeDomainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !authz.IsOwnerOrAdmin(&actor, &user) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.accounts.SoftDelete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore clears an account's soft-delete marker. Admins only.
func (h *UserHandler) Restore(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !authz.IsRole(&actor, types.RoleAdmin) {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.accounts.Restore(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	user, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user))
}
