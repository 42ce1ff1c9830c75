package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/linguacenter/apiserver/internal/authz"
	"github.com/linguacenter/apiserver/internal/services"
	"github.com/linguacenter/apiserver/internal/store"
	"github.com/linguacenter/apiserver/types"
)

// TeacherHandler provides HTTP handlers for teacher profiles.
type TeacherHandler struct {
	teachers *services.TeacherService
	accounts *services.AccountService
}

func NewTeacherHandler(teachers *services.TeacherService, accounts *services.AccountService) *TeacherHandler {
	return &TeacherHandler{teachers: teachers, accounts: accounts}
}

// TeacherRouter registers teacher routes. Every route requires
// authentication.
func TeacherRouter(r chi.Router, teachers *services.TeacherService, accounts *services.AccountService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewTeacherHandler(teachers, accounts)

	r.Use(authMiddleware)
	r.Get("/", handler.List)
	r.Get("/my_profile", handler.MyProfile)
	r.Get("/code/{teacherCode}", handler.GetByCode)
	r.Route("/{teacherID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
		r.Post("/restore", handler.Restore)
	})
}

func (h *TeacherHandler) actor(r *http.Request) (types.User, bool) {
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

// canRead mirrors the listing visibility: admins, receptionists, and
// students see every teacher, a teacher sees only their own profile.
func (h *TeacherHandler) canRead(actor *types.User, teacher *types.Teacher) bool {
	if authz.IsAnyRole(actor, types.RoleAdmin, types.RoleReceptionist, types.RoleStudent) {
		return true
	}
	return actor != nil && teacher.OwnerID() == actor.ID
}

// List returns teacher profiles visible to the actor.
func (h *TeacherHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := store.ProfileFilter{}
	switch {
	case authz.IsAnyRole(&actor, types.RoleAdmin, types.RoleReceptionist, types.RoleStudent):
		if authz.IsRole(&actor, types.RoleAdmin) {
			filter.IncludeDeleted = r.URL.Query().Get("include_deleted") == "true"
		}
	case authz.IsRole(&actor, types.RoleTeacher):
		filter.UserID = &actor.ID
	default:
		writeJSON(w, http.StatusOK, []types.Teacher{})
		return
	}

	teachers, err := h.teachers.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teachers)
}

// MyProfile returns the current teacher's own profile.
func (h *TeacherHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !authz.IsRole(&actor, types.RoleTeacher) {
		writeError(w, http.StatusForbidden, "only teachers can access this endpoint")
		return
	}

	teacher, err := h.teachers.GetByUserID(r.Context(), actor.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}

func (h *TeacherHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "teacherID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	teacher, err := h.teachers.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.canRead(&actor, &teacher) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}

// GetByCode resolves a teacher by their teacher code.
func (h *TeacherHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	teacher, err := h.teachers.GetByCode(r.Context(), chi.URLParam(r, "teacherCode"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.canRead(&actor, &teacher) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}

// Update applies a partial update to the profile. Owners and admins only.
// Any owner or account field in the payload is ignored.
func (h *TeacherHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "teacherID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	teacher, err := h.teachers.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !authz.IsOwnerOrAdmin(&actor, &teacher) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req types.TeacherUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.ExperienceYears != nil && *req.ExperienceYears < 0 {
		writeError(w, http.StatusBadRequest, "experience_years must not be negative")
		return
	}

	updated, err := h.teachers.Update(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete soft-deletes the profile. Owners and admins only.
func (h *TeacherHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "teacherID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	teacher, err := h.teachers.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !authz.IsOwnerOrAdmin(&actor, &teacher) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.teachers.SoftDelete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore clears the profile's soft-delete marker. Admins only.
func (h *TeacherHandler) Restore(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !authz.IsRole(&actor, types.RoleAdmin) {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "teacherID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.teachers.Restore(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	teacher, err := h.teachers.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teacher)
}
