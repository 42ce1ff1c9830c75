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

// StudentHandler provides HTTP handlers for student profiles.
type StudentHandler struct {
	students *services.StudentService
	accounts *services.AccountService
}

func NewStudentHandler(students *services.StudentService, accounts *services.AccountService) *StudentHandler {
	return &StudentHandler{students: students, accounts: accounts}
}

// StudentRouter registers student routes. Every route requires
// authentication.
func StudentRouter(r chi.Router, students *services.StudentService, accounts *services.AccountService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewStudentHandler(students, accounts)

	r.Use(authMiddleware)
	r.Get("/", handler.List)
	r.Get("/my_profile", handler.MyProfile)
	r.Get("/code/{studentCode}", handler.GetByCode)
	r.Route("/{studentID}", func(r chi.Router) {
		r.Get("/", handler.Get)
		r.Put("/", handler.Update)
		r.Delete("/", handler.Delete)
		r.Post("/restore", handler.Restore)
	})
}

func (h *StudentHandler) actor(r *http.Request) (types.User, bool) {
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

// canRead mirrors the listing visibility: staff roles see every student,
// a student sees only their own profile.
func (h *StudentHandler) canRead(actor *types.User, student *types.Student) bool {
	if authz.IsAnyRole(actor, types.RoleAdmin, types.RoleTeacher, types.RoleReceptionist) {
		return true
	}
	return authz.IsStudentOwner(actor, student)
}

// List returns student profiles visible to the actor.
func (h *StudentHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filter := store.ProfileFilter{}
	switch {
	case authz.IsAnyRole(&actor, types.RoleAdmin, types.RoleTeacher, types.RoleReceptionist):
		if authz.IsRole(&actor, types.RoleAdmin) {
			filter.IncludeDeleted = r.URL.Query().Get("include_deleted") == "true"
		}
	case authz.IsRole(&actor, types.RoleStudent):
		filter.UserID = &actor.ID
	default:
		writeJSON(w, http.StatusOK, []types.Student{})
		return
	}

	students, err := h.students.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

// MyProfile returns the current student's own profile.
func (h *StudentHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !authz.IsRole(&actor, types.RoleStudent) {
		writeError(w, http.StatusForbidden, "only students can access this endpoint")
		return
	}

	student, err := h.students.GetByUserID(r.Context(), actor.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.canRead(&actor, &student) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// GetByCode resolves a student by their student code.
func (h *StudentHandler) GetByCode(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	student, err := h.students.GetByCode(r.Context(), chi.URLParam(r, "studentCode"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !h.canRead(&actor, &student) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, student)
}

// Update applies a partial update to the profile. Owners and admins only.
// Any owner or account field in the payload is ignored.
func (h *StudentHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !authz.IsOwnerOrAdmin(&actor, &student) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	var req types.StudentUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if req.AttendanceRate != nil && (*req.AttendanceRate < 0 || *req.AttendanceRate > 100) {
		writeError(w, http.StatusBadRequest, "attendance_rate must be between 0 and 100")
		return
	}

	updated, err := h.students.Update(r.Context(), id, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete soft-deletes the profile. Owners and admins only.
func (h *StudentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if !authz.IsOwnerOrAdmin(&actor, &student) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := h.students.SoftDelete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Restore clears the profile's soft-delete marker. Admins only.
func (h *StudentHandler) Restore(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if !authz.IsRole(&actor, types.RoleAdmin) {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}
	id, err := parseIDParam(chi.URLParam(r, "studentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.students.Restore(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	student, err := h.students.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}
