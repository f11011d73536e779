package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/knjiznica/internal/model"
	"github.com/erazemk/knjiznica/internal/store"
)

// MembersHandler handles member endpoints.
type MembersHandler struct {
	DB *sql.DB
}

type createMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1
}

// List handles GET /members.
func (h *MembersHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryPage(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	members, err := store.ListMembers(r.Context(), h.DB, r.URL.Query().Get("q"), page)
	if err != nil {
		storeError(w, r, err, "failed to list members")
		return
	}
	jsonResponse(w, http.StatusOK, nonNil(members))
}

// Create handles POST /members.
func (h *MembersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" {
		jsonError(w, http.StatusBadRequest, "name and email required")
		return
	}
	if !validEmail(req.Email) {
		jsonError(w, http.StatusBadRequest, "invalid email")
		return
	}

	member, err := store.CreateMember(r.Context(), h.DB, req.Name, req.Email, strings.TrimSpace(req.Phone))
	if err != nil {
		storeError(w, r, err, "failed to create member")
		return
	}

	slog.Info("member registered", "id", member.ID, "name", member.Name)
	jsonResponse(w, http.StatusCreated, member)
}

// Get handles GET /members/{id}.
func (h *MembersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	member, err := store.GetMember(r.Context(), h.DB, id)
	if err != nil {
		storeError(w, r, err, "failed to get member")
		return
	}
	if member == nil {
		jsonError(w, http.StatusNotFound, "member not found")
		return
	}
	jsonResponse(w, http.StatusOK, member)
}

// Update handles PUT /members/{id}.
func (h *MembersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	var patch model.MemberPatch
	if err := decodeJSON(r, &patch); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		jsonError(w, http.StatusBadRequest, "name may not be empty")
		return
	}
	if patch.Email != nil && !validEmail(*patch.Email) {
		jsonError(w, http.StatusBadRequest, "invalid email")
		return
	}

	member, err := store.UpdateMember(r.Context(), h.DB, id, patch)
	if err != nil {
		storeError(w, r, err, "failed to update member")
		return
	}
	jsonResponse(w, http.StatusOK, member)
}

// Delete handles DELETE /members/{id}.
func (h *MembersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid member id")
		return
	}

	if err := store.DeleteMember(r.Context(), h.DB, id); err != nil {
		storeError(w, r, err, "failed to delete member")
		return
	}

	slog.Info("member deleted", "id", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "member deleted"})
}
