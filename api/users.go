package api

import (
	"net/http"

	"github.com/garnizeh/campus/pkg/repository"
)

type UsersHandler struct {
	store repository.Store
}

func NewUsersHandler(store repository.Store) *UsersHandler {
	return &UsersHandler{store: store}
}

// Me returns the authenticated user with collaboration counts.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := UserIDFrom(r.Context())
	if !ok {
		writeMessage(w, "token has no user", http.StatusUnauthorized)
		return
	}
	u, err := h.store.GetUserWithStats(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	u, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, u, http.StatusOK)
}

func (h *UsersHandler) Mentorships(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	ms, err := h.store.ListMentorships(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, ms, http.StatusOK)
}
