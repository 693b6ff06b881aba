package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/garnizeh/campus/internal/jobs"
	"github.com/garnizeh/campus/internal/matching"
	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

type ProjectsHandler struct {
	store    repository.Store
	notifier jobs.Notifier
}

func NewProjectsHandler(store repository.Store, notifier jobs.Notifier) *ProjectsHandler {
	return &ProjectsHandler{store: store, notifier: notifier}
}

type projectRequest struct {
	Title        string               `json:"title"`
	Description  string               `json:"description"`
	AuthorID     int64                `json:"authorId"`
	Technologies []string             `json:"technologies"`
	Tags         []string             `json:"tags"`
	Difficulty   models.Difficulty    `json:"difficulty"`
	Duration     string               `json:"duration"`
	TeamSize     string               `json:"teamSize"`
	RepoLink     string               `json:"repoLink"`
	ImageURL     string               `json:"imageUrl"`
	Status       models.ProjectStatus `json:"status"`
}

type userRequest struct {
	UserID int64 `json:"userId"`
}

type matchSkillsRequest struct {
	Skills []string `json:"skills"`
	Limit  int      `json:"limit"`
}

// List handles GET /api/projects?featured=&limit=&userId=.
func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	featured := false
	if v := q.Get("featured"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeMessage(w, "invalid featured", http.StatusBadRequest)
			return
		}
		featured = b
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	viewer, ok := queryInt(w, r, "userId")
	if !ok {
		return
	}

	projects, err := h.store.ListProjectsWithAuthors(r.Context(), models.ProjectFilter{Featured: featured, Limit: int(limit), ViewerID: viewer})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, projects, http.StatusOK)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	viewer, ok := queryInt(w, r, "userId")
	if !ok {
		return
	}

	p, err := h.store.GetProjectWithAuthor(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if viewer > 0 {
		starred, err := h.store.HasStarred(r.Context(), id, viewer)
		if err != nil {
			writeError(w, r, err)
			return
		}
		p.IsStarred = starred
	}
	writeJSON(w, p, http.StatusOK)
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	p, err := h.store.CreateProject(r.Context(), &models.Project{
		Title:        req.Title,
		Description:  req.Description,
		AuthorID:     req.AuthorID,
		Technologies: req.Technologies,
		Tags:         req.Tags,
		Difficulty:   req.Difficulty,
		Duration:     req.Duration,
		TeamSize:     req.TeamSize,
		RepoLink:     req.RepoLink,
		ImageURL:     req.ImageURL,
		Status:       req.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordActivity(r.Context(), h.store, models.Activity{
		UserID:     p.AuthorID,
		Action:     models.ActionCreatedProject,
		TargetType: models.TargetProject,
		TargetID:   p.ID,
		Metadata:   map[string]any{"projectTitle": p.Title},
	})
	writeJSON(w, map[string]any{"success": true, "project": p}, http.StatusCreated)
}

// Update applies a partial update; absent fields keep their value.
func (h *ProjectsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var upd models.ProjectUpdate
	if !decodeJSON(w, r, &upd, false) {
		return
	}

	p, err := h.store.UpdateProject(r.Context(), id, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "project": p}, http.StatusOK)
}

// userFor reads the acting user from the body, falling back to the token.
func userFor(w http.ResponseWriter, r *http.Request) (int64, bool) {
	var req userRequest
	if !decodeJSON(w, r, &req, true) {
		return 0, false
	}
	if req.UserID <= 0 {
		if id, ok := UserIDFrom(r.Context()); ok {
			req.UserID = id
		}
	}
	if req.UserID <= 0 {
		writeError(w, r, &repository.ValidationError{Field: "userId", Reason: "required"})
		return 0, false
	}
	return req.UserID, true
}

func (h *ProjectsHandler) Star(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := userFor(w, r)
	if !ok {
		return
	}

	star, err := h.store.StarProject(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordActivity(r.Context(), h.store, models.Activity{
		UserID:     userID,
		Action:     models.ActionStarredProject,
		TargetType: models.TargetProject,
		TargetID:   id,
	})
	writeJSON(w, map[string]any{"success": true, "star": star}, http.StatusCreated)
}

func (h *ProjectsHandler) Unstar(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := userFor(w, r)
	if !ok {
		return
	}

	if err := h.store.UnstarProject(r.Context(), id, userID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"success": true}, http.StatusOK)
}

func (h *ProjectsHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := userFor(w, r)
	if !ok {
		return
	}

	ctx := r.Context()
	member, err := h.store.AddProjectMember(ctx, &models.ProjectMember{ProjectID: id, UserID: userID})
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordActivity(ctx, h.store, models.Activity{
		UserID:     userID,
		Action:     models.ActionJoinedProject,
		TargetType: models.TargetProject,
		TargetID:   id,
	})
	if p, err := h.store.GetProject(ctx, id); err == nil && p.AuthorID != userID {
		notify(ctx, h.notifier, jobs.Notification{
			UserID:     p.AuthorID,
			Kind:       jobs.KindProjectJoined,
			Title:      "New team member",
			Message:    fmt.Sprintf("User %d joined %q", userID, p.Title),
			TargetType: models.TargetProject,
			TargetID:   id,
		})
	}
	writeJSON(w, map[string]any{"success": true, "member": member}, http.StatusCreated)
}

func (h *ProjectsHandler) Leave(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	userID, ok := userFor(w, r)
	if !ok {
		return
	}

	if _, err := h.store.GetProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	removed, err := h.store.RemoveProjectMember(r.Context(), id, userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if removed {
		recordActivity(r.Context(), h.store, models.Activity{
			UserID:     userID,
			Action:     models.ActionLeftProject,
			TargetType: models.TargetProject,
			TargetID:   id,
		})
	}
	writeJSON(w, map[string]any{"success": true, "removed": removed}, http.StatusOK)
}

func (h *ProjectsHandler) Members(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	members, err := h.store.ListProjectMembers(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, members, http.StatusOK)
}

// MatchSkills ranks the non-archived projects against a skill list.
func (h *ProjectsHandler) MatchSkills(w http.ResponseWriter, r *http.Request) {
	var req matchSkillsRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.Skills = repository.CleanList(req.Skills)
	if len(req.Skills) == 0 {
		writeError(w, r, &repository.ValidationError{Field: "skills", Reason: "required"})
		return
	}

	pool, err := h.store.ListProjectsWithAuthors(r.Context(), models.ProjectFilter{})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"projects": matching.ProjectMatches(req.Skills, pool, req.Limit)}, http.StatusOK)
}
