package api

import (
	"fmt"
	"net/http"

	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/internal/jobs"
	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

type MentorsHandler struct {
	store    repository.Store
	advisor  *ai.Advisor
	notifier jobs.Notifier
}

func NewMentorsHandler(store repository.Store, advisor *ai.Advisor, notifier jobs.Notifier) *MentorsHandler {
	return &MentorsHandler{store: store, advisor: advisor, notifier: notifier}
}

type matchMentorsRequest struct {
	Tags   []string `json:"tags"`
	UserID int64    `json:"userId"`
}

type matchMentorsResponse struct {
	Mentors []models.MentorMatch `json:"mentors"`
	Source  ai.Source            `json:"source"`
}

type connectRequest struct {
	MentorID  int64                   `json:"mentorId"`
	MenteeID  int64                   `json:"menteeId"`
	ProjectID *int64                  `json:"projectId"`
	Status    models.MentorshipStatus `json:"status"`
}

func (h *MentorsHandler) List(w http.ResponseWriter, r *http.Request) {
	mentors, err := h.store.ListMentors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, mentors, http.StatusOK)
}

// Match ranks the mentor pool for the student's interest tags.
func (h *MentorsHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req matchMentorsRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	if req.Tags == nil {
		writeError(w, r, &repository.ValidationError{Field: "tags", Reason: "required"})
		return
	}

	pool, err := h.store.ListMentors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	matches, src := h.advisor.MentorMatches(r.Context(), repository.CleanList(req.Tags), pool)
	writeJSON(w, matchMentorsResponse{Mentors: matches, Source: src}, http.StatusOK)
}

func (h *MentorsHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	ctx := r.Context()
	m, err := h.store.CreateMentorship(ctx, &models.Mentorship{
		MentorID:  req.MentorID,
		MenteeID:  req.MenteeID,
		ProjectID: req.ProjectID,
		Status:    req.Status,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	recordActivity(ctx, h.store, models.Activity{
		UserID:     m.MenteeID,
		Action:     models.ActionRequestedMentorship,
		TargetType: models.TargetMentorship,
		TargetID:   m.ID,
		Metadata:   map[string]any{"mentorId": m.MentorID},
	})
	notify(ctx, h.notifier, jobs.Notification{
		UserID:     m.MentorID,
		Kind:       jobs.KindMentorshipRequest,
		Title:      "New mentorship request",
		Message:    fmt.Sprintf("User %d asked you to mentor them", m.MenteeID),
		TargetType: models.TargetMentorship,
		TargetID:   m.ID,
	})
	writeJSON(w, map[string]any{"success": true, "mentorship": m}, http.StatusCreated)
}
