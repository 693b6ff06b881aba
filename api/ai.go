package api

import (
	"net/http"

	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

type AIHandler struct {
	store   repository.Store
	advisor *ai.Advisor
}

func NewAIHandler(store repository.Store, advisor *ai.Advisor) *AIHandler {
	return &AIHandler{store: store, advisor: advisor}
}

type generateIdeasRequest struct {
	Tags       []string          `json:"tags"`
	Difficulty models.Difficulty `json:"difficulty"`
	UserID     int64             `json:"userId"`
}

type generateIdeasResponse struct {
	Ideas  []models.ProjectIdea `json:"ideas"`
	Source ai.Source            `json:"source"`
}

// GenerateIdeas answers with model ideas, or the templated ones when the
// model is unavailable. With a userId the batch is saved to the history.
func (h *AIHandler) GenerateIdeas(w http.ResponseWriter, r *http.Request) {
	var req generateIdeasRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	req.Tags = repository.CleanList(req.Tags)
	if len(req.Tags) == 0 {
		writeError(w, r, &repository.ValidationError{Field: "tags", Reason: "required"})
		return
	}
	if !req.Difficulty.Valid() {
		writeError(w, r, &repository.ValidationError{Field: "difficulty", Reason: "must be beginner, intermediate or advanced"})
		return
	}

	ctx := r.Context()
	if req.UserID > 0 {
		if _, err := h.store.GetUser(ctx, req.UserID); err != nil {
			writeError(w, r, err)
			return
		}
	}

	ideas, src := h.advisor.ProjectIdeas(ctx, req.Tags, req.Difficulty)

	if req.UserID > 0 {
		if _, err := h.store.CreateAiIdea(ctx, &models.AiIdea{
			UserID:     req.UserID,
			Tags:       req.Tags,
			Difficulty: req.Difficulty,
			Ideas:      ideas,
		}); err != nil {
			writeError(w, r, err)
			return
		}
	}
	writeJSON(w, generateIdeasResponse{Ideas: ideas, Source: src}, http.StatusOK)
}

// ListIdeas returns a user's saved idea batches.
func (h *AIHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	userID, ok := queryInt(w, r, "userId")
	if !ok {
		return
	}
	if userID == 0 {
		if id, ok := UserIDFrom(r.Context()); ok {
			userID = id
		}
	}
	if userID == 0 {
		writeError(w, r, &repository.ValidationError{Field: "userId", Reason: "required"})
		return
	}

	ideas, err := h.store.ListAiIdeas(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, ideas, http.StatusOK)
}
