package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/garnizeh/campus/internal/jobs"
	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

type ActivitiesHandler struct {
	activities repository.ActivityRepo
}

func NewActivitiesHandler(ar repository.ActivityRepo) *ActivitiesHandler {
	return &ActivitiesHandler{activities: ar}
}

// ListActivities returns the feed, newest first. limit defaults to 20 and is
// capped at 100.
func (h *ActivitiesHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}
	if limit == 0 {
		limit = defaultActivityLimit
	}
	limit = min(limit, maxActivityLimit)

	acts, err := h.activities.ListActivitiesWithUsers(r.Context(), int(limit))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, acts, http.StatusOK)
}

// recordActivity appends a companion activity after a successful mutation.
// The mutation already happened, so a failure is only logged.
func recordActivity(ctx context.Context, ar repository.ActivityRepo, a models.Activity) {
	if _, err := ar.CreateActivity(ctx, &a); err != nil {
		logger.WarnContext(ctx, "record activity",
			slog.String("action", a.Action),
			slog.Int64("user_id", a.UserID),
			slog.Int64("target_id", a.TargetID),
			slog.String("request_id", RequestIDFrom(ctx)),
			slog.Any("err", err),
		)
	}
}

// notify sends n when a notifier is configured; failures are logged.
func notify(ctx context.Context, n jobs.Notifier, msg jobs.Notification) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, msg); err != nil {
		logger.WarnContext(ctx, "send notification",
			slog.String("kind", msg.Kind),
			slog.Int64("user_id", msg.UserID),
			slog.String("request_id", RequestIDFrom(ctx)),
			slog.Any("err", err),
		)
	}
}
