package ai

import (
	"context"
	"log/slog"

	"github.com/garnizeh/campus/internal/matching"
	"github.com/garnizeh/campus/pkg/models"
)

// Source tells the caller which path produced a recommendation.
type Source string

const (
	SourceAI        Source = "ai"
	SourceHeuristic Source = "heuristic"
)

// Collaborator is the model-backed half of the advisor. *Engine implements it.
type Collaborator interface {
	GenerateIdeas(ctx context.Context, tags []string, difficulty models.Difficulty) ([]models.ProjectIdea, error)
	MatchMentors(ctx context.Context, tags []string, mentors []models.User) ([]models.MentorMatch, error)
}

var _ Collaborator = (*Engine)(nil)

// Advisor answers idea and mentor requests, trying the collaborator first and
// falling back to the local heuristics. Its methods never fail.
type Advisor struct {
	collab Collaborator
	logger *slog.Logger
}

// NewAdvisor returns an advisor. A nil collaborator means the model is
// disabled and every answer comes from the heuristics.
func NewAdvisor(c Collaborator, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{collab: c, logger: logger}
}

// withFallback runs try when a collaborator is configured and returns its
// result unless it failed or came back empty.
func withFallback[T any](ctx context.Context, a *Advisor, op string, try func(context.Context, Collaborator) ([]T, error), fallback func() []T) ([]T, Source) {
	if a.collab != nil {
		out, err := try(ctx, a.collab)
		switch {
		case err != nil:
			a.logger.WarnContext(ctx, "ai request failed, using heuristic", slog.String("op", op), slog.Any("err", err))
		case len(out) == 0:
			a.logger.InfoContext(ctx, "ai returned no results, using heuristic", slog.String("op", op))
		default:
			return out, SourceAI
		}
	}
	return fallback(), SourceHeuristic
}

func (a *Advisor) ProjectIdeas(ctx context.Context, tags []string, difficulty models.Difficulty) ([]models.ProjectIdea, Source) {
	return withFallback(ctx, a, "generate_ideas",
		func(ctx context.Context, c Collaborator) ([]models.ProjectIdea, error) {
			return c.GenerateIdeas(ctx, tags, difficulty)
		},
		func() []models.ProjectIdea {
			return matching.FallbackIdeas(tags, difficulty)
		})
}

// MentorMatches ranks the mentor pool for the tags. Users in the pool that
// cannot mentor are ignored by both paths.
func (a *Advisor) MentorMatches(ctx context.Context, tags []string, pool []models.User) ([]models.MentorMatch, Source) {
	mentors := make([]models.User, 0, len(pool))
	for _, u := range pool {
		if u.Role.CanMentor() {
			mentors = append(mentors, u)
		}
	}
	if len(mentors) == 0 {
		return []models.MentorMatch{}, SourceHeuristic
	}

	return withFallback(ctx, a, "match_mentors",
		func(ctx context.Context, c Collaborator) ([]models.MentorMatch, error) {
			return c.MatchMentors(ctx, tags, mentors)
		},
		func() []models.MentorMatch {
			return matching.MentorMatches(tags, mentors, matching.DefaultMentorLimit)
		})
}
