package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/pkg/models"
)

// stubCollaborator stands in for the model-backed engine.
type stubCollaborator struct {
	ideas   []models.ProjectIdea
	matches []models.MentorMatch
	err     error
}

func (s *stubCollaborator) GenerateIdeas(ctx context.Context, tags []string, d models.Difficulty) ([]models.ProjectIdea, error) {
	return s.ideas, s.err
}

func (s *stubCollaborator) MatchMentors(ctx context.Context, tags []string, mentors []models.User) ([]models.MentorMatch, error) {
	return s.matches, s.err
}

type ideasBody struct {
	Ideas  []models.ProjectIdea `json:"ideas"`
	Source ai.Source            `json:"source"`
}

func TestGenerateIdeas_Fallback(t *testing.T) {
	a := newTestAPI(t, &stubCollaborator{err: ai.ErrExternalService})
	u := a.user(t, "student", models.RoleStudent, nil, 0)

	w := a.do(t, http.MethodPost, "/api/ai/generate-ideas", map[string]any{"tags": []string{"Go", "IoT"}, "difficulty": "beginner", "userId": u.ID})
	expectStatus(t, w, http.StatusOK)
	body := decode[ideasBody](t, w)
	if body.Source != ai.SourceHeuristic || len(body.Ideas) != 3 || body.Ideas[0].Title != "Smart Campus Navigator" {
		t.Fatalf("unexpected fallback body %+v", body)
	}
	if body.Ideas[0].Technologies[0] != "Go" || body.Ideas[0].Difficulty != models.DifficultyBeginner {
		t.Fatalf("fallback idea does not reflect the request: %+v", body.Ideas[0])
	}

	w = a.do(t, http.MethodGet, "/api/ai/ideas?userId="+itoa(u.ID), nil)
	expectStatus(t, w, http.StatusOK)
	saved := decode[[]models.AiIdea](t, w)
	if len(saved) != 1 || len(saved[0].Ideas) != 3 || saved[0].Tags[1] != "IoT" {
		t.Fatalf("ideas were not saved: %+v", saved)
	}
}

func TestGenerateIdeas_AI(t *testing.T) {
	a := newTestAPI(t, &stubCollaborator{ideas: []models.ProjectIdea{{Title: "Model idea", Difficulty: models.DifficultyAdvanced}}})

	w := a.do(t, http.MethodPost, "/api/ai/generate-ideas", map[string]any{"tags": []string{"Rust"}, "difficulty": "advanced"})
	expectStatus(t, w, http.StatusOK)
	body := decode[ideasBody](t, w)
	if body.Source != ai.SourceAI || len(body.Ideas) != 1 || body.Ideas[0].Title != "Model idea" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestGenerateIdeas_Validation(t *testing.T) {
	a := newTestAPI(t, nil)

	cases := []struct {
		name string
		body any
		want int
	}{
		{"malformed", "[", http.StatusBadRequest},
		{"no tags", map[string]any{"difficulty": "beginner"}, http.StatusBadRequest},
		{"blank tags", map[string]any{"tags": []string{" "}, "difficulty": "beginner"}, http.StatusBadRequest},
		{"no difficulty", map[string]any{"tags": []string{"Go"}}, http.StatusBadRequest},
		{"unknown user", map[string]any{"tags": []string{"Go"}, "difficulty": "beginner", "userId": 404}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectStatus(t, a.do(t, http.MethodPost, "/api/ai/generate-ideas", tc.body), tc.want)
		})
	}

	expectStatus(t, a.do(t, http.MethodGet, "/api/ai/ideas", nil), http.StatusBadRequest)
	w := a.do(t, http.MethodGet, "/api/ai/ideas?userId=5", nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[[]models.AiIdea](t, w); len(got) != 0 {
		t.Fatalf("expected no ideas, got %+v", got)
	}
}
