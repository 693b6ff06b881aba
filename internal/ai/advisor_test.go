package ai_test

import (
	"context"
	"errors"
	"testing"

	"github.com/garnizeh/campus/internal/ai"
	"github.com/garnizeh/campus/pkg/models"
)

type fakeCollaborator struct {
	ideas    []models.ProjectIdea
	matches  []models.MentorMatch
	err      error
	gotPool  []models.User
	ideaCall int
}

func (f *fakeCollaborator) GenerateIdeas(ctx context.Context, tags []string, d models.Difficulty) ([]models.ProjectIdea, error) {
	f.ideaCall++
	return f.ideas, f.err
}

func (f *fakeCollaborator) MatchMentors(ctx context.Context, tags []string, mentors []models.User) ([]models.MentorMatch, error) {
	f.gotPool = mentors
	return f.matches, f.err
}

func TestAdvisor_ProjectIdeas(t *testing.T) {
	aiIdeas := []models.ProjectIdea{{Title: "From the model"}}

	cases := []struct {
		name       string
		collab     ai.Collaborator
		wantSource ai.Source
		wantTitle  string
	}{
		{"disabled", nil, ai.SourceHeuristic, "Smart Campus Navigator"},
		{"failure", &fakeCollaborator{err: ai.ErrExternalService}, ai.SourceHeuristic, "Smart Campus Navigator"},
		{"empty", &fakeCollaborator{ideas: []models.ProjectIdea{}}, ai.SourceHeuristic, "Smart Campus Navigator"},
		{"success", &fakeCollaborator{ideas: aiIdeas}, ai.SourceAI, "From the model"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := ai.NewAdvisor(tc.collab, nil)
			ideas, src := a.ProjectIdeas(context.Background(), []string{"Go"}, models.DifficultyIntermediate)
			if src != tc.wantSource {
				t.Fatalf("source: got %q want %q", src, tc.wantSource)
			}
			if len(ideas) == 0 || ideas[0].Title != tc.wantTitle {
				t.Fatalf("unexpected ideas: %+v", ideas)
			}
		})
	}
}

func TestAdvisor_MentorMatches(t *testing.T) {
	pool := append(mentorPool(), models.User{ID: 9, FullName: "Student", Role: models.RoleStudent, Expertise: []string{"Machine Learning"}})

	t.Run("fallback ranks heuristically", func(t *testing.T) {
		f := &fakeCollaborator{err: errors.New("boom")}
		got, src := ai.NewAdvisor(f, nil).MentorMatches(context.Background(), []string{"Machine Learning"}, pool)
		if src != ai.SourceHeuristic {
			t.Fatalf("expected heuristic source, got %q", src)
		}
		if len(got) != 3 || got[0].ID != 2 {
			t.Fatalf("unexpected heuristic ranking: %+v", got)
		}
		for _, u := range f.gotPool {
			if u.Role == models.RoleStudent {
				t.Fatalf("students must not reach the model: %+v", f.gotPool)
			}
		}
	})

	t.Run("model answer used", func(t *testing.T) {
		f := &fakeCollaborator{matches: []models.MentorMatch{{ID: 5, MatchScore: 88}}}
		got, src := ai.NewAdvisor(f, nil).MentorMatches(context.Background(), []string{"Go"}, pool)
		if src != ai.SourceAI || len(got) != 1 || got[0].ID != 5 {
			t.Fatalf("unexpected result %q %+v", src, got)
		}
	})

	t.Run("no mentors", func(t *testing.T) {
		f := &fakeCollaborator{matches: []models.MentorMatch{{ID: 5}}}
		got, src := ai.NewAdvisor(f, nil).MentorMatches(context.Background(), []string{"Go"}, nil)
		if src != ai.SourceHeuristic || got == nil || len(got) != 0 {
			t.Fatalf("expected empty heuristic result, got %q %+v", src, got)
		}
	})
}
