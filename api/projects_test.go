package api_test

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/garnizeh/campus/internal/jobs"
	"github.com/garnizeh/campus/pkg/models"
)

type projectBody struct {
	Success bool           `json:"success"`
	Project models.Project `json:"project"`
}

func TestCreateProject(t *testing.T) {
	a := newTestAPI(t, nil)
	author := a.user(t, "author", models.RoleStudent, nil, 0)

	w := a.do(t, http.MethodPost, "/api/projects", map[string]any{
		"title":        "Campus Map",
		"description":  "Indoor navigation",
		"authorId":     author.ID,
		"technologies": []string{"Go", "React"},
		"difficulty":   "advanced",
	})
	expectStatus(t, w, http.StatusCreated)
	body := decode[projectBody](t, w)
	if !body.Success || body.Project.ID == 0 || body.Project.Stars != 0 || body.Project.Status != models.ProjectActive {
		t.Fatalf("unexpected project %+v", body)
	}

	feed := a.feed(t)
	if len(feed) != 1 || feed[0].Action != models.ActionCreatedProject || feed[0].TargetID != body.Project.ID {
		t.Fatalf("expected a created_project activity, got %+v", feed)
	}
	if feed[0].Metadata["projectTitle"] != "Campus Map" {
		t.Fatalf("unexpected metadata %+v", feed[0].Metadata)
	}

	cases := []struct {
		name string
		body any
		want int
	}{
		{"malformed", "{", http.StatusBadRequest},
		{"missing title", map[string]any{"description": "d", "authorId": author.ID, "difficulty": "beginner"}, http.StatusBadRequest},
		{"bad difficulty", map[string]any{"title": "t", "description": "d", "authorId": author.ID, "difficulty": "expert"}, http.StatusBadRequest},
		{"unknown author", map[string]any{"title": "t", "description": "d", "authorId": 999, "difficulty": "beginner"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectStatus(t, a.do(t, http.MethodPost, "/api/projects", tc.body), tc.want)
		})
	}
	if len(a.feed(t)) != 1 {
		t.Fatalf("failed creates must not record activities")
	}
}

func TestListAndGetProjects(t *testing.T) {
	a := newTestAPI(t, nil)
	ctx := context.Background()
	author := a.user(t, "author", models.RoleStudent, nil, 0)
	popular := a.project(t, author.ID, "Popular", nil)
	quiet := a.project(t, author.ID, "Quiet", nil)

	var fans []*models.User
	for i := range 16 {
		fans = append(fans, a.user(t, "fan"+itoa(int64(i)), models.RoleStudent, nil, 0))
	}
	for _, f := range fans {
		if _, err := a.store.StarProject(ctx, popular.ID, f.ID); err != nil {
			t.Fatalf("star: %v", err)
		}
	}

	w := a.do(t, http.MethodGet, "/api/projects", nil)
	expectStatus(t, w, http.StatusOK)
	all := decode[[]models.ProjectWithAuthor](t, w)
	if len(all) != 2 || all[0].ID != quiet.ID || all[0].Author.ID != author.ID {
		t.Fatalf("expected newest first with author, got %+v", all)
	}

	w = a.do(t, http.MethodGet, "/api/projects?featured=true&limit=5&userId="+itoa(fans[0].ID), nil)
	expectStatus(t, w, http.StatusOK)
	featured := decode[[]models.ProjectWithAuthor](t, w)
	if len(featured) != 1 || featured[0].ID != popular.ID || featured[0].StarCount != 16 || !featured[0].IsStarred {
		t.Fatalf("unexpected featured list %+v", featured)
	}

	w = a.do(t, http.MethodGet, "/api/projects?limit=1", nil)
	if got := decode[[]models.ProjectWithAuthor](t, w); len(got) != 1 {
		t.Fatalf("limit not applied: %d", len(got))
	}
	expectStatus(t, a.do(t, http.MethodGet, "/api/projects?limit=x", nil), http.StatusBadRequest)
	expectStatus(t, a.do(t, http.MethodGet, "/api/projects?featured=maybe", nil), http.StatusBadRequest)

	w = a.do(t, http.MethodGet, "/api/projects/"+itoa(popular.ID)+"?userId="+itoa(fans[1].ID), nil)
	expectStatus(t, w, http.StatusOK)
	if got := decode[models.ProjectWithAuthor](t, w); !got.IsStarred || got.Stars != 16 || got.Author.Username != "author" {
		t.Fatalf("unexpected project view %+v", got)
	}
	w = a.do(t, http.MethodGet, "/api/projects/"+itoa(popular.ID)+"?userId="+itoa(author.ID), nil)
	if got := decode[models.ProjectWithAuthor](t, w); got.IsStarred {
		t.Fatalf("author did not star the project")
	}
	expectStatus(t, a.do(t, http.MethodGet, "/api/projects/999", nil), http.StatusNotFound)
}

func TestStarUnstar(t *testing.T) {
	a := newTestAPI(t, nil)
	author := a.user(t, "author", models.RoleStudent, nil, 0)
	fan := a.user(t, "fan", models.RoleStudent, nil, 0)
	p := a.project(t, author.ID, "Starred", nil)
	path := "/api/projects/" + itoa(p.ID) + "/star"

	expectStatus(t, a.do(t, http.MethodPost, path, map[string]any{"userId": fan.ID}), http.StatusCreated)
	expectStatus(t, a.do(t, http.MethodPost, path, map[string]any{"userId": fan.ID}), http.StatusConflict)

	got, _ := a.store.GetProject(t.Context(), p.ID)
	if got.Stars != 1 {
		t.Fatalf("double star changed the counter: %d", got.Stars)
	}
	if acts := a.feed(t); len(acts) != 1 || acts[0].Action != models.ActionStarredProject {
		t.Fatalf("expected one starred_project activity, got %+v", acts)
	}

	expectStatus(t, a.do(t, http.MethodPost, path, map[string]any{}), http.StatusBadRequest)
	expectStatus(t, a.do(t, http.MethodPost, "/api/projects/999/star", map[string]any{"userId": fan.ID}), http.StatusNotFound)

	expectStatus(t, a.do(t, http.MethodDelete, path, map[string]any{"userId": fan.ID}), http.StatusOK)
	expectStatus(t, a.do(t, http.MethodDelete, path, map[string]any{"userId": fan.ID}), http.StatusOK)
	got, _ = a.store.GetProject(t.Context(), p.ID)
	if got.Stars != 0 {
		t.Fatalf("expected 0 stars after unstar, got %d", got.Stars)
	}
}

func TestJoinLeaveMembers(t *testing.T) {
	a := newTestAPI(t, nil)
	author := a.user(t, "author", models.RoleStudent, nil, 0)
	joiner := a.user(t, "joiner", models.RoleStudent, nil, 0)
	p := a.project(t, author.ID, "Team", nil)
	path := "/api/projects/" + itoa(p.ID) + "/join"

	w := a.do(t, http.MethodPost, path, map[string]any{"userId": joiner.ID})
	expectStatus(t, w, http.StatusCreated)
	if !strings.Contains(w.Body.String(), `"role":"member"`) {
		t.Fatalf("expected default member role, got %s", w.Body.String())
	}
	expectStatus(t, a.do(t, http.MethodPost, path, map[string]any{"userId": joiner.ID}), http.StatusConflict)

	sent := a.notifier.all()
	if len(sent) != 1 || sent[0].UserID != author.ID || sent[0].Kind != jobs.KindProjectJoined || sent[0].TargetID != p.ID {
		t.Fatalf("expected a join notification to the author, got %+v", sent)
	}

	w = a.do(t, http.MethodGet, "/api/projects/"+itoa(p.ID)+"/members", nil)
	expectStatus(t, w, http.StatusOK)
	if members := decode[[]models.ProjectMember](t, w); len(members) != 1 || members[0].UserID != joiner.ID {
		t.Fatalf("unexpected members %+v", members)
	}

	expectStatus(t, a.do(t, http.MethodDelete, path, map[string]any{"userId": joiner.ID}), http.StatusOK)
	w = a.do(t, http.MethodGet, "/api/projects/"+itoa(p.ID)+"/members", nil)
	if members := decode[[]models.ProjectMember](t, w); len(members) != 0 {
		t.Fatalf("member not removed: %+v", members)
	}
	expectStatus(t, a.do(t, http.MethodGet, "/api/projects/999/members", nil), http.StatusNotFound)

	acts := a.feed(t)
	if len(acts) != 2 || acts[0].Action != models.ActionLeftProject || acts[1].Action != models.ActionJoinedProject {
		t.Fatalf("unexpected activities %+v", acts)
	}

	// leaving again, or leaving a project never joined, changes nothing
	w = a.do(t, http.MethodDelete, path, map[string]any{"userId": joiner.ID})
	expectStatus(t, w, http.StatusOK)
	if !strings.Contains(w.Body.String(), `"removed":false`) {
		t.Fatalf("expected removed=false, got %s", w.Body.String())
	}
	expectStatus(t, a.do(t, http.MethodDelete, path, map[string]any{"userId": author.ID}), http.StatusOK)
	expectStatus(t, a.do(t, http.MethodDelete, "/api/projects/999/join", map[string]any{"userId": joiner.ID}), http.StatusNotFound)
	if after := a.feed(t); len(after) != len(acts) {
		t.Fatalf("no-op leaves must not add activities, got %+v", after)
	}
}

func TestUpdateProject(t *testing.T) {
	a := newTestAPI(t, nil)
	author := a.user(t, "author", models.RoleStudent, nil, 0)
	p := a.project(t, author.ID, "Draft", []string{"Go"})
	path := "/api/projects/" + itoa(p.ID)

	w := a.do(t, http.MethodPatch, path, map[string]any{"title": "Final", "status": "completed"})
	expectStatus(t, w, http.StatusOK)
	got := decode[projectBody](t, w).Project
	if got.Title != "Final" || got.Status != models.ProjectCompleted || len(got.Technologies) != 1 || got.Description != p.Description {
		t.Fatalf("unexpected update result %+v", got)
	}

	expectStatus(t, a.do(t, http.MethodPatch, path, map[string]any{"title": "  "}), http.StatusBadRequest)
	expectStatus(t, a.do(t, http.MethodPatch, path, map[string]any{"status": "deleted"}), http.StatusBadRequest)
	expectStatus(t, a.do(t, http.MethodPatch, "/api/projects/999", map[string]any{"title": "x"}), http.StatusNotFound)
}

func TestMatchSkills(t *testing.T) {
	a := newTestAPI(t, nil)
	author := a.user(t, "author", models.RoleStudent, nil, 0)
	goProj := a.project(t, author.ID, "Go service", []string{"Go", "SQLite"})
	a.project(t, author.ID, "Web app", []string{"React"})

	w := a.do(t, http.MethodPost, "/api/projects/match-skills", map[string]any{"skills": []string{"go"}})
	expectStatus(t, w, http.StatusOK)
	body := decode[struct {
		Projects []models.ProjectMatch `json:"projects"`
	}](t, w)
	if len(body.Projects) != 1 || body.Projects[0].ID != goProj.ID || body.Projects[0].MatchScore != 95 {
		t.Fatalf("unexpected matches %+v", body.Projects)
	}

	expectStatus(t, a.do(t, http.MethodPost, "/api/projects/match-skills", map[string]any{"skills": []string{}}), http.StatusBadRequest)
}
