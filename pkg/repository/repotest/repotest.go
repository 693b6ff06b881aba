// Package repotest holds a conformance suite every repository.Store
// implementation must pass.
package repotest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

// Run executes the suite. newStore must return an empty store per call.
func Run(t *testing.T, newStore func(t *testing.T) repository.Store) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, s repository.Store)
	}{
		{"UserDefaults", testUserDefaults},
		{"UserValidation", testUserValidation},
		{"UserConflicts", testUserConflicts},
		{"UserNotFound", testUserNotFound},
		{"ListMentors", testListMentors},
		{"ProjectCreate", testProjectCreate},
		{"ProjectUpdate", testProjectUpdate},
		{"StarRoundTrip", testStarRoundTrip},
		{"DoubleStarRejected", testDoubleStar},
		{"UnstarNeverNegative", testUnstarNeverNegative},
		{"ConcurrentStars", testConcurrentStars},
		{"FeaturedFilterAndOrder", testFeatured},
		{"ProjectViews", testProjectViews},
		{"Members", testMembers},
		{"UserStats", testUserStats},
		{"Mentorships", testMentorships},
		{"ActivityFeed", testActivityFeed},
		{"ActivityTargetMustExist", testActivityTargetMustExist},
		{"AiIdeas", testAiIdeas},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.fn(t, newStore(t))
		})
	}
}

func mustUser(t *testing.T, s repository.Store, username string, role models.Role, expertise ...string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), &models.User{
		Username:  username,
		Email:     username + "@campus.edu",
		Password:  "hash",
		FullName:  "User " + username,
		Role:      role,
		Expertise: expertise,
	})
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustProject(t *testing.T, s repository.Store, authorID int64, title string) *models.Project {
	t.Helper()
	p, err := s.CreateProject(context.Background(), &models.Project{
		Title:        title,
		Description:  "about " + title,
		AuthorID:     authorID,
		Technologies: []string{"Go"},
		Tags:         []string{"web"},
		Difficulty:   models.DifficultyIntermediate,
	})
	if err != nil {
		t.Fatalf("CreateProject(%s): %v", title, err)
	}
	return p
}

func mustStars(t *testing.T, s repository.Store, projectID, want int64) {
	t.Helper()
	p, err := s.GetProject(context.Background(), projectID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if p.Stars != want {
		t.Fatalf("expected stars=%d, got %d", want, p.Stars)
	}
	pw, err := s.GetProjectWithAuthor(context.Background(), projectID)
	if err != nil {
		t.Fatalf("GetProjectWithAuthor: %v", err)
	}
	if pw.StarCount != want {
		t.Fatalf("expected starCount=%d, got %d", want, pw.StarCount)
	}
}

func testUserDefaults(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u, err := s.CreateUser(ctx, &models.User{Username: "ana", Email: "ana@campus.edu", Password: "x", FullName: "Ana"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.ID <= 0 {
		t.Fatalf("expected positive id, got %d", u.ID)
	}
	if u.Role != models.RoleStudent {
		t.Fatalf("expected default role student, got %q", u.Role)
	}
	if u.Rating != 0 {
		t.Fatalf("expected rating 0, got %v", u.Rating)
	}
	if u.Expertise == nil || len(u.Expertise) != 0 {
		t.Fatalf("expected empty expertise, got %#v", u.Expertise)
	}
	if u.CreatedAt.IsZero() {
		t.Fatalf("expected createdAt to be set")
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Username != "ana" || got.Password != "x" || !got.CreatedAt.Equal(u.CreatedAt) {
		t.Fatalf("unexpected user: %#v", got)
	}

	byName, err := s.GetUserByUsername(ctx, "ana")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if byName.ID != u.ID {
		t.Fatalf("expected id %d, got %d", u.ID, byName.ID)
	}
}

func testUserValidation(t *testing.T, s repository.Store) {
	ctx := context.Background()
	cases := map[string]models.User{
		"missing username": {Email: "a@b.c", Password: "x", FullName: "A"},
		"bad email":        {Username: "a", Email: "nope", Password: "x", FullName: "A"},
		"missing name":     {Username: "a", Email: "a@b.c", Password: "x"},
		"bad role":         {Username: "a", Email: "a@b.c", Password: "x", FullName: "A", Role: "dean"},
		"rating too high":  {Username: "a", Email: "a@b.c", Password: "x", FullName: "A", Rating: 7},
	}
	for name, in := range cases {
		in := in
		if _, err := s.CreateUser(ctx, &in); !repository.IsValidation(err) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}

	var ve *repository.ValidationError
	_, err := s.CreateUser(ctx, &models.User{Username: "a", Email: "a@b.c", Password: "x"})
	if !errors.As(err, &ve) || ve.Field != "fullName" {
		t.Fatalf("expected fullName validation error, got %v", err)
	}
}

func testUserConflicts(t *testing.T, s repository.Store) {
	ctx := context.Background()
	mustUser(t, s, "ana", models.RoleStudent)

	_, err := s.CreateUser(ctx, &models.User{Username: "ana", Email: "other@campus.edu", Password: "x", FullName: "Other"})
	if !repository.IsConflict(err) {
		t.Fatalf("expected conflict on username, got %v", err)
	}
	_, err = s.CreateUser(ctx, &models.User{Username: "other", Email: "ana@campus.edu", Password: "x", FullName: "Other"})
	if !repository.IsConflict(err) {
		t.Fatalf("expected conflict on email, got %v", err)
	}
}

func testUserNotFound(t *testing.T, s repository.Store) {
	ctx := context.Background()
	if _, err := s.GetUser(ctx, 999); !repository.IsNotFound(err) {
		t.Fatalf("GetUser: expected not found, got %v", err)
	}
	if _, err := s.GetUserByUsername(ctx, "ghost"); !repository.IsNotFound(err) {
		t.Fatalf("GetUserByUsername: expected not found, got %v", err)
	}
	if _, err := s.GetUserWithStats(ctx, 999); !repository.IsNotFound(err) {
		t.Fatalf("GetUserWithStats: expected not found, got %v", err)
	}
	if _, err := s.GetProject(ctx, 999); !repository.IsNotFound(err) {
		t.Fatalf("GetProject: expected not found, got %v", err)
	}
	if _, err := s.GetProjectWithAuthor(ctx, 999); !repository.IsNotFound(err) {
		t.Fatalf("GetProjectWithAuthor: expected not found, got %v", err)
	}
}

func testListMentors(t *testing.T, s repository.Store) {
	ctx := context.Background()
	mustUser(t, s, "student", models.RoleStudent)
	m := mustUser(t, s, "mentor", models.RoleMentor, "Go")
	f := mustUser(t, s, "faculty", models.RoleFaculty, "ML")

	got, err := s.ListMentors(ctx)
	if err != nil {
		t.Fatalf("ListMentors: %v", err)
	}
	if len(got) != 2 || got[0].ID != m.ID || got[1].ID != f.ID {
		t.Fatalf("unexpected mentors: %#v", got)
	}
}

func testProjectCreate(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)

	p, err := s.CreateProject(ctx, &models.Project{
		Title: "Campus Map", Description: "maps", AuthorID: u.ID,
		Difficulty: models.DifficultyBeginner, Stars: 99,
	})
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if p.Stars != 0 {
		t.Fatalf("expected stars 0 on create, got %d", p.Stars)
	}
	if p.Status != models.ProjectActive {
		t.Fatalf("expected default status active, got %q", p.Status)
	}
	if p.Technologies == nil || p.Tags == nil {
		t.Fatalf("expected empty lists, got %#v %#v", p.Technologies, p.Tags)
	}

	_, err = s.CreateProject(ctx, &models.Project{Title: "x", Description: "y", AuthorID: 999, Difficulty: models.DifficultyBeginner})
	if !repository.IsNotFound(err) {
		t.Fatalf("expected not found for unknown author, got %v", err)
	}
	_, err = s.CreateProject(ctx, &models.Project{Title: "x", Description: "y", AuthorID: u.ID})
	if !repository.IsValidation(err) {
		t.Fatalf("expected validation error for missing difficulty, got %v", err)
	}
}

func testProjectUpdate(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)
	p := mustProject(t, s, u.ID, "Old")

	title := "New"
	status := models.ProjectCompleted
	got, err := s.UpdateProject(ctx, p.ID, models.ProjectUpdate{Title: &title, Status: &status, Tags: []string{"ai", " "}})
	if err != nil {
		t.Fatalf("UpdateProject: %v", err)
	}
	if got.Title != "New" || got.Status != models.ProjectCompleted {
		t.Fatalf("unexpected update result: %#v", got)
	}
	if len(got.Tags) != 1 || got.Tags[0] != "ai" {
		t.Fatalf("expected cleaned tags [ai], got %#v", got.Tags)
	}
	if got.Description != p.Description || got.AuthorID != u.ID {
		t.Fatalf("untouched fields changed: %#v", got)
	}

	reloaded, err := s.GetProject(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProject: %v", err)
	}
	if reloaded.Title != "New" {
		t.Fatalf("update not persisted: %#v", reloaded)
	}

	empty := " "
	if _, err := s.UpdateProject(ctx, p.ID, models.ProjectUpdate{Title: &empty}); !repository.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := s.UpdateProject(ctx, 999, models.ProjectUpdate{Title: &title}); !repository.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func testStarRoundTrip(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)
	p := mustProject(t, s, u.ID, "P")

	star, err := s.StarProject(ctx, p.ID, u.ID)
	if err != nil {
		t.Fatalf("StarProject: %v", err)
	}
	if star.ID <= 0 || star.ProjectID != p.ID || star.UserID != u.ID {
		t.Fatalf("unexpected star: %#v", star)
	}
	mustStars(t, s, p.ID, 1)

	ok, err := s.HasStarred(ctx, p.ID, u.ID)
	if err != nil || !ok {
		t.Fatalf("HasStarred: %v %v", ok, err)
	}

	if err := s.UnstarProject(ctx, p.ID, u.ID); err != nil {
		t.Fatalf("UnstarProject: %v", err)
	}
	mustStars(t, s, p.ID, 0)

	ok, err = s.HasStarred(ctx, p.ID, u.ID)
	if err != nil || ok {
		t.Fatalf("HasStarred after unstar: %v %v", ok, err)
	}

	if _, err := s.StarProject(ctx, 999, u.ID); !repository.IsNotFound(err) {
		t.Fatalf("expected not found for unknown project, got %v", err)
	}
	if _, err := s.StarProject(ctx, p.ID, 999); !repository.IsNotFound(err) {
		t.Fatalf("expected not found for unknown user, got %v", err)
	}
	mustStars(t, s, p.ID, 0)
}

func testDoubleStar(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)
	p := mustProject(t, s, u.ID, "P")

	if _, err := s.StarProject(ctx, p.ID, u.ID); err != nil {
		t.Fatalf("StarProject: %v", err)
	}
	if _, err := s.StarProject(ctx, p.ID, u.ID); !repository.IsConflict(err) {
		t.Fatalf("expected conflict on second star, got %v", err)
	}
	mustStars(t, s, p.ID, 1)
}

func testUnstarNeverNegative(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)
	p := mustProject(t, s, u.ID, "P")

	if err := s.UnstarProject(ctx, p.ID, u.ID); err != nil {
		t.Fatalf("UnstarProject without star: %v", err)
	}
	mustStars(t, s, p.ID, 0)
	if err := s.UnstarProject(ctx, 999, u.ID); err != nil {
		t.Fatalf("UnstarProject unknown project: %v", err)
	}
}

func testConcurrentStars(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "author", models.RoleStudent)
	p := mustProject(t, s, author.ID, "Popular")

	const n = 12
	users := make([]*models.User, n)
	for i := range users {
		users[i] = mustUser(t, s, fmt.Sprintf("fan%d", i), models.RoleStudent)
	}

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for _, u := range users {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			if _, err := s.StarProject(ctx, p.ID, uid); err != nil {
				errs <- err
			}
		}(u.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent StarProject: %v", err)
	}
	mustStars(t, s, p.ID, n)
}

func testFeatured(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "author", models.RoleStudent)

	const fans = 17
	users := make([]*models.User, fans)
	for i := range users {
		users[i] = mustUser(t, s, fmt.Sprintf("fan%d", i), models.RoleStudent)
	}

	starBy := func(p *models.Project, count int) {
		for i := 0; i < count; i++ {
			if _, err := s.StarProject(ctx, p.ID, users[i].ID); err != nil {
				t.Fatalf("StarProject: %v", err)
			}
		}
	}

	old := mustProject(t, s, author.ID, "old-featured")
	starBy(old, 16)
	border := mustProject(t, s, author.ID, "exactly-fifteen")
	starBy(border, 15)
	recent := mustProject(t, s, author.ID, "recent-featured")
	starBy(recent, 17)
	mustProject(t, s, author.ID, "plain")

	all, err := s.ListProjectsWithAuthors(ctx, models.ProjectFilter{})
	if err != nil {
		t.Fatalf("ListProjectsWithAuthors: %v", err)
	}
	if len(all) != 4 || all[0].Title != "plain" || all[3].Title != "old-featured" {
		t.Fatalf("expected newest first, got %v", titles(all))
	}

	featured, err := s.ListProjectsWithAuthors(ctx, models.ProjectFilter{Featured: true})
	if err != nil {
		t.Fatalf("featured: %v", err)
	}
	if got := titles(featured); len(got) != 2 || got[0] != "recent-featured" || got[1] != "old-featured" {
		t.Fatalf("unexpected featured list: %v", got)
	}
	for _, p := range featured {
		if p.Stars <= models.FeaturedThreshold {
			t.Fatalf("featured project %q has %d stars", p.Title, p.Stars)
		}
	}

	// the limit applies after filtering
	limited, err := s.ListProjectsWithAuthors(ctx, models.ProjectFilter{Featured: true, Limit: 1})
	if err != nil {
		t.Fatalf("featured limit: %v", err)
	}
	if got := titles(limited); len(got) != 1 || got[0] != "recent-featured" {
		t.Fatalf("unexpected limited featured list: %v", got)
	}
}

func titles(ps []models.ProjectWithAuthor) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Title
	}
	return out
}

func testProjectViews(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "author", models.RoleStudent)
	viewer := mustUser(t, s, "viewer", models.RoleStudent)
	p := mustProject(t, s, author.ID, "P")

	if _, err := s.StarProject(ctx, p.ID, viewer.ID); err != nil {
		t.Fatalf("StarProject: %v", err)
	}

	pw, err := s.GetProjectWithAuthor(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProjectWithAuthor: %v", err)
	}
	if pw.Author.ID != author.ID || pw.Author.Username != "author" || pw.Author.FullName != author.FullName {
		t.Fatalf("unexpected author summary: %#v", pw.Author)
	}

	list, err := s.ListProjectsWithAuthors(ctx, models.ProjectFilter{ViewerID: viewer.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].IsStarred || list[0].StarCount != 1 {
		t.Fatalf("expected starred view, got %#v", list)
	}

	list, err = s.ListProjectsWithAuthors(ctx, models.ProjectFilter{ViewerID: author.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if list[0].IsStarred {
		t.Fatalf("author did not star the project")
	}
}

func testMembers(t *testing.T, s repository.Store) {
	ctx := context.Background()
	author := mustUser(t, s, "author", models.RoleStudent)
	joiner := mustUser(t, s, "joiner", models.RoleStudent)
	p := mustProject(t, s, author.ID, "P")

	m, err := s.AddProjectMember(ctx, &models.ProjectMember{ProjectID: p.ID, UserID: joiner.ID})
	if err != nil {
		t.Fatalf("AddProjectMember: %v", err)
	}
	if m.Role != models.MemberMember || m.JoinedAt.IsZero() {
		t.Fatalf("unexpected member defaults: %#v", m)
	}
	if _, err := s.AddProjectMember(ctx, &models.ProjectMember{ProjectID: p.ID, UserID: joiner.ID}); !repository.IsConflict(err) {
		t.Fatalf("expected conflict on second join, got %v", err)
	}
	if _, err := s.AddProjectMember(ctx, &models.ProjectMember{ProjectID: 999, UserID: joiner.ID}); !repository.IsNotFound(err) {
		t.Fatalf("expected not found for unknown project, got %v", err)
	}

	members, err := s.ListProjectMembers(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListProjectMembers: %v", err)
	}
	if len(members) != 1 || members[0].UserID != joiner.ID {
		t.Fatalf("unexpected members: %#v", members)
	}

	removed, err := s.RemoveProjectMember(ctx, p.ID, joiner.ID)
	if err != nil || !removed {
		t.Fatalf("RemoveProjectMember: removed=%v err=%v", removed, err)
	}
	removed, err = s.RemoveProjectMember(ctx, p.ID, joiner.ID)
	if err != nil || removed {
		t.Fatalf("RemoveProjectMember twice: removed=%v err=%v", removed, err)
	}
	members, err = s.ListProjectMembers(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListProjectMembers: %v", err)
	}
	if len(members) != 0 {
		t.Fatalf("expected no members, got %#v", members)
	}
}

func testUserStats(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)
	mentor := mustUser(t, s, "mentor", models.RoleMentor)
	other := mustUser(t, s, "other", models.RoleStudent)

	for i := 0; i < 3; i++ {
		mustProject(t, s, u.ID, fmt.Sprintf("mine-%d", i))
	}
	theirs := mustProject(t, s, other.ID, "theirs")
	if _, err := s.AddProjectMember(ctx, &models.ProjectMember{ProjectID: theirs.ID, UserID: u.ID}); err != nil {
		t.Fatalf("AddProjectMember: %v", err)
	}
	if _, err := s.CreateMentorship(ctx, &models.Mentorship{MentorID: mentor.ID, MenteeID: u.ID}); err != nil {
		t.Fatalf("CreateMentorship: %v", err)
	}
	if _, err := s.CreateMentorship(ctx, &models.Mentorship{MentorID: u.ID, MenteeID: other.ID}); err != nil {
		t.Fatalf("CreateMentorship: %v", err)
	}

	st, err := s.GetUserWithStats(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserWithStats: %v", err)
	}
	if st.ProjectCount != 3 || st.CollaborationCount != 1 || st.MentorshipCount != 2 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	mustProject(t, s, u.ID, "mine-3")
	st, err = s.GetUserWithStats(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserWithStats: %v", err)
	}
	if st.ProjectCount != 4 {
		t.Fatalf("expected recomputed projectCount 4, got %d", st.ProjectCount)
	}
}

func testMentorships(t *testing.T, s repository.Store) {
	ctx := context.Background()
	mentor := mustUser(t, s, "mentor", models.RoleMentor)
	mentee := mustUser(t, s, "mentee", models.RoleStudent)
	p := mustProject(t, s, mentee.ID, "P")

	m, err := s.CreateMentorship(ctx, &models.Mentorship{MentorID: mentor.ID, MenteeID: mentee.ID, ProjectID: &p.ID})
	if err != nil {
		t.Fatalf("CreateMentorship: %v", err)
	}
	if m.Status != models.MentorshipPending || m.ProjectID == nil || *m.ProjectID != p.ID {
		t.Fatalf("unexpected mentorship: %#v", m)
	}

	if _, err := s.CreateMentorship(ctx, &models.Mentorship{MentorID: mentor.ID, MenteeID: mentor.ID}); !repository.IsValidation(err) {
		t.Fatalf("expected validation error for self mentorship, got %v", err)
	}
	if _, err := s.CreateMentorship(ctx, &models.Mentorship{MentorID: mentor.ID, MenteeID: 999}); !repository.IsNotFound(err) {
		t.Fatalf("expected not found for unknown mentee, got %v", err)
	}
	missing := int64(999)
	if _, err := s.CreateMentorship(ctx, &models.Mentorship{MentorID: mentor.ID, MenteeID: mentee.ID, ProjectID: &missing}); !repository.IsNotFound(err) {
		t.Fatalf("expected not found for unknown project, got %v", err)
	}

	for _, id := range []int64{mentor.ID, mentee.ID} {
		list, err := s.ListMentorships(ctx, id)
		if err != nil {
			t.Fatalf("ListMentorships: %v", err)
		}
		if len(list) != 1 || list[0].ID != m.ID {
			t.Fatalf("unexpected mentorships for %d: %#v", id, list)
		}
	}
}

func testActivityFeed(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)
	p := mustProject(t, s, u.ID, "Feed")

	first, err := s.CreateActivity(ctx, &models.Activity{UserID: u.ID, Action: models.ActionCreatedProject, TargetType: models.TargetProject, TargetID: p.ID})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}
	if first.Metadata == nil {
		t.Fatalf("expected metadata to default to an empty map")
	}
	latest, err := s.CreateActivity(ctx, &models.Activity{
		UserID: u.ID, Action: models.ActionStarredProject, TargetType: models.TargetProject, TargetID: p.ID,
		Metadata: map[string]any{"note": "hi", "mentorId": int64(5)},
	})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}

	feed, err := s.ListActivitiesWithUsers(ctx, 1)
	if err != nil {
		t.Fatalf("ListActivitiesWithUsers: %v", err)
	}
	if len(feed) != 1 || feed[0].ID != latest.ID {
		t.Fatalf("expected only the latest activity, got %#v", feed)
	}
	if feed[0].User.ID != u.ID || feed[0].User.Username != "ana" {
		t.Fatalf("unexpected actor: %#v", feed[0].User)
	}
	if feed[0].Metadata["note"] != "hi" || feed[0].Metadata["mentorId"] != float64(5) {
		t.Fatalf("metadata not preserved as JSON values: %#v", feed[0].Metadata)
	}
	if latest.Metadata["mentorId"] != float64(5) {
		t.Fatalf("created activity should carry JSON metadata values: %#v", latest.Metadata)
	}

	// a caller-supplied timestamp is kept and drives ordering
	future := time.Now().Add(time.Hour).UTC()
	replayed, err := s.CreateActivity(ctx, &models.Activity{UserID: u.ID, Action: "imported", TargetType: models.TargetUser, TargetID: u.ID, CreatedAt: future})
	if err != nil {
		t.Fatalf("CreateActivity: %v", err)
	}
	feed, err = s.ListActivitiesWithUsers(ctx, 0)
	if err != nil {
		t.Fatalf("ListActivitiesWithUsers: %v", err)
	}
	if len(feed) != 3 || feed[0].ID != replayed.ID || feed[2].ID != first.ID {
		t.Fatalf("unexpected feed order: %#v", feed)
	}

	if _, err := s.CreateActivity(ctx, &models.Activity{UserID: u.ID, Action: "x", TargetType: "planet", TargetID: 1}); !repository.IsValidation(err) {
		t.Fatalf("expected validation error for bad target type, got %v", err)
	}
	if _, err := s.CreateActivity(ctx, &models.Activity{UserID: 999, Action: "x", TargetType: models.TargetUser, TargetID: u.ID}); !repository.IsNotFound(err) {
		t.Fatalf("expected not found for unknown actor, got %v", err)
	}
	if _, err := s.CreateActivity(ctx, &models.Activity{UserID: u.ID, Action: "x", TargetType: models.TargetUser, TargetID: u.ID, Metadata: map[string]any{"bad": func() {}}}); !repository.IsValidation(err) {
		t.Fatalf("expected validation error for metadata that is not JSON, got %v", err)
	}
}

func testActivityTargetMustExist(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)

	for _, target := range []models.TargetType{models.TargetProject, models.TargetMentorship, models.TargetUser} {
		_, err := s.CreateActivity(ctx, &models.Activity{UserID: u.ID, Action: "x", TargetType: target, TargetID: 424242})
		if !repository.IsNotFound(err) {
			t.Fatalf("expected not found for missing %s target, got %v", target, err)
		}
	}
	feed, err := s.ListActivitiesWithUsers(ctx, 0)
	if err != nil {
		t.Fatalf("ListActivitiesWithUsers: %v", err)
	}
	if len(feed) != 0 {
		t.Fatalf("rejected activities must not be stored, got %#v", feed)
	}
}

func testAiIdeas(t *testing.T, s repository.Store) {
	ctx := context.Background()
	u := mustUser(t, s, "ana", models.RoleStudent)

	idea, err := s.CreateAiIdea(ctx, &models.AiIdea{
		UserID: u.ID, Tags: []string{"ai"}, Difficulty: models.DifficultyAdvanced,
		Ideas: []models.ProjectIdea{{Title: "Bot", Description: "d", Technologies: []string{"Go"}, Difficulty: models.DifficultyAdvanced}},
	})
	if err != nil {
		t.Fatalf("CreateAiIdea: %v", err)
	}

	list, err := s.ListAiIdeas(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListAiIdeas: %v", err)
	}
	if len(list) != 1 || list[0].ID != idea.ID || len(list[0].Ideas) != 1 || list[0].Ideas[0].Title != "Bot" {
		t.Fatalf("unexpected ideas: %#v", list)
	}

	if _, err := s.CreateAiIdea(ctx, &models.AiIdea{UserID: u.ID, Difficulty: models.DifficultyAdvanced}); !repository.IsValidation(err) {
		t.Fatalf("expected validation error for missing tags, got %v", err)
	}
}
