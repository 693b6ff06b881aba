package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

func trim(s string) string { return strings.TrimSpace(s) }

func cmpInt64(a, b int64) int { return cmp.Compare(a, b) }

// newestFirst orders by time descending, ties by id descending.
func newestFirst(at time.Time, aid int64, bt time.Time, bid int64) int {
	if c := bt.Compare(at); c != 0 {
		return c
	}
	return cmp.Compare(bid, aid)
}

// withAuthor must be called with mu held. ok is false when the author is gone.
func (s *Store) withAuthor(p *models.Project, viewerID int64) (models.ProjectWithAuthor, bool) {
	author, ok := s.users[p.AuthorID]
	if !ok {
		return models.ProjectWithAuthor{}, false
	}

	var count int64
	for _, st := range s.stars {
		if st.ProjectID == p.ID {
			count++
		}
	}
	out := models.ProjectWithAuthor{
		Project:   cloneProject(p),
		Author:    models.SummaryOf(author),
		StarCount: count,
	}
	if viewerID > 0 {
		_, out.IsStarred = s.starIndex[pair{p.ID, viewerID}]
	}
	return out, true
}

func (s *Store) GetProjectWithAuthor(_ context.Context, id int64) (*models.ProjectWithAuthor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, repository.NotFound("project", id)
	}
	out, ok := s.withAuthor(p, 0)
	if !ok {
		return nil, repository.NotFound("user", p.AuthorID)
	}
	return &out, nil
}

func (s *Store) ListProjectsWithAuthors(_ context.Context, f models.ProjectFilter) ([]models.ProjectWithAuthor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ProjectWithAuthor{}
	for _, p := range s.projects {
		if f.Featured && p.Stars <= models.FeaturedThreshold {
			continue
		}
		if pw, ok := s.withAuthor(p, f.ViewerID); ok {
			out = append(out, pw)
		}
	}
	slices.SortFunc(out, func(a, b models.ProjectWithAuthor) int {
		return newestFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) ListActivitiesWithUsers(_ context.Context, limit int) ([]models.ActivityWithUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ActivityWithUser{}
	for _, a := range s.activities {
		u, ok := s.users[a.UserID]
		if !ok {
			continue
		}
		out = append(out, models.ActivityWithUser{Activity: cloneActivity(a), User: models.SummaryOf(u)})
	}
	slices.SortFunc(out, func(a, b models.ActivityWithUser) int {
		return newestFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
