// Package memory is an in-process repository.Store. All state sits behind a
// single RWMutex: reads share it, every mutation holds it exclusively, so a
// star row and its counter update are never observed apart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

type pair struct {
	projectID, userID int64
}

type Store struct {
	mu sync.RWMutex

	users       map[int64]*models.User
	projects    map[int64]*models.Project
	members     map[int64]*models.ProjectMember
	stars       map[int64]*models.ProjectStar
	mentorships map[int64]*models.Mentorship
	activities  map[int64]*models.Activity
	ideas       map[int64]*models.AiIdea

	starIndex   map[pair]int64
	memberIndex map[pair]int64

	// one sequence per entity type
	seq map[string]int64
}

var _ repository.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		users:       map[int64]*models.User{},
		projects:    map[int64]*models.Project{},
		members:     map[int64]*models.ProjectMember{},
		stars:       map[int64]*models.ProjectStar{},
		mentorships: map[int64]*models.Mentorship{},
		activities:  map[int64]*models.Activity{},
		ideas:       map[int64]*models.AiIdea{},
		starIndex:   map[pair]int64{},
		memberIndex: map[pair]int64{},
		seq:         map[string]int64{},
	}
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// next must be called with mu held for writing.
func (s *Store) next(kind string) int64 {
	s.seq[kind]++
	return s.seq[kind]
}

func (s *Store) requireUser(id int64) error {
	if _, ok := s.users[id]; !ok {
		return repository.NotFound("user", id)
	}
	return nil
}

func (s *Store) requireProject(id int64) error {
	if _, ok := s.projects[id]; !ok {
		return repository.NotFound("project", id)
	}
	return nil
}

func (s *Store) requireTarget(t models.TargetType, id int64) error {
	switch t {
	case models.TargetProject:
		return s.requireProject(id)
	case models.TargetMentorship:
		if _, ok := s.mentorships[id]; !ok {
			return repository.NotFound("mentorship", id)
		}
		return nil
	default:
		return s.requireUser(id)
	}
}

func cloneUser(u *models.User) models.User {
	out := *u
	out.Expertise = slices.Clone(u.Expertise)
	return out
}

func cloneProject(p *models.Project) models.Project {
	out := *p
	out.Technologies = slices.Clone(p.Technologies)
	out.Tags = slices.Clone(p.Tags)
	return out
}

func cloneMentorship(m *models.Mentorship) models.Mentorship {
	out := *m
	if m.ProjectID != nil {
		id := *m.ProjectID
		out.ProjectID = &id
	}
	return out
}

func cloneActivity(a *models.Activity) models.Activity {
	out := *a
	out.Metadata = make(map[string]any, len(a.Metadata))
	for k, v := range a.Metadata {
		out.Metadata[k] = v
	}
	return out
}

func cloneIdea(i *models.AiIdea) models.AiIdea {
	out := *i
	out.Tags = slices.Clone(i.Tags)
	out.Ideas = make([]models.ProjectIdea, len(i.Ideas))
	for n, idea := range i.Ideas {
		idea.Technologies = slices.Clone(idea.Technologies)
		out.Ideas[n] = idea
	}
	return out
}

// Users

func (s *Store) CreateUser(_ context.Context, in *models.User) (*models.User, error) {
	u, err := repository.PrepareUser(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return nil, repository.Conflict("username", u.Username)
		}
		if existing.Email == u.Email {
			return nil, repository.Conflict("email", u.Email)
		}
	}

	u.ID = s.next("user")
	u.CreatedAt = now()
	stored := cloneUser(&u)
	s.users[u.ID] = &stored
	return &u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.NotFound("user", id)
	}
	out := cloneUser(u)
	return &out, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
}

func (s *Store) GetUserWithStats(_ context.Context, id int64) (*models.UserWithStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.NotFound("user", id)
	}

	out := &models.UserWithStats{User: cloneUser(u)}
	for _, p := range s.projects {
		if p.AuthorID == id {
			out.ProjectCount++
		}
	}
	for _, m := range s.members {
		if m.UserID == id {
			out.CollaborationCount++
		}
	}
	for _, m := range s.mentorships {
		if m.MentorID == id || m.MenteeID == id {
			out.MentorshipCount++
		}
	}
	return out, nil
}

func (s *Store) ListMentors(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.User{}
	for _, u := range s.users {
		if u.Role.CanMentor() {
			out = append(out, cloneUser(u))
		}
	}
	slices.SortFunc(out, func(a, b models.User) int { return cmpInt64(a.ID, b.ID) })
	return out, nil
}

// Projects

func (s *Store) CreateProject(_ context.Context, in *models.Project) (*models.Project, error) {
	p, err := repository.PrepareProject(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUser(p.AuthorID); err != nil {
		return nil, err
	}
	p.ID = s.next("project")
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt
	stored := cloneProject(&p)
	s.projects[p.ID] = &stored
	return &p, nil
}

func (s *Store) GetProject(_ context.Context, id int64) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[id]
	if !ok {
		return nil, repository.NotFound("project", id)
	}
	out := cloneProject(p)
	return &out, nil
}

func (s *Store) UpdateProject(_ context.Context, id int64, upd models.ProjectUpdate) (*models.Project, error) {
	if err := repository.ValidateProjectUpdate(upd); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.projects[id]
	if !ok {
		return nil, repository.NotFound("project", id)
	}
	p := cloneProject(stored)
	upd.Apply(&p)
	p.Title = trim(p.Title)
	p.Description = trim(p.Description)
	p.Technologies = repository.CleanList(p.Technologies)
	p.Tags = repository.CleanList(p.Tags)
	p.UpdatedAt = now()

	next := cloneProject(&p)
	s.projects[id] = &next
	return &p, nil
}

// Stars

func (s *Store) StarProject(_ context.Context, projectID, userID int64) (*models.ProjectStar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireProject(projectID); err != nil {
		return nil, err
	}
	if err := s.requireUser(userID); err != nil {
		return nil, err
	}
	key := pair{projectID, userID}
	if _, ok := s.starIndex[key]; ok {
		return nil, repository.Conflict("star", strconv.FormatInt(projectID, 10))
	}

	star := &models.ProjectStar{ID: s.next("star"), ProjectID: projectID, UserID: userID, StarredAt: now()}
	s.stars[star.ID] = star
	s.starIndex[key] = star.ID
	s.projects[projectID].Stars++

	out := *star
	return &out, nil
}

func (s *Store) UnstarProject(_ context.Context, projectID, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{projectID, userID}
	id, ok := s.starIndex[key]
	if !ok {
		return nil
	}
	delete(s.stars, id)
	delete(s.starIndex, key)
	if p, ok := s.projects[projectID]; ok && p.Stars > 0 {
		p.Stars--
	}
	return nil
}

func (s *Store) HasStarred(_ context.Context, projectID, userID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.starIndex[pair{projectID, userID}]
	return ok, nil
}

// Members

func (s *Store) AddProjectMember(_ context.Context, in *models.ProjectMember) (*models.ProjectMember, error) {
	m, err := repository.PrepareMember(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireProject(m.ProjectID); err != nil {
		return nil, err
	}
	if err := s.requireUser(m.UserID); err != nil {
		return nil, err
	}
	key := pair{m.ProjectID, m.UserID}
	if _, ok := s.memberIndex[key]; ok {
		return nil, repository.Conflict("member", strconv.FormatInt(m.UserID, 10))
	}

	m.ID = s.next("member")
	m.JoinedAt = now()
	stored := m
	s.members[m.ID] = &stored
	s.memberIndex[key] = m.ID
	return &m, nil
}

func (s *Store) RemoveProjectMember(_ context.Context, projectID, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pair{projectID, userID}
	id, ok := s.memberIndex[key]
	if !ok {
		return false, nil
	}
	delete(s.members, id)
	delete(s.memberIndex, key)
	return true, nil
}

func (s *Store) ListProjectMembers(_ context.Context, projectID int64) ([]models.ProjectMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.ProjectMember{}
	for _, m := range s.members {
		if m.ProjectID == projectID {
			out = append(out, *m)
		}
	}
	slices.SortFunc(out, func(a, b models.ProjectMember) int { return cmpInt64(a.ID, b.ID) })
	return out, nil
}

// Mentorships

func (s *Store) CreateMentorship(_ context.Context, in *models.Mentorship) (*models.Mentorship, error) {
	m, err := repository.PrepareMentorship(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUser(m.MentorID); err != nil {
		return nil, err
	}
	if err := s.requireUser(m.MenteeID); err != nil {
		return nil, err
	}
	if m.ProjectID != nil {
		if err := s.requireProject(*m.ProjectID); err != nil {
			return nil, err
		}
	}

	m.ID = s.next("mentorship")
	m.CreatedAt = now()
	stored := cloneMentorship(&m)
	s.mentorships[m.ID] = &stored
	return &m, nil
}

func (s *Store) ListMentorships(_ context.Context, userID int64) ([]models.Mentorship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Mentorship{}
	for _, m := range s.mentorships {
		if m.MentorID == userID || m.MenteeID == userID {
			out = append(out, cloneMentorship(m))
		}
	}
	slices.SortFunc(out, func(a, b models.Mentorship) int { return newestFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID) })
	return out, nil
}

// Activities

func (s *Store) CreateActivity(_ context.Context, in *models.Activity) (*models.Activity, error) {
	a, err := repository.PrepareActivity(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUser(a.UserID); err != nil {
		return nil, err
	}
	if err := s.requireTarget(a.TargetType, a.TargetID); err != nil {
		return nil, err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	a.CreatedAt = a.CreatedAt.UTC().Truncate(time.Millisecond)
	a.ID = s.next("activity")
	stored := cloneActivity(&a)
	s.activities[a.ID] = &stored
	return &a, nil
}

// Ideas

func (s *Store) CreateAiIdea(_ context.Context, in *models.AiIdea) (*models.AiIdea, error) {
	i, err := repository.PrepareAiIdea(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireUser(i.UserID); err != nil {
		return nil, err
	}
	i.ID = s.next("idea")
	i.CreatedAt = now()
	stored := cloneIdea(&i)
	s.ideas[i.ID] = &stored
	return &i, nil
}

func (s *Store) ListAiIdeas(_ context.Context, userID int64) ([]models.AiIdea, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.AiIdea{}
	for _, i := range s.ideas {
		if i.UserID == userID {
			out = append(out, cloneIdea(i))
		}
	}
	slices.SortFunc(out, func(a, b models.AiIdea) int { return newestFirst(a.CreatedAt, a.ID, b.CreatedAt, b.ID) })
	return out, nil
}
