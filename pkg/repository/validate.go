package repository

import (
	"encoding/json"
	"net/mail"
	"strings"

	"github.com/garnizeh/campus/pkg/models"
)

// The Prepare* helpers validate create inputs and return a copy with schema
// defaults applied. Stores call them before touching any state, so both
// implementations reject the same inputs.

func PrepareUser(in *models.User) (models.User, error) {
	if in == nil {
		return models.User{}, invalid("user", "is nil")
	}
	u := *in
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)

	if u.Username == "" {
		return u, invalid("username", "required")
	}
	if u.Email == "" {
		return u, invalid("email", "required")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return u, invalid("email", "malformed address")
	}
	if u.Password == "" {
		return u, invalid("password", "required")
	}
	if u.FullName == "" {
		return u, invalid("fullName", "required")
	}
	if u.Role == "" {
		u.Role = models.RoleStudent
	}
	if !u.Role.Valid() {
		return u, invalid("role", "must be student, mentor or faculty")
	}
	if u.Rating < 0 || u.Rating > 5 {
		return u, invalid("rating", "must be between 0 and 5")
	}
	u.Expertise = CleanList(u.Expertise)
	return u, nil
}

func PrepareProject(in *models.Project) (models.Project, error) {
	if in == nil {
		return models.Project{}, invalid("project", "is nil")
	}
	p := *in
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)

	if p.Title == "" {
		return p, invalid("title", "required")
	}
	if p.Description == "" {
		return p, invalid("description", "required")
	}
	if p.AuthorID <= 0 {
		return p, invalid("authorId", "required")
	}
	if !p.Difficulty.Valid() {
		return p, invalid("difficulty", "must be beginner, intermediate or advanced")
	}
	if p.Status == "" {
		p.Status = models.ProjectActive
	}
	if !p.Status.Valid() {
		return p, invalid("status", "must be active, completed or archived")
	}
	p.Technologies = CleanList(p.Technologies)
	p.Tags = CleanList(p.Tags)
	p.Stars = 0
	return p, nil
}

func ValidateProjectUpdate(upd models.ProjectUpdate) error {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if upd.Description != nil && strings.TrimSpace(*upd.Description) == "" {
		return invalid("description", "must not be empty")
	}
	if upd.Difficulty != nil && !upd.Difficulty.Valid() {
		return invalid("difficulty", "must be beginner, intermediate or advanced")
	}
	if upd.Status != nil && !upd.Status.Valid() {
		return invalid("status", "must be active, completed or archived")
	}
	return nil
}

func PrepareMember(in *models.ProjectMember) (models.ProjectMember, error) {
	if in == nil {
		return models.ProjectMember{}, invalid("member", "is nil")
	}
	m := *in
	if m.ProjectID <= 0 {
		return m, invalid("projectId", "required")
	}
	if m.UserID <= 0 {
		return m, invalid("userId", "required")
	}
	if m.Role == "" {
		m.Role = models.MemberMember
	}
	if !m.Role.Valid() {
		return m, invalid("role", "must be owner or member")
	}
	return m, nil
}

func PrepareMentorship(in *models.Mentorship) (models.Mentorship, error) {
	if in == nil {
		return models.Mentorship{}, invalid("mentorship", "is nil")
	}
	m := *in
	if m.MentorID <= 0 {
		return m, invalid("mentorId", "required")
	}
	if m.MenteeID <= 0 {
		return m, invalid("menteeId", "required")
	}
	if m.MentorID == m.MenteeID {
		return m, invalid("menteeId", "must differ from mentorId")
	}
	if m.ProjectID != nil && *m.ProjectID <= 0 {
		m.ProjectID = nil
	}
	if m.Status == "" {
		m.Status = models.MentorshipPending
	}
	if !m.Status.Valid() {
		return m, invalid("status", "must be pending, active or completed")
	}
	return m, nil
}

func PrepareActivity(in *models.Activity) (models.Activity, error) {
	if in == nil {
		return models.Activity{}, invalid("activity", "is nil")
	}
	a := *in
	a.Action = strings.TrimSpace(a.Action)
	if a.UserID <= 0 {
		return a, invalid("userId", "required")
	}
	if a.Action == "" {
		return a, invalid("action", "required")
	}
	if !a.TargetType.Valid() {
		return a, invalid("targetType", "must be project, mentorship or user")
	}
	if a.TargetID <= 0 {
		return a, invalid("targetId", "required")
	}
	meta, err := jsonBag(a.Metadata)
	if err != nil {
		return a, invalid("metadata", "must be a JSON object")
	}
	a.Metadata = meta
	return a, nil
}

// jsonBag returns m as it reads back from JSON, so numbers are float64
// whichever store holds it.
func jsonBag(m map[string]any) (map[string]any, error) {
	out := map[string]any{}
	if len(m) == 0 {
		return out, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func PrepareAiIdea(in *models.AiIdea) (models.AiIdea, error) {
	if in == nil {
		return models.AiIdea{}, invalid("idea", "is nil")
	}
	i := *in
	if i.UserID <= 0 {
		return i, invalid("userId", "required")
	}
	i.Tags = CleanList(i.Tags)
	if len(i.Tags) == 0 {
		return i, invalid("tags", "required")
	}
	if !i.Difficulty.Valid() {
		return i, invalid("difficulty", "must be beginner, intermediate or advanced")
	}
	if i.Ideas == nil {
		i.Ideas = []models.ProjectIdea{}
	}
	return i, nil
}

// CleanList trims entries, drops empty ones and never returns nil.
func CleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
