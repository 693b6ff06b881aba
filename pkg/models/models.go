package models

import "time"

// Domain models matching the database schema in db/migrations/00001_init.sql

type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RoleFaculty Role = "faculty"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleMentor, RoleFaculty:
		return true
	}
	return false
}

// CanMentor reports whether users with this role appear in the mentor pool.
func (r Role) CanMentor() bool {
	return r == RoleMentor || r == RoleFaculty
}

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectCompleted, ProjectArchived:
		return true
	}
	return false
}

type MemberRole string

const (
	MemberOwner  MemberRole = "owner"
	MemberMember MemberRole = "member"
)

func (r MemberRole) Valid() bool {
	return r == MemberOwner || r == MemberMember
}

type MentorshipStatus string

const (
	MentorshipPending   MentorshipStatus = "pending"
	MentorshipActive    MentorshipStatus = "active"
	MentorshipCompleted MentorshipStatus = "completed"
)

func (s MentorshipStatus) Valid() bool {
	switch s {
	case MentorshipPending, MentorshipActive, MentorshipCompleted:
		return true
	}
	return false
}

type TargetType string

const (
	TargetProject    TargetType = "project"
	TargetMentorship TargetType = "mentorship"
	TargetUser       TargetType = "user"
)

func (t TargetType) Valid() bool {
	switch t {
	case TargetProject, TargetMentorship, TargetUser:
		return true
	}
	return false
}

// Activity actions recorded by the API layer.
const (
	ActionCreatedProject      = "created_project"
	ActionJoinedProject       = "joined_project"
	ActionLeftProject         = "left_project"
	ActionStarredProject      = "starred_project"
	ActionRequestedMentorship = "requested_mentorship"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	FullName  string    `json:"fullName"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      Role      `json:"role"`
	Expertise []string  `json:"expertise"`
	Bio       string    `json:"bio,omitempty"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
}

type Project struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	AuthorID     int64         `json:"authorId"`
	Technologies []string      `json:"technologies"`
	Tags         []string      `json:"tags"`
	Difficulty   Difficulty    `json:"difficulty"`
	Duration     string        `json:"duration,omitempty"`
	TeamSize     string        `json:"teamSize,omitempty"`
	RepoLink     string        `json:"repoLink,omitempty"`
	ImageURL     string        `json:"imageUrl,omitempty"`
	Stars        int64         `json:"stars"`
	Status       ProjectStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ProjectUpdate carries a partial update; nil fields are left untouched.
// Stars and AuthorID are not updatable.
type ProjectUpdate struct {
	Title        *string        `json:"title,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Technologies []string       `json:"technologies,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Difficulty   *Difficulty    `json:"difficulty,omitempty"`
	Duration     *string        `json:"duration,omitempty"`
	TeamSize     *string        `json:"teamSize,omitempty"`
	RepoLink     *string        `json:"repoLink,omitempty"`
	ImageURL     *string        `json:"imageUrl,omitempty"`
	Status       *ProjectStatus `json:"status,omitempty"`
}

// Apply copies the set fields of u onto p.
func (u ProjectUpdate) Apply(p *Project) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Technologies != nil {
		p.Technologies = u.Technologies
	}
	if u.Tags != nil {
		p.Tags = u.Tags
	}
	if u.Difficulty != nil {
		p.Difficulty = *u.Difficulty
	}
	if u.Duration != nil {
		p.Duration = *u.Duration
	}
	if u.TeamSize != nil {
		p.TeamSize = *u.TeamSize
	}
	if u.RepoLink != nil {
		p.RepoLink = *u.RepoLink
	}
	if u.ImageURL != nil {
		p.ImageURL = *u.ImageURL
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
}

type ProjectMember struct {
	ID        int64      `json:"id"`
	ProjectID int64      `json:"projectId"`
	UserID    int64      `json:"userId"`
	Role      MemberRole `json:"role"`
	JoinedAt  time.Time  `json:"joinedAt"`
}

type ProjectStar struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectId"`
	UserID    int64     `json:"userId"`
	StarredAt time.Time `json:"starredAt"`
}

type Mentorship struct {
	ID        int64            `json:"id"`
	MentorID  int64            `json:"mentorId"`
	MenteeID  int64            `json:"menteeId"`
	ProjectID *int64           `json:"projectId,omitempty"`
	Status    MentorshipStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}

type Activity struct {
	ID         int64          `json:"id"`
	UserID     int64          `json:"userId"`
	Action     string         `json:"action"`
	TargetType TargetType     `json:"targetType"`
	TargetID   int64          `json:"targetId"`
	Metadata   map[string]any `json:"metadata"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type AiIdea struct {
	ID         int64         `json:"id"`
	UserID     int64         `json:"userId"`
	Tags       []string      `json:"tags"`
	Difficulty Difficulty    `json:"difficulty"`
	Ideas      []ProjectIdea `json:"ideas"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// ProjectIdea is one generated project suggestion.
type ProjectIdea struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Technologies []string   `json:"technologies"`
	Duration     string     `json:"duration"`
	TeamSize     string     `json:"teamSize"`
	Difficulty   Difficulty `json:"difficulty"`
	Architecture string     `json:"architecture,omitempty"`
}
