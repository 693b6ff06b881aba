package repository

import (
	"context"

	"github.com/garnizeh/campus/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookups of absent rows return an error wrapping ErrNotFound. Creates return
// the stored value with id, timestamps and schema defaults filled in.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserWithStats(ctx context.Context, id int64) (*models.UserWithStats, error)
	// ListMentors returns users whose role is mentor or faculty, by id.
	ListMentors(ctx context.Context) ([]models.User, error)
}

type ProjectRepo interface {
	CreateProject(ctx context.Context, p *models.Project) (*models.Project, error)
	GetProject(ctx context.Context, id int64) (*models.Project, error)
	UpdateProject(ctx context.Context, id int64, upd models.ProjectUpdate) (*models.Project, error)
	GetProjectWithAuthor(ctx context.Context, id int64) (*models.ProjectWithAuthor, error)
	// ListProjectsWithAuthors returns projects newest first. Featured keeps
	// projects above models.FeaturedThreshold; filtering happens before the limit.
	ListProjectsWithAuthors(ctx context.Context, f models.ProjectFilter) ([]models.ProjectWithAuthor, error)
}

// StarRepo keeps Project.Stars equal to the number of star rows.
type StarRepo interface {
	// StarProject fails with ErrConflict when the user already starred the project.
	StarProject(ctx context.Context, projectID, userID int64) (*models.ProjectStar, error)
	// UnstarProject is a no-op when no star exists.
	UnstarProject(ctx context.Context, projectID, userID int64) error
	HasStarred(ctx context.Context, projectID, userID int64) (bool, error)
}

type MemberRepo interface {
	// AddProjectMember fails with ErrConflict when the user already joined.
	AddProjectMember(ctx context.Context, m *models.ProjectMember) (*models.ProjectMember, error)
	// RemoveProjectMember reports whether a membership was removed; an
	// absent one is not an error.
	RemoveProjectMember(ctx context.Context, projectID, userID int64) (bool, error)
	ListProjectMembers(ctx context.Context, projectID int64) ([]models.ProjectMember, error)
}

type MentorshipRepo interface {
	CreateMentorship(ctx context.Context, m *models.Mentorship) (*models.Mentorship, error)
	// ListMentorships returns mentorships where the user is mentor or mentee.
	ListMentorships(ctx context.Context, userID int64) ([]models.Mentorship, error)
}

type ActivityRepo interface {
	CreateActivity(ctx context.Context, a *models.Activity) (*models.Activity, error)
	// ListActivitiesWithUsers returns the feed newest first; limit <= 0 means all.
	ListActivitiesWithUsers(ctx context.Context, limit int) ([]models.ActivityWithUser, error)
}

type IdeaRepo interface {
	CreateAiIdea(ctx context.Context, i *models.AiIdea) (*models.AiIdea, error)
	ListAiIdeas(ctx context.Context, userID int64) ([]models.AiIdea, error)
}

// Store is the full entity store.
type Store interface {
	UserRepo
	ProjectRepo
	StarRepo
	MemberRepo
	MentorshipRepo
	ActivityRepo
	IdeaRepo
}
