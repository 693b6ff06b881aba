// Package seed loads the demo users and projects used in development.
package seed

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

type sampleUser struct {
	user     models.User
	password string
}

var sampleUsers = []sampleUser{
	{
		user: models.User{
			Username:  "arjun.sharma",
			Email:     "arjun@campus.edu",
			FullName:  "Arjun Sharma",
			Avatar:    "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?auto=format&fit=crop&w=100&h=100",
			Role:      models.RoleStudent,
			Expertise: []string{"Web Development", "React", "Node.js"},
			Bio:       "Final year IT student passionate about full-stack development",
		},
		password: "password123",
	},
	{
		user: models.User{
			Username:  "dr.rajesh.kumar",
			Email:     "rajesh.kumar@campus.edu",
			FullName:  "Dr. Rajesh Kumar",
			Avatar:    "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?auto=format&fit=crop&w=100&h=100",
			Role:      models.RoleMentor,
			Expertise: []string{"AI", "Machine Learning", "Data Science"},
			Bio:       "Professor specializing in AI and ML with 15+ years of experience",
			Rating:    4.8,
		},
		password: "mentor123",
	},
	{
		user: models.User{
			Username:  "priya.patel",
			Email:     "priya@campus.edu",
			FullName:  "Priya Patel",
			Avatar:    "https://images.unsplash.com/photo-1438761681033-6461ffad8d80?auto=format&fit=crop&w=100&h=100",
			Role:      models.RoleStudent,
			Expertise: []string{"Machine Learning", "Python", "TensorFlow"},
			Bio:       "Third year student interested in AI and sustainability",
		},
		password: "student123",
	},
}

type sampleProject struct {
	project models.Project
	author  string
	// usernames that star the project
	starredBy []string
}

var sampleProjects = []sampleProject{
	{
		project: models.Project{
			Title:        "EcoTracker",
			Description:  "A sustainability dashboard that tracks campus carbon footprint using IoT sensors and machine learning analytics.",
			Technologies: []string{"React", "Firebase", "ML"},
			Tags:         []string{"sustainability", "iot", "dashboard"},
			Difficulty:   models.DifficultyIntermediate,
			Duration:     "4-6 weeks",
			TeamSize:     "3-4 members",
			RepoLink:     "https://github.com/priya/ecotracker",
		},
		author:    "priya.patel",
		starredBy: []string{"arjun.sharma", "dr.rajesh.kumar"},
	},
	{
		project: models.Project{
			Title:        "StudyBuddy",
			Description:  "AI-powered study companion that creates personalized learning paths and connects students for collaborative study sessions.",
			Technologies: []string{"Flutter", "Gemini API", "Firestore"},
			Tags:         []string{"education", "ai", "mobile"},
			Difficulty:   models.DifficultyAdvanced,
			Duration:     "6-8 weeks",
			TeamSize:     "4-5 members",
			RepoLink:     "https://github.com/arjun/studybuddy",
		},
		author:    "arjun.sharma",
		starredBy: []string{"priya.patel"},
	},
}

// Result counts what Sample created.
type Result struct {
	Users    int
	Projects int
}

// Sample creates the demo data. Users that already exist are reused and
// their projects are not created again, so running it twice is harmless.
func Sample(ctx context.Context, store repository.Store) (Result, error) {
	var res Result
	ids := make(map[string]int64, len(sampleUsers))
	fresh := make(map[string]bool, len(sampleUsers))

	for _, su := range sampleUsers {
		existing, err := store.GetUserByUsername(ctx, su.user.Username)
		if err == nil {
			ids[su.user.Username] = existing.ID
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return res, err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return res, fmt.Errorf("hash password for %s: %w", su.user.Username, err)
		}
		u := su.user
		u.Password = string(hash)
		created, err := store.CreateUser(ctx, &u)
		if err != nil {
			return res, fmt.Errorf("create user %s: %w", u.Username, err)
		}
		ids[u.Username] = created.ID
		fresh[u.Username] = true
		res.Users++
	}

	for _, sp := range sampleProjects {
		if !fresh[sp.author] {
			continue
		}
		p := sp.project
		p.AuthorID = ids[sp.author]
		created, err := store.CreateProject(ctx, &p)
		if err != nil {
			return res, fmt.Errorf("create project %s: %w", p.Title, err)
		}
		for _, fan := range sp.starredBy {
			if _, err := store.StarProject(ctx, created.ID, ids[fan]); err != nil {
				return res, fmt.Errorf("star %s: %w", p.Title, err)
			}
		}
		if _, err := store.CreateActivity(ctx, &models.Activity{
			UserID:     p.AuthorID,
			Action:     models.ActionCreatedProject,
			TargetType: models.TargetProject,
			TargetID:   created.ID,
			Metadata:   map[string]any{"projectTitle": created.Title},
		}); err != nil {
			return res, fmt.Errorf("record activity for %s: %w", p.Title, err)
		}
		res.Projects++
	}
	return res, nil
}
