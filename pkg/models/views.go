package models

// Read-only composite projections. None of these are persisted.

type AuthorSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar,omitempty"`
	Username string `json:"username"`
}

func SummaryOf(u *User) AuthorSummary {
	return AuthorSummary{ID: u.ID, FullName: u.FullName, Avatar: u.Avatar, Username: u.Username}
}

type ProjectWithAuthor struct {
	Project
	Author    AuthorSummary `json:"author"`
	StarCount int64         `json:"starCount"`
	IsStarred bool          `json:"isStarred,omitempty"`
}

type UserWithStats struct {
	User
	ProjectCount       int64 `json:"projectCount"`
	CollaborationCount int64 `json:"collaborationCount"`
	MentorshipCount    int64 `json:"mentorshipCount"`
}

type ActivityWithUser struct {
	Activity
	User AuthorSummary `json:"user"`
}

// FeaturedThreshold is the star count a project must exceed to be featured.
const FeaturedThreshold = 15

type ProjectFilter struct {
	Featured bool
	// Limit <= 0 means no limit.
	Limit int
	// ViewerID, when set, fills IsStarred for that user.
	ViewerID int64
}

type MentorMatch struct {
	ID          int64    `json:"id"`
	FullName    string   `json:"fullName"`
	Avatar      string   `json:"avatar,omitempty"`
	Expertise   []string `json:"expertise"`
	Bio         string   `json:"bio,omitempty"`
	Rating      float64  `json:"rating"`
	MatchScore  int      `json:"matchScore"`
	MatchReason string   `json:"matchReason"`
}

type ProjectMatch struct {
	ProjectWithAuthor
	MatchScore  int    `json:"matchScore"`
	MatchReason string `json:"matchReason"`
}
