// Package matching ranks mentors and projects against a student's tags
// without any external service. Every function is pure: identical inputs
// always produce identical output.
package matching

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/garnizeh/campus/pkg/models"
)

const (
	// MaxScore caps every heuristic score.
	MaxScore = 95

	DefaultMentorLimit  = 3
	DefaultProjectLimit = 5
)

// folder compares strings case-insensitively. A cases.Caser keeps state, so
// each ranking call builds its own.
type folder struct {
	c cases.Caser
}

func newFolder() *folder {
	return &folder{c: cases.Fold()}
}

func (f *folder) all(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, f.c.String(s))
		}
	}
	return out
}

// overlapping returns the candidates that contain, or are contained in, any
// of the folded tags. Order follows candidates.
func (f *folder) overlapping(candidates, foldedTags []string) []string {
	var out []string
	for _, c := range candidates {
		fc := f.c.String(strings.TrimSpace(c))
		if fc == "" {
			continue
		}
		for _, t := range foldedTags {
			if strings.Contains(fc, t) || strings.Contains(t, fc) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

func score(overlap, tagCount int, bonus float64) int {
	raw := float64(overlap)/float64(max(tagCount, 1))*100 + bonus
	s := int(math.Round(math.Min(MaxScore, raw)))
	return min(max(s, 0), MaxScore)
}

func joinTwo(items []string) string {
	if len(items) > 2 {
		items = items[:2]
	}
	return strings.Join(items, " and ")
}

// MentorMatches scores every mentor or faculty member in pool against tags and
// returns the best limit of them (DefaultMentorLimit when limit <= 0), highest
// score first, ties by id.
func MentorMatches(tags []string, pool []models.User, limit int) []models.MentorMatch {
	if limit <= 0 {
		limit = DefaultMentorLimit
	}
	f := newFolder()
	folded := f.all(tags)

	out := []models.MentorMatch{}
	for _, u := range pool {
		if !u.Role.CanMentor() {
			continue
		}
		hits := f.overlapping(u.Expertise, folded)
		out = append(out, models.MentorMatch{
			ID:          u.ID,
			FullName:    u.FullName,
			Avatar:      u.Avatar,
			Expertise:   slices.Clone(u.Expertise),
			Bio:         u.Bio,
			Rating:      u.Rating,
			MatchScore:  score(len(hits), len(folded), u.Rating*10),
			MatchReason: mentorReason(hits, u),
		})
	}

	slices.SortFunc(out, func(a, b models.MentorMatch) int {
		if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func mentorReason(hits []string, u models.User) string {
	rating := strconv.FormatFloat(u.Rating, 'f', -1, 64)
	areas := hits
	if len(areas) == 0 {
		areas = u.Expertise
	}
	if len(areas) == 0 {
		return fmt.Sprintf("Experienced %s with a %s/5 rating", u.Role, rating)
	}
	return fmt.Sprintf("Strong expertise match in %s with excellent track record (%s/5 rating)", joinTwo(areas), rating)
}

// ProjectMatches ranks non-archived projects whose technologies or tags
// overlap skills. Projects without any overlap are left out. Stars add up to
// ten points; ties go to the more starred project, then the lower id.
func ProjectMatches(skills []string, pool []models.ProjectWithAuthor, limit int) []models.ProjectMatch {
	if limit <= 0 {
		limit = DefaultProjectLimit
	}
	f := newFolder()
	folded := f.all(skills)

	out := []models.ProjectMatch{}
	for _, p := range pool {
		if p.Status == models.ProjectArchived {
			continue
		}
		terms := slices.Concat(p.Technologies, p.Tags)
		hits := f.overlapping(terms, folded)
		if len(hits) == 0 {
			continue
		}
		out = append(out, models.ProjectMatch{
			ProjectWithAuthor: p,
			MatchScore:        score(len(hits), len(folded), float64(min(p.Stars, 10))),
			MatchReason:       fmt.Sprintf("Uses %s from your skill set", joinTwo(hits)),
		})
	}

	slices.SortFunc(out, func(a, b models.ProjectMatch) int {
		if c := cmp.Compare(b.MatchScore, a.MatchScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Stars, a.Stars); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
