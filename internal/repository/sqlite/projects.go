package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

const projectColumns = `p.id, p.title, p.description, p.author_id, p.technologies, p.tags, p.difficulty, p.duration, p.team_size, p.repo_link, p.image_url, p.stars, p.status, p.created, p.updated`

// projectDest collects the nullable and encoded columns of a project row.
type projectDest struct {
	p                  models.Project
	technologies, tags string
	duration, teamSize sql.NullString
	repoLink, imageURL sql.NullString
	created, updated   int64
}

func (d *projectDest) targets() []any {
	return []any{&d.p.ID, &d.p.Title, &d.p.Description, &d.p.AuthorID, &d.technologies, &d.tags, &d.p.Difficulty,
		&d.duration, &d.teamSize, &d.repoLink, &d.imageURL, &d.p.Stars, &d.p.Status, &d.created, &d.updated}
}

func (d *projectDest) project() (models.Project, error) {
	p := d.p
	var err error
	if p.Technologies, err = decodeList(d.technologies); err != nil {
		return p, err
	}
	if p.Tags, err = decodeList(d.tags); err != nil {
		return p, err
	}
	p.Duration = d.duration.String
	p.TeamSize = d.teamSize.String
	p.RepoLink = d.repoLink.String
	p.ImageURL = d.imageURL.String
	p.CreatedAt = fromMillis(d.created)
	p.UpdatedAt = fromMillis(d.updated)
	return p, nil
}

func scanProject(s scanner) (*models.Project, error) {
	var d projectDest
	if err := s.Scan(d.targets()...); err != nil {
		return nil, err
	}
	p, err := d.project()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteRepo) CreateProject(ctx context.Context, in *models.Project) (*models.Project, error) {
	p, err := repository.PrepareProject(in)
	if err != nil {
		return nil, err
	}
	techs, err := encodeList(p.Technologies)
	if err != nil {
		return nil, err
	}
	tags, err := encodeList(p.Tags)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = now()
	p.UpdatedAt = p.CreatedAt

	err = r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "users", "user", p.AuthorID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO projects (title, description, author_id, technologies, tags, difficulty, duration, team_size, repo_link, image_url, stars, status, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
			p.Title, p.Description, p.AuthorID, techs, tags, p.Difficulty, nullString(p.Duration), nullString(p.TeamSize),
			nullString(p.RepoLink), nullString(p.ImageURL), p.Status, toMillis(p.CreatedAt), toMillis(p.UpdatedAt))
		if err != nil {
			return fmt.Errorf("insert project: %w", err)
		}
		p.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("project created", "id", p.ID, "author_id", p.AuthorID)
	return &p, nil
}

func (r *SQLiteRepo) GetProject(ctx context.Context, id int64) (*models.Project, error) {
	p, err := scanProject(r.conn.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.NotFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return p, nil
}

func (r *SQLiteRepo) UpdateProject(ctx context.Context, id int64, upd models.ProjectUpdate) (*models.Project, error) {
	if err := repository.ValidateProjectUpdate(upd); err != nil {
		return nil, err
	}

	var out *models.Project
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		p, err := scanProject(tx.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects p WHERE p.id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return repository.NotFound("project", id)
		}
		if err != nil {
			return fmt.Errorf("load project %d: %w", id, err)
		}

		upd.Apply(p)
		p.Title = strings.TrimSpace(p.Title)
		p.Description = strings.TrimSpace(p.Description)
		p.Technologies = repository.CleanList(p.Technologies)
		p.Tags = repository.CleanList(p.Tags)
		p.UpdatedAt = now()

		techs, err := encodeList(p.Technologies)
		if err != nil {
			return err
		}
		tags, err := encodeList(p.Tags)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `UPDATE projects SET title = ?, description = ?, technologies = ?, tags = ?, difficulty = ?, duration = ?, team_size = ?, repo_link = ?, image_url = ?, status = ?, updated = ? WHERE id = ?`,
			p.Title, p.Description, techs, tags, p.Difficulty, nullString(p.Duration), nullString(p.TeamSize),
			nullString(p.RepoLink), nullString(p.ImageURL), p.Status, toMillis(p.UpdatedAt), id)
		if err != nil {
			return fmt.Errorf("update project %d: %w", id, err)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// withAuthorQuery joins the author and counts star rows. The single bound
// parameter is the viewer id used for is_starred (0 matches nobody).
const withAuthorQuery = `SELECT ` + projectColumns + `, u.id, u.full_name, u.avatar, u.username,
	(SELECT COUNT(*) FROM project_stars s WHERE s.project_id = p.id),
	EXISTS (SELECT 1 FROM project_stars s WHERE s.project_id = p.id AND s.user_id = ?)
FROM projects p
JOIN users u ON u.id = p.author_id`

func scanProjectWithAuthor(s scanner) (*models.ProjectWithAuthor, error) {
	var (
		d       projectDest
		out     models.ProjectWithAuthor
		avatar  sql.NullString
		starred bool
	)
	targets := append(d.targets(), &out.Author.ID, &out.Author.FullName, &avatar, &out.Author.Username, &out.StarCount, &starred)
	if err := s.Scan(targets...); err != nil {
		return nil, err
	}
	p, err := d.project()
	if err != nil {
		return nil, err
	}
	out.Project = p
	out.Author.Avatar = avatar.String
	out.IsStarred = starred
	return &out, nil
}

func (r *SQLiteRepo) GetProjectWithAuthor(ctx context.Context, id int64) (*models.ProjectWithAuthor, error) {
	pw, err := scanProjectWithAuthor(r.conn.QueryRow(ctx, withAuthorQuery+` WHERE p.id = ?`, 0, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.NotFound("project", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project %d with author: %w", id, err)
	}
	return pw, nil
}

func (r *SQLiteRepo) ListProjectsWithAuthors(ctx context.Context, f models.ProjectFilter) ([]models.ProjectWithAuthor, error) {
	q := withAuthorQuery
	args := []any{f.ViewerID}
	if f.Featured {
		q += ` WHERE p.stars > ?`
		args = append(args, models.FeaturedThreshold)
	}
	q += ` ORDER BY p.created DESC, p.id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := []models.ProjectWithAuthor{}
	for rows.Next() {
		pw, err := scanProjectWithAuthor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pw)
	}
	return out, rows.Err()
}
