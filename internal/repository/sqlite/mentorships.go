package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

func (r *SQLiteRepo) CreateMentorship(ctx context.Context, in *models.Mentorship) (*models.Mentorship, error) {
	m, err := repository.PrepareMentorship(in)
	if err != nil {
		return nil, err
	}
	m.CreatedAt = now()

	err = r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "users", "user", m.MentorID); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, "users", "user", m.MenteeID); err != nil {
			return err
		}
		var project sql.NullInt64
		if m.ProjectID != nil {
			if err := mustExist(ctx, tx, "projects", "project", *m.ProjectID); err != nil {
				return err
			}
			project = sql.NullInt64{Int64: *m.ProjectID, Valid: true}
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO mentorships (mentor_id, mentee_id, project_id, status, created) VALUES (?, ?, ?, ?, ?)`,
			m.MentorID, m.MenteeID, project, m.Status, toMillis(m.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert mentorship: %w", err)
		}
		m.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SQLiteRepo) ListMentorships(ctx context.Context, userID int64) ([]models.Mentorship, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, mentor_id, mentee_id, project_id, status, created FROM mentorships WHERE mentor_id = ? OR mentee_id = ? ORDER BY created DESC, id DESC`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("list mentorships: %w", err)
	}
	defer rows.Close()

	out := []models.Mentorship{}
	for rows.Next() {
		var (
			m       models.Mentorship
			project sql.NullInt64
			created int64
		)
		if err := rows.Scan(&m.ID, &m.MentorID, &m.MenteeID, &project, &m.Status, &created); err != nil {
			return nil, err
		}
		if project.Valid {
			id := project.Int64
			m.ProjectID = &id
		}
		m.CreatedAt = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}
