package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

func (r *SQLiteRepo) AddProjectMember(ctx context.Context, in *models.ProjectMember) (*models.ProjectMember, error) {
	m, err := repository.PrepareMember(in)
	if err != nil {
		return nil, err
	}
	m.JoinedAt = now()

	err = r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "projects", "project", m.ProjectID); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, "users", "user", m.UserID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO project_members (project_id, user_id, role, joined) VALUES (?, ?, ?, ?)`, m.ProjectID, m.UserID, m.Role, toMillis(m.JoinedAt))
		if err != nil {
			if isUnique(err) {
				return repository.Conflict("member", strconv.FormatInt(m.UserID, 10))
			}
			return fmt.Errorf("insert member: %w", err)
		}
		m.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *SQLiteRepo) RemoveProjectMember(ctx context.Context, projectID, userID int64) (bool, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM project_members WHERE project_id = ? AND user_id = ?`, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepo) ListProjectMembers(ctx context.Context, projectID int64) ([]models.ProjectMember, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, project_id, user_id, role, joined FROM project_members WHERE project_id = ? ORDER BY id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	out := []models.ProjectMember{}
	for rows.Next() {
		var (
			m      models.ProjectMember
			joined int64
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.UserID, &m.Role, &joined); err != nil {
			return nil, err
		}
		m.JoinedAt = fromMillis(joined)
		out = append(out, m)
	}
	return out, rows.Err()
}
