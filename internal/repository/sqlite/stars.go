package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

// StarProject inserts the star row and bumps projects.stars in one
// transaction.
func (r *SQLiteRepo) StarProject(ctx context.Context, projectID, userID int64) (*models.ProjectStar, error) {
	star := &models.ProjectStar{ProjectID: projectID, UserID: userID, StarredAt: now()}

	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "projects", "project", projectID); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, "users", "user", userID); err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO project_stars (project_id, user_id, starred) VALUES (?, ?, ?)`, projectID, userID, toMillis(star.StarredAt))
		if err != nil {
			if isUnique(err) {
				return repository.Conflict("star", strconv.FormatInt(projectID, 10))
			}
			return fmt.Errorf("insert star: %w", err)
		}
		if star.ID, err = res.LastInsertId(); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `UPDATE projects SET stars = stars + 1 WHERE id = ?`, projectID); err != nil {
			return fmt.Errorf("increment stars: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return star, nil
}

func (r *SQLiteRepo) UnstarProject(ctx context.Context, projectID, userID int64) error {
	return r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM project_stars WHERE project_id = ? AND user_id = ?`, projectID, userID)
		if err != nil {
			return fmt.Errorf("delete star: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}

		if _, err := tx.ExecContext(ctx, `UPDATE projects SET stars = MAX(stars - 1, 0) WHERE id = ?`, projectID); err != nil {
			return fmt.Errorf("decrement stars: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepo) HasStarred(ctx context.Context, projectID, userID int64) (bool, error) {
	var one int
	err := r.conn.QueryRow(ctx, `SELECT 1 FROM project_stars WHERE project_id = ? AND user_id = ?`, projectID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("has starred: %w", err)
	}
	return true, nil
}
