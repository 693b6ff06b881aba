package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

var targetTables = map[models.TargetType]string{
	models.TargetProject:    "projects",
	models.TargetMentorship: "mentorships",
	models.TargetUser:       "users",
}

func (r *SQLiteRepo) CreateActivity(ctx context.Context, in *models.Activity) (*models.Activity, error) {
	a, err := repository.PrepareActivity(in)
	if err != nil {
		return nil, err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	a.CreatedAt = a.CreatedAt.UTC().Truncate(time.Millisecond)
	meta, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}

	err = r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "users", "user", a.UserID); err != nil {
			return err
		}
		if err := mustExist(ctx, tx, targetTables[a.TargetType], string(a.TargetType), a.TargetID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO activities (user_id, action, target_type, target_id, metadata, created) VALUES (?, ?, ?, ?, ?, ?)`,
			a.UserID, a.Action, a.TargetType, a.TargetID, string(meta), toMillis(a.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}
		a.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *SQLiteRepo) ListActivitiesWithUsers(ctx context.Context, limit int) ([]models.ActivityWithUser, error) {
	q := `SELECT a.id, a.user_id, a.action, a.target_type, a.target_id, a.metadata, a.created, u.id, u.full_name, u.avatar, u.username
FROM activities a
JOIN users u ON u.id = a.user_id
ORDER BY a.created DESC, a.id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	out := []models.ActivityWithUser{}
	for rows.Next() {
		var (
			aw      models.ActivityWithUser
			meta    string
			created int64
			avatar  sql.NullString
		)
		if err := rows.Scan(&aw.ID, &aw.UserID, &aw.Action, &aw.TargetType, &aw.TargetID, &meta, &created,
			&aw.User.ID, &aw.User.FullName, &avatar, &aw.User.Username); err != nil {
			return nil, err
		}
		aw.Metadata = map[string]any{}
		if meta != "" {
			if err := json.Unmarshal([]byte(meta), &aw.Metadata); err != nil {
				return nil, fmt.Errorf("decode metadata of activity %d: %w", aw.ID, err)
			}
		}
		aw.CreatedAt = fromMillis(created)
		aw.User.Avatar = avatar.String
		out = append(out, aw)
	}
	return out, rows.Err()
}
