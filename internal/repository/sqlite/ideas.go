package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

func (r *SQLiteRepo) CreateAiIdea(ctx context.Context, in *models.AiIdea) (*models.AiIdea, error) {
	i, err := repository.PrepareAiIdea(in)
	if err != nil {
		return nil, err
	}
	tags, err := encodeList(i.Tags)
	if err != nil {
		return nil, err
	}
	ideas, err := json.Marshal(i.Ideas)
	if err != nil {
		return nil, fmt.Errorf("encode ideas: %w", err)
	}
	i.CreatedAt = now()

	err = r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		if err := mustExist(ctx, tx, "users", "user", i.UserID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, `INSERT INTO ai_ideas (user_id, tags, difficulty, ideas, created) VALUES (?, ?, ?, ?, ?)`,
			i.UserID, tags, i.Difficulty, string(ideas), toMillis(i.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert ai idea: %w", err)
		}
		i.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *SQLiteRepo) ListAiIdeas(ctx context.Context, userID int64) ([]models.AiIdea, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, user_id, tags, difficulty, ideas, created FROM ai_ideas WHERE user_id = ? ORDER BY created DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list ai ideas: %w", err)
	}
	defer rows.Close()

	out := []models.AiIdea{}
	for rows.Next() {
		var (
			i           models.AiIdea
			tags, ideas string
			created     int64
		)
		if err := rows.Scan(&i.ID, &i.UserID, &tags, &i.Difficulty, &ideas, &created); err != nil {
			return nil, err
		}
		if i.Tags, err = decodeList(tags); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ideas), &i.Ideas); err != nil {
			return nil, fmt.Errorf("decode ideas of %d: %w", i.ID, err)
		}
		i.CreatedAt = fromMillis(created)
		out = append(out, i)
	}
	return out, rows.Err()
}
