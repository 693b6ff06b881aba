package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/garnizeh/campus/pkg/models"
	"github.com/garnizeh/campus/pkg/repository"
)

const userColumns = `id, username, email, password, full_name, avatar, role, expertise, bio, rating, created`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		u         models.User
		avatar    sql.NullString
		bio       sql.NullString
		expertise string
		created   int64
	)
	if err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FullName, &avatar, &u.Role, &expertise, &bio, &u.Rating, &created); err != nil {
		return nil, err
	}

	list, err := decodeList(expertise)
	if err != nil {
		return nil, err
	}
	u.Expertise = list
	u.Avatar = avatar.String
	u.Bio = bio.String
	u.CreatedAt = fromMillis(created)
	return &u, nil
}

func (r *SQLiteRepo) CreateUser(ctx context.Context, in *models.User) (*models.User, error) {
	u, err := repository.PrepareUser(in)
	if err != nil {
		return nil, err
	}
	expertise, err := encodeList(u.Expertise)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = now()

	err = r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE username = ?`, u.Username).Scan(&one)
		if err == nil {
			return repository.Conflict("username", u.Username)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup username: %w", err)
		}

		err = tx.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email = ?`, u.Email).Scan(&one)
		if err == nil {
			return repository.Conflict("email", u.Email)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("lookup email: %w", err)
		}

		res, err := tx.ExecContext(ctx, `INSERT INTO users (username, email, password, full_name, avatar, role, expertise, bio, rating, created) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			u.Username, u.Email, u.Password, u.FullName, nullString(u.Avatar), u.Role, expertise, nullString(u.Bio), u.Rating, toMillis(u.CreatedAt))
		if err != nil {
			if isUnique(err) {
				return repository.Conflict(uniqueField(err), "")
			}
			return fmt.Errorf("insert user: %w", err)
		}
		u.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, err
	}

	r.logger.Debug("user created", "id", u.ID, "role", u.Role)
	return &u, nil
}

func (r *SQLiteRepo) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.NotFound("user", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (r *SQLiteRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", username, err)
	}
	return u, nil
}

// GetUserWithStats reads the user and the three counts in one transaction so
// they describe the same moment.
func (r *SQLiteRepo) GetUserWithStats(ctx context.Context, id int64) (*models.UserWithStats, error) {
	out := &models.UserWithStats{}
	err := r.conn.WithTx(ctx, func(tx *sql.Tx) error {
		u, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
		if errors.Is(err, sql.ErrNoRows) {
			return repository.NotFound("user", id)
		}
		if err != nil {
			return fmt.Errorf("get user %d: %w", id, err)
		}
		out.User = *u
		return userCounts(ctx, tx, id, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func userCounts(ctx context.Context, tx *sql.Tx, id int64, out *models.UserWithStats) error {
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&out.ProjectCount, `SELECT COUNT(*) FROM projects WHERE author_id = ?`, []any{id}},
		{&out.CollaborationCount, `SELECT COUNT(*) FROM project_members WHERE user_id = ?`, []any{id}},
		{&out.MentorshipCount, `SELECT COUNT(*) FROM mentorships WHERE mentor_id = ? OR mentee_id = ?`, []any{id, id}},
	}
	for _, c := range counts {
		if err := tx.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return fmt.Errorf("user %d stats: %w", id, err)
		}
	}
	return nil
}

func (r *SQLiteRepo) ListMentors(ctx context.Context) ([]models.User, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+userColumns+` FROM users WHERE role IN ('mentor', 'faculty') ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}
