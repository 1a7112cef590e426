package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/tool-shop/internal/domain/models"
)

type UserStorage interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpsertUser(ctx context.Context, user *models.User) (*UpdateResult, error)
	SetRole(ctx context.Context, email, role string) (*UpdateResult, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: db}
}

func (r *userRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, email, name, role FROM users ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &user.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// получение уже существующего пользователя
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	row := r.db.QueryRowContext(ctx, "SELECT id, email, name, role FROM users WHERE email = $1", email)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &user.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// UpsertUser создаёт пользователя или обновляет его имя. Роль здесь не меняется никогда
func (r *userRepository) UpsertUser(ctx context.Context, user *models.User) (*UpdateResult, error) {
	var (
		id       int64
		inserted bool
	)
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, name) VALUES ($1, $2)
		 ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name, updated_at = NOW()
		 RETURNING id, (xmax = 0) AS inserted`,
		user.Email, user.Name,
	).Scan(&id, &inserted)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	user.ID = id
	if inserted {
		return &UpdateResult{UpsertedID: &id}, nil
	}
	return &UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func (r *userRepository) SetRole(ctx context.Context, email, role string) (*UpdateResult, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE users SET role = $1, updated_at = NOW() WHERE email = $2 AND role IS DISTINCT FROM $1",
		role, email,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 1 {
		return &UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	// роль уже выставлена либо пользователя нет - различаем отдельным запросом
	if _, err := r.GetUserByEmail(ctx, email); err != nil {
		return nil, err
	}
	return &UpdateResult{MatchedCount: 1}, nil
}
