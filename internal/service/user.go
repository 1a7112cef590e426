package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/linemk/tool-shop/internal/domain/models"
	security "github.com/linemk/tool-shop/internal/jwt-new"
	"github.com/linemk/tool-shop/internal/storage"
)

// LoginResult - результат upsert пользователя вместе со свежим токеном
type LoginResult struct {
	Result      *storage.UpdateResult
	AccessToken string
}

type UserService interface {
	ListUsers(ctx context.Context) ([]*models.User, error)
	// Login создаёт или обновляет пользователя по email и всегда выдаёт новый токен
	Login(ctx context.Context, user *models.User) (*LoginResult, error)
	Promote(ctx context.Context, email string) (*storage.UpdateResult, error)
	IsAdmin(ctx context.Context, email string) (bool, error)
}

type userService struct {
	log       *slog.Logger
	userRepo  storage.UserStorage
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewUserService(log *slog.Logger, userRepo storage.UserStorage, jwtSecret []byte, tokenTTL time.Duration) UserService {
	return &userService{
		log:       log,
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *userService) ListUsers(ctx context.Context) ([]*models.User, error) {
	const op = "service.UserService.ListUsers"

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		s.log.Error("failed to list users", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

func (s *userService) Login(ctx context.Context, user *models.User) (*LoginResult, error) {
	const op = "service.UserService.Login"
	logger := s.log.With(slog.String("op", op), slog.String("email", user.Email))

	// роль через этот путь не меняется
	user.Role = ""

	res, err := s.userRepo.UpsertUser(ctx, user)
	if err != nil {
		logger.Error("failed to upsert user", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to upsert user: %w", op, err)
	}

	token, err := security.NewToken(user.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		logger.Error("failed to generate token", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to generate token: %w", op, err)
	}

	logger.Info("user logged in", slog.Bool("created", res.UpsertedID != nil))
	return &LoginResult{Result: res, AccessToken: token}, nil
}

func (s *userService) Promote(ctx context.Context, email string) (*storage.UpdateResult, error) {
	const op = "service.UserService.Promote"

	res, err := s.userRepo.SetRole(ctx, email, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user promoted to admin", slog.String("op", op), slog.String("email", email))
	return res, nil
}

// IsAdmin отвечает false и для неизвестного email
func (s *userService) IsAdmin(ctx context.Context, email string) (bool, error) {
	const op = "service.UserService.IsAdmin"

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return user.IsAdmin(), nil
}
