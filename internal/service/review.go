package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/storage"
)

type ReviewService interface {
	ListReviews(ctx context.Context) ([]*models.Review, error)
	GetReview(ctx context.Context, email string) (*models.Review, error)
	// UpsertReview перезаписывает отзыв пользователя, если он уже есть
	UpsertReview(ctx context.Context, review *models.Review) (*storage.UpdateResult, error)
}

type reviewService struct {
	log        *slog.Logger
	reviewRepo storage.ReviewStorage
}

func NewReviewService(log *slog.Logger, reviewRepo storage.ReviewStorage) ReviewService {
	return &reviewService{
		log:        log,
		reviewRepo: reviewRepo,
	}
}

func (s *reviewService) ListReviews(ctx context.Context) ([]*models.Review, error) {
	const op = "service.ReviewService.ListReviews"

	reviews, err := s.reviewRepo.ListReviews(ctx)
	if err != nil {
		s.log.Error("failed to list reviews", slog.String("op", op), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return reviews, nil
}

func (s *reviewService) GetReview(ctx context.Context, email string) (*models.Review, error) {
	const op = "service.ReviewService.GetReview"

	review, err := s.reviewRepo.GetReviewByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return review, nil
}

func (s *reviewService) UpsertReview(ctx context.Context, review *models.Review) (*storage.UpdateResult, error) {
	const op = "service.ReviewService.UpsertReview"
	logger := s.log.With(slog.String("op", op), slog.String("email", review.Email))

	res, err := s.reviewRepo.UpsertReview(ctx, review)
	if err != nil {
		logger.Error("failed to upsert review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Info("review saved", slog.Int("rating", review.Rating))
	return res, nil
}
