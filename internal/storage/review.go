package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/linemk/tool-shop/internal/domain/models"
)

type ReviewStorage interface {
	ListReviews(ctx context.Context) ([]*models.Review, error)
	GetReviewByEmail(ctx context.Context, email string) (*models.Review, error)
	// UpsertReview перезаписывает отзыв пользователя или создаёт новый.
	UpsertReview(ctx context.Context, review *models.Review) (*UpdateResult, error)
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewStorage {
	return &reviewRepository{db: db}
}

const reviewColumns = "id, email, name, comment, rating, updated_at"

func (r *reviewRepository) ListReviews(ctx context.Context) ([]*models.Review, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+reviewColumns+" FROM reviews ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*models.Review, 0)
	for rows.Next() {
		rv := &models.Review{}
		if err := rows.Scan(&rv.ID, &rv.Email, &rv.Name, &rv.Comment, &rv.Rating, &rv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) GetReviewByEmail(ctx context.Context, email string) (*models.Review, error) {
	rv := &models.Review{}
	row := r.db.QueryRowContext(ctx, "SELECT "+reviewColumns+" FROM reviews WHERE email = $1", email)
	if err := row.Scan(&rv.ID, &rv.Email, &rv.Name, &rv.Comment, &rv.Rating, &rv.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return rv, nil
}

func (r *reviewRepository) UpsertReview(ctx context.Context, review *models.Review) (*UpdateResult, error) {
	var inserted bool
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO reviews (email, name, comment, rating) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (email) DO UPDATE
		 SET name = EXCLUDED.name, comment = EXCLUDED.comment, rating = EXCLUDED.rating, updated_at = NOW()
		 RETURNING id, (xmax = 0) AS inserted`,
		review.Email, review.Name, review.Comment, review.Rating,
	).Scan(&review.ID, &inserted)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert review: %w", err)
	}
	if inserted {
		id := review.ID
		return &UpdateResult{UpsertedID: &id}, nil
	}
	return &UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}
