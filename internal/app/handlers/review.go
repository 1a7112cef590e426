package handlers

import (
	"log/slog"
	"net/http"

	"github.com/linemk/tool-shop/internal/domain/models"
	"github.com/linemk/tool-shop/internal/lib/api"
	"github.com/linemk/tool-shop/internal/service"
)

// ReviewRequest - тело PUT /review/{email}
type ReviewRequest struct {
	Name    string `json:"name"`
	Comment string `json:"comment"`
	Rating  int    `json:"rating" validate:"gte=0,lte=5"`
}

func ListReviewsHandler(log *slog.Logger, reviews service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListReviewsHandler"
		logger := log.With(slog.String("op", op))

		list, err := reviews.ListReviews(r.Context())
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, list)
	}
}

func GetReviewHandler(log *slog.Logger, reviews service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetReviewHandler"
		logger := log.With(slog.String("op", op))

		email, err := emailParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid email")
			return
		}

		review, err := reviews.GetReview(r.Context(), email)
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, review)
	}
}

// UpsertReviewHandler обрабатывает PUT /review/{email}; повторный отзыв перезаписывает прежний
func UpsertReviewHandler(log *slog.Logger, reviews service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpsertReviewHandler"
		logger := log.With(slog.String("op", op))

		email, err := emailParam(r)
		if err != nil {
			api.Error(w, http.StatusBadRequest, "invalid email")
			return
		}

		var req ReviewRequest
		if !decodeJSON(logger, w, r, &req) {
			return
		}

		res, err := reviews.UpsertReview(r.Context(), &models.Review{
			Email:   email,
			Name:    req.Name,
			Comment: req.Comment,
			Rating:  req.Rating,
		})
		if err != nil {
			respondError(logger, w, err)
			return
		}
		respond(logger, w, newUpdateResult(res))
	}
}
