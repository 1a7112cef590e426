package storage

import "errors"

var (
	ErrToolNotFound     = errors.New("tool not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrReviewNotFound   = errors.New("review not found")
	ErrOrderAlreadyPaid = errors.New("order already paid")
	ErrDuplicatePayment = errors.New("payment with this transaction id already exists")
)

// UpdateResult описывает результат изменения одной записи
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	UpsertedID    *int64
}
