package models

import "time"

// Review - отзыв пользователя, не больше одного на email
type Review struct {
	ID        int64     `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	UpdatedAt time.Time `json:"updatedAt"`
}
