package model

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `json:"id"`
	ReportID  uuid.UUID `json:"report_id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Content   string    `json:"content"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateCommentRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Content string    `json:"content" validate:"required"`
}

type UpdateCommentRequest struct {
	UserID  uuid.UUID `json:"user_id" validate:"required"`
	Content string    `json:"content" validate:"required"`
}
