package model

import (
	"time"

	"github.com/google/uuid"
)

// Report statuses. Stats counters in metadata_stats track one bucket
// per status.
const (
	StatusSubmitted  = "Submitted"
	StatusInProgress = "In progress"
	StatusConfirmed  = "Confirmed"
	StatusResolved   = "Resolved"
)

type Report struct {
	ID              uuid.UUID `json:"id"`
	UserID          uuid.UUID `json:"user_id"`
	UserName        string    `json:"user_name"`
	Description     string    `json:"description"`
	HazardType      string    `json:"hazard_type"`
	LocalGov        string    `json:"local_gov"`
	LocationDetails string    `json:"location_details"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Status          string    `json:"status"`
	Score           int       `json:"score"`
	CommentsCount   int       `json:"comments_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type CreateReportRequest struct {
	UserID          uuid.UUID `json:"user_id" validate:"required"`
	Description     string    `json:"description" validate:"required"`
	HazardType      string    `json:"hazard_type" validate:"required"`
	LocalGov        string    `json:"local_gov" validate:"required"`
	LocationDetails string    `json:"location_details" validate:"required"`
	Latitude        float64   `json:"latitude" validate:"latitude"`
	Longitude       float64   `json:"longitude" validate:"longitude"`
}

type UpdateReportRequest struct {
	UserID          uuid.UUID `json:"user_id" validate:"required"`
	Description     *string   `json:"description,omitempty"`
	HazardType      *string   `json:"hazard_type,omitempty"`
	LocalGov        *string   `json:"local_gov,omitempty"`
	LocationDetails *string   `json:"location_details,omitempty"`
	Latitude        *float64  `json:"latitude,omitempty"`
	Longitude       *float64  `json:"longitude,omitempty"`
	Status          *string   `json:"status,omitempty" validate:"omitempty,report_status"`
}

type CreateReportResponse struct {
	ID        uuid.UUID `json:"id"`
	Status    string    `json:"status"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}
