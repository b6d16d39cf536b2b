package dto

import "github.com/Poojitha-916/DRC-capstone/internal/models"

// CreateNoticeRequest payload for publishing a portal announcement.
type CreateNoticeRequest struct {
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	TargetRole *models.UserRole `json:"targetRole"`
}
