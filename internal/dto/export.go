package dto

import "github.com/Poojitha-916/DRC-capstone/internal/models"

// CreateExportRequest payload for queueing an application-register export.
type CreateExportRequest struct {
	Format models.ExportFormat        `json:"format"`
	Status []models.ApplicationStatus `json:"status"`
	Type   models.ApplicationType     `json:"type"`
}

// ExportJobResponse is the job status surface returned to clients.
type ExportJobResponse struct {
	ID           string              `json:"id"`
	Status       models.ExportStatus `json:"status"`
	ResultURL    *string             `json:"resultUrl,omitempty"`
	ErrorMessage *string             `json:"errorMessage,omitempty"`
}
