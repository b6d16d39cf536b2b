package dto

import "github.com/Poojitha-916/DRC-capstone/internal/models"

// CreateApplicationRequest payload for submitting a new application.
type CreateApplicationRequest struct {
	Type    models.ApplicationType    `json:"type"`
	Details models.ApplicationDetails `json:"details"`
}

// ReviewApplicationRequest captures one reviewer decision. ReviewerID is
// optional; when omitted the authenticated user decides on their own behalf.
type ReviewApplicationRequest struct {
	Decision   models.ReviewDecision `json:"decision"`
	Remarks    string                `json:"remarks"`
	ReviewerID string                `json:"reviewerId"`
}

// ApplicationQuery mirrors supported listing filters.
type ApplicationQuery struct {
	ScholarID string
	Status    []models.ApplicationStatus
	Stage     models.WorkflowStage
	Type      models.ApplicationType
	Limit     int
	Offset    int
}

// ApplicationWithTrail bundles an application and its review history.
type ApplicationWithTrail struct {
	Application models.Application `json:"application"`
	Reviews     []models.Review    `json:"reviews"`
}
