package dto

import "github.com/crmkit/department-service/internal/domain"

// RenameDepartmentRequest payload.
type RenameDepartmentRequest struct {
	Name string `json:"name"`
}

// AssignUserRequest payload. The department name is supplied by the caller and
// written to the user's denormalized copy as-is.
type AssignUserRequest struct {
	Name string `json:"name"`
}

// CreateDepartmentResponse wraps the created placeholder.
type CreateDepartmentResponse struct {
	Item domain.Department `json:"item"`
}

// MessageResponse carries the success message of a cascade.
type MessageResponse struct {
	Message string `json:"message"`
}
