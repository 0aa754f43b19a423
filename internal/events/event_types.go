package events

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventDepartmentCreated EventType = "department_created"
	EventDepartmentRenamed EventType = "department_renamed"
	EventDepartmentDeleted EventType = "department_deleted"
	EventUserAssigned      EventType = "user_assigned"
	EventUserUnassigned    EventType = "user_unassigned"
)

// Actor identifies the authenticated caller behind an event.
type Actor struct {
	UserID primitive.ObjectID `json:"user_id"`
	Name   string             `json:"name"`
}

// Event represents a domain event emitted by services. Events are advisory:
// they feed the notification sink and are never part of cascade consistency.
type Event struct {
	ID           string             `json:"id"`
	Type         EventType          `json:"type"`
	CompanyID    primitive.ObjectID `json:"company_id"`
	DepartmentID primitive.ObjectID `json:"department_id"`
	Actor        Actor              `json:"actor"`
	Timestamp    time.Time          `json:"timestamp"`
	Payload      interface{}        `json:"payload"`
}

// DepartmentCreatedPayload payload.
type DepartmentCreatedPayload struct {
	CreatedAt time.Time `json:"created_at"`
}

// DepartmentRenamedPayload payload.
type DepartmentRenamedPayload struct {
	Name string `json:"name"`
}

// UserAssignedPayload payload.
type UserAssignedPayload struct {
	UserID primitive.ObjectID `json:"user_id"`
	Name   string             `json:"name"`
}

// UserUnassignedPayload payload.
type UserUnassignedPayload struct {
	UserID primitive.ObjectID `json:"user_id"`
}
