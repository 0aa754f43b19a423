package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DepartmentRef is the denormalized department copy carried on a user. It is a
// cache, not a source of truth: the cascade coordinator keeps it in sync with
// the company's embedded list, it is never read back to reconstruct one.
type DepartmentRef struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	Name string             `bson:"name" json:"name"`
}

// User is a company-scoped account. Department is absent for unassigned users.
type User struct {
	ID           primitive.ObjectID `bson:"_id" json:"_id"`
	CompanyID    primitive.ObjectID `bson:"_cId" json:"_cId"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Department   *DepartmentRef     `bson:"department,omitempty" json:"department,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}
