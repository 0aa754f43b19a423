package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry is an activity record. It holds only a department reference id, no
// cached name, so rename cascades never touch entries; delete and user
// reassignment do.
type Entry struct {
	ID           primitive.ObjectID  `bson:"_id" json:"_id"`
	CompanyID    primitive.ObjectID  `bson:"_cId" json:"_cId"`
	UserID       primitive.ObjectID  `bson:"_uId" json:"_uId"`
	DepartmentID *primitive.ObjectID `bson:"_dId,omitempty" json:"_dId,omitempty"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
}
