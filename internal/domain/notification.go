package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification is a human-readable audit record. Notifications are
// fire-and-forget and not part of any consistency guarantee.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	CompanyID primitive.ObjectID `bson:"_cId" json:"_cId"`
	ActorID   primitive.ObjectID `bson:"_uId" json:"_uId"`
	ActorName string             `bson:"actorName" json:"actorName"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
