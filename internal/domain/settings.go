package domain

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Settings is the single company-wide configuration document. The service only
// projects slices out of it, so list entries stay schemaless.
type Settings struct {
	ID          primitive.ObjectID `bson:"_id" json:"-"`
	Lists       []bson.M           `bson:"lists" json:"lists"`
	ListsFields []bson.M           `bson:"listsFields" json:"listsFields"`
	UsersRoles  []bson.M           `bson:"usersRoles" json:"usersRoles"`
}
