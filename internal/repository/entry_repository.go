package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crmkit/department-service/internal/persistence"
)

// EntryRepository manages the department reference id carried on activity
// entries. Entries hold no cached name, only _dId, so the operations here are
// the set/unset halves of assignment and deletion cascades.
type EntryRepository interface {
	AssignDepartment(ctx context.Context, scope Scope, userID, departmentID primitive.ObjectID) error
	ClearDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID) error
	ClearDepartmentForUser(ctx context.Context, scope Scope, userID, departmentID primitive.ObjectID) error
}

type entryRepository struct {
	coll *mongo.Collection
}

// NewEntryRepository builds the repository.
func NewEntryRepository(store *persistence.Mongo) EntryRepository {
	return &entryRepository{coll: store.Collection(persistence.CollectionEntries)}
}

func (r *entryRepository) AssignDepartment(ctx context.Context, scope Scope, userID, departmentID primitive.ObjectID) error {
	filter := scope.filter(bson.E{Key: "_uId", Value: userID})
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "_dId", Value: departmentID}}}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *entryRepository) ClearDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID) error {
	filter := scope.filter(bson.E{Key: "_dId", Value: departmentID})
	update := bson.D{{Key: "$unset", Value: bson.D{{Key: "_dId", Value: ""}}}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *entryRepository) ClearDepartmentForUser(ctx context.Context, scope Scope, userID, departmentID primitive.ObjectID) error {
	filter := scope.filter(
		bson.E{Key: "_uId", Value: userID},
		bson.E{Key: "_dId", Value: departmentID},
	)
	update := bson.D{{Key: "$unset", Value: bson.D{{Key: "_dId", Value: ""}}}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}
