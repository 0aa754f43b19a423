package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crmkit/department-service/internal/domain"
	"github.com/crmkit/department-service/internal/persistence"
)

// UserRepository manages user documents and their denormalized department copy.
// GetByID and GetByEmail are unscoped: they resolve the caller before a scope
// exists; everything else requires one.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ListByDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID) ([]domain.User, error)
	ListUnassigned(ctx context.Context, scope Scope) ([]domain.User, error)
	SetDepartment(ctx context.Context, scope Scope, userID primitive.ObjectID, ref domain.DepartmentRef) error
	UnsetDepartment(ctx context.Context, scope Scope, userID primitive.ObjectID) error
	RenameDepartmentCopy(ctx context.Context, scope Scope, departmentID primitive.ObjectID, name string) error
	ClearDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID) error
}

type userRepository struct {
	coll *mongo.Collection
}

// NewUserRepository builds the repository.
func NewUserRepository(store *persistence.Mongo) UserRepository {
	return &userRepository{coll: store.Collection(persistence.CollectionUsers)}
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	var user domain.User
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ListByDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID) ([]domain.User, error) {
	filter := scope.filter(bson.E{Key: "department._id", Value: departmentID})
	return r.list(ctx, filter)
}

func (r *userRepository) ListUnassigned(ctx context.Context, scope Scope) ([]domain.User, error) {
	filter := scope.filter(bson.E{Key: "department", Value: bson.D{{Key: "$exists", Value: false}}})
	return r.list(ctx, filter)
}

func (r *userRepository) SetDepartment(ctx context.Context, scope Scope, userID primitive.ObjectID, ref domain.DepartmentRef) error {
	filter := scope.filter(bson.E{Key: "_id", Value: userID})
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "department", Value: ref}}}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *userRepository) UnsetDepartment(ctx context.Context, scope Scope, userID primitive.ObjectID) error {
	filter := scope.filter(bson.E{Key: "_id", Value: userID})
	update := bson.D{{Key: "$unset", Value: bson.D{{Key: "department", Value: ""}}}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *userRepository) RenameDepartmentCopy(ctx context.Context, scope Scope, departmentID primitive.ObjectID, name string) error {
	filter := scope.filter(bson.E{Key: "department._id", Value: departmentID})
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "department.name", Value: name}}}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *userRepository) ClearDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID) error {
	filter := scope.filter(bson.E{Key: "department._id", Value: departmentID})
	update := bson.D{{Key: "$unset", Value: bson.D{{Key: "department", Value: ""}}}}
	_, err := r.coll.UpdateMany(ctx, filter, update)
	return err
}

func (r *userRepository) list(ctx context.Context, filter bson.D) ([]domain.User, error) {
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []domain.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}
