package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crmkit/department-service/internal/domain"
	"github.com/crmkit/department-service/internal/persistence"
)

// CompanyRepository manages the embedded department list on company documents.
type CompanyRepository interface {
	ListDepartments(ctx context.Context, scope Scope) ([]domain.Department, error)
	AppendDepartment(ctx context.Context, scope Scope, dept domain.Department) error
	RenameDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID, name string) error
	PullDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID) error
}

type companyRepository struct {
	coll *mongo.Collection
}

// NewCompanyRepository builds the repository.
func NewCompanyRepository(store *persistence.Mongo) CompanyRepository {
	return &companyRepository{coll: store.Collection(persistence.CollectionCompanies)}
}

func (r *companyRepository) ListDepartments(ctx context.Context, scope Scope) ([]domain.Department, error) {
	opts := options.FindOne().SetProjection(bson.D{{Key: "departments", Value: 1}})
	var company domain.Company
	err := r.coll.FindOne(ctx, scope.companyFilter(), opts).Decode(&company)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []domain.Department{}, nil
	}
	if err != nil {
		return nil, err
	}
	if company.Departments == nil {
		return []domain.Department{}, nil
	}
	return company.Departments, nil
}

func (r *companyRepository) AppendDepartment(ctx context.Context, scope Scope, dept domain.Department) error {
	update := bson.D{{Key: "$push", Value: bson.D{{Key: "departments", Value: dept}}}}
	_, err := r.coll.UpdateOne(ctx, scope.companyFilter(), update, options.Update().SetUpsert(true))
	return err
}

func (r *companyRepository) RenameDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID, name string) error {
	filter := scope.companyFilter(bson.E{Key: "departments._id", Value: departmentID})
	update := bson.D{{Key: "$set", Value: bson.D{{Key: "departments.$.name", Value: name}}}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}

func (r *companyRepository) PullDepartment(ctx context.Context, scope Scope, departmentID primitive.ObjectID) error {
	filter := scope.companyFilter(bson.E{Key: "departments._id", Value: departmentID})
	update := bson.D{{Key: "$pull", Value: bson.D{
		{Key: "departments", Value: bson.D{{Key: "_id", Value: departmentID}}},
	}}}
	_, err := r.coll.UpdateOne(ctx, filter, update)
	return err
}
