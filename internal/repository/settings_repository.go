package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/crmkit/department-service/internal/domain"
	"github.com/crmkit/department-service/internal/persistence"
)

// SettingsRepository reads projections of the single settings document.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.Settings, error)
	GetLists(ctx context.Context) (*domain.Settings, error)
	GetUsersRoles(ctx context.Context) ([]bson.M, error)
}

type settingsRepository struct {
	coll *mongo.Collection
}

// NewSettingsRepository builds the repository.
func NewSettingsRepository(store *persistence.Mongo) SettingsRepository {
	return &settingsRepository{coll: store.Collection(persistence.CollectionSettings)}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.Settings, error) {
	return r.findOne(ctx, nil)
}

func (r *settingsRepository) GetLists(ctx context.Context) (*domain.Settings, error) {
	projection := bson.D{{Key: "lists", Value: 1}, {Key: "listsFields", Value: 1}}
	return r.findOne(ctx, projection)
}

func (r *settingsRepository) GetUsersRoles(ctx context.Context) ([]bson.M, error) {
	projection := bson.D{{Key: "usersRoles", Value: 1}}
	settings, err := r.findOne(ctx, projection)
	if err != nil {
		return nil, err
	}
	if settings.UsersRoles == nil {
		return []bson.M{}, nil
	}
	return settings.UsersRoles, nil
}

func (r *settingsRepository) findOne(ctx context.Context, projection bson.D) (*domain.Settings, error) {
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	var settings domain.Settings
	err := r.coll.FindOne(ctx, bson.D{}, opts).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &domain.Settings{}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}
