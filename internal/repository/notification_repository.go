package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crmkit/department-service/internal/domain"
	"github.com/crmkit/department-service/internal/persistence"
)

// NotificationRepository persists audit notifications.
type NotificationRepository interface {
	Save(ctx context.Context, notification *domain.Notification) error
}

type notificationRepository struct {
	coll *mongo.Collection
}

// NewNotificationRepository builds the repository.
func NewNotificationRepository(store *persistence.Mongo) NotificationRepository {
	return &notificationRepository{coll: store.Collection(persistence.CollectionNotifications)}
}

func (r *notificationRepository) Save(ctx context.Context, notification *domain.Notification) error {
	_, err := r.coll.InsertOne(ctx, notification)
	return err
}
