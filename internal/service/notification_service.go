package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/crmkit/department-service/internal/config"
	"github.com/crmkit/department-service/internal/domain"
	"github.com/crmkit/department-service/internal/events"
	"github.com/crmkit/department-service/internal/refs"
	"github.com/crmkit/department-service/internal/repository"
)

// NotificationService is the audit sink for department lifecycle events.
// Department creation produces a persisted human-readable notification; the
// remaining lifecycle events are logged only. Failures here never affect the
// cascade that emitted the event.
type NotificationService struct {
	dispatcher    events.Dispatcher
	notifications repository.NotificationRepository
	logger        *zap.Logger
	cfg           config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, notifications repository.NotificationRepository, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher:    dispatcher,
		notifications: notifications,
		logger:        logger,
		cfg:           cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventDepartmentCreated, n.handleDepartmentCreated)
	n.dispatcher.Subscribe(events.EventDepartmentRenamed, n.handleLogged)
	n.dispatcher.Subscribe(events.EventDepartmentDeleted, n.handleLogged)
	n.dispatcher.Subscribe(events.EventUserAssigned, n.handleLogged)
	n.dispatcher.Subscribe(events.EventUserUnassigned, n.handleLogged)
}

func (n *NotificationService) handleDepartmentCreated(ctx context.Context, event events.Event) error {
	notification := &domain.Notification{
		ID:        refs.New(),
		CompanyID: event.CompanyID,
		ActorID:   event.Actor.UserID,
		ActorName: event.Actor.Name,
		Message:   "created a new department",
		CreatedAt: time.Now().UTC(),
	}
	if err := n.notifications.Save(ctx, notification); err != nil {
		n.logger.Warn("save notification",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
	n.sendWebhookStub(event)
	return nil
}

func (n *NotificationService) handleLogged(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("company_id", event.CompanyID.Hex()),
		zap.String("department_id", event.DepartmentID.Hex()),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) sendWebhookStub(event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)))
}
