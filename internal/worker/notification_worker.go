package worker

import (
	"github.com/crmkit/department-service/internal/service"
)

// StartNotificationWorker registers the audit notification handlers on the
// event dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
