package jobs

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

type expiredNotificationDeleter interface {
	DeleteExpiredNotifications(ctx context.Context) (int64, error)
}

// NotificationPurger deletes notifications older than their expiry.
type NotificationPurger struct {
	Notifications expiredNotificationDeleter
}

func NewNotificationPurger(notifications expiredNotificationDeleter) *NotificationPurger {
	return &NotificationPurger{Notifications: notifications}
}

func (p *NotificationPurger) Run(ctx context.Context) (int64, error) {
	deleted, err := p.Notifications.DeleteExpiredNotifications(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to purge notifications: %w", err)
	}
	logrus.WithField("deleted", deleted).Debug("Expired notifications purged")
	return deleted, nil
}
