package services

import (
	"context"

	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/Dias221467/cometa-films-backend/internal/realtime"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventNotification is the realtime event type carrying a new notification.
const EventNotification = "notification"

type NotificationService struct {
	repo   NotificationStore
	pusher Pusher
}

// NewNotificationService creates the service. pusher may be nil, in which case
// notifications are only persisted.
func NewNotificationService(repo NotificationStore, pusher Pusher) *NotificationService {
	return &NotificationService{
		repo:   repo,
		pusher: pusher,
	}
}

// Notify persists notif and pushes it to the recipient if they are online.
func (s *NotificationService) Notify(ctx context.Context, notif *models.Notification) error {
	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		return err
	}
	if s.pusher == nil || !s.pusher.IsOnline(notif.UserID.Hex()) {
		return nil
	}
	delivered := s.pusher.Send(notif.UserID.Hex(), realtime.Event{Type: EventNotification, Payload: notif})
	logrus.WithFields(logrus.Fields{
		"userID":    notif.UserID.Hex(),
		"type":      notif.Type,
		"delivered": delivered,
	}).Debug("Notification pushed")
	return nil
}

// GetUserNotifications returns the unexpired notifications of a user
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead sets the "read" status of a notification to true
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, userID, notifID primitive.ObjectID) error {
	return s.repo.MarkAsRead(ctx, userID, notifID)
}

// DeleteNotification deletes a specific notification
func (s *NotificationService) DeleteNotification(ctx context.Context, userID, notifID primitive.ObjectID) error {
	return s.repo.DeleteNotification(ctx, userID, notifID)
}

func (s *NotificationService) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredNotifications(ctx)
}
