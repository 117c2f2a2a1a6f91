package services

import (
	"context"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultFeedLimit = 50

type ActivityService struct {
	repo  ActivityStore
	users UserStore
}

func NewActivityService(repo ActivityStore, users UserStore) *ActivityService {
	return &ActivityService{repo: repo, users: users}
}

// LogActivity logs a user activity
func (s *ActivityService) LogActivity(
	ctx context.Context,
	userID primitive.ObjectID,
	username string,
	actionType string,
	target string,
	message string,
) error {
	activity := &models.Activity{
		UserID:    userID,
		Username:  username,
		Type:      actionType,
		Target:    target,
		Message:   message,
		Timestamp: time.Now(),
	}

	err := s.repo.CreateActivity(ctx, activity)
	if err != nil {
		logrus.WithError(err).Error("Failed to log activity in service")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":     userID.Hex(),
		"action_type": actionType,
	}).Debug("Activity logged successfully")

	return nil
}

// GetFeed returns the recent activity of the users userID follows.
func (s *ActivityService) GetFeed(ctx context.Context, userID primitive.ObjectID, limit int64) ([]models.Activity, error) {
	if limit <= 0 || limit > DefaultFeedLimit {
		limit = DefaultFeedLimit
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Following) == 0 {
		return []models.Activity{}, nil
	}
	return s.repo.GetActivitiesByUsers(ctx, user.Following, limit)
}
