package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestCreateNotification(t *testing.T) {
	mt := newMock(t)

	mt.Run("sets expiry", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		notif := &models.Notification{UserID: primitive.NewObjectID(), Type: models.NotificationNewFollower}
		require.NoError(mt, repo.CreateNotification(context.Background(), notif))
		assert.False(mt, notif.ID.IsZero())
		assert.Equal(mt, NotificationTTL, notif.ExpiresAt.Sub(notif.CreatedAt))
	})
}

func TestNotificationOwnerScopedWrites(t *testing.T) {
	mt := newMock(t)
	userID := primitive.NewObjectID()
	id := primitive.NewObjectID()

	mt.Run("mark read of foreign notification", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repo.MarkAsRead(context.Background(), userID, id)
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.DeleteNotification(context.Background(), userID, id))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteNotification(context.Background(), userID, id)
		assert.Equal(mt, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

func TestGetUserNotifications(t *testing.T) {
	mt := newMock(t)
	userID := primitive.NewObjectID()

	mt.Run("decodes", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.notifications", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: userID}, {Key: "title", Value: "New follower"}},
		))

		list, err := repo.GetUserNotifications(context.Background(), userID)
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, "New follower", list[0].Title)
	})

	mt.Run("purge", func(mt *mtest.T) {
		repo := NewNotificationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		n, err := repo.DeleteExpiredNotifications(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, int64(3), n)
	})
}

func TestActivitiesByUsers(t *testing.T) {
	mt := newMock(t)
	userID := primitive.NewObjectID()

	mt.Run("decodes", func(mt *mtest.T) {
		repo := NewActivityRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.activities", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "user_id", Value: userID}, {Key: "type", Value: models.ActivityFollowed}, {Key: "timestamp", Value: time.Now()}},
		))

		list, err := repo.GetActivitiesByUsers(context.Background(), []primitive.ObjectID{userID}, 10)
		require.NoError(mt, err)
		require.Len(mt, list, 1)
		assert.Equal(mt, models.ActivityFollowed, list[0].Type)
	})
}
