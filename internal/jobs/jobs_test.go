package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/Dias221467/cometa-films-backend/internal/repository/memstore"
	"github.com/Dias221467/cometa-films-backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type failingReconciler struct{}

func (failingReconciler) ReconcileFollowEdges(ctx context.Context) (*services.ReconcileReport, error) {
	return nil, errors.New("connection reset")
}

func TestFollowReconcilerRepairsEdges(t *testing.T) {
	store := memstore.New()
	a := &models.User{Username: "alice", Email: "a@example.com"}
	b := &models.User{Username: "bob", Email: "b@example.com"}
	store.Put(b)
	a.Following = []primitive.ObjectID{b.ID}
	store.Put(a)

	job := NewFollowReconciler(services.NewSocialService(store, store, nil, nil))
	report, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.FollowersAdded)

	got, err := store.GetUserByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{a.ID}, got.Followers)
}

func TestFollowReconcilerWrapsErrors(t *testing.T) {
	_, err := NewFollowReconciler(failingReconciler{}).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestNotificationPurger(t *testing.T) {
	store := memstore.New()
	user := primitive.NewObjectID()
	store.AddNotification(models.Notification{UserID: user, ExpiresAt: time.Now().Add(-time.Minute)})
	store.AddNotification(models.Notification{UserID: user, ExpiresAt: time.Now().Add(time.Hour)})

	deleted, err := NewNotificationPurger(store).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Len(t, store.Notifications(), 1)
}
