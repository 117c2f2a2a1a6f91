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

const usersNS = "test.users"

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

// findAndModify replies with value as the updated document; nil means no match.
func findAndModify(value interface{}) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: value})
}

func updated(n int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: n},
	)
}

// count replies to the aggregate behind CountDocuments.
func count(ns string, n int) bson.D {
	if n == 0 {
		return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch)
	}
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{{Key: "n", Value: n}})
}

func TestCreateUser(t *testing.T) {
	mt := newMock(t)

	mt.Run("success", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		user, err := repo.CreateUser(context.Background(), &models.User{Username: "neo", Email: "neo@example.com"})
		require.NoError(mt, err)
		assert.False(mt, user.ID.IsZero())
		assert.Equal(mt, int64(1), user.Version)
		assert.NotNil(mt, user.Watchlist)
		assert.NotNil(mt, user.Followers)
	})

	mt.Run("duplicate", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		_, err := repo.CreateUser(context.Background(), &models.User{Username: "neo", Email: "neo@example.com"})
		require.Error(mt, err)
		assert.Equal(mt, apperrors.KindConflict, apperrors.KindOf(err))
	})
}

func TestGetUserByID(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: id},
			{Key: "username", Value: "neo"},
			{Key: "watchlist", Value: bson.A{bson.D{{Key: "movie_id", Value: "603"}}}},
		}))

		user, err := repo.GetUserByID(context.Background(), id)
		require.NoError(mt, err)
		assert.Equal(mt, "neo", user.Username)
		require.Len(mt, user.Watchlist, 1)
		assert.Equal(mt, "603", user.Watchlist[0].MovieID)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := repo.GetUserByID(context.Background(), id)
		assert.ErrorIs(mt, err, apperrors.ErrUserNotFound)
	})
}

func TestAddToWatchlistGuard(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("added", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModify(bson.D{
			{Key: "_id", Value: id},
			{Key: "watchlist", Value: bson.A{bson.D{{Key: "movie_id", Value: "603"}}}},
		}))

		user, err := repo.AddToWatchlist(context.Background(), id, "603", time.Now())
		require.NoError(mt, err)
		assert.Len(mt, user.Watchlist, 1)
	})

	mt.Run("already listed", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModify(nil), count(usersNS, 0), count(usersNS, 1))

		_, err := repo.AddToWatchlist(context.Background(), id, "603", time.Now())
		assert.ErrorIs(mt, err, apperrors.ErrAlreadyListed)
	})

	mt.Run("already watched", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModify(nil), count(usersNS, 1))

		_, err := repo.AddToWatchlist(context.Background(), id, "603", time.Now())
		assert.ErrorIs(mt, err, apperrors.ErrAlreadyWatched)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModify(nil), count(usersNS, 0), count(usersNS, 0))

		_, err := repo.AddToWatchlist(context.Background(), id, "603", time.Now())
		assert.ErrorIs(mt, err, apperrors.ErrUserNotFound)
	})
}

func TestMarkWatched(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()

	mt.Run("moves entry", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModify(bson.D{
			{Key: "_id", Value: id},
			{Key: "watchlist", Value: bson.A{}},
			{Key: "watched", Value: bson.A{bson.D{{Key: "movie_id", Value: "123"}}}},
		}))

		user, err := repo.MarkWatched(context.Background(), id, "123", time.Now())
		require.NoError(mt, err)
		assert.Empty(mt, user.Watchlist)
		require.Len(mt, user.Watched, 1)
		assert.Equal(mt, "123", user.Watched[0].MovieID)
	})

	mt.Run("already watched falls back to removal", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			findAndModify(nil),
			findAndModify(bson.D{
				{Key: "_id", Value: id},
				{Key: "watchlist", Value: bson.A{}},
				{Key: "watched", Value: bson.A{bson.D{{Key: "movie_id", Value: "123"}}}},
			}),
		)

		user, err := repo.MarkWatched(context.Background(), id, "123", time.Now())
		require.NoError(mt, err)
		assert.Len(mt, user.Watched, 1)
	})
}

func TestUpdateProfileVersionConflict(t *testing.T) {
	mt := newMock(t)
	id := primitive.NewObjectID()
	avatar := "avatar2"

	mt.Run("stale version", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModify(nil), count(usersNS, 1))

		_, err := repo.UpdateProfile(context.Background(), id, 3, models.ProfileUpdate{Avatar: &avatar})
		assert.ErrorIs(mt, err, apperrors.ErrVersionConflict)
	})

	mt.Run("applied", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(findAndModify(bson.D{
			{Key: "_id", Value: id},
			{Key: "avatar", Value: avatar},
			{Key: "version", Value: int64(4)},
		}))

		user, err := repo.UpdateProfile(context.Background(), id, 3, models.ProfileUpdate{Avatar: &avatar})
		require.NoError(mt, err)
		assert.Equal(mt, avatar, user.Avatar)
		assert.Equal(mt, int64(4), user.Version)
	})
}

func TestFollowEdges(t *testing.T) {
	mt := newMock(t)
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	mt.Run("already following", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(updated(0), count(usersNS, 1))

		err := repo.AddFollowing(context.Background(), a, b)
		assert.ErrorIs(mt, err, apperrors.ErrAlreadyFollowing)
	})

	mt.Run("follower of missing user", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repo.AddFollower(context.Background(), b, a)
		assert.ErrorIs(mt, err, apperrors.ErrUserNotFound)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: a}, {Key: "following", Value: bson.A{b}}, {Key: "followers", Value: bson.A{}}},
			bson.D{{Key: "_id", Value: b}, {Key: "following", Value: bson.A{}}, {Key: "followers", Value: bson.A{a}}},
		))

		edges, err := repo.ListFollowEdges(context.Background())
		require.NoError(mt, err)
		require.Len(mt, edges, 2)
		assert.Equal(mt, []primitive.ObjectID{b}, edges[0].Following)
		assert.Equal(mt, []primitive.ObjectID{a}, edges[1].Followers)
	})
}

func TestListUsers(t *testing.T) {
	mt := newMock(t)

	mt.Run("page and total", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "username", Value: "a"}},
				bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "username", Value: "b"}},
			),
			count(usersNS, 7),
		)

		users, total, err := repo.ListUsers(context.Background(), primitive.NewObjectID(), 0, 2)
		require.NoError(mt, err)
		assert.Len(mt, users, 2)
		assert.Equal(mt, int64(7), total)
	})
}

func TestActivatePremiumMissingUser(t *testing.T) {
	mt := newMock(t)

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewUserRepository(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repo.ActivatePremium(context.Background(), primitive.NewObjectID(), time.Now(), "ORDER-1",
			models.PremiumEvent{Action: models.PremiumSubscribed, Date: time.Now()})
		assert.ErrorIs(mt, err, apperrors.ErrUserNotFound)
	})
}
