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

func TestInsertReview(t *testing.T) {
	mt := newMock(t)
	userID := primitive.NewObjectID()

	mt.Run("inserted", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(updated(1))

		review := &models.Review{MovieID: "603", Rating: 9, Comment: "great", CreatedAt: time.Now()}
		require.NoError(mt, repo.InsertReview(context.Background(), userID, review))
		assert.False(mt, review.ID.IsZero())
		assert.NotNil(mt, review.Comments)
	})

	mt.Run("duplicate", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(updated(0), count(usersNS, 1))

		err := repo.InsertReview(context.Background(), userID, &models.Review{MovieID: "603", Rating: 9})
		assert.ErrorIs(mt, err, apperrors.ErrDuplicateReview)
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(updated(0), count(usersNS, 0))

		err := repo.InsertReview(context.Background(), userID, &models.Review{MovieID: "603", Rating: 9})
		assert.ErrorIs(mt, err, apperrors.ErrUserNotFound)
	})
}

func TestUpdateReview(t *testing.T) {
	mt := newMock(t)
	userID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()
	author := models.PublicUser{ID: userID, Username: "neo", Avatar: "avatar2"}

	mt.Run("updated", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(findAndModify(bson.D{
			{Key: "_id", Value: userID},
			{Key: "reviews", Value: bson.A{bson.D{
				{Key: "_id", Value: reviewID},
				{Key: "movie_id", Value: "603"},
				{Key: "rating", Value: 7},
				{Key: "comment", Value: "rewatched"},
				{Key: "username", Value: "neo"},
				{Key: "avatar", Value: "avatar2"},
			}}},
		}))

		review, err := repo.UpdateReview(context.Background(), userID, "603", 7, "rewatched", author, time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, reviewID, review.ID)
		assert.Equal(mt, 7, review.Rating)
		assert.Equal(mt, "avatar2", review.Avatar)
	})

	mt.Run("not found", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(findAndModify(nil))

		_, err := repo.UpdateReview(context.Background(), userID, "603", 7, "x", author, time.Now())
		assert.ErrorIs(mt, err, apperrors.ErrReviewNotFound)
	})
}

func TestDeleteReview(t *testing.T) {
	mt := newMock(t)

	mt.Run("absent review is fine", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))

		assert.NoError(mt, repo.DeleteReview(context.Background(), primitive.NewObjectID(), "603"))
	})

	mt.Run("missing user", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repo.DeleteReview(context.Background(), primitive.NewObjectID(), "603")
		assert.ErrorIs(mt, err, apperrors.ErrUserNotFound)
	})
}

func TestFindReviewOwner(t *testing.T) {
	mt := newMock(t)
	ownerID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()

	mt.Run("found", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: ownerID},
			{Key: "username", Value: "trinity"},
			{Key: "reviews", Value: bson.A{bson.D{
				{Key: "_id", Value: reviewID},
				{Key: "movie_id", Value: "603"},
				{Key: "comments", Value: bson.A{}},
			}}},
		}))

		owner, err := repo.FindReviewOwner(context.Background(), reviewID)
		require.NoError(mt, err)
		assert.Equal(mt, ownerID, owner.ID)
		require.NotNil(mt, owner.FindReview(reviewID))
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, usersNS, mtest.FirstBatch))

		_, err := repo.FindReviewOwner(context.Background(), reviewID)
		assert.ErrorIs(mt, err, apperrors.ErrReviewNotFound)
	})
}

func TestCommentWrites(t *testing.T) {
	mt := newMock(t)
	ownerID := primitive.NewObjectID()
	reviewID := primitive.NewObjectID()
	commentID := primitive.NewObjectID()

	mt.Run("push to missing review", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repo.PushComment(context.Background(), ownerID, reviewID, &models.Comment{ID: commentID, Text: "hi"})
		assert.ErrorIs(mt, err, apperrors.ErrReviewNotFound)
	})

	mt.Run("edit by someone else", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(updated(0))

		err := repo.SetCommentText(context.Background(), ownerID, reviewID, commentID, primitive.NewObjectID(), "edit", time.Now())
		assert.ErrorIs(mt, err, apperrors.ErrCommentNotFound)
	})

	mt.Run("edit", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(updated(1))

		assert.NoError(mt, repo.SetCommentText(context.Background(), ownerID, reviewID, commentID, ownerID, "edit", time.Now()))
	})

	mt.Run("pull", func(mt *mtest.T) {
		repo := NewReviewRepository(mt.DB)
		mt.AddMockResponses(updated(1))

		assert.NoError(mt, repo.PullComment(context.Background(), ownerID, reviewID, commentID))
	})
}
