package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/Dias221467/cometa-films-backend/internal/repository/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type reviewFixture struct {
	store    *memstore.Store
	svc      *ReviewService
	notifier *recordingNotifier
	activity *recordingActivity
	author   *models.User
	other    *models.User
	third    *models.User
	review   *models.Review
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	f := &reviewFixture{
		store:    memstore.New(),
		notifier: &recordingNotifier{},
		activity: &recordingActivity{},
	}
	f.svc = NewReviewService(f.store, f.store, staticMovies{"603": "The Matrix"}, f.notifier, f.activity)
	f.author = seedUser(t, f.store, "neo")
	f.other = seedUser(t, f.store, "trinity")
	f.third = seedUser(t, f.store, "morpheus")

	review, err := f.svc.AddReview(context.Background(), f.author.ID, ReviewInput{MovieID: "603", Rating: 9, Comment: "Whoa."})
	require.NoError(t, err)
	f.review = review
	return f
}

func TestAddReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	assert.Equal(t, "neo", f.review.Username)
	assert.Equal(t, models.DefaultAvatar, f.review.Avatar)
	assert.Empty(t, f.review.Comments)
	assert.Contains(t, f.activity.types, models.ActivityReviewCreated)

	t.Run("second review of the same movie conflicts", func(t *testing.T) {
		_, err := f.svc.AddReview(ctx, f.author.ID, ReviewInput{MovieID: "603", Rating: 5, Comment: "again"})
		assert.ErrorIs(t, err, apperrors.ErrDuplicateReview)
		assertKind(t, err, apperrors.KindConflict)

		reviews, err := f.svc.GetUserReviews(ctx, f.author.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 1)
	})

	t.Run("validation", func(t *testing.T) {
		cases := []ReviewInput{
			{MovieID: "", Rating: 5, Comment: "ok"},
			{MovieID: "1", Rating: 0, Comment: "ok"},
			{MovieID: "1", Rating: 11, Comment: "ok"},
			{MovieID: "1", Rating: 5, Comment: "   "},
		}
		for _, in := range cases {
			_, err := f.svc.AddReview(ctx, f.other.ID, in)
			assertKind(t, err, apperrors.KindValidation)
		}
	})

	t.Run("rating bounds are inclusive", func(t *testing.T) {
		_, err := f.svc.AddReview(ctx, f.other.ID, ReviewInput{MovieID: "a", Rating: models.MinRating, Comment: "meh"})
		assert.NoError(t, err)
		_, err = f.svc.AddReview(ctx, f.other.ID, ReviewInput{MovieID: "b", Rating: models.MaxRating, Comment: "wow"})
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.svc.AddReview(ctx, primitive.NewObjectID(), ReviewInput{MovieID: "1", Rating: 5, Comment: "ok"})
		assertKind(t, err, apperrors.KindNotFound)
	})
}

func TestAddReviewGuardedWrite(t *testing.T) {
	// The store rejects the insert even when the service-level check is bypassed.
	ctx := context.Background()
	store := memstore.New()
	user := seedUser(t, store, "neo")

	require.NoError(t, store.InsertReview(ctx, user.ID, &models.Review{MovieID: "603", Rating: 5, Comment: "first"}))
	err := store.InsertReview(ctx, user.ID, &models.Review{MovieID: "603", Rating: 6, Comment: "second"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateReview)
}

func TestUpdateReviewRefreshesSnapshot(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	users := NewUserService(f.store)

	_, err := f.svc.AddComment(ctx, f.review.ID, f.other.ID, "nice", nil)
	require.NoError(t, err)

	avatar := "avatar5"
	_, err = users.UpdateProfile(ctx, f.author.ID, models.ProfileUpdate{Avatar: &avatar})
	require.NoError(t, err)

	reviews, err := f.svc.GetUserReviews(ctx, f.author.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultAvatar, reviews[0].Avatar, "snapshot is not rewritten by profile updates")

	updated, err := f.svc.UpdateReview(ctx, f.author.ID, ReviewInput{MovieID: "603", Rating: 10, Comment: "Even better"})
	require.NoError(t, err)
	assert.Equal(t, f.review.ID, updated.ID)
	assert.Equal(t, 10, updated.Rating)
	assert.Equal(t, "Even better", updated.Comment)
	assert.Equal(t, "avatar5", updated.Avatar)
	assert.Equal(t, f.review.CreatedAt, updated.CreatedAt)
	require.NotNil(t, updated.UpdatedAt)
	assert.Len(t, updated.Comments, 1, "comments survive an update")

	_, err = f.svc.UpdateReview(ctx, f.other.ID, ReviewInput{MovieID: "603", Rating: 5, Comment: "x"})
	assert.ErrorIs(t, err, apperrors.ErrReviewNotFound)
}

func TestDeleteReview(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	require.NoError(t, f.svc.DeleteReview(ctx, f.author.ID, "603"))
	reviews, err := f.svc.GetUserReviews(ctx, f.author.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)

	assert.NoError(t, f.svc.DeleteReview(ctx, f.author.ID, "603"), "deleting twice is harmless")

	_, err = f.svc.GetComments(ctx, f.review.ID)
	assert.ErrorIs(t, err, apperrors.ErrReviewNotFound)
}

func TestGetMovieReviews(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	clock := time.Now().Add(time.Hour)
	f.svc.now = func() time.Time { return clock }
	_, err := f.svc.AddReview(ctx, f.other.ID, ReviewInput{MovieID: "603", Rating: 7, Comment: "Good"})
	require.NoError(t, err)
	_, err = f.svc.AddReview(ctx, f.third.ID, ReviewInput{MovieID: "999", Rating: 3, Comment: "Other movie"})
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, f.review.ID, f.other.ID, "agreed", nil)
	require.NoError(t, err)

	result, err := f.svc.GetMovieReviews(ctx, "603")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", result.Movie.Title)
	assert.Equal(t, 2, result.TotalReviews)
	require.Len(t, result.Reviews, 2)
	assert.Equal(t, "trinity", result.Reviews[0].Username, "newest first")
	assert.Equal(t, f.other.ID, result.Reviews[0].UserID)
	assert.Equal(t, "neo", result.Reviews[1].Username)
	assert.Equal(t, 1, result.Reviews[1].CommentCount)

	empty, err := f.svc.GetMovieReviews(ctx, "nothing")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalReviews)
	assert.NotNil(t, empty.Reviews)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	t.Run("length limits", func(t *testing.T) {
		_, err := f.svc.AddComment(ctx, f.review.ID, f.other.ID, strings.Repeat("a", 500), nil)
		assert.NoError(t, err)

		_, err = f.svc.AddComment(ctx, f.review.ID, f.other.ID, strings.Repeat("a", 501), nil)
		assert.ErrorIs(t, err, apperrors.ErrCommentTooLong)
		assertKind(t, err, apperrors.KindValidation)

		_, err = f.svc.AddComment(ctx, f.review.ID, f.other.ID, strings.Repeat("é", 500), nil)
		assert.NoError(t, err, "limit counts characters, not bytes")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := f.svc.AddComment(ctx, f.review.ID, f.other.ID, " \n\t", nil)
		assert.ErrorIs(t, err, apperrors.ErrEmptyComment)
	})

	t.Run("missing review", func(t *testing.T) {
		_, err := f.svc.AddComment(ctx, primitive.NewObjectID(), f.other.ID, "hi", nil)
		assert.ErrorIs(t, err, apperrors.ErrReviewNotFound)
	})

	t.Run("parent id is stored unvalidated", func(t *testing.T) {
		parent := "not-a-real-comment"
		view, err := f.svc.AddComment(ctx, f.review.ID, f.other.ID, "reply", &parent)
		require.NoError(t, err)
		require.NotNil(t, view.ParentID)
		assert.Equal(t, parent, *view.ParentID)
		assert.Equal(t, "trinity", view.Username)
	})

	t.Run("review author is notified about others' comments only", func(t *testing.T) {
		before := len(f.notifier.sent)
		_, err := f.svc.AddComment(ctx, f.review.ID, f.author.ID, "thanks", nil)
		require.NoError(t, err)
		assert.Len(t, f.notifier.sent, before)

		_, err = f.svc.AddComment(ctx, f.review.ID, f.third.ID, "hmm", nil)
		require.NoError(t, err)
		require.Len(t, f.notifier.sent, before+1)
		last := f.notifier.sent[len(f.notifier.sent)-1]
		assert.Equal(t, f.author.ID, last.UserID)
		assert.Equal(t, models.NotificationNewComment, last.Type)
	})
}

func TestEditComment(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	comment, err := f.svc.AddComment(ctx, f.review.ID, f.other.ID, "first", nil)
	require.NoError(t, err)

	_, err = f.svc.EditComment(ctx, f.review.ID, comment.ID, f.author.ID, "hijack")
	assertKind(t, err, apperrors.KindPermission)

	_, err = f.svc.EditComment(ctx, f.review.ID, comment.ID, f.third.ID, "hijack")
	assertKind(t, err, apperrors.KindPermission)

	edited, err := f.svc.EditComment(ctx, f.review.ID, comment.ID, f.other.ID, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", edited.Text)
	assert.True(t, edited.IsEdited)
	assert.NotNil(t, edited.EditedAt)

	_, err = f.svc.EditComment(ctx, f.review.ID, primitive.NewObjectID(), f.other.ID, "x")
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)

	_, err = f.svc.EditComment(ctx, f.review.ID, comment.ID, f.other.ID, strings.Repeat("b", 501))
	assert.ErrorIs(t, err, apperrors.ErrCommentTooLong)

	views, err := f.svc.GetComments(ctx, f.review.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "second", views[0].Text)
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	byOther, err := f.svc.AddComment(ctx, f.review.ID, f.other.ID, "one", nil)
	require.NoError(t, err)
	byOtherAgain, err := f.svc.AddComment(ctx, f.review.ID, f.other.ID, "two", nil)
	require.NoError(t, err)

	err = f.svc.DeleteComment(ctx, f.review.ID, byOther.ID, f.third.ID)
	assertKind(t, err, apperrors.KindPermission)

	assert.NoError(t, f.svc.DeleteComment(ctx, f.review.ID, byOther.ID, f.author.ID), "review author may delete")
	assert.NoError(t, f.svc.DeleteComment(ctx, f.review.ID, byOtherAgain.ID, f.other.ID), "comment author may delete")

	err = f.svc.DeleteComment(ctx, f.review.ID, byOther.ID, f.author.ID)
	assert.ErrorIs(t, err, apperrors.ErrCommentNotFound)

	views, err := f.svc.GetComments(ctx, f.review.ID)
	require.NoError(t, err)
	assert.Empty(t, views)
}

func TestGetCommentsUnknownAuthor(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	ghost := primitive.NewObjectID()
	require.NoError(t, f.store.PushComment(ctx, f.author.ID, f.review.ID, &models.Comment{
		ID: primitive.NewObjectID(), UserID: ghost, Text: "boo", CreatedAt: time.Now(),
	}))
	_, err := f.svc.AddComment(ctx, f.review.ID, f.other.ID, "hello", nil)
	require.NoError(t, err)

	views, err := f.svc.GetComments(ctx, f.review.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, UnknownUsername, views[0].Username)
	assert.Equal(t, models.DefaultAvatar, views[0].Avatar)
	assert.Equal(t, "trinity", views[1].Username)
}
