package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ReviewRepository works on the reviews embedded in user documents. Each
// method touches only the array elements it needs so concurrent edits to
// other parts of the same user do not overwrite each other.
type ReviewRepository struct {
	collection *mongo.Collection
}

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{
		collection: db.Collection(UsersCollection),
	}
}

// InsertReview appends review to the user's reviews unless one for the same
// movie already exists.
func (r *ReviewRepository) InsertReview(ctx context.Context, userID primitive.ObjectID, review *models.Review) error {
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.Comments == nil {
		review.Comments = []models.Comment{}
	}

	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "reviews.movie_id": bson.M{"$ne": review.MovieID}},
		bson.M{
			"$push": bson.M{"reviews": review},
			"$set":  bson.M{"updated_at": review.CreatedAt},
			"$inc":  bumpVersion,
		},
	)
	if err != nil {
		logrus.WithError(err).WithField("userID", userID.Hex()).Error("Failed to insert review")
		return fmt.Errorf("failed to insert review: %w", err)
	}
	if res.MatchedCount == 0 {
		return userMissOr(ctx, r.collection, userID, apperrors.ErrDuplicateReview)
	}
	return nil
}

// UpdateReview rewrites the rating, text and author snapshot of one review.
func (r *ReviewRepository) UpdateReview(ctx context.Context, userID primitive.ObjectID, movieID string, rating int, comment string, author models.PublicUser, at time.Time) (*models.Review, error) {
	filter := bson.M{"_id": userID, "reviews.movie_id": movieID}
	update := bson.M{
		"$set": bson.M{
			"reviews.$.rating":     rating,
			"reviews.$.comment":    comment,
			"reviews.$.username":   author.Username,
			"reviews.$.avatar":     author.Avatar,
			"reviews.$.updated_at": at,
			"updated_at":           at,
		},
		"$inc": bumpVersion,
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"reviews": bson.M{"$elemMatch": bson.M{"movie_id": movieID}}})

	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	review := user.ReviewForMovie(movieID)
	if review == nil {
		return nil, apperrors.ErrReviewNotFound
	}
	return review, nil
}

// DeleteReview removes the user's review of movieID along with its comments.
// Deleting a review that does not exist is not an error.
func (r *ReviewRepository) DeleteReview(ctx context.Context, userID primitive.ObjectID, movieID string) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{
			"$pull": bson.M{"reviews": bson.M{"movie_id": movieID}},
			"$set":  bson.M{"updated_at": time.Now()},
			"$inc":  bumpVersion,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// FindUsersWithMovieReview returns every user that reviewed movieID. Only the
// matching review is projected into each result.
func (r *ReviewRepository) FindUsersWithMovieReview(ctx context.Context, movieID string) ([]models.User, error) {
	opts := options.Find().SetProjection(bson.M{
		"username": 1,
		"avatar":   1,
		"reviews":  bson.M{"$elemMatch": bson.M{"movie_id": movieID}},
	})
	cursor, err := r.collection.Find(ctx, bson.M{"reviews.movie_id": movieID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reviews: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return users, nil
}

// FindReviewOwner locates the user holding reviewID. The returned user carries
// only that review.
func (r *ReviewRepository) FindReviewOwner(ctx context.Context, reviewID primitive.ObjectID) (*models.User, error) {
	opts := options.FindOne().SetProjection(bson.M{
		"username": 1,
		"avatar":   1,
		"reviews":  bson.M{"$elemMatch": bson.M{"_id": reviewID}},
	})

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"reviews._id": reviewID}, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to find review owner: %w", err)
	}
	return &user, nil
}

// PushComment appends comment to the review's thread.
func (r *ReviewRepository) PushComment(ctx context.Context, ownerID, reviewID primitive.ObjectID, comment *models.Comment) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": ownerID, "reviews._id": reviewID},
		bson.M{
			"$push": bson.M{"reviews.$.comments": comment},
			"$inc":  bumpVersion,
		},
	)
	if err != nil {
		logrus.WithError(err).WithField("reviewID", reviewID.Hex()).Error("Failed to add comment")
		return fmt.Errorf("failed to add comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}

// SetCommentText edits a comment only when authorID wrote it.
func (r *ReviewRepository) SetCommentText(ctx context.Context, ownerID, reviewID, commentID, authorID primitive.ObjectID, text string, at time.Time) error {
	filter := bson.M{
		"_id": ownerID,
		"reviews": bson.M{"$elemMatch": bson.M{
			"_id": reviewID,
			"comments": bson.M{"$elemMatch": bson.M{
				"_id":     commentID,
				"user_id": authorID,
			}},
		}},
	}
	update := bson.M{
		"$set": bson.M{
			"reviews.$[r].comments.$[c].text":      text,
			"reviews.$[r].comments.$[c].is_edited": true,
			"reviews.$[r].comments.$[c].edited_at": at,
		},
		"$inc": bumpVersion,
	}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{
			bson.M{"r._id": reviewID},
			bson.M{"c._id": commentID},
		},
	})

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to edit comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}

// PullComment removes one comment from the review's thread.
func (r *ReviewRepository) PullComment(ctx context.Context, ownerID, reviewID, commentID primitive.ObjectID) error {
	filter := bson.M{
		"_id": ownerID,
		"reviews": bson.M{"$elemMatch": bson.M{
			"_id":          reviewID,
			"comments._id": commentID,
		}},
	}
	res, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$pull": bson.M{"reviews.$.comments": bson.M{"_id": commentID}},
		"$inc":  bumpVersion,
	})
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrCommentNotFound
	}
	return nil
}
