package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection holds one document per user with everything embedded.
const UsersCollection = "users"

// Every write bumps the version so profile updates can detect stale readers.
var bumpVersion = bson.M{"version": 1}

// UserRepository handles database operations on the user document.
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(UsersCollection),
	}
}

// CreateUser inserts a new user into the database.
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.Version = 1
	user.EnsureCollections()

	result, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("username or email already in use")
		}
		logrus.WithError(err).Error("Failed to insert user into database")
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}
	user.ID = insertedID

	logrus.WithField("userID", user.ID.Hex()).Info("User inserted successfully")
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		logrus.WithFields(logrus.Fields{
			"email": email,
			"error": err,
		}).Warn("Failed to find user by email")
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.ErrUserNotFound
		}
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Warn("Failed to find user by ID")
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	return &user, nil
}

// GetUsersByIDs fetches the public fields (username, avatar) of several users in one query.
func (r *UserRepository) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	filter := bson.M{"_id": bson.M{"$in": ids}}
	opts := options.Find().SetProjection(bson.M{"username": 1, "avatar": 1})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch users by IDs: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// UpdateProfile applies a profile change only if the stored version still
// matches the one the caller read.
func (r *UserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, expectedVersion int64, update models.ProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}
	if update.Username != nil {
		set["username"] = *update.Username
	}
	if update.Avatar != nil {
		set["avatar"] = *update.Avatar
	}

	user, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "version": expectedVersion},
		bson.M{"$set": set, "$inc": bumpVersion},
	)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.missOr(ctx, id, apperrors.ErrVersionConflict)
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, apperrors.Conflict("username already in use")
		}
		logrus.WithFields(logrus.Fields{
			"userID": id.Hex(),
			"error":  err,
		}).Error("Failed to update user")
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	logrus.WithField("userID", id.Hex()).Info("User updated successfully")
	return user, nil
}

// ListUsers returns one page of users other than exclude, plus the total count.
func (r *UserRepository) ListUsers(ctx context.Context, exclude primitive.ObjectID, skip, limit int64) ([]models.User, int64, error) {
	filter := bson.M{"_id": bson.M{"$ne": exclude}}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(skip).
		SetLimit(limit)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("failed to decode users: %w", err)
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}
	return users, total, nil
}

// SearchUsers matches usernames case-insensitively by substring.
func (r *UserRepository) SearchUsers(ctx context.Context, exclude primitive.ObjectID, username string, limit int64) ([]models.User, error) {
	filter := bson.M{
		"_id":      bson.M{"$ne": exclude},
		"username": primitive.Regex{Pattern: regexp.QuoteMeta(username), Options: "i"},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// AddToWatchlist pushes movieID unless either list already holds it.
func (r *UserRepository) AddToWatchlist(ctx context.Context, id primitive.ObjectID, movieID string, at time.Time) (*models.User, error) {
	user, err := r.findOneAndUpdate(ctx,
		bson.M{
			"_id":                id,
			"watchlist.movie_id": bson.M{"$ne": movieID},
			"watched.movie_id":   bson.M{"$ne": movieID},
		},
		bson.M{
			"$push": bson.M{"watchlist": models.MovieEntry{MovieID: movieID, AddedAt: at}},
			"$set":  bson.M{"updated_at": at},
			"$inc":  bumpVersion,
		},
	)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.watchlistConflict(ctx, id, movieID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add to watchlist: %w", err)
	}
	return user, nil
}

// watchlistConflict explains why AddToWatchlist matched nothing.
func (r *UserRepository) watchlistConflict(ctx context.Context, id primitive.ObjectID, movieID string) error {
	n, err := r.collection.CountDocuments(ctx,
		bson.M{"_id": id, "watched.movie_id": movieID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return fmt.Errorf("failed to check watched list: %w", err)
	}
	if n > 0 {
		return apperrors.ErrAlreadyWatched
	}
	return r.missOr(ctx, id, apperrors.ErrAlreadyListed)
}

func (r *UserRepository) RemoveFromWatchlist(ctx context.Context, id primitive.ObjectID, movieID string) (*models.User, error) {
	return r.pullEntry(ctx, id, "watchlist", movieID)
}

func (r *UserRepository) RemoveFromWatched(ctx context.Context, id primitive.ObjectID, movieID string) (*models.User, error) {
	return r.pullEntry(ctx, id, "watched", movieID)
}

// MarkWatched removes movieID from the watchlist and appends it to the watched
// list in the same update. If the movie was already watched only the removal happens.
func (r *UserRepository) MarkWatched(ctx context.Context, id primitive.ObjectID, movieID string, at time.Time) (*models.User, error) {
	user, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": id, "watched.movie_id": bson.M{"$ne": movieID}},
		bson.M{
			"$pull": bson.M{"watchlist": bson.M{"movie_id": movieID}},
			"$push": bson.M{"watched": models.MovieEntry{MovieID: movieID, AddedAt: at}},
			"$set":  bson.M{"updated_at": at},
			"$inc":  bumpVersion,
		},
	)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return r.pullEntry(ctx, id, "watchlist", movieID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to mark movie as watched: %w", err)
	}
	return user, nil
}

// AddFollowing records that followerID follows targetID. It refuses to add an
// edge that is already present.
func (r *UserRepository) AddFollowing(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": followerID, "following": bson.M{"$ne": targetID}},
		bson.M{"$addToSet": bson.M{"following": targetID}, "$inc": bumpVersion},
	)
	if err != nil {
		return fmt.Errorf("failed to add following: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missOr(ctx, followerID, apperrors.ErrAlreadyFollowing)
	}
	return nil
}

func (r *UserRepository) AddFollower(ctx context.Context, targetID, followerID primitive.ObjectID) error {
	return r.editEdge(ctx, targetID, "$addToSet", "followers", followerID)
}

func (r *UserRepository) RemoveFollowing(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	return r.editEdge(ctx, followerID, "$pull", "following", targetID)
}

func (r *UserRepository) RemoveFollower(ctx context.Context, targetID, followerID primitive.ObjectID) error {
	return r.editEdge(ctx, targetID, "$pull", "followers", followerID)
}

// ListFollowEdges streams the follow lists of every user.
func (r *UserRepository) ListFollowEdges(ctx context.Context) ([]models.FollowEdges, error) {
	opts := options.Find().SetProjection(bson.M{"following": 1, "followers": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch follow edges: %w", err)
	}
	defer cursor.Close(ctx)

	var edges []models.FollowEdges
	for cursor.Next(ctx) {
		var e models.FollowEdges
		if err := cursor.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode follow edges: %w", err)
		}
		edges = append(edges, e)
	}
	return edges, cursor.Err()
}

// ActivatePremium sets the premium fields and appends the history entry atomically.
func (r *UserRepository) ActivatePremium(ctx context.Context, id primitive.ObjectID, expiry time.Time, reference string, event models.PremiumEvent) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{
			"$set": bson.M{
				"is_premium":        true,
				"premium_expiry":    expiry,
				"payment_reference": reference,
				"updated_at":        event.Date,
			},
			"$push": bson.M{"premium_history": event},
			"$inc":  bumpVersion,
		},
	)
	if err != nil {
		logrus.WithError(err).WithField("userID", id.Hex()).Error("Failed to activate premium")
		return fmt.Errorf("failed to activate premium: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) AppendPremiumEvent(ctx context.Context, id primitive.ObjectID, event models.PremiumEvent) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$push": bson.M{"premium_history": event}, "$inc": bumpVersion},
	)
	if err != nil {
		return fmt.Errorf("failed to append premium history: %w", err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) editEdge(ctx context.Context, id primitive.ObjectID, op, field string, other primitive.ObjectID) error {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{op: bson.M{field: other}, "$inc": bumpVersion},
	)
	if err != nil {
		return fmt.Errorf("failed to update %s of user %s: %w", field, id.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) pullEntry(ctx context.Context, id primitive.ObjectID, list, movieID string) (*models.User, error) {
	user, err := r.findOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{
			"$pull": bson.M{list: bson.M{"movie_id": movieID}},
			"$set":  bson.M{"updated_at": time.Now()},
			"$inc":  bumpVersion,
		},
	)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to remove from %s: %w", list, err)
	}
	return user, nil
}

func (r *UserRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user models.User
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// missOr resolves a guarded write that matched nothing: either the user does
// not exist, or the guard rejected it and guardErr applies.
func (r *UserRepository) missOr(ctx context.Context, id primitive.ObjectID, guardErr error) error {
	return userMissOr(ctx, r.collection, id, guardErr)
}

func userMissOr(ctx context.Context, coll *mongo.Collection, id primitive.ObjectID, guardErr error) error {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("failed to check user existence: %w", err)
	}
	if n == 0 {
		return apperrors.ErrUserNotFound
	}
	return guardErr
}
