package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/metadata"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnknownUsername is shown for comments whose author no longer exists.
const UnknownUsername = "Unknown user"

// ReviewInput is the client-supplied part of a review.
type ReviewInput struct {
	MovieID string
	Rating  int
	Comment string
}

// MovieReview is one entry of a movie's review listing.
type MovieReview struct {
	ReviewID     primitive.ObjectID `json:"reviewId"`
	MovieID      string             `json:"movieId"`
	Rating       int                `json:"rating"`
	Comment      string             `json:"comment"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    *time.Time         `json:"updatedAt,omitempty"`
	UserID       primitive.ObjectID `json:"userId"`
	Username     string             `json:"username"`
	Avatar       string             `json:"avatar"`
	CommentCount int                `json:"commentCount"`
}

type MovieReviews struct {
	Movie        metadata.Movie `json:"movie"`
	TotalReviews int            `json:"totalReviews"`
	Reviews      []MovieReview  `json:"reviews"`
}

// CommentView is a comment joined with its author's current profile.
type CommentView struct {
	ID        primitive.ObjectID `json:"id"`
	Text      string             `json:"text"`
	UserID    primitive.ObjectID `json:"userId"`
	Username  string             `json:"username"`
	Avatar    string             `json:"avatar"`
	ParentID  *string            `json:"parentId"`
	CreatedAt time.Time          `json:"createdAt"`
	IsEdited  bool               `json:"isEdited"`
	EditedAt  *time.Time         `json:"editedAt,omitempty"`
}

// ReviewService owns reviews and their comment threads. Every write is a
// single field-scoped update on the owning user document.
type ReviewService struct {
	users    UserStore
	reviews  ReviewStore
	movies   MovieLookup
	notifier Notifier
	activity ActivityRecorder
	now      func() time.Time
}

// NewReviewService creates the service. movies, notifier and activity are
// optional and may be nil.
func NewReviewService(users UserStore, reviews ReviewStore, movies MovieLookup, notifier Notifier, activity ActivityRecorder) *ReviewService {
	return &ReviewService{
		users:    users,
		reviews:  reviews,
		movies:   movies,
		notifier: notifier,
		activity: activity,
		now:      time.Now,
	}
}

// AddReview creates the user's review of a movie. A user reviews a movie at most once.
func (s *ReviewService) AddReview(ctx context.Context, userID primitive.ObjectID, in ReviewInput) (*models.Review, error) {
	in, err := validateReview(in)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.ReviewForMovie(in.MovieID) != nil {
		return nil, apperrors.ErrDuplicateReview
	}

	review := &models.Review{
		ID:        primitive.NewObjectID(),
		MovieID:   in.MovieID,
		Rating:    in.Rating,
		Comment:   in.Comment,
		Username:  user.Username,
		Avatar:    user.Avatar,
		CreatedAt: s.now(),
		Comments:  []models.Comment{},
	}
	// The insert is guarded on movie_id as well, so a concurrent duplicate
	// that passed the check above still fails here.
	if err := s.reviews.InsertReview(ctx, userID, review); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userID":  userID.Hex(),
		"movieID": in.MovieID,
	}).Info("Review created")

	s.logActivity(ctx, user, models.ActivityReviewCreated, in.MovieID,
		fmt.Sprintf("%s reviewed %s", user.Username, s.movieTitle(ctx, in.MovieID)))
	return review, nil
}

// UpdateReview replaces rating and text of the user's review and refreshes the
// author snapshot. Id, creation time and comments are kept.
func (s *ReviewService) UpdateReview(ctx context.Context, userID primitive.ObjectID, in ReviewInput) (*models.Review, error) {
	in, err := validateReview(in)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.reviews.UpdateReview(ctx, userID, in.MovieID, in.Rating, in.Comment, user.Public(), s.now())
}

// DeleteReview removes the user's review of movieID together with its comments.
func (s *ReviewService) DeleteReview(ctx context.Context, userID primitive.ObjectID, movieID string) error {
	if strings.TrimSpace(movieID) == "" {
		return apperrors.Validation("movie id is required")
	}
	return s.reviews.DeleteReview(ctx, userID, movieID)
}

// GetMovieReviews lists every review of movieID, newest first.
func (s *ReviewService) GetMovieReviews(ctx context.Context, movieID string) (*MovieReviews, error) {
	users, err := s.reviews.FindUsersWithMovieReview(ctx, movieID)
	if err != nil {
		return nil, err
	}

	entries := make([]MovieReview, 0, len(users))
	for i := range users {
		u := &users[i]
		r := u.ReviewForMovie(movieID)
		if r == nil {
			continue
		}
		entries = append(entries, MovieReview{
			ReviewID:     r.ID,
			MovieID:      r.MovieID,
			Rating:       r.Rating,
			Comment:      r.Comment,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
			UserID:       u.ID,
			Username:     u.Username,
			Avatar:       u.Avatar,
			CommentCount: len(r.Comments),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})

	return &MovieReviews{
		Movie:        s.lookupMovie(ctx, movieID),
		TotalReviews: len(entries),
		Reviews:      entries,
	}, nil
}

// GetUserReviews returns the reviews written by userID.
func (s *ReviewService) GetUserReviews(ctx context.Context, userID primitive.ObjectID) ([]models.Review, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.Reviews, nil
}

// AddComment appends a comment to a review. parentID is stored as given.
func (s *ReviewService) AddComment(ctx context.Context, reviewID, authorID primitive.ObjectID, text string, parentID *string) (*CommentView, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	owner, err := s.reviews.FindReviewOwner(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	author, err := s.users.GetUserByID(ctx, authorID)
	if err != nil {
		return nil, err
	}

	if parentID != nil && *parentID == "" {
		parentID = nil
	}
	comment := &models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    authorID,
		Text:      text,
		ParentID:  parentID,
		CreatedAt: s.now(),
	}
	if err := s.reviews.PushComment(ctx, owner.ID, reviewID, comment); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"reviewID":  reviewID.Hex(),
		"commentID": comment.ID.Hex(),
	}).Info("Comment added")

	if owner.ID != authorID {
		s.notify(ctx, &models.Notification{
			UserID:   owner.ID,
			ActorID:  authorID,
			Type:     models.NotificationNewComment,
			Title:    "New comment",
			Message:  fmt.Sprintf("%s commented on your review", author.Username),
			TargetID: &reviewID,
		})
	}
	s.logActivity(ctx, author, models.ActivityCommentAdded, reviewID.Hex(),
		fmt.Sprintf("%s commented on a review by %s", author.Username, owner.Username))

	view := commentView(*comment, author.Public())
	return &view, nil
}

// EditComment changes the text of a comment. Only its author may edit it.
func (s *ReviewService) EditComment(ctx context.Context, reviewID, commentID, editorID primitive.ObjectID, text string) (*CommentView, error) {
	if err := validateCommentText(text); err != nil {
		return nil, err
	}

	owner, comment, err := s.findComment(ctx, reviewID, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != editorID {
		return nil, apperrors.Forbidden("you can only edit your own comments")
	}

	at := s.now()
	if err := s.reviews.SetCommentText(ctx, owner.ID, reviewID, commentID, editorID, text, at); err != nil {
		return nil, err
	}

	editor, err := s.users.GetUserByID(ctx, editorID)
	if err != nil {
		return nil, err
	}
	comment.Text = text
	comment.IsEdited = true
	comment.EditedAt = &at

	view := commentView(*comment, editor.Public())
	return &view, nil
}

// DeleteComment removes a comment. Its author and the author of the review
// it belongs to may delete it.
func (s *ReviewService) DeleteComment(ctx context.Context, reviewID, commentID, requesterID primitive.ObjectID) error {
	owner, comment, err := s.findComment(ctx, reviewID, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != requesterID && owner.ID != requesterID {
		return apperrors.Forbidden("you are not allowed to delete this comment")
	}
	return s.reviews.PullComment(ctx, owner.ID, reviewID, commentID)
}

// GetComments returns the comments of a review in stored order, each with its
// author's current username and avatar.
func (s *ReviewService) GetComments(ctx context.Context, reviewID primitive.ObjectID) ([]CommentView, error) {
	owner, err := s.reviews.FindReviewOwner(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	review := owner.FindReview(reviewID)
	if review == nil {
		return nil, apperrors.ErrReviewNotFound
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	for _, c := range review.Comments {
		if _, ok := seen[c.UserID]; !ok {
			seen[c.UserID] = struct{}{}
			ids = append(ids, c.UserID)
		}
	}

	authors, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.PublicUser, len(authors))
	for i := range authors {
		byID[authors[i].ID] = authors[i].Public()
	}

	views := make([]CommentView, 0, len(review.Comments))
	for _, c := range review.Comments {
		author, ok := byID[c.UserID]
		if !ok {
			author = models.PublicUser{ID: c.UserID, Username: UnknownUsername, Avatar: models.DefaultAvatar}
		}
		views = append(views, commentView(c, author))
	}
	return views, nil
}

func (s *ReviewService) findComment(ctx context.Context, reviewID, commentID primitive.ObjectID) (*models.User, *models.Comment, error) {
	owner, err := s.reviews.FindReviewOwner(ctx, reviewID)
	if err != nil {
		return nil, nil, err
	}
	review := owner.FindReview(reviewID)
	if review == nil {
		return nil, nil, apperrors.ErrReviewNotFound
	}
	comment := review.FindComment(commentID)
	if comment == nil {
		return nil, nil, apperrors.ErrCommentNotFound
	}
	return owner, comment, nil
}

func (s *ReviewService) lookupMovie(ctx context.Context, movieID string) metadata.Movie {
	if s.movies == nil {
		return metadata.Unknown(movieID)
	}
	return s.movies.GetMovie(ctx, movieID)
}

func (s *ReviewService) movieTitle(ctx context.Context, movieID string) string {
	if s.activity == nil {
		return movieID
	}
	return s.lookupMovie(ctx, movieID).Title
}

func (s *ReviewService) notify(ctx context.Context, notif *models.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, notif); err != nil {
		logrus.WithError(err).WithField("type", notif.Type).Warn("Failed to send notification")
	}
}

func (s *ReviewService) logActivity(ctx context.Context, user *models.User, actionType, target, message string) {
	if s.activity == nil {
		return
	}
	if err := s.activity.LogActivity(ctx, user.ID, user.Username, actionType, target, message); err != nil {
		logrus.WithError(err).Warn("Failed to log activity")
	}
}

func commentView(c models.Comment, author models.PublicUser) CommentView {
	return CommentView{
		ID:        c.ID,
		Text:      c.Text,
		UserID:    c.UserID,
		Username:  author.Username,
		Avatar:    author.Avatar,
		ParentID:  c.ParentID,
		CreatedAt: c.CreatedAt,
		IsEdited:  c.IsEdited,
		EditedAt:  c.EditedAt,
	}
}

func validateReview(in ReviewInput) (ReviewInput, error) {
	in.MovieID = strings.TrimSpace(in.MovieID)
	in.Comment = strings.TrimSpace(in.Comment)
	if in.MovieID == "" {
		return in, apperrors.Validation("movie id is required")
	}
	if in.Rating < models.MinRating || in.Rating > models.MaxRating {
		return in, apperrors.Validation(fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating))
	}
	if in.Comment == "" {
		return in, apperrors.Validation("review text cannot be empty")
	}
	return in, nil
}

// validateCommentText counts characters, not bytes.
func validateCommentText(text string) error {
	if strings.TrimSpace(text) == "" {
		return apperrors.ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > models.MaxCommentLength {
		return apperrors.ErrCommentTooLong
	}
	return nil
}
