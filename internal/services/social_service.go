package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultPageSize   = 12
	MaxPageSize       = 50
	SearchResultLimit = 20
)

// UserSummary is a user card in listings and search results.
type UserSummary struct {
	ID             primitive.ObjectID `json:"id"`
	Username       string             `json:"username"`
	Avatar         string             `json:"avatar"`
	WatchedCount   int                `json:"watchedCount"`
	WatchlistCount int                `json:"watchlistCount"`
	ReviewsCount   int                `json:"reviewsCount"`
	FollowersCount int                `json:"followersCount"`
	FollowingCount int                `json:"followingCount"`
	IsFollowing    bool               `json:"isFollowing"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	TotalPages int64 `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

type UserPage struct {
	Users      []UserSummary `json:"users"`
	Pagination Pagination    `json:"pagination"`
}

type ProfileStats struct {
	WatchedCount   int `json:"watchedCount"`
	WatchlistCount int `json:"watchlistCount"`
	ReviewsCount   int `json:"reviewsCount"`
	FollowersCount int `json:"followersCount"`
	FollowingCount int `json:"followingCount"`
}

// PublicProfile is what other users see of an account: no email, no
// password hash and no payment data.
type PublicProfile struct {
	ID          primitive.ObjectID   `json:"id"`
	Username    string               `json:"username"`
	Avatar      string               `json:"avatar"`
	IsPremium   bool                 `json:"isPremium"`
	Watchlist   []models.MovieEntry  `json:"watchlist"`
	Watched     []models.MovieEntry  `json:"watched"`
	Reviews     []models.Review      `json:"reviews"`
	Following   []primitive.ObjectID `json:"following"`
	Followers   []primitive.ObjectID `json:"followers"`
	CreatedAt   time.Time            `json:"createdAt"`
	Stats       ProfileStats         `json:"stats"`
	IsFollowing bool                 `json:"isFollowing"`
}

// ReconcileReport summarises one repair pass over the follow graph.
type ReconcileReport struct {
	UsersScanned     int `json:"usersScanned"`
	FollowersAdded   int `json:"followersAdded"`
	FollowersRemoved int `json:"followersRemoved"`
	Failures         int `json:"failures"`
}

type SocialService struct {
	users    UserStore
	follows  FollowStore
	notifier Notifier
	activity ActivityRecorder
}

// NewSocialService creates the service. notifier and activity may be nil.
func NewSocialService(users UserStore, follows FollowStore, notifier Notifier, activity ActivityRecorder) *SocialService {
	return &SocialService{
		users:    users,
		follows:  follows,
		notifier: notifier,
		activity: activity,
	}
}

// Follow makes followerID follow targetID. The two edge lists are written
// separately; if the second write fails the edge stays one-sided until
// ReconcileFollowEdges repairs it.
func (s *SocialService) Follow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if followerID == targetID {
		return apperrors.ErrSelfFollow
	}
	target, err := s.users.GetUserByID(ctx, targetID)
	if err != nil {
		return err
	}
	follower, err := s.users.GetUserByID(ctx, followerID)
	if err != nil {
		return err
	}
	if follower.IsFollowing(targetID) {
		return apperrors.ErrAlreadyFollowing
	}

	if err := s.follows.AddFollowing(ctx, followerID, targetID); err != nil {
		return err
	}
	if err := s.follows.AddFollower(ctx, targetID, followerID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"followerID": followerID.Hex(),
			"targetID":   targetID.Hex(),
		}).Error("Follow left one-sided: followers list not updated")
		return apperrors.Internal("failed to update followers", err)
	}

	logrus.WithFields(logrus.Fields{
		"followerID": followerID.Hex(),
		"targetID":   targetID.Hex(),
	}).Info("User followed")

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, &models.Notification{
			UserID:   targetID,
			ActorID:  followerID,
			Type:     models.NotificationNewFollower,
			Title:    "New follower",
			Message:  fmt.Sprintf("%s started following you", follower.Username),
			TargetID: &followerID,
		})
		if err != nil {
			logrus.WithError(err).Warn("Failed to send follow notification")
		}
	}
	if s.activity != nil {
		msg := fmt.Sprintf("%s started following %s", follower.Username, target.Username)
		if err := s.activity.LogActivity(ctx, followerID, follower.Username, models.ActivityFollowed, targetID.Hex(), msg); err != nil {
			logrus.WithError(err).Warn("Failed to log activity")
		}
	}
	return nil
}

// Unfollow removes the follow edge in both directions. Removing an edge that
// does not exist is not an error.
func (s *SocialService) Unfollow(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	if followerID == targetID {
		return apperrors.Validation("you cannot unfollow yourself")
	}
	if _, err := s.users.GetUserByID(ctx, targetID); err != nil {
		return err
	}

	if err := s.follows.RemoveFollowing(ctx, followerID, targetID); err != nil {
		return err
	}
	if err := s.follows.RemoveFollower(ctx, targetID, followerID); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"followerID": followerID.Hex(),
			"targetID":   targetID.Hex(),
		}).Error("Unfollow left one-sided: followers list not updated")
		return apperrors.Internal("failed to update followers", err)
	}

	logrus.WithFields(logrus.Fields{
		"followerID": followerID.Hex(),
		"targetID":   targetID.Hex(),
	}).Info("User unfollowed")
	return nil
}

// ReconcileFollowEdges makes every followers list the exact inverse of the
// following lists, which are taken as the source of truth.
func (s *SocialService) ReconcileFollowEdges(ctx context.Context) (*ReconcileReport, error) {
	edges, err := s.follows.ListFollowEdges(ctx)
	if err != nil {
		return nil, err
	}

	report := &ReconcileReport{UsersScanned: len(edges)}
	expected := make(map[primitive.ObjectID]map[primitive.ObjectID]struct{}, len(edges))
	for _, e := range edges {
		for _, target := range e.Following {
			if expected[target] == nil {
				expected[target] = make(map[primitive.ObjectID]struct{})
			}
			expected[target][e.ID] = struct{}{}
		}
	}

	for _, e := range edges {
		actual := make(map[primitive.ObjectID]struct{}, len(e.Followers))
		for _, f := range e.Followers {
			actual[f] = struct{}{}
			if _, ok := expected[e.ID][f]; ok {
				continue
			}
			// The scan is not a snapshot: f may have followed after its document was read.
			current, err := s.users.GetUserByID(ctx, f)
			if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
				report.Failures++
				logrus.WithError(err).WithField("userID", f.Hex()).Warn("Failed to recheck follower")
				continue
			}
			if current != nil && current.IsFollowing(e.ID) {
				continue
			}
			if err := s.follows.RemoveFollower(ctx, e.ID, f); err != nil {
				report.Failures++
				logrus.WithError(err).WithField("userID", e.ID.Hex()).Warn("Failed to remove dangling follower")
				continue
			}
			report.FollowersRemoved++
		}
		for f := range expected[e.ID] {
			if _, ok := actual[f]; ok {
				continue
			}
			if err := s.follows.AddFollower(ctx, e.ID, f); err != nil {
				report.Failures++
				logrus.WithError(err).WithField("userID", e.ID.Hex()).Warn("Failed to add missing follower")
				continue
			}
			report.FollowersAdded++
		}
	}

	logrus.WithFields(logrus.Fields{
		"usersScanned":     report.UsersScanned,
		"followersAdded":   report.FollowersAdded,
		"followersRemoved": report.FollowersRemoved,
		"failures":         report.Failures,
	}).Info("Follow graph reconciled")
	return report, nil
}

// ListUsers pages through all users except the viewer.
func (s *SocialService) ListUsers(ctx context.Context, viewerID primitive.ObjectID, page, limit int64) (*UserPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	viewer, err := s.users.GetUserByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	users, total, err := s.users.ListUsers(ctx, viewerID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &UserPage{
		Users: summaries(viewer, users),
		Pagination: Pagination{
			Total:      total,
			Page:       page,
			TotalPages: totalPages,
			HasMore:    page < totalPages,
		},
	}, nil
}

// SearchUsers finds users whose username contains term, ignoring case.
func (s *SocialService) SearchUsers(ctx context.Context, viewerID primitive.ObjectID, term string) ([]UserSummary, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, apperrors.Validation("a search term is required")
	}
	viewer, err := s.users.GetUserByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	users, err := s.users.SearchUsers(ctx, viewerID, term, SearchResultLimit)
	if err != nil {
		return nil, err
	}
	return summaries(viewer, users), nil
}

func (s *SocialService) GetPublicProfile(ctx context.Context, viewerID, userID primitive.ObjectID) (*PublicProfile, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	viewer, err := s.users.GetUserByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	return &PublicProfile{
		ID:        user.ID,
		Username:  user.Username,
		Avatar:    user.Avatar,
		IsPremium: user.IsPremium,
		Watchlist: user.Watchlist,
		Watched:   user.Watched,
		Reviews:   user.Reviews,
		Following: user.Following,
		Followers: user.Followers,
		CreatedAt: user.CreatedAt,
		Stats: ProfileStats{
			WatchedCount:   len(user.Watched),
			WatchlistCount: len(user.Watchlist),
			ReviewsCount:   len(user.Reviews),
			FollowersCount: len(user.Followers),
			FollowingCount: len(user.Following),
		},
		IsFollowing: viewer.IsFollowing(userID),
	}, nil
}

func (s *SocialService) GetFollowers(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.publicUsers(ctx, user.Followers)
}

func (s *SocialService) GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]models.PublicUser, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.publicUsers(ctx, user.Following)
}

func (s *SocialService) publicUsers(ctx context.Context, ids []primitive.ObjectID) ([]models.PublicUser, error) {
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func summaries(viewer *models.User, users []models.User) []UserSummary {
	out := make([]UserSummary, 0, len(users))
	for i := range users {
		u := &users[i]
		out = append(out, UserSummary{
			ID:             u.ID,
			Username:       u.Username,
			Avatar:         u.Avatar,
			WatchedCount:   len(u.Watched),
			WatchlistCount: len(u.Watchlist),
			ReviewsCount:   len(u.Reviews),
			FollowersCount: len(u.Followers),
			FollowingCount: len(u.Following),
			IsFollowing:    viewer.IsFollowing(u.ID),
		})
	}
	return out
}
