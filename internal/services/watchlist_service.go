package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/metadata"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListedMovie is a watchlist or watched entry joined with its display data.
type ListedMovie struct {
	MovieID string         `json:"movieId"`
	AddedAt time.Time      `json:"addedAt"`
	Movie   metadata.Movie `json:"movie"`
}

type WatchlistService struct {
	users    UserStore
	lists    WatchlistStore
	movies   MovieLookup
	activity ActivityRecorder
	now      func() time.Time
}

// NewWatchlistService creates the service. movies and activity may be nil.
func NewWatchlistService(users UserStore, lists WatchlistStore, movies MovieLookup, activity ActivityRecorder) *WatchlistService {
	return &WatchlistService{
		users:    users,
		lists:    lists,
		movies:   movies,
		activity: activity,
		now:      time.Now,
	}
}

func (s *WatchlistService) AddToWatchlist(ctx context.Context, userID primitive.ObjectID, movieID string) ([]models.MovieEntry, error) {
	movieID, err := requireMovieID(movieID)
	if err != nil {
		return nil, err
	}
	user, err := s.lists.AddToWatchlist(ctx, userID, movieID, s.now())
	if err != nil {
		return nil, err
	}
	return user.Watchlist, nil
}

func (s *WatchlistService) RemoveFromWatchlist(ctx context.Context, userID primitive.ObjectID, movieID string) ([]models.MovieEntry, error) {
	movieID, err := requireMovieID(movieID)
	if err != nil {
		return nil, err
	}
	user, err := s.lists.RemoveFromWatchlist(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	return user.Watchlist, nil
}

// MarkWatched moves movieID from the watchlist to the watched list in one write.
func (s *WatchlistService) MarkWatched(ctx context.Context, userID primitive.ObjectID, movieID string) (*models.User, error) {
	movieID, err := requireMovieID(movieID)
	if err != nil {
		return nil, err
	}
	user, err := s.lists.MarkWatched(ctx, userID, movieID, s.now())
	if err != nil {
		return nil, err
	}

	if s.activity != nil {
		title := movieID
		if s.movies != nil {
			title = s.movies.GetMovie(ctx, movieID).Title
		}
		msg := fmt.Sprintf("%s watched %s", user.Username, title)
		if err := s.activity.LogActivity(ctx, userID, user.Username, models.ActivityMovieWatched, movieID, msg); err != nil {
			logrus.WithError(err).Warn("Failed to log activity")
		}
	}
	return user, nil
}

func (s *WatchlistService) RemoveFromWatched(ctx context.Context, userID primitive.ObjectID, movieID string) ([]models.MovieEntry, error) {
	movieID, err := requireMovieID(movieID)
	if err != nil {
		return nil, err
	}
	user, err := s.lists.RemoveFromWatched(ctx, userID, movieID)
	if err != nil {
		return nil, err
	}
	return user.Watched, nil
}

func (s *WatchlistService) GetWatchlist(ctx context.Context, userID primitive.ObjectID) ([]ListedMovie, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, user.Watchlist), nil
}

func (s *WatchlistService) GetWatched(ctx context.Context, userID primitive.ObjectID) ([]ListedMovie, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, user.Watched), nil
}

func (s *WatchlistService) enrich(ctx context.Context, entries []models.MovieEntry) []ListedMovie {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MovieID)
	}
	var movies []metadata.Movie
	if s.movies != nil {
		movies = s.movies.GetMovies(ctx, ids)
	}

	out := make([]ListedMovie, 0, len(entries))
	for i, e := range entries {
		movie := metadata.Unknown(e.MovieID)
		if i < len(movies) {
			movie = movies[i]
		}
		out = append(out, ListedMovie{MovieID: e.MovieID, AddedAt: e.AddedAt, Movie: movie})
	}
	return out
}

func requireMovieID(movieID string) (string, error) {
	movieID = strings.TrimSpace(movieID)
	if movieID == "" {
		return "", apperrors.Validation("movie id is required")
	}
	return movieID, nil
}
