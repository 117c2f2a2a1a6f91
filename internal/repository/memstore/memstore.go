// Package memstore is an in-memory implementation of the repository
// interfaces with the same error semantics as the MongoDB repositories.
// Services and handlers are tested against it.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu            sync.Mutex
	users         map[primitive.ObjectID]*models.User
	order         []primitive.ObjectID
	notifications []models.Notification
	activities    []models.Activity
}

func New() *Store {
	return &Store{users: make(map[primitive.ObjectID]*models.User)}
}

// Put stores user as is, bypassing validation. Tests use it to seed
// states such as asymmetric follow edges.
func (s *Store) Put(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if _, ok := s.users[user.ID]; !ok {
		s.order = append(s.order, user.ID)
	}
	u := cloneUser(user)
	u.EnsureCollections()
	s.users[user.ID] = u
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, apperrors.Conflict("username or email already in use")
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	user.Version = 1
	user.EnsureCollections()

	s.users[user.ID] = cloneUser(user)
	s.order = append(s.order, user.ID)
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *Store) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			users = append(users, models.User{ID: u.ID, Username: u.Username, Avatar: u.Avatar})
		}
	}
	return users, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, expectedVersion int64, update models.ProfileUpdate) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if u.Version != expectedVersion {
		return nil, apperrors.ErrVersionConflict
	}
	if update.Username != nil {
		for _, other := range s.users {
			if other.ID != id && other.Username == *update.Username {
				return nil, apperrors.Conflict("username already in use")
			}
		}
		u.Username = *update.Username
	}
	if update.Avatar != nil {
		u.Avatar = *update.Avatar
	}
	s.touch(u, time.Now())
	return cloneUser(u), nil
}

func (s *Store) ListUsers(ctx context.Context, exclude primitive.ObjectID, skip, limit int64) ([]models.User, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []models.User
	for _, id := range s.order {
		if id != exclude {
			all = append(all, *cloneUser(s.users[id]))
		}
	}
	total := int64(len(all))
	page := []models.User{}
	for i := skip; i < total && i < skip+limit; i++ {
		page = append(page, all[i])
	}
	return page, total, nil
}

func (s *Store) SearchUsers(ctx context.Context, exclude primitive.ObjectID, username string, limit int64) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	term := strings.ToLower(username)
	users := []models.User{}
	for _, id := range s.order {
		u := s.users[id]
		if id == exclude || !strings.Contains(strings.ToLower(u.Username), term) {
			continue
		}
		users = append(users, *cloneUser(u))
		if int64(len(users)) == limit {
			break
		}
	}
	return users, nil
}

func (s *Store) AddToWatchlist(ctx context.Context, id primitive.ObjectID, movieID string, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	if hasEntry(u.Watched, movieID) {
		return nil, apperrors.ErrAlreadyWatched
	}
	if hasEntry(u.Watchlist, movieID) {
		return nil, apperrors.ErrAlreadyListed
	}
	u.Watchlist = append(u.Watchlist, models.MovieEntry{MovieID: movieID, AddedAt: at})
	s.touch(u, at)
	return cloneUser(u), nil
}

func (s *Store) RemoveFromWatchlist(ctx context.Context, id primitive.ObjectID, movieID string) (*models.User, error) {
	return s.pullEntry(id, movieID, func(u *models.User) *[]models.MovieEntry { return &u.Watchlist })
}

func (s *Store) RemoveFromWatched(ctx context.Context, id primitive.ObjectID, movieID string) (*models.User, error) {
	return s.pullEntry(id, movieID, func(u *models.User) *[]models.MovieEntry { return &u.Watched })
}

func (s *Store) MarkWatched(ctx context.Context, id primitive.ObjectID, movieID string, at time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	u.Watchlist = withoutEntry(u.Watchlist, movieID)
	if !hasEntry(u.Watched, movieID) {
		u.Watched = append(u.Watched, models.MovieEntry{MovieID: movieID, AddedAt: at})
	}
	s.touch(u, at)
	return cloneUser(u), nil
}

func (s *Store) AddFollowing(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[followerID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if u.IsFollowing(targetID) {
		return apperrors.ErrAlreadyFollowing
	}
	u.Following = append(u.Following, targetID)
	u.Version++
	return nil
}

func (s *Store) AddFollower(ctx context.Context, targetID, followerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[targetID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if !containsID(u.Followers, followerID) {
		u.Followers = append(u.Followers, followerID)
	}
	u.Version++
	return nil
}

func (s *Store) RemoveFollowing(ctx context.Context, followerID, targetID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[followerID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Following = withoutID(u.Following, targetID)
	u.Version++
	return nil
}

func (s *Store) RemoveFollower(ctx context.Context, targetID, followerID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[targetID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Followers = withoutID(u.Followers, followerID)
	u.Version++
	return nil
}

func (s *Store) ListFollowEdges(ctx context.Context) ([]models.FollowEdges, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var edges []models.FollowEdges
	for _, id := range s.order {
		u := s.users[id]
		edges = append(edges, models.FollowEdges{
			ID:        u.ID,
			Following: append([]primitive.ObjectID(nil), u.Following...),
			Followers: append([]primitive.ObjectID(nil), u.Followers...),
		})
	}
	return edges, nil
}

func (s *Store) ActivatePremium(ctx context.Context, id primitive.ObjectID, expiry time.Time, reference string, event models.PremiumEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.IsPremium = true
	u.PremiumExpiry = &expiry
	u.PaymentReference = reference
	u.PremiumHistory = append(u.PremiumHistory, event)
	s.touch(u, event.Date)
	return nil
}

func (s *Store) AppendPremiumEvent(ctx context.Context, id primitive.ObjectID, event models.PremiumEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.PremiumHistory = append(u.PremiumHistory, event)
	u.Version++
	return nil
}

func (s *Store) InsertReview(ctx context.Context, userID primitive.ObjectID, review *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if u.ReviewForMovie(review.MovieID) != nil {
		return apperrors.ErrDuplicateReview
	}
	if review.ID.IsZero() {
		review.ID = primitive.NewObjectID()
	}
	if review.Comments == nil {
		review.Comments = []models.Comment{}
	}
	u.Reviews = append(u.Reviews, cloneReview(*review))
	s.touch(u, review.CreatedAt)
	return nil
}

func (s *Store) UpdateReview(ctx context.Context, userID primitive.ObjectID, movieID string, rating int, comment string, author models.PublicUser, at time.Time) (*models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, apperrors.ErrReviewNotFound
	}
	r := u.ReviewForMovie(movieID)
	if r == nil {
		return nil, apperrors.ErrReviewNotFound
	}
	r.Rating = rating
	r.Comment = comment
	r.Username = author.Username
	r.Avatar = author.Avatar
	r.UpdatedAt = &at
	s.touch(u, at)
	out := cloneReview(*r)
	return &out, nil
}

func (s *Store) DeleteReview(ctx context.Context, userID primitive.ObjectID, movieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	kept := u.Reviews[:0]
	for _, r := range u.Reviews {
		if r.MovieID != movieID {
			kept = append(kept, r)
		}
	}
	u.Reviews = kept
	s.touch(u, time.Now())
	return nil
}

func (s *Store) FindUsersWithMovieReview(ctx context.Context, movieID string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := []models.User{}
	for _, id := range s.order {
		u := s.users[id]
		if r := u.ReviewForMovie(movieID); r != nil {
			users = append(users, models.User{
				ID:       u.ID,
				Username: u.Username,
				Avatar:   u.Avatar,
				Reviews:  []models.Review{cloneReview(*r)},
			})
		}
	}
	return users, nil
}

func (s *Store) FindReviewOwner(ctx context.Context, reviewID primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		u := s.users[id]
		if r := u.FindReview(reviewID); r != nil {
			return &models.User{
				ID:       u.ID,
				Username: u.Username,
				Avatar:   u.Avatar,
				Reviews:  []models.Review{cloneReview(*r)},
			}, nil
		}
	}
	return nil, apperrors.ErrReviewNotFound
}

func (s *Store) PushComment(ctx context.Context, ownerID, reviewID primitive.ObjectID, comment *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.review(ownerID, reviewID)
	if r == nil {
		return apperrors.ErrReviewNotFound
	}
	r.Comments = append(r.Comments, cloneComment(*comment))
	s.users[ownerID].Version++
	return nil
}

func (s *Store) SetCommentText(ctx context.Context, ownerID, reviewID, commentID, authorID primitive.ObjectID, text string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.review(ownerID, reviewID)
	if r == nil {
		return apperrors.ErrCommentNotFound
	}
	c := r.FindComment(commentID)
	if c == nil || c.UserID != authorID {
		return apperrors.ErrCommentNotFound
	}
	c.Text = text
	c.IsEdited = true
	c.EditedAt = &at
	s.users[ownerID].Version++
	return nil
}

func (s *Store) PullComment(ctx context.Context, ownerID, reviewID, commentID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.review(ownerID, reviewID)
	if r == nil || r.FindComment(commentID) == nil {
		return apperrors.ErrCommentNotFound
	}
	kept := r.Comments[:0]
	for _, c := range r.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	r.Comments = kept
	s.users[ownerID].Version++
	return nil
}

func (s *Store) CreateNotification(ctx context.Context, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = time.Now()
	notif.ExpiresAt = notif.CreatedAt.Add(7 * 24 * time.Hour)
	s.notifications = append(s.notifications, *notif)
	return nil
}

// AddNotification stores notif with its timestamps untouched.
func (s *Store) AddNotification(notif models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if notif.ID.IsZero() {
		notif.ID = primitive.NewObjectID()
	}
	s.notifications = append(s.notifications, notif)
}

func (s *Store) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	out := []models.Notification{}
	for _, n := range s.notifications {
		if n.UserID == userID && n.ExpiresAt.After(now) {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) MarkAsRead(ctx context.Context, userID, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id && s.notifications[i].UserID == userID {
			s.notifications[i].Read = true
			return nil
		}
	}
	return apperrors.NotFound("notification not found")
}

func (s *Store) DeleteNotification(ctx context.Context, userID, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID == id && n.UserID == userID {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return nil
		}
	}
	return apperrors.NotFound("notification not found")
}

func (s *Store) DeleteExpiredNotifications(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	kept := s.notifications[:0]
	var deleted int64
	for _, n := range s.notifications {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		} else {
			deleted++
		}
	}
	s.notifications = kept
	return deleted, nil
}

// Notifications returns every stored notification, expired ones included.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifications...)
}

func (s *Store) CreateActivity(ctx context.Context, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now()
	}
	activity.ID = primitive.NewObjectID()
	s.activities = append(s.activities, *activity)
	return nil
}

func (s *Store) GetActivitiesByUsers(ctx context.Context, userIDs []primitive.ObjectID, limit int64) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Activity{}
	for i := len(s.activities) - 1; i >= 0; i-- {
		a := s.activities[i]
		if containsID(userIDs, a.UserID) {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) review(ownerID, reviewID primitive.ObjectID) *models.Review {
	u, ok := s.users[ownerID]
	if !ok {
		return nil
	}
	return u.FindReview(reviewID)
}

func (s *Store) pullEntry(id primitive.ObjectID, movieID string, list func(*models.User) *[]models.MovieEntry) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	entries := list(u)
	*entries = withoutEntry(*entries, movieID)
	s.touch(u, time.Now())
	return cloneUser(u), nil
}

func (s *Store) touch(u *models.User, at time.Time) {
	u.UpdatedAt = at
	u.Version++
}

func hasEntry(entries []models.MovieEntry, movieID string) bool {
	for _, e := range entries {
		if e.MovieID == movieID {
			return true
		}
	}
	return false
}

func withoutEntry(entries []models.MovieEntry, movieID string) []models.MovieEntry {
	out := []models.MovieEntry{}
	for _, e := range entries {
		if e.MovieID != movieID {
			out = append(out, e)
		}
	}
	return out
}

func containsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func withoutID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := []primitive.ObjectID{}
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Watchlist = append([]models.MovieEntry(nil), u.Watchlist...)
	c.Watched = append([]models.MovieEntry(nil), u.Watched...)
	c.Following = append([]primitive.ObjectID(nil), u.Following...)
	c.Followers = append([]primitive.ObjectID(nil), u.Followers...)
	c.PremiumHistory = append([]models.PremiumEvent(nil), u.PremiumHistory...)
	if u.PremiumExpiry != nil {
		t := *u.PremiumExpiry
		c.PremiumExpiry = &t
	}
	c.Reviews = nil
	for _, r := range u.Reviews {
		c.Reviews = append(c.Reviews, cloneReview(r))
	}
	c.EnsureCollections()
	return &c
}

func cloneReview(r models.Review) models.Review {
	c := r
	if r.UpdatedAt != nil {
		t := *r.UpdatedAt
		c.UpdatedAt = &t
	}
	c.Comments = []models.Comment{}
	for _, cm := range r.Comments {
		c.Comments = append(c.Comments, cloneComment(cm))
	}
	return c
}

func cloneComment(cm models.Comment) models.Comment {
	c := cm
	if cm.ParentID != nil {
		p := *cm.ParentID
		c.ParentID = &p
	}
	if cm.EditedAt != nil {
		t := *cm.EditedAt
		c.EditedAt = &t
	}
	return c
}
