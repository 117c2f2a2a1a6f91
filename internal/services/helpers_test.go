package services

import (
	"context"
	"sync"
	"testing"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/metadata"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/Dias221467/cometa-films-backend/internal/payment"
	"github.com/Dias221467/cometa-films-backend/internal/repository/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, notif *models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, *notif)
	return nil
}

type recordingActivity struct {
	mu    sync.Mutex
	types []string
}

func (a *recordingActivity) LogActivity(ctx context.Context, userID primitive.ObjectID, username, actionType, target, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.types = append(a.types, actionType)
	return nil
}

type staticMovies map[string]string

func (m staticMovies) GetMovie(ctx context.Context, movieID string) metadata.Movie {
	title, ok := m[movieID]
	if !ok {
		return metadata.Unknown(movieID)
	}
	return metadata.Movie{TMDBID: movieID, Title: title}
}

func (m staticMovies) GetMovies(ctx context.Context, movieIDs []string) []metadata.Movie {
	movies := make([]metadata.Movie, 0, len(movieIDs))
	for _, id := range movieIDs {
		movies = append(movies, m.GetMovie(ctx, id))
	}
	return movies
}

type fakeGateway struct {
	status     string
	captureErr error
	captured   []string
}

func (g *fakeGateway) CreateOrder(ctx context.Context) (*payment.Order, error) {
	return &payment.Order{ID: "ORDER-1", ApproveURL: "https://example.test/approve"}, nil
}

func (g *fakeGateway) CaptureOrder(ctx context.Context, orderID string) (*payment.Capture, error) {
	g.captured = append(g.captured, orderID)
	if g.captureErr != nil {
		return nil, g.captureErr
	}
	return &payment.Capture{OrderID: orderID, Status: g.status}, nil
}

func seedUser(t *testing.T, store *memstore.Store, username string) *models.User {
	t.Helper()
	user, err := store.CreateUser(context.Background(), &models.User{
		Username: username,
		Email:    username + "@example.com",
		Avatar:   models.DefaultAvatar,
	})
	require.NoError(t, err)
	return user
}

func assertKind(t *testing.T, err error, kind apperrors.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperrors.KindOf(err), "unexpected error: %v", err)
}
