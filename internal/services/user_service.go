package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// RegisterInput is the data needed to open an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Avatar   string
}

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo UserStore
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{
		repo: repo,
	}
}

// RegisterUser registers a new user after hashing their password.
func (s *UserService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	logrus.Info("Registering new user")

	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	if username == "" || email == "" || in.Password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, apperrors.Validation("username, email and password are required")
	}
	if len([]rune(username)) < MinUsernameLength {
		return nil, apperrors.Validation(fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.Validation(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, apperrors.Validation("invalid email format")
	}

	avatar, err := resolveAvatar(in.Avatar)
	if err != nil {
		return nil, err
	}

	// Check if the email is already registered
	existingUser, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}
	if existingUser != nil {
		logrus.WithField("email", email).Warn("Email already in use")
		return nil, apperrors.Conflict("email already in use")
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		HashedPassword: string(hashedPwd),
		Avatar:         avatar,
	}
	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, err
	}

	logrus.WithField("userID", createdUser.ID.Hex()).Info("User registered successfully")
	return createdUser, nil
}

// AuthenticateUser verifies the credentials and returns the user.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredential
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("userID", user.ID.Hex()).Warn("Password mismatch")
		return nil, apperrors.ErrInvalidCredential
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// UpdateProfile changes the username and/or avatar. The write is rejected with
// a conflict if the record changed after it was read here. Review snapshots
// keep the old values until each review is next edited.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, update models.ProfileUpdate) (*models.User, error) {
	if update.Username == nil && update.Avatar == nil {
		return nil, apperrors.Validation("nothing to update")
	}
	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if len([]rune(username)) < MinUsernameLength {
			return nil, apperrors.Validation(fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
		}
		update.Username = &username
	}
	if update.Avatar != nil {
		if _, ok := models.Avatars[*update.Avatar]; !ok {
			return nil, apperrors.Validation("invalid avatar")
		}
	}

	current, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProfile(ctx, id, current.Version, update)
	if err != nil {
		logrus.WithError(err).WithField("userID", id.Hex()).Warn("Profile update rejected")
		return nil, err
	}
	return updated, nil
}

func resolveAvatar(avatar string) (string, error) {
	if avatar == "" {
		return models.DefaultAvatar, nil
	}
	if _, ok := models.Avatars[avatar]; !ok {
		return "", apperrors.Validation("invalid avatar")
	}
	return avatar, nil
}
