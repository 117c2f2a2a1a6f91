package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/Dias221467/cometa-films-backend/internal/apperrors"
	"github.com/Dias221467/cometa-films-backend/internal/models"
	"github.com/Dias221467/cometa-films-backend/internal/payment"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PremiumStatus is computed at read time. The premium flag is never cleared
// on expiry; an expired subscription simply reports zero remaining days.
type PremiumStatus struct {
	IsPremium     bool       `json:"isPremium"`
	PremiumExpiry *time.Time `json:"premiumExpiry"`
	RemainingDays int        `json:"remainingDays"`
}

type PremiumService struct {
	users   UserStore
	store   PremiumStore
	gateway PaymentGateway
	now     func() time.Time
}

func NewPremiumService(users UserStore, store PremiumStore, gateway PaymentGateway) *PremiumService {
	return &PremiumService{
		users:   users,
		store:   store,
		gateway: gateway,
		now:     time.Now,
	}
}

func (s *PremiumService) GetStatus(ctx context.Context, userID primitive.ObjectID) (*PremiumStatus, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PremiumStatus{
		IsPremium:     user.IsPremium,
		PremiumExpiry: user.PremiumExpiry,
		RemainingDays: remainingDays(user, s.now()),
	}, nil
}

// CreateSubscription opens a gateway order the buyer must approve.
func (s *PremiumService) CreateSubscription(ctx context.Context) (*payment.Order, error) {
	order, err := s.gateway.CreateOrder(ctx)
	if err != nil {
		return nil, apperrors.Upstream("failed to start the payment", err)
	}
	return order, nil
}

// CapturePayment captures an approved order and, if the gateway reports it
// completed, activates premium for one calendar month from now.
func (s *PremiumService) CapturePayment(ctx context.Context, userID primitive.ObjectID, orderID string) (*PremiumStatus, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apperrors.Validation("order id is required")
	}

	capture, err := s.gateway.CaptureOrder(ctx, orderID)
	if err != nil {
		return nil, apperrors.Upstream("failed to process the payment", err)
	}
	if capture.Status != payment.StatusCompleted {
		logrus.WithFields(logrus.Fields{
			"userID":  userID.Hex(),
			"orderID": orderID,
			"status":  capture.Status,
		}).Warn("Payment not completed")
		return nil, apperrors.Validation(fmt.Sprintf("payment not completed: status %s", capture.Status))
	}

	now := s.now()
	expiry := now.AddDate(0, 1, 0)
	event := models.PremiumEvent{
		Action:  models.PremiumSubscribed,
		Date:    now,
		Details: fmt.Sprintf("Premium subscription activated - PayPal order %s", orderID),
	}
	if err := s.store.ActivatePremium(ctx, userID, expiry, orderID, event); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"userID":  userID.Hex(),
		"orderID": orderID,
		"expiry":  expiry,
	}).Info("Premium activated")

	return &PremiumStatus{
		IsPremium:     true,
		PremiumExpiry: &expiry,
		RemainingDays: daysUntil(expiry, now),
	}, nil
}

// CancelSubscription records the cancellation. Premium stays active until the
// current expiry; the returned status reflects that.
func (s *PremiumService) CancelSubscription(ctx context.Context, userID primitive.ObjectID) (*PremiumStatus, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsPremium {
		return nil, apperrors.Validation("you do not have an active subscription")
	}

	now := s.now()
	event := models.PremiumEvent{
		Action:  models.PremiumCanceled,
		Date:    now,
		Details: "Premium subscription canceled by the user",
	}
	if err := s.store.AppendPremiumEvent(ctx, userID, event); err != nil {
		return nil, err
	}

	logrus.WithField("userID", userID.Hex()).Info("Premium subscription canceled")
	return &PremiumStatus{
		IsPremium:     user.IsPremium,
		PremiumExpiry: user.PremiumExpiry,
		RemainingDays: remainingDays(user, now),
	}, nil
}

func remainingDays(user *models.User, now time.Time) int {
	if !user.IsPremium || user.PremiumExpiry == nil {
		return 0
	}
	return daysUntil(*user.PremiumExpiry, now)
}

// daysUntil rounds partial days up and never goes below zero.
func daysUntil(t, now time.Time) int {
	days := int(math.Ceil(t.Sub(now).Hours() / 24))
	if days < 0 {
		return 0
	}
	return days
}
