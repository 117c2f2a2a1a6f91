package payment

import (
	"context"
	"fmt"

	"github.com/plutov/paypal/v4"
	"github.com/sirupsen/logrus"
)

// StatusCompleted is the only capture status that activates premium.
const StatusCompleted = "COMPLETED"

// Order is a payment awaiting buyer approval at ApproveURL.
type Order struct {
	ID         string `json:"orderId"`
	ApproveURL string `json:"approveUrl"`
}

// Capture is the outcome of capturing an approved order.
type Capture struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	// Mode is "live" or "sandbox".
	Mode        string
	Price       string
	Currency    string
	BrandName   string
	ReturnURL   string
	CancelURL   string
	Description string
	// BaseURL overrides the API host derived from Mode.
	BaseURL string
}

// PayPalGateway sells the one month premium subscription as a one-off order.
type PayPalGateway struct {
	client *paypal.Client
	config PayPalConfig
}

func NewPayPalGateway(config PayPalConfig) (*PayPalGateway, error) {
	base := config.BaseURL
	if base == "" {
		base = paypal.APIBaseSandBox
		if config.Mode == "live" {
			base = paypal.APIBaseLive
		}
	}
	if config.Description == "" {
		config.Description = "Cometa Films Premium - 1 month"
	}

	client, err := paypal.NewClient(config.ClientID, config.ClientSecret, base)
	if err != nil {
		return nil, fmt.Errorf("failed to create paypal client: %w", err)
	}
	return &PayPalGateway{client: client, config: config}, nil
}

func (g *PayPalGateway) CreateOrder(ctx context.Context) (*Order, error) {
	units := []paypal.PurchaseUnitRequest{{
		Amount: &paypal.PurchaseUnitAmount{
			Currency: g.config.Currency,
			Value:    g.config.Price,
		},
		Description: g.config.Description,
	}}
	appCtx := &paypal.ApplicationContext{
		BrandName: g.config.BrandName,
		ReturnURL: g.config.ReturnURL,
		CancelURL: g.config.CancelURL,
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, appCtx)
	if err != nil {
		logrus.WithError(err).Error("PayPal order creation failed")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	result := &Order{ID: order.ID}
	for _, link := range order.Links {
		if link.Rel == "approve" {
			result.ApproveURL = link.Href
			break
		}
	}
	if result.ApproveURL == "" {
		return nil, fmt.Errorf("order %s has no approve link", order.ID)
	}

	logrus.WithField("orderID", order.ID).Info("PayPal order created")
	return result, nil
}

func (g *PayPalGateway) CaptureOrder(ctx context.Context, orderID string) (*Capture, error) {
	resp, err := g.client.CaptureOrder(ctx, orderID, paypal.CaptureOrderRequest{})
	if err != nil {
		logrus.WithError(err).WithField("orderID", orderID).Error("PayPal capture failed")
		return nil, fmt.Errorf("failed to capture order: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"orderID": orderID,
		"status":  resp.Status,
	}).Info("PayPal order captured")
	return &Capture{OrderID: orderID, Status: resp.Status}, nil
}
