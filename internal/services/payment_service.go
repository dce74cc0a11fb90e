// internal/services/payment_service.go
package services

import (
	"fmt"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"github.com/stripe/stripe-go/v74/refund"

	"github.com/devmarket/devmarket-backend/internal/config"
)

// PaymentService wraps the Stripe client. When no secret key is configured
// (local development, tests) charges and refunds succeed without calling out,
// with synthetic payment IDs produced by the order service.
type PaymentService struct {
	config *config.Config
}

type PaymentIntentResponse struct {
	ClientSecret string `json:"client_secret"`
	PaymentID    string `json:"payment_id"`
	Status       string `json:"status"`
}

func NewPaymentService(config *config.Config) *PaymentService {
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{config: config}
}

func (s *PaymentService) Enabled() bool {
	return s.config.Payment.StripeSecretKey != ""
}

// CreatePaymentIntent charges the post-discount order amount. Amounts are
// stored as dollars and converted to cents at the Stripe boundary.
func (s *PaymentService) CreatePaymentIntent(amount float64, metadata map[string]string) (*PaymentIntentResponse, error) {
	amountInCents := int64(amount * 100)

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents),
		Currency: stripe.String("usd"),
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// RefundPayment refunds the full charge behind a completed order.
func (s *PaymentService) RefundPayment(paymentID, reason string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
	}
	if reason != "" {
		params.AddMetadata("reason", reason)
	}

	r, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create refund: %w", err)
	}

	return r.ID, nil
}
