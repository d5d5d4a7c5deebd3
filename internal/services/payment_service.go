package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/zunayedTheCreator/property-prospect-server/internal/config"
)

// PaymentHandle is what the client needs to complete a payment.
type PaymentHandle struct {
	ClientSecret string `json:"clientSecret"`
	IntentID     string `json:"intentId"`
}

// IPaymentService issues payment intents.
type IPaymentService interface {
	CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*PaymentHandle, error)
}

// paymentIntentAPI is the slice of the Stripe client the service calls.
type paymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type stripePaymentService struct {
	intents  paymentIntentAPI
	currency string
}

// NewPaymentService returns a Stripe-backed service, or a logging one when no
// secret key is configured or services are mocked.
func NewPaymentService(cfg *config.Config) IPaymentService {
	if cfg.MockServices || cfg.StripeSecretKey == "" {
		log.Println("Stripe key not configured, payment intents will be mocked")
		return &loggingPaymentService{currency: cfg.PaymentCurrency}
	}
	sc := client.New(cfg.StripeSecretKey, nil)
	return newStripePaymentService(sc.PaymentIntents, cfg.PaymentCurrency)
}

func newStripePaymentService(intents paymentIntentAPI, currency string) *stripePaymentService {
	if currency == "" {
		currency = "usd"
	}
	return &stripePaymentService{intents: intents, currency: strings.ToLower(currency)}
}

// minorUnits converts a price to cents, rounding half away from zero.
func minorUnits(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(decimal.NewFromInt(100)).Round(0)
	if !cents.IsPositive() {
		return 0, fmt.Errorf("%w: price must be positive, got %s", ErrInvalidArgument, amount.String())
	}
	if !cents.IsInteger() || cents.GreaterThan(decimal.NewFromInt(99999999)) {
		return 0, fmt.Errorf("%w: price %s is out of range", ErrInvalidArgument, amount.String())
	}
	return cents.IntPart(), nil
}

func (s *stripePaymentService) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*PaymentHandle, error) {
	cents, err := minorUnits(amount)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(cents),
		Currency: stripe.String(s.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())

	pi, err := s.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return &PaymentHandle{ClientSecret: pi.ClientSecret, IntentID: pi.ID}, nil
}

// loggingPaymentService fakes payment intents for local development and tests.
type loggingPaymentService struct {
	currency string
}

func (s *loggingPaymentService) CreatePaymentIntent(ctx context.Context, amount decimal.Decimal) (*PaymentHandle, error) {
	cents, err := minorUnits(amount)
	if err != nil {
		return nil, err
	}
	id := "pi_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	secret := id + "_secret_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	log.Printf("Mock payment intent %s for %d %s", id, cents, s.currency)
	return &PaymentHandle{ClientSecret: secret, IntentID: id}, nil
}
