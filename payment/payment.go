package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/client"
	"go.uber.org/zap"
)

const CurrencyUSD = string(stripe.CurrencyUSD)

var (
	ErrInvalidAmount = errors.New("price must be a positive amount")
	// ErrNotConfigured is returned when no secret key is set and dry run is off.
	ErrNotConfigured = errors.New("stripe secret key not configured")
)

// Processor stages a charge with an external payment provider and returns
// the secret the browser uses to complete it.
type Processor interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (clientSecret string, err error)
}

// AmountCents converts a price in currency units to the smallest unit.
func AmountCents(price float64) (int64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := int64(math.Round(price * 100))
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

type StripeConfig struct {
	SecretKey string
	DryRun    bool
	// BaseURL overrides the Stripe API URL, for tests.
	BaseURL string
}

type Stripe struct {
	api        *client.API
	dryRun     bool
	configured bool
	log        *zap.Logger
}

func NewStripe(cfg StripeConfig, log *zap.Logger) *Stripe {
	if log == nil {
		log = zap.NewNop()
	}
	backendCfg := &stripe.BackendConfig{MaxNetworkRetries: stripe.Int64(0)}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg)
	api := client.New(cfg.SecretKey, &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	s := &Stripe{api: api, dryRun: cfg.DryRun, configured: cfg.SecretKey != "", log: log}
	if !s.dryRun && !s.configured {
		log.Warn("STRIPE_SECRET_KEY is not set, payment intents will fail")
	}
	return s
}

func (s *Stripe) CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error) {
	if amountCents <= 0 {
		return "", ErrInvalidAmount
	}
	if s.dryRun {
		id := "pi_dryrun_" + uuid.NewString()[:8]
		s.log.Info("stripe dry run: skipping payment intent", zap.Int64("amount", amountCents))
		return id + "_secret_dryrun", nil
	}
	if !s.configured {
		return "", ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountCents),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.SetIdempotencyKey(uuid.NewString())
	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent: %w", err)
	}
	return pi.ClientSecret, nil
}
