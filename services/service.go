package services

import (
	"errors"
	"fmt"
	"strings"

	"DoctorPortal/metrics"
	"DoctorPortal/notify"
	"DoctorPortal/payment"
	"DoctorPortal/store"
	"DoctorPortal/token"

	"go.uber.org/zap"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden access")
	ErrUpstream     = errors.New("upstream failure")
)

// Notifier is told about every newly stored booking.
type Notifier interface {
	Dispatch(c notify.Confirmation)
}

type Deps struct {
	Store    *store.Store
	Tokens   *token.Service
	Notifier Notifier
	Payments payment.Processor
	Metrics  *metrics.Metrics
	Logger   *zap.Logger
}

// Service composes the store and the external collaborators behind the
// HTTP handlers.
type Service struct {
	store    *store.Store
	tokens   *token.Service
	notifier Notifier
	payments payment.Processor
	metrics  *metrics.Metrics
	log      *zap.Logger
}

func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		store:    d.Store,
		tokens:   d.Tokens,
		notifier: d.Notifier,
		payments: d.Payments,
		metrics:  d.Metrics,
		log:      d.Logger,
	}
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Helper: Get a trimmed, non-empty string
func requireString(field, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", invalid("%s cannot be empty", field)
	}
	return v, nil
}

// storeErr turns an invalid record id into an input error.
func storeErr(err error) error {
	if errors.Is(err, store.ErrInvalidID) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return err
}
