package services

import (
	"context"
	"errors"
	"fmt"

	"DoctorPortal/models"
	"DoctorPortal/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

/*
* Record the payment
* Mark the booking paid with the transactionId
* Both writes go through the store as one operation
 */
func (s *Service) ConfirmPayment(ctx context.Context, bookingID string, p models.Payment) (models.PaymentConfirmation, error) {
	txID, err := requireString("transactionId", p.TransactionID)
	if err != nil {
		return models.PaymentConfirmation{}, err
	}
	p.TransactionID = txID
	p.ID = primitive.NilObjectID
	p.Booking = bookingID

	conf, err := s.store.Payments.ConfirmBookingPayment(ctx, bookingID, p)
	if err != nil {
		s.log.Error("confirm booking payment", zap.String("booking", bookingID), zap.Error(err))
		return models.PaymentConfirmation{}, storeErr(err)
	}
	s.metrics.PaymentConfirmed()
	return conf, nil
}

// CreatePaymentIntent stages a USD card charge for price and returns the
// client secret.
func (s *Service) CreatePaymentIntent(ctx context.Context, price float64) (string, error) {
	amount, err := payment.AmountCents(price)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	secret, err := s.payments.CreateIntent(ctx, amount, payment.CurrencyUSD)
	if err != nil {
		s.log.Error("create payment intent", zap.Int64("amount", amount), zap.Error(err))
		if errors.Is(err, payment.ErrInvalidAmount) {
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return secret, nil
}
