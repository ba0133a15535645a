package services

import (
	"context"

	"DoctorPortal/models"
	"DoctorPortal/notify"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// BookingResult reports whether a booking was created; Booking is the new
// record or the one already held for the same treatment, date and patient.
type BookingResult struct {
	Result  bool           `json:"result"`
	Booking models.Booking `json:"booking"`
}

func validateBooking(b *models.Booking) error {
	fields := []struct {
		name string
		val  *string
	}{
		{"treatment", &b.Treatment},
		{"date", &b.Date},
		{"slot", &b.Slot},
		{"patient", &b.Patient},
	}
	for _, f := range fields {
		v, err := requireString(f.name, *f.val)
		if err != nil {
			return err
		}
		*f.val = v
	}
	return nil
}

/*
* Validate the booking fields
* Create unless the patient already holds this treatment on that date
* Notify the patient in the background
 */
func (s *Service) CreateBooking(ctx context.Context, b models.Booking) (BookingResult, error) {
	if err := validateBooking(&b); err != nil {
		return BookingResult{}, err
	}
	b.ID = primitive.NilObjectID
	b.Paid = false
	b.TransactionID = ""

	created, booking, err := s.store.Bookings.CreateIfAbsent(ctx, b)
	if err != nil {
		s.log.Error("create booking", zap.Error(err))
		return BookingResult{}, err
	}
	s.metrics.Booking(created)
	if !created {
		s.log.Info("booking already exists",
			zap.String("treatment", b.Treatment), zap.String("date", b.Date), zap.String("patient", b.Patient))
		return BookingResult{Result: false, Booking: booking}, nil
	}
	if s.notifier != nil {
		s.notifier.Dispatch(notify.Confirmation{
			Patient:   booking.Patient,
			Treatment: booking.Treatment,
			Date:      booking.Date,
			Slot:      booking.Slot,
		})
	}
	return BookingResult{Result: true, Booking: booking}, nil
}

// PatientBookings lists the bookings of patient, who must be the caller.
func (s *Service) PatientBookings(ctx context.Context, identity, patient string) ([]models.Booking, error) {
	if identity == "" || identity != patient {
		return nil, ErrForbidden
	}
	return s.store.Bookings.ListByPatient(ctx, patient)
}

// Booking returns nil when no booking has the id.
func (s *Service) Booking(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.store.Bookings.FindByID(ctx, id)
	return b, storeErr(err)
}
