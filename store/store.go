package store

import (
	"context"
	"errors"
	"time"

	"DoctorPortal/models"
)

var (
	// ErrInvalidID is returned when a record id is not a valid ObjectID hex string.
	ErrInvalidID = errors.New("invalid id")
)

type Services interface {
	List(ctx context.Context) ([]models.Service, error)
	// ListNames returns every service projected to its id and name.
	ListNames(ctx context.Context) ([]models.ServiceSummary, error)
	Insert(ctx context.Context, svc models.Service) (models.InsertResult, error)
	Count(ctx context.Context) (int64, error)
}

type Bookings interface {
	ListByDate(ctx context.Context, date string) ([]models.Booking, error)
	ListByPatient(ctx context.Context, patient string) ([]models.Booking, error)
	// FindByID returns nil and no error when the booking does not exist.
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	// CreateIfAbsent inserts b unless a booking with the same
	// (treatment, date, patient) exists, in which case that booking is
	// returned with created=false.
	CreateIfAbsent(ctx context.Context, b models.Booking) (created bool, booking models.Booking, err error)
}

type Users interface {
	List(ctx context.Context) ([]models.User, error)
	// FindByEmail returns a nil user and no error when absent.
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Upsert(ctx context.Context, email string, fields map[string]interface{}) (models.UpdateResult, error)
	SetRole(ctx context.Context, email, role string) (models.UpdateResult, error)
}

type Doctors interface {
	Insert(ctx context.Context, d models.Doctor) (models.InsertResult, error)
	List(ctx context.Context) ([]models.Doctor, error)
	DeleteByEmail(ctx context.Context, email string) (models.DeleteResult, error)
}

type Payments interface {
	// ConfirmBookingPayment records p and marks the booking paid with
	// p.TransactionID.
	ConfirmBookingPayment(ctx context.Context, bookingID string, p models.Payment) (models.PaymentConfirmation, error)
	// Unreconciled lists payments created after since whose booking exists
	// but is not marked paid.
	Unreconciled(ctx context.Context, since time.Time) ([]models.Payment, error)
	MarkBookingPaid(ctx context.Context, bookingID, transactionID string) (models.UpdateResult, error)
}

// Store groups the five collections the API works with.
type Store struct {
	Services Services
	Bookings Bookings
	Users    Users
	Doctors  Doctors
	Payments Payments
}
