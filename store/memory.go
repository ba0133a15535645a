package store

import (
	"context"
	"reflect"
	"sync"
	"time"

	"DoctorPortal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memory is an in-process Store. A single mutex serialises every operation,
// so the booking existence check and insert are atomic here.
type memory struct {
	mu       sync.Mutex
	services []models.Service
	bookings []models.Booking
	users    []models.User
	doctors  []models.Doctor
	payments []models.Payment
}

// NewMemory returns an empty in-memory Store, optionally seeded with services.
func NewMemory(services ...models.Service) *Store {
	m := &memory{}
	for _, svc := range services {
		if svc.ID.IsZero() {
			svc.ID = primitive.NewObjectID()
		}
		m.services = append(m.services, cloneService(svc))
	}
	return &Store{
		Services: memServices{m},
		Bookings: memBookings{m},
		Users:    memUsers{m},
		Doctors:  memDoctors{m},
		Payments: memPayments{m},
	}
}

func cloneService(s models.Service) models.Service {
	s.Slots = append([]string(nil), s.Slots...)
	return s
}

func cloneUser(u models.User) models.User {
	out := make(models.User, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}

type memServices struct{ *memory }

func (s memServices) List(_ context.Context) ([]models.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, cloneService(svc))
	}
	return out, nil
}

func (s memServices) ListNames(_ context.Context) ([]models.ServiceSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ServiceSummary, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, models.ServiceSummary{ID: svc.ID, Name: svc.Name})
	}
	return out, nil
}

func (s memServices) Insert(_ context.Context, svc models.Service) (models.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if svc.ID.IsZero() {
		svc.ID = primitive.NewObjectID()
	}
	s.services = append(s.services, cloneService(svc))
	return models.InsertResult{Acknowledged: true, InsertedID: svc.ID}, nil
}

func (s memServices) Count(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.services)), nil
}

type memBookings struct{ *memory }

func (b memBookings) ListByDate(_ context.Context, date string) ([]models.Booking, error) {
	return b.filter(func(bk models.Booking) bool { return bk.Date == date }), nil
}

func (b memBookings) ListByPatient(_ context.Context, patient string) ([]models.Booking, error) {
	return b.filter(func(bk models.Booking) bool { return bk.Patient == patient }), nil
}

func (b memBookings) filter(keep func(models.Booking) bool) []models.Booking {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []models.Booking{}
	for _, bk := range b.bookings {
		if keep(bk) {
			out = append(out, bk)
		}
	}
	return out
}

func (b memBookings) FindByID(_ context.Context, id string) (*models.Booking, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bk := range b.bookings {
		if bk.ID == oid {
			found := bk
			return &found, nil
		}
	}
	return nil, nil
}

func (b memBookings) CreateIfAbsent(_ context.Context, booking models.Booking) (bool, models.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := booking.Key()
	for _, bk := range b.bookings {
		if bk.Key() == key {
			return false, bk, nil
		}
	}
	booking.ID = primitive.NewObjectID()
	b.bookings = append(b.bookings, booking)
	return true, booking, nil
}

type memUsers struct{ *memory }

func (u memUsers) List(_ context.Context) ([]models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]models.User, 0, len(u.users))
	for _, usr := range u.users {
		out = append(out, cloneUser(usr))
	}
	return out, nil
}

func (u memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if i := u.index(email); i >= 0 {
		return cloneUser(u.users[i]), nil
	}
	return nil, nil
}

func (u memUsers) index(email string) int {
	for i, usr := range u.users {
		if usr.Email() == email {
			return i
		}
	}
	return -1
}

func (u memUsers) set(email string, fields map[string]interface{}) models.UpdateResult {
	if i := u.index(email); i >= 0 {
		usr := u.users[i]
		modified := int64(0)
		for k, v := range fields {
			if old, ok := usr[k]; !ok || !reflect.DeepEqual(old, v) {
				modified = 1
			}
			usr[k] = v
		}
		return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}
	}
	id := primitive.NewObjectID()
	usr := models.User{"_id": id, "email": email}
	for k, v := range fields {
		usr[k] = v
	}
	u.users = append(u.users, usr)
	return models.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}
}

func (u memUsers) Upsert(_ context.Context, email string, fields map[string]interface{}) (models.UpdateResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	patch := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		patch[k] = v
	}
	patch["email"] = email
	return u.set(email, patch), nil
}

func (u memUsers) SetRole(_ context.Context, email, role string) (models.UpdateResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.set(email, map[string]interface{}{"role": role}), nil
}

type memDoctors struct{ *memory }

func (d memDoctors) Insert(_ context.Context, doctor models.Doctor) (models.InsertResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if doctor.ID.IsZero() {
		doctor.ID = primitive.NewObjectID()
	}
	d.doctors = append(d.doctors, doctor)
	return models.InsertResult{Acknowledged: true, InsertedID: doctor.ID}, nil
}

func (d memDoctors) List(_ context.Context) ([]models.Doctor, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Doctor{}, d.doctors...), nil
}

func (d memDoctors) DeleteByEmail(_ context.Context, email string) (models.DeleteResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i, doc := range d.doctors {
		if doc.Email == email {
			d.doctors = append(d.doctors[:i], d.doctors[i+1:]...)
			return models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
		}
	}
	return models.DeleteResult{Acknowledged: true}, nil
}

type memPayments struct{ *memory }

func (p memPayments) ConfirmBookingPayment(_ context.Context, bookingID string, payment models.Payment) (models.PaymentConfirmation, error) {
	oid, err := objectID(bookingID)
	if err != nil {
		return models.PaymentConfirmation{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if payment.Booking == "" {
		payment.Booking = bookingID
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	payment.ID = primitive.NewObjectID()
	p.payments = append(p.payments, payment)
	return models.PaymentConfirmation{
		UpdatedBooking: p.markPaid(oid, payment.TransactionID),
		PaymentInsert:  models.InsertResult{Acknowledged: true, InsertedID: payment.ID},
	}, nil
}

func (p memPayments) markPaid(oid primitive.ObjectID, transactionID string) models.UpdateResult {
	for i := range p.bookings {
		if p.bookings[i].ID != oid {
			continue
		}
		bk := &p.bookings[i]
		modified := int64(0)
		if !bk.Paid || bk.TransactionID != transactionID {
			modified = 1
		}
		bk.Paid = true
		bk.TransactionID = transactionID
		return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}
	}
	return models.UpdateResult{Acknowledged: true}
}

func (p memPayments) Unreconciled(_ context.Context, since time.Time) ([]models.Payment, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := []models.Payment{}
	for _, pay := range p.payments {
		if pay.CreatedAt.Before(since) {
			continue
		}
		for _, bk := range p.bookings {
			if bk.ID.Hex() == pay.Booking && !bk.Paid {
				out = append(out, pay)
				break
			}
		}
	}
	return out, nil
}

func (p memPayments) MarkBookingPaid(_ context.Context, bookingID, transactionID string) (models.UpdateResult, error) {
	oid, err := objectID(bookingID)
	if err != nil {
		return models.UpdateResult{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.markPaid(oid, transactionID), nil
}

// Payments returns every recorded payment. Used by tests and diagnostics.
func (p memPayments) All() []models.Payment {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.Payment{}, p.payments...)
}
