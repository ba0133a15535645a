package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"DoctorPortal/models"
	"DoctorPortal/notify"
	"DoctorPortal/store"
	"DoctorPortal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notify.Confirmation
}

func (f *fakeNotifier) Dispatch(c notify.Confirmation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
}

type fakeProcessor struct {
	amount   int64
	currency string
	err      error
}

func (f *fakeProcessor) CreateIntent(_ context.Context, amount int64, currency string) (string, error) {
	f.amount, f.currency = amount, currency
	if f.err != nil {
		return "", f.err
	}
	return "pi_1_secret_x", nil
}

type fixture struct {
	svc      *Service
	store    *store.Store
	notifier *fakeNotifier
	payments *fakeProcessor
}

func newFixture(services ...models.Service) fixture {
	st := store.NewMemory(services...)
	n := &fakeNotifier{}
	p := &fakeProcessor{}
	return fixture{
		svc: New(Deps{
			Store:    st,
			Tokens:   token.New("secret", time.Hour),
			Notifier: n,
			Payments: p,
		}),
		store:    st,
		notifier: n,
		payments: p,
	}
}

func cleaningAt(slot string) models.Booking {
	return models.Booking{Treatment: "Cleaning", Date: "2024-01-05", Patient: "a@x.com", Slot: slot}
}

func TestFilterAvailable(t *testing.T) {
	services := []models.Service{
		{Name: "Cleaning", Slots: []string{"09:00", "10:00", "11:00"}},
		{Name: "Filling", Slots: []string{"10:00", "11:00"}},
	}
	bookings := []models.Booking{
		{Treatment: "Cleaning", Slot: "10:00"},
		{Treatment: "Cleaning", Slot: "11:00"},
		{Treatment: "Whitening", Slot: "11:00"},
	}

	got := FilterAvailable(services, bookings)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"09:00"}, got[0].Slots)
	assert.Equal(t, []string{"10:00", "11:00"}, got[1].Slots)
	assert.Equal(t, []string{"09:00", "10:00", "11:00"}, services[0].Slots)
}

func TestFilterAvailable_AllTaken(t *testing.T) {
	got := FilterAvailable(
		[]models.Service{{Name: "Cleaning", Slots: []string{"10:00"}}},
		[]models.Booking{{Treatment: "Cleaning", Slot: "10:00"}},
	)
	require.Len(t, got, 1)
	assert.NotNil(t, got[0].Slots)
	assert.Empty(t, got[0].Slots)
}

func TestAvailableServices(t *testing.T) {
	ctx := context.Background()
	f := newFixture(models.Service{Name: "Cleaning", Slots: []string{"10:00", "11:00"}})

	_, err := f.svc.CreateBooking(ctx, cleaningAt("10:00"))
	require.NoError(t, err)
	other := cleaningAt("11:00")
	other.Date = "2024-01-06"
	_, err = f.svc.CreateBooking(ctx, other)
	require.NoError(t, err)

	got, err := f.svc.AvailableServices(ctx, "2024-01-05")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotContains(t, got[0].Slots, "10:00")
	assert.Equal(t, []string{"11:00"}, got[0].Slots)

	_, err = f.svc.AvailableServices(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateBooking_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	first, err := f.svc.CreateBooking(ctx, cleaningAt("10:00"))
	require.NoError(t, err)
	assert.True(t, first.Result)

	second, err := f.svc.CreateBooking(ctx, cleaningAt("10:00"))
	require.NoError(t, err)
	assert.False(t, second.Result)
	assert.Equal(t, first.Booking, second.Booking)

	all, err := f.store.Bookings.ListByPatient(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notify.Confirmation{Patient: "a@x.com", Treatment: "Cleaning", Date: "2024-01-05", Slot: "10:00"}, f.notifier.sent[0])
}

func TestCreateBooking_IgnoresClientPaymentState(t *testing.T) {
	f := newFixture()
	b := cleaningAt("10:00")
	b.Paid = true
	b.TransactionID = "forged"

	res, err := f.svc.CreateBooking(context.Background(), b)
	require.NoError(t, err)
	assert.False(t, res.Booking.Paid)
	assert.Empty(t, res.Booking.TransactionID)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture()
	_, err := f.svc.CreateBooking(context.Background(), models.Booking{Treatment: "Cleaning", Date: "2024-01-05"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Empty(t, f.notifier.sent)
}

func TestPatientBookings(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.svc.CreateBooking(ctx, cleaningAt("10:00"))
	require.NoError(t, err)

	got, err := f.svc.PatientBookings(ctx, "a@x.com", "a@x.com")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = f.svc.PatientBookings(ctx, "b@x.com", "a@x.com")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestBooking_InvalidID(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Booking(context.Background(), "zzz")
	assert.ErrorIs(t, err, ErrInvalidInput)

	b, err := f.svc.Booking(context.Background(), "65a000000000000000000000")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestConfirmPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	res, err := f.svc.CreateBooking(ctx, cleaningAt("10:00"))
	require.NoError(t, err)
	id := res.Booking.ID.Hex()

	conf, err := f.svc.ConfirmPayment(ctx, id, models.Payment{
		TransactionID: "pi_123",
		Price:         50,
		Extra:         map[string]interface{}{"last4": "4242"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, conf.UpdatedBooking.ModifiedCount)

	b, err := f.svc.Booking(ctx, id)
	require.NoError(t, err)
	assert.True(t, b.Paid)
	assert.Equal(t, "pi_123", b.TransactionID)

	payments := f.store.Payments.(interface{ All() []models.Payment }).All()
	require.Len(t, payments, 1)
	assert.Equal(t, "pi_123", payments[0].TransactionID)
	assert.Equal(t, id, payments[0].Booking)
	assert.Equal(t, "4242", payments[0].Extra["last4"])

	_, err = f.svc.ConfirmPayment(ctx, id, models.Payment{})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.ConfirmPayment(ctx, "bad", models.Payment{TransactionID: "pi_1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res, err := f.svc.SaveUser(ctx, "a@x.com", map[string]interface{}{"name": "Ann", "role": "admin", "email": "evil@x.com"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Result.UpsertedCount)

	email, err := token.New("secret", time.Hour).Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	u, err := f.store.Users.FindByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann", u["name"])
	assert.False(t, u.IsAdmin())

	evil, err := f.store.Users.FindByEmail(ctx, "evil@x.com")
	require.NoError(t, err)
	assert.Nil(t, evil)
}

func TestAdminRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	ok, err := f.svc.IsAdmin(ctx, "ghost@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := f.svc.MakeAdmin(ctx, "new@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.UpsertedCount)

	ok, err = f.svc.IsAdmin(ctx, "new@x.com")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDoctors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.svc.AddDoctor(ctx, models.Doctor{Name: "Dr. Who"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.AddDoctor(ctx, models.Doctor{Name: "Dr. Who", Email: " who@x.com "})
	require.NoError(t, err)

	docs, err := f.svc.Doctors(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "who@x.com", docs[0].Email)

	del, err := f.svc.RemoveDoctor(ctx, "who@x.com")
	require.NoError(t, err)
	assert.EqualValues(t, 1, del.DeletedCount)
}

func TestCreatePaymentIntent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	secret, err := f.svc.CreatePaymentIntent(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret_x", secret)
	assert.EqualValues(t, 5000, f.payments.amount)
	assert.Equal(t, "usd", f.payments.currency)

	_, err = f.svc.CreatePaymentIntent(ctx, 0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	f.payments.err = errors.New("card_error")
	_, err = f.svc.CreatePaymentIntent(ctx, 50)
	assert.ErrorIs(t, err, ErrUpstream)
}
