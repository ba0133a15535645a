package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"DoctorPortal/models"
	"DoctorPortal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stuckPayments struct {
	pending []models.Payment
	marked  map[string]string
	failOn  string
	err     error
}

func (s *stuckPayments) ConfirmBookingPayment(context.Context, string, models.Payment) (models.PaymentConfirmation, error) {
	return models.PaymentConfirmation{}, errors.New("not used")
}

func (s *stuckPayments) Unreconciled(context.Context, time.Time) ([]models.Payment, error) {
	return s.pending, s.err
}

func (s *stuckPayments) MarkBookingPaid(_ context.Context, bookingID, txID string) (models.UpdateResult, error) {
	if bookingID == s.failOn {
		return models.UpdateResult{}, errors.New("write conflict")
	}
	s.marked[bookingID] = txID
	return models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil
}

func TestGenerate30MinSlots(t *testing.T) {
	assert.Equal(t, []string{"08.00 AM - 08.30 AM", "08.30 AM - 09.00 AM"}, Generate30MinSlots("08:00", "09:00"))
	assert.Equal(t, []string{"11.30 AM - 12.00 PM"}, Generate30MinSlots("11:30", "12:00"))
	assert.Empty(t, Generate30MinSlots("10:00", "10:00"))
	assert.Empty(t, Generate30MinSlots("ten", "11:00"))
}

func TestReconcile(t *testing.T) {
	payments := &stuckPayments{
		pending: []models.Payment{
			{Booking: "b1", TransactionID: "pi_1"},
			{Booking: "b2", TransactionID: "pi_2"},
			{Booking: "b3", TransactionID: "pi_3"},
		},
		marked: map[string]string{},
		failOn: "b2",
	}
	j := New(&store.Store{Payments: payments}, nil)

	fixed, err := j.Reconcile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, fixed)
	assert.Equal(t, map[string]string{"b1": "pi_1", "b3": "pi_3"}, payments.marked)
}

func TestReconcile_ListError(t *testing.T) {
	j := New(&store.Store{Payments: &stuckPayments{err: errors.New("db down")}}, nil)
	_, err := j.Reconcile(context.Background())
	assert.Error(t, err)
}

func TestReconcile_MemoryStoreNothingPending(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	_, b, err := s.Bookings.CreateIfAbsent(ctx, models.Booking{Treatment: "Cleaning", Date: "2024-01-05", Patient: "a@x.com", Slot: "10:00"})
	require.NoError(t, err)
	_, err = s.Payments.ConfirmBookingPayment(ctx, b.ID.Hex(), models.Payment{TransactionID: "pi_1"})
	require.NoError(t, err)

	fixed, err := New(s, nil).Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, fixed)
}

func TestSeedServices(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	j := New(s, nil)

	n, err := j.SeedServices(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultCatalog()), n)

	n, err = j.SeedServices(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	all, err := s.Services.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, len(DefaultCatalog()))
	assert.Len(t, all[0].Slots, 8)
}

func TestStartScheduler(t *testing.T) {
	j := New(store.NewMemory(), nil)
	_, err := j.StartScheduler("not a schedule")
	assert.Error(t, err)

	c, err := j.StartScheduler("*/10 * * * *")
	require.NoError(t, err)
	require.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
