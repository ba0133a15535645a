package jobs

import (
	"context"
	"time"

	"DoctorPortal/models"
	"DoctorPortal/store"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Lookback bounds how far back the reconciler scans payments.
const Lookback = 24 * time.Hour

type Jobs struct {
	store *store.Store
	log   *zap.Logger
	now   func() time.Time
}

func New(s *store.Store, log *zap.Logger) *Jobs {
	if log == nil {
		log = zap.NewNop()
	}
	return &Jobs{store: s, log: log, now: time.Now}
}

/*
* Register the reconciler on the given schedule
* Start the cron and hand it back so the caller can stop it on shutdown
 */
func (j *Jobs) StartScheduler(schedule string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		j.log.Info("running payment reconciler")
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := j.Reconcile(ctx); err != nil {
			j.log.Error("payment reconciler failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}

/*
* Find recorded payments whose booking is still unpaid
* Mark each booking paid with the payment's transaction id
* One failing booking does not stop the rest
 */
func (j *Jobs) Reconcile(ctx context.Context) (int, error) {
	pending, err := j.store.Payments.Unreconciled(ctx, j.now().Add(-Lookback))
	if err != nil {
		return 0, err
	}
	fixed := 0
	for _, p := range pending {
		res, err := j.store.Payments.MarkBookingPaid(ctx, p.Booking, p.TransactionID)
		if err != nil {
			j.log.Warn("could not mark booking paid", zap.String("booking", p.Booking), zap.Error(err))
			continue
		}
		if res.ModifiedCount > 0 {
			fixed++
		}
	}
	if fixed > 0 {
		j.log.Info("reconciled bookings", zap.Int("count", fixed))
	}
	return fixed, nil
}

// DefaultCatalog is the treatment list seeded into an empty services collection.
func DefaultCatalog() []models.Service {
	return []models.Service{
		{Name: "Teeth Orthodontics", Price: 45, Slots: Generate30MinSlots("08:00", "12:00")},
		{Name: "Cosmetic Dentistry", Price: 60, Slots: Generate30MinSlots("10:00", "14:00")},
		{Name: "Teeth Cleaning", Price: 30, Slots: Generate30MinSlots("09:00", "17:00")},
		{Name: "Cavity Protection", Price: 50, Slots: Generate30MinSlots("13:00", "18:00")},
	}
}

/*
* Only seed when the catalog is empty
* Insert every default treatment
 */
func (j *Jobs) SeedServices(ctx context.Context) (int, error) {
	n, err := j.store.Services.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	seeded := 0
	for _, svc := range DefaultCatalog() {
		if _, err := j.store.Services.Insert(ctx, svc); err != nil {
			return seeded, err
		}
		seeded++
	}
	j.log.Info("seeded services", zap.Int("count", seeded))
	return seeded, nil
}

// Generate30MinSlots labels every half hour in [start, end) as
// "08.00 AM - 08.30 AM". Unparseable bounds give no slots.
func Generate30MinSlots(start string, end string) []string {
	layout := "15:04"
	startTime, err := time.Parse(layout, start)
	if err != nil {
		return []string{}
	}
	endTime, err := time.Parse(layout, end)
	if err != nil {
		return []string{}
	}

	slots := []string{}
	for startTime.Before(endTime) {
		slotEnd := startTime.Add(30 * time.Minute)
		slots = append(slots, startTime.Format("03.04 PM")+" - "+slotEnd.Format("03.04 PM"))
		startTime = slotEnd
	}
	return slots
}
