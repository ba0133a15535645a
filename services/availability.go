package services

import (
	"context"

	"DoctorPortal/models"

	"go.uber.org/zap"
)

func (s *Service) ListServiceNames(ctx context.Context) ([]models.ServiceSummary, error) {
	return s.store.Services.ListNames(ctx)
}

/*
* Get all services
* Get all bookings of that date
* Drop every slot already booked for the service with the same name
 */
func (s *Service) AvailableServices(ctx context.Context, date string) ([]models.Service, error) {
	date, err := requireString("date", date)
	if err != nil {
		return nil, err
	}
	services, err := s.store.Services.List(ctx)
	if err != nil {
		s.log.Error("list services", zap.Error(err))
		return nil, err
	}
	bookings, err := s.store.Bookings.ListByDate(ctx, date)
	if err != nil {
		s.log.Error("list bookings by date", zap.String("date", date), zap.Error(err))
		return nil, err
	}
	return FilterAvailable(services, bookings), nil
}

// FilterAvailable returns copies of services whose slots exclude those
// consumed by a booking with a matching treatment name. Bookings are
// expected to share one date.
func FilterAvailable(services []models.Service, bookings []models.Booking) []models.Service {
	booked := make(map[string]map[string]struct{})
	for _, b := range bookings {
		if booked[b.Treatment] == nil {
			booked[b.Treatment] = make(map[string]struct{})
		}
		booked[b.Treatment][b.Slot] = struct{}{}
	}
	out := make([]models.Service, 0, len(services))
	for _, svc := range services {
		taken := booked[svc.Name]
		available := make([]string, 0, len(svc.Slots))
		for _, slot := range svc.Slots {
			if _, ok := taken[slot]; !ok {
				available = append(available, slot)
			}
		}
		svc.Slots = available
		out = append(out, svc)
	}
	return out
}
