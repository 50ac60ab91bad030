package service

import (
	"context"
	"sync"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/repository"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

type TaxiService interface {
	Save(ctx context.Context, role domain.Role, callerID string, req *domain.SaveTaxiRequest) (*domain.Taxi, error)
	FetchOwn(ctx context.Context, role domain.Role, userID string) ([]domain.Taxi, error)
	// FetchAll unions every partition, skipping partitions that fail.
	FetchAll(ctx context.Context) ([]domain.Taxi, error)
	FetchByID(ctx context.Context, role domain.Role, callerID string, id int64) (*domain.Taxi, error)
	Delete(ctx context.Context, role domain.Role, callerID string, id int64) error
}

type taxiService struct {
	partitions *repository.Partitions
}

func NewTaxiService(partitions *repository.Partitions) TaxiService {
	return &taxiService{partitions: partitions}
}

func (s *taxiService) Save(ctx context.Context, role domain.Role, callerID string, req *domain.SaveTaxiRequest) (*domain.Taxi, error) {
	if err := req.Validate(); err != nil {
		return nil, domain.BadRequestf("%s", err)
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}

	if req.ID == nil {
		owner, err := part.Identities.FindByUserID(ctx, callerID)
		if err != nil {
			return nil, domain.Internalf("find owner: %v", err)
		}
		if owner == nil {
			return nil, domain.NotFoundf("user not found")
		}
	}

	t := &domain.Taxi{
		OwnerID:     callerID,
		TripDate:    req.TripDate,
		Pickup:      req.Pickup,
		Drop:        req.Drop,
		TripDays:    req.TripDays,
		Route:       req.Route,
		VehicleType: req.VehicleType,
		Amount:      req.Amount,
		Distance:    req.Distance,
		KiloFare:    req.KiloFare,
		UserName:    req.UserName,
		IsLocal:     req.IsLocal,
		CompanyName: req.CompanyName,
	}

	if req.ID == nil {
		saved, err := part.Taxis.Create(ctx, t)
		if err != nil {
			return nil, domain.Internalf("save taxi: %v", err)
		}
		saved.Role = role
		return saved, nil
	}

	t.ID = *req.ID
	if role == domain.RoleAdmin {
		// The record may live in any partition; probe in fixed order.
		for _, p := range s.partitions.ProbeOrder() {
			saved, err := p.Taxis.Update(ctx, t, "")
			if err != nil {
				logger.ErrorContext(ctx, "update taxi", "role", p.Role, "id", t.ID, "error", err)
				continue
			}
			if saved != nil {
				saved.Role = p.Role
				return saved, nil
			}
		}
		return nil, domain.NotFoundf("taxi record not found")
	}

	saved, err := part.Taxis.Update(ctx, t, callerID)
	if err != nil {
		return nil, domain.Internalf("save taxi: %v", err)
	}
	if saved == nil {
		return nil, domain.NotFoundf("taxi record not found")
	}
	saved.Role = role
	return saved, nil
}

func (s *taxiService) FetchByID(ctx context.Context, role domain.Role, callerID string, id int64) (*domain.Taxi, error) {
	if role == domain.RoleAdmin {
		for _, part := range s.partitions.ProbeOrder() {
			taxi, err := part.Taxis.FindByID(ctx, id, "")
			if err != nil {
				logger.ErrorContext(ctx, "find taxi", "role", part.Role, "id", id, "error", err)
				continue
			}
			if taxi != nil {
				taxi.Role = part.Role
				return taxi, nil
			}
		}
		return nil, domain.NotFoundf("taxi record not found")
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}
	taxi, err := part.Taxis.FindByID(ctx, id, callerID)
	if err != nil {
		return nil, domain.Internalf("find taxi: %v", err)
	}
	if taxi == nil {
		return nil, domain.NotFoundf("taxi record not found")
	}
	taxi.Role = role
	return taxi, nil
}

func (s *taxiService) FetchOwn(ctx context.Context, role domain.Role, userID string) ([]domain.Taxi, error) {
	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}
	taxis, err := part.Taxis.FindByOwner(ctx, userID)
	if err != nil {
		return nil, domain.Internalf("list taxis: %v", err)
	}
	for i := range taxis {
		taxis[i].Role = role
	}
	return taxis, nil
}

func (s *taxiService) FetchAll(ctx context.Context) ([]domain.Taxi, error) {
	type result struct {
		role  domain.Role
		taxis []domain.Taxi
		err   error
	}

	parts := s.partitions.All()
	results := make([]result, len(parts))

	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		go func(i int, part *repository.Partition) {
			defer wg.Done()
			taxis, err := part.Taxis.List(ctx)
			results[i] = result{role: part.Role, taxis: taxis, err: err}
		}(i, part)
	}
	wg.Wait()

	var all []domain.Taxi
	failures := 0
	for _, res := range results {
		if res.err != nil {
			failures++
			logger.ErrorContext(ctx, "list taxis", "role", res.role, "error", res.err)
			continue
		}
		for i := range res.taxis {
			res.taxis[i].Role = res.role
		}
		all = append(all, res.taxis...)
	}
	if failures == len(parts) {
		return nil, domain.Internalf("all partitions unavailable")
	}
	return all, nil
}

func (s *taxiService) Delete(ctx context.Context, role domain.Role, callerID string, id int64) error {
	if role == domain.RoleAdmin {
		for _, part := range s.partitions.ProbeOrder() {
			deleted, err := part.Taxis.Delete(ctx, id, "")
			if err != nil {
				logger.ErrorContext(ctx, "delete taxi", "role", part.Role, "id", id, "error", err)
				continue
			}
			if deleted != nil {
				return nil
			}
		}
		return domain.NotFoundf("taxi record not found")
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return domain.BadRequestf("unknown role %q", role)
	}
	deleted, err := part.Taxis.Delete(ctx, id, callerID)
	if err != nil {
		return domain.Internalf("delete taxi: %v", err)
	}
	if deleted == nil {
		return domain.NotFoundf("taxi record not found")
	}
	return nil
}
