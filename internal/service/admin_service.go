package service

import (
	"context"
	"sync"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/platform/mailer"
	"github.com/tripdesk/crm-backend/internal/platform/push"
	"github.com/tripdesk/crm-backend/internal/repository"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

type AdminService interface {
	// FetchAllUsers returns every employee and partner identity with their
	// quotation counts. A failed partition is skipped; the call errors only
	// when both fail.
	FetchAllUsers(ctx context.Context) ([]domain.Identity, error)
	// UpdateUserStatus moves an employee or partner account through the
	// approval lifecycle and emails the affected user.
	UpdateUserStatus(ctx context.Context, userID, status string) (*domain.Identity, error)
}

type adminService struct {
	partitions *repository.Partitions
	mail       mailer.Service
	notifier   push.Notifier
}

func NewAdminService(partitions *repository.Partitions, mail mailer.Service, notifier push.Notifier) AdminService {
	return &adminService{partitions: partitions, mail: mail, notifier: notifier}
}

func (s *adminService) FetchAllUsers(ctx context.Context) ([]domain.Identity, error) {
	parts := []*repository.Partition{s.partitions.Employee, s.partitions.Partner}

	type result struct {
		role       domain.Role
		identities []domain.Identity
		err        error
	}
	results := make([]result, len(parts))

	var wg sync.WaitGroup
	for i, part := range parts {
		wg.Add(1)
		go func(i int, part *repository.Partition) {
			defer wg.Done()
			identities, err := part.Identities.List(ctx)
			if err != nil {
				results[i] = result{role: part.Role, err: err}
				return
			}
			for j := range identities {
				identities[j].Role = part.Role
				count, err := part.Quotations.CountByOwner(ctx, identities[j].UserID)
				if err != nil {
					logger.WarnContext(ctx, "count quotations", "user_id", identities[j].UserID, "error", err)
					continue
				}
				identities[j].QuotationCount = count
			}
			results[i] = result{role: part.Role, identities: identities}
		}(i, part)
	}
	wg.Wait()

	var all []domain.Identity
	failures := 0
	for _, res := range results {
		if res.err != nil {
			failures++
			logger.ErrorContext(ctx, "list identities", "role", res.role, "error", res.err)
			continue
		}
		all = append(all, res.identities...)
	}
	if failures == len(parts) {
		return nil, domain.Internalf("all partitions unavailable")
	}
	return all, nil
}

func (s *adminService) UpdateUserStatus(ctx context.Context, userID, status string) (*domain.Identity, error) {
	if !domain.IsValidStatus(status) {
		return nil, domain.BadRequestf("invalid status %q", status)
	}

	role, ok := domain.RoleFromUserID(userID)
	if !ok {
		return nil, domain.BadRequestf("invalid userId %q", userID)
	}
	if role == domain.RoleAdmin {
		return nil, domain.BadRequestf("admin accounts have no approval lifecycle")
	}

	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}

	updated, err := part.Identities.UpdateStatus(ctx, userID, status)
	if err != nil {
		return nil, domain.Internalf("update status: %v", err)
	}
	if updated == nil {
		return nil, domain.NotFoundf("user not found")
	}
	updated.Role = role

	// The status row is the source of truth; mail and push are best-effort.
	if err := s.mail.SendStatusChange(updated.Email, updated.Name, status); err != nil {
		logger.ErrorContext(ctx, "send status mail", "user_id", userID, "error", err)
	}
	s.notifier.NotifyUser(ctx, userID, push.Payload{
		Type:        "status",
		Title:       "Account status updated",
		Description: "Your account is now " + status,
	})

	logger.InfoContext(ctx, "status updated", "user_id", userID, "status", status)
	return updated, nil
}
