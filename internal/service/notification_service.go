package service

import (
	"context"
	"sort"

	"github.com/tripdesk/crm-backend/internal/domain"
	"github.com/tripdesk/crm-backend/internal/platform/blob"
	"github.com/tripdesk/crm-backend/internal/platform/push"
	"github.com/tripdesk/crm-backend/internal/repository"
	"github.com/tripdesk/crm-backend/pkg/logger"
)

type NotificationService interface {
	// FetchUnread returns the caller's unread notifications. Admins also
	// see notifications addressed to the shared admin recipient.
	FetchUnread(ctx context.Context, role domain.Role, userID string) ([]domain.Notification, error)
	MarkRead(ctx context.Context, role domain.Role, id int64) (*domain.Notification, error)
	// Broadcast stores one custom notification per listed user and pushes
	// it to each. Per-user failures are skipped; the call errors only when
	// every target fails.
	Broadcast(ctx context.Context, req *domain.BroadcastRequest) (int, error)
}

type notificationService struct {
	partitions *repository.Partitions
	blobs      blob.Store
	notifier   push.Notifier
}

func NewNotificationService(
	partitions *repository.Partitions,
	blobs blob.Store,
	notifier push.Notifier,
) NotificationService {
	return &notificationService{
		partitions: partitions,
		blobs:      blobs,
		notifier:   notifier,
	}
}

func (s *notificationService) FetchUnread(ctx context.Context, role domain.Role, userID string) ([]domain.Notification, error) {
	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}

	notifications, err := part.Notifications.FindUnread(ctx, userID)
	if err != nil {
		return nil, domain.Internalf("list notifications: %v", err)
	}

	if role == domain.RoleAdmin {
		shared, err := part.Notifications.FindUnread(ctx, AdminRecipient)
		if err != nil {
			return nil, domain.Internalf("list notifications: %v", err)
		}
		notifications = append(notifications, shared...)
		sort.Slice(notifications, func(i, j int) bool {
			return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
		})
	}

	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, role domain.Role, id int64) (*domain.Notification, error) {
	part, ok := s.partitions.ByRole(role)
	if !ok {
		return nil, domain.BadRequestf("unknown role %q", role)
	}
	n, err := part.Notifications.MarkRead(ctx, id)
	if err != nil {
		return nil, domain.Internalf("mark read: %v", err)
	}
	if n == nil {
		return nil, domain.NotFoundf("notification not found")
	}
	return n, nil
}

func (s *notificationService) Broadcast(ctx context.Context, req *domain.BroadcastRequest) (int, error) {
	if err := req.Validate(); err != nil {
		return 0, domain.BadRequestf("%s", err)
	}

	imageURL := ""
	if req.Image != "" {
		url, err := uploadDataURI(ctx, s.blobs, "notification-images", req.Image)
		if err != nil {
			return 0, domain.BadRequestf("invalid image: %v", err)
		}
		imageURL = url
	}

	delivered := 0
	for _, userID := range req.UserIDs {
		role, ok := domain.RoleFromUserID(userID)
		if !ok {
			logger.WarnContext(ctx, "broadcast: bad user id", "user_id", userID)
			continue
		}
		part, ok := s.partitions.ByRole(role)
		if !ok {
			continue
		}

		n := &domain.Notification{
			UserID:      userID,
			Type:        domain.NotificationCustom,
			Title:       req.Title,
			Description: req.Description,
			Logo:        imageURL,
			Link:        req.Link,
		}
		if _, err := part.Notifications.Create(ctx, n); err != nil {
			logger.ErrorContext(ctx, "broadcast: create notification", "user_id", userID, "error", err)
			continue
		}
		s.notifier.NotifyUser(ctx, userID, push.Payload{
			Type:        string(domain.NotificationCustom),
			Title:       req.Title,
			Description: req.Description,
			Logo:        imageURL,
			Link:        req.Link,
		})
		delivered++
	}

	if delivered == 0 {
		return 0, domain.Internalf("no notifications could be delivered")
	}
	return delivered, nil
}
