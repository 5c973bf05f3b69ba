package notifications

import (
	"context"
	"log/slog"
)

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

// Notify records a notification for the user. Failures are logged, not
// propagated: a missed notification must never fail the triggering
// operation.
func (s *Service) Notify(ctx context.Context, userID, ntype, title, body string) {
	if userID == "" {
		return
	}
	if err := s.store.CreateNotification(ctx, userID, ntype, title, body); err != nil {
		slog.Warn("notification create failed", "type", ntype, "err", err)
	}
}

func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, userID, limit, offset)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.store.CountNotifications(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	return s.store.MarkRead(ctx, userID, notificationID)
}
