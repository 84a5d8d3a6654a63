package notifications

import (
	"context"
	"fmt"

	"github.com/hirepath/hirepath/internal/apperrors"
	"github.com/hirepath/hirepath/pkg/metrics"
)

const maxListLimit = 200

// Service owns the in-app inbox. Fan-outs triggered by one lifecycle event are
// independent best-effort writes; callers decide how to handle a partial
// failure.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// Notify inserts one unread inbox row for the recipient.
func (s *Service) Notify(ctx context.Context, userID string, t Type, title, message, linkURL string, metadata map[string]string) error {
	if userID == "" {
		return fmt.Errorf("%w: notification recipient required", apperrors.ErrInvalidInput)
	}
	err := s.repo.Insert(ctx, &Notification{
		UserID:   userID,
		Type:     t,
		Title:    title,
		Message:  message,
		LinkURL:  linkURL,
		Metadata: metadata,
	})
	if err == nil {
		metrics.NotificationsWritten.WithLabelValues(string(t)).Inc()
	}
	return err
}

// ListMine returns the newest notifications for a user, capped at 200.
func (s *Service) ListMine(ctx context.Context, userID string, unreadOnly bool, limit int) ([]*Notification, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks one notification read; marking an already-read or foreign
// notification is a NotFound.
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	ok, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: notification %s", apperrors.ErrNotFound, id)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
