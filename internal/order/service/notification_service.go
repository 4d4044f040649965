package service

import (
	"context"
	"strings"
	"time"

	"github.com/bitfantasy/joinery/internal/order/entity"
	"github.com/bitfantasy/joinery/internal/order/repository"
	"github.com/bitfantasy/joinery/internal/order/sse"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationEvent is one workflow event addressed to users.
type NotificationEvent struct {
	Type       string
	Title      string
	Body       string
	EntityType string
	EntityID   string
	LinkURL    string
}

// Notifier is the narrow sink the workflow hands its side effects to.
// Implementations deliver in-app only and give no de-duplication.
type Notifier interface {
	Notify(ctx context.Context, userIDs []string, event NotificationEvent) error
}

// EventPublisher fans stored notifications out to other processes.
type EventPublisher interface {
	Publish(ctx context.Context, payload interface{}) error
}

// NotificationService stores one row per recipient, then pushes it over SSE
// and the optional publisher.
type NotificationService struct {
	repo      *repository.NotificationRepository
	users     *repository.UserRepository
	hub       *sse.Hub
	publisher EventPublisher
	baseURL   string
	logger    *zap.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, users *repository.UserRepository, hub *sse.Hub, baseURL string, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		repo:    repo,
		users:   users,
		hub:     hub,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.Named("notification"),
	}
}

// SetPublisher 设置跨进程推送
func (s *NotificationService) SetPublisher(p EventPublisher) {
	s.publisher = p
}

// Notify creates a notification for every recipient. Repeated ids within one
// call get a single row; separate calls are never de-duplicated. A failed row
// does not stop the others; the last error is returned.
func (s *NotificationService) Notify(ctx context.Context, userIDs []string, event NotificationEvent) error {
	var lastErr error
	now := time.Now()
	for _, userID := range dedupe(userIDs) {
		n := &entity.Notification{
			ID:         uuid.New().String(),
			UserID:     userID,
			Type:       event.Type,
			Title:      event.Title,
			Body:       event.Body,
			EntityType: event.EntityType,
			EntityID:   event.EntityID,
			LinkURL:    s.link(event.LinkURL),
			CreatedAt:  now,
		}
		if err := s.repo.Create(ctx, n); err != nil {
			s.logger.Warn("store notification failed",
				zap.String("user_id", userID), zap.String("type", event.Type), zap.Error(err))
			lastErr = err
			continue
		}
		if s.hub != nil {
			s.hub.PublishNotification(userID, n)
		}
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, n); err != nil {
				s.logger.Warn("publish notification failed", zap.String("id", n.ID), zap.Error(err))
			}
		}
	}
	return lastErr
}

// UsersWithRole resolves recipients from the staff directory.
func (s *NotificationService) UsersWithRole(ctx context.Context, roles ...string) ([]string, error) {
	return s.users.ListIDsByRole(ctx, roles...)
}

func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, page, pageSize int) ([]entity.Notification, int64, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, page, pageSize)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *NotificationService) link(path string) string {
	if path == "" || s.baseURL == "" || strings.HasPrefix(path, "http") {
		return path
	}
	return s.baseURL + path
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// dispatcher wraps a Notifier so workflow steps never fail on notification errors.
type dispatcher struct {
	notifier Notifier
	users    *repository.UserRepository
	logger   *zap.Logger
}

func (d dispatcher) notify(ctx context.Context, userIDs []string, event NotificationEvent) {
	if d.notifier == nil || len(userIDs) == 0 {
		return
	}
	if err := d.notifier.Notify(ctx, userIDs, event); err != nil {
		d.logger.Warn("notification dispatch failed",
			zap.String("type", event.Type),
			zap.String("entity_id", event.EntityID),
			zap.Error(err))
	}
}

func (d dispatcher) notifyRoles(ctx context.Context, event NotificationEvent, roles ...string) {
	if d.notifier == nil {
		return
	}
	ids, err := d.users.ListIDsByRole(ctx, roles...)
	if err != nil {
		d.logger.Warn("resolve notification recipients failed", zap.Strings("roles", roles), zap.Error(err))
		return
	}
	d.notify(ctx, ids, event)
}
