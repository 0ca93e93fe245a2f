package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/clinireason-backend/internal/data/repos"
	types "github.com/yungbote/clinireason-backend/internal/domain"
	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/observability"
	"github.com/yungbote/clinireason-backend/internal/platform/dbctx"
	"github.com/yungbote/clinireason-backend/internal/platform/logger"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

// NotificationService is the per-user mailbox. Rows are the source of truth;
// the live push after each write is best effort.
type NotificationService interface {
	Create(ctx context.Context, in NotificationInput) (*types.Notification, error)
	List(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error)

	// Push delivers an already committed row to the owner's live streams.
	Push(ctx context.Context, n *types.Notification)
}

type NotificationInput struct {
	UserID     uuid.UUID
	Title      string
	Message    string
	Type       string
	EntityType *string
	EntityID   *uuid.UUID
	ActionURL  *string
}

type notificationService struct {
	log     *logger.Logger
	repo    repos.NotificationRepo
	emitter realtime.Emitter
}

func NewNotificationService(log *logger.Logger, repo repos.NotificationRepo, emitter realtime.Emitter) NotificationService {
	if emitter == nil {
		emitter = realtime.NopEmitter{}
	}
	return &notificationService{
		log:     log.With("service", "NotificationService"),
		repo:    repo,
		emitter: emitter,
	}
}

func (s *notificationService) Create(ctx context.Context, in NotificationInput) (*types.Notification, error) {
	const op = "Notification.Create"
	if in.UserID == uuid.Nil {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "missing user_id", nil)
	}
	title, message := strings.TrimSpace(in.Title), strings.TrimSpace(in.Message)
	if title == "" || message == "" {
		return nil, domainagg.NewError(domainagg.CodeValidation, op, "title and message are required", nil)
	}
	kind := strings.TrimSpace(in.Type)
	if kind == "" {
		kind = "system"
	}
	row, err := s.repo.Create(dbctx.Context{Ctx: ctx}, &types.Notification{
		UserID:     in.UserID,
		Title:      title,
		Message:    message,
		Type:       kind,
		EntityType: in.EntityType,
		EntityID:   in.EntityID,
		ActionURL:  in.ActionURL,
	})
	if err != nil {
		observability.Current().IncNotification(kind, "error")
		return nil, err
	}
	observability.Current().IncNotification(kind, "created")
	s.Push(ctx, row)
	return row, nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID, limit int) ([]*types.Notification, error) {
	return s.repo.ListByUser(dbctx.Context{Ctx: ctx}, userID, clampLimit(limit))
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(dbctx.Context{Ctx: ctx}, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.MarkRead(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return err
	}
	if !found {
		return domainagg.NewError(domainagg.CodeNotFound, "Notification.MarkRead", "notification not found", nil)
	}
	s.emitRead(ctx, userID, []uuid.UUID{id})
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(dbctx.Context{Ctx: ctx}, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.emitRead(ctx, userID, nil)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.Delete(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return err
	}
	if !found {
		return domainagg.NewError(domainagg.CodeNotFound, "Notification.Delete", "notification not found", nil)
	}
	return nil
}

func (s *notificationService) DeleteAll(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.DeleteAll(dbctx.Context{Ctx: ctx}, userID)
}

func (s *notificationService) Push(ctx context.Context, n *types.Notification) {
	if n == nil {
		return
	}
	s.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(n.UserID),
		Event:   realtime.SSEEventNotificationCreated,
		Data:    map[string]any{"notification": n},
	})
}

// emitRead signals read state; nil ids means every notification.
func (s *notificationService) emitRead(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) {
	s.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.SSEEventNotificationsRead,
		Data:    map[string]any{"ids": ids, "all": ids == nil},
	})
}
