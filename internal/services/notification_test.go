package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	domainagg "github.com/yungbote/clinireason-backend/internal/domain/aggregates"
	"github.com/yungbote/clinireason-backend/internal/realtime"
)

func TestNotificationMailbox(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.student(t)
	other := h.student(t)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n, err := h.notifications.Create(ctx, NotificationInput{UserID: owner.ID, Title: fmt.Sprintf("Note %d", i), Message: "hello"})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if n.Type != "system" || n.IsRead {
			t.Fatalf("unexpected row %+v", n)
		}
		ids = append(ids, n.ID)
	}
	if got := h.emitter.count(realtime.SSEEventNotificationCreated, owner.ID); got != 3 {
		t.Fatalf("pushed %d, want 3", got)
	}

	list, err := h.notifications.List(ctx, owner.ID, 2)
	if err != nil || len(list) != 2 {
		t.Fatalf("List: n=%d err=%v", len(list), err)
	}
	if unread, _ := h.notifications.UnreadCount(ctx, owner.ID); unread != 3 {
		t.Fatalf("unread = %d, want 3", unread)
	}

	if err := h.notifications.MarkRead(ctx, other.ID, ids[0]); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign MarkRead: expected not_found, got %v", err)
	}
	if err := h.notifications.MarkRead(ctx, owner.ID, ids[0]); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if unread, _ := h.notifications.UnreadCount(ctx, owner.ID); unread != 2 {
		t.Fatalf("unread = %d, want 2", unread)
	}
	if n, err := h.notifications.MarkAllRead(ctx, owner.ID); err != nil || n != 2 {
		t.Fatalf("MarkAllRead: n=%d err=%v", n, err)
	}
	if got := h.emitter.count(realtime.SSEEventNotificationsRead, owner.ID); got != 2 {
		t.Fatalf("read events = %d, want 2", got)
	}

	if err := h.notifications.Delete(ctx, other.ID, ids[1]); !domainagg.IsCode(err, domainagg.CodeNotFound) {
		t.Fatalf("foreign Delete: expected not_found, got %v", err)
	}
	if err := h.notifications.Delete(ctx, owner.ID, ids[1]); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n, err := h.notifications.DeleteAll(ctx, owner.ID); err != nil || n != 2 {
		t.Fatalf("DeleteAll: n=%d err=%v", n, err)
	}
}

func TestNotificationCreateValidates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.notifications.Create(ctx, NotificationInput{Title: "x", Message: "y"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("missing user: expected validation, got %v", err)
	}
	u := h.student(t)
	if _, err := h.notifications.Create(ctx, NotificationInput{UserID: u.ID, Title: " ", Message: "y"}); !domainagg.IsCode(err, domainagg.CodeValidation) {
		t.Fatalf("blank title: expected validation, got %v", err)
	}
}
