package aggregates

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
)

// NotificationEmitter inserts notifications inside the caller's transaction.
// Nothing is pushed to clients here; callers hand the returned rows to the
// realtime layer once their transaction has committed.
type NotificationEmitter struct {
	repo repos.NotificationRepo
}

func NewNotificationEmitter(repo repos.NotificationRepo) *NotificationEmitter {
	return &NotificationEmitter{repo: repo}
}

func (e *NotificationEmitter) Emit(dbc dbctx.Context, userID uuid.UUID, notifType, title, message string) (types.Notification, error) {
	return e.EmitWithData(dbc, userID, notifType, title, message, nil)
}

func (e *NotificationEmitter) EmitWithData(dbc dbctx.Context, userID uuid.UUID, notifType, title, message string, data map[string]any) (types.Notification, error) {
	if e == nil || e.repo == nil {
		return types.Notification{}, InvariantError("notification emitter not configured")
	}
	if userID == uuid.Nil {
		return types.Notification{}, ValidationError("missing user_id")
	}
	notifType = strings.TrimSpace(notifType)
	if !notifications.IsType(notifType) {
		return types.Notification{}, ValidationError("unknown notification type: " + notifType)
	}
	title = strings.TrimSpace(title)
	message = strings.TrimSpace(message)
	if title == "" || message == "" {
		return types.Notification{}, ValidationError("notification title and message are required")
	}
	n := &types.Notification{
		UserID:  userID,
		Type:    notifType,
		Title:   title,
		Message: message,
	}
	if len(data) > 0 {
		raw, err := json.Marshal(data)
		if err != nil {
			return types.Notification{}, ValidationError("notification data: " + err.Error())
		}
		n.Data = datatypes.JSON(raw)
	}
	created, err := e.repo.Create(dbc, n)
	if err != nil {
		return types.Notification{}, err
	}
	return *created, nil
}
