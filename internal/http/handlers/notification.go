package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	"github.com/yungbote/quitbridge-backend/internal/http/response"
	"github.com/yungbote/quitbridge-backend/internal/services"
)

type NotificationHandler struct {
	notifications services.NotificationService
}

func NewNotificationHandler(notifications services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// GET /notifications?is_read=&type=
func (h *NotificationHandler) List(c *gin.Context) {
	f := repos.NotificationFilter{IsRead: boolQuery(c, "is_read"), Type: c.Query("type")}
	out, err := h.notifications.List(c.Request.Context(), f, pageQuery(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, out)
}

// GET /notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	n, err := h.notifications.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notification": n})
}

// GET /notifications/unread
func (h *NotificationHandler) Unread(c *gin.Context) {
	out, err := h.notifications.Unread(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": out, "count": len(out)})
}

// POST /notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifications.MarkAllRead(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated_count": n})
}

// DELETE /notifications/:id
func (h *NotificationHandler) Delete(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.Delete(c.Request.Context(), id); err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": true})
}

// DELETE /notifications/read
func (h *NotificationHandler) DeleteRead(c *gin.Context) {
	n, err := h.notifications.DeleteRead(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted_count": n})
}

// GET /notifications/statistics
func (h *NotificationHandler) Statistics(c *gin.Context) {
	st, err := h.notifications.Statistics(c.Request.Context())
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, st)
}

// GET /notifications/types
func (h *NotificationHandler) Types(c *gin.Context) {
	response.RespondOK(c, gin.H{"types": h.notifications.Types()})
}

// GET /notifications/recent?days=7
func (h *NotificationHandler) Recent(c *gin.Context) {
	out, err := h.notifications.Recent(c.Request.Context(), intQuery(c, "days", 0))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notifications": out, "count": len(out)})
}

// DELETE /notifications/old?days=30
func (h *NotificationHandler) ClearOld(c *gin.Context) {
	n, err := h.notifications.ClearOld(c.Request.Context(), intQuery(c, "days", 0))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted_count": n})
}

// POST /admin/notifications
func (h *NotificationHandler) Send(c *gin.Context) {
	var req struct {
		UserID  uuid.UUID `json:"user_id"`
		Type    string    `json:"notification_type"`
		Title   string    `json:"title"`
		Message string    `json:"message"`
	}
	if !bindJSON(c, &req) {
		return
	}
	n, err := h.notifications.Send(c.Request.Context(), services.SendNotificationInput{
		UserID:  req.UserID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"notification": n})
}

// POST /admin/notifications/bulk
func (h *NotificationHandler) SendBulk(c *gin.Context) {
	var req struct {
		UserIDs []uuid.UUID `json:"user_ids"`
		Type    string      `json:"notification_type"`
		Title   string      `json:"title"`
		Message string      `json:"message"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.notifications.SendBulk(c.Request.Context(), services.BulkSendInput{
		UserIDs: req.UserIDs,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	})
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.RespondOK(c, res)
}
