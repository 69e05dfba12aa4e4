package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/aggregates"
	"github.com/yungbote/quitbridge-backend/internal/data/repos"
	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/domain/notifications"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

const (
	unreadListLimit         = 50
	defaultRecentDays       = 7
	defaultClearOlderDays   = 30
	recentNotificationsDays = 7
)

type NotificationList struct {
	Notifications []*types.Notification `json:"notifications"`
	Total         int64                 `json:"total"`
	UnreadCount   int64                 `json:"unread_count"`
}

type NotificationStatistics struct {
	TotalNotifications int64                         `json:"total_notifications"`
	UnreadCount        int64                         `json:"unread_count"`
	ReadCount          int64                         `json:"read_count"`
	ByType             []repos.NotificationTypeCount `json:"by_type"`
	RecentCount        int                           `json:"recent_count"`
}

type SendNotificationInput struct {
	UserID  uuid.UUID
	Type    string
	Title   string
	Message string
}

type BulkSendInput struct {
	UserIDs []uuid.UUID
	Type    string
	Title   string
	Message string
}

type BulkSendResult struct {
	CreatedCount int `json:"created_count"`
	FailedCount  int `json:"failed_count"`
}

type NotificationService interface {
	List(ctx context.Context, f repos.NotificationFilter, page query.Page) (NotificationList, error)
	Get(ctx context.Context, id uuid.UUID) (*types.Notification, error)
	Unread(ctx context.Context) ([]*types.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteRead(ctx context.Context) (int64, error)
	Statistics(ctx context.Context) (NotificationStatistics, error)
	Types() []string
	Recent(ctx context.Context, days int) ([]*types.Notification, error)
	ClearOld(ctx context.Context, days int) (int64, error)

	// Admin.
	Send(ctx context.Context, in SendNotificationInput) (*types.Notification, error)
	SendBulk(ctx context.Context, in BulkSendInput) (BulkSendResult, error)
}

type notificationService struct {
	db       *gorm.DB
	log      *logger.Logger
	repos    repos.Set
	emitter  *aggregates.NotificationEmitter
	notifier Notifier
	now      func() time.Time
}

func NewNotificationService(db *gorm.DB, log *logger.Logger, r repos.Set, notifier Notifier) NotificationService {
	return &notificationService{
		db:       db,
		log:      log.With("service", "NotificationService"),
		repos:    r,
		emitter:  aggregates.NewNotificationEmitter(r.Notifications),
		notifier: notifierOrNop(notifier),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *notificationService) List(ctx context.Context, f repos.NotificationFilter, page query.Page) (NotificationList, error) {
	const op = "notifications.list"
	userID, err := requestUser(ctx)
	if err != nil {
		return NotificationList{}, err
	}
	f.Type = strings.TrimSpace(f.Type)
	if f.Type != "" && !notifications.IsType(f.Type) {
		return NotificationList{}, validationErr(op, "unknown notification type: "+f.Type)
	}
	dbc := dbctx.New(ctx)
	rows, total, err := s.repos.Notifications.List(dbc, userID, f, page.Normalize(20, 100))
	if err != nil {
		return NotificationList{}, internalErr(op, err)
	}
	unread, err := s.repos.Notifications.CountUnread(dbc, userID)
	if err != nil {
		return NotificationList{}, internalErr(op, err)
	}
	return NotificationList{Notifications: rows, Total: total, UnreadCount: unread}, nil
}

func (s *notificationService) Get(ctx context.Context, id uuid.UUID) (*types.Notification, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.repos.Notifications.GetByID(dbctx.New(ctx), userID, id)
	if err != nil {
		return nil, internalErr("notifications.get", err)
	}
	if n == nil {
		return nil, notFoundErr("notifications.get", "notification not found")
	}
	return n, nil
}

func (s *notificationService) Unread(ctx context.Context) ([]*types.Notification, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	unread := false
	rows, _, err := s.repos.Notifications.List(dbctx.New(ctx), userID, repos.NotificationFilter{IsRead: &unread}, query.Page{Limit: unreadListLimit})
	if err != nil {
		return nil, internalErr("notifications.unread", err)
	}
	return rows, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.New(ctx)
	n, err := s.repos.Notifications.GetByID(dbc, userID, id)
	if err != nil {
		return internalErr("notifications.mark_read", err)
	}
	if n == nil {
		return notFoundErr("notifications.mark_read", "notification not found")
	}
	if n.IsRead {
		return nil
	}
	if _, err := s.repos.Notifications.MarkRead(dbc, userID, id, s.now()); err != nil {
		return internalErr("notifications.mark_read", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context) (int64, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.repos.Notifications.MarkAllRead(dbctx.New(ctx), userID, s.now())
	if err != nil {
		return 0, internalErr("notifications.mark_all_read", err)
	}
	return n, nil
}

func (s *notificationService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := requestUser(ctx)
	if err != nil {
		return err
	}
	n, err := s.repos.Notifications.Delete(dbctx.New(ctx), userID, id)
	if err != nil {
		return internalErr("notifications.delete", err)
	}
	if n == 0 {
		return notFoundErr("notifications.delete", "notification not found")
	}
	return nil
}

func (s *notificationService) DeleteRead(ctx context.Context) (int64, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.repos.Notifications.DeleteRead(dbctx.New(ctx), userID)
	if err != nil {
		return 0, internalErr("notifications.delete_read", err)
	}
	return n, nil
}

func (s *notificationService) Statistics(ctx context.Context) (NotificationStatistics, error) {
	const op = "notifications.statistics"
	userID, err := requestUser(ctx)
	if err != nil {
		return NotificationStatistics{}, err
	}
	dbc := dbctx.New(ctx)
	var st NotificationStatistics
	if st.TotalNotifications, err = s.repos.Notifications.CountByUser(dbc, userID); err != nil {
		return st, internalErr(op, err)
	}
	if st.UnreadCount, err = s.repos.Notifications.CountUnread(dbc, userID); err != nil {
		return st, internalErr(op, err)
	}
	st.ReadCount = st.TotalNotifications - st.UnreadCount
	if st.ByType, err = s.repos.Notifications.CountByType(dbc, userID); err != nil {
		return st, internalErr(op, err)
	}
	recent, err := s.repos.Notifications.ListSince(dbc, userID, s.now().AddDate(0, 0, -recentNotificationsDays))
	if err != nil {
		return st, internalErr(op, err)
	}
	st.RecentCount = len(recent)
	return st, nil
}

func (s *notificationService) Types() []string {
	out := make([]string, len(notifications.Types))
	copy(out, notifications.Types)
	return out
}

func (s *notificationService) Recent(ctx context.Context, days int) ([]*types.Notification, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultRecentDays
	}
	rows, err := s.repos.Notifications.ListSince(dbctx.New(ctx), userID, s.now().AddDate(0, 0, -days))
	if err != nil {
		return nil, internalErr("notifications.recent", err)
	}
	return rows, nil
}

func (s *notificationService) ClearOld(ctx context.Context, days int) (int64, error) {
	userID, err := requestUser(ctx)
	if err != nil {
		return 0, err
	}
	if days <= 0 {
		days = defaultClearOlderDays
	}
	n, err := s.repos.Notifications.DeleteOlderThan(dbctx.New(ctx), userID, s.now().AddDate(0, 0, -days))
	if err != nil {
		return 0, internalErr("notifications.clear_old", err)
	}
	return n, nil
}

func (s *notificationService) Send(ctx context.Context, in SendNotificationInput) (*types.Notification, error) {
	const op = "notifications.send"
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	var created types.Notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := s.repos.Users.Exists(dbc, in.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return notFoundErr(op, "user not found")
		}
		created, err = s.emitter.Emit(dbc, in.UserID, in.Type, in.Title, in.Message)
		return err
	})
	if err != nil {
		return nil, aggregates.MapError(op, err)
	}
	s.notifier.Notifications(ctx, []types.Notification{created})
	return &created, nil
}

// SendBulk creates one notification per existing user; unknown ids are counted
// as failed. All inserts share one transaction.
func (s *notificationService) SendBulk(ctx context.Context, in BulkSendInput) (BulkSendResult, error) {
	const op = "notifications.send_bulk"
	if err := requireAdmin(ctx); err != nil {
		return BulkSendResult{}, err
	}
	if len(in.UserIDs) == 0 {
		return BulkSendResult{}, validationErr(op, "user_ids is required")
	}
	var (
		res  BulkSendResult
		sent []types.Notification
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		found, err := s.repos.Users.GetByIDs(dbc, in.UserIDs)
		if err != nil {
			return err
		}
		known := make(map[uuid.UUID]bool, len(found))
		for _, u := range found {
			known[u.ID] = true
		}
		res, sent = BulkSendResult{}, sent[:0]
		for _, id := range in.UserIDs {
			if !known[id] {
				res.FailedCount++
				continue
			}
			n, err := s.emitter.Emit(dbc, id, in.Type, in.Title, in.Message)
			if err != nil {
				return err
			}
			sent = append(sent, n)
			res.CreatedCount++
		}
		return nil
	})
	if err != nil {
		return BulkSendResult{}, aggregates.MapError(op, err)
	}
	s.notifier.Notifications(ctx, sent)
	s.log.Info("bulk notification sent", "created", res.CreatedCount, "failed", res.FailedCount)
	return res, nil
}
