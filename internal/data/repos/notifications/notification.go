package notifications

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type NotificationFilter struct {
	IsRead *bool
	Type   string
}

type TypeCount struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

type NotificationRepo interface {
	Create(dbc dbctx.Context, n *types.Notification) (*types.Notification, error)
	CreateMany(dbc dbctx.Context, ns []*types.Notification) error
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Notification, error)
	List(dbc dbctx.Context, userID uuid.UUID, f NotificationFilter, page query.Page) ([]*types.Notification, int64, error)
	ListSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.Notification, error)
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	CountByType(dbc dbctx.Context, userID uuid.UUID) ([]TypeCount, error)
	MarkRead(dbc dbctx.Context, userID, id uuid.UUID, at time.Time) (int64, error)
	MarkAllRead(dbc dbctx.Context, userID uuid.UUID, at time.Time) (int64, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (int64, error)
	DeleteRead(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	DeleteOlderThan(dbc dbctx.Context, userID uuid.UUID, cutoff time.Time) (int64, error)
}

type notificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNotificationRepo(db *gorm.DB, baseLog *logger.Logger) NotificationRepo {
	return &notificationRepo{db: db, log: baseLog.With("repo", "NotificationRepo")}
}

func (r *notificationRepo) Create(dbc dbctx.Context, n *types.Notification) (*types.Notification, error) {
	if n == nil || n.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if err := dbc.DB(r.db).Create(n).Error; err != nil {
		return nil, err
	}
	return n, nil
}

func (r *notificationRepo) CreateMany(dbc dbctx.Context, ns []*types.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	return dbc.DB(r.db).CreateInBatches(ns, 200).Error
}

func (r *notificationRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.Notification, error) {
	var out types.Notification
	err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *notificationRepo) scoped(dbc dbctx.Context, userID uuid.UUID, f NotificationFilter) *gorm.DB {
	q := dbc.DB(r.db).Model(&types.Notification{}).Where("user_id = ?", userID)
	if f.IsRead != nil {
		q = q.Where("is_read = ?", *f.IsRead)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	return q
}

func (r *notificationRepo) List(dbc dbctx.Context, userID uuid.UUID, f NotificationFilter, page query.Page) ([]*types.Notification, int64, error) {
	page = page.Normalize(20, 200)
	var total int64
	if err := r.scoped(dbc, userID, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.Notification
	if err := r.scoped(dbc, userID, f).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *notificationRepo) ListSince(dbc dbctx.Context, userID uuid.UUID, since time.Time) ([]*types.Notification, error) {
	var out []*types.Notification
	if err := dbc.DB(r.db).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.scoped(dbc, userID, NotificationFilter{}).Count(&count).Error
	return count, err
}

func (r *notificationRepo) CountUnread(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	unread := false
	var count int64
	err := r.scoped(dbc, userID, NotificationFilter{IsRead: &unread}).Count(&count).Error
	return count, err
}

func (r *notificationRepo) CountByType(dbc dbctx.Context, userID uuid.UUID) ([]TypeCount, error) {
	var out []TypeCount
	err := dbc.DB(r.db).
		Model(&types.Notification{}).
		Select("type AS type, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("type").
		Order("type ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) MarkRead(dbc dbctx.Context, userID, id uuid.UUID, at time.Time) (int64, error) {
	res := dbc.DB(r.db).
		Model(&types.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) MarkAllRead(dbc dbctx.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res := dbc.DB(r.db).
		Model(&types.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Delete(&types.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) DeleteRead(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	res := dbc.DB(r.db).Where("user_id = ? AND is_read = ?", userID, true).Delete(&types.Notification{})
	return res.RowsAffected, res.Error
}

func (r *notificationRepo) DeleteOlderThan(dbc dbctx.Context, userID uuid.UUID, cutoff time.Time) (int64, error) {
	res := dbc.DB(r.db).Where("user_id = ? AND created_at < ?", userID, cutoff).Delete(&types.Notification{})
	return res.RowsAffected, res.Error
}
