package tracking

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/quitbridge-backend/internal/data/repos/query"
	types "github.com/yungbote/quitbridge-backend/internal/domain"
	"github.com/yungbote/quitbridge-backend/internal/platform/dbctx"
	"github.com/yungbote/quitbridge-backend/internal/platform/logger"
)

type SmokingRecordRepo interface {
	Create(dbc dbctx.Context, rec *types.SmokingRecord) (*types.SmokingRecord, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.SmokingRecord, error)
	GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) (*types.SmokingRecord, error)
	LockByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.SmokingRecord, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id uuid.UUID) error
	CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, page query.Page) ([]*types.SmokingRecord, int64, error)
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, from time.Time) ([]*types.SmokingRecord, error)
}

type smokingRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSmokingRecordRepo(db *gorm.DB, baseLog *logger.Logger) SmokingRecordRepo {
	return &smokingRecordRepo{db: db, log: baseLog.With("repo", "SmokingRecordRepo")}
}

func (r *smokingRecordRepo) Create(dbc dbctx.Context, rec *types.SmokingRecord) (*types.SmokingRecord, error) {
	if rec == nil || rec.UserID == uuid.Nil {
		return nil, fmt.Errorf("missing user_id")
	}
	if err := dbc.DB(r.db).Create(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

// GetByID is scoped to the owner; nil, nil when absent or owned by someone else.
func (r *smokingRecordRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.SmokingRecord, error) {
	var out types.SmokingRecord
	err := dbc.DB(r.db).Where("id = ? AND user_id = ?", id, userID).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *smokingRecordRepo) GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, day time.Time) (*types.SmokingRecord, error) {
	var out types.SmokingRecord
	err := dbc.DB(r.db).
		Where("user_id = ? AND record_date = ?", userID, day).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *smokingRecordRepo) LockByID(dbc dbctx.Context, userID, id uuid.UUID) (*types.SmokingRecord, error) {
	if id == uuid.Nil {
		return nil, fmt.Errorf("missing id")
	}
	if dbc.Tx == nil {
		return nil, fmt.Errorf("LockByID requires dbc.Tx")
	}
	var out types.SmokingRecord
	err := dbc.Tx.WithContext(dbc.Ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *smokingRecordRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return fmt.Errorf("missing id")
	}
	if len(updates) == 0 {
		return nil
	}
	updates["updated_at"] = time.Now().UTC()
	return dbc.DB(r.db).Model(&types.SmokingRecord{}).Where("id = ?", id).Updates(updates).Error
}

func (r *smokingRecordRepo) Delete(dbc dbctx.Context, id uuid.UUID) error {
	return dbc.DB(r.db).Where("id = ?", id).Delete(&types.SmokingRecord{}).Error
}

func (r *smokingRecordRepo) CountByUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.DB(r.db).Model(&types.SmokingRecord{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// ListByUser returns the newest records first plus the total count.
func (r *smokingRecordRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, page query.Page) ([]*types.SmokingRecord, int64, error) {
	page = page.Normalize(30, 200)
	var total int64
	if err := dbc.DB(r.db).Model(&types.SmokingRecord{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []*types.SmokingRecord
	if err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("record_date DESC").
		Limit(page.Limit).
		Offset(page.Offset).
		Find(&out).Error; err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByUserSince returns records on or after from, oldest first.
func (r *smokingRecordRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, from time.Time) ([]*types.SmokingRecord, error) {
	var out []*types.SmokingRecord
	if err := dbc.DB(r.db).
		Where("user_id = ? AND record_date >= ?", userID, from).
		Order("record_date ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
