package repository

import (
	"context"
	"fmt"

	"isizulu-corpus/backend/internal/domain/activity"

	"gorm.io/gorm"
)

// ActivityRepository 负责 activity_logs 表的追加写入与计数查询。
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 构造审计日志仓储。
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create 追加一条审计记录。
func (r *ActivityRepository) Create(ctx context.Context, log *activity.Log) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// CountByActions 统计动作属于给定集合的记录数。
func (r *ActivityRepository) CountByActions(ctx context.Context, actions ...activity.Action) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&activity.Log{})
	if len(actions) > 0 {
		query = query.Where("action IN ?", actions)
	}
	if err := query.Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count activity logs: %w", err)
	}
	return total, nil
}

// ListRecent 按时间倒序返回最近的审计记录。
func (r *ActivityRepository) ListRecent(ctx context.Context, limit int) ([]activity.Log, error) {
	var logs []activity.Log
	query := r.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return logs, nil
}
