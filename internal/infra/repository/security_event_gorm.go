package repository

import (
	"context"

	"gorm.io/gorm"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type securityEventGormRepository struct {
	db *gorm.DB
}

func NewSecurityEventGormRepository(db *gorm.DB) repo.SecurityEventRepository {
	return &securityEventGormRepository{db: db}
}

func (r *securityEventGormRepository) Create(ctx context.Context, event model.SecurityEvent) error {
	if err := r.db.WithContext(ctx).Create(&event).Error; err != nil {
		return err
	}
	return nil
}

func (r *securityEventGormRepository) List(ctx context.Context, filter repo.SecurityEventFilter) ([]model.SecurityEvent, error) {
	q := r.db.WithContext(ctx).Model(&model.SecurityEvent{})

	if filter.EventType != nil {
		q = q.Where("event_type = ?", *filter.EventType)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.IPAddress != nil {
		q = q.Where("ip_address = ?", *filter.IPAddress)
	}
	if filter.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		q = q.Where("created_at <= ?", *filter.CreatedTo)
	}

	//新しい順
	q = q.Order("id DESC")

	// limit/offset
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	q = q.Limit(limit).Offset(filter.Offset)

	var events []model.SecurityEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
