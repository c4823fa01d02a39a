package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

type ContactMessageRepository struct {
	db *gorm.DB
}

func NewContactMessageRepository(db *gorm.DB) *ContactMessageRepository {
	return &ContactMessageRepository{db: db}
}

func (r *ContactMessageRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *ContactMessageRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContactMessage, error) {
	var msg domain.ContactMessage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&msg).Error
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// List returns messages newest first, optionally restricted to one status
func (r *ContactMessageRepository) List(ctx context.Context, page, pageSize int, status *domain.ContactStatus) ([]domain.ContactMessage, int64, error) {
	var messages []domain.ContactMessage
	var total int64

	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.ContactMessage{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(query, page, pageSize).Order("created_at DESC").Find(&messages).Error
	return messages, total, err
}

// UpdateStatus sets the status; moving to replied stamps replied_at
func (r *ContactMessageRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContactStatus) error {
	updates := map[string]interface{}{"status": status}
	if status == domain.ContactStatusReplied {
		updates["replied_at"] = time.Now().UTC()
	}
	result := r.db.WithContext(ctx).Model(&domain.ContactMessage{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ContactMessageRepository) CountByStatus(ctx context.Context, status domain.ContactStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ContactMessage{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

func (r *ContactMessageRepository) Recent(ctx context.Context, limit int) ([]domain.ContactMessage, error) {
	var messages []domain.ContactMessage
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&messages).Error
	return messages, err
}
