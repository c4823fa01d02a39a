package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"gorm.io/gorm"
)

type PartnerRepository struct {
	db *gorm.DB
}

func NewPartnerRepository(db *gorm.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

func (r *PartnerRepository) Create(ctx context.Context, partner *domain.Partner) error {
	return r.db.WithContext(ctx).Create(partner).Error
}

func (r *PartnerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Partner, error) {
	var partner domain.Partner
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *PartnerRepository) Update(ctx context.Context, partner *domain.Partner) error {
	return r.db.WithContext(ctx).Save(partner).Error
}

// Delete removes a partner and detaches its courses
func (r *PartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Course{}).Where("partner_id = ?", id).Update("partner_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Partner{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *PartnerRepository) List(ctx context.Context, page, pageSize int, search, industry string) ([]domain.Partner, int64, error) {
	var partners []domain.Partner
	var total int64

	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Partner{})
	query = searchColumns(query, search, "name", "industry", "location", "description")
	if industry != "" {
		query = query.Where("LOWER(industry) = LOWER(?)", industry)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := paginate(query, page, pageSize).Order("name ASC").Find(&partners).Error
	return partners, total, err
}

// Industries returns the distinct industries in the directory
func (r *PartnerRepository) Industries(ctx context.Context) ([]string, error) {
	var industries []string
	err := r.db.WithContext(ctx).
		Model(&domain.Partner{}).
		Where("industry <> ''").
		Distinct().
		Order("industry ASC").
		Pluck("industry", &industries).Error
	return industries, err
}

func (r *PartnerRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Partner{}).Count(&count).Error
	return count, err
}
