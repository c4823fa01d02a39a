package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts an enrollment. A second enrollment for the same course and user
// fails with a unique violation.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *domain.Enrollment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(enrollment).Error
}

func (r *EnrollmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Enrollment, error) {
	var enrollment domain.Enrollment
	err := r.db.WithContext(ctx).Preload("Course").Where("id = ?", id).First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists reports whether the user is already enrolled in the course
func (r *EnrollmentRepository) Exists(ctx context.Context, courseID uuid.UUID, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// CountByCourses returns active enrollment counts keyed by course id
func (r *EnrollmentRepository) CountByCourses(ctx context.Context, courseIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(courseIDs))
	if len(courseIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		CourseID uuid.UUID
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Where("course_id IN ?", courseIDs).
		Where("status <> ?", domain.EnrollmentStatusCancelled).
		Group("course_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.CourseID] = row.Total
	}
	return counts, nil
}

func (r *EnrollmentRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Enrollment{}).Count(&count).Error
	return count, err
}

// UpdateStatus changes an enrollment's status and returns the previous one
func (r *EnrollmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EnrollmentStatus) (domain.EnrollmentStatus, error) {
	var previous domain.EnrollmentStatus
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment domain.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&enrollment).Error; err != nil {
			return err
		}
		previous = enrollment.Status
		if previous == status {
			return nil
		}
		return tx.Model(&enrollment).Update("status", status).Error
	})
	return previous, err
}

// Recent returns the latest enrollments across the catalog
func (r *EnrollmentRepository) Recent(ctx context.Context, limit int) ([]domain.Enrollment, error) {
	var enrollments []domain.Enrollment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Order("created_at DESC").
		Limit(limit).
		Find(&enrollments).Error
	return enrollments, err
}
