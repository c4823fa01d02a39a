package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CourseFilters narrows a course listing. Nil fields are ignored.
type CourseFilters struct {
	Search      *string
	Type        *domain.CourseType
	Location    *string
	Tag         *string
	PartnerID   *uuid.UUID
	TrainerID   *string
	IsPublished *bool
}

// CourseSortOption represents available sort options
type CourseSortOption string

const (
	CourseSortNewest   CourseSortOption = "newest"
	CourseSortTitle    CourseSortOption = "title"
	CourseSortRating   CourseSortOption = "rating"
	CourseSortStudents CourseSortOption = "students"
)

// ParseCourseSort maps a query-string value to a sort option, defaulting to newest
func ParseCourseSort(s string) CourseSortOption {
	switch CourseSortOption(strings.ToLower(s)) {
	case CourseSortTitle:
		return CourseSortTitle
	case CourseSortRating:
		return CourseSortRating
	case CourseSortStudents:
		return CourseSortStudents
	default:
		return CourseSortNewest
	}
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(course).Error
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Update writes the editable course fields. student_count is owned by
// IncrementStudentCount and the stats job and is never written here.
func (r *CourseRepository) Update(ctx context.Context, course *domain.Course) error {
	result := r.db.WithContext(ctx).
		Model(course).
		Select("*").
		Omit(clause.Associations, "id", "student_count", "created_at").
		Updates(course)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *CourseRepository) UpdateImageURL(ctx context.Context, id uuid.UUID, imageURL string) error {
	result := r.db.WithContext(ctx).Model(&domain.Course{}).Where("id = ?", id).Update("image_url", imageURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a course together with its enrollments
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&domain.Enrollment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Course{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *CourseRepository) List(ctx context.Context, page, pageSize int, filters *CourseFilters, sortBy CourseSortOption) ([]domain.Course, int64, error) {
	var courses []domain.Course
	var total int64

	page, pageSize = NormalizePagination(page, pageSize)

	query := r.db.WithContext(ctx).Model(&domain.Course{})
	query = r.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.applySorting(query, sortBy)
	err := paginate(query, page, pageSize).Find(&courses).Error

	return courses, total, err
}

// ListByTrainer returns every course owned by a trainer, newest first
func (r *CourseRepository) ListByTrainer(ctx context.Context, trainerID string) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).
		Where("trainer_id = ?", trainerID).
		Order("created_at DESC").
		Find(&courses).Error
	return courses, err
}

// ListByPartner returns every course offered by a partner company
func (r *CourseRepository) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("title ASC").
		Find(&courses).Error
	return courses, err
}

// ListByIDs loads the given courses; unknown ids are skipped
func (r *CourseRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Course, error) {
	var courses []domain.Course
	if len(ids) == 0 {
		return courses, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("title ASC").Find(&courses).Error
	return courses, err
}

// Featured returns the highest rated published courses
func (r *CourseRepository) Featured(ctx context.Context, limit int) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("rating DESC, student_count DESC").
		Limit(limit).
		Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Course{}).Count(&count).Error
	return count, err
}

// IncrementStudentCount adds delta to a course's student count
func (r *CourseRepository) IncrementStudentCount(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Course{}).
		Where("id = ?", id).
		UpdateColumn("student_count", gorm.Expr("student_count + ?", delta)).Error
}

// RecomputeStudentCounts sets every course's student count to its number of active enrollments.
// Returns the number of course rows touched.
func (r *CourseRepository) RecomputeStudentCounts(ctx context.Context) (int64, error) {
	active := []domain.EnrollmentStatus{domain.EnrollmentStatusPending, domain.EnrollmentStatusConfirmed}
	result := r.db.WithContext(ctx).Exec(
		`UPDATE courses SET student_count = (
			SELECT COUNT(*) FROM enrollments
			WHERE enrollments.course_id = courses.id AND enrollments.status IN ?
		)`, active)
	return result.RowsAffected, result.Error
}

func (r *CourseRepository) applyFilters(query *gorm.DB, filters *CourseFilters) *gorm.DB {
	if filters == nil {
		return query
	}

	if filters.Search != nil {
		query = searchColumns(query, *filters.Search, "title", "company_name", "description", "location")
	}

	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}

	if filters.Location != nil && *filters.Location != "" {
		query = query.Where(`LOWER(location) LIKE ? ESCAPE '\'`, likePattern(*filters.Location))
	}

	if filters.Tag != nil && *filters.Tag != "" {
		// tags is a JSON array; match the quoted element
		tag := `%"` + escapeLike(*filters.Tag) + `"%`
		query = query.Where(`LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\'`, tag)
	}

	if filters.PartnerID != nil {
		query = query.Where("partner_id = ?", *filters.PartnerID)
	}

	if filters.TrainerID != nil {
		query = query.Where("trainer_id = ?", *filters.TrainerID)
	}

	if filters.IsPublished != nil {
		query = query.Where("is_published = ?", *filters.IsPublished)
	}

	return query
}

func (r *CourseRepository) applySorting(query *gorm.DB, sortBy CourseSortOption) *gorm.DB {
	switch sortBy {
	case CourseSortTitle:
		return query.Order("title ASC")
	case CourseSortRating:
		return query.Order("rating DESC").Order("title ASC")
	case CourseSortStudents:
		return query.Order("student_count DESC").Order("title ASC")
	default:
		return query.Order("created_at DESC").Order("title ASC")
	}
}
