package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/cache"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/mapper"
	"github.com/induskill/marketplace-api/internal/repository"
	"go.uber.org/zap"
)

type EnrollmentService struct {
	enrollmentRepo *repository.EnrollmentRepository
	courseRepo     *repository.CourseRepository
	invalidator    *cache.CatalogInvalidator
	logger         *zap.Logger
}

func NewEnrollmentService(
	enrollmentRepo *repository.EnrollmentRepository,
	courseRepo *repository.CourseRepository,
	invalidator *cache.CatalogInvalidator,
	logger *zap.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		courseRepo:     courseRepo,
		invalidator:    invalidator,
		logger:         logger,
	}
}

// Enroll registers the authenticated user on a published course.
// Contact fields left blank fall back to the user's identity.
func (s *EnrollmentService) Enroll(ctx context.Context, req *domain.EnrollRequest) (*domain.EnrollmentDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if req.CourseID == uuid.Nil {
		return nil, fmt.Errorf("%w: courseId is required", ErrInvalidInput)
	}

	course, err := s.courseRepo.GetByID(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", translateError(err, ErrCourseNotFound))
	}
	if !course.IsPublished {
		return nil, ErrCourseNotPublished
	}

	exists, err := s.enrollmentRepo.Exists(ctx, course.ID, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check enrollment: %w", translateError(err, ErrEnrollmentNotFound))
	}
	if exists {
		return nil, ErrAlreadyEnrolled
	}

	enrollment := &domain.Enrollment{
		CourseID:      course.ID,
		UserID:        user.UserID,
		ContactName:   firstNonEmpty(req.ContactName, user.Name()),
		ContactEmail:  firstNonEmpty(req.ContactEmail, user.Email),
		Phone:         strings.TrimSpace(req.Phone),
		Organization:  strings.TrimSpace(req.Organization),
		PaymentMethod: req.PaymentMethod,
		Notes:         strings.TrimSpace(req.Notes),
		Status:        domain.EnrollmentStatusPending,
	}

	if err := s.enrollmentRepo.Create(ctx, enrollment); err != nil {
		err = translateError(err, ErrEnrollmentNotFound)
		if errors.Is(err, ErrConflict) {
			return nil, ErrAlreadyEnrolled
		}
		return nil, fmt.Errorf("failed to create enrollment: %w", err)
	}

	if err := s.courseRepo.IncrementStudentCount(ctx, course.ID, 1); err != nil {
		s.logger.Warn("failed to increment student count", zap.String("course_id", course.ID.String()), zap.Error(err))
	}
	s.invalidateCatalog(ctx)

	s.logger.Info("enrollment created",
		zap.String("enrollment_id", enrollment.ID.String()),
		zap.String("course_id", course.ID.String()),
		zap.String("user_id", user.UserID),
	)

	enrollment.Course = course
	dto := mapper.ToEnrollmentDTO(enrollment)
	return &dto, nil
}

// ListMine returns the authenticated user's enrollments
func (s *EnrollmentService) ListMine(ctx context.Context) ([]domain.EnrollmentDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	enrollments, err := s.enrollmentRepo.ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", translateError(err, ErrEnrollmentNotFound))
	}
	return mapper.ToEnrollmentDTOs(enrollments), nil
}

// UpdateStatus confirms or cancels an enrollment (admin only). The course's
// student count follows enrollments moving in and out of cancelled.
func (s *EnrollmentService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.EnrollmentStatus) (*domain.EnrollmentDTO, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown enrollment status %q", ErrInvalidInput, status)
	}

	previous, err := s.enrollmentRepo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("failed to update enrollment: %w", translateError(err, ErrEnrollmentNotFound))
	}

	enrollment, err := s.enrollmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get enrollment: %w", translateError(err, ErrEnrollmentNotFound))
	}

	delta := 0
	switch {
	case previous != domain.EnrollmentStatusCancelled && status == domain.EnrollmentStatusCancelled:
		delta = -1
	case previous == domain.EnrollmentStatusCancelled && status != domain.EnrollmentStatusCancelled:
		delta = 1
	}
	if delta != 0 {
		if err := s.courseRepo.IncrementStudentCount(ctx, enrollment.CourseID, delta); err != nil {
			s.logger.Warn("failed to adjust student count", zap.String("course_id", enrollment.CourseID.String()), zap.Error(err))
		}
		s.invalidateCatalog(ctx)
	}

	dto := mapper.ToEnrollmentDTO(enrollment)
	return &dto, nil
}

func (s *EnrollmentService) invalidateCatalog(ctx context.Context) {
	if err := s.invalidator.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
