package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/cache"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/mapper"
	"github.com/induskill/marketplace-api/internal/repository"
	"github.com/induskill/marketplace-api/internal/storage"
	"go.uber.org/zap"
)

// sniffLen is how many leading bytes content type detection looks at
const sniffLen = 512

// allowedImageTypes maps accepted upload content types to file extensions
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ImageUpload is a course image received from a multipart form
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type CourseService struct {
	courseRepo    *repository.CourseRepository
	partnerRepo   *repository.PartnerRepository
	storage       storage.Storage
	invalidator   *cache.CatalogInvalidator
	maxImageBytes int64
	logger        *zap.Logger
}

func NewCourseService(
	courseRepo *repository.CourseRepository,
	partnerRepo *repository.PartnerRepository,
	store storage.Storage,
	invalidator *cache.CatalogInvalidator,
	maxImageBytes int64,
	logger *zap.Logger,
) *CourseService {
	return &CourseService{
		courseRepo:    courseRepo,
		partnerRepo:   partnerRepo,
		storage:       store,
		invalidator:   invalidator,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// List returns a page of courses. Only admins see unpublished courses in the catalog.
func (s *CourseService) List(ctx context.Context, page, pageSize int, filters *repository.CourseFilters, sortBy repository.CourseSortOption) (*domain.PaginatedResponse, error) {
	if filters == nil {
		filters = &repository.CourseFilters{}
	}
	if user, err := currentUser(ctx); err != nil || !user.IsAdmin() {
		published := true
		filters.IsPublished = &published
	}

	page, pageSize = repository.NormalizePagination(page, pageSize)
	courses, total, err := s.courseRepo.List(ctx, page, pageSize, filters, sortBy)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", translateError(err, ErrCourseNotFound))
	}

	resp := domain.NewPaginatedResponse(mapper.ToCourseDTOs(courses), total, page, pageSize)
	return &resp, nil
}

// Featured returns the top rated published courses for the home page
func (s *CourseService) Featured(ctx context.Context, limit int) ([]domain.CourseDTO, error) {
	courses, err := s.courseRepo.Featured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load featured courses: %w", translateError(err, ErrCourseNotFound))
	}
	return mapper.ToCourseDTOs(courses), nil
}

// GetByID returns a course. Unpublished courses are visible to admins and their trainer only.
func (s *CourseService) GetByID(ctx context.Context, id uuid.UUID) (*domain.CourseDTO, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", translateError(err, ErrCourseNotFound))
	}

	if !course.IsPublished {
		user, err := currentUser(ctx)
		if err != nil || !canManageCourse(user, course) {
			return nil, ErrCourseNotFound
		}
	}

	dto := mapper.ToCourseDTO(course)
	return &dto, nil
}

// Create adds a course. Trainers become the owner of the courses they create.
func (s *CourseService) Create(ctx context.Context, req *domain.CreateCourseRequest) (*domain.CourseDTO, error) {
	user, err := requireRole(ctx, domain.RoleAdmin, domain.RoleTrainer)
	if err != nil {
		return nil, err
	}

	if err := s.checkPartner(ctx, req.PartnerID); err != nil {
		return nil, err
	}

	course := &domain.Course{IsPublished: true}
	mapper.ApplyCourseRequest(course, req)
	if user.HasRole(domain.RoleTrainer) {
		trainerID := user.UserID
		course.TrainerID = &trainerID
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", translateError(err, ErrCourseNotFound))
	}

	s.logger.Info("course created",
		zap.String("course_id", course.ID.String()),
		zap.String("title", course.Title),
		zap.String("user_id", user.UserID),
	)
	s.invalidateCatalog(ctx)

	dto := mapper.ToCourseDTO(course)
	return &dto, nil
}

// Update replaces a course's editable fields
func (s *CourseService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateCourseRequest) (*domain.CourseDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", translateError(err, ErrCourseNotFound))
	}
	if !canManageCourse(user, course) {
		return nil, ErrForbidden
	}

	if err := s.checkPartner(ctx, req.PartnerID); err != nil {
		return nil, err
	}

	imageURL := course.ImageURL
	mapper.ApplyCourseRequest(course, req)
	if course.ImageURL == "" {
		course.ImageURL = imageURL
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, fmt.Errorf("failed to update course: %w", translateError(err, ErrCourseNotFound))
	}
	s.invalidateCatalog(ctx)

	dto := mapper.ToCourseDTO(course)
	return &dto, nil
}

// Delete removes a course and its enrollments (admin only)
func (s *CourseService) Delete(ctx context.Context, id uuid.UUID) error {
	user, err := requireAdmin(ctx)
	if err != nil {
		return err
	}

	if err := s.courseRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", translateError(err, ErrCourseNotFound))
	}

	s.logger.Info("course deleted", zap.String("course_id", id.String()), zap.String("user_id", user.UserID))
	s.invalidateCatalog(ctx)
	return nil
}

// UploadImage stores a new course image and points the course at it
func (s *CourseService) UploadImage(ctx context.Context, id uuid.UUID, upload ImageUpload) (*domain.CourseDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", translateError(err, ErrCourseNotFound))
	}
	if !canManageCourse(user, course) {
		return nil, ErrForbidden
	}

	if s.maxImageBytes > 0 && upload.Size > s.maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", ErrPayloadTooLarge, s.maxImageBytes)
	}

	// The declared content type is ignored; the type comes from the file's own bytes
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(upload.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	if declared := strings.ToLower(strings.TrimSpace(strings.Split(upload.ContentType, ";")[0])); declared != "" && declared != contentType {
		s.logger.Debug("declared image type differs from content",
			zap.String("declared", declared),
			zap.String("detected", contentType),
		)
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedImage
	}
	body := io.MultiReader(bytes.NewReader(head), upload.Body)

	key, size, err := s.storage.Upload(ctx, "courses/"+course.ID.String(), "image"+ext, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	previous := course.ImageURL
	course.ImageURL = s.storage.PublicURL(key)
	if err := s.courseRepo.UpdateImageURL(ctx, course.ID, course.ImageURL); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, fmt.Errorf("failed to update course image: %w", translateError(err, ErrCourseNotFound))
	}

	s.logger.Info("course image uploaded",
		zap.String("course_id", course.ID.String()),
		zap.String("key", key),
		zap.Int64("size", size),
	)
	s.removeStoredImage(ctx, previous)
	s.invalidateCatalog(ctx)

	dto := mapper.ToCourseDTO(course)
	return &dto, nil
}

// removeStoredImage deletes a previous image when it lives in our storage
func (s *CourseService) removeStoredImage(ctx context.Context, imageURL string) {
	base := s.storage.PublicURL("")
	if imageURL == "" || !strings.HasPrefix(imageURL, base) {
		return
	}
	if err := s.storage.Delete(ctx, strings.TrimPrefix(imageURL, base)); err != nil {
		s.logger.Warn("failed to delete previous course image", zap.String("url", imageURL), zap.Error(err))
	}
}

func (s *CourseService) checkPartner(ctx context.Context, partnerID *uuid.UUID) error {
	if partnerID == nil {
		return nil
	}
	if _, err := s.partnerRepo.GetByID(ctx, *partnerID); err != nil {
		return fmt.Errorf("partner %s: %w", partnerID, translateError(err, ErrInvalidInput))
	}
	return nil
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if err := s.invalidator.InvalidateCatalog(ctx); err != nil {
		s.logger.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

// RecomputeStudentCounts rebuilds every course's student count from active enrollments
func (s *CourseService) RecomputeStudentCounts(ctx context.Context) (int64, error) {
	updated, err := s.courseRepo.RecomputeStudentCounts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to recompute student counts: %w", translateError(err, ErrCourseNotFound))
	}
	s.invalidateCatalog(ctx)
	return updated, nil
}
