package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/repository"
	"github.com/induskill/marketplace-api/internal/service"
	"go.uber.org/zap"
)

// multipartOverhead leaves room for form boundaries and fields around the image
const multipartOverhead = 512 << 10

type CourseHandler struct {
	courseService *service.CourseService
	maxImageBytes int64
	logger        *zap.Logger
}

func NewCourseHandler(courseService *service.CourseService, maxImageBytes int64, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{
		courseService: courseService,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// List godoc
// @Summary List courses
// @Description Paginated course catalog with search and filters. Unpublished courses are listed for admins only.
// @Tags Courses
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param search query string false "Search title, company, description and location"
// @Param type query string false "Delivery type" Enums(online, onsite, hybrid)
// @Param location query string false "Filter by location"
// @Param tag query string false "Filter by tag"
// @Param partnerId query string false "Filter by partner" format(uuid)
// @Param trainerId query string false "Filter by trainer user id"
// @Param sortBy query string false "Sort option" Enums(newest, title, rating, students)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.CourseDTO}
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /courses [get]
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	q := r.URL.Query()

	filters := &repository.CourseFilters{
		Search:    queryString(r, "search"),
		Location:  queryString(r, "location"),
		Tag:       queryString(r, "tag"),
		TrainerID: queryString(r, "trainerId"),
	}

	if t := q.Get("type"); t != "" {
		courseType := domain.CourseType(t)
		if !courseType.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid course type")
			return
		}
		filters.Type = &courseType
	}

	if pid := q.Get("partnerId"); pid != "" {
		partnerID, err := uuid.Parse(pid)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid partner ID format")
			return
		}
		filters.PartnerID = &partnerID
	}

	sortBy := repository.ParseCourseSort(q.Get("sortBy"))

	result, err := h.courseService.List(r.Context(), page, pageSize, filters, sortBy)
	if err != nil {
		respondServiceError(w, h.logger, err, "list courses")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Featured godoc
// @Summary Featured courses
// @Description Top rated published courses for the home page
// @Tags Courses
// @Produce json
// @Param limit query int false "Number of courses (max 12)" default(6)
// @Success 200 {array} domain.CourseDTO
// @Failure 500 {object} domain.APIError
// @Router /courses/featured [get]
func (h *CourseHandler) Featured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 6
	}
	if limit > 12 {
		limit = 12
	}

	courses, err := h.courseService.Featured(r.Context(), limit)
	if err != nil {
		respondServiceError(w, h.logger, err, "load featured courses")
		return
	}

	respondJSON(w, http.StatusOK, courses)
}

// GetByID godoc
// @Summary Get course
// @Description Course detail including syllabus, requirements and outcomes
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID" format(uuid)
// @Success 200 {object} domain.CourseDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /courses/{id} [get]
func (h *CourseHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "course")
	if !ok {
		return
	}

	course, err := h.courseService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get course")
		return
	}

	respondJSON(w, http.StatusOK, course)
}

// Create godoc
// @Summary Create course
// @Description Create a course. Trainers become the owner of courses they create.
// @Tags Courses
// @Accept json
// @Produce json
// @Param request body domain.CreateCourseRequest true "Course data"
// @Success 201 {object} domain.CourseDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /courses [post]
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.courseService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create course")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/courses/%s", course.ID))
	respondJSON(w, http.StatusCreated, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param id path string true "Course ID" format(uuid)
// @Param request body domain.UpdateCourseRequest true "Course data"
// @Success 200 {object} domain.CourseDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "course")
	if !ok {
		return
	}

	var req domain.UpdateCourseRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	course, err := h.courseService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update course")
		return
	}

	respondJSON(w, http.StatusOK, course)
}

// Delete godoc
// @Summary Delete course
// @Tags Courses
// @Param id path string true "Course ID" format(uuid)
// @Success 204
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "course")
	if !ok {
		return
	}

	if err := h.courseService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete course")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UploadImage godoc
// @Summary Upload course image
// @Description Multipart upload of a jpeg, png, webp or gif image in the "image" field
// @Tags Courses
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Course ID" format(uuid)
// @Param image formData file true "Course image"
// @Success 200 {object} domain.CourseDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 413 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /courses/{id}/image [post]
func (h *CourseHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "course")
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxImageBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxImageBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Image too large: maximum size is %d bytes", h.maxImageBytes))
			return
		}
		respondWithError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("image")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid image upload: image field is required")
		return
	}
	defer file.Close()

	course, err := h.courseService.UploadImage(r.Context(), id, service.ImageUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondServiceError(w, h.logger, err, "upload course image")
		return
	}

	respondJSON(w, http.StatusOK, course)
}
