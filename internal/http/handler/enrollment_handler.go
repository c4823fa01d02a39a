package handler

import (
	"net/http"

	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type EnrollmentHandler struct {
	enrollmentService *service.EnrollmentService
	logger            *zap.Logger
}

func NewEnrollmentHandler(enrollmentService *service.EnrollmentService, logger *zap.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		enrollmentService: enrollmentService,
		logger:            logger,
	}
}

// Enroll godoc
// @Summary Enroll in a course
// @Description Records an enrollment for the signed-in user. Payment method is stored only; nothing is charged.
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param request body domain.EnrollRequest true "Enrollment form"
// @Success 201 {object} domain.EnrollmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Router /enroll [post]
func (h *EnrollmentHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req domain.EnrollRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "enroll")
		return
	}

	respondJSON(w, http.StatusCreated, enrollment)
}

// ListMine godoc
// @Summary List my enrollments
// @Tags Enrollments
// @Produce json
// @Success 200 {array} domain.EnrollmentDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /enrollments/me [get]
func (h *EnrollmentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	enrollments, err := h.enrollmentService.ListMine(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list enrollments")
		return
	}

	respondJSON(w, http.StatusOK, enrollments)
}

// UpdateStatus godoc
// @Summary Confirm or cancel an enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Enrollment ID" format(uuid)
// @Param request body domain.UpdateEnrollmentStatusRequest true "New status"
// @Success 200 {object} domain.EnrollmentDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /enrollments/{id}/status [put]
func (h *EnrollmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "enrollment")
	if !ok {
		return
	}

	var req domain.UpdateEnrollmentStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	enrollment, err := h.enrollmentService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "update enrollment")
		return
	}

	respondJSON(w, http.StatusOK, enrollment)
}
