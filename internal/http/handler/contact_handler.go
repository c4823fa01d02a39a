package handler

import (
	"net/http"

	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type ContactHandler struct {
	contactService *service.ContactService
	logger         *zap.Logger
}

func NewContactHandler(contactService *service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		logger:         logger,
	}
}

// List godoc
// @Summary List contact messages
// @Description Admin inbox of contact form submissions, newest first
// @Tags Contact
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param status query string false "Filter by status" Enums(new, read, replied)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ContactMessageDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contact [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var status *domain.ContactStatus
	if s := r.URL.Query().Get("status"); s != "" {
		cs := domain.ContactStatus(s)
		if !cs.IsValid() {
			respondWithError(w, http.StatusBadRequest, "Invalid status filter")
			return
		}
		status = &cs
	}

	result, err := h.contactService.List(r.Context(), page, pageSize, status)
	if err != nil {
		respondServiceError(w, h.logger, err, "list contact messages")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Submit godoc
// @Summary Submit the contact form
// @Tags Contact
// @Accept json
// @Produce json
// @Param request body domain.CreateContactMessageRequest true "Contact form"
// @Success 201 {object} domain.ContactMessageDTO
// @Failure 400 {object} domain.APIError
// @Router /contact [post]
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateContactMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	message, err := h.contactService.Submit(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "submit contact message")
		return
	}

	respondJSON(w, http.StatusCreated, message)
}

// GetByID godoc
// @Summary Get contact message
// @Tags Contact
// @Produce json
// @Param id path string true "Message ID" format(uuid)
// @Success 200 {object} domain.ContactMessageDTO
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contact/{id} [get]
func (h *ContactHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "message")
	if !ok {
		return
	}

	message, err := h.contactService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get contact message")
		return
	}

	respondJSON(w, http.StatusOK, message)
}

// UpdateStatus godoc
// @Summary Mark a contact message
// @Tags Contact
// @Accept json
// @Produce json
// @Param id path string true "Message ID" format(uuid)
// @Param request body domain.UpdateContactStatusRequest true "New status"
// @Success 200 {object} domain.ContactMessageDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contact/{id}/status [put]
func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "message")
	if !ok {
		return
	}

	var req domain.UpdateContactStatusRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	message, err := h.contactService.MarkStatus(r.Context(), id, req.Status)
	if err != nil {
		respondServiceError(w, h.logger, err, "update contact message")
		return
	}

	respondJSON(w, http.StatusOK, message)
}

// Reply godoc
// @Summary Reply to a contact message by email
// @Description Sends the reply to the sender and marks the message replied
// @Tags Contact
// @Accept json
// @Produce json
// @Param id path string true "Message ID" format(uuid)
// @Param request body domain.ReplyContactMessageRequest true "Reply"
// @Success 200 {object} domain.ContactMessageDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contact/{id}/reply [post]
func (h *ContactHandler) Reply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "message")
	if !ok {
		return
	}

	var req domain.ReplyContactMessageRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	message, err := h.contactService.Reply(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "reply to contact message")
		return
	}

	respondJSON(w, http.StatusOK, message)
}
