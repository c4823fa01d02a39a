package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type PartnerHandler struct {
	partnerService *service.PartnerService
	logger         *zap.Logger
}

func NewPartnerHandler(partnerService *service.PartnerService, logger *zap.Logger) *PartnerHandler {
	return &PartnerHandler{
		partnerService: partnerService,
		logger:         logger,
	}
}

// List godoc
// @Summary List partners
// @Description Paginated partner company directory
// @Tags Partners
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param search query string false "Search by name, location or description"
// @Param industry query string false "Filter by industry"
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.PartnerDTO}
// @Failure 500 {object} domain.APIError
// @Router /partners [get]
func (h *PartnerHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := strings.TrimSpace(r.URL.Query().Get("search"))
	industry := strings.TrimSpace(r.URL.Query().Get("industry"))

	result, err := h.partnerService.List(r.Context(), page, pageSize, search, industry)
	if err != nil {
		respondServiceError(w, h.logger, err, "list partners")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Industries godoc
// @Summary List partner industries
// @Tags Partners
// @Produce json
// @Success 200 {array} string
// @Router /partners/industries [get]
func (h *PartnerHandler) Industries(w http.ResponseWriter, r *http.Request) {
	industries, err := h.partnerService.Industries(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "list industries")
		return
	}

	respondJSON(w, http.StatusOK, industries)
}

// GetByID godoc
// @Summary Get partner
// @Tags Partners
// @Produce json
// @Param id path string true "Partner ID" format(uuid)
// @Success 200 {object} domain.PartnerDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /partners/{id} [get]
func (h *PartnerHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "partner")
	if !ok {
		return
	}

	partner, err := h.partnerService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "get partner")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}

// Create godoc
// @Summary Create partner
// @Tags Partners
// @Accept json
// @Produce json
// @Param request body domain.CreatePartnerRequest true "Partner data"
// @Success 201 {object} domain.PartnerDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners [post]
func (h *PartnerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartnerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	partner, err := h.partnerService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "create partner")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/partners/%s", partner.ID))
	respondJSON(w, http.StatusCreated, partner)
}

// Update godoc
// @Summary Update partner
// @Tags Partners
// @Accept json
// @Produce json
// @Param id path string true "Partner ID" format(uuid)
// @Param request body domain.UpdatePartnerRequest true "Partner data"
// @Success 200 {object} domain.PartnerDTO
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners/{id} [put]
func (h *PartnerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "partner")
	if !ok {
		return
	}

	var req domain.UpdatePartnerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	partner, err := h.partnerService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update partner")
		return
	}

	respondJSON(w, http.StatusOK, partner)
}

// Delete godoc
// @Summary Delete partner
// @Tags Partners
// @Param id path string true "Partner ID" format(uuid)
// @Success 204
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /partners/{id} [delete]
func (h *PartnerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "id", "partner")
	if !ok {
		return
	}

	if err := h.partnerService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "delete partner")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
