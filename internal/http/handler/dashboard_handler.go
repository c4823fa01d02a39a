package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// Get godoc
// @Summary Role dashboard data
// @Description Returns the dashboard for a role. Users may only open their own role's dashboard; admins may open any.
// @Tags Dashboard
// @Produce json
// @Param role path string true "Dashboard role" Enums(student, trainer, corporate, admin)
// @Success 200 {object} interface{}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /dashboard/{role} [get]
func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(chi.URLParam(r, "role"))

	data, err := h.dashboardService.ForRole(r.Context(), role)
	if err != nil {
		respondServiceError(w, h.logger, err, "load dashboard")
		return
	}

	respondJSON(w, http.StatusOK, data)
}
