package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/service"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// SyncUser godoc
// @Summary Mirror the signed-in identity into the database
// @Description Called on every page load. A role picked at sign-up is applied once while no role is stored; admin cannot be picked.
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.SyncUserRequest false "Sign-up role"
// @Success 200 {object} domain.SyncUserResponse
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /sync-user [post]
func (h *UserHandler) SyncUser(w http.ResponseWriter, r *http.Request) {
	var req domain.SyncUserRequest
	if r.ContentLength != 0 {
		if !decodeAndValidate(w, r, &req) {
			return
		}
	}

	resp, err := h.userService.Sync(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "sync user")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetUserRole godoc
// @Summary Get the signed-in user's role
// @Description Role resolved from the token claim, then the stored profile, then the student default
// @Tags Users
// @Produce json
// @Success 200 {object} domain.UserRoleDTO
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /get-user-role [get]
func (h *UserHandler) GetUserRole(w http.ResponseWriter, r *http.Request) {
	role, err := h.userService.GetRole(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get user role")
		return
	}

	respondJSON(w, http.StatusOK, role)
}

// GetProfile godoc
// @Summary Get the signed-in user's profile
// @Tags Users
// @Produce json
// @Success 200 {object} domain.UserProfile
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /profile [get]
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetProfile(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "get profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateProfile godoc
// @Summary Update the signed-in user's profile
// @Description Only the supplied fields change; firstName cannot be blank
// @Tags Users
// @Accept json
// @Produce json
// @Param request body domain.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} domain.UserProfile
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Security BearerAuth
// @Router /update-profile [put]
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "update profile")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// AssignRole godoc
// @Summary Assign a user's role
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "Identity provider user id"
// @Param request body domain.AssignRoleRequest true "Role"
// @Success 200 {object} domain.UserProfile
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/{id}/role [put]
func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req domain.AssignRoleRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.userService.AssignRole(r.Context(), userID, domain.Role(req.Role))
	if err != nil {
		respondServiceError(w, h.logger, err, "assign role")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// AssignPartner godoc
// @Summary Link a user to a partner company
// @Description A null partnerId unlinks the user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "Identity provider user id"
// @Param request body domain.AssignPartnerRequest true "Partner"
// @Success 200 {object} domain.UserProfile
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /users/{id}/partner [put]
func (h *UserHandler) AssignPartner(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "id"))

	var req domain.AssignPartnerRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.userService.AssignPartner(r.Context(), userID, req.PartnerID)
	if err != nil {
		respondServiceError(w, h.logger, err, "assign partner")
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
