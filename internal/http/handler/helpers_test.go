package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/cache"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/http/handler"
	"github.com/induskill/marketplace-api/internal/mailer"
	"github.com/induskill/marketplace-api/internal/repository"
	"github.com/induskill/marketplace-api/internal/service"
	"github.com/induskill/marketplace-api/internal/storage"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testMaxImageBytes = 1 << 10

type handlerEnv struct {
	db          *gorm.DB
	store       storage.Storage
	mail        *recordingMailer
	courses     *handler.CourseHandler
	partners    *handler.PartnerHandler
	enrollments *handler.EnrollmentHandler
	contact     *handler.ContactHandler
	users       *handler.UserHandler
	dashboards  *handler.DashboardHandler
}

func setupHandlers(t *testing.T) *handlerEnv {
	t.Helper()
	return setupHandlersWithDB(t, testutil.SetupTestDB(t))
}

func setupHandlersWithDB(t *testing.T, db *gorm.DB) *handlerEnv {
	t.Helper()
	logger := zap.NewNop()

	store, err := storage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	courseRepo := repository.NewCourseRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	messageRepo := repository.NewContactMessageRepository(db)
	profileRepo := repository.NewUserProfileRepository(db)
	invalidator := cache.NewCatalogInvalidator(cache.Noop{})
	mail := &recordingMailer{}

	courseService := service.NewCourseService(courseRepo, partnerRepo, store, invalidator, testMaxImageBytes, logger)
	partnerService := service.NewPartnerService(partnerRepo, invalidator, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, invalidator, logger)
	contactService := service.NewContactService(messageRepo, mail, "InduSkill", logger)
	userService := service.NewUserService(profileRepo, partnerRepo, nil, logger)
	dashboardService := service.NewDashboardService(courseRepo, partnerRepo, enrollmentRepo, messageRepo, profileRepo, logger)

	return &handlerEnv{
		db:          db,
		store:       store,
		mail:        mail,
		courses:     handler.NewCourseHandler(courseService, testMaxImageBytes, logger),
		partners:    handler.NewPartnerHandler(partnerService, logger),
		enrollments: handler.NewEnrollmentHandler(enrollmentService, logger),
		contact:     handler.NewContactHandler(contactService, logger),
		users:       handler.NewUserHandler(userService, logger),
		dashboards:  handler.NewDashboardHandler(dashboardService, logger),
	}
}

// jsonRequest builds a request with body encoded as JSON; a nil body sends none
func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// asUser attaches a signed-in user whose role came from the session token
func asUser(req *http.Request, userID string, role domain.Role) *http.Request {
	return req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID:      userID,
		Email:       userID + "@example.com",
		FirstName:   "Asha",
		LastName:    "Rao",
		DisplayName: "Asha Rao",
		Role:        role,
		RoleSource:  auth.RoleSourceToken,
	}))
}

// asNewUser attaches a signed-in user with no role anywhere yet
func asNewUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID:     userID,
		Email:      userID + "@example.com",
		FirstName:  "Vikram",
		LastName:   "Singh",
		Role:       domain.DefaultRole,
		RoleSource: auth.RoleSourceDefault,
	}))
}

func asAdmin(req *http.Request) *http.Request {
	return asUser(req, "user_admin", domain.RoleAdmin)
}

// withURLParam sets a chi route parameter on the request
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx, _ := req.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) domain.APIError {
	t.Helper()
	var problem domain.APIError
	decodeBody(t, rr, &problem)
	return problem
}

type recordingMailer struct {
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return nil
}

// paged mirrors PaginatedResponse with a concrete element type
type paged[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}
