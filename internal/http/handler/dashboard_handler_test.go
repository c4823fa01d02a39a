package handler_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dashboardRequest(role string) *http.Request {
	return withURLParam(httptest.NewRequest(http.MethodGet, "/api/dashboard/"+role, nil), "role", role)
}

func TestDashboardHandler_Get(t *testing.T) {
	env := setupHandlers(t)
	course := testutil.CreateTestCourse(t, env.db, "Arc Welding Basics", testutil.WithTrainer("user_t"))
	testutil.CreateTestEnrollment(t, env.db, course, "user_s", domain.EnrollmentStatusConfirmed)

	t.Run("student sees own enrollments", func(t *testing.T) {
		rr := serve(env.dashboards.Get, asUser(dashboardRequest("student"), "user_s", domain.RoleStudent))
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var dto domain.StudentDashboardDTO
		decodeBody(t, rr, &dto)
		assert.Len(t, dto.Enrollments, 1)
		require.Len(t, dto.Courses, 1)
		assert.Equal(t, "Arc Welding Basics", dto.Courses[0].Title)
	})

	t.Run("trainer sees enrollment totals", func(t *testing.T) {
		rr := serve(env.dashboards.Get, asUser(dashboardRequest("trainer"), "user_t", domain.RoleTrainer))
		require.Equal(t, http.StatusOK, rr.Code)

		var dto domain.TrainerDashboardDTO
		decodeBody(t, rr, &dto)
		assert.Equal(t, int64(1), dto.TotalEnrollments)
	})

	t.Run("other roles are forbidden", func(t *testing.T) {
		rr := serve(env.dashboards.Get, asUser(dashboardRequest("admin"), "user_s", domain.RoleStudent))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("admins open any dashboard", func(t *testing.T) {
		rr := serve(env.dashboards.Get, asAdmin(dashboardRequest("corporate")))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		rr := serve(env.dashboards.Get, asUser(dashboardRequest("janitor"), "user_s", domain.RoleStudent))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		rr := serve(env.dashboards.Get, dashboardRequest("student"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
