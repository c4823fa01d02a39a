package service_test

import (
	"context"
	"testing"

	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/service"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardService_ForRoleAccess(t *testing.T) {
	s := setupServices(t)

	_, err := s.dashboards.ForRole(context.Background(), domain.RoleStudent)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = s.dashboards.ForRole(asUser("user_s", domain.RoleStudent), domain.RoleTrainer)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = s.dashboards.ForRole(asUser("user_s", domain.RoleStudent), domain.Role("janitor"))
	assert.ErrorIs(t, err, service.ErrNotFound)

	data, err := s.dashboards.ForRole(asAdmin(), domain.RoleTrainer)
	require.NoError(t, err)
	assert.IsType(t, &domain.TrainerDashboardDTO{}, data)
}

func TestDashboardService_Student(t *testing.T) {
	s := setupServices(t)
	a := testutil.CreateTestCourse(t, s.db, "Arc Welding Basics")
	b := testutil.CreateTestCourse(t, s.db, "CNC Programming")
	testutil.CreateTestProfile(t, s.db, "user_s", domain.RoleStudent)
	testutil.CreateTestEnrollment(t, s.db, a, "user_s", domain.EnrollmentStatusConfirmed)
	testutil.CreateTestEnrollment(t, s.db, b, "user_s", domain.EnrollmentStatusCancelled)

	data, err := s.dashboards.ForRole(asUser("user_s", domain.RoleStudent), domain.RoleStudent)
	require.NoError(t, err)

	dashboard := data.(*domain.StudentDashboardDTO)
	require.NotNil(t, dashboard.Profile)
	assert.Len(t, dashboard.Enrollments, 2)
	require.Len(t, dashboard.Courses, 1)
	assert.Equal(t, "Arc Welding Basics", dashboard.Courses[0].Title)
}

func TestDashboardService_Trainer(t *testing.T) {
	s := setupServices(t)
	mine := testutil.CreateTestCourse(t, s.db, "PLC Fundamentals", testutil.WithTrainer("user_t"))
	testutil.CreateTestCourse(t, s.db, "Drafting", testutil.WithTrainer("user_t"), testutil.Unpublished())
	other := testutil.CreateTestCourse(t, s.db, "Someone Else", testutil.WithTrainer("user_x"))
	testutil.CreateTestEnrollment(t, s.db, mine, "user_a", domain.EnrollmentStatusPending)
	testutil.CreateTestEnrollment(t, s.db, mine, "user_b", domain.EnrollmentStatusConfirmed)
	testutil.CreateTestEnrollment(t, s.db, other, "user_a", domain.EnrollmentStatusPending)

	dashboard, err := s.dashboards.Trainer(asUser("user_t", domain.RoleTrainer))
	require.NoError(t, err)
	assert.Len(t, dashboard.Courses, 2)
	assert.Equal(t, int64(2), dashboard.TotalEnrollments)
}

func TestDashboardService_Corporate(t *testing.T) {
	s := setupServices(t)
	partner := testutil.CreateTestPartner(t, s.db, "Tata Skills")
	course := testutil.CreateTestCourse(t, s.db, "Boiler Safety", testutil.WithPartner(partner))
	testutil.CreateTestCourse(t, s.db, "Unrelated")
	testutil.CreateTestEnrollment(t, s.db, course, "user_a", domain.EnrollmentStatusPending)
	profile := testutil.CreateTestProfile(t, s.db, "user_c", domain.RoleCorporate)

	ctx := asUser("user_c", domain.RoleCorporate)

	dashboard, err := s.dashboards.Corporate(ctx)
	require.NoError(t, err)
	assert.Nil(t, dashboard.Partner)
	assert.Empty(t, dashboard.Courses)

	require.NoError(t, s.db.Model(profile).Update("partner_id", partner.ID).Error)

	dashboard, err = s.dashboards.Corporate(ctx)
	require.NoError(t, err)
	require.NotNil(t, dashboard.Partner)
	assert.Equal(t, "Tata Skills", dashboard.Partner.Name)
	require.Len(t, dashboard.Courses, 1)
	assert.Equal(t, int64(1), dashboard.TotalEnrollments)
}

func TestDashboardService_Admin(t *testing.T) {
	s := setupServices(t)
	course := testutil.CreateTestCourse(t, s.db, "Arc Welding Basics")
	testutil.CreateTestPartner(t, s.db, "Tata Skills")
	testutil.CreateTestEnrollment(t, s.db, course, "user_a", domain.EnrollmentStatusPending)
	testutil.CreateTestMessage(t, s.db, "Batch dates")
	testutil.CreateTestProfile(t, s.db, "user_a", domain.RoleStudent)
	testutil.CreateTestProfile(t, s.db, "user_t", domain.RoleTrainer)
	testutil.CreateTestProfile(t, s.db, "user_x", "")

	_, err := s.dashboards.Admin(asUser("user_t", domain.RoleTrainer))
	assert.ErrorIs(t, err, service.ErrForbidden)

	dashboard, err := s.dashboards.Admin(asAdmin())
	require.NoError(t, err)
	assert.Equal(t, int64(1), dashboard.CourseCount)
	assert.Equal(t, int64(1), dashboard.PartnerCount)
	assert.Equal(t, int64(1), dashboard.EnrollmentCount)
	assert.Equal(t, int64(1), dashboard.NewMessageCount)
	assert.Equal(t, int64(2), dashboard.UsersByRole[domain.RoleStudent])
	assert.Equal(t, int64(1), dashboard.UsersByRole[domain.RoleTrainer])
	assert.Equal(t, int64(0), dashboard.UsersByRole[domain.RoleAdmin])
	require.Len(t, dashboard.RecentEnrollments, 1)
	assert.Equal(t, "Arc Welding Basics", dashboard.RecentEnrollments[0].CourseTitle)
	assert.Len(t, dashboard.RecentMessages, 1)
}
