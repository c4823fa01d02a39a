package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/cache"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/mailer"
	"github.com/induskill/marketplace-api/internal/repository"
	"github.com/induskill/marketplace-api/internal/service"
	"github.com/induskill/marketplace-api/internal/storage"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const maxImageBytes = 1 << 20

type services struct {
	db          *gorm.DB
	courses     *service.CourseService
	partners    *service.PartnerService
	enrollments *service.EnrollmentService
	contact     *service.ContactService
	users       *service.UserService
	dashboards  *service.DashboardService
	mail        *recordingMailer
	identity    *recordingIdentity
	cache       *countingCache
}

func setupServices(t *testing.T) *services {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	store, err := storage.NewLocalStorage(t.TempDir(), "/media")
	require.NoError(t, err)

	courseRepo := repository.NewCourseRepository(db)
	partnerRepo := repository.NewPartnerRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	messageRepo := repository.NewContactMessageRepository(db)
	profileRepo := repository.NewUserProfileRepository(db)

	c := &countingCache{}
	invalidator := cache.NewCatalogInvalidator(c)
	mail := &recordingMailer{}
	identity := &recordingIdentity{enabled: true}

	return &services{
		db:          db,
		courses:     service.NewCourseService(courseRepo, partnerRepo, store, invalidator, maxImageBytes, logger),
		partners:    service.NewPartnerService(partnerRepo, invalidator, logger),
		enrollments: service.NewEnrollmentService(enrollmentRepo, courseRepo, invalidator, logger),
		contact:     service.NewContactService(messageRepo, mail, "InduSkill", logger),
		users:       service.NewUserService(profileRepo, partnerRepo, identity, logger),
		dashboards:  service.NewDashboardService(courseRepo, partnerRepo, enrollmentRepo, messageRepo, profileRepo, logger),
		mail:        mail,
		identity:    identity,
		cache:       c,
	}
}

// asUser returns a context for a signed-in user whose role came from the token
func asUser(userID string, role domain.Role) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      userID,
		Email:       userID + "@example.com",
		FirstName:   "Asha",
		LastName:    "Rao",
		DisplayName: "Asha Rao",
		Role:        role,
		RoleSource:  auth.RoleSourceToken,
	})
}

// asNewUser returns a context for a user with no role anywhere yet
func asNewUser(userID string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:     userID,
		Email:      userID + "@example.com",
		FirstName:  "Vikram",
		LastName:   "Singh",
		Role:       domain.DefaultRole,
		RoleSource: auth.RoleSourceDefault,
	})
}

func asAdmin() context.Context {
	return asUser("user_admin", domain.RoleAdmin)
}

type countingCache struct {
	cache.Noop
	mu            sync.Mutex
	invalidations int
}

func (c *countingCache) DeletePrefix(_ context.Context, _ string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	return 0, nil
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidations
}

type recordingMailer struct {
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type roleWrite struct {
	userID string
	role   domain.Role
}

type recordingIdentity struct {
	enabled bool
	users   map[string]*auth.IdentityUser
	reads   int
	writes  []roleWrite
}

func (r *recordingIdentity) Enabled() bool { return r.enabled }

func (r *recordingIdentity) GetUser(_ context.Context, userID string) (*auth.IdentityUser, error) {
	r.reads++
	user, ok := r.users[userID]
	if !ok {
		return nil, errors.New("identity API returned status 404")
	}
	return user, nil
}

func (r *recordingIdentity) SetRole(_ context.Context, userID string, role domain.Role) error {
	r.writes = append(r.writes, roleWrite{userID: userID, role: role})
	return nil
}

func boolPtr(b bool) *bool { return &b }

func strPtr(s string) *string { return &s }

func zapNop() *zap.Logger { return zap.NewNop() }
