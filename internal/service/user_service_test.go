package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/service"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_SyncAppliesSignupRoleOnce(t *testing.T) {
	s := setupServices(t)
	ctx := asNewUser("user_new")

	resp, err := s.users.Sync(ctx, &domain.SyncUserRequest{Role: "trainer"})
	require.NoError(t, err)
	assert.True(t, resp.RoleApplied)
	assert.Equal(t, domain.RoleTrainer, resp.Role)
	assert.Equal(t, "/dashboard/trainer", resp.Dashboard)
	assert.Equal(t, "Vikram Singh", resp.Profile.DisplayName)
	require.Len(t, s.identity.writes, 1)
	assert.Equal(t, roleWrite{userID: "user_new", role: domain.RoleTrainer}, s.identity.writes[0])

	resp, err = s.users.Sync(ctx, &domain.SyncUserRequest{Role: "corporate"})
	require.NoError(t, err)
	assert.False(t, resp.RoleApplied)
	assert.Equal(t, domain.RoleTrainer, resp.Role)
	assert.Len(t, s.identity.writes, 1)
}

func TestUserService_SyncWithoutRoleKeepsDefault(t *testing.T) {
	s := setupServices(t)

	resp, err := s.users.Sync(asNewUser("user_new"), &domain.SyncUserRequest{})
	require.NoError(t, err)
	assert.False(t, resp.RoleApplied)
	assert.Equal(t, domain.RoleStudent, resp.Role)
	assert.Equal(t, domain.Role(""), resp.Profile.Role)
	assert.NotNil(t, resp.Profile.LastSyncedAt)
}

func TestUserService_SyncRejectsAdminSelfAssignment(t *testing.T) {
	s := setupServices(t)

	_, err := s.users.Sync(asNewUser("user_new"), &domain.SyncUserRequest{Role: "admin"})
	assert.ErrorIs(t, err, service.ErrRoleNotAssignable)
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = s.users.Sync(asNewUser("user_new"), &domain.SyncUserRequest{Role: "wizard"})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUserService_SyncMirrorsTokenRole(t *testing.T) {
	s := setupServices(t)
	testutil.CreateTestProfile(t, s.db, "user_c", domain.RoleStudent)

	resp, err := s.users.Sync(asUser("user_c", domain.RoleCorporate), &domain.SyncUserRequest{Role: "trainer"})
	require.NoError(t, err)
	assert.False(t, resp.RoleApplied)
	assert.Equal(t, domain.RoleCorporate, resp.Role)
	assert.Empty(t, s.identity.writes)
}

func TestUserService_SyncFillsFromProvider(t *testing.T) {
	s := setupServices(t)
	s.identity.users = map[string]*auth.IdentityUser{
		"user_sparse": {
			ID:        "user_sparse",
			FirstName: "Meera",
			LastName:  "Iyer",
			ImageURL:  "https://img.example.com/meera.png",
			EmailAddresses: []auth.IdentityEmail{
				{ID: "idn_1", EmailAddress: "old@example.com"},
				{ID: "idn_2", EmailAddress: "meera@example.com"},
			},
			PrimaryEmailAddressID: "idn_2",
			PublicMetadata:        map[string]interface{}{"role": "corporate"},
		},
	}
	ctx := auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:     "user_sparse",
		Role:       domain.DefaultRole,
		RoleSource: auth.RoleSourceDefault,
	})

	resp, err := s.users.Sync(ctx, &domain.SyncUserRequest{Role: "trainer"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.identity.reads)
	assert.Equal(t, "meera@example.com", resp.Profile.Email)
	assert.Equal(t, "Meera Iyer", resp.Profile.DisplayName)
	assert.Equal(t, "https://img.example.com/meera.png", resp.Profile.AvatarURL)
	assert.Equal(t, domain.RoleCorporate, resp.Role)
	assert.False(t, resp.RoleApplied)
	assert.Empty(t, s.identity.writes)
}

func TestUserService_SyncSurvivesProviderFailure(t *testing.T) {
	s := setupServices(t)

	resp, err := s.users.Sync(asNewUser("user_unknown"), &domain.SyncUserRequest{Role: "trainer"})
	require.NoError(t, err)
	assert.Equal(t, 1, s.identity.reads)
	assert.Equal(t, "user_unknown@example.com", resp.Profile.Email)
	assert.True(t, resp.RoleApplied)
}

func TestUserService_SyncRequiresUser(t *testing.T) {
	s := setupServices(t)

	_, err := s.users.Sync(context.Background(), &domain.SyncUserRequest{})
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	system := auth.WithUserContext(context.Background(), &auth.UserContext{UserID: auth.SystemUserID, Role: domain.RoleAdmin, IsSystem: true})
	_, err = s.users.Sync(system, &domain.SyncUserRequest{})
	assert.ErrorIs(t, err, service.ErrForbidden)
}

func TestUserService_UpdateProfile(t *testing.T) {
	s := setupServices(t)
	ctx := asUser("user_s", domain.RoleStudent)

	profile, err := s.users.UpdateProfile(ctx, &domain.UpdateProfileRequest{
		FirstName: strPtr("Meera"),
		Phone:     strPtr(" +91 90000 00000 "),
		Bio:       strPtr("Maintenance engineer"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Meera", profile.FirstName)
	assert.Equal(t, "Rao", profile.LastName)
	assert.Equal(t, "Meera Rao", profile.DisplayName)
	assert.Equal(t, "+91 90000 00000", profile.Phone)
	assert.Equal(t, "Maintenance engineer", profile.Bio)

	_, err = s.users.UpdateProfile(ctx, &domain.UpdateProfileRequest{FirstName: strPtr("  ")})
	assert.ErrorIs(t, err, service.ErrInvalidInput)
}

func TestUserService_GetRole(t *testing.T) {
	s := setupServices(t)

	dto, err := s.users.GetRole(asUser("user_t", domain.RoleTrainer))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleTrainer, dto.Role)
	assert.Equal(t, "/dashboard/trainer", dto.Dashboard)
	assert.Equal(t, auth.RoleSourceToken, dto.Source)

	dto, err = s.users.GetRole(asNewUser("user_n"))
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, dto.Role)
	assert.Equal(t, auth.RoleSourceDefault, dto.Source)

	_, err = s.users.GetRole(context.Background())
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}

func TestUserService_AssignRoleAndPartner(t *testing.T) {
	s := setupServices(t)
	testutil.CreateTestProfile(t, s.db, "user_c", domain.RoleStudent)
	partner := testutil.CreateTestPartner(t, s.db, "Tata Skills")

	_, err := s.users.AssignRole(asUser("user_c", domain.RoleStudent), "user_c", domain.RoleAdmin)
	assert.ErrorIs(t, err, service.ErrForbidden)

	profile, err := s.users.AssignRole(asAdmin(), "user_c", domain.RoleCorporate)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCorporate, profile.Role)
	assert.Len(t, s.identity.writes, 1)

	profile, err = s.users.AssignPartner(asAdmin(), "user_c", &partner.ID)
	require.NoError(t, err)
	require.NotNil(t, profile.PartnerID)
	assert.Equal(t, partner.ID, *profile.PartnerID)

	missing := uuid.New()
	_, err = s.users.AssignPartner(asAdmin(), "user_c", &missing)
	assert.ErrorIs(t, err, service.ErrPartnerNotFound)

	_, err = s.users.AssignRole(asAdmin(), "user_unknown", domain.RoleTrainer)
	assert.ErrorIs(t, err, service.ErrProfileNotFound)
}
