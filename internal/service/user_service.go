package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/repository"
	"go.uber.org/zap"
)

// IdentityDirectory reads users from and writes roles to the identity provider
type IdentityDirectory interface {
	Enabled() bool
	GetUser(ctx context.Context, userID string) (*auth.IdentityUser, error)
	SetRole(ctx context.Context, userID string, role domain.Role) error
}

type UserService struct {
	profileRepo *repository.UserProfileRepository
	partnerRepo *repository.PartnerRepository
	identity    IdentityDirectory
	logger      *zap.Logger
}

// NewUserService creates the profile service. identity may be nil.
func NewUserService(
	profileRepo *repository.UserProfileRepository,
	partnerRepo *repository.PartnerRepository,
	identity IdentityDirectory,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		profileRepo: profileRepo,
		partnerRepo: partnerRepo,
		identity:    identity,
		logger:      logger,
	}
}

// Sync mirrors the signed-in user's identity fields into their profile row.
// A role picked at sign-up is applied only while no role is known for the user;
// a role carried by the token always wins.
func (s *UserService) Sync(ctx context.Context, req *domain.SyncUserRequest) (*domain.SyncUserResponse, error) {
	user, err := s.personalUser(ctx)
	if err != nil {
		return nil, err
	}

	var requested domain.Role
	if strings.TrimSpace(req.Role) != "" {
		role, ok := domain.ParseRole(req.Role)
		if !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, req.Role)
		}
		if !role.SelfAssignable() {
			return nil, ErrRoleNotAssignable
		}
		requested = role
	}

	incoming := profileFromIdentity(user)
	providerRole := s.fillFromProvider(ctx, user, incoming)
	applied := false
	switch user.RoleSource {
	case auth.RoleSourceToken:
		incoming.Role = user.Role
	case auth.RoleSourceDefault:
		if providerRole != "" {
			incoming.Role = providerRole
		} else if requested != "" {
			stored, err := s.profileRepo.GetByID(ctx, user.UserID)
			if err != nil && !errors.Is(translateError(err, ErrProfileNotFound), ErrProfileNotFound) {
				return nil, fmt.Errorf("failed to get profile: %w", translateError(err, ErrProfileNotFound))
			}
			if stored == nil || !stored.Role.IsValid() {
				incoming.Role = requested
				applied = true
			}
		}
	}

	profile, err := s.profileRepo.Upsert(ctx, incoming)
	if err != nil {
		return nil, fmt.Errorf("failed to sync user: %w", translateError(err, ErrProfileNotFound))
	}

	if applied {
		s.logger.Info("sign-up role applied", zap.String("user_id", user.UserID), zap.String("role", string(requested)))
		s.pushRole(ctx, user.UserID, requested)
	}

	role := profile.Role
	if !role.IsValid() {
		role = domain.DefaultRole
	}

	return &domain.SyncUserResponse{
		Profile:     profile,
		Role:        role,
		Dashboard:   role.DashboardPath(),
		RoleApplied: applied,
	}, nil
}

// GetProfile returns the caller's profile, creating it from the session when missing
func (s *UserService) GetProfile(ctx context.Context) (*domain.UserProfile, error) {
	user, err := s.personalUser(ctx)
	if err != nil {
		return nil, err
	}
	return s.ensureProfile(ctx, user)
}

// UpdateProfile changes the caller's editable profile fields
func (s *UserService) UpdateProfile(ctx context.Context, req *domain.UpdateProfileRequest) (*domain.UserProfile, error) {
	user, err := s.personalUser(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := s.ensureProfile(ctx, user)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	firstName, lastName := profile.FirstName, profile.LastName
	if req.FirstName != nil {
		firstName = strings.TrimSpace(*req.FirstName)
		if firstName == "" {
			return nil, fmt.Errorf("%w: firstName cannot be empty", ErrInvalidInput)
		}
		updates["first_name"] = firstName
	}
	if req.LastName != nil {
		lastName = strings.TrimSpace(*req.LastName)
		updates["last_name"] = lastName
	}
	if req.FirstName != nil || req.LastName != nil {
		updates["display_name"] = strings.TrimSpace(firstName + " " + lastName)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Phone != nil {
		updates["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Bio != nil {
		updates["bio"] = strings.TrimSpace(*req.Bio)
	}

	if len(updates) == 0 {
		return profile, nil
	}

	if err := s.profileRepo.UpdateFields(ctx, user.UserID, updates); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", translateError(err, ErrProfileNotFound))
	}

	updated, err := s.profileRepo.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", translateError(err, ErrProfileNotFound))
	}
	return updated, nil
}

// GetRole returns the caller's resolved role and dashboard route
func (s *UserService) GetRole(ctx context.Context) (*domain.UserRoleDTO, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	role := user.EffectiveRole()
	source := user.RoleSource
	if source == "" {
		source = auth.RoleSourceDefault
	}

	return &domain.UserRoleDTO{
		UserID:    user.UserID,
		Role:      role,
		Dashboard: role.DashboardPath(),
		Source:    source,
	}, nil
}

// AssignRole sets any user's role, admin included (admin only)
func (s *UserService) AssignRole(ctx context.Context, userID string, role domain.Role) (*domain.UserProfile, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
	}

	if err := s.profileRepo.UpdateRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", translateError(err, ErrProfileNotFound))
	}

	s.logger.Info("role assigned",
		zap.String("user_id", userID),
		zap.String("role", string(role)),
		zap.String("assigned_by", admin.UserID),
	)
	s.pushRole(ctx, userID, role)

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", translateError(err, ErrProfileNotFound))
	}
	return profile, nil
}

// AssignPartner links a user to a partner company (admin only)
func (s *UserService) AssignPartner(ctx context.Context, userID string, partnerID *uuid.UUID) (*domain.UserProfile, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	if partnerID != nil {
		if _, err := s.partnerRepo.GetByID(ctx, *partnerID); err != nil {
			return nil, fmt.Errorf("failed to get partner: %w", translateError(err, ErrPartnerNotFound))
		}
	}

	if err := s.profileRepo.SetPartner(ctx, userID, partnerID); err != nil {
		return nil, fmt.Errorf("failed to link partner: %w", translateError(err, ErrProfileNotFound))
	}

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", translateError(err, ErrProfileNotFound))
	}
	return profile, nil
}

// personalUser returns the caller, rejecting the API-key system user which has no profile
func (s *UserService) personalUser(ctx context.Context) (*auth.UserContext, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user.IsSystem {
		return nil, fmt.Errorf("%w: the system user has no profile", ErrForbidden)
	}
	return user, nil
}

func (s *UserService) ensureProfile(ctx context.Context, user *auth.UserContext) (*domain.UserProfile, error) {
	profile, err := s.profileRepo.GetByID(ctx, user.UserID)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(translateError(err, ErrProfileNotFound), ErrProfileNotFound) {
		return nil, fmt.Errorf("failed to get profile: %w", translateError(err, ErrProfileNotFound))
	}

	incoming := profileFromIdentity(user)
	if user.RoleSource == auth.RoleSourceToken {
		incoming.Role = user.Role
	}
	profile, err = s.profileRepo.Upsert(ctx, incoming)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", translateError(err, ErrProfileNotFound))
	}
	return profile, nil
}

// fillFromProvider completes fields the session token left out from the provider's
// user record and returns the role stored in its metadata, if any.
// Provider failures are logged and the sync carries on with the token's claims.
func (s *UserService) fillFromProvider(ctx context.Context, user *auth.UserContext, profile *domain.UserProfile) domain.Role {
	if s.identity == nil || !s.identity.Enabled() {
		return ""
	}
	complete := profile.Email != "" && profile.FirstName != "" && profile.AvatarURL != ""
	if complete && user.RoleSource != auth.RoleSourceDefault {
		return ""
	}

	remote, err := s.identity.GetUser(ctx, user.UserID)
	if err != nil {
		s.logger.Warn("failed to read user from identity provider",
			zap.String("user_id", user.UserID),
			zap.Error(err),
		)
		return ""
	}

	if profile.Email == "" {
		profile.Email = remote.PrimaryEmail()
	}
	if profile.FirstName == "" && profile.LastName == "" {
		profile.FirstName = remote.FirstName
		profile.LastName = remote.LastName
	}
	if profile.DisplayName == "" {
		profile.DisplayName = strings.TrimSpace(profile.FirstName + " " + profile.LastName)
	}
	if profile.AvatarURL == "" {
		profile.AvatarURL = remote.ImageURL
	}

	role, ok := remote.Role()
	if !ok {
		return ""
	}
	return role
}

// pushRole writes the role to the identity provider so new session tokens carry it
func (s *UserService) pushRole(ctx context.Context, userID string, role domain.Role) {
	if s.identity == nil || !s.identity.Enabled() {
		return
	}
	if err := s.identity.SetRole(ctx, userID, role); err != nil {
		s.logger.Warn("failed to write role to identity provider",
			zap.String("user_id", userID),
			zap.String("role", string(role)),
			zap.Error(err),
		)
	}
}

func profileFromIdentity(user *auth.UserContext) *domain.UserProfile {
	displayName := user.DisplayName
	if displayName == "" {
		displayName = strings.TrimSpace(user.FirstName + " " + user.LastName)
	}
	return &domain.UserProfile{
		ID:          user.UserID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		DisplayName: displayName,
		AvatarURL:   user.AvatarURL,
	}
}
