package service

import (
	"context"

	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/domain"
)

func currentUser(ctx context.Context) (*auth.UserContext, error) {
	user, ok := auth.FromContext(ctx)
	if !ok || user.UserID == "" {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func requireRole(ctx context.Context, roles ...domain.Role) (*auth.UserContext, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !user.HasAnyRole(roles...) {
		return nil, ErrForbidden
	}
	return user, nil
}

func requireAdmin(ctx context.Context) (*auth.UserContext, error) {
	return requireRole(ctx, domain.RoleAdmin)
}

// ownsCourse reports whether user is the trainer attached to course
func ownsCourse(user *auth.UserContext, course *domain.Course) bool {
	return user.HasRole(domain.RoleTrainer) && course.TrainerID != nil && *course.TrainerID == user.UserID
}

func canManageCourse(user *auth.UserContext, course *domain.Course) bool {
	return user.IsAdmin() || ownsCourse(user, course)
}
