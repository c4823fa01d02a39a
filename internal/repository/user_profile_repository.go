package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserProfileRepository struct {
	db *gorm.DB
}

func NewUserProfileRepository(db *gorm.DB) *UserProfileRepository {
	return &UserProfileRepository{db: db}
}

func (r *UserProfileRepository) GetByID(ctx context.Context, id string) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// keepUnlessEmpty assigns excluded.<column> on conflict unless it is empty
func keepUnlessEmpty(column string) clause.Assignment {
	return clause.Assignment{
		Column: clause.Column{Name: column},
		Value:  gorm.Expr("COALESCE(NULLIF(excluded." + column + ", ''), user_profiles." + column + ")"),
	}
}

// Upsert mirrors identity fields into the profile row in a single statement, so
// concurrent first syncs for the same user both succeed. Empty incoming fields never
// overwrite stored values, and an existing role is only replaced when the incoming
// role is set.
func (r *UserProfileRepository) Upsert(ctx context.Context, incoming *domain.UserProfile) (*domain.UserProfile, error) {
	now := time.Now().UTC()
	row := *incoming
	row.LastSyncedAt = &now

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: []clause.Assignment{
				keepUnlessEmpty("email"),
				keepUnlessEmpty("first_name"),
				keepUnlessEmpty("last_name"),
				keepUnlessEmpty("display_name"),
				keepUnlessEmpty("avatar_url"),
				keepUnlessEmpty("role"),
				{Column: clause.Column{Name: "last_synced_at"}, Value: now},
				{Column: clause.Column{Name: "updated_at"}, Value: now},
			},
		}).
		Create(&row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, incoming.ID)
}

// UpdateFields applies a column→value map to a profile
func (r *UserProfileRepository) UpdateFields(ctx context.Context, id string, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&domain.UserProfile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserProfileRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"role": role})
}

func (r *UserProfileRepository) SetPartner(ctx context.Context, id string, partnerID *uuid.UUID) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"partner_id": partnerID})
}

// CountByRole returns the number of profiles per role. Profiles without a role count as students.
func (r *UserProfileRepository) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	var rows []struct {
		Role  string
		Total int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Select("role, COUNT(*) AS total").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[domain.Role]int64, len(domain.AllRoles))
	for _, role := range domain.AllRoles {
		counts[role] = 0
	}
	for _, row := range rows {
		role, ok := domain.ParseRole(row.Role)
		if !ok {
			role = domain.DefaultRole
		}
		counts[role] += row.Total
	}
	return counts, nil
}
