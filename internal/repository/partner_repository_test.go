package repository_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/repository"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPartnerRepository_ListFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPartnerRepository(db)
	ctx := context.Background()

	testutil.CreateTestPartner(t, db, "Tata Skills")
	testutil.CreateTestPartner(t, db, "Kirloskar Academy")
	auto := &domain.Partner{Name: "Chennai Auto Works", Industry: "Automotive", Location: "Chennai"}
	require.NoError(t, repo.Create(ctx, auto))

	partners, total, err := repo.List(ctx, 1, 10, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, "Chennai Auto Works", partners[0].Name)

	_, total, err = repo.List(ctx, 1, 10, "", "AUTOMOTIVE")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	partners, total, err = repo.List(ctx, 1, 10, "kirlo", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Kirloskar Academy", partners[0].Name)

	partners, total, err = repo.List(ctx, 2, 2, "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, partners, 1)
}

func TestPartnerRepository_Industries(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPartnerRepository(db)
	ctx := context.Background()

	testutil.CreateTestPartner(t, db, "Tata Skills")
	testutil.CreateTestPartner(t, db, "Kirloskar Academy")
	require.NoError(t, repo.Create(ctx, &domain.Partner{Name: "Chennai Auto Works", Industry: "Automotive"}))
	require.NoError(t, repo.Create(ctx, &domain.Partner{Name: "Unsorted Ltd"}))

	industries, err := repo.Industries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Automotive", "Manufacturing"}, industries)
}

func TestPartnerRepository_DeleteDetachesCourses(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPartnerRepository(db)
	ctx := context.Background()

	partner := testutil.CreateTestPartner(t, db, "Tata Skills")
	course := testutil.CreateTestCourse(t, db, "Boiler Safety", testutil.WithPartner(partner))

	require.NoError(t, repo.Delete(ctx, partner.ID))

	var reloaded domain.Course
	require.NoError(t, db.First(&reloaded, "id = ?", course.ID).Error)
	assert.Nil(t, reloaded.PartnerID)

	_, err := repo.GetByID(ctx, partner.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestPartnerRepository_UpdateAndCount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewPartnerRepository(db)
	ctx := context.Background()

	partner := testutil.CreateTestPartner(t, db, "Tata Skills")
	partner.Location = "Jamshedpur"
	partner.TrainingPrograms = []string{"Metallurgy"}
	require.NoError(t, repo.Update(ctx, partner))

	found, err := repo.GetByID(ctx, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jamshedpur", found.Location)
	assert.Equal(t, []string{"Metallurgy"}, found.TrainingPrograms)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
