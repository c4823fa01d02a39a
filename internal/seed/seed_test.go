package seed_test

import (
	"context"
	"testing"

	"github.com/induskill/marketplace-api/internal/domain"
	"github.com/induskill/marketplace-api/internal/seed"
	"github.com/induskill/marketplace-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRun_IsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	first, err := seed.Run(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 4, first.Partners)
	assert.Equal(t, 6, first.Courses)

	second, err := seed.Run(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Zero(t, second.Partners)
	assert.Zero(t, second.Courses)

	var courseCount int64
	require.NoError(t, db.Model(&domain.Course{}).Count(&courseCount).Error)
	assert.Equal(t, int64(6), courseCount)
}

func TestRun_LinksCoursesToPartners(t *testing.T) {
	db := testutil.SetupTestDB(t)
	existing := testutil.CreateTestPartner(t, db, "Siemens India")

	_, err := seed.Run(context.Background(), db, zap.NewNop())
	require.NoError(t, err)

	var course domain.Course
	require.NoError(t, db.Where("title = ?", "PLC Programming Fundamentals").First(&course).Error)
	require.NotNil(t, course.PartnerID)
	assert.Equal(t, existing.ID, *course.PartnerID)
	assert.Equal(t, "Siemens India", course.CompanyName)
	assert.True(t, course.IsPublished)
}
