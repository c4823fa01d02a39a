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

func TestContactMessageRepository_ListAndStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewContactMessageRepository(db)
	ctx := context.Background()

	m1 := testutil.CreateTestMessage(t, db, "Batch dates")
	testutil.CreateTestMessage(t, db, "Group discount")

	all, total, err := repo.List(ctx, 1, 10, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	require.NoError(t, repo.UpdateStatus(ctx, m1.ID, domain.ContactStatusReplied))

	replied := domain.ContactStatusReplied
	msgs, total, err := repo.List(ctx, 1, 10, &replied)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, msgs, 1)
	assert.NotNil(t, msgs[0].RepliedAt)

	count, err := repo.CountByStatus(ctx, domain.ContactStatusNew)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, uuid.New(), domain.ContactStatusRead), gorm.ErrRecordNotFound)
}
