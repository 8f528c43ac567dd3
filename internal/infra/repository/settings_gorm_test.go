package repository

import (
	"bytes"
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/settings"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
	"github.com/BruksfildServices01/dealer-crm/internal/testutil"
)

func TestSettingsCreateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsGormRepository(testutil.NewDB(t))

	_, err := repo.Get(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	first := domain.Defaults()
	require.NoError(t, repo.Create(ctx, &first))

	second := domain.Defaults()
	second.Version = 99
	require.NoError(t, repo.Create(ctx, &second))

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
	assert.Equal(t, []string{"SDR", "Incoming", "MYR", "Other"}, got.Sources)
}

func TestSavePreferenceUpserts(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsGormRepository(testutil.NewDB(t))

	require.NoError(t, repo.SavePreference(ctx, &models.UserPreference{
		UserID: "user_1", Page: "appointments", HiddenColumns: []string{"model"}, ColumnOrder: []string{},
	}))
	require.NoError(t, repo.SavePreference(ctx, &models.UserPreference{
		UserID: "user_1", Page: "appointments", HiddenColumns: []string{"sl_no"}, ColumnOrder: []string{"booking_id"},
	}))

	got, err := repo.GetPreference(ctx, "user_1", "appointments")
	require.NoError(t, err)
	assert.Equal(t, []string{"sl_no"}, got.HiddenColumns)
	assert.Equal(t, []string{"booking_id"}, got.ColumnOrder)
}

func TestDeleteBranchNotFound(t *testing.T) {
	repo := NewSettingsGormRepository(testutil.NewDB(t))

	err := repo.DeleteBranch(context.Background(), "branch_missing")
	assert.ErrorIs(t, err, domain.ErrBranchNotFound)
}

func TestMissingSettingsAndPreferencesLogNothing(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	db := testutil.NewDB(t).Session(&gorm.Session{
		Logger: gormlogger.New(log.New(&buf, "", 0), gormlogger.Config{LogLevel: gormlogger.Warn}),
	})
	repo := NewSettingsGormRepository(db)

	_, err := repo.Get(ctx)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.GetPreference(ctx, "user_1", "appointments")
	require.ErrorIs(t, err, domain.ErrNotFound)

	assert.Empty(t, buf.String())
}
