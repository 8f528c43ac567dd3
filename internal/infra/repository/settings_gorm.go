package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/dealer-crm/internal/domain/settings"
	"github.com/BruksfildServices01/dealer-crm/internal/models"
)

type SettingsGormRepository struct {
	db *gorm.DB
}

var _ domain.Repository = (*SettingsGormRepository)(nil)

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

// --------------------------------------------------
// Settings
// --------------------------------------------------

// Get uses Find rather than First: the row is created lazily and a
// missing row is expected on first use.
func (r *SettingsGormRepository) Get(ctx context.Context) (*models.Settings, error) {
	var s models.Settings
	res := r.db.WithContext(ctx).
		Where("settings_id = ?", models.MainSettingsID).
		Limit(1).
		Find(&s)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

// Create inserts the record unless a concurrent reader seeded it first.
func (r *SettingsGormRepository) Create(ctx context.Context, s *models.Settings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(s).Error
}

func (r *SettingsGormRepository) Save(ctx context.Context, s *models.Settings) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// --------------------------------------------------
// Branches
// --------------------------------------------------

func (r *SettingsGormRepository) ListBranches(ctx context.Context) ([]models.Branch, error) {
	var branches []models.Branch
	if err := r.db.WithContext(ctx).
		Order("is_primary DESC").
		Order("location ASC").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

func (r *SettingsGormRepository) GetBranch(ctx context.Context, branchID string) (*models.Branch, error) {
	var b models.Branch
	err := r.db.WithContext(ctx).Where("branch_id = ?", branchID).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrBranchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *SettingsGormRepository) CreateBranch(ctx context.Context, b *models.Branch) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *SettingsGormRepository) SaveBranch(ctx context.Context, b *models.Branch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *SettingsGormRepository) DeleteBranch(ctx context.Context, branchID string) error {
	res := r.db.WithContext(ctx).Where("branch_id = ?", branchID).Delete(&models.Branch{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrBranchNotFound
	}
	return nil
}

// --------------------------------------------------
// Preferences
// --------------------------------------------------

func (r *SettingsGormRepository) GetPreference(
	ctx context.Context,
	userID string,
	page string,
) (*models.UserPreference, error) {

	var p models.UserPreference
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND page = ?", userID, page).
		Limit(1).
		Find(&p)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *SettingsGormRepository) SavePreference(ctx context.Context, p *models.UserPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "page"}},
			DoUpdates: clause.AssignmentColumns([]string{"hidden_columns", "column_order"}),
		}).
		Create(p).Error
}
