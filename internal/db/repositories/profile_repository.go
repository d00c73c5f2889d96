package repositories

import (
	"context"
	"fmt"

	gormModels "heritage-experiment/concordance/internal/models/gorm"

	"gorm.io/gorm"
)

// ProfileRepository persists mapping profiles via GORM.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// Save stores a profile and its entries in one transaction. An existing
// profile with the same name is replaced.
func (r *ProfileRepository) Save(ctx context.Context, profile *gormModels.MappingProfile) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing gormModels.MappingProfile
		err := tx.Where("name = ?", profile.Name).First(&existing).Error
		if err == nil {
			if err := tx.Where("profile_id = ?", existing.ID).Delete(&gormModels.MappingProfileEntry{}).Error; err != nil {
				return fmt.Errorf("failed to clear old entries: %w", err)
			}
			if err := tx.Delete(&existing).Error; err != nil {
				return fmt.Errorf("failed to replace profile: %w", err)
			}
		} else if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("failed to create profile: %w", err)
		}
		return nil
	})
}

// Get loads one profile with its entries.
func (r *ProfileRepository) Get(ctx context.Context, id string) (*gormModels.MappingProfile, error) {
	var profile gormModels.MappingProfile
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Where("id = ?", id).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// List returns all profiles, newest first, entries included.
func (r *ProfileRepository) List(ctx context.Context) ([]gormModels.MappingProfile, error) {
	var profiles []gormModels.MappingProfile
	err := r.db.WithContext(ctx).
		Preload("Entries").
		Order("created_at DESC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}
