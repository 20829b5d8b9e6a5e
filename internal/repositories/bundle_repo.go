package repositories

import (
	"errors"
	"fmt"

	"ticketing-backoffice/internal/models"

	"gorm.io/gorm"
)

type bundleRepo struct {
	db *gorm.DB
}

func NewBundleRepository(db *gorm.DB) BundleRepository {
	return &bundleRepo{db: db}
}

func (r *bundleRepo) CreateBundle(bundle *models.BundleOption) error {
	if bundle == nil {
		return errors.New("bundle cannot be nil")
	}
	return r.db.Create(bundle).Error
}

func (r *bundleRepo) GetBundleByID(id string) (*models.BundleOption, error) {
	if id == "" {
		return nil, errors.New("bundle ID cannot be empty")
	}

	var bundle models.BundleOption
	if err := r.db.Where("id = ?", id).First(&bundle).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("bundle not found with ID: %s", id)
		}
		return nil, fmt.Errorf("failed to get bundle: %w", err)
	}
	return &bundle, nil
}

func (r *bundleRepo) ListBundlesByEvent(eventID string) ([]models.BundleOption, error) {
	if eventID == "" {
		return nil, errors.New("event ID cannot be empty")
	}

	var bundles []models.BundleOption
	if err := r.db.
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&bundles).Error; err != nil {
		return nil, fmt.Errorf("failed to list bundles: %w", err)
	}
	return bundles, nil
}

func (r *bundleRepo) UpdateBundle(bundle *models.BundleOption) error {
	if bundle == nil {
		return errors.New("bundle cannot be nil")
	}
	return r.db.Save(bundle).Error
}

func (r *bundleRepo) DeleteBundle(id string) error {
	if id == "" {
		return errors.New("bundle ID cannot be empty")
	}

	result := r.db.Where("id = ?", id).Delete(&models.BundleOption{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete bundle: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("bundle not found with ID: %s", id)
	}
	return nil
}
