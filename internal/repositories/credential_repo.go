package repositories

import (
	"errors"

	"ticketing-backoffice/internal/models"

	"gorm.io/gorm"
)

type credentialRepo struct {
	db *gorm.DB
}

func NewCredentialRepository(db *gorm.DB) CredentialRepository {
	return &credentialRepo{db: db}
}

func (r *credentialRepo) GetAPIKeyByLocation(locationID string) (*models.LocationAPIKey, error) {
	if locationID == "" {
		return nil, errors.New("location ID cannot be empty")
	}

	var key models.LocationAPIKey
	if err := r.db.Where("location_id = ?", locationID).First(&key).Error; err != nil {
		return nil, err
	}
	return &key, nil
}

func (r *credentialRepo) UpsertAPIKey(key *models.LocationAPIKey) error {
	if key == nil {
		return errors.New("key cannot be nil")
	}

	var existing models.LocationAPIKey
	err := r.db.Where("location_id = ?", key.LocationID).First(&existing).Error
	if err == nil {
		existing.APIKey = key.APIKey
		return r.db.Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(key).Error
}

func (r *credentialRepo) CreateOrderAudit(audit *models.OrderAudit) error {
	if audit == nil {
		return errors.New("audit cannot be nil")
	}
	return r.db.Create(audit).Error
}

func (r *credentialRepo) ListOrderAudits(orderID string) ([]models.OrderAudit, error) {
	var audits []models.OrderAudit
	if err := r.db.
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&audits).Error; err != nil {
		return nil, err
	}
	return audits, nil
}
