package repositories

import (
	"ticketing-backoffice/internal/models"

	"gorm.io/gorm"
)

type contactRepo struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) CreateContact(contact *models.Contact) error {
	return r.db.Create(contact).Error
}

func (r *contactRepo) GetContactByID(id string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.Where("id = ?", id).First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) GetContactByEmail(email string) (*models.Contact, error) {
	var contact models.Contact
	if err := r.db.Where("email = ?", email).First(&contact).Error; err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) ListContacts(offset, limit int) ([]models.Contact, int64, error) {
	var contacts []models.Contact
	var total int64

	if err := r.db.Model(&models.Contact{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := r.db.
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&contacts).Error; err != nil {
		return nil, 0, err
	}

	return contacts, total, nil
}

func (r *contactRepo) UpdateContact(contact *models.Contact) error {
	return r.db.Save(contact).Error
}
