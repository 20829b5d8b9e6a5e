package repositories

import (
	"errors"
	"fmt"

	"ticketing-backoffice/internal/models"

	"gorm.io/gorm"
)

type EventRepository interface {
	CreateEvent(event *models.Event) error
	GetEventByID(id string) (*models.Event, error)
	ListEvents(offset, limit int, filters *EventFilters) ([]models.Event, int64, error)
	UpdateEvent(event *models.Event) error
	SetExternalProductID(eventID, productID string) error
	// IncrementTicketsSold adds quantity to tickets_sold only while the result
	// stays within capacity; reports whether a row was updated.
	IncrementTicketsSold(eventID string, quantity int) (bool, error)
	SoftDeleteEvent(id string) error
}

type EventFilters struct {
	IsActive   *bool
	LocationID string
	Search     string
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

// CreateEvent creates a new event
func (r *eventRepo) CreateEvent(event *models.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	return r.db.Create(event).Error
}

// GetEventByID retrieves an event by its ID
func (r *eventRepo) GetEventByID(id string) (*models.Event, error) {
	if id == "" {
		return nil, errors.New("event ID cannot be empty")
	}

	var event models.Event
	if err := r.db.Where("id = ?", id).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("event not found with ID: %s", id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	return &event, nil
}

// ListEvents retrieves a paginated list of events with optional filters
func (r *eventRepo) ListEvents(offset, limit int, filters *EventFilters) ([]models.Event, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var events []models.Event
	var total int64

	query := r.db.Model(&models.Event{})

	// Apply filters
	if filters != nil {
		if filters.IsActive != nil {
			query = query.Where("is_active = ?", *filters.IsActive)
		}
		if filters.LocationID != "" {
			query = query.Where("location_id = ?", filters.LocationID)
		}
		if filters.Search != "" {
			searchTerm := "%" + filters.Search + "%"
			query = query.Where("title ILIKE ? OR venue ILIKE ?", searchTerm, searchTerm)
		}
	}

	// Count total records
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	// Fetch paginated results
	if err := query.
		Offset(offset).
		Limit(limit).
		Order("start_date DESC").
		Find(&events).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list events: %w", err)
	}

	return events, total, nil
}

// UpdateEvent updates an existing event
func (r *eventRepo) UpdateEvent(event *models.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	// Check if event exists
	var existingEvent models.Event
	if err := r.db.Where("id = ?", event.ID).First(&existingEvent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("event not found with ID: %s", event.ID)
		}
		return fmt.Errorf("failed to check event existence: %w", err)
	}

	return r.db.Save(event).Error
}

// SetExternalProductID persists the commerce-platform product id after a
// successful product sync.
func (r *eventRepo) SetExternalProductID(eventID, productID string) error {
	if eventID == "" {
		return errors.New("event ID cannot be empty")
	}

	result := r.db.Model(&models.Event{}).
		Where("id = ?", eventID).
		Update("external_product_id", productID)

	if result.Error != nil {
		return fmt.Errorf("failed to set external product id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("event not found with ID: %s", eventID)
	}
	return nil
}

// IncrementTicketsSold performs the capacity check and the increment in one
// conditional statement so concurrent intakes cannot oversell the event.
func (r *eventRepo) IncrementTicketsSold(eventID string, quantity int) (bool, error) {
	if eventID == "" {
		return false, errors.New("event ID cannot be empty")
	}
	if quantity <= 0 {
		return false, errors.New("quantity must be positive")
	}

	result := r.db.Model(&models.Event{}).
		Where("id = ? AND tickets_sold + ? <= capacity", eventID, quantity).
		Update("tickets_sold", gorm.Expr("tickets_sold + ?", quantity))

	if result.Error != nil {
		return false, fmt.Errorf("failed to increment tickets sold: %w", result.Error)
	}

	return result.RowsAffected > 0, nil
}

// SoftDeleteEvent soft deletes an event by setting is_active to false
func (r *eventRepo) SoftDeleteEvent(id string) error {
	if id == "" {
		return errors.New("event ID cannot be empty")
	}

	result := r.db.Model(&models.Event{}).
		Where("id = ?", id).
		Update("is_active", false)

	if result.Error != nil {
		return fmt.Errorf("failed to soft delete event: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("event not found with ID: %s", id)
	}

	return nil
}
