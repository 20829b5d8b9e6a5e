package repositories

import (
	"errors"
	"fmt"
	"time"

	"ticketing-backoffice/internal/models"

	"gorm.io/gorm"
)

type attendeeRepo struct {
	db *gorm.DB
}

func NewAttendeeRepository(db *gorm.DB) AttendeeRepository {
	return &attendeeRepo{db: db}
}

func (r *attendeeRepo) CreateAttendee(attendee *models.Attendee) error {
	if attendee == nil {
		return errors.New("attendee cannot be nil")
	}
	return r.db.Create(attendee).Error
}

func (r *attendeeRepo) GetAttendeeByID(id string) (*models.Attendee, error) {
	if id == "" {
		return nil, errors.New("attendee ID cannot be empty")
	}

	var attendee models.Attendee
	if err := r.db.Where("id = ?", id).First(&attendee).Error; err != nil {
		return nil, err
	}
	return &attendee, nil
}

func (r *attendeeRepo) GetAttendeeByOrderID(orderID string) (*models.Attendee, error) {
	var attendee models.Attendee
	if err := r.db.Where("order_id = ?", orderID).First(&attendee).Error; err != nil {
		return nil, err
	}
	return &attendee, nil
}

// FindAttendeeByTicketNumber does a case-insensitive exact match. The input
// is compared literally, never as a pattern. A missing row returns (nil, nil)
// rather than an error.
func (r *attendeeRepo) FindAttendeeByTicketNumber(ticketNumber string) (*models.Attendee, error) {
	if ticketNumber == "" {
		return nil, errors.New("ticket number cannot be empty")
	}

	var attendee models.Attendee
	err := r.db.
		Preload("Seats", func(db *gorm.DB) *gorm.DB {
			return db.Order("seat_assignments.seat_number ASC")
		}).
		Where("LOWER(ticket_number) = LOWER(?)", ticketNumber).
		First(&attendee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find attendee by ticket: %w", err)
	}

	return &attendee, nil
}

func (r *attendeeRepo) ListAttendeesByEvent(eventID string, offset, limit int) ([]models.Attendee, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var attendees []models.Attendee
	var total int64

	query := r.db.Model(&models.Attendee{}).
		Joins("JOIN orders ON attendees.order_id = orders.id").
		Where("orders.event_id = ?", eventID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count attendees: %w", err)
	}

	if err := query.
		Preload("Contact").
		Preload("Seats").
		Offset(offset).
		Limit(limit).
		Order("attendees.created_at DESC").
		Find(&attendees).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list attendees: %w", err)
	}

	return attendees, total, nil
}

func (r *attendeeRepo) UpdateAttendee(attendee *models.Attendee) error {
	return r.db.Save(attendee).Error
}

// IncrementCheckInCount bumps the counter only while it stays below
// total_tickets, so the bound check and the write land in one statement.
func (r *attendeeRepo) IncrementCheckInCount(attendeeID string) (bool, error) {
	result := r.db.Model(&models.Attendee{}).
		Where("id = ? AND check_in_count < total_tickets", attendeeID).
		Updates(map[string]interface{}{
			"check_in_count": gorm.Expr("check_in_count + 1"),
			"checked_in_at":  time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to increment check-in count: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DecrementCheckInCount lowers the counter only while it is above zero and
// clears checked_in_at when the new count reaches zero.
func (r *attendeeRepo) DecrementCheckInCount(attendeeID string) (bool, error) {
	result := r.db.Model(&models.Attendee{}).
		Where("id = ? AND check_in_count > 0", attendeeID).
		Updates(map[string]interface{}{
			"check_in_count": gorm.Expr("check_in_count - 1"),
			"checked_in_at":  gorm.Expr("CASE WHEN check_in_count - 1 = 0 THEN NULL ELSE checked_in_at END"),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to decrement check-in count: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *attendeeRepo) DeleteAttendee(id string) error {
	if id == "" {
		return errors.New("attendee ID cannot be empty")
	}

	result := r.db.Where("id = ?", id).Delete(&models.Attendee{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete attendee: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("attendee not found with ID: %s", id)
	}
	return nil
}
