package repositories

import (
	"errors"
	"fmt"
	"time"

	"ticketing-backoffice/internal/models"

	"gorm.io/gorm"
)

type seatRepo struct {
	db *gorm.DB
}

func NewSeatRepository(db *gorm.DB) SeatRepository {
	return &seatRepo{db: db}
}

func (r *seatRepo) CreateSeats(seats []models.SeatAssignment) error {
	if len(seats) == 0 {
		return errors.New("no seats to create")
	}
	return r.db.Create(&seats).Error
}

func (r *seatRepo) GetSeatByID(id string) (*models.SeatAssignment, error) {
	if id == "" {
		return nil, errors.New("seat ID cannot be empty")
	}

	var seat models.SeatAssignment
	if err := r.db.Where("id = ?", id).First(&seat).Error; err != nil {
		return nil, err
	}
	return &seat, nil
}

func (r *seatRepo) ListSeatsByAttendee(attendeeID string) ([]models.SeatAssignment, error) {
	var seats []models.SeatAssignment
	if err := r.db.
		Where("attendee_id = ?", attendeeID).
		Order("seat_number ASC").
		Find(&seats).Error; err != nil {
		return nil, fmt.Errorf("failed to list seats: %w", err)
	}
	return seats, nil
}

func (r *seatRepo) UpdateSeat(seat *models.SeatAssignment) error {
	return r.db.Save(seat).Error
}

// SetSeatCheckedInAt stamps or clears the seat-level check-in timestamp. The
// seat timestamp is independent of the attendee counter.
func (r *seatRepo) SetSeatCheckedInAt(seatID string, checkedIn bool) error {
	var value interface{}
	if checkedIn {
		value = time.Now()
	}

	result := r.db.Model(&models.SeatAssignment{}).
		Where("id = ?", seatID).
		Update("checked_in_at", value)

	if result.Error != nil {
		return fmt.Errorf("failed to update seat check-in: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("seat not found with ID: %s", seatID)
	}
	return nil
}

// ClearSeatOccupant wipes occupant and guardian fields along with the seat's
// check-in timestamp.
func (r *seatRepo) ClearSeatOccupant(seatID string) error {
	result := r.db.Model(&models.SeatAssignment{}).
		Where("id = ?", seatID).
		Updates(map[string]interface{}{
			"name":           "",
			"email":          "",
			"phone":          "",
			"is_minor":       false,
			"guardian_name":  "",
			"guardian_email": "",
			"guardian_phone": "",
			"checked_in_at":  nil,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to clear seat occupant: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("seat not found with ID: %s", seatID)
	}
	return nil
}

func (r *seatRepo) DeleteSeatsByAttendee(attendeeID string) error {
	if attendeeID == "" {
		return errors.New("attendee ID cannot be empty")
	}
	return r.db.Where("attendee_id = ?", attendeeID).Delete(&models.SeatAssignment{}).Error
}
