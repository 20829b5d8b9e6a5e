package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ticketing-backoffice/internal/config"
	"ticketing-backoffice/internal/models"
	"ticketing-backoffice/internal/notify"
	"ticketing-backoffice/internal/repositories"
	"ticketing-backoffice/pkg/logger"

	"gorm.io/gorm"
)

// CheckinService tracks per-attendee redemption counts and per-seat check-in
// timestamps. The two are independent views: the UI calls both and they are
// not reconciled against each other.
type CheckinService struct {
	repo     *repositories.Repository
	cache    Cache
	notifier ContactNotifier
	cfg      *config.Config
}

func NewCheckinService(repo *repositories.Repository, cache Cache, notifier ContactNotifier, cfg *config.Config) *CheckinService {
	return &CheckinService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		cfg:      cfg,
	}
}

func ticketCacheKey(ticketNumber string) string {
	return "attendee:ticket:" + strings.ToLower(ticketNumber)
}

// CheckIn redeems one ticket of the attendee's allotment. The bound check and
// the increment run as a single conditional update, so concurrent calls
// cannot push the count past total_tickets.
func (s *CheckinService) CheckIn(ctx context.Context, attendeeID string) (*models.Attendee, error) {
	attendee, err := s.repo.AttendeeRepo.GetAttendeeByID(attendeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("attendee not found", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to load attendee", ErrUnknown, err)
	}

	updated, err := s.repo.AttendeeRepo.IncrementCheckInCount(attendeeID)
	if err != nil {
		return nil, NewWorkflowError("failed to check in attendee", ErrUnknown, err)
	}
	if !updated {
		return nil, NewWorkflowError(
			fmt.Sprintf("all %d tickets already checked in", attendee.TotalTickets),
			ErrCapacityExceeded, nil,
		)
	}

	attendee, err = s.repo.AttendeeRepo.GetAttendeeByID(attendeeID)
	if err != nil {
		return nil, NewWorkflowError("failed to reload attendee", ErrUnknown, err)
	}

	s.invalidate(ctx, "attendee", "event")
	s.notifyCheckIn(attendee)

	return attendee, nil
}

// CheckOut undoes one redemption. checked_in_at is cleared only when the
// count returns to zero.
func (s *CheckinService) CheckOut(ctx context.Context, attendeeID string) (*models.Attendee, error) {
	attendee, err := s.repo.AttendeeRepo.GetAttendeeByID(attendeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("attendee not found", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to load attendee", ErrUnknown, err)
	}

	updated, err := s.repo.AttendeeRepo.DecrementCheckInCount(attendeeID)
	if err != nil {
		return nil, NewWorkflowError("failed to check out attendee", ErrUnknown, err)
	}
	if !updated {
		return nil, NewWorkflowError("no check-ins to undo", ErrNothingToUndo, nil)
	}

	attendee, err = s.repo.AttendeeRepo.GetAttendeeByID(attendeeID)
	if err != nil {
		return nil, NewWorkflowError("failed to reload attendee", ErrUnknown, err)
	}

	s.invalidate(ctx, "attendee", "event")
	return attendee, nil
}

// CheckInSeat stamps the seat-level timestamp. No counter, no bound.
func (s *CheckinService) CheckInSeat(ctx context.Context, seatID string) error {
	return s.setSeatCheckedIn(ctx, seatID, true)
}

// CheckOutSeat clears the seat-level timestamp.
func (s *CheckinService) CheckOutSeat(ctx context.Context, seatID string) error {
	return s.setSeatCheckedIn(ctx, seatID, false)
}

func (s *CheckinService) setSeatCheckedIn(ctx context.Context, seatID string, checkedIn bool) error {
	if _, err := s.repo.SeatRepo.GetSeatByID(seatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewWorkflowError("seat not found", ErrNotFound, err)
		}
		return NewWorkflowError("failed to load seat", ErrUnknown, err)
	}

	if err := s.repo.SeatRepo.SetSeatCheckedInAt(seatID, checkedIn); err != nil {
		return NewWorkflowError("failed to update seat check-in", ErrUnknown, err)
	}

	s.invalidate(ctx, "attendee", "seat")
	return nil
}

// FindByTicket looks up an attendee by ticket number, case-insensitively.
// A missing ticket returns (nil, nil).
func (s *CheckinService) FindByTicket(ctx context.Context, ticketNumber string) (*models.Attendee, error) {
	if ticketNumber == "" {
		return nil, NewWorkflowError("ticket number is required", ErrBadRequest, nil)
	}

	var cached models.Attendee
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, ticketCacheKey(ticketNumber), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	attendee, err := s.repo.AttendeeRepo.FindAttendeeByTicketNumber(ticketNumber)
	if err != nil {
		return nil, NewWorkflowError("ticket lookup failed", ErrUnknown, err)
	}
	if attendee == nil {
		return nil, nil
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, ticketCacheKey(ticketNumber), attendee); err != nil {
			logger.WithError(err).Warn("failed to cache ticket lookup")
		}
	}

	return attendee, nil
}

type AssignSeatRequest struct {
	Name          string
	Email         string
	Phone         string
	IsMinor       bool
	GuardianName  string
	GuardianEmail string
	GuardianPhone string
}

// AssignSeat fills in the occupant of one seat. Guardian details are required
// for minors and dropped otherwise.
func (s *CheckinService) AssignSeat(ctx context.Context, seatID string, req AssignSeatRequest) (*models.SeatAssignment, error) {
	if req.Name == "" {
		return nil, NewWorkflowError("occupant name is required", ErrBadRequest, nil)
	}
	if req.IsMinor && req.GuardianName == "" {
		return nil, NewWorkflowError("guardian name is required for minors", ErrBadRequest, nil)
	}

	seat, err := s.repo.SeatRepo.GetSeatByID(seatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("seat not found", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to load seat", ErrUnknown, err)
	}

	seat.Name = req.Name
	seat.Email = req.Email
	seat.Phone = req.Phone
	seat.IsMinor = req.IsMinor
	if req.IsMinor {
		seat.GuardianName = req.GuardianName
		seat.GuardianEmail = req.GuardianEmail
		seat.GuardianPhone = req.GuardianPhone
	} else {
		seat.GuardianName = ""
		seat.GuardianEmail = ""
		seat.GuardianPhone = ""
	}

	if err := s.repo.SeatRepo.UpdateSeat(seat); err != nil {
		return nil, NewWorkflowError("failed to assign seat", ErrUnknown, err)
	}

	s.invalidate(ctx, "attendee", "seat")
	return seat, nil
}

// UnassignSeat clears occupant fields and the seat timestamp. It does not
// touch the attendee-level counter.
func (s *CheckinService) UnassignSeat(ctx context.Context, seatID string) error {
	if _, err := s.repo.SeatRepo.GetSeatByID(seatID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewWorkflowError("seat not found", ErrNotFound, err)
		}
		return NewWorkflowError("failed to load seat", ErrUnknown, err)
	}

	if err := s.repo.SeatRepo.ClearSeatOccupant(seatID); err != nil {
		return NewWorkflowError("failed to unassign seat", ErrUnknown, err)
	}

	s.invalidate(ctx, "attendee", "seat")
	return nil
}

func (s *CheckinService) ListSeats(attendeeID string) ([]models.SeatAssignment, error) {
	seats, err := s.repo.SeatRepo.ListSeatsByAttendee(attendeeID)
	if err != nil {
		return nil, NewWorkflowError("failed to list seats", ErrUnknown, err)
	}
	return seats, nil
}

// notifyCheckIn fires the contact-confirmation call in the background.
// Failures are logged and never surfaced to the caller.
func (s *CheckinService) notifyCheckIn(attendee *models.Attendee) {
	if s.notifier == nil {
		return
	}

	contact, err := s.repo.ContactRepo.GetContactByID(attendee.ContactID.String())
	if err != nil {
		logger.WithError(err).Warn("check-in confirmation skipped: contact lookup failed")
		return
	}

	firstName := contact.Name
	lastName := ""
	if parts := strings.SplitN(contact.Name, " ", 2); len(parts) == 2 {
		firstName, lastName = parts[0], parts[1]
	}

	locationID := ""
	if attendee.LocationID != nil {
		locationID = *attendee.LocationID
	}

	payload := notify.ConfirmContactPayload{
		Email:      contact.Email,
		FirstName:  firstName,
		LastName:   lastName,
		Phone:      contact.Phone,
		EventName:  attendee.EventTitle,
		LocationID: locationID,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.ConfirmContact(ctx, payload); err != nil {
			logger.WithError(err).WithField("attendee_id", attendee.ID).
				Warn("check-in confirmation failed")
		}
	}()
}

func (s *CheckinService) invalidate(ctx context.Context, tags ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tags...); err != nil {
		logger.WithError(err).Warn("cache invalidation failed")
	}
}
