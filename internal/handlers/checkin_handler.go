package handlers

import (
	"ticketing-backoffice/internal/middleware"
	"ticketing-backoffice/internal/services"
	"ticketing-backoffice/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AssignSeatRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone" validate:"omitempty,intlphone"`
	IsMinor       bool   `json:"is_minor"`
	GuardianName  string `json:"guardian_name" validate:"required_if=IsMinor true"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	GuardianPhone string `json:"guardian_phone" validate:"omitempty,intlphone"`
}

// CheckIn redeems one of the attendee's tickets
func (h *Handler) CheckIn(c *fiber.Ctx) error {
	attendeeID := c.Params("id")
	if _, err := uuid.Parse(attendeeID); err != nil {
		return utils.Error(c, "Invalid attendee ID", fiber.StatusBadRequest)
	}

	attendee, err := h.checkinSvc.CheckIn(c.Context(), attendeeID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, attendee, "Checked in successfully")
}

// CheckOut undoes one redemption
func (h *Handler) CheckOut(c *fiber.Ctx) error {
	attendeeID := c.Params("id")
	if _, err := uuid.Parse(attendeeID); err != nil {
		return utils.Error(c, "Invalid attendee ID", fiber.StatusBadRequest)
	}

	attendee, err := h.checkinSvc.CheckOut(c.Context(), attendeeID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, attendee, "Checked out successfully")
}

// FindByTicket looks up an attendee by ticket number. A missing ticket is a
// successful response with empty data, not an error.
func (h *Handler) FindByTicket(c *fiber.Ctx) error {
	ticketNumber := c.Params("number")

	attendee, err := h.checkinSvc.FindByTicket(c.Context(), ticketNumber)
	if err != nil {
		return workflowError(c, err)
	}
	if attendee == nil {
		return utils.Success(c, nil, "No attendee found for ticket")
	}

	return utils.Success(c, attendee, "Attendee retrieved successfully")
}

// ProvisionSeats creates the seat rows for an attendee's allotment
func (h *Handler) ProvisionSeats(c *fiber.Ctx) error {
	attendeeID := c.Params("id")
	if _, err := uuid.Parse(attendeeID); err != nil {
		return utils.Error(c, "Invalid attendee ID", fiber.StatusBadRequest)
	}

	seats, err := h.orderSvc.ProvisionSeats(c.Context(), attendeeID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, seats, "Seats provisioned successfully", fiber.StatusCreated)
}

// ListSeats returns the seats of an attendee
func (h *Handler) ListSeats(c *fiber.Ctx) error {
	attendeeID := c.Params("id")
	if _, err := uuid.Parse(attendeeID); err != nil {
		return utils.Error(c, "Invalid attendee ID", fiber.StatusBadRequest)
	}

	seats, err := h.checkinSvc.ListSeats(attendeeID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, seats, "Seats retrieved successfully")
}

// AssignSeat fills in the occupant of a seat
func (h *Handler) AssignSeat(c *fiber.Ctx) error {
	seatID := c.Params("id")
	if _, err := uuid.Parse(seatID); err != nil {
		return utils.Error(c, "Invalid seat ID", fiber.StatusBadRequest)
	}

	var req AssignSeatRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	seat, err := h.checkinSvc.AssignSeat(c.Context(), seatID, services.AssignSeatRequest{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		IsMinor:       req.IsMinor,
		GuardianName:  req.GuardianName,
		GuardianEmail: req.GuardianEmail,
		GuardianPhone: req.GuardianPhone,
	})
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, seat, "Seat assigned successfully")
}

// CheckInSeat stamps the seat-level check-in timestamp
func (h *Handler) CheckInSeat(c *fiber.Ctx) error {
	seatID := c.Params("id")
	if _, err := uuid.Parse(seatID); err != nil {
		return utils.Error(c, "Invalid seat ID", fiber.StatusBadRequest)
	}

	if err := h.checkinSvc.CheckInSeat(c.Context(), seatID); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "Seat checked in successfully")
}

// CheckOutSeat clears the seat-level check-in timestamp
func (h *Handler) CheckOutSeat(c *fiber.Ctx) error {
	seatID := c.Params("id")
	if _, err := uuid.Parse(seatID); err != nil {
		return utils.Error(c, "Invalid seat ID", fiber.StatusBadRequest)
	}

	if err := h.checkinSvc.CheckOutSeat(c.Context(), seatID); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "Seat checked out successfully")
}

// UnassignSeat clears the occupant of a seat
func (h *Handler) UnassignSeat(c *fiber.Ctx) error {
	seatID := c.Params("id")
	if _, err := uuid.Parse(seatID); err != nil {
		return utils.Error(c, "Invalid seat ID", fiber.StatusBadRequest)
	}

	if err := h.checkinSvc.UnassignSeat(c.Context(), seatID); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "Seat unassigned successfully")
}
