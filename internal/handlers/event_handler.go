package handlers

import (
	"strconv"
	"time"

	"ticketing-backoffice/internal/middleware"
	"ticketing-backoffice/internal/repositories"
	"ticketing-backoffice/internal/services"
	"ticketing-backoffice/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateEventRequest struct {
	Title       string          `json:"title" validate:"required"`
	Venue       string          `json:"venue"`
	Description string          `json:"description"`
	StartDate   string          `json:"start_date" validate:"required"`
	EndDate     string          `json:"end_date" validate:"required"`
	EventTime   string          `json:"event_time"`
	CoverImage  string          `json:"cover_image"`
	Capacity    int             `json:"capacity" validate:"required,gte=1"`
	TicketPrice decimal.Decimal `json:"ticket_price"`
	LocationID  *string         `json:"location_id"`
}

type UpdateEventRequest struct {
	Title       *string          `json:"title"`
	Venue       *string          `json:"venue"`
	Description *string          `json:"description"`
	StartDate   *string          `json:"start_date"`
	EndDate     *string          `json:"end_date"`
	EventTime   *string          `json:"event_time"`
	CoverImage  *string          `json:"cover_image"`
	Capacity    *int             `json:"capacity" validate:"omitempty,gte=1"`
	TicketPrice *decimal.Decimal `json:"ticket_price"`
	IsActive    *bool            `json:"is_active"`
}

type UpsertAPIKeyRequest struct {
	APIKey string `json:"api_key" validate:"required"`
}

// CreateEvent creates a new event
func (h *Handler) CreateEvent(c *fiber.Ctx) error {
	var req CreateEventRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return utils.Error(c, "Invalid start_date format", fiber.StatusBadRequest)
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return utils.Error(c, "Invalid end_date format", fiber.StatusBadRequest)
	}

	event, err := h.eventSvc.CreateEvent(c.Context(), services.CreateEventRequest{
		Title:       req.Title,
		Venue:       req.Venue,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
		EventTime:   req.EventTime,
		CoverImage:  req.CoverImage,
		Capacity:    req.Capacity,
		TicketPrice: req.TicketPrice,
		LocationID:  req.LocationID,
	})
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, event, "Event created successfully", fiber.StatusCreated)
}

// ListEvents returns a paginated list of events
func (h *Handler) ListEvents(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	filters := &repositories.EventFilters{
		LocationID: c.Query("location_id"),
		Search:     c.Query("search"),
	}
	if active := c.Query("is_active"); active != "" {
		isActive := active == "true"
		filters.IsActive = &isActive
	}

	events, total, totalPages, err := h.eventSvc.ListEvents(page, pageSize, filters)
	if err != nil {
		return utils.Error(c, "Failed to fetch events", fiber.StatusInternalServerError)
	}

	meta := &utils.Meta{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages,
	}

	return utils.SuccessWithMeta(c, events, meta, "Events retrieved successfully")
}

// GetEvent returns an event by ID
func (h *Handler) GetEvent(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	event, err := h.eventSvc.GetEvent(c.Context(), eventID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, event, "Event retrieved successfully")
}

// UpdateEvent edits an existing event
func (h *Handler) UpdateEvent(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	var req UpdateEventRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	update := services.UpdateEventRequest{
		Title:       req.Title,
		Venue:       req.Venue,
		Description: req.Description,
		EventTime:   req.EventTime,
		CoverImage:  req.CoverImage,
		Capacity:    req.Capacity,
		TicketPrice: req.TicketPrice,
		IsActive:    req.IsActive,
	}
	if req.StartDate != nil {
		startDate, err := time.Parse(time.RFC3339, *req.StartDate)
		if err != nil {
			return utils.Error(c, "Invalid start_date format", fiber.StatusBadRequest)
		}
		update.StartDate = &startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse(time.RFC3339, *req.EndDate)
		if err != nil {
			return utils.Error(c, "Invalid end_date format", fiber.StatusBadRequest)
		}
		update.EndDate = &endDate
	}

	event, err := h.eventSvc.UpdateEvent(c.Context(), eventID, update)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, event, "Event updated successfully")
}

// DeactivateEvent soft-deletes an event
func (h *Handler) DeactivateEvent(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	if err := h.eventSvc.DeactivateEvent(c.Context(), eventID); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "Event deactivated successfully")
}

// SyncProduct mirrors the event to the commerce platform
func (h *Handler) SyncProduct(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	event, err := h.eventSvc.SyncProduct(c.Context(), eventID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, event, "Product synced successfully")
}

// UpsertLocationAPIKey stores the commerce credential for a location
func (h *Handler) UpsertLocationAPIKey(c *fiber.Ctx) error {
	locationID := c.Params("locationId")
	if locationID == "" {
		return utils.Error(c, "Location ID is required", fiber.StatusBadRequest)
	}

	var req UpsertAPIKeyRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	if err := h.eventSvc.SetLocationAPIKey(locationID, req.APIKey); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "API key stored successfully")
}
