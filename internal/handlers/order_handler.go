package handlers

import (
	"strconv"

	"ticketing-backoffice/internal/middleware"
	"ticketing-backoffice/internal/repositories"
	"ticketing-backoffice/internal/services"
	"ticketing-backoffice/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderIntakeBody struct {
	EventID    string  `json:"event_id" validate:"required"`
	LocationID *string `json:"location_id"`
	Contact    struct {
		Name  string `json:"name" validate:"required"`
		Email string `json:"email" validate:"required,email"`
		Phone string `json:"phone"`
	} `json:"contact"`
	Quantity int             `json:"quantity" validate:"required,gt=0"`
	Total    decimal.Decimal `json:"total"`
	Status   string          `json:"status"`
}

// OrderIntakeWebhook receives orders from the external order source.
// Responds 201 with the created order, attendee, and updated event.
func (h *Handler) OrderIntakeWebhook(c *fiber.Ctx) error {
	var body OrderIntakeBody
	if err := middleware.ValidateBody(&body)(c); err != nil {
		return err
	}

	result, err := h.orderSvc.IntakeOrder(c.Context(), services.OrderIntakeRequest{
		EventID:    body.EventID,
		LocationID: body.LocationID,
		Contact: services.IntakeContact{
			Name:  body.Contact.Name,
			Email: body.Contact.Email,
			Phone: body.Contact.Phone,
		},
		Quantity: body.Quantity,
		Total:    body.Total,
		Status:   body.Status,
	})
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, result, "Order created successfully", fiber.StatusCreated)
}

// ListOrders returns a paginated list of orders
func (h *Handler) ListOrders(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	filters := &repositories.OrderFilters{
		EventID:    c.Query("event_id"),
		ContactID:  c.Query("contact_id"),
		Status:     c.Query("status"),
		LocationID: c.Query("location_id"),
	}

	orders, total, totalPages, err := h.orderSvc.ListOrders(page, pageSize, filters)
	if err != nil {
		return utils.Error(c, "Failed to fetch orders", fiber.StatusInternalServerError)
	}

	meta := &utils.Meta{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages,
	}

	return utils.SuccessWithMeta(c, orders, meta, "Orders retrieved successfully")
}

// GetOrder returns an order by ID
func (h *Handler) GetOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if _, err := uuid.Parse(orderID); err != nil {
		return utils.Error(c, "Invalid order ID", fiber.StatusBadRequest)
	}

	order, err := h.orderSvc.GetOrder(orderID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, order, "Order retrieved successfully")
}

// DeleteOrder removes an order together with its attendee and seats
func (h *Handler) DeleteOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if _, err := uuid.Parse(orderID); err != nil {
		return utils.Error(c, "Invalid order ID", fiber.StatusBadRequest)
	}

	if err := h.orderSvc.DeleteOrder(c.Context(), orderID); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "Order deleted successfully")
}

// AuditOrder stores the raw upstream order payload for inspection
func (h *Handler) AuditOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if _, err := uuid.Parse(orderID); err != nil {
		return utils.Error(c, "Invalid order ID", fiber.StatusBadRequest)
	}

	audit, err := h.orderSvc.AuditOrder(c.Context(), orderID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, audit, "Order audit stored successfully", fiber.StatusCreated)
}

// ListContacts returns a paginated list of contacts
func (h *Handler) ListContacts(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	pageSize, _ := strconv.Atoi(c.Query("page_size", "20"))

	contacts, total, totalPages, err := h.orderSvc.ListContacts(page, pageSize)
	if err != nil {
		return utils.Error(c, "Failed to fetch contacts", fiber.StatusInternalServerError)
	}

	meta := &utils.Meta{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: totalPages,
	}

	return utils.SuccessWithMeta(c, contacts, meta, "Contacts retrieved successfully")
}

// GetContact returns a contact by ID
func (h *Handler) GetContact(c *fiber.Ctx) error {
	contactID := c.Params("id")
	if _, err := uuid.Parse(contactID); err != nil {
		return utils.Error(c, "Invalid contact ID", fiber.StatusBadRequest)
	}

	contact, err := h.orderSvc.GetContact(contactID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, contact, "Contact retrieved successfully")
}
