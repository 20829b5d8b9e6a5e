package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"ticketing-backoffice/internal/config"
	"ticketing-backoffice/internal/models"
	"ticketing-backoffice/internal/repositories"
	"ticketing-backoffice/internal/utils"
	"ticketing-backoffice/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService struct {
	repo     *repositories.Repository
	cache    Cache
	commerce CommerceAPI
	cfg      *config.Config

	// runTx executes fn against a transaction-bound repository aggregate.
	runTx func(fn func(r *repositories.Repository) error) error
}

func NewOrderService(repo *repositories.Repository, cache Cache, commerceAPI CommerceAPI, cfg *config.Config) *OrderService {
	s := &OrderService{
		repo:     repo,
		cache:    cache,
		commerce: commerceAPI,
		cfg:      cfg,
	}
	s.runTx = func(fn func(r *repositories.Repository) error) error {
		return repo.Transaction(func(tx *gorm.DB) error {
			return fn(repositories.NewRepository(tx))
		})
	}
	return s
}

type IntakeContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type OrderIntakeRequest struct {
	EventID    string          `json:"event_id"`
	LocationID *string         `json:"location_id"`
	Contact    IntakeContact   `json:"contact"`
	Quantity   int             `json:"quantity"`
	Total      decimal.Decimal `json:"total"`
	Status     string          `json:"status"`
}

type OrderIntakeResult struct {
	Order    *models.Order    `json:"order"`
	Attendee *models.Attendee `json:"attendee"`
	Event    *models.Event    `json:"event"`
}

// IntakeOrder provisions an order end to end: contact upsert, order row,
// attendee row with ticket number and QR code, and the event's sold-ticket
// counter. All steps run inside one transaction so a failure cannot leave an
// order without its attendee or a stale counter.
func (s *OrderService) IntakeOrder(ctx context.Context, req OrderIntakeRequest) (*OrderIntakeResult, error) {
	if req.EventID == "" {
		return nil, NewWorkflowError("event_id is required", ErrBadRequest, nil)
	}
	if req.Contact.Name == "" {
		return nil, NewWorkflowError("contact.name is required", ErrBadRequest, nil)
	}
	if req.Contact.Email == "" {
		return nil, NewWorkflowError("contact.email is required", ErrBadRequest, nil)
	}
	if req.Quantity <= 0 {
		return nil, NewWorkflowError("quantity must be positive", ErrBadRequest, nil)
	}
	if req.Total.IsNegative() {
		return nil, NewWorkflowError("total cannot be negative", ErrBadRequest, nil)
	}

	status := req.Status
	if status == "" {
		status = models.OrderStatusPending
	}
	switch status {
	case models.OrderStatusPending, models.OrderStatusCompleted,
		models.OrderStatusCancelled, models.OrderStatusRefunded:
	default:
		return nil, NewWorkflowError("invalid order status: "+status, ErrBadRequest, nil)
	}

	var result OrderIntakeResult
	var qrPath string

	err := s.runTx(func(r *repositories.Repository) error {
		event, err := r.EventRepo.GetEventByID(req.EventID)
		if err != nil {
			return NewWorkflowError("event not found", ErrNotFound, err)
		}

		available := event.Capacity - event.TicketsSold
		if req.Quantity > available {
			return NewWorkflowError(
				fmt.Sprintf("insufficient capacity: requested %d, available %d", req.Quantity, available),
				ErrInsufficientCapacity, nil,
			)
		}

		contact, err := s.upsertContact(r, req.Contact)
		if err != nil {
			return err
		}

		locationID := req.LocationID
		if locationID == nil {
			locationID = event.LocationID
		}

		order := &models.Order{
			ID:         uuid.New(),
			EventID:    event.ID,
			ContactID:  contact.ID,
			Quantity:   req.Quantity,
			Total:      req.Total,
			Status:     status,
			LocationID: locationID,
		}
		if err := r.OrderRepo.CreateOrder(order); err != nil {
			return NewWorkflowError("failed to create order", ErrUnknown, err)
		}

		ticketNumber := utils.TicketNumberFromOrderID(order.ID)
		qrFile, err := utils.GenerateTicketQRCode(ticketNumber, s.cfg.QRDir)
		if err != nil {
			return NewWorkflowError("failed to generate ticket QR code", ErrUnknown, err)
		}
		qrPath = filepath.Join(s.cfg.QRDir, qrFile)

		attendee := &models.Attendee{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ContactID:    contact.ID,
			TicketNumber: ticketNumber,
			QRCodeURL:    fmt.Sprintf("%s/qrcodes/%s", s.cfg.PublicBaseURL, qrFile),
			EventTitle:   event.Title,
			TotalTickets: req.Quantity,
			CheckInCount: 0,
			LocationID:   locationID,
		}
		if err := r.AttendeeRepo.CreateAttendee(attendee); err != nil {
			return NewWorkflowError("failed to create attendee", ErrUnknown, err)
		}

		// The conditional increment re-checks capacity at write time; a
		// concurrent intake that got here first makes this a no-op and the
		// whole transaction rolls back.
		updated, err := r.EventRepo.IncrementTicketsSold(req.EventID, req.Quantity)
		if err != nil {
			return NewWorkflowError("failed to update tickets sold", ErrUnknown, err)
		}
		if !updated {
			return NewWorkflowError(
				fmt.Sprintf("insufficient capacity: requested %d, available %d", req.Quantity, available),
				ErrInsufficientCapacity, nil,
			)
		}

		event, err = r.EventRepo.GetEventByID(req.EventID)
		if err != nil {
			return NewWorkflowError("failed to reload event", ErrUnknown, err)
		}

		result = OrderIntakeResult{
			Order:    order,
			Attendee: attendee,
			Event:    event,
		}
		return nil
	})
	if err != nil {
		// The QR file lives outside the transaction; drop it when the
		// surrounding transaction rolled back.
		if qrPath != "" {
			if rmErr := os.Remove(qrPath); rmErr != nil && !os.IsNotExist(rmErr) {
				logger.WithError(rmErr).Warn("failed to remove ticket QR code after rollback")
			}
		}
		return nil, err
	}

	s.invalidate(ctx, "event", "order", "attendee", "contact")
	return &result, nil
}

func (s *OrderService) upsertContact(r *repositories.Repository, in IntakeContact) (*models.Contact, error) {
	contact, err := r.ContactRepo.GetContactByEmail(in.Email)
	if err == nil {
		return contact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewWorkflowError("contact lookup failed", ErrUnknown, err)
	}

	contact = &models.Contact{
		ID:    uuid.New(),
		Name:  in.Name,
		Email: in.Email,
		Phone: in.Phone,
	}
	if err := r.ContactRepo.CreateContact(contact); err != nil {
		return nil, NewWorkflowError("failed to create contact", ErrUnknown, err)
	}
	return contact, nil
}

// ProvisionSeats creates one seat row per purchased ticket. Seat rows are not
// created at intake time; staff trigger this from the dashboard before
// assigning occupants.
func (s *OrderService) ProvisionSeats(ctx context.Context, attendeeID string) ([]models.SeatAssignment, error) {
	attendee, err := s.repo.AttendeeRepo.GetAttendeeByID(attendeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewWorkflowError("attendee not found", ErrNotFound, err)
		}
		return nil, NewWorkflowError("failed to load attendee", ErrUnknown, err)
	}

	existing, err := s.repo.SeatRepo.ListSeatsByAttendee(attendeeID)
	if err != nil {
		return nil, NewWorkflowError("failed to list seats", ErrUnknown, err)
	}
	if len(existing) > 0 {
		return nil, NewWorkflowError("seats already provisioned for attendee", ErrBadRequest, nil)
	}

	seats := make([]models.SeatAssignment, 0, attendee.TotalTickets)
	for i := 1; i <= attendee.TotalTickets; i++ {
		seats = append(seats, models.SeatAssignment{
			ID:         uuid.New(),
			AttendeeID: attendee.ID,
			SeatNumber: i,
		})
	}

	if err := s.repo.SeatRepo.CreateSeats(seats); err != nil {
		return nil, NewWorkflowError("failed to provision seats", ErrUnknown, err)
	}

	s.invalidate(ctx, "attendee", "seat")
	return seats, nil
}

func (s *OrderService) GetOrder(orderID string) (*models.Order, error) {
	order, err := s.repo.OrderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, NewWorkflowError("order not found", ErrNotFound, err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(page, pageSize int, filters *repositories.OrderFilters) ([]models.Order, int64, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	orders, total, err := s.repo.OrderRepo.ListOrders(offset, pageSize, filters)
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	return orders, total, totalPages, nil
}

// DeleteOrder removes an order and cascades explicitly to its attendee and
// seat rows. The cascade is separate calls by design, wrapped in one
// transaction so a partial delete cannot survive.
func (s *OrderService) DeleteOrder(ctx context.Context, orderID string) error {
	err := s.runTx(func(r *repositories.Repository) error {
		if _, err := r.OrderRepo.GetOrderByID(orderID); err != nil {
			return NewWorkflowError("order not found", ErrNotFound, err)
		}

		attendee, err := r.AttendeeRepo.GetAttendeeByOrderID(orderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return NewWorkflowError("failed to load attendee", ErrUnknown, err)
		}

		if attendee != nil {
			if err := r.SeatRepo.DeleteSeatsByAttendee(attendee.ID.String()); err != nil {
				return NewWorkflowError("failed to delete seats", ErrUnknown, err)
			}
			if err := r.AttendeeRepo.DeleteAttendee(attendee.ID.String()); err != nil {
				return NewWorkflowError("failed to delete attendee", ErrUnknown, err)
			}
		}

		if err := r.OrderRepo.DeleteOrder(orderID); err != nil {
			return NewWorkflowError("failed to delete order", ErrUnknown, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, "order", "attendee", "seat")
	return nil
}

// AuditOrder fetches the raw upstream order payload and stores it verbatim
// in the audit table.
func (s *OrderService) AuditOrder(ctx context.Context, orderID string) (*models.OrderAudit, error) {
	order, err := s.repo.OrderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, NewWorkflowError("order not found", ErrNotFound, err)
	}
	if order.LocationID == nil || *order.LocationID == "" {
		return nil, NewWorkflowError("order has no location", ErrBadRequest, nil)
	}

	apiKey, err := resolveAPIKey(s.repo.CredentialRepo, *order.LocationID)
	if err != nil {
		return nil, err
	}

	raw, err := s.commerce.FetchOrder(ctx, apiKey, orderID)
	if err != nil {
		return nil, upstreamError(err)
	}

	audit := &models.OrderAudit{
		ID:          uuid.New(),
		OrderID:     order.ID,
		LocationID:  *order.LocationID,
		RawResponse: string(raw),
	}
	if err := s.repo.CredentialRepo.CreateOrderAudit(audit); err != nil {
		return nil, NewWorkflowError("failed to store order audit", ErrUnknown, err)
	}

	return audit, nil
}

func (s *OrderService) GetContact(contactID string) (*models.Contact, error) {
	contact, err := s.repo.ContactRepo.GetContactByID(contactID)
	if err != nil {
		return nil, NewWorkflowError("contact not found", ErrNotFound, err)
	}
	return contact, nil
}

func (s *OrderService) ListContacts(page, pageSize int) ([]models.Contact, int64, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	contacts, total, err := s.repo.ContactRepo.ListContacts(offset, pageSize)
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	return contacts, total, totalPages, nil
}

func (s *OrderService) invalidate(ctx context.Context, tags ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tags...); err != nil {
		logger.WithError(err).Warn("cache invalidation failed")
	}
}
