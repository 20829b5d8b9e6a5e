package handlers

import (
	"ticketing-backoffice/internal/config"
	"ticketing-backoffice/internal/middleware"
	"ticketing-backoffice/internal/services"
	"ticketing-backoffice/internal/utils"
	"ticketing-backoffice/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	authSvc    *services.AuthService
	eventSvc   *services.EventService
	orderSvc   *services.OrderService
	checkinSvc *services.CheckinService
	bundleSvc  *services.BundleService
	cfg        *config.Config
}

func NewHandler(
	authSvc *services.AuthService,
	eventSvc *services.EventService,
	orderSvc *services.OrderService,
	checkinSvc *services.CheckinService,
	bundleSvc *services.BundleService,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authSvc:    authSvc,
		eventSvc:   eventSvc,
		orderSvc:   orderSvc,
		checkinSvc: checkinSvc,
		bundleSvc:  bundleSvc,
		cfg:        cfg,
	}
}

func (h *Handler) RegisterRoutes(router fiber.Router) {
	// Public routes
	auth := router.Group("/auth")
	{
		auth.Post("/login", h.Login)
		auth.Post("/register", h.RegisterUser)
	}

	// Order intake webhook and sync proxies carry no auth of their own; the
	// hosting platform authenticates inbound requests.
	router.Post("/webhooks/orders", h.OrderIntakeWebhook)
	router.Post("/sync/inventory", h.SyncInventory)

	// Event reads are public for the storefront
	router.Get("/events", h.ListEvents)
	router.Get("/events/:id", h.GetEvent)
	router.Get("/events/:id/bundles", h.ListBundles)

	// Protected routes (JWT required)
	protected := router.Group("", middleware.JWTMiddleware(h.cfg))
	{
		protected.Get("/profile", h.GetProfile)

		// Event management (Admin/Organizer only)
		eventsAdmin := protected.Group("/events", middleware.OrganizerOrAdmin)
		{
			eventsAdmin.Post("/", h.CreateEvent)
			eventsAdmin.Put("/:id", h.UpdateEvent)
			eventsAdmin.Delete("/:id", h.DeactivateEvent)
			eventsAdmin.Post("/:id/sync-product", h.SyncProduct)
			eventsAdmin.Post("/:id/sync-inventory", h.SyncEventInventory)
			eventsAdmin.Post("/:id/bundles", h.CreateBundle)
		}

		// Bundle management (Admin/Organizer only)
		bundles := protected.Group("/bundles", middleware.OrganizerOrAdmin)
		{
			bundles.Put("/:id", h.UpdateBundle)
			bundles.Delete("/:id", h.DeleteBundle)
		}

		// Orders (Staff or above)
		orders := protected.Group("/orders", middleware.StaffOrAbove)
		{
			orders.Get("/", h.ListOrders)
			orders.Get("/:id", h.GetOrder)
			orders.Delete("/:id", h.DeleteOrder)
			orders.Post("/:id/audit", h.AuditOrder)
		}

		// Attendee check-in (Staff or above)
		attendees := protected.Group("/attendees", middleware.StaffOrAbove)
		{
			attendees.Get("/ticket/:number", h.FindByTicket)
			attendees.Post("/:id/check-in", h.CheckIn)
			attendees.Post("/:id/check-out", h.CheckOut)
			attendees.Post("/:id/seats", h.ProvisionSeats)
			attendees.Get("/:id/seats", h.ListSeats)
		}

		// Seat assignment (Staff or above)
		seats := protected.Group("/seats", middleware.StaffOrAbove)
		{
			seats.Put("/:id", h.AssignSeat)
			seats.Post("/:id/check-in", h.CheckInSeat)
			seats.Post("/:id/check-out", h.CheckOutSeat)
			seats.Post("/:id/unassign", h.UnassignSeat)
		}

		// Contacts (Staff or above)
		contacts := protected.Group("/contacts", middleware.StaffOrAbove)
		{
			contacts.Get("/", h.ListContacts)
			contacts.Get("/:id", h.GetContact)
		}

		// Admin only
		admin := protected.Group("/admin", middleware.AdminOnly)
		{
			admin.Post("/users", h.CreateUser)
			admin.Put("/locations/:locationId/api-key", h.UpsertLocationAPIKey)
		}
	}
}

// ErrorHandler handles global errors
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	if code >= 500 {
		logger.WithError(err).Error("unhandled request error")
	}

	return utils.Error(c, message, code)
}

// workflowStatus maps workflow error codes to HTTP statuses.
func workflowStatus(err error) int {
	switch services.GetWorkflowErrorCode(err) {
	case services.ErrBadRequest, services.ErrInsufficientCapacity,
		services.ErrCapacityExceeded, services.ErrNothingToUndo,
		services.ErrNoAPIKey:
		return fiber.StatusBadRequest
	case services.ErrNotFound:
		return fiber.StatusNotFound
	case services.ErrUpstream:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

func workflowError(c *fiber.Ctx, err error) error {
	if werr, ok := err.(*services.WorkflowError); ok {
		return utils.Error(c, werr.Message, workflowStatus(err))
	}
	return utils.Error(c, err.Error(), fiber.StatusInternalServerError)
}
