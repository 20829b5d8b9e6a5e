package handlers

import (
	"ticketing-backoffice/internal/commerce"
	"ticketing-backoffice/internal/middleware"
	"ticketing-backoffice/internal/services"
	"ticketing-backoffice/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateBundleRequest struct {
	PackageName    string          `json:"package_name" validate:"required"`
	PackagePrice   decimal.Decimal `json:"package_price"`
	BundleQuantity int             `json:"bundle_quantity" validate:"required,gte=1"`
}

type UpdateBundleRequest struct {
	PackageName  *string          `json:"package_name"`
	PackagePrice *decimal.Decimal `json:"package_price"`
}

type SyncInventoryRequest struct {
	LocationID string `json:"location_id" validate:"required"`
	Items      []struct {
		PriceID           string `json:"price_id" validate:"required"`
		AvailableQuantity int    `json:"available_quantity" validate:"gte=0"`
	} `json:"items" validate:"required,min=1,dive"`
}

// CreateBundle creates a price package for an event and mirrors it to the
// commerce platform when the event is already synced.
func (h *Handler) CreateBundle(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	var req CreateBundleRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	bundle, warning, err := h.bundleSvc.CreateBundle(c.Context(), eventID, services.CreateBundleRequest{
		PackageName:    req.PackageName,
		PackagePrice:   req.PackagePrice,
		BundleQuantity: req.BundleQuantity,
	})
	if err != nil {
		return workflowError(c, err)
	}

	if warning != "" {
		return utils.SuccessWithWarning(c, bundle, "Bundle created", warning, fiber.StatusCreated)
	}
	return utils.Success(c, bundle, "Bundle created successfully", fiber.StatusCreated)
}

// ListBundles returns the bundles of an event
func (h *Handler) ListBundles(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	bundles, err := h.bundleSvc.ListBundles(eventID)
	if err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, bundles, "Bundles retrieved successfully")
}

// UpdateBundle edits a bundle's name and price; quantity is immutable
func (h *Handler) UpdateBundle(c *fiber.Ctx) error {
	bundleID := c.Params("id")
	if _, err := uuid.Parse(bundleID); err != nil {
		return utils.Error(c, "Invalid bundle ID", fiber.StatusBadRequest)
	}

	var req UpdateBundleRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	bundle, warning, err := h.bundleSvc.UpdateBundle(c.Context(), bundleID, services.UpdateBundleRequest{
		PackageName:  req.PackageName,
		PackagePrice: req.PackagePrice,
	})
	if err != nil {
		return workflowError(c, err)
	}

	if warning != "" {
		return utils.SuccessWithWarning(c, bundle, "Bundle updated", warning)
	}
	return utils.Success(c, bundle, "Bundle updated successfully")
}

// DeleteBundle removes a bundle locally only
func (h *Handler) DeleteBundle(c *fiber.Ctx) error {
	bundleID := c.Params("id")
	if _, err := uuid.Parse(bundleID); err != nil {
		return utils.Error(c, "Invalid bundle ID", fiber.StatusBadRequest)
	}

	if err := h.bundleSvc.DeleteBundle(c.Context(), bundleID); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "Bundle deleted successfully")
}

// SyncInventory proxies an inventory payload to the commerce platform
func (h *Handler) SyncInventory(c *fiber.Ctx) error {
	var req SyncInventoryRequest
	if err := middleware.ValidateBody(&req)(c); err != nil {
		return err
	}

	items := make([]commerce.InventoryItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, commerce.InventoryItem{
			PriceID:           item.PriceID,
			AvailableQuantity: item.AvailableQuantity,
		})
	}

	if err := h.bundleSvc.SyncInventory(c.Context(), req.LocationID, items); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "Inventory synced successfully")
}

// SyncEventInventory recomputes and pushes availability for all mirrored
// bundles of an event
func (h *Handler) SyncEventInventory(c *fiber.Ctx) error {
	eventID := c.Params("id")
	if _, err := uuid.Parse(eventID); err != nil {
		return utils.Error(c, "Invalid event ID", fiber.StatusBadRequest)
	}

	if err := h.bundleSvc.SyncEventInventory(c.Context(), eventID); err != nil {
		return workflowError(c, err)
	}

	return utils.Success(c, nil, "Inventory synced successfully")
}
