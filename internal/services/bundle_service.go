package services

import (
	"context"

	"ticketing-backoffice/internal/commerce"
	"ticketing-backoffice/internal/config"
	"ticketing-backoffice/internal/models"
	"ticketing-backoffice/internal/repositories"
	"ticketing-backoffice/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BundleService manages price packages and mirrors them to the commerce
// platform. Local writes are authoritative; a failed sync downgrades to a
// warning and is never rolled back.
type BundleService struct {
	repo     *repositories.Repository
	cache    Cache
	commerce CommerceAPI
	cfg      *config.Config
}

func NewBundleService(repo *repositories.Repository, cache Cache, commerceAPI CommerceAPI, cfg *config.Config) *BundleService {
	return &BundleService{
		repo:     repo,
		cache:    cache,
		commerce: commerceAPI,
		cfg:      cfg,
	}
}

// AvailableBundleQuantity is how many whole bundles still fit in the event's
// remaining capacity.
func AvailableBundleQuantity(capacity, ticketsSold, bundleQuantity int) int {
	if bundleQuantity <= 0 {
		return 0
	}
	remaining := capacity - ticketsSold
	if remaining <= 0 {
		return 0
	}
	return remaining / bundleQuantity
}

type CreateBundleRequest struct {
	PackageName    string
	PackagePrice   decimal.Decimal
	BundleQuantity int
}

type UpdateBundleRequest struct {
	PackageName  *string
	PackagePrice *decimal.Decimal
}

// CreateBundle persists the bundle, then pushes a price-create call when the
// event is already mirrored to the commerce platform. The returned warning is
// non-empty when the local write succeeded but the sync did not.
func (s *BundleService) CreateBundle(ctx context.Context, eventID string, req CreateBundleRequest) (*models.BundleOption, string, error) {
	if req.PackageName == "" {
		return nil, "", NewWorkflowError("package name is required", ErrBadRequest, nil)
	}
	if req.PackagePrice.IsNegative() {
		return nil, "", NewWorkflowError("package price cannot be negative", ErrBadRequest, nil)
	}
	if req.BundleQuantity < 1 {
		return nil, "", NewWorkflowError("bundle quantity must be at least 1", ErrBadRequest, nil)
	}

	event, err := s.repo.EventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, "", NewWorkflowError("event not found", ErrNotFound, err)
	}

	bundle := &models.BundleOption{
		ID:             uuid.New(),
		EventID:        event.ID,
		PackageName:    req.PackageName,
		PackagePrice:   req.PackagePrice,
		BundleQuantity: req.BundleQuantity,
	}
	if err := s.repo.BundleRepo.CreateBundle(bundle); err != nil {
		return nil, "", NewWorkflowError("failed to create bundle", ErrUnknown, err)
	}
	s.invalidate(ctx, "bundle")

	if event.ExternalProductID == nil || event.LocationID == nil || *event.LocationID == "" {
		return bundle, "", nil
	}

	warning := s.syncCreatedPrice(ctx, event, bundle)
	return bundle, warning, nil
}

func (s *BundleService) syncCreatedPrice(ctx context.Context, event *models.Event, bundle *models.BundleOption) string {
	apiKey, err := resolveAPIKey(s.repo.CredentialRepo, *event.LocationID)
	if err != nil {
		logger.WithError(err).Warn("bundle price sync skipped")
		return "bundle saved, but price sync failed: " + err.Error()
	}

	price, err := s.commerce.CreatePrice(ctx, apiKey, *event.ExternalProductID, commerce.PriceRequest{
		Name:       bundle.PackageName,
		Currency:   "USD",
		Amount:     bundle.PackagePrice,
		LocationID: *event.LocationID,
	})
	if err != nil {
		logger.WithError(err).WithField("bundle_id", bundle.ID).Warn("price create sync failed")
		return "bundle saved, but price sync failed: " + err.Error()
	}

	bundle.ExternalPriceID = &price.ID
	if err := s.repo.BundleRepo.UpdateBundle(bundle); err != nil {
		logger.WithError(err).Warn("failed to persist external price id")
		return "bundle saved, but external price id could not be stored"
	}
	s.invalidate(ctx, "bundle")
	return ""
}

// UpdateBundle edits name and price only; bundle quantity is immutable after
// creation. When the bundle is mirrored, the available quantity is recomputed
// from remaining event capacity and pushed upstream.
func (s *BundleService) UpdateBundle(ctx context.Context, bundleID string, req UpdateBundleRequest) (*models.BundleOption, string, error) {
	bundle, err := s.repo.BundleRepo.GetBundleByID(bundleID)
	if err != nil {
		return nil, "", NewWorkflowError("bundle not found", ErrNotFound, err)
	}

	if req.PackageName != nil {
		if *req.PackageName == "" {
			return nil, "", NewWorkflowError("package name cannot be empty", ErrBadRequest, nil)
		}
		bundle.PackageName = *req.PackageName
	}
	if req.PackagePrice != nil {
		if req.PackagePrice.IsNegative() {
			return nil, "", NewWorkflowError("package price cannot be negative", ErrBadRequest, nil)
		}
		bundle.PackagePrice = *req.PackagePrice
	}

	if err := s.repo.BundleRepo.UpdateBundle(bundle); err != nil {
		return nil, "", NewWorkflowError("failed to update bundle", ErrUnknown, err)
	}
	s.invalidate(ctx, "bundle")

	if bundle.ExternalPriceID == nil {
		return bundle, "", nil
	}

	event, err := s.repo.EventRepo.GetEventByID(bundle.EventID.String())
	if err != nil {
		logger.WithError(err).Warn("price update sync skipped: event lookup failed")
		return bundle, "bundle saved, but price sync failed: event lookup failed", nil
	}
	if event.ExternalProductID == nil || event.LocationID == nil || *event.LocationID == "" {
		return bundle, "", nil
	}

	apiKey, err := resolveAPIKey(s.repo.CredentialRepo, *event.LocationID)
	if err != nil {
		logger.WithError(err).Warn("bundle price sync skipped")
		return bundle, "bundle saved, but price sync failed: " + err.Error(), nil
	}

	available := AvailableBundleQuantity(event.Capacity, event.TicketsSold, bundle.BundleQuantity)
	_, err = s.commerce.UpdatePrice(ctx, apiKey, *event.ExternalProductID, *bundle.ExternalPriceID, commerce.PriceRequest{
		Name:              bundle.PackageName,
		Currency:          "USD",
		Amount:            bundle.PackagePrice,
		LocationID:        *event.LocationID,
		AvailableQuantity: available,
	})
	if err != nil {
		logger.WithError(err).WithField("bundle_id", bundle.ID).Warn("price update sync failed")
		return bundle, "bundle saved, but price sync failed: " + err.Error(), nil
	}

	return bundle, "", nil
}

// DeleteBundle removes the bundle locally. The mirrored price is left behind
// on the commerce platform.
func (s *BundleService) DeleteBundle(ctx context.Context, bundleID string) error {
	if err := s.repo.BundleRepo.DeleteBundle(bundleID); err != nil {
		return NewWorkflowError("bundle not found", ErrNotFound, err)
	}
	s.invalidate(ctx, "bundle")
	return nil
}

func (s *BundleService) ListBundles(eventID string) ([]models.BundleOption, error) {
	bundles, err := s.repo.BundleRepo.ListBundlesByEvent(eventID)
	if err != nil {
		return nil, NewWorkflowError("failed to list bundles", ErrUnknown, err)
	}
	return bundles, nil
}

// SyncInventory proxies an inventory payload to the commerce platform using
// the location's credential.
func (s *BundleService) SyncInventory(ctx context.Context, locationID string, items []commerce.InventoryItem) error {
	if locationID == "" {
		return NewWorkflowError("location_id is required", ErrBadRequest, nil)
	}

	apiKey, err := resolveAPIKey(s.repo.CredentialRepo, locationID)
	if err != nil {
		return err
	}

	if err := s.commerce.SyncInventory(ctx, apiKey, commerce.InventoryRequest{
		LocationID: locationID,
		Items:      items,
	}); err != nil {
		return upstreamError(err)
	}
	return nil
}

// SyncEventInventory recomputes available quantities for every mirrored
// bundle of the event and pushes one inventory call.
func (s *BundleService) SyncEventInventory(ctx context.Context, eventID string) error {
	event, err := s.repo.EventRepo.GetEventByID(eventID)
	if err != nil {
		return NewWorkflowError("event not found", ErrNotFound, err)
	}
	if event.LocationID == nil || *event.LocationID == "" {
		return NewWorkflowError("event has no location", ErrBadRequest, nil)
	}

	bundles, err := s.repo.BundleRepo.ListBundlesByEvent(eventID)
	if err != nil {
		return NewWorkflowError("failed to list bundles", ErrUnknown, err)
	}

	items := make([]commerce.InventoryItem, 0, len(bundles))
	for _, b := range bundles {
		if b.ExternalPriceID == nil {
			continue
		}
		items = append(items, commerce.InventoryItem{
			PriceID:           *b.ExternalPriceID,
			AvailableQuantity: AvailableBundleQuantity(event.Capacity, event.TicketsSold, b.BundleQuantity),
		})
	}
	if len(items) == 0 {
		return NewWorkflowError("no mirrored bundles to sync", ErrBadRequest, nil)
	}

	return s.SyncInventory(ctx, *event.LocationID, items)
}

func (s *BundleService) invalidate(ctx context.Context, tags ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tags...); err != nil {
		logger.WithError(err).Warn("cache invalidation failed")
	}
}
