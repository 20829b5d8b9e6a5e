package services

import (
	"context"
	"errors"
	"fmt"

	"ticketing-backoffice/internal/commerce"
	"ticketing-backoffice/internal/notify"
	"ticketing-backoffice/internal/repositories"

	"gorm.io/gorm"
)

// Cache is the read-cache surface the workflows depend on. Mutations call
// Invalidate with key prefixes; reads go through GetJSON/SetJSON.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}) error
	Invalidate(ctx context.Context, tags ...string) error
}

// CommerceAPI is the external commerce platform surface.
type CommerceAPI interface {
	CreateProduct(ctx context.Context, apiKey string, req commerce.ProductRequest) (*commerce.Product, error)
	UpdateProduct(ctx context.Context, apiKey, productID string, req commerce.ProductRequest) (*commerce.Product, error)
	CreatePrice(ctx context.Context, apiKey, productID string, req commerce.PriceRequest) (*commerce.Price, error)
	UpdatePrice(ctx context.Context, apiKey, productID, priceID string, req commerce.PriceRequest) (*commerce.Price, error)
	SyncInventory(ctx context.Context, apiKey string, req commerce.InventoryRequest) error
	FetchOrder(ctx context.Context, apiKey, orderID string) ([]byte, error)
}

// ContactNotifier posts best-effort check-in confirmations.
type ContactNotifier interface {
	ConfirmContact(ctx context.Context, payload notify.ConfirmContactPayload) error
}

// resolveAPIKey looks up the per-location commerce credential.
func resolveAPIKey(repo repositories.CredentialRepository, locationID string) (string, error) {
	key, err := repo.GetAPIKeyByLocation(locationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", NewWorkflowError(
				fmt.Sprintf("no API key configured for location %s", locationID),
				ErrNoAPIKey, nil,
			)
		}
		return "", NewWorkflowError("failed to load location API key", ErrUnknown, err)
	}
	return key.APIKey, nil
}

// upstreamError converts a commerce client failure into a workflow error.
func upstreamError(err error) *WorkflowError {
	var ue *commerce.UpstreamError
	if errors.As(err, &ue) {
		return NewWorkflowError(
			fmt.Sprintf("commerce platform returned %d", ue.Status),
			ErrUpstream, err,
		)
	}
	return NewWorkflowError("commerce platform call failed", ErrUpstream, err)
}
