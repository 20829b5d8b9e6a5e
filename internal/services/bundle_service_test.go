package services

import (
	"context"
	"testing"

	"ticketing-backoffice/internal/models"
	"ticketing-backoffice/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableBundleQuantity(t *testing.T) {
	cases := []struct {
		name     string
		capacity int
		sold     int
		bundle   int
		want     int
	}{
		{"whole division", 100, 20, 5, 16},
		{"floors the remainder", 7, 0, 2, 3},
		{"sold out", 10, 10, 2, 0},
		{"oversold never negative", 10, 12, 2, 0},
		{"zero bundle quantity", 10, 0, 0, 0},
		{"negative bundle quantity", 10, 0, -1, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, AvailableBundleQuantity(tc.capacity, tc.sold, tc.bundle))
		})
	}
}

func seedMirroredEvent(repo *repositories.Repository, capacity, sold int) *models.Event {
	locationID := "loc-1"
	productID := "prod-1"
	event := &models.Event{
		ID:                uuid.New(),
		Title:             "Summer Festival",
		Capacity:          capacity,
		TicketsSold:       sold,
		LocationID:        &locationID,
		ExternalProductID: &productID,
		IsActive:          true,
	}
	_ = repo.EventRepo.CreateEvent(event)
	_ = repo.CredentialRepo.UpsertAPIKey(&models.LocationAPIKey{
		ID:         uuid.New(),
		LocationID: locationID,
		APIKey:     "key-123",
	})
	return event
}

func TestCreateBundleWithoutMirrorSkipsSync(t *testing.T) {
	repo := newTestRepo()
	event := &models.Event{ID: uuid.New(), Title: "Local Only", Capacity: 50}
	require.NoError(t, repo.EventRepo.CreateEvent(event))

	cm := &fakeCommerce{}
	svc := NewBundleService(repo, newMemCache(), cm, testConfig(t.TempDir()))

	bundle, warning, err := svc.CreateBundle(context.Background(), event.ID.String(), CreateBundleRequest{
		PackageName:    "Family Pack",
		PackagePrice:   decimal.NewFromInt(80),
		BundleQuantity: 4,
	})
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Nil(t, bundle.ExternalPriceID)
	assert.Empty(t, cm.priceRequests)
}

func TestCreateBundleSyncsPrice(t *testing.T) {
	repo := newTestRepo()
	event := seedMirroredEvent(repo, 100, 20)

	cm := &fakeCommerce{}
	svc := NewBundleService(repo, newMemCache(), cm, testConfig(t.TempDir()))

	bundle, warning, err := svc.CreateBundle(context.Background(), event.ID.String(), CreateBundleRequest{
		PackageName:    "Family Pack",
		PackagePrice:   decimal.NewFromInt(80),
		BundleQuantity: 4,
	})
	require.NoError(t, err)
	assert.Empty(t, warning)
	require.NotNil(t, bundle.ExternalPriceID)
	assert.Equal(t, "price-1", *bundle.ExternalPriceID)

	require.Len(t, cm.priceRequests, 1)
	assert.Equal(t, "Family Pack", cm.priceRequests[0].Name)
	assert.Equal(t, "USD", cm.priceRequests[0].Currency)
	assert.Equal(t, []string{"key-123"}, cm.apiKeys)

	stored, err := repo.BundleRepo.GetBundleByID(bundle.ID.String())
	require.NoError(t, err)
	require.NotNil(t, stored.ExternalPriceID)
}

func TestCreateBundleSyncFailureDowngradesToWarning(t *testing.T) {
	repo := newTestRepo()
	event := seedMirroredEvent(repo, 100, 20)

	cm := &fakeCommerce{createPriceErr: assert.AnError}
	svc := NewBundleService(repo, newMemCache(), cm, testConfig(t.TempDir()))

	bundle, warning, err := svc.CreateBundle(context.Background(), event.ID.String(), CreateBundleRequest{
		PackageName:    "Family Pack",
		PackagePrice:   decimal.NewFromInt(80),
		BundleQuantity: 4,
	})
	require.NoError(t, err)
	assert.Contains(t, warning, "price sync failed")
	assert.Nil(t, bundle.ExternalPriceID)

	// Local write survives the failed sync
	stored, err := repo.BundleRepo.GetBundleByID(bundle.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Family Pack", stored.PackageName)
}

func TestCreateBundleValidation(t *testing.T) {
	repo := newTestRepo()
	event := seedMirroredEvent(repo, 100, 0)
	svc := NewBundleService(repo, newMemCache(), &fakeCommerce{}, testConfig(t.TempDir()))

	cases := []struct {
		name string
		req  CreateBundleRequest
	}{
		{"missing name", CreateBundleRequest{PackagePrice: decimal.NewFromInt(10), BundleQuantity: 2}},
		{"negative price", CreateBundleRequest{PackageName: "P", PackagePrice: decimal.NewFromInt(-1), BundleQuantity: 2}},
		{"zero quantity", CreateBundleRequest{PackageName: "P", PackagePrice: decimal.NewFromInt(10)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.CreateBundle(context.Background(), event.ID.String(), tc.req)
			require.Error(t, err)
			assert.Equal(t, ErrBadRequest, GetWorkflowErrorCode(err))
		})
	}
}

func TestUpdateBundleRecomputesAvailability(t *testing.T) {
	repo := newTestRepo()
	event := seedMirroredEvent(repo, 100, 20)

	priceID := "price-1"
	bundle := &models.BundleOption{
		ID:              uuid.New(),
		EventID:         event.ID,
		PackageName:     "Family Pack",
		PackagePrice:    decimal.NewFromInt(80),
		BundleQuantity:  5,
		ExternalPriceID: &priceID,
	}
	require.NoError(t, repo.BundleRepo.CreateBundle(bundle))

	cm := &fakeCommerce{}
	svc := NewBundleService(repo, newMemCache(), cm, testConfig(t.TempDir()))

	newPrice := decimal.NewFromInt(90)
	updated, warning, err := svc.UpdateBundle(context.Background(), bundle.ID.String(), UpdateBundleRequest{
		PackagePrice: &newPrice,
	})
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.True(t, updated.PackagePrice.Equal(newPrice))
	// Quantity stays immutable
	assert.Equal(t, 5, updated.BundleQuantity)

	require.Len(t, cm.priceRequests, 1)
	assert.Equal(t, 16, cm.priceRequests[0].AvailableQuantity)
	assert.Equal(t, []string{"price-1"}, cm.updatePriceIDs)
}

func TestUpdateBundleSyncFailureDowngradesToWarning(t *testing.T) {
	repo := newTestRepo()
	event := seedMirroredEvent(repo, 100, 20)

	priceID := "price-1"
	bundle := &models.BundleOption{
		ID:              uuid.New(),
		EventID:         event.ID,
		PackageName:     "Family Pack",
		PackagePrice:    decimal.NewFromInt(80),
		BundleQuantity:  5,
		ExternalPriceID: &priceID,
	}
	require.NoError(t, repo.BundleRepo.CreateBundle(bundle))

	cm := &fakeCommerce{updatePriceErr: assert.AnError}
	svc := NewBundleService(repo, newMemCache(), cm, testConfig(t.TempDir()))

	name := "Family Pack XL"
	updated, warning, err := svc.UpdateBundle(context.Background(), bundle.ID.String(), UpdateBundleRequest{
		PackageName: &name,
	})
	require.NoError(t, err)
	assert.Contains(t, warning, "price sync failed")
	assert.Equal(t, "Family Pack XL", updated.PackageName)
}

func TestDeleteBundleIsLocalOnly(t *testing.T) {
	repo := newTestRepo()
	event := seedMirroredEvent(repo, 100, 0)

	priceID := "price-1"
	bundle := &models.BundleOption{
		ID:              uuid.New(),
		EventID:         event.ID,
		PackageName:     "Family Pack",
		BundleQuantity:  5,
		ExternalPriceID: &priceID,
	}
	require.NoError(t, repo.BundleRepo.CreateBundle(bundle))

	cm := &fakeCommerce{}
	svc := NewBundleService(repo, newMemCache(), cm, testConfig(t.TempDir()))

	require.NoError(t, svc.DeleteBundle(context.Background(), bundle.ID.String()))
	_, err := repo.BundleRepo.GetBundleByID(bundle.ID.String())
	assert.Error(t, err)

	// No upstream call of any kind
	assert.Empty(t, cm.priceRequests)
	assert.Empty(t, cm.inventoryRequests)
}

func TestSyncEventInventoryPushesMirroredBundles(t *testing.T) {
	repo := newTestRepo()
	event := seedMirroredEvent(repo, 100, 20)

	priceID := "price-1"
	require.NoError(t, repo.BundleRepo.CreateBundle(&models.BundleOption{
		ID:              uuid.New(),
		EventID:         event.ID,
		PackageName:     "Family Pack",
		BundleQuantity:  5,
		ExternalPriceID: &priceID,
	}))
	// Unmirrored bundle is skipped
	require.NoError(t, repo.BundleRepo.CreateBundle(&models.BundleOption{
		ID:             uuid.New(),
		EventID:        event.ID,
		PackageName:    "Solo",
		BundleQuantity: 1,
	}))

	cm := &fakeCommerce{}
	svc := NewBundleService(repo, newMemCache(), cm, testConfig(t.TempDir()))

	require.NoError(t, svc.SyncEventInventory(context.Background(), event.ID.String()))

	require.Len(t, cm.inventoryRequests, 1)
	req := cm.inventoryRequests[0]
	assert.Equal(t, "loc-1", req.LocationID)
	require.Len(t, req.Items, 1)
	assert.Equal(t, "price-1", req.Items[0].PriceID)
	assert.Equal(t, 16, req.Items[0].AvailableQuantity)
}

func TestSyncEventInventoryWithNothingMirrored(t *testing.T) {
	repo := newTestRepo()
	event := seedMirroredEvent(repo, 100, 0)

	svc := NewBundleService(repo, newMemCache(), &fakeCommerce{}, testConfig(t.TempDir()))

	err := svc.SyncEventInventory(context.Background(), event.ID.String())
	require.Error(t, err)
	assert.Equal(t, ErrBadRequest, GetWorkflowErrorCode(err))
}

func TestSyncInventoryWithoutAPIKey(t *testing.T) {
	svc := NewBundleService(newTestRepo(), newMemCache(), &fakeCommerce{}, testConfig(t.TempDir()))

	err := svc.SyncInventory(context.Background(), "loc-unknown", nil)
	require.Error(t, err)
	assert.Equal(t, ErrNoAPIKey, GetWorkflowErrorCode(err))
}

func TestSyncInventoryUpstreamFailure(t *testing.T) {
	repo := newTestRepo()
	require.NoError(t, repo.CredentialRepo.UpsertAPIKey(&models.LocationAPIKey{
		ID:         uuid.New(),
		LocationID: "loc-1",
		APIKey:     "key-123",
	}))

	cm := &fakeCommerce{syncInventoryErr: assert.AnError}
	svc := NewBundleService(repo, newMemCache(), cm, testConfig(t.TempDir()))

	err := svc.SyncInventory(context.Background(), "loc-1", nil)
	require.Error(t, err)
	assert.Equal(t, ErrUpstream, GetWorkflowErrorCode(err))
}
