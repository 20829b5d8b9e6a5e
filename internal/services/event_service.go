package services

import (
	"context"
	"fmt"
	"time"

	"ticketing-backoffice/internal/commerce"
	"ticketing-backoffice/internal/config"
	"ticketing-backoffice/internal/models"
	"ticketing-backoffice/internal/repositories"
	"ticketing-backoffice/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventService struct {
	repo     *repositories.Repository
	cache    Cache
	commerce CommerceAPI
	cfg      *config.Config
}

func NewEventService(repo *repositories.Repository, cache Cache, commerceAPI CommerceAPI, cfg *config.Config) *EventService {
	return &EventService{
		repo:     repo,
		cache:    cache,
		commerce: commerceAPI,
		cfg:      cfg,
	}
}

type CreateEventRequest struct {
	Title       string
	Venue       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	EventTime   string
	CoverImage  string
	Capacity    int
	TicketPrice decimal.Decimal
	LocationID  *string
}

type UpdateEventRequest struct {
	Title       *string
	Venue       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	EventTime   *string
	CoverImage  *string
	Capacity    *int
	TicketPrice *decimal.Decimal
	IsActive    *bool
}

func eventCacheKey(id string) string {
	return "event:" + id
}

func (s *EventService) CreateEvent(ctx context.Context, req CreateEventRequest) (*models.Event, error) {
	if req.Title == "" {
		return nil, NewWorkflowError("title is required", ErrBadRequest, nil)
	}
	if req.Capacity < 1 {
		return nil, NewWorkflowError("capacity must be at least 1", ErrBadRequest, nil)
	}
	if req.TicketPrice.IsNegative() {
		return nil, NewWorkflowError("ticket price cannot be negative", ErrBadRequest, nil)
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, NewWorkflowError("end date must be after start date", ErrBadRequest, nil)
	}

	event := &models.Event{
		ID:          uuid.New(),
		Title:       req.Title,
		Venue:       req.Venue,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		EventTime:   req.EventTime,
		CoverImage:  req.CoverImage,
		Capacity:    req.Capacity,
		TicketPrice: req.TicketPrice,
		LocationID:  req.LocationID,
		IsActive:    true,
	}

	if err := s.repo.EventRepo.CreateEvent(event); err != nil {
		return nil, NewWorkflowError("failed to create event", ErrUnknown, err)
	}

	s.invalidate(ctx, "event")
	return event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var cached models.Event
	if s.cache != nil {
		if hit, err := s.cache.GetJSON(ctx, eventCacheKey(id), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	event, err := s.repo.EventRepo.GetEventByID(id)
	if err != nil {
		return nil, NewWorkflowError("event not found", ErrNotFound, err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, eventCacheKey(id), event); err != nil {
			logger.WithError(err).Warn("failed to cache event")
		}
	}

	return event, nil
}

func (s *EventService) ListEvents(page, pageSize int, filters *repositories.EventFilters) ([]models.Event, int64, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	offset := (page - 1) * pageSize
	events, total, err := s.repo.EventRepo.ListEvents(offset, pageSize, filters)
	if err != nil {
		return nil, 0, 0, err
	}

	totalPages := (int(total) + pageSize - 1) / pageSize
	return events, total, totalPages, nil
}

func (s *EventService) UpdateEvent(ctx context.Context, id string, req UpdateEventRequest) (*models.Event, error) {
	event, err := s.repo.EventRepo.GetEventByID(id)
	if err != nil {
		return nil, NewWorkflowError("event not found", ErrNotFound, err)
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Venue != nil {
		event.Venue = *req.Venue
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartDate != nil {
		event.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		event.EndDate = *req.EndDate
	}
	if req.EventTime != nil {
		event.EventTime = *req.EventTime
	}
	if req.CoverImage != nil {
		event.CoverImage = *req.CoverImage
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			return nil, NewWorkflowError("capacity must be at least 1", ErrBadRequest, nil)
		}
		if *req.Capacity < event.TicketsSold {
			return nil, NewWorkflowError(
				fmt.Sprintf("capacity %d is below tickets already sold (%d)", *req.Capacity, event.TicketsSold),
				ErrBadRequest, nil,
			)
		}
		event.Capacity = *req.Capacity
	}
	if req.TicketPrice != nil {
		if req.TicketPrice.IsNegative() {
			return nil, NewWorkflowError("ticket price cannot be negative", ErrBadRequest, nil)
		}
		event.TicketPrice = *req.TicketPrice
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
	if event.EndDate.Before(event.StartDate) {
		return nil, NewWorkflowError("end date must be after start date", ErrBadRequest, nil)
	}

	if err := s.repo.EventRepo.UpdateEvent(event); err != nil {
		return nil, NewWorkflowError("failed to update event", ErrUnknown, err)
	}

	s.invalidate(ctx, "event")
	return event, nil
}

func (s *EventService) DeactivateEvent(ctx context.Context, id string) error {
	if err := s.repo.EventRepo.SoftDeleteEvent(id); err != nil {
		return NewWorkflowError("event not found", ErrNotFound, err)
	}
	s.invalidate(ctx, "event")
	return nil
}

// SyncProduct mirrors the event onto the commerce platform and persists the
// returned product id. Creates the product on first sync, updates thereafter.
func (s *EventService) SyncProduct(ctx context.Context, eventID string) (*models.Event, error) {
	event, err := s.repo.EventRepo.GetEventByID(eventID)
	if err != nil {
		return nil, NewWorkflowError("event not found", ErrNotFound, err)
	}
	if event.LocationID == nil || *event.LocationID == "" {
		return nil, NewWorkflowError("event has no location to sync to", ErrBadRequest, nil)
	}

	apiKey, err := resolveAPIKey(s.repo.CredentialRepo, *event.LocationID)
	if err != nil {
		return nil, err
	}

	req := commerce.ProductRequest{
		Name:        event.Title,
		LocationID:  *event.LocationID,
		Description: event.Description,
		EventID:     event.ID.String(),
	}

	var product *commerce.Product
	if event.ExternalProductID == nil || *event.ExternalProductID == "" {
		product, err = s.commerce.CreateProduct(ctx, apiKey, req)
	} else {
		product, err = s.commerce.UpdateProduct(ctx, apiKey, *event.ExternalProductID, req)
	}
	if err != nil {
		return nil, upstreamError(err)
	}

	if err := s.repo.EventRepo.SetExternalProductID(eventID, product.ID); err != nil {
		return nil, NewWorkflowError("failed to persist external product id", ErrUnknown, err)
	}
	event.ExternalProductID = &product.ID

	s.invalidate(ctx, "event")
	return event, nil
}

// SetLocationAPIKey stores or replaces the commerce credential for a
// location.
func (s *EventService) SetLocationAPIKey(locationID, apiKey string) error {
	if locationID == "" || apiKey == "" {
		return NewWorkflowError("location id and api key are required", ErrBadRequest, nil)
	}

	key := &models.LocationAPIKey{
		ID:         uuid.New(),
		LocationID: locationID,
		APIKey:     apiKey,
	}
	if err := s.repo.CredentialRepo.UpsertAPIKey(key); err != nil {
		return NewWorkflowError("failed to store API key", ErrUnknown, err)
	}
	return nil
}

func (s *EventService) invalidate(ctx context.Context, tags ...string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, tags...); err != nil {
		logger.WithError(err).Warn("cache invalidation failed")
	}
}
