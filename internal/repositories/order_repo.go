package repositories

import (
	"errors"
	"fmt"

	"ticketing-backoffice/internal/models"

	"gorm.io/gorm"
)

type OrderFilters struct {
	EventID    string
	ContactID  string
	Status     string
	LocationID string
}

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) CreateOrder(order *models.Order) error {
	if order == nil {
		return errors.New("order cannot be nil")
	}
	return r.db.Create(order).Error
}

func (r *orderRepo) GetOrderByID(id string) (*models.Order, error) {
	if id == "" {
		return nil, errors.New("order ID cannot be empty")
	}

	var order models.Order
	if err := r.db.
		Preload("Contact").
		Where("id = ?", id).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order not found with ID: %s", id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	return &order, nil
}

func (r *orderRepo) ListOrders(offset, limit int, filters *OrderFilters) ([]models.Order, int64, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var orders []models.Order
	var total int64

	query := r.db.Model(&models.Order{})

	if filters != nil {
		if filters.EventID != "" {
			query = query.Where("event_id = ?", filters.EventID)
		}
		if filters.ContactID != "" {
			query = query.Where("contact_id = ?", filters.ContactID)
		}
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.LocationID != "" {
			query = query.Where("location_id = ?", filters.LocationID)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if err := query.
		Preload("Contact").
		Offset(offset).
		Limit(limit).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}

	return orders, total, nil
}

func (r *orderRepo) UpdateOrderStatus(orderID, status string) error {
	result := r.db.Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status)

	if result.Error != nil {
		return fmt.Errorf("failed to update order status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order not found with ID: %s", orderID)
	}
	return nil
}

func (r *orderRepo) DeleteOrder(id string) error {
	if id == "" {
		return errors.New("order ID cannot be empty")
	}

	result := r.db.Where("id = ?", id).Delete(&models.Order{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete order: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("order not found with ID: %s", id)
	}
	return nil
}
