package repositories

import (
	"ticketing-backoffice/internal/models"

	"gorm.io/gorm"
)

type Repository struct {
	DB             *gorm.DB
	EventRepo      EventRepository
	ContactRepo    ContactRepository
	OrderRepo      OrderRepository
	AttendeeRepo   AttendeeRepository
	SeatRepo       SeatRepository
	BundleRepo     BundleRepository
	CredentialRepo CredentialRepository
	UserRepo       UserRepository
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		DB:             db,
		EventRepo:      NewEventRepository(db),
		ContactRepo:    NewContactRepository(db),
		OrderRepo:      NewOrderRepository(db),
		AttendeeRepo:   NewAttendeeRepository(db),
		SeatRepo:       NewSeatRepository(db),
		BundleRepo:     NewBundleRepository(db),
		CredentialRepo: NewCredentialRepository(db),
		UserRepo:       NewUserRepository(db),
	}
}

// Transaction runs txFunc inside a database transaction.
func (r *Repository) Transaction(txFunc func(*gorm.DB) error) error {
	return r.DB.Transaction(txFunc)
}

func AutoMigrate(db *gorm.DB) error {
	// Enable UUID extension
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return err
	}

	// Migrate models
	return db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Contact{},
		&models.Order{},
		&models.Attendee{},
		&models.SeatAssignment{},
		&models.BundleOption{},
		&models.LocationAPIKey{},
		&models.OrderAudit{},
	)
}

// Interface definitions
type ContactRepository interface {
	CreateContact(contact *models.Contact) error
	GetContactByID(id string) (*models.Contact, error)
	GetContactByEmail(email string) (*models.Contact, error)
	ListContacts(offset, limit int) ([]models.Contact, int64, error)
	UpdateContact(contact *models.Contact) error
}

type OrderRepository interface {
	CreateOrder(order *models.Order) error
	GetOrderByID(id string) (*models.Order, error)
	ListOrders(offset, limit int, filters *OrderFilters) ([]models.Order, int64, error)
	UpdateOrderStatus(orderID, status string) error
	DeleteOrder(id string) error
}

type AttendeeRepository interface {
	CreateAttendee(attendee *models.Attendee) error
	GetAttendeeByID(id string) (*models.Attendee, error)
	GetAttendeeByOrderID(orderID string) (*models.Attendee, error)
	FindAttendeeByTicketNumber(ticketNumber string) (*models.Attendee, error)
	ListAttendeesByEvent(eventID string, offset, limit int) ([]models.Attendee, int64, error)
	UpdateAttendee(attendee *models.Attendee) error
	// IncrementCheckInCount performs a bounded conditional increment and
	// reports whether a row was updated.
	IncrementCheckInCount(attendeeID string) (bool, error)
	// DecrementCheckInCount performs a bounded conditional decrement and
	// reports whether a row was updated.
	DecrementCheckInCount(attendeeID string) (bool, error)
	DeleteAttendee(id string) error
}

type SeatRepository interface {
	CreateSeats(seats []models.SeatAssignment) error
	GetSeatByID(id string) (*models.SeatAssignment, error)
	ListSeatsByAttendee(attendeeID string) ([]models.SeatAssignment, error)
	UpdateSeat(seat *models.SeatAssignment) error
	SetSeatCheckedInAt(seatID string, checkedIn bool) error
	ClearSeatOccupant(seatID string) error
	DeleteSeatsByAttendee(attendeeID string) error
}

type BundleRepository interface {
	CreateBundle(bundle *models.BundleOption) error
	GetBundleByID(id string) (*models.BundleOption, error)
	ListBundlesByEvent(eventID string) ([]models.BundleOption, error)
	UpdateBundle(bundle *models.BundleOption) error
	DeleteBundle(id string) error
}

type CredentialRepository interface {
	GetAPIKeyByLocation(locationID string) (*models.LocationAPIKey, error)
	UpsertAPIKey(key *models.LocationAPIKey) error
	CreateOrderAudit(audit *models.OrderAudit) error
	ListOrderAudits(orderID string) ([]models.OrderAudit, error)
}

type UserRepository interface {
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	CreateUser(user *models.User) error
	UpdateUser(user *models.User) error
}
