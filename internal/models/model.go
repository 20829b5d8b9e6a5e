package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"type:varchar(20);not null;default:'staff'" json:"role"` // admin|organizer|staff
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Event struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string          `gorm:"not null" json:"title"`
	Venue       string          `json:"venue"`
	Description string          `gorm:"type:text" json:"description"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	EventTime   string          `json:"event_time"`
	CoverImage  string          `json:"cover_image"`
	Capacity    int             `gorm:"not null" json:"capacity"`
	TicketPrice decimal.Decimal `gorm:"type:numeric" json:"ticket_price"`
	TicketsSold int             `gorm:"default:0" json:"tickets_sold"`
	IsActive    bool            `gorm:"default:true" json:"is_active"`
	LocationID  *string         `gorm:"index" json:"location_id"`
	// Product id on the external commerce platform, set after product sync.
	ExternalProductID *string   `json:"external_product_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// Relations
	Orders  []Order        `gorm:"foreignKey:EventID" json:"orders,omitempty"`
	Bundles []BundleOption `gorm:"foreignKey:EventID" json:"bundles,omitempty"`
}

type Contact struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
	OrderStatusRefunded  = "refunded"
)

type Order struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	ContactID  uuid.UUID       `gorm:"type:uuid;index;not null" json:"contact_id"`
	Quantity   int             `gorm:"not null" json:"quantity"`
	Total      decimal.Decimal `gorm:"type:numeric" json:"total"`
	Status     string          `gorm:"type:varchar(20);default:'pending'" json:"status"` // pending|completed|cancelled|refunded
	LocationID *string         `gorm:"index" json:"location_id"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`

	// Relations
	Event   Event   `gorm:"foreignKey:EventID" json:"event,omitempty"`
	Contact Contact `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
}

// Attendee aggregates the full ticket allotment of one order and tracks how
// many of those tickets have been redeemed.
type Attendee struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID      uuid.UUID `gorm:"type:uuid;index;not null" json:"order_id"`
	ContactID    uuid.UUID `gorm:"type:uuid;index;not null" json:"contact_id"`
	TicketNumber string    `gorm:"uniqueIndex;not null" json:"ticket_number"`
	QRCodeURL    string    `json:"qr_code_url"`
	EventTitle   string    `json:"event_title"`
	TotalTickets int       `gorm:"not null" json:"total_tickets"`
	CheckInCount int       `gorm:"default:0" json:"check_in_count"`
	CheckedInAt  *time.Time `json:"checked_in_at"`
	LocationID   *string   `gorm:"index" json:"location_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Order   Order            `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Contact Contact          `gorm:"foreignKey:ContactID" json:"contact,omitempty"`
	Seats   []SeatAssignment `gorm:"foreignKey:AttendeeID" json:"seats,omitempty"`
}

// SeatAssignment is one individual ticket within an order. Occupant fields
// stay empty until staff fill them in; guardian fields only apply to minors.
type SeatAssignment struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttendeeID    uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:idx_attendee_seat" json:"attendee_id"`
	SeatNumber    int        `gorm:"not null;uniqueIndex:idx_attendee_seat" json:"seat_number"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Phone         string     `json:"phone"`
	IsMinor       bool       `gorm:"default:false" json:"is_minor"`
	GuardianName  string     `json:"guardian_name"`
	GuardianEmail string     `json:"guardian_email"`
	GuardianPhone string     `json:"guardian_phone"`
	CheckedInAt   *time.Time `json:"checked_in_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Relations
	Attendee Attendee `gorm:"foreignKey:AttendeeID" json:"attendee,omitempty"`
}

type BundleOption struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	EventID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"event_id"`
	PackageName  string          `gorm:"not null" json:"package_name"`
	PackagePrice decimal.Decimal `gorm:"type:numeric" json:"package_price"`
	// Tickets per bundle; immutable after creation.
	BundleQuantity int `gorm:"not null" json:"bundle_quantity"`
	// Price id on the external commerce platform, set after price sync.
	ExternalPriceID *string   `json:"external_price_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	Event Event `gorm:"foreignKey:EventID" json:"event,omitempty"`
}

// LocationAPIKey maps a location to its commerce-platform credential.
type LocationAPIKey struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LocationID string    `gorm:"uniqueIndex;not null" json:"location_id"`
	APIKey     string    `gorm:"not null" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderAudit stores raw upstream order-fetch responses for later inspection.
type OrderAudit struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrderID     uuid.UUID      `gorm:"type:uuid;index;not null" json:"order_id"`
	LocationID  string         `gorm:"index" json:"location_id"`
	RawResponse string         `gorm:"type:text" json:"raw_response"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
