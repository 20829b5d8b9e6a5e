package services

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"ticketing-backoffice/internal/commerce"
	"ticketing-backoffice/internal/config"
	"ticketing-backoffice/internal/models"
	"ticketing-backoffice/internal/notify"
	"ticketing-backoffice/internal/repositories"

	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the conditional-update semantics of
// the real Postgres queries so the workflow tests exercise the same bounds.

type memEventRepo struct {
	events map[string]*models.Event
}

func newMemEventRepo(events ...*models.Event) *memEventRepo {
	m := &memEventRepo{events: make(map[string]*models.Event)}
	for _, e := range events {
		m.events[e.ID.String()] = e
	}
	return m
}

func (m *memEventRepo) CreateEvent(event *models.Event) error {
	m.events[event.ID.String()] = event
	return nil
}

func (m *memEventRepo) GetEventByID(id string) (*models.Event, error) {
	event, ok := m.events[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *event
	return &cp, nil
}

func (m *memEventRepo) ListEvents(offset, limit int, _ *repositories.EventFilters) ([]models.Event, int64, error) {
	out := make([]models.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, *e)
	}
	return out, int64(len(out)), nil
}

func (m *memEventRepo) UpdateEvent(event *models.Event) error {
	if _, ok := m.events[event.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *event
	m.events[event.ID.String()] = &cp
	return nil
}

func (m *memEventRepo) SetExternalProductID(eventID, productID string) error {
	event, ok := m.events[eventID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	event.ExternalProductID = &productID
	return nil
}

func (m *memEventRepo) IncrementTicketsSold(eventID string, quantity int) (bool, error) {
	event, ok := m.events[eventID]
	if !ok {
		return false, nil
	}
	if event.TicketsSold+quantity > event.Capacity {
		return false, nil
	}
	event.TicketsSold += quantity
	return true, nil
}

func (m *memEventRepo) SoftDeleteEvent(id string) error {
	event, ok := m.events[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	event.IsActive = false
	return nil
}

type memContactRepo struct {
	contacts map[string]*models.Contact
}

func newMemContactRepo(contacts ...*models.Contact) *memContactRepo {
	m := &memContactRepo{contacts: make(map[string]*models.Contact)}
	for _, c := range contacts {
		m.contacts[c.ID.String()] = c
	}
	return m
}

func (m *memContactRepo) CreateContact(contact *models.Contact) error {
	m.contacts[contact.ID.String()] = contact
	return nil
}

func (m *memContactRepo) GetContactByID(id string) (*models.Contact, error) {
	contact, ok := m.contacts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *contact
	return &cp, nil
}

func (m *memContactRepo) GetContactByEmail(email string) (*models.Contact, error) {
	for _, c := range m.contacts {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memContactRepo) ListContacts(offset, limit int) ([]models.Contact, int64, error) {
	out := make([]models.Contact, 0, len(m.contacts))
	for _, c := range m.contacts {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *memContactRepo) UpdateContact(contact *models.Contact) error {
	if _, ok := m.contacts[contact.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *contact
	m.contacts[contact.ID.String()] = &cp
	return nil
}

type memOrderRepo struct {
	orders map[string]*models.Order
}

func newMemOrderRepo(orders ...*models.Order) *memOrderRepo {
	m := &memOrderRepo{orders: make(map[string]*models.Order)}
	for _, o := range orders {
		m.orders[o.ID.String()] = o
	}
	return m
}

func (m *memOrderRepo) CreateOrder(order *models.Order) error {
	m.orders[order.ID.String()] = order
	return nil
}

func (m *memOrderRepo) GetOrderByID(id string) (*models.Order, error) {
	order, ok := m.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *order
	return &cp, nil
}

func (m *memOrderRepo) ListOrders(offset, limit int, _ *repositories.OrderFilters) ([]models.Order, int64, error) {
	out := make([]models.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (m *memOrderRepo) UpdateOrderStatus(orderID, status string) error {
	order, ok := m.orders[orderID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	order.Status = status
	return nil
}

func (m *memOrderRepo) DeleteOrder(id string) error {
	if _, ok := m.orders[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.orders, id)
	return nil
}

type memAttendeeRepo struct {
	attendees map[string]*models.Attendee
}

func newMemAttendeeRepo(attendees ...*models.Attendee) *memAttendeeRepo {
	m := &memAttendeeRepo{attendees: make(map[string]*models.Attendee)}
	for _, a := range attendees {
		m.attendees[a.ID.String()] = a
	}
	return m
}

func (m *memAttendeeRepo) CreateAttendee(attendee *models.Attendee) error {
	m.attendees[attendee.ID.String()] = attendee
	return nil
}

func (m *memAttendeeRepo) GetAttendeeByID(id string) (*models.Attendee, error) {
	attendee, ok := m.attendees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *attendee
	return &cp, nil
}

func (m *memAttendeeRepo) GetAttendeeByOrderID(orderID string) (*models.Attendee, error) {
	for _, a := range m.attendees {
		if a.OrderID.String() == orderID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memAttendeeRepo) FindAttendeeByTicketNumber(ticketNumber string) (*models.Attendee, error) {
	for _, a := range m.attendees {
		if strings.EqualFold(a.TicketNumber, ticketNumber) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAttendeeRepo) ListAttendeesByEvent(eventID string, offset, limit int) ([]models.Attendee, int64, error) {
	out := make([]models.Attendee, 0, len(m.attendees))
	for _, a := range m.attendees {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (m *memAttendeeRepo) UpdateAttendee(attendee *models.Attendee) error {
	if _, ok := m.attendees[attendee.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *attendee
	m.attendees[attendee.ID.String()] = &cp
	return nil
}

func (m *memAttendeeRepo) IncrementCheckInCount(attendeeID string) (bool, error) {
	attendee, ok := m.attendees[attendeeID]
	if !ok {
		return false, nil
	}
	if attendee.CheckInCount >= attendee.TotalTickets {
		return false, nil
	}
	attendee.CheckInCount++
	now := time.Now()
	attendee.CheckedInAt = &now
	return true, nil
}

func (m *memAttendeeRepo) DecrementCheckInCount(attendeeID string) (bool, error) {
	attendee, ok := m.attendees[attendeeID]
	if !ok {
		return false, nil
	}
	if attendee.CheckInCount <= 0 {
		return false, nil
	}
	attendee.CheckInCount--
	if attendee.CheckInCount == 0 {
		attendee.CheckedInAt = nil
	}
	return true, nil
}

func (m *memAttendeeRepo) DeleteAttendee(id string) error {
	if _, ok := m.attendees[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.attendees, id)
	return nil
}

type memSeatRepo struct {
	seats map[string]*models.SeatAssignment
}

func newMemSeatRepo(seats ...*models.SeatAssignment) *memSeatRepo {
	m := &memSeatRepo{seats: make(map[string]*models.SeatAssignment)}
	for _, s := range seats {
		m.seats[s.ID.String()] = s
	}
	return m
}

func (m *memSeatRepo) CreateSeats(seats []models.SeatAssignment) error {
	for i := range seats {
		cp := seats[i]
		m.seats[cp.ID.String()] = &cp
	}
	return nil
}

func (m *memSeatRepo) GetSeatByID(id string) (*models.SeatAssignment, error) {
	seat, ok := m.seats[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *seat
	return &cp, nil
}

func (m *memSeatRepo) ListSeatsByAttendee(attendeeID string) ([]models.SeatAssignment, error) {
	out := make([]models.SeatAssignment, 0)
	for _, s := range m.seats {
		if s.AttendeeID.String() == attendeeID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out, nil
}

func (m *memSeatRepo) UpdateSeat(seat *models.SeatAssignment) error {
	if _, ok := m.seats[seat.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *seat
	m.seats[seat.ID.String()] = &cp
	return nil
}

func (m *memSeatRepo) SetSeatCheckedInAt(seatID string, checkedIn bool) error {
	seat, ok := m.seats[seatID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if checkedIn {
		now := time.Now()
		seat.CheckedInAt = &now
	} else {
		seat.CheckedInAt = nil
	}
	return nil
}

func (m *memSeatRepo) ClearSeatOccupant(seatID string) error {
	seat, ok := m.seats[seatID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	seat.Name = ""
	seat.Email = ""
	seat.Phone = ""
	seat.IsMinor = false
	seat.GuardianName = ""
	seat.GuardianEmail = ""
	seat.GuardianPhone = ""
	seat.CheckedInAt = nil
	return nil
}

func (m *memSeatRepo) DeleteSeatsByAttendee(attendeeID string) error {
	for id, s := range m.seats {
		if s.AttendeeID.String() == attendeeID {
			delete(m.seats, id)
		}
	}
	return nil
}

type memBundleRepo struct {
	bundles map[string]*models.BundleOption
}

func newMemBundleRepo(bundles ...*models.BundleOption) *memBundleRepo {
	m := &memBundleRepo{bundles: make(map[string]*models.BundleOption)}
	for _, b := range bundles {
		m.bundles[b.ID.String()] = b
	}
	return m
}

func (m *memBundleRepo) CreateBundle(bundle *models.BundleOption) error {
	m.bundles[bundle.ID.String()] = bundle
	return nil
}

func (m *memBundleRepo) GetBundleByID(id string) (*models.BundleOption, error) {
	bundle, ok := m.bundles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *bundle
	return &cp, nil
}

func (m *memBundleRepo) ListBundlesByEvent(eventID string) ([]models.BundleOption, error) {
	out := make([]models.BundleOption, 0)
	for _, b := range m.bundles {
		if b.EventID.String() == eventID {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PackageName < out[j].PackageName })
	return out, nil
}

func (m *memBundleRepo) UpdateBundle(bundle *models.BundleOption) error {
	if _, ok := m.bundles[bundle.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *bundle
	m.bundles[bundle.ID.String()] = &cp
	return nil
}

func (m *memBundleRepo) DeleteBundle(id string) error {
	if _, ok := m.bundles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.bundles, id)
	return nil
}

type memCredentialRepo struct {
	keys   map[string]*models.LocationAPIKey
	audits []models.OrderAudit
}

func newMemCredentialRepo(keys ...*models.LocationAPIKey) *memCredentialRepo {
	m := &memCredentialRepo{keys: make(map[string]*models.LocationAPIKey)}
	for _, k := range keys {
		m.keys[k.LocationID] = k
	}
	return m
}

func (m *memCredentialRepo) GetAPIKeyByLocation(locationID string) (*models.LocationAPIKey, error) {
	key, ok := m.keys[locationID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *key
	return &cp, nil
}

func (m *memCredentialRepo) UpsertAPIKey(key *models.LocationAPIKey) error {
	m.keys[key.LocationID] = key
	return nil
}

func (m *memCredentialRepo) CreateOrderAudit(audit *models.OrderAudit) error {
	m.audits = append(m.audits, *audit)
	return nil
}

func (m *memCredentialRepo) ListOrderAudits(orderID string) ([]models.OrderAudit, error) {
	out := make([]models.OrderAudit, 0)
	for _, a := range m.audits {
		if a.OrderID.String() == orderID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memUserRepo struct {
	users map[string]*models.User
}

func newMemUserRepo(users ...*models.User) *memUserRepo {
	m := &memUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		m.users[u.ID.String()] = u
	}
	return m
}

func (m *memUserRepo) GetUserByEmail(email string) (*models.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memUserRepo) GetUserByID(id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (m *memUserRepo) CreateUser(user *models.User) error {
	cp := *user
	m.users[user.ID.String()] = &cp
	return nil
}

func (m *memUserRepo) UpdateUser(user *models.User) error {
	if _, ok := m.users[user.ID.String()]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.ID.String()] = &cp
	return nil
}

func newTestRepo() *repositories.Repository {
	return &repositories.Repository{
		EventRepo:      newMemEventRepo(),
		ContactRepo:    newMemContactRepo(),
		OrderRepo:      newMemOrderRepo(),
		AttendeeRepo:   newMemAttendeeRepo(),
		SeatRepo:       newMemSeatRepo(),
		BundleRepo:     newMemBundleRepo(),
		CredentialRepo: newMemCredentialRepo(),
		UserRepo:       newMemUserRepo(),
	}
}

// memCache is a map-backed Cache used to observe read-through and
// invalidation behavior.
type memCache struct {
	data        map[string][]byte
	invalidated []string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) GetJSON(_ context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *memCache) SetJSON(_ context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memCache) Invalidate(_ context.Context, tags ...string) error {
	for _, tag := range tags {
		c.invalidated = append(c.invalidated, tag)
		for key := range c.data {
			if strings.HasPrefix(key, tag) {
				delete(c.data, key)
			}
		}
	}
	return nil
}

// fakeCommerce records outbound commerce calls and returns canned responses.
type fakeCommerce struct {
	createProductErr error
	updateProductErr error
	createPriceErr   error
	updatePriceErr   error
	syncInventoryErr error
	fetchOrderResp   []byte
	fetchOrderErr    error

	createProductCalls int
	updateProductCalls int
	priceRequests      []commerce.PriceRequest
	updatePriceIDs     []string
	inventoryRequests  []commerce.InventoryRequest
	apiKeys            []string
}

func (f *fakeCommerce) CreateProduct(_ context.Context, apiKey string, req commerce.ProductRequest) (*commerce.Product, error) {
	f.apiKeys = append(f.apiKeys, apiKey)
	f.createProductCalls++
	if f.createProductErr != nil {
		return nil, f.createProductErr
	}
	return &commerce.Product{ID: "prod-1", Name: req.Name, LocationID: req.LocationID}, nil
}

func (f *fakeCommerce) UpdateProduct(_ context.Context, apiKey, productID string, req commerce.ProductRequest) (*commerce.Product, error) {
	f.apiKeys = append(f.apiKeys, apiKey)
	f.updateProductCalls++
	if f.updateProductErr != nil {
		return nil, f.updateProductErr
	}
	return &commerce.Product{ID: productID, Name: req.Name, LocationID: req.LocationID}, nil
}

func (f *fakeCommerce) CreatePrice(_ context.Context, apiKey, productID string, req commerce.PriceRequest) (*commerce.Price, error) {
	f.apiKeys = append(f.apiKeys, apiKey)
	f.priceRequests = append(f.priceRequests, req)
	if f.createPriceErr != nil {
		return nil, f.createPriceErr
	}
	return &commerce.Price{ID: "price-1", Name: req.Name, Amount: req.Amount}, nil
}

func (f *fakeCommerce) UpdatePrice(_ context.Context, apiKey, productID, priceID string, req commerce.PriceRequest) (*commerce.Price, error) {
	f.apiKeys = append(f.apiKeys, apiKey)
	f.priceRequests = append(f.priceRequests, req)
	f.updatePriceIDs = append(f.updatePriceIDs, priceID)
	if f.updatePriceErr != nil {
		return nil, f.updatePriceErr
	}
	return &commerce.Price{ID: priceID, Name: req.Name, Amount: req.Amount}, nil
}

func (f *fakeCommerce) SyncInventory(_ context.Context, apiKey string, req commerce.InventoryRequest) error {
	f.apiKeys = append(f.apiKeys, apiKey)
	f.inventoryRequests = append(f.inventoryRequests, req)
	return f.syncInventoryErr
}

func (f *fakeCommerce) FetchOrder(_ context.Context, apiKey, orderID string) ([]byte, error) {
	f.apiKeys = append(f.apiKeys, apiKey)
	if f.fetchOrderErr != nil {
		return nil, f.fetchOrderErr
	}
	return f.fetchOrderResp, nil
}

// captureNotifier delivers check-in confirmation payloads over a channel so
// tests can wait for the background goroutine.
type captureNotifier struct {
	ch chan notify.ConfirmContactPayload
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{ch: make(chan notify.ConfirmContactPayload, 1)}
}

func (n *captureNotifier) ConfirmContact(_ context.Context, payload notify.ConfirmContactPayload) error {
	n.ch <- payload
	return nil
}

func testConfig(qrDir string) *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		QRDir:         qrDir,
		PublicBaseURL: "http://localhost:3000",
	}
}
