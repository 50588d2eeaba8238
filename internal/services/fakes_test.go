package services

import (
	"context"
	"fmt"
	"time"

	"shared-house-backend/internal/models"
)

// In-memory store fakes backing the service tests.

type fakeBookingStore struct {
	bookings map[string]*models.Booking
	listErr  error
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{bookings: make(map[string]*models.Booking)}
}

func (s *fakeBookingStore) snapshot() []models.Booking {
	all := make([]models.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		all = append(all, *b)
	}
	return all
}

func (s *fakeBookingStore) CreateIfFree(_ context.Context, booking *models.Booking) ([]models.Booking, error) {
	conflicts := FindConflicts(booking.StartDate, booking.EndDate, s.snapshot(), "")
	if len(conflicts) > 0 {
		return conflicts, nil
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil, nil
}

func (s *fakeBookingStore) UpdateIfFree(_ context.Context, booking *models.Booking) ([]models.Booking, error) {
	if _, ok := s.bookings[booking.ID]; !ok {
		return nil, fmt.Errorf("booking %s: %w", booking.ID, ErrNotFound)
	}
	conflicts := FindConflicts(booking.StartDate, booking.EndDate, s.snapshot(), booking.ID)
	if len(conflicts) > 0 {
		return conflicts, nil
	}
	copied := *booking
	s.bookings[booking.ID] = &copied
	return nil, nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	booking, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	copied := *booking
	return &copied, nil
}

func (s *fakeBookingStore) List(_ context.Context, userID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range s.bookings {
		if userID == "" || b.UserID == userID {
			out = append(out, *b)
		}
	}
	sortByStartDate(out)
	return out, nil
}

func (s *fakeBookingStore) ListActive(_ context.Context) ([]models.Booking, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Booking
	for _, b := range s.bookings {
		if !b.IsCancelled() {
			out = append(out, *b)
		}
	}
	sortByStartDate(out)
	return out, nil
}

func (s *fakeBookingStore) Cancel(_ context.Context, id string) (*models.Booking, error) {
	booking, ok := s.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
	}
	booking.Status = models.BookingStatusCancelled
	copied := *booking
	return &copied, nil
}

func (s *fakeBookingStore) MarkChecklistCompleted(_ context.Context, bookingID, checklistID string) error {
	booking, ok := s.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	booking.ExitChecklistCompleted = true
	booking.ExitChecklistID = &checklistID
	return nil
}

func (s *fakeBookingStore) MarkReminderSent(_ context.Context, bookingID string) error {
	booking, ok := s.bookings[bookingID]
	if !ok {
		return fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}
	booking.ReminderSent = true
	return nil
}

type fakeUserStore struct {
	users map[string]*models.User
}

func newFakeUserStore(users ...*models.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*models.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user: %w", ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (s *fakeUserStore) GetByExternalUID(_ context.Context, uid string) (*models.User, error) {
	for _, u := range s.users {
		if u.ExternalUID == uid {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user: %w", ErrNotFound)
}

func (s *fakeUserStore) UpdateDevice(_ context.Context, userID string, current models.UserDevice, history []models.UserDevice) error {
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	user.CurrentDevice = &current
	user.DeviceHistory = history
	return nil
}

func (s *fakeUserStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	user, ok := s.users[userID]
	if !ok {
		return fmt.Errorf("user: %w", ErrNotFound)
	}
	user.PushToken = pushToken
	return nil
}

func (s *fakeUserStore) ListByRole(_ context.Context, role models.UserRole) ([]models.User, error) {
	var out []models.User
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

type fakeChecklistStore struct {
	checklists map[string]*models.Checklist
}

func newFakeChecklistStore() *fakeChecklistStore {
	return &fakeChecklistStore{checklists: make(map[string]*models.Checklist)}
}

func (s *fakeChecklistStore) Create(_ context.Context, checklist *models.Checklist) error {
	copied := *checklist
	s.checklists[checklist.ID] = &copied
	return nil
}

func (s *fakeChecklistStore) GetByID(_ context.Context, id string) (*models.Checklist, error) {
	checklist, ok := s.checklists[id]
	if !ok {
		return nil, fmt.Errorf("checklist %s: %w", id, ErrNotFound)
	}
	copied := *checklist
	copied.Entries = append([]models.ChecklistEntry(nil), checklist.Entries...)
	return &copied, nil
}

func (s *fakeChecklistStore) GetByBooking(_ context.Context, bookingID string) (*models.Checklist, error) {
	for id, c := range s.checklists {
		if c.BookingID != nil && *c.BookingID == bookingID {
			return s.GetByID(context.Background(), id)
		}
	}
	return nil, fmt.Errorf("checklist for booking %s: %w", bookingID, ErrNotFound)
}

func (s *fakeChecklistStore) List(_ context.Context, userID string) ([]models.Checklist, error) {
	var out []models.Checklist
	for _, c := range s.checklists {
		if userID == "" || c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *fakeChecklistStore) AppendEntry(_ context.Context, id string, entry models.ChecklistEntry) error {
	checklist, ok := s.checklists[id]
	if !ok {
		return fmt.Errorf("checklist %s: %w", id, ErrNotFound)
	}
	checklist.Entries = append(checklist.Entries, entry)
	return nil
}

func (s *fakeChecklistStore) MarkSubmitted(_ context.Context, id string, submittedAt time.Time) error {
	checklist, ok := s.checklists[id]
	if !ok {
		return fmt.Errorf("checklist %s: %w", id, ErrNotFound)
	}
	checklist.IsComplete = true
	checklist.SubmittedAt = &submittedAt
	return nil
}

type fakeMaintenanceStore struct {
	requests map[string]*models.MaintenanceRequest
}

func newFakeMaintenanceStore() *fakeMaintenanceStore {
	return &fakeMaintenanceStore{requests: make(map[string]*models.MaintenanceRequest)}
}

func (s *fakeMaintenanceStore) Create(_ context.Context, request *models.MaintenanceRequest) error {
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

func (s *fakeMaintenanceStore) GetByID(_ context.Context, id string) (*models.MaintenanceRequest, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, fmt.Errorf("maintenance request %s: %w", id, ErrNotFound)
	}
	copied := *request
	return &copied, nil
}

func (s *fakeMaintenanceStore) List(_ context.Context, status models.MaintenanceStatus) ([]models.MaintenanceRequest, error) {
	var out []models.MaintenanceRequest
	for _, r := range s.requests {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *fakeMaintenanceStore) Update(_ context.Context, request *models.MaintenanceRequest) error {
	if _, ok := s.requests[request.ID]; !ok {
		return fmt.Errorf("maintenance request %s: %w", request.ID, ErrNotFound)
	}
	copied := *request
	s.requests[request.ID] = &copied
	return nil
}

// recordedPush is one captured notifier call.
type recordedPush struct {
	UserID string
	Event  string
	Data   map[string]string
}

type recordingNotifier struct {
	pushes []recordedPush
	err    error
}

func (n *recordingNotifier) Send(_ context.Context, user *models.User, event string, data map[string]string) error {
	if n.err != nil {
		return n.err
	}
	n.pushes = append(n.pushes, recordedPush{UserID: user.ID, Event: event, Data: data})
	return nil
}

type recordedEvent struct {
	Event string
	Data  any
}

type recordingSink struct {
	events []recordedEvent
}

func (s *recordingSink) Broadcast(event string, data any) {
	s.events = append(s.events, recordedEvent{Event: event, Data: data})
}

func testUser(id, name string, role models.UserRole) *models.User {
	return &models.User{
		ID:          id,
		Email:       name + "@example.com",
		Name:        name,
		Role:        role,
		ExternalUID: "uid-" + id,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
