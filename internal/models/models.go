package models

import "time"

// BookingStatus is the lifecycle state of a booking. Cancellation is a
// status change, not a delete; cancelled bookings stay on record.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking represents a date-range claim on the house by one family member.
// StartDate and EndDate are inclusive calendar dates.
type Booking struct {
	ID                     string        `json:"id"`
	UserID                 string        `json:"user_id"`
	UserName               string        `json:"user_name"`
	StartDate              CivilDate     `json:"start_date"`
	EndDate                CivilDate     `json:"end_date"`
	Notes                  string        `json:"notes"`
	Status                 BookingStatus `json:"status"`
	ExitChecklistCompleted bool          `json:"exit_checklist_completed"`
	ExitChecklistID        *string       `json:"exit_checklist_id,omitempty"`
	ReminderSent           bool          `json:"reminder_sent"`
	CreatedAt              time.Time     `json:"created_at"`
	UpdatedAt              time.Time     `json:"updated_at"`
}

// IsCancelled reports whether the booking has been cancelled.
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// UserRole controls notification routing and admin-only endpoints.
type UserRole string

const (
	RoleFamilyMember UserRole = "family_member"
	RoleMaintenance  UserRole = "maintenance"
	RoleAdmin        UserRole = "admin"
)

// UserDevice is a device record used for single-device login enforcement.
type UserDevice struct {
	DeviceID   string    `json:"device_id"`
	DeviceName string    `json:"device_name"`
	Platform   string    `json:"platform"`
	LastLogin  time.Time `json:"last_login"`
	IsActive   bool      `json:"is_active"`
}

// User represents a family member.
type User struct {
	ID            string       `json:"id"`
	Email         string       `json:"email"`
	Name          string       `json:"name"`
	Role          UserRole     `json:"role"`
	ExternalUID   string       `json:"external_uid"`
	PushToken     *string      `json:"push_token,omitempty"`
	CurrentDevice *UserDevice  `json:"current_device,omitempty"`
	DeviceHistory []UserDevice `json:"device_history"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// CanLoginFromDevice reports whether a login from the given device is
// allowed: always for the first device, otherwise only for the currently
// bound one.
func (u *User) CanLoginFromDevice(deviceID string) bool {
	if u.CurrentDevice == nil {
		return true
	}
	return u.CurrentDevice.DeviceID == deviceID
}

// SetDevice binds a new current device. The previous current device, if
// any, is marked inactive and appended to the history. History is a strict
// LIFO append; it is never reordered or deduplicated.
func (u *User) SetDevice(device UserDevice) {
	if u.CurrentDevice != nil {
		prev := *u.CurrentDevice
		prev.IsActive = false
		u.DeviceHistory = append(u.DeviceHistory, prev)
	}
	u.CurrentDevice = &device
}

// ChecklistCategory tags an exit checklist entry.
type ChecklistCategory string

const (
	CategoryRefrigerator ChecklistCategory = "refrigerator"
	CategoryFreezer      ChecklistCategory = "freezer"
	CategoryCloset       ChecklistCategory = "closet"
	CategoryGeneral      ChecklistCategory = "general"
)

// RequiredChecklistCategories must each have at least one entry with
// sufficient notes before a checklist can be submitted. The general
// category is exempt.
var RequiredChecklistCategories = []ChecklistCategory{
	CategoryRefrigerator,
	CategoryFreezer,
	CategoryCloset,
}

// ChecklistEntry is a single note (optionally with a photo) in an exit
// checklist.
type ChecklistEntry struct {
	Category  ChecklistCategory `json:"category"`
	Notes     string            `json:"notes"`
	PhotoURL  *string           `json:"photo_url,omitempty"`
	Order     int               `json:"order"`
	CreatedAt time.Time         `json:"created_at"`
}

// Checklist is an end-of-stay report. Submission is a one-way transition
// gated by the completeness validator.
type Checklist struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	UserName       string           `json:"user_name"`
	BookingID      *string          `json:"booking_id,omitempty"`
	Entries        []ChecklistEntry `json:"entries"`
	ImportantNotes string           `json:"important_notes"`
	IsComplete     bool             `json:"is_complete"`
	SubmittedAt    *time.Time       `json:"submitted_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// EntriesByCategory returns the entries with the given category tag.
func (c *Checklist) EntriesByCategory(category ChecklistCategory) []ChecklistEntry {
	var entries []ChecklistEntry
	for _, entry := range c.Entries {
		if entry.Category == category {
			entries = append(entries, entry)
		}
	}
	return entries
}

// MaintenanceStatus is the lifecycle state of a maintenance request.
// pending -> in_progress -> completed, with reopen back to pending.
type MaintenanceStatus string

const (
	MaintenancePending    MaintenanceStatus = "pending"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
)

// MaintenanceRequest is a reported problem with the house.
type MaintenanceRequest struct {
	ID              string            `json:"id"`
	ReporterID      string            `json:"reporter_id"`
	ReporterName    string            `json:"reporter_name"`
	Description     string            `json:"description"`
	Location        string            `json:"location"`
	PhotoURLs       []string          `json:"photo_urls"`
	Status          MaintenanceStatus `json:"status"`
	AssignedToID    *string           `json:"assigned_to_id,omitempty"`
	AssignedToName  *string           `json:"assigned_to_name,omitempty"`
	AssignedAt      *time.Time        `json:"assigned_at,omitempty"`
	ResolutionNotes *string           `json:"resolution_notes,omitempty"`
	CompletedByID   *string           `json:"completed_by_id,omitempty"`
	CompletedByName *string           `json:"completed_by_name,omitempty"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	ReopenReason    *string           `json:"reopen_reason,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ReminderKind distinguishes same-day exit reminders from advance notices.
type ReminderKind string

const (
	ReminderExitDueToday    ReminderKind = "exit_due_today"
	ReminderExitDueTomorrow ReminderKind = "exit_due_tomorrow"
)

// ReminderEvent is emitted by the exit-reminder scan for a booking whose
// stay is ending without a completed checklist.
type ReminderEvent struct {
	BookingID string       `json:"booking_id"`
	UserID    string       `json:"user_id"`
	Kind      ReminderKind `json:"kind"`
	Message   string       `json:"message"`
}
